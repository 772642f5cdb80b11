package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"go.ngs.io/ocean-grid/internal/adapter/ncio"
	"go.ngs.io/ocean-grid/internal/adapter/render/table"
	"go.ngs.io/ocean-grid/internal/config"
	"go.ngs.io/ocean-grid/internal/dataset"
	"go.ngs.io/ocean-grid/internal/domain"
	"go.ngs.io/ocean-grid/internal/xgrid"
)

func newInspectCmd() *cobra.Command {
	var (
		format  string
		interps []string
		diffs   []string
	)
	cmd := &cobra.Command{
		Use:   "inspect <file.nc>",
		Short: "Reload an assembled dataset and rebuild its grid",
		Args:  cobra.ExactArgs(1),
	}
	fs := cmd.Flags()
	fs.StringVar(&format, "format", table.FormatTable, "Catalog format: table or csv")
	fs.StringSliceVar(&interps, "interp", nil, "Interpolate VAR:AXIS to the neighbouring position")
	fs.StringSliceVar(&diffs, "diff", nil, "Difference VAR:AXIS to the neighbouring position")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		opts, err := cfg.GridOptions()
		if err != nil {
			return err
		}
		ds, err := ncio.ReadDataset(args[0], nil)
		if err != nil {
			return err
		}
		g, err := xgrid.New(ds, opts)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, g)
		r, err := table.NewRenderer(w, format)
		if err != nil {
			return err
		}
		if err := r.RenderTable(domain.Catalog(ds)); err != nil {
			return err
		}

		ops := []struct {
			name  string
			specs []string
			apply func(*dataset.Variable, string) (*dataset.Variable, error)
		}{
			{"interp", interps, g.Interp},
			{"diff", diffs, g.Diff},
		}
		for _, op := range ops {
			for _, spec := range op.specs {
				name, axis, ok := strings.Cut(spec, ":")
				if !ok {
					return fmt.Errorf("--%s %q is not VAR:AXIS: %w", op.name, spec, domain.ErrInvalidArgument)
				}
				v, err := ds.MustVar(name)
				if err != nil {
					return err
				}
				res, err := op.apply(v, axis)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s(%s, %s): dims %v shape %v\n", op.name, name, axis, res.Dims(), res.Shape())
			}
		}
		return nil
	}
	return cmd
}
