package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"go.ngs.io/ocean-grid/internal/adapter/ncio"
	"go.ngs.io/ocean-grid/internal/adapter/render/mapplot"
	"go.ngs.io/ocean-grid/internal/adapter/render/table"
	"go.ngs.io/ocean-grid/internal/usecase"
)

func newAssembleCmd() *cobra.Command {
	var (
		mapOut string
		out    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Assemble the grid and field files into one dataset",
		Args:  cobra.NoArgs,
	}
	fs := cmd.Flags()
	cropped := addStrictBool(fs, usecase.FlagCropped, "Overlay the cropped budget collection")
	dispTable := addStrictBool(fs, "table", "Print the variable catalog")
	plotMap := addStrictBool(fs, "plot-map", "Draw the domain map")
	fs.StringVar(&mapOut, "map-out", "domain_map.png", "PNG file written by --plot-map")
	fs.StringVarP(&out, "out", "o", "", "Write the assembled dataset to this NetCDF file")
	fs.StringVar(&format, "format", table.FormatTable, "Catalog format: table or csv")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		req, err := usecase.RequestFromFlags(map[string]any{
			usecase.FlagCropped:   cropped.value,
			usecase.FlagDispTable: dispTable.value,
			usecase.FlagPlotMap:   plotMap.value,
		})
		if err != nil {
			return err
		}

		var opts []usecase.Option
		if req.DispTable {
			r, err := table.NewRenderer(cmd.OutOrStdout(), format)
			if err != nil {
				return err
			}
			opts = append(opts, usecase.WithTableRenderer(r))
		}
		if req.PlotMap {
			//nolint:gosec // G304: Output path comes from the command line.
			f, err := os.Create(mapOut)
			if err != nil {
				return fmt.Errorf("failed to create map file: %w", err)
			}
			defer func() { _ = f.Close() }()
			opts = append(opts, usecase.WithMapRenderer(mapplot.NewRenderer(f, 8*vg.Inch, 6*vg.Inch)))
		}

		uc, err := newUseCase(cfg, logger, opts...)
		if err != nil {
			return err
		}
		res, err := uc.Execute(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Grid)

		if out != "" {
			if err := ncio.WriteDataset(out, res.Dataset); err != nil {
				return err
			}
			logger.Info("dataset written", zap.String("path", out))
		}
		if req.PlotMap {
			logger.Info("map written", zap.String("path", mapOut))
		}
		return nil
	}
	return cmd
}
