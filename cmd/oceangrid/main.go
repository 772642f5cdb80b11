// Package main provides the oceangrid command: assemble glued MITgcm output into an
// analysis-ready dataset, inspect persisted datasets and serve them over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go.ngs.io/ocean-grid/internal/adapter/store/mitgcm"
	"go.ngs.io/ocean-grid/internal/config"
	"go.ngs.io/ocean-grid/internal/logging"
	"go.ngs.io/ocean-grid/internal/usecase"
)

const version = "0.1.0"

var (
	configPath string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "oceangrid",
		Short:        "Assemble MITgcm glued output into a C-grid dataset",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file (defaults apply when empty)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log stage timings at debug level")

	root.AddCommand(
		newAssembleCmd(),
		newInspectCmd(),
		newServeCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "oceangrid version %s\n", version)
			},
		},
	)
	return root
}

// setup loads the configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newUseCase wires the assembly use case from the configuration.
func newUseCase(cfg *config.Config, logger *zap.Logger, opts ...usecase.Option) (*usecase.AssembleUseCase, error) {
	gridOpts, err := cfg.GridOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		usecase.WithGridOptions(gridOpts),
		usecase.WithTimeMidpoints(cfg.Assembly.TimeMidpoints),
	)
	loader := mitgcm.NewLoader(cfg.Assembly.ReadWorkers, logger)
	return usecase.NewAssembleUseCase(loader, cfg.Sources, logger, opts...), nil
}
