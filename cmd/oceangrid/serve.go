package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpHandler "go.ngs.io/ocean-grid/internal/http"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve assembled datasets over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			uc, err := newUseCase(cfg, logger)
			if err != nil {
				return err
			}
			router, err := httpHandler.SetupRouter(uc, cfg.Server, logger)
			if err != nil {
				return err
			}

			addr := fmt.Sprintf(":%s", cfg.Server.Port)
			logger.Info("server listening",
				zap.String("addr", addr),
				zap.String("grid", cfg.Sources.GridPath),
				zap.String("fields", cfg.Sources.FieldsGlob),
				zap.Strings("endpoints", []string{
					"GET /health",
					"GET /v1/dataset",
					"GET /v1/variables",
					"GET /v1/grid",
					"GET /v1/fields/:name/sample",
					"GET /v1/map.png",
				}))
			return router.Run(addr)
		},
	}
}
