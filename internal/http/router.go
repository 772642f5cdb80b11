// Package http exposes assembled datasets, their grid and the domain map over HTTP.
package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go.ngs.io/ocean-grid/internal/config"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(assembler Assembler, cfg config.ServerConfig, logger *zap.Logger) (*gin.Engine, error) {
	handler, err := NewHandler(assembler, cfg.CacheSize, logger)
	if err != nil {
		return nil, err
	}

	router := gin.Default()

	// Allow all origins unless a list is configured.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/v1")
	v1.GET("/dataset", handler.GetDataset)
	v1.GET("/variables", handler.GetVariables)
	v1.GET("/grid", handler.GetGrid)
	v1.GET("/fields/:name/sample", handler.GetSample)
	v1.GET("/map.png", handler.GetMap)

	router.GET("/health", handler.HealthCheck)

	return router, nil
}
