// Package config loads the ocean-grid configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"go.ngs.io/ocean-grid/internal/domain"
	"go.ngs.io/ocean-grid/internal/xgrid"
)

// Config holds all settings of the CLI and the HTTP service.
type Config struct {
	Sources  Sources        `yaml:"sources"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Assembly AssemblyConfig `yaml:"assembly"`
}

// Sources names the on-disk inputs of one model experiment.
type Sources struct {
	GridPath    string `yaml:"grid_path"`
	FieldsGlob  string `yaml:"fields_glob"`
	CroppedGlob string `yaml:"cropped_glob"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"` // Empty allows all origins.
	CacheSize      int      `yaml:"cache_size"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level      string `yaml:"level"` // debug, info, warn, error
	File       string `yaml:"file"`  // Rotated with lumberjack when set.
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// AssemblyConfig tunes the assembly pipeline.
type AssemblyConfig struct {
	TimeMidpoints bool    `yaml:"time_midpoints"`
	Boundary      string  `yaml:"boundary"` // extend or fill
	FillValue     float64 `yaml:"fill_value"`
	ReadWorkers   int     `yaml:"read_workers"`
}

// Default returns the configuration of the exp_ASR deployment on SciServer.
func Default() *Config {
	return &Config{
		Sources: Sources{
			GridPath:    "/home/idies/workspace/OceanCirculation/exp_ASR/grid_glued.nc",
			FieldsGlob:  "/home/idies/workspace/OceanCirculation/exp_ASR/result_*/output_glued/*.*_glued.nc",
			CroppedGlob: "/home/idies/workspace/OceanCirculation/exp_ASR/result_*/output_glued/cropped/*.*_glued.nc",
		},
		Server: ServerConfig{
			Port:      "8080",
			CacheSize: 2,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
		Assembly: AssemblyConfig{
			Boundary:    "extend",
			ReadWorkers: 4,
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	c.Sources.GridPath = getEnv("OCEANGRID_GRID_PATH", c.Sources.GridPath)
	c.Sources.FieldsGlob = getEnv("OCEANGRID_FIELDS_GLOB", c.Sources.FieldsGlob)
	c.Sources.CroppedGlob = getEnv("OCEANGRID_CROPPED_GLOB", c.Sources.CroppedGlob)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = strings.Split(origins, ",")
	}
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.File = getEnv("LOG_FILE", c.Logging.File)
}

// Validate checks that the configuration can drive an assembly.
func (c *Config) Validate() error {
	if c.Sources.GridPath == "" {
		return fmt.Errorf("sources.grid_path is empty: %w", domain.ErrInvalidArgument)
	}
	if c.Sources.FieldsGlob == "" {
		return fmt.Errorf("sources.fields_glob is empty: %w", domain.ErrInvalidArgument)
	}
	if _, err := xgrid.ParseBoundary(c.Assembly.Boundary); err != nil {
		return fmt.Errorf("assembly.boundary: %w", err)
	}
	if c.Assembly.ReadWorkers < 1 {
		return fmt.Errorf("assembly.read_workers must be at least 1, got %d: %w", c.Assembly.ReadWorkers, domain.ErrInvalidArgument)
	}
	if c.Server.CacheSize < 1 {
		return fmt.Errorf("server.cache_size must be at least 1, got %d: %w", c.Server.CacheSize, domain.ErrInvalidArgument)
	}
	return nil
}

// GridOptions returns the staggered-grid options of the assembly. Axes are never
// periodic for this regional model.
func (c *Config) GridOptions() (xgrid.Options, error) {
	b, err := xgrid.ParseBoundary(c.Assembly.Boundary)
	if err != nil {
		return xgrid.Options{}, err
	}
	return xgrid.Options{Boundary: b, FillValue: c.Assembly.FillValue}, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
