package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.ngs.io/ocean-grid/internal/domain"
	"go.ngs.io/ocean-grid/internal/xgrid"
)

// clearEnv blanks every variable read by applyEnvOverrides.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OCEANGRID_GRID_PATH", "OCEANGRID_FIELDS_GLOB", "OCEANGRID_CROPPED_GLOB",
		"PORT", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oceangrid.yaml")
	yml := `
sources:
  grid_path: /data/grid_glued.nc
  fields_glob: /data/*.*_glued.nc
server:
  port: "9000"
assembly:
  time_midpoints: true
  boundary: fill
  fill_value: -999
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	clearEnv(t)
	t.Setenv("OCEANGRID_CROPPED_GLOB", "/data/cropped/*.nc")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := Sources{
		GridPath:    "/data/grid_glued.nc",
		FieldsGlob:  "/data/*.*_glued.nc",
		CroppedGlob: "/data/cropped/*.nc",
	}
	if diff := cmp.Diff(want, cfg.Sources); diff != "" {
		t.Errorf("Sources mismatch (-want +got):\n%s", diff)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Server.Port)
	}
	if got := cfg.Server.AllowedOrigins; len(got) != 2 || got[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", got)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Assembly.ReadWorkers != 4 {
		t.Errorf("ReadWorkers = %d, want default 4", cfg.Assembly.ReadWorkers)
	}

	opts, err := cfg.GridOptions()
	if err != nil {
		t.Fatalf("GridOptions failed: %v", err)
	}
	if opts.Boundary != xgrid.Fill || opts.FillValue != -999 || opts.Periodic {
		t.Errorf("GridOptions = %+v", opts)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("sources: [unclosed"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty grid path", func(c *Config) { c.Sources.GridPath = "" }},
		{"empty fields glob", func(c *Config) { c.Sources.FieldsGlob = "" }},
		{"unknown boundary", func(c *Config) { c.Assembly.Boundary = "mirror" }},
		{"no workers", func(c *Config) { c.Assembly.ReadWorkers = 0 }},
		{"no cache", func(c *Config) { c.Server.CacheSize = 0 }},
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("Validate() = %v, want ErrInvalidArgument", err)
			}
		})
	}
}
