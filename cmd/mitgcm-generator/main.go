// Package main writes a synthetic MITgcm experiment in the glued-output layout: a grid
// file, state and diagnostic field files and a cropped budget collection.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"go.ngs.io/ocean-grid/internal/config"
	"go.ngs.io/ocean-grid/internal/logging"
	"go.ngs.io/ocean-grid/internal/synthetic"
)

func main() {
	outDir := flag.String("out", "./data/exp_synthetic", "Output directory for the experiment")
	region := flag.String("region", "irminger", "Region: irminger or custom")
	nx := flag.Int("nx", 0, "Centre points along X, seam ring included (0 keeps the region default)")
	ny := flag.Int("ny", 0, "Centre points along Y, seam ring included (0 keeps the region default)")
	nz := flag.Int("nz", 0, "Vertical levels (0 keeps the region default)")
	nt := flag.Int("nt", 0, "Time steps (0 keeps the region default)")
	cropNZ := flag.Int("crop-nz", 0, "Levels of the cropped collection (0 keeps the region default)")
	lon0 := flag.Float64("lon0", -40, "South-west longitude (custom region)")
	lat0 := flag.Float64("lat0", 60, "South-west latitude (custom region)")
	dlon := flag.Float64("dlon", 0.5, "Longitude spacing in degrees (custom region)")
	dlat := flag.Float64("dlat", 0.25, "Latitude spacing in degrees (custom region)")
	configOut := flag.String("config-out", "", "Also write a configuration file pointing at the experiment")
	flag.Parse()

	logger, err := logging.New(config.LoggingConfig{Level: "info"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	layout := synthetic.DefaultLayout()
	switch *region {
	case "irminger":
	case "custom":
		layout.Lon0, layout.Lat0 = *lon0, *lat0
		layout.DLon, layout.DLat = *dlon, *dlat
	default:
		logger.Fatal("unknown region (use irminger or custom)", zap.String("region", *region))
	}
	for _, o := range []struct {
		flag int
		dst  *int
	}{{*nx, &layout.NX}, {*ny, &layout.NY}, {*nz, &layout.NZ}, {*nt, &layout.NT}, {*cropNZ, &layout.CropNZ}} {
		if o.flag > 0 {
			*o.dst = o.flag
		}
	}

	exp, err := synthetic.Generate(layout)
	if err != nil {
		logger.Fatal("failed to generate experiment", zap.Error(err))
	}
	sources, err := exp.Write(*outDir)
	if err != nil {
		logger.Fatal("failed to write experiment", zap.Error(err))
	}
	logger.Info("experiment written",
		zap.String("dir", *outDir),
		zap.Int("field_files", len(exp.Fields)),
		zap.Int("cropped_files", len(exp.Cropped)),
		zap.String("grid", fmt.Sprintf("%dx%dx%d", layout.NX, layout.NY, layout.NZ)),
		zap.Int("time_steps", layout.NT))

	cfg := config.Default()
	cfg.Sources = sources
	data, err := yaml.Marshal(cfg)
	if err != nil {
		logger.Fatal("failed to encode configuration", zap.Error(err))
	}
	if *configOut == "" {
		fmt.Print(string(data))
		return
	}
	if err := os.WriteFile(*configOut, data, 0o644); err != nil {
		logger.Fatal("failed to write configuration", zap.Error(err))
	}
	logger.Info("configuration written", zap.String("path", *configOut))
}
