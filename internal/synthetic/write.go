package synthetic

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.ngs.io/ocean-grid/internal/adapter/ncio"
	"go.ngs.io/ocean-grid/internal/config"
	"go.ngs.io/ocean-grid/internal/dataset"
)

// Write stores the experiment under dir in the directory layout of a glued MITgcm run
// and returns the matching source locations.
//
//	dir/grid_glued.nc
//	dir/result_0/output_glued/<kind>.<iter>_glued.nc
//	dir/result_0/output_glued/cropped/<kind>.<iter>_glued.nc
func (e *Experiment) Write(dir string) (config.Sources, error) {
	out := filepath.Join(dir, "result_0", "output_glued")
	cropped := filepath.Join(out, "cropped")
	if err := os.MkdirAll(cropped, 0o755); err != nil {
		return config.Sources{}, fmt.Errorf("failed to create output directories: %w", err)
	}

	src := config.Sources{
		GridPath:    filepath.Join(dir, "grid_glued.nc"),
		FieldsGlob:  filepath.Join(dir, "result_*", "output_glued", "*.*_glued.nc"),
		CroppedGlob: filepath.Join(dir, "result_*", "output_glued", "cropped", "*.*_glued.nc"),
	}
	if err := ncio.WriteDataset(src.GridPath, e.Grid); err != nil {
		return config.Sources{}, err
	}
	if err := writeAll(out, e.Fields); err != nil {
		return config.Sources{}, err
	}
	if err := writeAll(cropped, e.Cropped); err != nil {
		return config.Sources{}, err
	}
	return src, nil
}

func writeAll(dir string, files map[string]*dataset.Dataset) error {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := ncio.WriteDataset(filepath.Join(dir, name), files[name]); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}
