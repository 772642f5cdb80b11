// Package mitgcm reads glued MITgcm NetCDF output from local or FUSE-mounted paths.
package mitgcm

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go.ngs.io/ocean-grid/internal/adapter/ncio"
	"go.ngs.io/ocean-grid/internal/dataset"
	"go.ngs.io/ocean-grid/internal/domain"
)

// Loader opens grid and field files. It keeps no state between calls.
type Loader struct {
	workers int
	logger  *zap.Logger
}

// NewLoader creates a loader reading at most workers files at a time.
func NewLoader(workers int, logger *zap.Logger) *Loader {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{workers: workers, logger: logger}
}

// OpenGrid loads the grid-description file at path.
func (l *Loader) OpenGrid(ctx context.Context, path string, drop []string) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, err := ncio.ReadDataset(path, drop)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("opened grid", zap.String("path", path), zap.Int("variables", len(ds.Names())))
	return ds, nil
}

// OpenFields loads all files matching glob. Files holding the same variables (one
// diagnostics package written at successive iterations) are concatenated along
// concatDim in glob order; the resulting groups are merged.
func (l *Loader) OpenFields(ctx context.Context, glob, concatDim string, drop []string) (*dataset.Dataset, error) {
	paths, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %v: %w", glob, err, domain.ErrSourceUnavailable)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files match %q: %w", glob, domain.ErrSourceUnavailable)
	}
	sort.Strings(paths)

	parts := make([]*dataset.Dataset, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(l.workers)
	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ds, err := ncio.ReadDataset(path, drop)
			if err != nil {
				return err
			}
			parts[i] = ds
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Group by variable set, keeping the order in which groups first appear.
	var keys []string
	groups := make(map[string][]*dataset.Dataset)
	for _, ds := range parts {
		names := ds.Names()
		slices.Sort(names)
		key := strings.Join(names, ",")
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], ds)
	}

	joined := make([]*dataset.Dataset, 0, len(keys))
	for _, key := range keys {
		group := groups[key]
		if len(group) == 1 {
			joined = append(joined, group[0])
			continue
		}
		ds, err := dataset.Concat(concatDim, group...)
		if err != nil {
			return nil, fmt.Errorf("failed to concatenate %d files along %s: %w", len(group), concatDim, err)
		}
		joined = append(joined, ds)
	}
	ds, err := dataset.Merge(joined...)
	if err != nil {
		return nil, fmt.Errorf("failed to merge files of %q: %w", glob, err)
	}
	l.logger.Debug("opened fields",
		zap.String("glob", glob),
		zap.Int("files", len(paths)),
		zap.Int("groups", len(keys)))
	return ds, nil
}
