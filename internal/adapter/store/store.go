// Package store declares how the assembly pipeline acquires its model sources.
package store

import (
	"context"

	"go.ngs.io/ocean-grid/internal/dataset"
)

// SourceLoader opens the on-disk sources of one model experiment.
type SourceLoader interface {
	// OpenGrid loads a single grid-description file without the variables in drop.
	OpenGrid(ctx context.Context, path string, drop []string) (*dataset.Dataset, error)

	// OpenFields loads every file matching glob as one dataset, joining files that share
	// a variable set along concatDim and merging the rest.
	OpenFields(ctx context.Context, glob, concatDim string, drop []string) (*dataset.Dataset, error)
}
