package interp

import (
	"fmt"
	"slices"

	"go.ngs.io/ocean-grid/internal/dataset"
	"go.ngs.io/ocean-grid/internal/domain"
)

// Slice extracts the horizontal slice of variable name from an assembled dataset.
// The variable must span one X-family and one Y-family dimension; every other
// dimension is fixed by at, defaulting to its first position.
func Slice(ds *dataset.Dataset, name string, at map[string]int) (*Grid2D, error) {
	v, err := ds.MustVar(name)
	if err != nil {
		return nil, err
	}
	dims := v.Dims()
	xDim := firstOf(dims, domain.DimX, domain.DimXp1)
	yDim := firstOf(dims, domain.DimY, domain.DimYp1)
	if xDim == "" || yDim == "" {
		return nil, fmt.Errorf("%s spans %v, not a horizontal field: %w", name, dims, domain.ErrInvalidArgument)
	}
	for dim := range at {
		if !slices.Contains(dims, dim) || dim == xDim || dim == yDim {
			return nil, fmt.Errorf("%s cannot be fixed on %s: %w", name, dim, domain.ErrInvalidArgument)
		}
	}

	xs, _ := ds.Coord(xDim)
	ys, _ := ds.Coord(yDim)
	shape := v.Shape()
	idx := make([]int, len(dims))
	for k, dim := range dims {
		p := at[dim]
		if p < 0 || p >= shape[k] {
			return nil, fmt.Errorf("%s position %d out of range [0, %d): %w", dim, p, shape[k], domain.ErrInvalidArgument)
		}
		idx[k] = p
	}

	xAxis, yAxis := v.Axis(xDim), v.Axis(yDim)
	values := make([][]float64, len(ys))
	for j := range ys {
		row := make([]float64, len(xs))
		idx[yAxis] = j
		for i := range xs {
			idx[xAxis] = i
			row[i] = v.At(idx...)
		}
		values[j] = row
	}
	return &Grid2D{X: xs, Y: ys, Values: values}, nil
}

// Sample interpolates variable name at (lon, lat) on the slice selected by at.
func Sample(ds *dataset.Dataset, name string, at map[string]int, lon, lat float64) (float64, error) {
	g, err := Slice(ds, name, at)
	if err != nil {
		return 0, err
	}
	return g.InterpolateAt(lon, lat)
}

func firstOf(dims []string, candidates ...string) string {
	for _, c := range candidates {
		if slices.Contains(dims, c) {
			return c
		}
	}
	return ""
}
