// Package interp samples horizontal slices of an assembled dataset at arbitrary
// longitude/latitude points.
package interp

import (
	"fmt"
	"math"
	"sort"

	"go.ngs.io/ocean-grid/internal/domain"
)

// GridCell is one rectangle of a regular grid with the values at its four corners.
type GridCell struct {
	X0, X1 float64 // Longitude bounds.
	Y0, Y1 float64 // Latitude bounds.

	// V00 is at (X0, Y0), V10 at (X1, Y0), V01 at (X0, Y1) and V11 at (X1, Y1).
	V00, V10, V01, V11 float64
}

// BilinearInterpolate interpolates inside cell:
//
//	f(x,y) ≈ (1-t)(1-u)f(x0,y0) + t(1-u)f(x1,y0) + (1-t)u*f(x0,y1) + tu*f(x1,y1)
//
// where t = (x - x0) / (x1 - x0) and u = (y - y0) / (y1 - y0).
// A NaN corner makes the result NaN.
func BilinearInterpolate(cell GridCell, x, y float64) (float64, error) {
	if cell.X1 <= cell.X0 {
		return 0, fmt.Errorf("invalid grid cell: X1 must be > X0: %w", domain.ErrInvalidArgument)
	}
	if cell.Y1 <= cell.Y0 {
		return 0, fmt.Errorf("invalid grid cell: Y1 must be > Y0: %w", domain.ErrInvalidArgument)
	}

	const epsilon = 1e-9
	if x < cell.X0-epsilon || x > cell.X1+epsilon {
		return 0, fmt.Errorf("x coordinate %.6f is outside grid cell [%.6f, %.6f]: %w", x, cell.X0, cell.X1, domain.ErrInvalidArgument)
	}
	if y < cell.Y0-epsilon || y > cell.Y1+epsilon {
		return 0, fmt.Errorf("y coordinate %.6f is outside grid cell [%.6f, %.6f]: %w", y, cell.Y0, cell.Y1, domain.ErrInvalidArgument)
	}

	t := math.Max(0, math.Min(1, (x-cell.X0)/(cell.X1-cell.X0)))
	u := math.Max(0, math.Min(1, (y-cell.Y0)/(cell.Y1-cell.Y0)))

	return (1-t)*(1-u)*cell.V00 +
		t*(1-u)*cell.V10 +
		(1-t)*u*cell.V01 +
		t*u*cell.V11, nil
}

// Grid2D is a field on a rectilinear longitude/latitude grid.
type Grid2D struct {
	X      []float64   // Longitudes, strictly increasing.
	Y      []float64   // Latitudes, strictly increasing.
	Values [][]float64 // Values[j][i] is at (X[i], Y[j]).
}

// Validate checks the grid shape and coordinate ordering.
func (g *Grid2D) Validate() error {
	if len(g.X) < 2 {
		return fmt.Errorf("grid must have at least 2 X coordinates: %w", domain.ErrInvalidArgument)
	}
	if len(g.Y) < 2 {
		return fmt.Errorf("grid must have at least 2 Y coordinates: %w", domain.ErrInvalidArgument)
	}
	if len(g.Values) != len(g.Y) {
		return fmt.Errorf("number of value rows (%d) must match Y coordinates (%d): %w", len(g.Values), len(g.Y), domain.ErrInvalidArgument)
	}
	for j, row := range g.Values {
		if len(row) != len(g.X) {
			return fmt.Errorf("row %d has %d values, expected %d: %w", j, len(row), len(g.X), domain.ErrInvalidArgument)
		}
	}
	if !sort.SliceIsSorted(g.X, func(a, b int) bool { return g.X[a] < g.X[b] }) || hasDuplicates(g.X) {
		return fmt.Errorf("X coordinates must be strictly increasing: %w", domain.ErrInvalidArgument)
	}
	if !sort.SliceIsSorted(g.Y, func(a, b int) bool { return g.Y[a] < g.Y[b] }) || hasDuplicates(g.Y) {
		return fmt.Errorf("Y coordinates must be strictly increasing: %w", domain.ErrInvalidArgument)
	}
	return nil
}

func hasDuplicates(sorted []float64) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return true
		}
	}
	return false
}

// InterpolateAt interpolates the field at (x, y). Points outside the grid are rejected.
func (g *Grid2D) InterpolateAt(x, y float64) (float64, error) {
	if err := g.Validate(); err != nil {
		return 0, fmt.Errorf("invalid grid: %w", err)
	}
	i, ok := bracket(g.X, x)
	if !ok {
		return 0, fmt.Errorf("x coordinate %.6f is outside grid range [%.6f, %.6f]: %w", x, g.X[0], g.X[len(g.X)-1], domain.ErrInvalidArgument)
	}
	j, ok := bracket(g.Y, y)
	if !ok {
		return 0, fmt.Errorf("y coordinate %.6f is outside grid range [%.6f, %.6f]: %w", y, g.Y[0], g.Y[len(g.Y)-1], domain.ErrInvalidArgument)
	}

	return BilinearInterpolate(GridCell{
		X0:  g.X[i],
		X1:  g.X[i+1],
		Y0:  g.Y[j],
		Y1:  g.Y[j+1],
		V00: g.Values[j][i],
		V10: g.Values[j][i+1],
		V01: g.Values[j+1][i],
		V11: g.Values[j+1][i+1],
	}, x, y)
}

// bracket returns the index i with axis[i] <= v <= axis[i+1].
func bracket(axis []float64, v float64) (int, bool) {
	if v < axis[0] || v > axis[len(axis)-1] {
		return 0, false
	}
	i := sort.SearchFloat64s(axis, v)
	if i > 0 {
		i--
	}
	if i > len(axis)-2 {
		i = len(axis) - 2
	}
	return i, true
}
