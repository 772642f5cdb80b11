package usecase

import (
	"fmt"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"go.ngs.io/ocean-grid/internal/dataset"
	"go.ngs.io/ocean-grid/internal/domain"
)

// Stage is one named step of the assembly. A stage never modifies its input.
type Stage struct {
	Name string
	Run  func(*dataset.Dataset) (*dataset.Dataset, error)
}

// Stage names in pipeline order.
const (
	StageReconcile     = "reconcile-dimensions"
	StageRepair        = "repair-coordinates"
	StageTimeMidpoints = "time-midpoints"
	StageTagAxes       = "tag-axes"
)

// runStages applies stages in order, stopping at the first error.
func runStages(ds *dataset.Dataset, stages []Stage, logger *zap.Logger) (*dataset.Dataset, error) {
	for _, s := range stages {
		start := time.Now()
		out, err := s.Run(ds)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", s.Name, err)
		}
		logger.Debug("stage finished",
			zap.String("stage", s.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Int("variables", len(out.Names())))
		ds = out
	}
	return ds, nil
}

// mergeSources combines the grid and field datasets on their shared dimensions.
func mergeSources(grid, fields *dataset.Dataset) (*dataset.Dataset, error) {
	ds, err := dataset.Merge(grid, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to merge grid and fields: %w", err)
	}
	return ds, nil
}

// cropToSubdomain selects the part of ds covered by the cropped collection and lays the
// cropped variables over it. The cropped horizontal coordinates are positions in ds,
// not labels; vertical axes are cut to the cropped number of levels.
func cropToSubdomain(ds, crop *dataset.Dataset) (*dataset.Dataset, error) {
	crop, err := crop.Rename(dataset.Rename{From: domain.SourceCroppedZlDim, To: domain.DimZl})
	if err != nil {
		return nil, fmt.Errorf("cropped collection: %w", err)
	}

	indexers := make(map[string][]int)
	for _, dim := range []string{domain.DimX, domain.DimXp1, domain.DimY, domain.DimYp1} {
		values, ok := crop.Coord(dim)
		if !ok {
			return nil, fmt.Errorf("cropped collection has no %s coordinate: %w", dim, domain.ErrNotFound)
		}
		idx := make([]int, len(values))
		for i, v := range values {
			if math.IsNaN(v) || v != math.Trunc(v) {
				return nil, fmt.Errorf("cropped %s[%d] = %v is not a position: %w", dim, i, v, domain.ErrInvalidArgument)
			}
			idx[i] = int(v)
		}
		indexers[dim] = idx
	}

	n, ok := crop.Size(domain.SourceDiagZDim)
	if !ok {
		return nil, fmt.Errorf("cropped collection has no %s dimension: %w", domain.SourceDiagZDim, domain.ErrNotFound)
	}
	for _, dim := range []string{domain.DimZ, domain.DimZl, domain.SourceDiagZDim, domain.DimZu} {
		indexers[dim] = positions(n)
	}
	indexers[domain.DimZp1] = positions(n + 1)

	sel, err := ds.ISel(indexers)
	if err != nil {
		return nil, fmt.Errorf("failed to select cropped region: %w", err)
	}
	out, err := dataset.Overlay(sel, crop)
	if err != nil {
		return nil, fmt.Errorf("failed to overlay cropped collection: %w", err)
	}
	return out, nil
}

func positions(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// reconcileDimensions renames the source time and vertical dimensions to their final
// names, removes the singleton facet dimension and stores vertical coordinates as
// positive depths.
func reconcileDimensions(ds *dataset.Dataset) (*dataset.Dataset, error) {
	// Z is moved aside first: a rename may not target a name still in use.
	ds, err := ds.Rename(dataset.Rename{From: domain.DimZ, To: domain.ScratchZDim})
	if err != nil {
		return nil, err
	}
	ds, err = ds.Rename(
		dataset.Rename{From: domain.SourceTimeDim, To: domain.DimTime},
		dataset.Rename{From: domain.ScratchZDim, To: domain.DimZ},
		dataset.Rename{From: domain.SourceDiagZDim, To: domain.DimZ},
	)
	if err != nil {
		return nil, err
	}
	if ds, err = ds.Squeeze(domain.SourceSingletonDim); err != nil {
		return nil, err
	}

	for _, dim := range domain.VerticalDims {
		values, ok := ds.Coord(dim)
		if !ok {
			return nil, fmt.Errorf("coordinate %s: %w", dim, domain.ErrNotFound)
		}
		for i, v := range values {
			values[i] = math.Abs(v)
		}
		if ds, err = ds.UpdateCoord(dim, values); err != nil {
			return nil, err
		}
		if ds, err = ds.UpdateAttrs(dim, dataset.Attrs{domain.AttrPositive: "down"}); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// repairCoordinates rebuilds the horizontal axes from the 2-D coordinate fields,
// ignoring the zero placeholders at decomposition seams, then drops the 2-D fields and
// every axis position left undefined. On a repaired dataset it changes nothing.
func repairCoordinates(ds *dataset.Dataset) (*dataset.Dataset, error) {
	type axis struct {
		dim    string
		values []float64
	}
	var axes []axis
	for _, hc := range domain.HorizontalCoords {
		field, ok := ds.Var(hc.Field)
		if !ok {
			continue
		}
		partner, err := ds.MustVar(hc.Partner)
		if err != nil {
			return nil, fmt.Errorf("seam mask for %s: %w", hc.Field, err)
		}
		if !slices.Equal(field.Dims(), partner.Dims()) {
			return nil, fmt.Errorf("%s spans %v but %s spans %v: %w",
				hc.Field, field.Dims(), hc.Partner, partner.Dims(), domain.ErrMergeConflict)
		}

		along, across := field.Values(), partner.Values()
		keep := make([]bool, len(along))
		for i := range along {
			keep[i] = along[i] != 0 && across[i] != 0
		}
		masked, err := field.Where(keep)
		if err != nil {
			return nil, err
		}
		mean, err := masked.NanMean(hc.Orthogonal)
		if err != nil {
			return nil, fmt.Errorf("averaging %s along %s: %w", hc.Field, hc.Orthogonal, err)
		}
		if dims := mean.Dims(); len(dims) != 1 || dims[0] != hc.Dim {
			return nil, fmt.Errorf("%s reduces to dims %v, want [%s]: %w", hc.Field, dims, hc.Dim, domain.ErrStaggering)
		}
		axes = append(axes, axis{dim: hc.Dim, values: mean.Values()})
	}

	var err error
	for _, a := range axes {
		if ds, err = ds.UpdateCoord(a.dim, a.values); err != nil {
			return nil, err
		}
	}
	ds = ds.DropIfPresent(domain.HorizontalCoordFields...)

	indexers := make(map[string][]int, len(domain.HorizontalCoords))
	for _, hc := range domain.HorizontalCoords {
		idx, err := ds.FinitePositions(hc.Dim)
		if err != nil {
			return nil, err
		}
		indexers[hc.Dim] = idx
	}
	return ds.ISel(indexers)
}

// addTimeMidpoints adds a time_midp axis halfway between consecutive time steps.
// Datasets with fewer than two time steps are returned unchanged.
func addTimeMidpoints(ds *dataset.Dataset) (*dataset.Dataset, error) {
	t, ok := ds.Coord(domain.DimTime)
	if !ok {
		return nil, fmt.Errorf("coordinate %s: %w", domain.DimTime, domain.ErrNotFound)
	}
	if len(t) < 2 {
		return ds, nil
	}
	mid := make([]float64, len(t)-1)
	for i := range mid {
		mid[i] = (t[i] + t[i+1]) / 2
	}
	ds, err := ds.With(dataset.NewCoord(domain.DimTimeMidp, mid, dataset.Attrs{
		domain.AttrAxis:     domain.DimTime,
		domain.AttrShift:    0.5,
		domain.AttrLongName: "time at midpoints",
	}))
	if err != nil {
		return nil, err
	}
	return ds.UpdateAttrs(domain.DimTime, dataset.Attrs{domain.AttrAxis: domain.DimTime})
}

// tagAxes marks X, Y and Z as axis centres and derives the half-cell shift of every
// staggered dimension from its minimum relative to the centre's minimum. When the two
// minimums are equal the shift is left off, which the grid rejects.
func tagAxes(ds *dataset.Dataset) (*dataset.Dataset, error) {
	var err error
	for _, dim := range []string{domain.DimZ, domain.DimX, domain.DimY} {
		if ds, err = ds.UpdateAttrs(dim, dataset.Attrs{domain.AttrAxis: dim}); err != nil {
			return nil, err
		}
	}
	for _, dim := range domain.ShiftedDims {
		center := dim[:1]
		values, ok := ds.Coord(dim)
		if !ok {
			return nil, fmt.Errorf("coordinate %s: %w", dim, domain.ErrNotFound)
		}
		centerValues, ok := ds.Coord(center)
		if !ok {
			return nil, fmt.Errorf("coordinate %s: %w", center, domain.ErrNotFound)
		}
		if len(values) == 0 || len(centerValues) == 0 {
			return nil, fmt.Errorf("cannot compare empty %s and %s: %w", dim, center, domain.ErrStaggering)
		}

		attrs := dataset.Attrs{domain.AttrAxis: center}
		switch lo, centerLo := floats.Min(values), floats.Min(centerValues); {
		case lo < centerLo:
			attrs[domain.AttrShift] = -0.5
		case lo > centerLo:
			attrs[domain.AttrShift] = 0.5
		}
		if ds, err = ds.UpdateAttrs(dim, attrs); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
