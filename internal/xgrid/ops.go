package xgrid

import (
	"fmt"

	"go.ngs.io/ocean-grid/internal/dataset"
	"go.ngs.io/ocean-grid/internal/domain"
)

// Interp averages adjacent points of v along axis, moving it to the default target
// position: centre variables move to the axis's staggered dimension, staggered
// variables move to the centre.
func (g *Grid) Interp(v *dataset.Variable, axis string) (*dataset.Variable, error) {
	return g.apply(v, axis, "interp", func(a, b float64) float64 { return (a + b) / 2 })
}

// Diff takes the difference of adjacent points of v along axis, moving it to the
// default target position.
func (g *Grid) Diff(v *dataset.Variable, axis string) (*dataset.Variable, error) {
	return g.apply(v, axis, "diff", func(a, b float64) float64 { return b - a })
}

func (g *Grid) apply(v *dataset.Variable, axisName, op string, f func(a, b float64) float64) (*dataset.Variable, error) {
	axis, ok := g.axes[axisName]
	if !ok {
		return nil, fmt.Errorf("%s: axis %s: %w", op, axisName, domain.ErrNotFound)
	}
	var (
		from    Position
		fromDim string
		found   bool
	)
	for _, d := range v.Dims() {
		if p, ok := axis.position(d); ok {
			if found {
				return nil, fmt.Errorf("%s %s: spans both %s and %s of axis %s: %w",
					op, v.Name(), fromDim, d, axisName, domain.ErrInvalidArgument)
			}
			from, fromDim, found = p, d, true
		}
	}
	if !found {
		return nil, fmt.Errorf("%s %s: no dimension on axis %s: %w", op, v.Name(), axisName, domain.ErrInvalidArgument)
	}
	to, ok := axis.defaultTarget(from)
	if !ok {
		return nil, fmt.Errorf("%s %s: axis %s has no staggered dimension: %w", op, v.Name(), axisName, domain.ErrStaggering)
	}
	toDim := axis.coords[to]
	nIn, nOut := axis.sizes[from], axis.sizes[to]

	dims := v.Dims()
	shape := v.Shape()
	k := v.Axis(fromDim)
	outer, inner := 1, 1
	for i := 0; i < k; i++ {
		outer *= shape[i]
	}
	for i := k + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	src := v.Values()
	at := func(o, i, in int) float64 {
		i, ok := g.wrap(i, nIn)
		if !ok {
			return g.opts.FillValue
		}
		return src[(o*nIn+i)*inner+in]
	}

	// Positions are compared in half-cell units from centre point 0. Output point i
	// sits at 2i+oOut and is bracketed by input points lo and lo+1.
	oIn, oOut := from.halfOffset(), to.halfOffset()
	data := make([]float64, outer*nOut*inner)
	for o := 0; o < outer; o++ {
		for i := 0; i < nOut; i++ {
			lo := floorDiv(2*i+oOut-1-oIn, 2)
			for in := 0; in < inner; in++ {
				data[(o*nOut+i)*inner+in] = f(at(o, lo, in), at(o, lo+1, in))
			}
		}
	}
	dims[k] = toDim
	shape[k] = nOut
	return dataset.NewVariable(v.Name(), dims, shape, data, v.Attrs())
}

// wrap maps an index beyond [0, n) according to the boundary rule. It reports false
// when the fill value should be used instead.
func (g *Grid) wrap(i, n int) (int, bool) {
	if i >= 0 && i < n {
		return i, true
	}
	if g.opts.Periodic {
		return ((i % n) + n) % n, true
	}
	if g.opts.Boundary == Fill {
		return 0, false
	}
	if i < 0 {
		return 0, true
	}
	return n - 1, true
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
