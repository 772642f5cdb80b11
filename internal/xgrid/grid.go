// Package xgrid builds staggered (Arakawa C) grid operators from the axis metadata
// attached to a dataset's dimension coordinates.
//
// Each dimension coordinate tagged with an "axis" attribute belongs to that axis. The
// untagged-shift dimension is the cell centre; every other dimension on the axis must
// carry "c_grid_axis_shift" of -0.5 or +0.5, and its position (left, right, outer or
// inner) follows from the shift sign and its size relative to the centre.
package xgrid

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"go.ngs.io/ocean-grid/internal/dataset"
	"go.ngs.io/ocean-grid/internal/domain"
)

// Position is the location of a dimension's points within a cell.
type Position int

// Cell positions.
const (
	Center Position = iota
	Left            // Shift -0.5, same size as centre.
	Right           // Shift +0.5, same size as centre.
	Outer           // One more point than centre, bracketing every cell.
	Inner           // One fewer point than centre, between interior cells.
)

func (p Position) String() string {
	switch p {
	case Center:
		return "center"
	case Left:
		return "left"
	case Right:
		return "right"
	case Outer:
		return "outer"
	case Inner:
		return "inner"
	default:
		return fmt.Sprintf("Position(%d)", int(p))
	}
}

// halfOffset is the position of point 0 relative to centre point 0, in half cells.
func (p Position) halfOffset() int {
	switch p {
	case Left, Outer:
		return -1
	case Right, Inner:
		return 1
	default:
		return 0
	}
}

// Boundary selects how values beyond the last point are supplied on non-periodic axes.
type Boundary int

// Boundary conditions.
const (
	Extend Boundary = iota // Repeat the edge value.
	Fill                   // Use Options.FillValue.
)

// ParseBoundary converts a configuration name to a Boundary.
func ParseBoundary(name string) (Boundary, error) {
	switch strings.ToLower(name) {
	case "", "extend":
		return Extend, nil
	case "fill":
		return Fill, nil
	default:
		return 0, fmt.Errorf("unknown boundary %q: %w", name, domain.ErrInvalidArgument)
	}
}

// Options configures grid construction.
type Options struct {
	Periodic  bool
	Boundary  Boundary
	FillValue float64
}

// Axis is one logical grid direction and the dimensions that sample it.
type Axis struct {
	name   string
	coords map[Position]string
	sizes  map[Position]int
}

// Name returns the axis name.
func (a *Axis) Name() string { return a.name }

// Dim returns the dimension at position p.
func (a *Axis) Dim(p Position) (string, bool) {
	d, ok := a.coords[p]
	return d, ok
}

// Positions returns the positions present on the axis, centre first.
func (a *Axis) Positions() []Position {
	ps := make([]Position, 0, len(a.coords))
	for p := range a.coords {
		ps = append(ps, p)
	}
	slices.Sort(ps)
	return ps
}

func (a *Axis) position(dim string) (Position, bool) {
	for p, d := range a.coords {
		if d == dim {
			return p, true
		}
	}
	return 0, false
}

// defaultTarget returns where a shift from p lands when no target is requested.
func (a *Axis) defaultTarget(p Position) (Position, bool) {
	if p != Center {
		return Center, true
	}
	for _, q := range []Position{Left, Right, Outer, Inner} {
		if _, ok := a.coords[q]; ok {
			return q, true
		}
	}
	return 0, false
}

// Grid is a read-only set of axes derived from dataset metadata.
type Grid struct {
	axes map[string]*Axis
	opts Options
}

// New builds a grid from the axis attributes of ds's dimension coordinates.
func New(ds *dataset.Dataset, opts Options) (*Grid, error) {
	type member struct {
		dim   string
		size  int
		shift float64
		has   bool
	}
	members := make(map[string][]member)
	for _, dim := range ds.Dims() {
		v, ok := ds.Var(dim)
		if !ok || !ds.IsCoord(dim) {
			continue
		}
		attrs := v.Attrs()
		name, ok := attrs.String(domain.AttrAxis)
		if !ok {
			continue
		}
		size, _ := ds.Size(dim)
		shift, has := attrs.Float(domain.AttrShift)
		members[name] = append(members[name], member{dim: dim, size: size, shift: shift, has: has})
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("no dimension carries an %q attribute: %w", domain.AttrAxis, domain.ErrStaggering)
	}

	g := &Grid{axes: make(map[string]*Axis, len(members)), opts: opts}
	for name, ms := range members {
		var centers []member
		for _, m := range ms {
			if !m.has {
				centers = append(centers, m)
			}
		}
		switch len(centers) {
		case 0:
			return nil, fmt.Errorf("axis %s has no centre dimension: %w", name, domain.ErrStaggering)
		case 1:
		default:
			dims := make([]string, len(centers))
			for i, c := range centers {
				dims[i] = c.dim
			}
			return nil, fmt.Errorf("axis %s: dimensions %v have no %s: %w", name, dims, domain.AttrShift, domain.ErrStaggering)
		}
		center := centers[0]
		axis := &Axis{
			name:   name,
			coords: map[Position]string{Center: center.dim},
			sizes:  map[Position]int{Center: center.size},
		}
		for _, m := range ms {
			if !m.has {
				continue
			}
			pos, err := classify(m.shift, m.size, center.size)
			if err != nil {
				return nil, fmt.Errorf("axis %s dimension %s: %w", name, m.dim, err)
			}
			if prev, ok := axis.coords[pos]; ok {
				return nil, fmt.Errorf("axis %s: %s and %s both at %s: %w", name, prev, m.dim, pos, domain.ErrStaggering)
			}
			axis.coords[pos] = m.dim
			axis.sizes[pos] = m.size
		}
		g.axes[name] = axis
	}
	return g, nil
}

func classify(shift float64, size, centerSize int) (Position, error) {
	if shift != 0.5 && shift != -0.5 {
		return 0, fmt.Errorf("%s is %v, want -0.5 or 0.5: %w", domain.AttrShift, shift, domain.ErrStaggering)
	}
	switch size {
	case centerSize:
		if shift < 0 {
			return Left, nil
		}
		return Right, nil
	case centerSize + 1:
		return Outer, nil
	case centerSize - 1:
		return Inner, nil
	default:
		return 0, fmt.Errorf("size %d does not stagger a centre of size %d: %w", size, centerSize, domain.ErrStaggering)
	}
}

// Axes returns axis names in sorted order.
func (g *Grid) Axes() []string {
	names := make([]string, 0, len(g.axes))
	for n := range g.axes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Axis returns the named axis.
func (g *Grid) Axis(name string) (*Axis, bool) {
	a, ok := g.axes[name]
	return a, ok
}

// Periodic reports whether axes wrap around.
func (g *Grid) Periodic() bool { return g.opts.Periodic }

// String summarizes the grid one axis per block.
func (g *Grid) String() string {
	var b strings.Builder
	b.WriteString("<xgrid.Grid>")
	periodic := "not periodic"
	if g.opts.Periodic {
		periodic = "periodic"
	}
	for _, name := range g.Axes() {
		a := g.axes[name]
		fmt.Fprintf(&b, "\n%s Axis (%s):", name, periodic)
		for _, p := range a.Positions() {
			target, ok := a.defaultTarget(p)
			if !ok {
				fmt.Fprintf(&b, "\n  * %-7s %s", p, a.coords[p])
				continue
			}
			fmt.Fprintf(&b, "\n  * %-7s %s --> %s", p, a.coords[p], target)
		}
	}
	return b.String()
}
