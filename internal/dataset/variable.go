// Package dataset provides an immutable labeled multi-dimensional dataset: named
// float64 arrays over named dimensions, with per-variable and dataset attributes.
package dataset

import (
	"fmt"
	"math"
	"slices"

	"go.ngs.io/ocean-grid/internal/domain"
)

// Attrs holds free-form metadata. Values are string, float64 or []float64.
type Attrs map[string]any

// Clone returns a shallow copy of a.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		if fs, ok := v.([]float64); ok {
			v = slices.Clone(fs)
		}
		out[k] = v
	}
	return out
}

// String returns the string value stored under key.
func (a Attrs) String(key string) (string, bool) {
	s, ok := a[key].(string)
	return s, ok
}

// Float returns the numeric value stored under key.
func (a Attrs) Float(key string) (float64, bool) {
	switch v := a[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case []float64:
		if len(v) == 1 {
			return v[0], true
		}
	}
	return 0, false
}

// Variable is an N-dimensional array labeled by dimension names.
// Data is stored row-major; the last dimension varies fastest.
type Variable struct {
	name  string
	dims  []string
	shape []int
	data  []float64
	attrs Attrs
}

// NewVariable creates a variable. The data slice is owned by the variable afterwards.
func NewVariable(name string, dims []string, shape []int, data []float64, attrs Attrs) (*Variable, error) {
	if len(dims) != len(shape) {
		return nil, fmt.Errorf("variable %s: %d dims but %d sizes", name, len(dims), len(shape))
	}
	seen := make(map[string]bool, len(dims))
	for _, d := range dims {
		if seen[d] {
			return nil, fmt.Errorf("variable %s: repeated dimension %s", name, d)
		}
		seen[d] = true
	}
	if n := product(shape); n != len(data) {
		return nil, fmt.Errorf("variable %s: shape %v needs %d values, got %d", name, shape, n, len(data))
	}
	if attrs == nil {
		attrs = Attrs{}
	}
	return &Variable{
		name:  name,
		dims:  slices.Clone(dims),
		shape: slices.Clone(shape),
		data:  data,
		attrs: attrs,
	}, nil
}

// NewCoord creates a 1-D dimension coordinate named after its dimension.
func NewCoord(dim string, values []float64, attrs Attrs) *Variable {
	v, _ := NewVariable(dim, []string{dim}, []int{len(values)}, values, attrs)
	return v
}

// Name returns the variable name.
func (v *Variable) Name() string { return v.name }

// Dims returns the dimension names.
func (v *Variable) Dims() []string { return slices.Clone(v.dims) }

// Shape returns the dimension sizes.
func (v *Variable) Shape() []int { return slices.Clone(v.shape) }

// Len returns the number of elements.
func (v *Variable) Len() int { return len(v.data) }

// Values returns a copy of the data.
func (v *Variable) Values() []float64 { return slices.Clone(v.data) }

// At returns the element at a multi-index.
func (v *Variable) At(idx ...int) float64 {
	off := 0
	for i, n := range v.shape {
		off = off*n + idx[i]
	}
	return v.data[off]
}

// Attrs returns a copy of the attributes.
func (v *Variable) Attrs() Attrs { return v.attrs.Clone() }

// Axis returns the position of dim within the variable's dimensions, or -1.
func (v *Variable) Axis(dim string) int {
	return slices.Index(v.dims, dim)
}

// HasDim reports whether the variable spans dim.
func (v *Variable) HasDim(dim string) bool { return v.Axis(dim) >= 0 }

// WithName returns a copy of v under a new name.
func (v *Variable) WithName(name string) *Variable {
	out := *v
	out.name = name
	return &out
}

// WithAttrs returns a copy of v whose attributes are updated with attrs.
func (v *Variable) WithAttrs(attrs Attrs) *Variable {
	merged := v.attrs.Clone()
	for k, val := range attrs {
		merged[k] = val
	}
	out := *v
	out.attrs = merged
	return &out
}

// WithValues returns a copy of v holding values, which must have the same length.
func (v *Variable) WithValues(values []float64) (*Variable, error) {
	if len(values) != len(v.data) {
		return nil, fmt.Errorf("variable %s: %d values for %d elements", v.name, len(values), len(v.data))
	}
	out := *v
	out.data = values
	return &out, nil
}

// Map returns a copy of v with f applied to every element.
func (v *Variable) Map(f func(float64) float64) *Variable {
	data := make([]float64, len(v.data))
	for i, x := range v.data {
		data[i] = f(x)
	}
	out := *v
	out.data = data
	return &out
}

// Where returns a copy of v with NaN wherever keep is false. keep must match v's length.
func (v *Variable) Where(keep []bool) (*Variable, error) {
	if len(keep) != len(v.data) {
		return nil, fmt.Errorf("variable %s: mask of %d for %d elements", v.name, len(keep), len(v.data))
	}
	data := make([]float64, len(v.data))
	for i, x := range v.data {
		if keep[i] {
			data[i] = x
		} else {
			data[i] = math.NaN()
		}
	}
	out := *v
	out.data = data
	return &out, nil
}

// NanMean averages v along dim, skipping NaN. Positions with no finite value become NaN.
func (v *Variable) NanMean(dim string) (*Variable, error) {
	axis := v.Axis(dim)
	if axis < 0 {
		return nil, fmt.Errorf("variable %s has no dimension %s: %w", v.name, dim, domain.ErrNotFound)
	}
	outer, n, inner := v.split(axis)
	data := make([]float64, outer*inner)
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			var sum float64
			var count int
			for k := 0; k < n; k++ {
				x := v.data[(o*n+k)*inner+in]
				if math.IsNaN(x) {
					continue
				}
				sum += x
				count++
			}
			if count == 0 {
				data[o*inner+in] = math.NaN()
			} else {
				data[o*inner+in] = sum / float64(count)
			}
		}
	}
	dims := slices.Delete(slices.Clone(v.dims), axis, axis+1)
	shape := slices.Delete(slices.Clone(v.shape), axis, axis+1)
	return NewVariable(v.name, dims, shape, data, v.attrs.Clone())
}

// Take selects positions idx along dim.
func (v *Variable) Take(dim string, idx []int) (*Variable, error) {
	axis := v.Axis(dim)
	if axis < 0 {
		return nil, fmt.Errorf("variable %s has no dimension %s: %w", v.name, dim, domain.ErrNotFound)
	}
	outer, n, inner := v.split(axis)
	for _, i := range idx {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("variable %s: index %d out of range for %s of size %d", v.name, i, dim, n)
		}
	}
	data := make([]float64, 0, outer*len(idx)*inner)
	for o := 0; o < outer; o++ {
		for _, i := range idx {
			start := (o*n + i) * inner
			data = append(data, v.data[start:start+inner]...)
		}
	}
	shape := slices.Clone(v.shape)
	shape[axis] = len(idx)
	return NewVariable(v.name, slices.Clone(v.dims), shape, data, v.attrs.Clone())
}

// Equal reports whether v and o have the same dims, shape and values. NaN equals NaN.
func (v *Variable) Equal(o *Variable) bool {
	if !slices.Equal(v.dims, o.dims) || !slices.Equal(v.shape, o.shape) {
		return false
	}
	for i, x := range v.data {
		y := o.data[i]
		if x != y && !(math.IsNaN(x) && math.IsNaN(y)) {
			return false
		}
	}
	return true
}

// split returns the element counts before, along and after axis.
func (v *Variable) split(axis int) (outer, n, inner int) {
	return product(v.shape[:axis]), v.shape[axis], product(v.shape[axis+1:])
}

func product(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
