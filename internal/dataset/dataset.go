package dataset

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"go.ngs.io/ocean-grid/internal/domain"
)

// Dataset is an ordered collection of variables over shared dimensions.
// A dataset is never modified after construction; every operation returns a new one.
type Dataset struct {
	sizes map[string]int
	dims  []string // Insertion order.
	vars  map[string]*Variable
	order []string // Insertion order.
	attrs Attrs
}

// New creates a dataset from variables. Dimension sizes must agree across variables.
func New(attrs Attrs, vars ...*Variable) (*Dataset, error) {
	ds := empty(attrs)
	for _, v := range vars {
		if err := ds.put(v); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func empty(attrs Attrs) *Dataset {
	if attrs == nil {
		attrs = Attrs{}
	}
	return &Dataset{
		sizes: make(map[string]int),
		vars:  make(map[string]*Variable),
		attrs: attrs,
	}
}

// put adds or replaces v in place. Only used while a dataset is being built.
func (ds *Dataset) put(v *Variable) error {
	for i, d := range v.dims {
		if n, ok := ds.sizes[d]; ok {
			if n != v.shape[i] {
				return fmt.Errorf("variable %s: dimension %s has size %d, dataset has %d: %w",
					v.name, d, v.shape[i], n, domain.ErrMergeConflict)
			}
			continue
		}
		ds.sizes[d] = v.shape[i]
		ds.dims = append(ds.dims, d)
	}
	if _, ok := ds.vars[v.name]; !ok {
		ds.order = append(ds.order, v.name)
	}
	ds.vars[v.name] = v
	return nil
}

// clone returns a shallow copy that can be modified with put.
func (ds *Dataset) clone() *Dataset {
	out := &Dataset{
		sizes: make(map[string]int, len(ds.sizes)),
		dims:  slices.Clone(ds.dims),
		vars:  make(map[string]*Variable, len(ds.vars)),
		order: slices.Clone(ds.order),
		attrs: ds.attrs.Clone(),
	}
	for k, v := range ds.sizes {
		out.sizes[k] = v
	}
	for k, v := range ds.vars {
		out.vars[k] = v
	}
	return out
}

// Dims returns dimension names in insertion order.
func (ds *Dataset) Dims() []string { return slices.Clone(ds.dims) }

// Size returns the length of dim.
func (ds *Dataset) Size(dim string) (int, bool) {
	n, ok := ds.sizes[dim]
	return n, ok
}

// Sizes returns a copy of all dimension sizes.
func (ds *Dataset) Sizes() map[string]int {
	out := make(map[string]int, len(ds.sizes))
	for k, v := range ds.sizes {
		out[k] = v
	}
	return out
}

// Names returns variable names in insertion order, coordinates included.
func (ds *Dataset) Names() []string { return slices.Clone(ds.order) }

// Var returns the named variable.
func (ds *Dataset) Var(name string) (*Variable, bool) {
	v, ok := ds.vars[name]
	return v, ok
}

// MustVar returns the named variable or an ErrNotFound error.
func (ds *Dataset) MustVar(name string) (*Variable, error) {
	v, ok := ds.vars[name]
	if !ok {
		return nil, fmt.Errorf("variable %s: %w", name, domain.ErrNotFound)
	}
	return v, nil
}

// Has reports whether a variable named name exists.
func (ds *Dataset) Has(name string) bool {
	_, ok := ds.vars[name]
	return ok
}

// IsCoord reports whether name is a dimension coordinate.
func (ds *Dataset) IsCoord(name string) bool {
	v, ok := ds.vars[name]
	return ok && len(v.dims) == 1 && v.dims[0] == name
}

// Coord returns a copy of the coordinate values of dim.
func (ds *Dataset) Coord(dim string) ([]float64, bool) {
	if !ds.IsCoord(dim) {
		return nil, false
	}
	return ds.vars[dim].Values(), true
}

// Attrs returns a copy of the dataset attributes.
func (ds *Dataset) Attrs() Attrs { return ds.attrs.Clone() }

// StringAttr returns a string attribute of a variable.
func (ds *Dataset) StringAttr(variable, key string) (string, bool) {
	v, ok := ds.vars[variable]
	if !ok {
		return "", false
	}
	return v.attrs.String(key)
}

// With returns a dataset with v added, replacing any variable of the same name.
func (ds *Dataset) With(vars ...*Variable) (*Dataset, error) {
	out := ds.clone()
	for _, v := range vars {
		if err := out.put(v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// WithAttrs returns a dataset whose attributes are updated with attrs.
func (ds *Dataset) WithAttrs(attrs Attrs) *Dataset {
	out := ds.clone()
	for k, v := range attrs {
		out.attrs[k] = v
	}
	return out
}

// UpdateAttrs returns a dataset in which the named variable's attributes are updated.
func (ds *Dataset) UpdateAttrs(name string, attrs Attrs) (*Dataset, error) {
	v, err := ds.MustVar(name)
	if err != nil {
		return nil, err
	}
	return ds.With(v.WithAttrs(attrs))
}

// UpdateCoord returns a dataset in which the coordinate of dim holds values.
// The coordinate's attributes are kept; a missing coordinate is created.
func (ds *Dataset) UpdateCoord(dim string, values []float64) (*Dataset, error) {
	n, ok := ds.sizes[dim]
	if !ok {
		return nil, fmt.Errorf("dimension %s: %w", dim, domain.ErrNotFound)
	}
	if len(values) != n {
		return nil, fmt.Errorf("coordinate %s: %d values for dimension of size %d", dim, len(values), n)
	}
	attrs := Attrs{}
	if v, ok := ds.vars[dim]; ok {
		attrs = v.attrs.Clone()
	}
	return ds.With(NewCoord(dim, slices.Clone(values), attrs))
}

// Drop returns a dataset without the named variables. Unknown names are an error.
func (ds *Dataset) Drop(names ...string) (*Dataset, error) {
	for _, name := range names {
		if !ds.Has(name) {
			return nil, fmt.Errorf("drop %s: %w", name, domain.ErrNotFound)
		}
	}
	return ds.DropIfPresent(names...), nil
}

// DropIfPresent returns a dataset without whichever of the named variables exist.
// Dimensions no longer spanned by any variable are removed.
func (ds *Dataset) DropIfPresent(names ...string) *Dataset {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := empty(ds.attrs.Clone())
	for _, name := range ds.order {
		if drop[name] {
			continue
		}
		_ = out.put(ds.vars[name])
	}
	// Keep original dimension order.
	out.dims = slices.DeleteFunc(slices.Clone(ds.dims), func(d string) bool {
		_, ok := out.sizes[d]
		return !ok
	})
	return out
}

// ISel selects positions along dimensions. Each index slice may reorder or repeat
// positions; dimensions not listed are untouched.
func (ds *Dataset) ISel(indexers map[string][]int) (*Dataset, error) {
	for dim, idx := range indexers {
		n, ok := ds.sizes[dim]
		if !ok {
			return nil, fmt.Errorf("isel dimension %s: %w", dim, domain.ErrNotFound)
		}
		for _, i := range idx {
			if i < 0 || i >= n {
				return nil, fmt.Errorf("isel %s: index %d out of range [0, %d)", dim, i, n)
			}
		}
	}
	dims := sortedKeys(indexers)
	out := empty(ds.attrs.Clone())
	for _, name := range ds.order {
		v := ds.vars[name]
		for _, dim := range dims {
			if !v.HasDim(dim) {
				continue
			}
			var err error
			if v, err = v.Take(dim, indexers[dim]); err != nil {
				return nil, err
			}
		}
		if err := out.put(v); err != nil {
			return nil, err
		}
	}
	out.dims = slices.Clone(ds.dims)
	for dim, idx := range indexers {
		out.sizes[dim] = len(idx)
	}
	for dim, n := range ds.sizes {
		if _, ok := out.sizes[dim]; !ok {
			out.sizes[dim] = n
		}
	}
	return out, nil
}

// FinitePositions returns the positions of dim whose coordinate is not NaN.
func (ds *Dataset) FinitePositions(dim string) ([]int, error) {
	values, ok := ds.Coord(dim)
	if !ok {
		return nil, fmt.Errorf("coordinate %s: %w", dim, domain.ErrNotFound)
	}
	idx := make([]int, 0, len(values))
	for i, x := range values {
		if !math.IsNaN(x) {
			idx = append(idx, i)
		}
	}
	return idx, nil
}

// Squeeze removes a size-1 dimension from every variable and drops its coordinate.
func (ds *Dataset) Squeeze(dim string) (*Dataset, error) {
	n, ok := ds.sizes[dim]
	if !ok {
		return nil, fmt.Errorf("squeeze %s: %w", dim, domain.ErrNotFound)
	}
	if n != 1 {
		return nil, fmt.Errorf("squeeze %s: dimension has size %d, want 1", dim, n)
	}
	out := empty(ds.attrs.Clone())
	for _, name := range ds.order {
		v := ds.vars[name]
		if name == dim && ds.IsCoord(name) {
			continue
		}
		if axis := v.Axis(dim); axis >= 0 {
			sq, err := NewVariable(v.name,
				slices.Delete(slices.Clone(v.dims), axis, axis+1),
				slices.Delete(slices.Clone(v.shape), axis, axis+1),
				v.data, v.attrs)
			if err != nil {
				return nil, err
			}
			v = sq
		}
		if err := out.put(v); err != nil {
			return nil, err
		}
	}
	out.dims = slices.DeleteFunc(slices.Clone(ds.dims), func(d string) bool {
		_, ok := out.sizes[d]
		return !ok
	})
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
