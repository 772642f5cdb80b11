package dataset

import (
	"fmt"
	"slices"

	"go.ngs.io/ocean-grid/internal/domain"
)

// Merge combines datasets on shared dimensions. Dimension sizes must agree and a
// variable present in several datasets must be identical in all of them. Attributes
// of the first occurrence win.
func Merge(sets ...*Dataset) (*Dataset, error) {
	if len(sets) == 0 {
		return empty(nil), nil
	}
	out := sets[0].clone()
	for _, ds := range sets[1:] {
		if err := checkSizes(out, ds); err != nil {
			return nil, err
		}
		for k, v := range ds.attrs {
			if _, ok := out.attrs[k]; !ok {
				out.attrs[k] = v
			}
		}
		for _, name := range ds.order {
			v := ds.vars[name]
			if prev, ok := out.vars[name]; ok {
				if !prev.Equal(v) {
					return nil, fmt.Errorf("variable %s differs between sources: %w", name, domain.ErrMergeConflict)
				}
				continue
			}
			if err := out.put(v); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Overlay places top over base. Both must have the same dimension sizes where they
// share dimensions. Variables of top replace those of base, except dimension
// coordinates base already has: base is expected to be positionally aligned to top,
// so its coordinate labels are kept.
func Overlay(base, top *Dataset) (*Dataset, error) {
	if err := checkSizes(base, top); err != nil {
		return nil, err
	}
	out := base.clone()
	for k, v := range top.attrs {
		out.attrs[k] = v
	}
	for _, name := range top.order {
		if top.IsCoord(name) && base.IsCoord(name) {
			continue
		}
		if err := out.put(top.vars[name]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Concat joins datasets end to end along dim. Variables spanning dim are concatenated;
// the others must be identical in every part.
func Concat(dim string, parts ...*Dataset) (*Dataset, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("concat along %s: no datasets", dim)
	}
	first := parts[0]
	for i, p := range parts {
		if _, ok := p.sizes[dim]; !ok {
			return nil, fmt.Errorf("concat part %d has no dimension %s: %w", i, dim, domain.ErrNotFound)
		}
		if !sameNames(p.order, first.order) {
			return nil, fmt.Errorf("concat part %d has variables %v, want %v: %w", i, p.order, first.order, domain.ErrMergeConflict)
		}
	}
	out := empty(first.attrs.Clone())
	for _, name := range first.order {
		v := first.vars[name]
		if !v.HasDim(dim) {
			for i, p := range parts[1:] {
				if !p.vars[name].Equal(v) {
					return nil, fmt.Errorf("variable %s differs in concat part %d: %w", name, i+1, domain.ErrMergeConflict)
				}
			}
			if err := out.put(v); err != nil {
				return nil, err
			}
			continue
		}
		pieces := make([]*Variable, len(parts))
		for i, p := range parts {
			pieces[i] = p.vars[name]
		}
		joined, err := concatVariables(dim, pieces)
		if err != nil {
			return nil, err
		}
		if err := out.put(joined); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func concatVariables(dim string, pieces []*Variable) (*Variable, error) {
	first := pieces[0]
	axis := first.Axis(dim)
	total := 0
	for i, p := range pieces {
		if !slices.Equal(p.dims, first.dims) {
			return nil, fmt.Errorf("variable %s: dims %v in part %d, want %v: %w", first.name, p.dims, i, first.dims, domain.ErrMergeConflict)
		}
		for k := range p.shape {
			if k != axis && p.shape[k] != first.shape[k] {
				return nil, fmt.Errorf("variable %s: shape %v in part %d, want %v: %w", first.name, p.shape, i, first.shape, domain.ErrMergeConflict)
			}
		}
		total += p.shape[axis]
	}
	outer, _, inner := first.split(axis)
	data := make([]float64, 0, outer*total*inner)
	for o := 0; o < outer; o++ {
		for _, p := range pieces {
			block := p.shape[axis] * inner
			data = append(data, p.data[o*block:(o+1)*block]...)
		}
	}
	shape := slices.Clone(first.shape)
	shape[axis] = total
	return NewVariable(first.name, first.dims, shape, data, first.attrs.Clone())
}

func checkSizes(a, b *Dataset) error {
	for _, d := range b.dims {
		if n, ok := a.sizes[d]; ok && n != b.sizes[d] {
			return fmt.Errorf("dimension %s has sizes %d and %d: %w", d, n, b.sizes[d], domain.ErrMergeConflict)
		}
	}
	return nil
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
