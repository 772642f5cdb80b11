package dataset

import (
	"fmt"
	"slices"

	"go.ngs.io/ocean-grid/internal/domain"
)

// Rename maps a variable and/or dimension name to a new name.
type Rename struct {
	From string
	To   string
}

// Rename applies all renames at once to variable and dimension names.
//
// A target may not already exist unless it is itself renamed away in the same call.
// Several sources may share one target when their dimension sizes agree; the variable
// of the earliest listed source is kept.
func (ds *Dataset) Rename(renames ...Rename) (*Dataset, error) {
	mapping := make(map[string]string, len(renames))
	rank := make(map[string]int, len(renames))
	for i, r := range renames {
		_, isDim := ds.sizes[r.From]
		if !ds.Has(r.From) && !isDim {
			return nil, fmt.Errorf("rename %s: %w", r.From, domain.ErrNotFound)
		}
		if prev, ok := mapping[r.From]; ok && prev != r.To {
			return nil, fmt.Errorf("rename %s: renamed to both %s and %s: %w", r.From, prev, r.To, domain.ErrNameConflict)
		}
		mapping[r.From] = r.To
		rank[r.From] = i
	}
	for _, r := range renames {
		_, isDim := ds.sizes[r.To]
		if (ds.Has(r.To) || isDim) && mapping[r.To] == "" && r.To != r.From {
			return nil, fmt.Errorf("rename %s to %s: target exists: %w", r.From, r.To, domain.ErrNameConflict)
		}
	}
	newName := func(n string) string {
		if to, ok := mapping[n]; ok {
			return to
		}
		return n
	}

	// Dimensions folded into one target must agree in size.
	sizes := make(map[string]int, len(ds.sizes))
	for _, d := range ds.dims {
		to := newName(d)
		if n, ok := sizes[to]; ok && n != ds.sizes[d] {
			return nil, fmt.Errorf("rename %s to %s: size %d differs from %d: %w",
				d, to, ds.sizes[d], n, domain.ErrNameConflict)
		}
		sizes[to] = ds.sizes[d]
	}

	type candidate struct {
		v    *Variable
		rank int
		pos  int
	}
	winners := make(map[string]candidate, len(ds.vars))
	for pos, name := range ds.order {
		v := ds.vars[name]
		dims := make([]string, len(v.dims))
		for i, d := range v.dims {
			dims[i] = newName(d)
		}
		renamed, err := NewVariable(newName(name), dims, v.shape, v.data, v.attrs)
		if err != nil {
			return nil, fmt.Errorf("rename: %w", err)
		}
		r, ok := rank[name]
		if !ok {
			r = len(renames)
		}
		c := candidate{v: renamed, rank: r, pos: pos}
		if prev, ok := winners[renamed.name]; ok && prev.rank <= c.rank {
			continue
		}
		winners[renamed.name] = c
	}

	kept := make([]candidate, 0, len(winners))
	for _, c := range winners {
		kept = append(kept, c)
	}
	slices.SortFunc(kept, func(a, b candidate) int { return a.pos - b.pos })

	out := empty(ds.attrs.Clone())
	for _, c := range kept {
		if err := out.put(c.v); err != nil {
			return nil, err
		}
	}
	var dims []string
	for _, d := range ds.dims {
		to := newName(d)
		if !slices.Contains(dims, to) {
			dims = append(dims, to)
		}
		out.sizes[to] = sizes[to]
	}
	out.dims = dims
	return out, nil
}
