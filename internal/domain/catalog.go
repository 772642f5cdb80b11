package domain

// CatalogEntry describes one variable of an assembled dataset.
type CatalogEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Units       string `json:"units"`
}

// AttrSource is the read side of a variable needed to describe it.
type AttrSource interface {
	Names() []string
	StringAttr(variable, key string) (string, bool)
}

// Catalog lists every variable and coordinate of ds in dataset order.
// The description prefers long_name over description; missing values are blank.
func Catalog(ds AttrSource) []CatalogEntry {
	names := ds.Names()
	entries := make([]CatalogEntry, 0, len(names))
	for _, name := range names {
		desc, ok := ds.StringAttr(name, AttrLongName)
		if !ok {
			desc, _ = ds.StringAttr(name, AttrDescription)
		}
		units, _ := ds.StringAttr(name, AttrUnits)
		entries = append(entries, CatalogEntry{
			Name:        name,
			Description: desc,
			Units:       units,
		})
	}
	return entries
}
