// Package synthetic fabricates small MITgcm glued-output datasets with the seam
// placeholders of an exch2 decomposition. The generator command writes them to disk
// and the pipeline tests assemble them.
//
// Horizontal cell centres form an NX by NY block whose outermost ring is a seam: XC and
// YC are exactly zero there. Cell corners (XG, YG) have the same ring of zeros on the
// NX+1 by NY+1 corner block. After seam repair the centred axes keep NX-2 points and
// the corner axes NX-1, the outer staggering of the C grid.
package synthetic

import (
	"fmt"
	"math"

	"go.ngs.io/ocean-grid/internal/dataset"
	"go.ngs.io/ocean-grid/internal/domain"
)

// Layout sizes a synthetic experiment.
type Layout struct {
	NX, NY int // Centre points per horizontal axis, seam ring included.
	NZ     int // Vertical levels.
	NT     int // Time steps.

	Lon0, Lat0 float64 // South-west corner.
	DLon, DLat float64 // Horizontal spacing in degrees.
	DZ         float64 // Level thickness in metres.
	DT         float64 // Time step in seconds.

	// LabelOffset is added to the positional index to form the X/Y coordinate labels
	// stored in the source files.
	LabelOffset float64

	// CropNZ is the number of vertical levels of the cropped collection.
	CropNZ int
}

// DefaultLayout returns a 4x4 domain in the Irminger Sea with three levels and four
// time steps. Its coordinates never cross zero, so every zero is a seam.
func DefaultLayout() Layout {
	return Layout{
		NX: 4, NY: 4, NZ: 3, NT: 4,
		Lon0: -40, Lat0: 60,
		DLon: 0.5, DLat: 0.25,
		DZ: 10, DT: 3600,
		LabelOffset: 100,
		CropNZ:      2,
	}
}

// Validate checks that the layout has interior points and no accidental zeros.
func (l Layout) Validate() error {
	if l.NX < 3 || l.NY < 3 {
		return fmt.Errorf("horizontal size %dx%d leaves no interior: %w", l.NX, l.NY, domain.ErrInvalidArgument)
	}
	if l.NZ < 1 || l.NT < 1 {
		return fmt.Errorf("need at least one level and one time step: %w", domain.ErrInvalidArgument)
	}
	if l.CropNZ < 1 || l.CropNZ > l.NZ {
		return fmt.Errorf("cropped levels %d outside [1, %d]: %w", l.CropNZ, l.NZ, domain.ErrInvalidArgument)
	}
	if crossesZero(l.Lon0, l.Lon0+float64(l.NX)*l.DLon) || crossesZero(l.Lat0, l.Lat0+float64(l.NY)*l.DLat) {
		return fmt.Errorf("domain crosses a zero meridian or the equator: %w", domain.ErrInvalidArgument)
	}
	return nil
}

func crossesZero(a, b float64) bool { return a <= 0 && b >= 0 || a >= 0 && b <= 0 }

// Experiment holds the datasets of one synthetic run, as they would be read from disk.
type Experiment struct {
	Grid *dataset.Dataset
	// Fields holds one dataset per file, in glob order.
	Fields map[string]*dataset.Dataset
	// Cropped holds one dataset per file of the cropped collection.
	Cropped map[string]*dataset.Dataset
}

// Generate builds the experiment. Field collections are split into two files per
// kind along time when NT allows it.
func Generate(l Layout) (*Experiment, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	grid, err := gridDataset(l)
	if err != nil {
		return nil, fmt.Errorf("grid: %w", err)
	}
	exp := &Experiment{
		Grid:    grid,
		Fields:  make(map[string]*dataset.Dataset),
		Cropped: make(map[string]*dataset.Dataset),
	}
	for _, part := range timeParts(l.NT) {
		state, err := stateDataset(l, part)
		if err != nil {
			return nil, fmt.Errorf("state: %w", err)
		}
		diags, err := diagsDataset(l, part)
		if err != nil {
			return nil, fmt.Errorf("diags: %w", err)
		}
		budget, err := budgetDataset(l, part)
		if err != nil {
			return nil, fmt.Errorf("budget: %w", err)
		}
		iter := fmt.Sprintf("%010d", part[0])
		exp.Fields["state."+iter+"_glued.nc"] = state
		exp.Fields["diags."+iter+"_glued.nc"] = diags
		exp.Cropped["budget."+iter+"_glued.nc"] = budget
	}
	return exp, nil
}

// timeParts splits [0, nt) into at most two contiguous ranges.
func timeParts(nt int) [][2]int {
	if nt < 2 {
		return [][2]int{{0, nt}}
	}
	half := nt / 2
	return [][2]int{{0, half}, {half, nt}}
}

func seam(i, j, nx, ny int) bool {
	return i == 0 || j == 0 || i == nx-1 || j == ny-1
}

func (l Layout) labels(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = l.LabelOffset + float64(i)
	}
	return out
}

func levels(n int, f func(k int) float64) []float64 {
	out := make([]float64, n)
	for k := range out {
		out[k] = f(k)
	}
	return out
}

// Vertical coordinates are stored as negative heights, as MITgcm writes them.
func (l Layout) zCenters(n int) []float64 {
	return levels(n, func(k int) float64 { return -(float64(k) + 0.5) * l.DZ })
}

func (l Layout) verticalCoords() []*dataset.Variable {
	return []*dataset.Variable{
		dataset.NewCoord("Z", l.zCenters(l.NZ), dataset.Attrs{domain.AttrLongName: "vertical coordinate of cell center", domain.AttrUnits: "m"}),
		dataset.NewCoord("Zp1", levels(l.NZ+1, func(k int) float64 { return -float64(k) * l.DZ }),
			dataset.Attrs{domain.AttrLongName: "vertical coordinate of cell interface", domain.AttrUnits: "m"}),
		dataset.NewCoord("Zu", levels(l.NZ, func(k int) float64 { return -float64(k+1) * l.DZ }),
			dataset.Attrs{domain.AttrLongName: "vertical coordinate of lower cell interface", domain.AttrUnits: "m"}),
		dataset.NewCoord("Zl", levels(l.NZ, func(k int) float64 { return -float64(k) * l.DZ }),
			dataset.Attrs{domain.AttrLongName: "vertical coordinate of upper cell interface", domain.AttrUnits: "m"}),
	}
}

func (l Layout) horizontalCoords() []*dataset.Variable {
	return []*dataset.Variable{
		dataset.NewCoord("X", l.labels(l.NX), nil),
		dataset.NewCoord("Y", l.labels(l.NY), nil),
		dataset.NewCoord("Xp1", l.labels(l.NX+1), nil),
		dataset.NewCoord("Yp1", l.labels(l.NY+1), nil),
	}
}

// field2D fills an (ny, nx) array, leaving seam points at zero.
func (l Layout) field2D(nx, ny int, f func(i, j int) float64) []float64 {
	out := make([]float64, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			if seam(i, j, nx, ny) {
				continue
			}
			out[j*nx+i] = f(i, j)
		}
	}
	return out
}

// add appends v to the collected variables unless err is set.
func add(v *dataset.Variable, err error) func(*[]*dataset.Variable) error {
	return func(vars *[]*dataset.Variable) error {
		if err != nil {
			return err
		}
		*vars = append(*vars, v)
		return nil
	}
}

func collect(adds ...func(*[]*dataset.Variable) error) ([]*dataset.Variable, error) {
	var vars []*dataset.Variable
	for _, fn := range adds {
		if err := fn(&vars); err != nil {
			return nil, err
		}
	}
	return vars, nil
}

func gridDataset(l Layout) (*dataset.Dataset, error) {
	nx, ny, nz := l.NX, l.NY, l.NZ
	hc := []string{"Y", "X"}
	hg := []string{"Yp1", "Xp1"}

	area := func(j int) float64 {
		lat := (l.Lat0 + (float64(j)+0.5)*l.DLat) * math.Pi / 180
		return 111e3 * l.DLon * math.Cos(lat) * 111e3 * l.DLat
	}
	hfac := make([]float64, nz*ny*nx)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				// The deepest level is land in the first interior column.
				if seam(i, j, nx, ny) || (k == nz-1 && i == 1) {
					continue
				}
				hfac[(k*ny+j)*nx+i] = 1
			}
		}
	}

	vars, err := collect(
		add(dataset.NewVariable("XC", hc, []int{ny, nx},
			l.field2D(nx, ny, func(i, _ int) float64 { return l.Lon0 + (float64(i)+0.5)*l.DLon }),
			dataset.Attrs{domain.AttrDescription: "longitude of cell center", domain.AttrUnits: "degrees_east"})),
		add(dataset.NewVariable("YC", hc, []int{ny, nx},
			l.field2D(nx, ny, func(_, j int) float64 { return l.Lat0 + (float64(j)+0.5)*l.DLat }),
			dataset.Attrs{domain.AttrDescription: "latitude of cell center", domain.AttrUnits: "degrees_north"})),
		add(dataset.NewVariable("XG", hg, []int{ny + 1, nx + 1},
			l.field2D(nx+1, ny+1, func(i, _ int) float64 { return l.Lon0 + float64(i)*l.DLon }),
			dataset.Attrs{domain.AttrDescription: "longitude of cell corner", domain.AttrUnits: "degrees_east"})),
		add(dataset.NewVariable("YG", hg, []int{ny + 1, nx + 1},
			l.field2D(nx+1, ny+1, func(_, j int) float64 { return l.Lat0 + float64(j)*l.DLat }),
			dataset.Attrs{domain.AttrDescription: "latitude of cell corner", domain.AttrUnits: "degrees_north"})),
		add(dataset.NewVariable("rA", hc, []int{ny, nx},
			l.field2D(nx, ny, func(_, j int) float64 { return area(j) }),
			dataset.Attrs{domain.AttrDescription: "r-face area at cell center", domain.AttrUnits: "m2"})),
		add(dataset.NewVariable("Depth", hc, []int{ny, nx},
			l.field2D(nx, ny, func(i, _ int) float64 {
				if i == 1 {
					return float64(nz-1) * l.DZ
				}
				return float64(nz) * l.DZ
			}),
			dataset.Attrs{domain.AttrDescription: "ocean depth", domain.AttrUnits: "m"})),
		add(dataset.NewVariable("HFacC", []string{"Z", "Y", "X"}, []int{nz, ny, nx}, hfac,
			dataset.Attrs{domain.AttrDescription: "vertical fraction of open cell"})),
		add(dataset.NewVariable("drF", []string{"Z"}, []int{nz}, levels(nz, func(int) float64 { return l.DZ }),
			dataset.Attrs{domain.AttrDescription: "r cell face separation", domain.AttrUnits: "m"})),
		// Dropped on load.
		add(dataset.NewVariable("RC", []string{"Z"}, []int{nz}, l.zCenters(nz), nil)),
		add(dataset.NewVariable("XU", hc, []int{ny, nx}, make([]float64, nx*ny), nil)),
	)
	if err != nil {
		return nil, err
	}
	vars = append(vars, l.horizontalCoords()...)
	vars = append(vars, l.verticalCoords()...)
	return dataset.New(dataset.Attrs{"title": "synthetic glued grid"}, vars...)
}

func (l Layout) times(part [2]int) []float64 {
	return levels(part[1]-part[0], func(k int) float64 { return float64(part[0]+k+1) * l.DT })
}

// field4D fills (T, zdim, Y-like, X-like) with a smooth pattern.
func (l Layout) field4D(nt, nz, ny, nx, t0 int, scale float64) []float64 {
	out := make([]float64, 0, nt*nz*ny*nx)
	for t := 0; t < nt; t++ {
		for k := 0; k < nz; k++ {
			for j := 0; j < ny; j++ {
				for i := 0; i < nx; i++ {
					out = append(out, scale*(float64(t0+t)+0.1*float64(k)+0.01*float64(j)+0.001*float64(i)))
				}
			}
		}
	}
	return out
}

func stateDataset(l Layout, part [2]int) (*dataset.Dataset, error) {
	nt := part[1] - part[0]
	nx, ny, nz := l.NX, l.NY, l.NZ
	vars, err := collect(
		add(dataset.NewVariable("Temp", []string{"T", "Z", "Y", "X"}, []int{nt, nz, ny, nx},
			l.field4D(nt, nz, ny, nx, part[0], 1), dataset.Attrs{domain.AttrLongName: "potential temperature", domain.AttrUnits: "degC"})),
		add(dataset.NewVariable("S", []string{"T", "Z", "Y", "X"}, []int{nt, nz, ny, nx},
			l.field4D(nt, nz, ny, nx, part[0], 0.5), dataset.Attrs{domain.AttrLongName: "salinity", domain.AttrUnits: "psu"})),
		add(dataset.NewVariable("U", []string{"T", "Z", "Y", "Xp1"}, []int{nt, nz, ny, nx + 1},
			l.field4D(nt, nz, ny, nx+1, part[0], 0.1), dataset.Attrs{domain.AttrLongName: "zonal velocity", domain.AttrUnits: "m/s"})),
		add(dataset.NewVariable("V", []string{"T", "Z", "Yp1", "X"}, []int{nt, nz, ny + 1, nx},
			l.field4D(nt, nz, ny+1, nx, part[0], 0.1), dataset.Attrs{domain.AttrLongName: "meridional velocity", domain.AttrUnits: "m/s"})),
		add(dataset.NewVariable("W", []string{"T", "Zl", "Y", "X"}, []int{nt, nz, ny, nx},
			l.field4D(nt, nz, ny, nx, part[0], 0.001), dataset.Attrs{domain.AttrLongName: "vertical velocity", domain.AttrUnits: "m/s"})),
		add(dataset.NewVariable("Eta", []string{"T", "Y", "X"}, []int{nt, ny, nx},
			l.field4D(nt, 1, ny, nx, part[0], 0.01), dataset.Attrs{domain.AttrLongName: "free-surface r-anomaly", domain.AttrUnits: "m"})),
		add(dataset.NewVariable("iter", []string{"T"}, []int{nt}, l.times(part), nil)),
	)
	if err != nil {
		return nil, err
	}
	vars = append(vars, dataset.NewCoord("T", l.times(part), dataset.Attrs{domain.AttrLongName: "model time", domain.AttrUnits: "s"}))
	vars = append(vars, l.horizontalCoords()...)
	vars = append(vars, l.verticalCoords()...)
	return dataset.New(nil, vars...)
}

func diagsDataset(l Layout, part [2]int) (*dataset.Dataset, error) {
	nt := part[1] - part[0]
	nx, ny, nz := l.NX, l.NY, l.NZ
	vars, err := collect(
		add(dataset.NewVariable("KPPdiffT", []string{"T", "Zmd000216", "Y", "X"}, []int{nt, nz, ny, nx},
			l.field4D(nt, nz, ny, nx, part[0], 1e-4), dataset.Attrs{domain.AttrDescription: "vertical diffusion coefficient for heat", domain.AttrUnits: "m^2/s"})),
		add(dataset.NewVariable("oceQnet", []string{"T", "Zd000001", "Y", "X"}, []int{nt, 1, ny, nx},
			l.field4D(nt, 1, ny, nx, part[0], 10), dataset.Attrs{domain.AttrDescription: "net upward surface heat flux", domain.AttrUnits: "W/m^2"})),
		add(dataset.NewVariable("diag_levels", []string{"Zmd000216"}, []int{nz},
			levels(nz, func(k int) float64 { return float64(k + 1) }), nil)),
	)
	if err != nil {
		return nil, err
	}
	vars = append(vars,
		dataset.NewCoord("T", l.times(part), dataset.Attrs{domain.AttrLongName: "model time", domain.AttrUnits: "s"}),
		dataset.NewCoord("Zmd000216", l.zCenters(nz), dataset.Attrs{domain.AttrLongName: "vertical coordinate of cell center", domain.AttrUnits: "m"}),
		dataset.NewCoord("Zd000001", []float64{0}, nil),
		dataset.NewCoord("X", l.labels(l.NX), nil),
		dataset.NewCoord("Y", l.labels(l.NY), nil),
	)
	return dataset.New(nil, vars...)
}

// budgetDataset is one file of the cropped collection: the interior of the domain,
// with positional indices as horizontal coordinates and CropNZ levels.
func budgetDataset(l Layout, part [2]int) (*dataset.Dataset, error) {
	nt := part[1] - part[0]
	nx, ny, nz := l.NX-2, l.NY-2, l.CropNZ
	index := func(from, n int) []float64 {
		return levels(n, func(k int) float64 { return float64(from + k) })
	}
	vars, err := collect(
		add(dataset.NewVariable("TOTTTEND", []string{"T", "Zmd000216", "Y", "X"}, []int{nt, nz, ny, nx},
			l.field4D(nt, nz, ny, nx, part[0], 1e-6), dataset.Attrs{domain.AttrDescription: "tendency of potential temperature", domain.AttrUnits: "degC/day"})),
		add(dataset.NewVariable("ADVx_TH", []string{"T", "Zmd000216", "Y", "Xp1"}, []int{nt, nz, ny, nx + 1},
			l.field4D(nt, nz, ny, nx+1, part[0], 1e3), dataset.Attrs{domain.AttrDescription: "zonal advective flux of potential temperature", domain.AttrUnits: "degC.m^3/s"})),
		add(dataset.NewVariable("ADVr_TH", []string{"T", "Zld000216", "Y", "X"}, []int{nt, nz, ny, nx},
			l.field4D(nt, nz, ny, nx, part[0], 1e3), dataset.Attrs{domain.AttrDescription: "vertical advective flux of potential temperature", domain.AttrUnits: "degC.m^3/s"})),
		add(dataset.NewVariable("iter", []string{"T"}, []int{nt}, l.times(part), nil)),
	)
	if err != nil {
		return nil, err
	}
	vars = append(vars,
		dataset.NewCoord("T", l.times(part), dataset.Attrs{domain.AttrLongName: "model time", domain.AttrUnits: "s"}),
		dataset.NewCoord("Zmd000216", l.zCenters(nz), nil),
		dataset.NewCoord("Zld000216", levels(nz, func(k int) float64 { return -float64(k) * l.DZ }), nil),
		dataset.NewCoord("X", index(1, nx), nil),
		dataset.NewCoord("Y", index(1, ny), nil),
		dataset.NewCoord("Xp1", index(1, nx+1), nil),
		dataset.NewCoord("Yp1", index(1, ny+1), nil),
	)
	return dataset.New(nil, vars...)
}
