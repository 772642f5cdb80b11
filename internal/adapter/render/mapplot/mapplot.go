// Package mapplot draws the horizontal model domain as a PNG heat map of cell area.
package mapplot

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"go.ngs.io/ocean-grid/internal/adapter/interp"
	"go.ngs.io/ocean-grid/internal/dataset"
	"go.ngs.io/ocean-grid/internal/domain"
)

const (
	areaVar = "rA"
	maskVar = "HFacC"
)

// Renderer writes the domain map to w.
type Renderer struct {
	w      io.Writer
	width  vg.Length
	height vg.Length
}

// NewRenderer creates a renderer producing images of the given size.
func NewRenderer(w io.Writer, width, height vg.Length) *Renderer {
	return &Renderer{w: w, width: width, height: height}
}

// RenderMap draws the wet-cell area of ds and encodes it as PNG.
func (r *Renderer) RenderMap(ds *dataset.Dataset) error {
	p, err := Plot(ds)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(r.width, r.height, "png")
	if err != nil {
		return fmt.Errorf("failed to encode map: %w", err)
	}
	if _, err := wt.WriteTo(r.w); err != nil {
		return fmt.Errorf("failed to write map: %w", err)
	}
	return nil
}

// Plot builds the map: rA in km² on wet surface cells, on a Mercator latitude axis.
func Plot(ds *dataset.Dataset) (*plot.Plot, error) {
	area, err := WetArea(ds)
	if err != nil {
		return nil, err
	}
	title, _ := ds.StringAttr(areaVar, domain.AttrDescription)
	if title == "" {
		title = areaVar
	}

	p := plot.New()
	p.Title.Text = title + " [km²]"
	p.X.Label.Text = "longitude"
	p.Y.Label.Text = "latitude"
	p.X.Tick.Marker = degreeTicks{suffix: "°E"}
	p.Y.Tick.Marker = mercatorTicks{}

	hm := plotter.NewHeatMap(mercatorGrid{area}, palette.Heat(64, 1))
	hm.NaN = color.Transparent
	p.Add(hm, plotter.NewGrid())
	return p, nil
}

// WetArea returns rA·1e-6 on the surface level, NaN where HFacC is not positive.
func WetArea(ds *dataset.Dataset) (*interp.Grid2D, error) {
	area, err := interp.Slice(ds, areaVar, nil)
	if err != nil {
		return nil, fmt.Errorf("domain map: %w", err)
	}
	mask, err := interp.Slice(ds, maskVar, map[string]int{domain.DimZ: 0})
	if err != nil {
		return nil, fmt.Errorf("domain map: %w", err)
	}
	if len(mask.X) != len(area.X) || len(mask.Y) != len(area.Y) {
		return nil, fmt.Errorf("%s and %s are on different grids: %w", areaVar, maskVar, domain.ErrStaggering)
	}
	for j, row := range area.Values {
		for i := range row {
			if mask.Values[j][i] > 0 {
				row[i] *= 1e-6
			} else {
				row[i] = math.NaN()
			}
		}
	}
	return area, nil
}

// mercatorGrid exposes a Grid2D to the heat map with latitudes projected.
type mercatorGrid struct{ g *interp.Grid2D }

func (m mercatorGrid) Dims() (c, r int)   { return len(m.g.X), len(m.g.Y) }
func (m mercatorGrid) Z(c, r int) float64 { return m.g.Values[r][c] }
func (m mercatorGrid) X(c int) float64    { return m.g.X[c] }
func (m mercatorGrid) Y(r int) float64    { return mercator(m.g.Y[r]) }

// Extrema skips land cells.
func (m mercatorGrid) Extrema() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, row := range m.g.Values {
		for _, v := range row {
			if !math.IsNaN(v) {
				min, max = math.Min(min, v), math.Max(max, v)
			}
		}
	}
	if min > max {
		return 0, 0
	}
	return min, max
}

// mercator projects a latitude in degrees.
func mercator(lat float64) float64 {
	return math.Log(math.Tan(math.Pi/4+lat*math.Pi/360)) * 180 / math.Pi
}

func inverseMercator(y float64) float64 {
	return (2*math.Atan(math.Exp(y*math.Pi/180)) - math.Pi/2) * 180 / math.Pi
}

// mercatorTicks places latitude ticks at their projected positions.
type mercatorTicks struct{}

func (mercatorTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(inverseMercator(min), inverseMercator(max))
	for i := range ticks {
		ticks[i].Value = mercator(ticks[i].Value)
		if ticks[i].Label != "" {
			ticks[i].Label += "°N"
		}
	}
	return ticks
}

type degreeTicks struct{ suffix string }

func (d degreeTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label += d.suffix
		}
	}
	return ticks
}
