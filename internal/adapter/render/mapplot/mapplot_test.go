package mapplot

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/plot/vg"

	"go.ngs.io/ocean-grid/internal/dataset"
	"go.ngs.io/ocean-grid/internal/domain"
)

func domainDataset(t *testing.T, withArea bool) *dataset.Dataset {
	t.Helper()
	// The north-east surface cell is land.
	hfac, err := dataset.NewVariable("HFacC", []string{"Z", "Y", "X"}, []int{2, 2, 2},
		[]float64{1, 1, 1, 0, 1, 0, 0, 0}, nil)
	if err != nil {
		t.Fatalf("NewVariable failed: %v", err)
	}
	vars := []*dataset.Variable{
		hfac,
		dataset.NewCoord("X", []float64{-39.25, -38.75}, nil),
		dataset.NewCoord("Y", []float64{60.375, 60.625}, nil),
		dataset.NewCoord("Z", []float64{5, 15}, nil),
	}
	if withArea {
		ra, err := dataset.NewVariable("rA", []string{"Y", "X"}, []int{2, 2},
			[]float64{1e6, 2e6, 3e6, 4e6}, dataset.Attrs{domain.AttrDescription: "r-face area at cell center"})
		if err != nil {
			t.Fatalf("NewVariable failed: %v", err)
		}
		vars = append(vars, ra)
	}
	ds, err := dataset.New(nil, vars...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return ds
}

func TestWetArea(t *testing.T) {
	g, err := WetArea(domainDataset(t, true))
	if err != nil {
		t.Fatalf("WetArea failed: %v", err)
	}
	want := [][]float64{{1, 2}, {3, math.NaN()}}
	for j := range want {
		for i := range want[j] {
			got := g.Values[j][i]
			if math.IsNaN(want[j][i]) != math.IsNaN(got) || (!math.IsNaN(got) && math.Abs(got-want[j][i]) > 1e-12) {
				t.Errorf("Values[%d][%d] = %v, want %v", j, i, got, want[j][i])
			}
		}
	}
}

func TestRenderMapWritesPNG(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, 4*vg.Inch, 3*vg.Inch)
	if err := r.RenderMap(domainDataset(t, true)); err != nil {
		t.Fatalf("RenderMap failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Errorf("output is not a PNG (%d bytes)", buf.Len())
	}
}

func TestPlotTitle(t *testing.T) {
	p, err := Plot(domainDataset(t, true))
	if err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if want := "r-face area at cell center [km²]"; p.Title.Text != want {
		t.Errorf("title = %q, want %q", p.Title.Text, want)
	}
}

func TestRenderMapRequiresArea(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, vg.Inch, vg.Inch)
	if err := r.RenderMap(domainDataset(t, false)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestMercatorRoundTrip(t *testing.T) {
	for _, lat := range []float64{-60, 0, 45, 60.375, 80} {
		if got := inverseMercator(mercator(lat)); math.Abs(got-lat) > 1e-9 {
			t.Errorf("inverseMercator(mercator(%v)) = %v", lat, got)
		}
	}
	if mercator(60) <= 60 {
		t.Errorf("mercator(60) = %v, want stretched above 60", mercator(60))
	}
}
