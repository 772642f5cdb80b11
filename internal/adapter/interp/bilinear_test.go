package interp

import (
	"errors"
	"math"
	"testing"

	"go.ngs.io/ocean-grid/internal/dataset"
	"go.ngs.io/ocean-grid/internal/domain"
)

// TestBilinearInterpolate_CenterPoint tests interpolation at the center of a grid cell
func TestBilinearInterpolate_CenterPoint(t *testing.T) {
	cell := GridCell{
		X0: 0.0, X1: 2.0,
		Y0: 0.0, Y1: 2.0,
		V00: 1.0, V10: 3.0,
		V01: 5.0, V11: 7.0,
	}

	// At the center every corner weighs 0.25.
	result, err := BilinearInterpolate(cell, 1.0, 1.0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(result-4.0) > 1e-9 {
		t.Errorf("Center point: expected 4.0, got %.10f", result)
	}
}

func TestBilinearInterpolate_CornerPoints(t *testing.T) {
	cell := GridCell{
		X0: -40.0, X1: -39.5,
		Y0: 60.0, Y1: 60.25,
		V00: 1.0, V10: 2.0,
		V01: 3.0, V11: 4.0,
	}

	tests := []struct {
		x, y     float64
		expected float64
		name     string
	}{
		{-40.0, 60.0, 1.0, "south-west"},
		{-39.5, 60.0, 2.0, "south-east"},
		{-40.0, 60.25, 3.0, "north-west"},
		{-39.5, 60.25, 4.0, "north-east"},
	}
	for _, tt := range tests {
		result, err := BilinearInterpolate(cell, tt.x, tt.y)
		if err != nil {
			t.Fatalf("Unexpected error for %s: %v", tt.name, err)
		}
		if math.Abs(result-tt.expected) > 1e-9 {
			t.Errorf("%s corner: expected %.10f, got %.10f", tt.name, tt.expected, result)
		}
	}
}

func TestBilinearInterpolate_NaNCorner(t *testing.T) {
	cell := GridCell{X0: 0, X1: 1, Y0: 0, Y1: 1, V00: 1, V10: math.NaN(), V01: 1, V11: 1}
	result, err := BilinearInterpolate(cell, 0.5, 0.5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !math.IsNaN(result) {
		t.Errorf("expected NaN next to a land corner, got %v", result)
	}
}

func TestBilinearInterpolate_OutOfBounds(t *testing.T) {
	cell := GridCell{
		X0: 0.0, X1: 10.0,
		Y0: 0.0, Y1: 10.0,
		V00: 1.0, V10: 2.0,
		V01: 3.0, V11: 4.0,
	}

	tests := []struct {
		x, y float64
		name string
	}{
		{-1.0, 5.0, "x too small"},
		{11.0, 5.0, "x too large"},
		{5.0, -1.0, "y too small"},
		{5.0, 11.0, "y too large"},
	}
	for _, tt := range tests {
		_, err := BilinearInterpolate(cell, tt.x, tt.y)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("%s: expected ErrInvalidArgument for point (%.1f, %.1f), got %v", tt.name, tt.x, tt.y, err)
		}
	}
}

func TestGrid2D_InterpolateAt(t *testing.T) {
	grid := &Grid2D{
		X: []float64{0.0, 1.0, 2.0},
		Y: []float64{0.0, 1.0, 2.0},
		Values: [][]float64{
			{1.0, 2.0, 3.0}, // y=0
			{4.0, 5.0, 6.0}, // y=1
			{7.0, 8.0, 9.0}, // y=2
		},
	}

	tests := []struct {
		x, y     float64
		expected float64
	}{
		{0.0, 0.0, 1.0},
		{1.0, 0.0, 2.0},
		{2.0, 0.0, 3.0},
		{0.0, 1.0, 4.0},
		{1.0, 1.0, 5.0},
		{2.0, 2.0, 9.0},
		{0.5, 0.5, 3.0},
		{1.5, 2.0, 8.5},
	}
	for _, tt := range tests {
		result, err := grid.InterpolateAt(tt.x, tt.y)
		if err != nil {
			t.Fatalf("Unexpected error at (%.1f, %.1f): %v", tt.x, tt.y, err)
		}
		if math.Abs(result-tt.expected) > 1e-9 {
			t.Errorf("At (%.1f, %.1f): expected %.10f, got %.10f", tt.x, tt.y, tt.expected, result)
		}
	}

	if _, err := grid.InterpolateAt(2.5, 1.0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("outside point: expected ErrInvalidArgument, got %v", err)
	}
}

func TestGrid2D_Validate(t *testing.T) {
	tests := []struct {
		name    string
		grid    *Grid2D
		wantErr bool
	}{
		{
			name: "valid grid",
			grid: &Grid2D{
				X:      []float64{0.0, 1.0, 2.0},
				Y:      []float64{0.0, 1.0},
				Values: [][]float64{{1, 2, 3}, {4, 5, 6}},
			},
		},
		{
			name: "too few X coords",
			grid: &Grid2D{
				X:      []float64{0.0},
				Y:      []float64{0.0, 1.0},
				Values: [][]float64{{1}, {2}},
			},
			wantErr: true,
		},
		{
			name: "ragged rows",
			grid: &Grid2D{
				X:      []float64{0.0, 1.0},
				Y:      []float64{0.0, 1.0},
				Values: [][]float64{{1, 2}, {3}},
			},
			wantErr: true,
		},
		{
			name: "repeated X",
			grid: &Grid2D{
				X:      []float64{0.0, 0.0},
				Y:      []float64{0.0, 1.0},
				Values: [][]float64{{1, 2}, {3, 4}},
			},
			wantErr: true,
		},
		{
			name: "decreasing Y",
			grid: &Grid2D{
				X:      []float64{0.0, 1.0},
				Y:      []float64{1.0, 0.0},
				Values: [][]float64{{1, 2}, {3, 4}},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func assembledDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	// Temp(Z, Y, X) = 100*k + 10*j + i.
	temp := make([]float64, 2*2*2)
	for k := 0; k < 2; k++ {
		for j := 0; j < 2; j++ {
			for i := 0; i < 2; i++ {
				temp[(k*2+j)*2+i] = float64(100*k + 10*j + i)
			}
		}
	}
	tv, err := dataset.NewVariable("Temp", []string{"Z", "Y", "X"}, []int{2, 2, 2}, temp, nil)
	if err != nil {
		t.Fatalf("NewVariable failed: %v", err)
	}
	depth, err := dataset.NewVariable("Depth", []string{"Y", "X"}, []int{2, 2}, []float64{10, 20, 30, 40}, nil)
	if err != nil {
		t.Fatalf("NewVariable failed: %v", err)
	}
	ds, err := dataset.New(nil, tv, depth,
		dataset.NewCoord("X", []float64{-39.25, -38.75}, nil),
		dataset.NewCoord("Y", []float64{60.375, 60.625}, nil),
		dataset.NewCoord("Z", []float64{5, 15}, nil),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return ds
}

func TestSliceFixesOtherDimensions(t *testing.T) {
	ds := assembledDataset(t)

	g, err := Slice(ds, "Temp", map[string]int{"Z": 1})
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	want := [][]float64{{100, 101}, {110, 111}}
	for j := range want {
		for i := range want[j] {
			if g.Values[j][i] != want[j][i] {
				t.Errorf("Values[%d][%d] = %v, want %v", j, i, g.Values[j][i], want[j][i])
			}
		}
	}
}

func TestSample(t *testing.T) {
	ds := assembledDataset(t)

	got, err := Sample(ds, "Depth", nil, -39.0, 60.5)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if math.Abs(got-25) > 1e-9 {
		t.Errorf("Sample = %v, want 25", got)
	}

	got, err = Sample(ds, "Temp", nil, -39.25, 60.625)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if math.Abs(got-10) > 1e-9 {
		t.Errorf("Sample at surface = %v, want 10", got)
	}
}

func TestSampleErrors(t *testing.T) {
	ds := assembledDataset(t)

	tests := []struct {
		name    string
		varName string
		at      map[string]int
		lon     float64
		want    error
	}{
		{"unknown variable", "Salt", nil, -39, domain.ErrNotFound},
		{"not horizontal", "Z", nil, -39, domain.ErrInvalidArgument},
		{"fixing a horizontal dim", "Temp", map[string]int{"X": 0}, -39, domain.ErrInvalidArgument},
		{"position out of range", "Temp", map[string]int{"Z": 2}, -39, domain.ErrInvalidArgument},
		{"outside the domain", "Depth", nil, -41, domain.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Sample(ds, tt.varName, tt.at, tt.lon, 60.5); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
