package dataset

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"go.ngs.io/ocean-grid/internal/domain"
)

func mustVar(t *testing.T, name string, dims []string, shape []int, data []float64) *Variable {
	t.Helper()
	v, err := NewVariable(name, dims, shape, data, nil)
	if err != nil {
		t.Fatalf("NewVariable %s: %v", name, err)
	}
	return v
}

func mustDataset(t *testing.T, vars ...*Variable) *Dataset {
	t.Helper()
	ds, err := New(nil, vars...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ds
}

func TestNewRejectsInconsistentSizes(t *testing.T) {
	a := NewCoord("X", []float64{0, 1, 2}, nil)
	b := mustVar(t, "v", []string{"X"}, []int{2}, []float64{1, 2})
	if _, err := New(nil, a, b); !errors.Is(err, domain.ErrMergeConflict) {
		t.Fatalf("expected ErrMergeConflict, got %v", err)
	}
}

func TestNanMeanSkipsNaN(t *testing.T) {
	nan := math.NaN()
	// Dims (Y, X): rows are Y.
	v := mustVar(t, "XC", []string{"Y", "X"}, []int{3, 2}, []float64{
		nan, nan,
		1, 10,
		3, nan,
	})
	got, err := v.NanMean("Y")
	if err != nil {
		t.Fatalf("NanMean: %v", err)
	}
	if diff := cmp.Diff([]float64{2, 10}, got.Values()); diff != "" {
		t.Fatalf("mean over Y (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"X"}, got.Dims()); diff != "" {
		t.Fatalf("dims (-want +got):\n%s", diff)
	}

	got, err = v.NanMean("X")
	if err != nil {
		t.Fatalf("NanMean: %v", err)
	}
	want := []float64{nan, 5.5, 3}
	if diff := cmp.Diff(want, got.Values(), cmpopts.EquateNaNs()); diff != "" {
		t.Fatalf("mean over X (-want +got):\n%s", diff)
	}
}

func TestTakeAlongMiddleAxis(t *testing.T) {
	v := mustVar(t, "T", []string{"a", "b", "c"}, []int{2, 3, 2}, []float64{
		0, 1, 2, 3, 4, 5,
		6, 7, 8, 9, 10, 11,
	})
	got, err := v.Take("b", []int{2, 0})
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	want := []float64{4, 5, 0, 1, 10, 11, 6, 7}
	if diff := cmp.Diff(want, got.Values()); diff != "" {
		t.Fatalf("Take (-want +got):\n%s", diff)
	}
	if got.At(1, 0, 1) != 11 {
		t.Fatalf("At(1,0,1) = %v, want 11", got.At(1, 0, 1))
	}
	if _, err := v.Take("b", []int{3}); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestISelSelectsPositions(t *testing.T) {
	ds := mustDataset(t,
		NewCoord("X", []float64{10, 20, 30, 40}, Attrs{"units": "m"}),
		NewCoord("Y", []float64{1, 2}, nil),
		mustVar(t, "h", []string{"Y", "X"}, []int{2, 4}, []float64{1, 2, 3, 4, 5, 6, 7, 8}),
	)
	out, err := ds.ISel(map[string][]int{"X": {1, 2}})
	if err != nil {
		t.Fatalf("ISel: %v", err)
	}
	x, _ := out.Coord("X")
	if diff := cmp.Diff([]float64{20, 30}, x); diff != "" {
		t.Fatalf("X (-want +got):\n%s", diff)
	}
	h, _ := out.Var("h")
	if diff := cmp.Diff([]float64{2, 3, 6, 7}, h.Values()); diff != "" {
		t.Fatalf("h (-want +got):\n%s", diff)
	}
	if n, _ := out.Size("X"); n != 2 {
		t.Fatalf("size X = %d, want 2", n)
	}
	if u, _ := out.StringAttr("X", "units"); u != "m" {
		t.Fatalf("attrs lost: %q", u)
	}
	// Original untouched.
	if n, _ := ds.Size("X"); n != 4 {
		t.Fatalf("source mutated: size X = %d", n)
	}
	if _, err := ds.ISel(map[string][]int{"Q": {0}}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRenameCycleFoldsTwoDimensions(t *testing.T) {
	ds := mustDataset(t,
		NewCoord("T", []float64{0, 3600}, nil),
		NewCoord("Z", []float64{-5, -15}, Attrs{"long_name": "depth"}),
		NewCoord("Zmd000216", []float64{1, 2}, nil),
		mustVar(t, "Temp", []string{"T", "Z"}, []int{2, 2}, []float64{1, 2, 3, 4}),
		mustVar(t, "KE", []string{"T", "Zmd000216"}, []int{2, 2}, []float64{5, 6, 7, 8}),
	)

	if _, err := ds.Rename(Rename{From: "Zmd000216", To: "Z"}); !errors.Is(err, domain.ErrNameConflict) {
		t.Fatalf("expected ErrNameConflict renaming into existing Z, got %v", err)
	}

	step1, err := ds.Rename(Rename{From: "Z", To: "Ztmp"})
	if err != nil {
		t.Fatalf("rename Z: %v", err)
	}
	out, err := step1.Rename(
		Rename{From: "T", To: "time"},
		Rename{From: "Ztmp", To: "Z"},
		Rename{From: "Zmd000216", To: "Z"},
	)
	if err != nil {
		t.Fatalf("rename cycle: %v", err)
	}
	if diff := cmp.Diff([]string{"time", "Z"}, out.Dims()); diff != "" {
		t.Fatalf("dims (-want +got):\n%s", diff)
	}
	z, ok := out.Coord("Z")
	if !ok {
		t.Fatalf("missing Z coordinate")
	}
	if diff := cmp.Diff([]float64{-5, -15}, z); diff != "" {
		t.Fatalf("Z should keep the first source's values (-want +got):\n%s", diff)
	}
	ke, _ := out.Var("KE")
	if diff := cmp.Diff([]string{"time", "Z"}, ke.Dims()); diff != "" {
		t.Fatalf("KE dims (-want +got):\n%s", diff)
	}
	if out.Has("Zmd000216") || out.Has("Ztmp") {
		t.Fatalf("stale names left: %v", out.Names())
	}
}

func TestRenameRejectsMismatchedFold(t *testing.T) {
	ds := mustDataset(t,
		NewCoord("A", []float64{1, 2}, nil),
		NewCoord("B", []float64{1, 2, 3}, nil),
	)
	_, err := ds.Rename(Rename{From: "A", To: "C"}, Rename{From: "B", To: "C"})
	if !errors.Is(err, domain.ErrNameConflict) {
		t.Fatalf("expected ErrNameConflict, got %v", err)
	}
}

func TestSqueezeRemovesSingleton(t *testing.T) {
	ds := mustDataset(t,
		NewCoord("Zd000001", []float64{0}, nil),
		mustVar(t, "MXL", []string{"T", "Zd000001", "X"}, []int{2, 1, 3}, []float64{1, 2, 3, 4, 5, 6}),
	)
	out, err := ds.Squeeze("Zd000001")
	if err != nil {
		t.Fatalf("Squeeze: %v", err)
	}
	if _, ok := out.Size("Zd000001"); ok {
		t.Fatalf("dimension still present: %v", out.Dims())
	}
	if out.Has("Zd000001") {
		t.Fatalf("coordinate still present")
	}
	v, _ := out.Var("MXL")
	if diff := cmp.Diff([]int{2, 3}, v.Shape()); diff != "" {
		t.Fatalf("shape (-want +got):\n%s", diff)
	}

	wide := mustDataset(t, NewCoord("Q", []float64{1, 2}, nil))
	if _, err := wide.Squeeze("Q"); err == nil {
		t.Fatalf("expected error squeezing size-2 dimension")
	}
}

func TestDropRemovesOrphanDimensions(t *testing.T) {
	ds := mustDataset(t,
		NewCoord("X", []float64{1, 2}, nil),
		mustVar(t, "diag_levels", []string{"L"}, []int{3}, []float64{1, 2, 3}),
	)
	out, err := ds.Drop("diag_levels")
	if err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if diff := cmp.Diff([]string{"X"}, out.Dims()); diff != "" {
		t.Fatalf("dims (-want +got):\n%s", diff)
	}
	if _, err := ds.Drop("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMergeDetectsConflicts(t *testing.T) {
	grid := mustDataset(t, NewCoord("X", []float64{1, 2}, nil))
	same := mustDataset(t,
		NewCoord("X", []float64{1, 2}, nil),
		mustVar(t, "Eta", []string{"X"}, []int{2}, []float64{0.1, 0.2}),
	)
	merged, err := Merge(grid, same)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !merged.Has("Eta") {
		t.Fatalf("Eta missing after merge")
	}

	other := mustDataset(t, NewCoord("X", []float64{1, 3}, nil))
	if _, err := Merge(grid, other); !errors.Is(err, domain.ErrMergeConflict) {
		t.Fatalf("expected ErrMergeConflict for differing values, got %v", err)
	}
	longer := mustDataset(t, NewCoord("X", []float64{1, 2, 3}, nil))
	if _, err := Merge(grid, longer); !errors.Is(err, domain.ErrMergeConflict) {
		t.Fatalf("expected ErrMergeConflict for differing sizes, got %v", err)
	}
}

func TestOverlayKeepsBaseCoordinates(t *testing.T) {
	base := mustDataset(t,
		NewCoord("X", []float64{101, 102}, nil),
		mustVar(t, "Temp", []string{"X"}, []int{2}, []float64{1, 1}),
	)
	top := mustDataset(t,
		NewCoord("X", []float64{1, 2}, nil),
		mustVar(t, "Temp", []string{"X"}, []int{2}, []float64{2, 2}),
		mustVar(t, "ADVx_TH", []string{"X"}, []int{2}, []float64{3, 3}),
	)
	out, err := Overlay(base, top)
	if err != nil {
		t.Fatalf("Overlay: %v", err)
	}
	x, _ := out.Coord("X")
	if diff := cmp.Diff([]float64{101, 102}, x); diff != "" {
		t.Fatalf("X (-want +got):\n%s", diff)
	}
	temp, _ := out.Var("Temp")
	if diff := cmp.Diff([]float64{2, 2}, temp.Values()); diff != "" {
		t.Fatalf("Temp should come from top (-want +got):\n%s", diff)
	}
	if !out.Has("ADVx_TH") {
		t.Fatalf("top-only variable missing")
	}
}

func TestConcatAlongTime(t *testing.T) {
	part := func(t0 float64) *Dataset {
		return mustDataset(t,
			NewCoord("T", []float64{t0}, nil),
			NewCoord("X", []float64{5, 6}, nil),
			mustVar(t, "Eta", []string{"T", "X"}, []int{1, 2}, []float64{t0, t0 + 1}),
			mustVar(t, "Depth", []string{"X"}, []int{2}, []float64{100, 200}),
		)
	}
	out, err := Concat("T", part(0), part(10), part(20))
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	tc, _ := out.Coord("T")
	if diff := cmp.Diff([]float64{0, 10, 20}, tc); diff != "" {
		t.Fatalf("T (-want +got):\n%s", diff)
	}
	eta, _ := out.Var("Eta")
	if diff := cmp.Diff([]float64{0, 1, 10, 11, 20, 21}, eta.Values()); diff != "" {
		t.Fatalf("Eta (-want +got):\n%s", diff)
	}

	bad := mustDataset(t,
		NewCoord("T", []float64{30}, nil),
		NewCoord("X", []float64{5, 7}, nil),
		mustVar(t, "Eta", []string{"T", "X"}, []int{1, 2}, []float64{0, 0}),
		mustVar(t, "Depth", []string{"X"}, []int{2}, []float64{100, 200}),
	)
	if _, err := Concat("T", part(0), bad); !errors.Is(err, domain.ErrMergeConflict) {
		t.Fatalf("expected ErrMergeConflict, got %v", err)
	}
}

func TestFinitePositions(t *testing.T) {
	ds := mustDataset(t, NewCoord("X", []float64{math.NaN(), 1, math.NaN(), 3}, nil))
	idx, err := ds.FinitePositions("X")
	if err != nil {
		t.Fatalf("FinitePositions: %v", err)
	}
	if diff := cmp.Diff([]int{1, 3}, idx); diff != "" {
		t.Fatalf("positions (-want +got):\n%s", diff)
	}
}
