package ncio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/fhs/go-netcdf/netcdf"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"go.ngs.io/ocean-grid/internal/dataset"
	"go.ngs.io/ocean-grid/internal/domain"
)

func TestWriteReadRoundTrip(t *testing.T) {
	x := dataset.NewCoord("X", []float64{-39.75, -39.25}, dataset.Attrs{
		domain.AttrAxis: "X", domain.AttrUnits: "degrees_east",
	})
	xp1 := dataset.NewCoord("Xp1", []float64{-40, -39.5, -39}, dataset.Attrs{
		domain.AttrAxis: "X", domain.AttrShift: -0.5,
	})
	eta, err := dataset.NewVariable("Eta", []string{"X"}, []int{2}, []float64{0.25, math.NaN()},
		dataset.Attrs{domain.AttrLongName: "free surface"})
	if err != nil {
		t.Fatalf("NewVariable failed: %v", err)
	}
	ds, err := dataset.New(dataset.Attrs{"title": "round trip", "levels": []float64{1, 2}}, x, xp1, eta)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.nc")
	if err := WriteDataset(path, ds); err != nil {
		t.Fatalf("WriteDataset failed: %v", err)
	}
	got, err := ReadDataset(path, nil)
	if err != nil {
		t.Fatalf("ReadDataset failed: %v", err)
	}

	if diff := cmp.Diff(ds.Dims(), got.Dims()); diff != "" {
		t.Errorf("dims mismatch (-want +got):\n%s", diff)
	}
	for _, name := range ds.Names() {
		want, _ := ds.Var(name)
		v, ok := got.Var(name)
		if !ok {
			t.Fatalf("variable %s missing after reload", name)
		}
		if diff := cmp.Diff(want.Values(), v.Values(), cmpopts.EquateNaNs()); diff != "" {
			t.Errorf("%s values mismatch (-want +got):\n%s", name, diff)
		}
		if diff := cmp.Diff(want.Attrs(), v.Attrs()); diff != "" {
			t.Errorf("%s attrs mismatch (-want +got):\n%s", name, diff)
		}
	}
	if diff := cmp.Diff(ds.Attrs(), got.Attrs()); diff != "" {
		t.Errorf("global attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestReadDatasetConvertsTypesAndFill(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid_glued.nc")
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		t.Fatalf("create nc: %v", err)
	}
	xDim, _ := f.AddDim("X", 3)
	vx, _ := f.AddVar("X", netcdf.INT, []netcdf.Dim{xDim})
	vdep, _ := f.AddVar("Depth", netcdf.FLOAT, []netcdf.Dim{xDim})
	vrc, _ := f.AddVar("RC", netcdf.DOUBLE, []netcdf.Dim{xDim})
	if err := vdep.Attr("_FillValue").WriteFloat32s([]float32{-999}); err != nil {
		t.Fatalf("write fill: %v", err)
	}
	if err := vdep.Attr("units").WriteBytes([]byte("m")); err != nil {
		t.Fatalf("write units: %v", err)
	}
	if err := f.EndDef(); err != nil {
		t.Fatalf("enddef: %v", err)
	}
	if err := vx.WriteInt32s([]int32{1, 2, 3}); err != nil {
		t.Fatalf("write X: %v", err)
	}
	if err := vdep.WriteFloat32s([]float32{10, -999, 30}); err != nil {
		t.Fatalf("write Depth: %v", err)
	}
	if err := vrc.WriteFloat64s([]float64{1, 2, 3}); err != nil {
		t.Fatalf("write RC: %v", err)
	}
	_ = f.Close()

	ds, err := ReadDataset(path, []string{"RC"})
	if err != nil {
		t.Fatalf("ReadDataset failed: %v", err)
	}
	if ds.Has("RC") {
		t.Error("RC should have been dropped")
	}
	if got, _ := ds.Coord("X"); !cmp.Equal(got, []float64{1, 2, 3}) {
		t.Errorf("X = %v", got)
	}
	depth, _ := ds.Var("Depth")
	if diff := cmp.Diff([]float64{10, math.NaN(), 30}, depth.Values(), cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("Depth mismatch (-want +got):\n%s", diff)
	}
	if _, ok := depth.Attrs()["_FillValue"]; ok {
		t.Error("_FillValue should be consumed")
	}
	if u, _ := depth.Attrs().String("units"); u != "m" {
		t.Errorf("units = %q, want m", u)
	}
}

func TestReadDatasetMissingFile(t *testing.T) {
	_, err := ReadDataset(filepath.Join(t.TempDir(), "absent.nc"), nil)
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("error = %v, want ErrSourceUnavailable", err)
	}
}

func TestReadDatasetCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.nc")
	if err := os.WriteFile(path, []byte("not a netcdf file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadDataset(path, nil); !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("error = %v, want ErrSourceUnavailable", err)
	}
}
