// Package ncio converts between NetCDF files and labeled datasets.
package ncio

import (
	"fmt"
	"math"
	"slices"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/ocean-grid/internal/dataset"
	"go.ngs.io/ocean-grid/internal/domain"
)

// fillAttrs name the attributes whose value marks missing data.
var fillAttrs = []string{"_FillValue", "missing_value"}

// ReadDataset loads every variable of a NetCDF file except those named in drop.
// Numeric data are widened to float64 and fill values become NaN.
func ReadDataset(path string, drop []string) (*dataset.Dataset, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file %s: %v: %w", path, err, domain.ErrSourceUnavailable)
	}
	defer func() { _ = nc.Close() }()

	nvars, err := nc.NVars()
	if err != nil {
		return nil, fmt.Errorf("failed to count variables in %s: %w", path, err)
	}

	vars := make([]*dataset.Variable, 0, nvars)
	for i := 0; i < nvars; i++ {
		v := nc.VarN(i)
		name, err := v.Name()
		if err != nil {
			return nil, fmt.Errorf("failed to get variable name in %s: %w", path, err)
		}
		if slices.Contains(drop, name) {
			continue
		}
		variable, err := readVariable(v, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s from %s: %w", name, path, err)
		}
		vars = append(vars, variable)
	}

	attrs, err := readAttrs(nc.NAttrs, nc.AttrN)
	if err != nil {
		return nil, fmt.Errorf("failed to read global attributes of %s: %w", path, err)
	}
	ds, err := dataset.New(attrs, vars...)
	if err != nil {
		return nil, fmt.Errorf("inconsistent dimensions in %s: %w", path, err)
	}
	return ds, nil
}

func readVariable(v netcdf.Var, name string) (*dataset.Variable, error) {
	ncDims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	dims := make([]string, len(ncDims))
	shape := make([]int, len(ncDims))
	total := 1
	for i, d := range ncDims {
		if dims[i], err = d.Name(); err != nil {
			return nil, err
		}
		n, err := d.Len()
		if err != nil {
			return nil, err
		}
		shape[i] = int(n)
		total *= int(n)
	}

	data, err := readFloat64s(v, total)
	if err != nil {
		return nil, err
	}
	attrs, err := readAttrs(v.NAttrs, v.AttrN)
	if err != nil {
		return nil, err
	}
	for _, key := range fillAttrs {
		fill, ok := attrs.Float(key)
		if !ok {
			continue
		}
		for i, x := range data {
			if x == fill {
				data[i] = math.NaN()
			}
		}
		delete(attrs, key)
	}
	return dataset.NewVariable(name, dims, shape, data, attrs)
}

// readFloat64s reads n values of any numeric variable type as float64.
func readFloat64s(v netcdf.Var, n int) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}
	out := make([]float64, n)
	switch t {
	case netcdf.DOUBLE:
		if err := v.ReadFloat64s(out); err != nil {
			return nil, err
		}
	case netcdf.FLOAT:
		tmp := make([]float32, n)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.INT:
		tmp := make([]int32, n)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.SHORT:
		tmp := make([]int16, n)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case netcdf.INT64:
		tmp := make([]int64, n)
		if err := v.ReadInt64s(tmp); err != nil {
			return nil, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
	return out, nil
}

// readAttrs collects text attributes as strings and numeric ones as float64, or
// []float64 when they hold several values.
func readAttrs(count func() (int, error), nth func(int) (netcdf.Attr, error)) (dataset.Attrs, error) {
	n, err := count()
	if err != nil {
		return nil, err
	}
	attrs := make(dataset.Attrs, n)
	for i := 0; i < n; i++ {
		a, err := nth(i)
		if err != nil {
			return nil, err
		}
		value, ok, err := readAttr(a)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", a.Name(), err)
		}
		if ok {
			attrs[a.Name()] = value
		}
	}
	return attrs, nil
}

// readAttr returns the value of a, or false for attribute types that are skipped.
func readAttr(a netcdf.Attr) (any, bool, error) {
	t, err := a.Type()
	if err != nil {
		return nil, false, err
	}
	n, err := a.Len()
	if err != nil {
		return nil, false, err
	}
	if t == netcdf.CHAR {
		buf := make([]byte, n)
		if err := a.ReadBytes(buf); err != nil {
			return nil, false, err
		}
		return string(buf), true, nil
	}

	vals := make([]float64, n)
	switch t {
	case netcdf.DOUBLE:
		if err := a.ReadFloat64s(vals); err != nil {
			return nil, false, err
		}
	case netcdf.FLOAT:
		tmp := make([]float32, n)
		if err := a.ReadFloat32s(tmp); err != nil {
			return nil, false, err
		}
		for i, x := range tmp {
			vals[i] = float64(x)
		}
	case netcdf.INT:
		tmp := make([]int32, n)
		if err := a.ReadInt32s(tmp); err != nil {
			return nil, false, err
		}
		for i, x := range tmp {
			vals[i] = float64(x)
		}
	case netcdf.SHORT:
		tmp := make([]int16, n)
		if err := a.ReadInt16s(tmp); err != nil {
			return nil, false, err
		}
		for i, x := range tmp {
			vals[i] = float64(x)
		}
	default:
		return nil, false, nil
	}
	if len(vals) == 1 {
		return vals[0], true, nil
	}
	return vals, true, nil
}

// WriteDataset writes ds to path as a NetCDF file, replacing any existing file.
// Variables are stored as DOUBLE; string attributes as text and numeric ones as DOUBLE.
func WriteDataset(path string, ds *dataset.Dataset) error {
	nc, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create NetCDF file %s: %w", path, err)
	}
	defer func() { _ = nc.Close() }()

	ncDims := make(map[string]netcdf.Dim, len(ds.Dims()))
	for _, name := range ds.Dims() {
		n, _ := ds.Size(name)
		d, err := nc.AddDim(name, uint64(n))
		if err != nil {
			return fmt.Errorf("failed to add dimension %s: %w", name, err)
		}
		ncDims[name] = d
	}

	ncVars := make([]netcdf.Var, 0, len(ds.Names()))
	for _, name := range ds.Names() {
		v, _ := ds.Var(name)
		dims := make([]netcdf.Dim, 0, len(v.Dims()))
		for _, d := range v.Dims() {
			dims = append(dims, ncDims[d])
		}
		ncVar, err := nc.AddVar(name, netcdf.DOUBLE, dims)
		if err != nil {
			return fmt.Errorf("failed to add variable %s: %w", name, err)
		}
		if err := writeAttrs(ncVar.Attr, v.Attrs()); err != nil {
			return fmt.Errorf("failed to write attributes of %s: %w", name, err)
		}
		ncVars = append(ncVars, ncVar)
	}
	if err := writeAttrs(nc.Attr, ds.Attrs()); err != nil {
		return fmt.Errorf("failed to write global attributes: %w", err)
	}

	if err := nc.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}
	for i, name := range ds.Names() {
		v, _ := ds.Var(name)
		if err := ncVars[i].WriteFloat64s(v.Values()); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

func writeAttrs(attr func(string) netcdf.Attr, attrs dataset.Attrs) error {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		a := attr(k)
		var err error
		switch v := attrs[k].(type) {
		case string:
			err = a.WriteBytes([]byte(v))
		case []float64:
			err = a.WriteFloat64s(v)
		default:
			f, ok := attrs.Float(k)
			if !ok {
				return fmt.Errorf("attribute %s has unsupported type %T", k, v)
			}
			err = a.WriteFloat64s([]float64{f})
		}
		if err != nil {
			return fmt.Errorf("attribute %s: %w", k, err)
		}
	}
	return nil
}
