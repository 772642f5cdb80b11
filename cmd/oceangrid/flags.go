package main

import (
	"strconv"

	"github.com/spf13/pflag"

	"go.ngs.io/ocean-grid/internal/usecase"
)

// strictBool is a bool flag that accepts only "true" and "false".
type strictBool struct {
	name  string
	value bool
}

func (b *strictBool) String() string { return strconv.FormatBool(b.value) }
func (b *strictBool) Type() string   { return "bool" }

func (b *strictBool) Set(s string) error {
	v, err := usecase.ParseFlag(b.name, s)
	if err != nil {
		return err
	}
	b.value = v
	return nil
}

// addStrictBool registers a strict bool flag; a bare --name means true.
func addStrictBool(fs *pflag.FlagSet, name, usage string) *strictBool {
	b := &strictBool{name: name}
	fs.VarPF(b, name, "", usage).NoOptDefVal = "true"
	return b
}
