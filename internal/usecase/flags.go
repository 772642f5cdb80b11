package usecase

import (
	"fmt"

	"go.ngs.io/ocean-grid/internal/domain"
)

// Flag names accepted by the assembly.
const (
	FlagCropped   = "cropped"
	FlagDispTable = "dispTable"
	FlagPlotMap   = "plotMap"
)

// ValidateFlags checks that every assembly flag present in flags is a bool.
// Truthy surrogates such as 1 or "true" are rejected.
func ValidateFlags(flags map[string]any) error {
	for _, name := range []string{FlagCropped, FlagDispTable, FlagPlotMap} {
		v, ok := flags[name]
		if !ok {
			continue
		}
		if _, isBool := v.(bool); !isBool {
			return fmt.Errorf("%q needs to be a boolean, got %T: %w", name, v, domain.ErrInvalidArgument)
		}
	}
	return nil
}

// RequestFromFlags validates flags and builds the matching request. Absent flags are false.
func RequestFromFlags(flags map[string]any) (AssembleRequest, error) {
	if err := ValidateFlags(flags); err != nil {
		return AssembleRequest{}, err
	}
	get := func(name string) bool {
		b, _ := flags[name].(bool)
		return b
	}
	return AssembleRequest{
		Cropped:   get(FlagCropped),
		DispTable: get(FlagDispTable),
		PlotMap:   get(FlagPlotMap),
	}, nil
}

// ParseFlag parses the text form of a flag. Only "true" and "false" are accepted.
func ParseFlag(name, raw string) (bool, error) {
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("%q needs to be a boolean, got %q: %w", name, raw, domain.ErrInvalidArgument)
	}
}
