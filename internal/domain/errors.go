// Package domain holds the error kinds, source layout and variable catalog shared by
// the assembly pipeline and its adapters.
package domain

import "errors"

// Error kinds shared by every stage of the assembly. Callers match them with errors.Is.
var (
	// ErrInvalidArgument reports a caller-supplied value of the wrong type or form.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSourceUnavailable reports a missing or unreadable input file.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMergeConflict reports incompatible definitions of the same dimension or variable
	// across merged datasets.
	ErrMergeConflict = errors.New("merge conflict")

	// ErrStaggering reports axis metadata or dimension sizes that do not describe a valid
	// staggered grid.
	ErrStaggering = errors.New("staggering mismatch")

	// ErrNotFound reports a reference to a variable or dimension that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNameConflict reports a rename into a name that is already taken.
	ErrNameConflict = errors.New("name conflict")
)
