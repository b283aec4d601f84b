package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig reports an out-of-range rule, width or generation count.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrMaxGenerations reports a run that hit its generation ceiling
	// without reaching a fixed point or an edge collision.
	ErrMaxGenerations = errors.New("max generations exceeded")
	// ErrIO matches any IOError via errors.Is.
	ErrIO = errors.New("io error")
)

// IOError wraps a failure to open or write an output resource.
type IOError struct {
	Resource string
	Err      error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Resource, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }
