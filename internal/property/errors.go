package property

import (
	"fmt"
	"reflect"
)

// ResolutionError reports that an accessor was found and invoked but failed.
type ResolutionError struct {
	Property string
	Type     reflect.Type
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("property %q on %s: %v", e.Property, e.Type, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// PanicError carries the value recovered from a panicking accessor.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("accessor panicked: %v", e.Value) }
