package call

import (
	"errors"
	"fmt"
)

// ErrUnsupportedArg is the sentinel all duplication failures unwrap to.
var ErrUnsupportedArg = errors.New("unsupported argument type")

// UnsupportedArgError reports which argument of which selector could
// not be duplicated safely. Index is zero-based over the call's real
// arguments. Raised synchronously at the dispatch site, before any
// delivery is submitted, so the caller's stack trace points at the
// offending call.
type UnsupportedArgError struct {
	Method string
	Index  int
	Kind   Kind
}

func (e *UnsupportedArgError) Error() string {
	return fmt.Sprintf("%v: argument %d of %s (%s)", ErrUnsupportedArg, e.Index, e.Method, e.Kind)
}

func (e *UnsupportedArgError) Unwrap() error { return ErrUnsupportedArg }
