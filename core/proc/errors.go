package proc

import (
	"errors"
	"fmt"
)

var (
	ErrCreateFailed    = errors.New("cannot create process")
	ErrPipeFailed      = errors.New("cannot create pipe")
	ErrDuplicateFailed = errors.New("cannot duplicate descriptor")
	ErrOpenRedirect    = errors.New("cannot open redirection")
	ErrExecFailed      = errors.New("cannot execute")
)

// ProcessError describes a failure to set up or start one pipeline stage.
type ProcessError struct {
	// Kind is one of the Err* sentinels in this package.
	Kind error
	// Stage names what failed: the program or the redirection target.
	Stage string
	// Err is the underlying cause.
	Err error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap allows errors.Is to match both the kind and the cause.
func (e *ProcessError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
