package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for engine operations.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrShortRead indicates the record stream ended before a field was read.
	ErrShortRead = errors.New("dynamo: unexpected end of record stream")

	// ErrBadRecord indicates a field that could not be decoded.
	ErrBadRecord = errors.New("dynamo: malformed record")

	// ErrInvalidConfig indicates an integration parameter outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrNoSelection indicates an operation that needs a selected singularity or orbit.
	ErrNoSelection = errors.New("dynamo: nothing selected")

	// ErrCanceled indicates the operation was stopped by the caller.
	ErrCanceled = errors.New("dynamo: canceled by caller")
)

// ParseError wraps a read failure with the record it occurred in.
// Singularity is -1 outside the singular point section.
type ParseError struct {
	Section     string
	Singularity int
	Field       string
	Wrapped     error
}

func (e *ParseError) Error() string {
	if e.Singularity >= 0 {
		return fmt.Sprintf("%s: singularity %d: %s: %v", e.Section, e.Singularity, e.Field, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s: %v", e.Section, e.Field, e.Wrapped)
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}
