package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks across the script boundary.
var (
	ErrStrideMismatch   = errors.New("stride mismatch")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// StrideError reports a flat submission whose length is not a multiple of the
// record stride. Got holds the remainder, not the full length.
// The message format is matched by scripts and must not change.
type StrideError struct {
	Op   string
	Got  int
	Want int
}

func (e *StrideError) Error() string {
	return fmt.Sprintf("ARG_ERROR: %s stride mismatch (got=%d, want=%d)", e.Op, e.Got, e.Want)
}

// Is reports ErrStrideMismatch as a match.
func (e *StrideError) Is(target error) bool {
	return target == ErrStrideMismatch
}

// CheckStride returns a *StrideError when n is not a multiple of stride.
func CheckStride(op string, n, stride int) error {
	if rem := n % stride; rem != 0 {
		return &StrideError{Op: op, Got: rem, Want: stride}
	}
	return nil
}

// CapacityError reports an exhausted hard budget.
type CapacityError struct {
	Resource string
	Limit    int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("CAPACITY_ERROR: %s budget exhausted (limit=%d)", e.Resource, e.Limit)
}

// Is reports ErrCapacityExceeded as a match.
func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

// ArgError reports a malformed argument at the script boundary.
type ArgError struct {
	Op     string
	Reason string
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("ARG_ERROR: %s %s", e.Op, e.Reason)
}

// Is reports ErrInvalidArgument as a match.
func (e *ArgError) Is(target error) bool {
	return target == ErrInvalidArgument
}
