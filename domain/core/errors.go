package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Fatal input errors. Raised immediately, never retried.
	ErrShapeMismatch  = errors.New("dimension mismatch between lower and upper bounds")
	ErrUnknownSolver  = errors.New("unknown solver method")
	ErrFlatProfile    = errors.New("statistic profile is flat, no best-fit value can be determined")
	ErrInvalidProfile = errors.New("statistic profile has no finite value")
	ErrInvalidInput   = errors.New("invalid input")

	// Fatal runtime errors. The caller cannot proceed without a result.
	ErrMinimumNotFound    = errors.New("failed to find minimum in interpolated profile")
	ErrUpperLimitNotFound = errors.New("failed to find upper limit: no valid root found")
	ErrOptimization       = errors.New("optimization failed")

	// Capability errors. An explicit failure instead of a plausible wrong answer.
	ErrNotImplemented = errors.New("not implemented")
)

// Error constructors with context
func NewShapeMismatchError(nLower, nUpper int) error {
	return fmt.Errorf("%w: got %d lower bounds and %d upper bounds", ErrShapeMismatch, nLower, nUpper)
}

func NewUnknownSolverError(method string) error {
	return fmt.Errorf("%w: %q", ErrUnknownSolver, method)
}

func NewInvalidInputError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

// Error checking helpers
func IsInputError(err error) bool {
	return errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrUnknownSolver) ||
		errors.Is(err, ErrFlatProfile) ||
		errors.Is(err, ErrInvalidProfile) ||
		errors.Is(err, ErrInvalidInput)
}

func IsRuntimeError(err error) bool {
	return errors.Is(err, ErrMinimumNotFound) ||
		errors.Is(err, ErrUpperLimitNotFound) ||
		errors.Is(err, ErrOptimization)
}
