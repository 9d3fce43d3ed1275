package mapgen

import (
	"errors"
	"fmt"
)

// Sentinel errors returned across the public surface.
var (
	// ErrInvalidInput marks a caller error; no job is created.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidSize marks a world size outside the supported range.
	ErrInvalidSize = fmt.Errorf("%w: size out of range", ErrInvalidInput)
	// ErrAdmissionRejected is returned when the in-flight ceiling is reached.
	ErrAdmissionRejected = errors.New("admission rejected: generation ceiling reached")
	// ErrNotFound is returned for status queries on unknown job ids.
	ErrNotFound = errors.New("job not found")
)

// RenderError reports a fatal failure in the browser pipeline. All render
// failures are treated as transient because they stem from an external,
// non-deterministic dependency.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Retryable always reports true for render failures.
func (e *RenderError) Retryable() bool { return true }

// ProcessingError reports a failure after a successful capture (geometry,
// crop, encode, or store).
type ProcessingError struct {
	Step string
	Err  error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing %s: %v", e.Step, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// Retryable always reports true for processing failures.
func (e *ProcessingError) Retryable() bool { return true }
