// Package simerr implements the error taxonomy: StructuralError,
// InvalidStateError, ModelFailureError and IOError. This package is
// deliberately built on the standard library's errors/fmt.Errorf("%w",
// …) wrapping, which is Go's idiomatic mechanism for exactly this kind
// of discriminated error set via errors.As; see DESIGN.md for the
// justification for standard-library-only packages.
package simerr

import "fmt"

// StructuralError marks an unknown model, unknown port, unknown view,
// missing dynamics plugin, or duplicate registration. Fatal at the
// relevant call; the engine aborts the run.
type StructuralError struct {
	Kind   string
	Detail string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error (%s): %s", e.Kind, e.Detail)
}

// NewStructural builds a StructuralError.
func NewStructural(kind, detail string) error {
	return &StructuralError{Kind: kind, Detail: detail}
}

// InvalidStateError marks a violated precondition of an Executive call.
// Reported to the caller; the engine remains consistent.
type InvalidStateError struct {
	Call   string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state for %s: %s", e.Call, e.Reason)
}

// NewInvalidState builds an InvalidStateError.
func NewInvalidState(call, reason string) error {
	return &InvalidStateError{Call: call, Reason: reason}
}

// ModelFailureError wraps a failure raised from inside an atomic model's
// callback. Propagates as a fatal run abort; the Coordinator still
// attempts Finish on surviving Views to flush partial traces.
type ModelFailureError struct {
	Model string
	Cause error
}

func (e *ModelFailureError) Error() string {
	return fmt.Sprintf("model %q failed: %v", e.Model, e.Cause)
}

func (e *ModelFailureError) Unwrap() error {
	return e.Cause
}

// NewModelFailure builds a ModelFailureError.
func NewModelFailure(model string, cause error) error {
	return &ModelFailureError{Model: model, Cause: cause}
}

// IOError wraps a StreamWriter I/O failure. Coordinator.Finish returns
// the first View Close failure as an IOError after closing every other
// view; write errors during Process are discarded by the views and do
// not abort the simulation loop. Nothing is logged.
type IOError struct {
	Writer string
	Cause  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("stream writer %q I/O error: %v", e.Writer, e.Cause)
}

func (e *IOError) Unwrap() error {
	return e.Cause
}

// NewIOError builds an IOError.
func NewIOError(writer string, cause error) error {
	return &IOError{Writer: writer, Cause: cause}
}
