package manager

import (
	"errors"
	"fmt"

	"localmind/internal/scheduler"
)

var (
	// ErrNotReady is returned when a generation is requested outside Ready.
	ErrNotReady = errors.New("model not ready")
	// ErrGenerationInFlight is returned while another generation is running.
	ErrGenerationInFlight = errors.New("generation already in flight")
	// ErrDisposed is returned after Close.
	ErrDisposed = errors.New("manager disposed")

	errLoadAbandoned = errors.New("model load abandoned")
)

// PromptTooLongError reports a prompt that does not fit the context window
// once the output budget is reserved.
type PromptTooLongError struct {
	Tokens int
	Limit  int
}

func (e *PromptTooLongError) Error() string {
	return fmt.Sprintf("prompt too long: %d tokens exceeds budget of %d", e.Tokens, e.Limit)
}

// ExtractionError wraps a failure copying the bundled model to disk.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string { return "extract model to " + e.Path + ": " + e.Err.Error() }
func (e *ExtractionError) Unwrap() error { return e.Err }

// LoadError wraps a failure opening the model in the engine.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return "load model " + e.Path + ": " + e.Err.Error() }
func (e *LoadError) Unwrap() error { return e.Err }

// IntegrityError reports an on-disk model whose size does not match the bundle.
type IntegrityError struct {
	Path     string
	Got      int64
	Expected int64
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("model %s size %d differs from bundled size %d", e.Path, e.Got, e.Expected)
}

// dependencyUnavailableError signals a missing runtime dependency (e.g. llama.cpp)
// so the HTTP layer can return 503 instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var d dependencyUnavailableError
	return errors.As(err, &d)
}

func IsNotReady(err error) bool           { return errors.Is(err, ErrNotReady) }
func IsGenerationInFlight(err error) bool { return errors.Is(err, ErrGenerationInFlight) }

// IsDisposed reports whether err came from a closed manager or its scheduler.
func IsDisposed(err error) bool { return errors.Is(err, ErrDisposed) || scheduler.IsDisposed(err) }

func IsPromptTooLong(err error) bool {
	var p *PromptTooLongError
	return errors.As(err, &p)
}

// IsCancelled reports whether a generation was cancelled. Cancellation is not a failure.
func IsCancelled(err error) bool { return scheduler.IsCancelled(err) }

// IsTimeout reports whether a task exceeded its timeout.
func IsTimeout(err error) bool { return scheduler.IsTimeout(err) }
