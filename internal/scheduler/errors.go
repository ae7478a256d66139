package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled resolves a task that was cancelled before or while running.
	ErrCancelled = errors.New("task cancelled")
	// ErrTimeout resolves a task whose timeout expired. The operation may still be running.
	ErrTimeout = errors.New("task timed out")
	// ErrDisposed is returned for submissions after Dispose and resolves abandoned work.
	ErrDisposed = errors.New("scheduler disposed")
	// ErrCategoryBusy resolves a critical task whose category ceiling was full.
	ErrCategoryBusy = errors.New("category at concurrency ceiling")
)

// TaskError ties a scheduler-level outcome to the task it resolved.
type TaskError struct {
	TaskID   string
	Category Category
	Err      error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s task %s: %v", e.Category, e.TaskID, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

func taskErr(t *Task, err error) error {
	return &TaskError{TaskID: t.id, Category: t.category, Err: err}
}

// PanicError wraps a value recovered from a panicking operation.
type PanicError struct {
	TaskID string
	Value  any
}

func (e *PanicError) Error() string { return fmt.Sprintf("task %s panicked: %v", e.TaskID, e.Value) }

// IsCancelled reports whether err is a cancellation. Cancellation is never a failure.
func IsCancelled(err error) bool { return errors.Is(err, ErrCancelled) }

// IsTimeout reports whether err is a task timeout.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsDisposed reports whether err came from a disposed scheduler.
func IsDisposed(err error) bool { return errors.Is(err, ErrDisposed) }

// IsCategoryBusy reports whether a critical task was refused by its ceiling.
func IsCategoryBusy(err error) bool { return errors.Is(err, ErrCategoryBusy) }
