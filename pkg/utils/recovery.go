package utils

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// PanicError wraps a panic value as an error
type PanicError struct {
	Value      interface{}
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// RecoverAsErrorWith recovers from a panic, logs it through logger and
// stores it as a *PanicError in errPtr. It must be deferred directly.
//
// Example:
//
//	func buildRow() (row map[string]any, err error) {
//	    defer RecoverAsErrorWith(logger, &err)
//	    // ... code that might panic
//	}
func RecoverAsErrorWith(logger *slog.Logger, errPtr *error) {
	if r := recover(); r != nil {
		if logger == nil {
			logger = slog.Default()
		}
		*errPtr = newPanicError(logger, r)
	}
}

func newPanicError(logger *slog.Logger, r interface{}) *PanicError {
	stack := string(debug.Stack())
	logger.Error("Recovered from panic", "panic", r, "stack", stack)
	return &PanicError{Value: r, StackTrace: stack}
}
