package server

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnsupported is returned by operations this core intentionally does
// not implement.
var ErrUnsupported = errors.New("operation is not supported")

// ErrNoSession occurs when an operation requiring an active request
// session is invoked without one.
var ErrNoSession = &UsageError{message: "no request session in progress"}

func newUsageError(format string, args ...interface{}) *UsageError {
	return &UsageError{message: fmt.Sprintf(format, args...)}
}

// UsageError reports a protocol violation by the caller, such as ending
// a session that was never begun. Usage errors are programming errors,
// never transient, and are never retried.
type UsageError struct {
	message string
}

func (e *UsageError) Error() string {
	return e.message
}

// IsUsageError indicates whether err is a usage error.
func IsUsageError(err error) bool {
	_, ok := err.(*UsageError)
	return ok
}
