package conn

import (
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/mgo.v2/bson"

	"github.com/testn/mongogo/model"
)

// ErrPoolClosed is an error that occurs when attempting to use a pool
// that is closed.
var ErrPoolClosed = errors.New("pool is closed")

// NewConnectionError wraps inner as a connection establishment failure
// against addr.
func NewConnectionError(addr model.Addr, inner error, format string, args ...interface{}) error {
	return &ConnectionError{
		Addr:    addr,
		message: fmt.Sprintf(format, args...),
		inner:   inner,
	}
}

// ConnectionError represents a failure to establish or use a connection.
type ConnectionError struct {
	Addr model.Addr

	message string
	inner   error
}

func (e *ConnectionError) Error() string {
	if e.inner != nil {
		return fmt.Sprintf("connection(%s) error: %s: %s", e.Addr, e.message, e.inner)
	}
	return fmt.Sprintf("connection(%s) error: %s", e.Addr, e.message)
}

// Message gets the basic error message.
func (e *ConnectionError) Message() string {
	return e.message
}

// Inner gets the inner error if one exists.
func (e *ConnectionError) Inner() error {
	return e.inner
}

// IsConnectionError indicates whether err is a connection error.
func IsConnectionError(err error) bool {
	_, ok := err.(*ConnectionError)
	return ok
}

// CommandFailureError is an error with a failure response as a document.
type CommandFailureError struct {
	Msg      string
	Response bson.M
}

func (e *CommandFailureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Msg, e.Response)
}

// Message retrieves the message of the error.
func (e *CommandFailureError) Message() string {
	return e.Msg
}
