package auth

import "fmt"

// NewError wraps err as an authentication failure for cred.
func NewError(err error, cred *Credential) error {
	return &Error{
		message: fmt.Sprintf("unable to authenticate as \"%s\"", cred.Key()),
		inner:   err,
	}
}

// Error is an error that occurred during authentication.
type Error struct {
	message string
	inner   error
}

func (e *Error) Error() string {
	if e.inner != nil {
		return fmt.Sprintf("%s: %s", e.message, e.inner)
	}
	return e.message
}

// Message gets the basic error message.
func (e *Error) Message() string {
	return e.message
}

// Inner gets the inner error if one exists.
func (e *Error) Inner() error {
	return e.inner
}

// IsError indicates whether err is an authentication error.
func IsError(err error) bool {
	_, ok := err.(*Error)
	return ok
}
