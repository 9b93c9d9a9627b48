package viewmodel

import "errors"

// User-facing login messages.
const (
	MsgAuthFailed = "Authentication failed"
	MsgConnection = "Connection error. Please try again."
)

var (
	// ErrTitleRequired is returned when a task is created with a blank title.
	// No request is sent.
	ErrTitleRequired = errors.New("title required")

	// ErrInvalidInput is returned for unknown priority or status values.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSessionExpired is returned after a 401 forced a logout.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoSession is returned by RestoreSession when no usable token is stored.
	ErrNoSession = errors.New("not logged in")
)

// LoginError is a failed login. Message is meant for the user.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string { return e.Message }

func (e *LoginError) Unwrap() error { return e.Err }
