// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Service defines the interface for task backend operations.
// Every Task Manager Pro API call goes through this interface.
// Authenticated calls carry the bearer token currently held in the
// credential store; there is no token argument.
type Service interface {
	// SSOStatus returns the server's SSO provisioning. Unauthenticated.
	SSOStatus(ctx context.Context) (SSOStatus, error)

	// Login exchanges credentials for tokens. Unauthenticated.
	Login(ctx context.Context, username, password string) (LoginResult, error)

	// Logout notifies the server that the current token is no longer used.
	Logout(ctx context.Context) error

	// Me returns the user the current token belongs to.
	Me(ctx context.Context) (User, error)

	// ListTasks returns every task of the authenticated user in API order.
	ListTasks(ctx context.Context) ([]Task, error)

	// GetTask returns a single task.
	GetTask(ctx context.Context, id int) (Task, error)

	// CreateTask creates a task and returns it.
	CreateTask(ctx context.Context, in TaskInput) (Task, error)

	// UpdateTask changes a task's status and returns it.
	UpdateTask(ctx context.Context, id int, upd TaskUpdate) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id int) error

	// Stats returns aggregate counters for the authenticated user.
	Stats(ctx context.Context) (Stats, error)

	// ListUsers returns all accounts. Admin only.
	ListUsers(ctx context.Context) ([]User, error)
}

var (
	// ErrUnauthorized matches any 401 response.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden matches any 403 response.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound matches any 404 response.
	ErrNotFound = errors.New("not found")

	// ErrNotLoggedIn is returned when an authenticated call is attempted
	// without a stored token.
	ErrNotLoggedIn = errors.New("not logged in")
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status int
	Detail string
	Err    error
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Detail)
	}
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

func (e *APIError) Unwrap() error { return e.Err }

// Is matches the status sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// IsAuthError reports whether err means the session is no longer usable:
// a 401 from the server or a missing token.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotLoggedIn)
}
