// Package viewmodel holds all client state of a taskpro session and
// orchestrates the API calls that change it.
//
// The Model has four facets: auth (user and token), tasks (the collection,
// replaced in full after every mutation), stats (server-side aggregates)
// and filter (a client-side predicate over the collection). Presentation
// layers read state through accessors and never talk to the API directly.
//
// Every authenticated call that comes back 401, or cannot be made because
// no token is stored, ends the session through Logout.
package viewmodel

import (
	"io"
	"log/slog"
	"sync"

	"taskpro/internal/credstore"
	"taskpro/internal/service"
)

// AuthType tags how the session was established.
type AuthType string

const (
	AuthLocal    AuthType = "local"
	AuthKeycloak AuthType = "keycloak"
)

// Label returns a short human name for the auth type.
func (a AuthType) Label() string {
	if a == AuthKeycloak {
		return "SSO"
	}
	return "Local"
}

// Session is the authenticated identity.
type Session struct {
	User     service.User
	Token    string
	AuthType AuthType
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger used for silently degraded failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// Model is the session and task view-model.
type Model struct {
	svc   service.Service
	store credstore.Store
	log   *slog.Logger

	// mu guards the fields below. It is never held across a service call.
	mu      sync.Mutex
	session *Session
	tasks   []service.Task
	stats   *service.Stats
	sso     *service.SSOStatus
	filter  Filter
	form    service.TaskInput
	errMsg  string
}

// New creates a logged-out Model.
func New(svc service.Service, store credstore.Store, opts ...Option) *Model {
	m := &Model{
		svc:    svc,
		store:  store,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		filter: DefaultFilter(),
		form:   DefaultForm(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultForm returns an empty creation form with default priority and status.
func DefaultForm() service.TaskInput {
	return service.TaskInput{
		Priority: service.PriorityMedium,
		Status:   service.StatusTodo,
	}
}

// Session returns the current session, if any.
func (m *Model) Session() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

// LoggedIn reports whether a session exists.
func (m *Model) LoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// Tasks returns a copy of the full task collection.
func (m *Model) Tasks() []service.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]service.Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}

// Task returns the task with id from the collection.
func (m *Model) Task(id int) (service.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Stats returns the last fetched stats, if any.
func (m *Model) Stats() (service.Stats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stats == nil {
		return service.Stats{}, false
	}
	return *m.stats, true
}

// SSO returns the last fetched SSO provisioning, if any.
func (m *Model) SSO() (service.SSOStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sso == nil {
		return service.SSOStatus{}, false
	}
	return *m.sso, true
}

// Filter returns the current filter.
func (m *Model) Filter() Filter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter
}

// SetFilter replaces the current filter.
func (m *Model) SetFilter(f Filter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter = f
}

// Form returns the creation form state.
func (m *Model) Form() service.TaskInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form
}

// SetForm replaces the creation form state.
func (m *Model) SetForm(in service.TaskInput) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form = in
}

// Error returns the message to show on the login screen, if any.
func (m *Model) Error() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errMsg
}

func (m *Model) setError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errMsg = msg
}
