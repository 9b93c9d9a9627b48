// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"taskpro/internal/service"
)

// DefaultToken is the access token FakeService issues on login.
const DefaultToken = "t1"

// ErrUnauthorized is a 401 response as the server sends it.
var ErrUnauthorized = &service.APIError{Status: http.StatusUnauthorized, Detail: "Could not validate credentials"}

// ErrNotFound is a 404 response for a task.
var ErrNotFound = &service.APIError{Status: http.StatusNotFound, Detail: "Task not found"}

// FakeService is an in-memory implementation of service.Service for testing.
// It does not check tokens; auth failures are injected through the Err fields.
type FakeService struct {
	mu        sync.Mutex
	passwords map[string]string
	users     map[string]service.User
	current   *service.User
	tasks     []service.Task
	nextID    int
	calls     []string
	updates   []Update

	// Login response knobs
	Token        string
	RefreshToken string
	AuthType     string
	SSO          service.SSOStatus

	// Error injection for testing
	SSOStatusErr  error
	LoginErr      error
	LogoutErr     error
	MeErr         error
	ListTasksErr  error
	GetTaskErr    error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error
	StatsErr      error
	ListUsersErr  error
}

// Update is a recorded UpdateTask call.
type Update struct {
	ID     int
	Update service.TaskUpdate
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		passwords: make(map[string]string),
		users:     make(map[string]service.User),
		nextID:    1,
		Token:     DefaultToken,
	}
}

// AddUser registers an account that can log in.
func (f *FakeService) AddUser(user service.User, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == 0 {
		user.ID = len(f.users) + 1
	}
	f.users[user.Username] = user
	f.passwords[user.Username] = password
}

// SetCurrentUser sets the user Me returns, as if a token for them were stored.
func (f *FakeService) SetCurrentUser(user service.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = &user
}

// AddTask adds a task and returns its ID.
func (f *FakeService) AddTask(title string, priority service.Priority, status service.Status) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addTaskLocked(service.TaskInput{Title: title, Priority: priority, Status: status})
}

func (f *FakeService) addTaskLocked(in service.TaskInput) int {
	id := f.nextID
	f.nextID++
	now := service.Timestamp{Time: time.Date(2026, 1, 1, 0, 0, id, 0, time.UTC)}
	f.tasks = append(f.tasks, service.Task{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		Completed:   in.Status == service.StatusDone,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return id
}

// Calls returns the recorded method names in call order.
func (f *FakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many times method was called.
func (f *FakeService) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

// ResetCalls forgets recorded calls.
func (f *FakeService) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Updates returns the recorded UpdateTask calls.
func (f *FakeService) Updates() []Update {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Update, len(f.updates))
	copy(out, f.updates)
	return out
}

// StoredTasks returns the server-side tasks.
func (f *FakeService) StoredTasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
}

// SSOStatus implements service.Service.
func (f *FakeService) SSOStatus(ctx context.Context) (service.SSOStatus, error) {
	f.record("SSOStatus")
	if f.SSOStatusErr != nil {
		return service.SSOStatus{}, f.SSOStatusErr
	}
	return f.SSO, nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, username, password string) (service.LoginResult, error) {
	f.record("Login")
	if f.LoginErr != nil {
		return service.LoginResult{}, f.LoginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	want, ok := f.passwords[username]
	if !ok || want != password {
		return service.LoginResult{}, &service.APIError{Status: http.StatusUnauthorized, Detail: "Incorrect username or password"}
	}
	user := f.users[username]
	f.current = &user
	return service.LoginResult{
		AccessToken:  f.Token,
		TokenType:    "bearer",
		RefreshToken: f.RefreshToken,
		AuthType:     f.AuthType,
		User:         user,
	}, nil
}

// Logout implements service.Service.
func (f *FakeService) Logout(ctx context.Context) error {
	f.record("Logout")
	return f.LogoutErr
}

// Me implements service.Service.
func (f *FakeService) Me(ctx context.Context) (service.User, error) {
	f.record("Me")
	if f.MeErr != nil {
		return service.User{}, f.MeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return service.User{}, ErrUnauthorized
	}
	return *f.current, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.StoredTasks(), nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id int) (service.Task, error) {
	f.record("GetTask")
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return service.Task{}, ErrNotFound
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addTaskLocked(in)
	return f.tasks[len(f.tasks)-1], nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id int, upd service.TaskUpdate) (service.Task, error) {
	f.record("UpdateTask")
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, Update{ID: id, Update: upd})
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i].Status = upd.Status
			f.tasks[i].Completed = upd.Completed
			return f.tasks[i], nil
		}
	}
	return service.Task{}, ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Stats implements service.Service. Counters are computed from the tasks.
func (f *FakeService) Stats(ctx context.Context) (service.Stats, error) {
	f.record("Stats")
	if f.StatsErr != nil {
		return service.Stats{}, f.StatsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	st := service.Stats{
		TotalTasks: len(f.tasks),
		ByStatus:   make(map[string]int),
		ByPriority: make(map[string]int),
	}
	for _, t := range f.tasks {
		if t.Completed {
			st.CompletedTasks++
		}
		st.ByStatus[string(t.Status)]++
		st.ByPriority[string(t.Priority)]++
	}
	st.ActiveTasks = st.TotalTasks - st.CompletedTasks
	return st, nil
}

// ListUsers implements service.Service.
func (f *FakeService) ListUsers(ctx context.Context) ([]service.User, error) {
	f.record("ListUsers")
	if f.ListUsersErr != nil {
		return nil, f.ListUsersErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
