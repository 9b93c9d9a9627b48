package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"taskpro/internal/service"
)

// ConfirmFunc asks the user to approve a destructive action.
type ConfirmFunc func(prompt string) bool

// Confirmed approves unconditionally. For callers that already asked.
func Confirmed(string) bool { return true }

// DeletePrompt is the question put to ConfirmFunc before deleting.
const DeletePrompt = "Delete this task?"

// ListTasks replaces the collection with the server's.
func (m *Model) ListTasks(ctx context.Context) error {
	tasks, err := m.svc.ListTasks(ctx)
	if err != nil {
		err = m.guard(ctx, err)
		if !errors.Is(err, ErrSessionExpired) {
			m.log.Warn("failed to fetch tasks", "error", err)
		}
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		// Logged out while the request was in flight.
		return nil
	}
	m.tasks = tasks
	return nil
}

// RefreshAll re-fetches tasks and stats concurrently and waits for both.
// A stats failure only matters when it ended the session.
func (m *Model) RefreshAll(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		return m.ListTasks(ctx)
	})
	g.Go(func() error {
		if err := m.FetchStats(ctx); errors.Is(err, ErrSessionExpired) {
			return err
		}
		return nil
	})
	return g.Wait()
}

// refreshAfter refreshes after a successful login or write. The call
// already succeeded, so only a lost session is reported.
func (m *Model) refreshAfter(ctx context.Context) error {
	if err := m.RefreshAll(ctx); errors.Is(err, ErrSessionExpired) {
		return err
	}
	return nil
}

// CreateTask validates in, creates the task, resets the form and refreshes.
// A blank title fails with ErrTitleRequired before any request.
func (m *Model) CreateTask(ctx context.Context, in service.TaskInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return ErrTitleRequired
	}
	if in.Priority == "" {
		in.Priority = service.PriorityMedium
	}
	if in.Status == "" {
		in.Status = service.StatusTodo
	}
	if !in.Priority.Valid() {
		return fmt.Errorf("%w: priority %q", ErrInvalidInput, in.Priority)
	}
	if !in.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidInput, in.Status)
	}

	task, err := m.svc.CreateTask(ctx, in)
	if err != nil {
		return m.guard(ctx, fmt.Errorf("create task: %w", err))
	}
	m.log.Debug("task created", "id", task.ID)

	m.SetForm(DefaultForm())
	return m.refreshAfter(ctx)
}

// SubmitForm creates a task from the current form state.
func (m *Model) SubmitForm(ctx context.Context) error {
	return m.CreateTask(ctx, m.Form())
}

// ToggleUpdate returns the update that flips a task between todo and done.
// Any status other than done moves to done.
func ToggleUpdate(current service.Status) service.TaskUpdate {
	next := service.StatusDone
	if current == service.StatusDone {
		next = service.StatusTodo
	}
	return service.TaskUpdate{Status: next, Completed: next == service.StatusDone}
}

// ToggleTask flips task id between todo and done and refreshes.
func (m *Model) ToggleTask(ctx context.Context, id int, current service.Status) error {
	if _, err := m.svc.UpdateTask(ctx, id, ToggleUpdate(current)); err != nil {
		return m.guard(ctx, fmt.Errorf("update task %d: %w", id, err))
	}
	return m.refreshAfter(ctx)
}

// DeleteTask deletes task id once confirm approves and refreshes.
// It reports whether the delete was sent; a nil confirm never approves.
func (m *Model) DeleteTask(ctx context.Context, id int, confirm ConfirmFunc) (bool, error) {
	if confirm == nil || !confirm(DeletePrompt) {
		return false, nil
	}
	if err := m.svc.DeleteTask(ctx, id); err != nil {
		return false, m.guard(ctx, fmt.Errorf("delete task %d: %w", id, err))
	}
	return true, m.refreshAfter(ctx)
}

// GetTask fetches a single task from the server. The collection is untouched.
func (m *Model) GetTask(ctx context.Context, id int) (service.Task, error) {
	task, err := m.svc.GetTask(ctx, id)
	if err != nil {
		return service.Task{}, m.guard(ctx, fmt.Errorf("get task %d: %w", id, err))
	}
	return task, nil
}
