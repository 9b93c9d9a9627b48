package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"taskpro/internal/credstore"
	"taskpro/internal/service"
	"taskpro/internal/testutil"
	"taskpro/internal/viewmodel"
)

var alice = service.User{ID: 1, Username: "alice", FullName: "Alice A", IsAdmin: true, IsActive: true}

type harness struct {
	svc   *testutil.FakeService
	store *credstore.Memory
	vm    *viewmodel.Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	svc := testutil.NewFakeService()
	svc.AddUser(alice, "pw")
	store := credstore.NewMemory()
	return &harness{svc: svc, store: store, vm: viewmodel.New(svc, store)}
}

// start runs Init to completion.
func (h *harness) start(t *testing.T) Model {
	t.Helper()
	m := New(context.Background(), h.vm)
	return drain(t, m, m.Init())
}

// startLoggedIn seeds a stored session before Init.
func (h *harness) startLoggedIn(t *testing.T) Model {
	t.Helper()
	_ = h.store.Set(credstore.KeyToken, testutil.DefaultToken)
	h.svc.SetCurrentUser(alice)
	m := h.start(t)
	if m.screen != screenMain {
		t.Fatalf("expected main screen, got %v (status %q)", m.screen, m.status)
	}
	return m
}

// drain executes cmd and every command it produces, feeding the
// resulting messages back into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, more := m.Update(msg)
			m = next.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

func press(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(k)
	return drain(t, next.(Model), cmd)
}

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
)

func login(t *testing.T, m Model, user, pass string) Model {
	t.Helper()
	m = press(t, m, typeText(user))
	m = press(t, m, keyTab)
	m = press(t, m, typeText(pass))
	return press(t, m, keyEnter)
}

func TestInit_NoStoredSession(t *testing.T) {
	h := newHarness(t)

	m := h.start(t)

	if m.screen != screenLogin {
		t.Errorf("expected login screen, got %v", m.screen)
	}
	for _, c := range h.svc.Calls() {
		if c != "SSOStatus" {
			t.Errorf("unexpected request %s", c)
		}
	}
}

func TestLoginScreen_SSOBanner(t *testing.T) {
	h := newHarness(t)
	h.svc.SSO = service.SSOStatus{Enabled: true, Realm: "corp"}

	m := h.start(t)

	if !strings.Contains(m.View(), "SSO enabled (realm: corp)") {
		t.Errorf("expected SSO banner in view:\n%s", m.View())
	}
}

func TestLogin_Success(t *testing.T) {
	h := newHarness(t)
	m := h.start(t)

	m = login(t, m, "alice", "pw")

	if m.screen != screenMain {
		t.Fatalf("expected main screen, got %v (status %q)", m.screen, m.status)
	}
	view := m.View()
	for _, want := range []string{"Hello, Alice A", "[admin]", "(Local)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if m.password.Value() != "" {
		t.Error("password input not cleared")
	}
}

func TestLogin_Failure(t *testing.T) {
	h := newHarness(t)
	m := h.start(t)

	m = login(t, m, "alice", "wrong")

	if m.screen != screenLogin {
		t.Fatalf("expected login screen, got %v", m.screen)
	}
	if !strings.Contains(m.View(), "Incorrect username or password") {
		t.Errorf("expected error line in view:\n%s", m.View())
	}
}

func TestLogin_EmptyFields(t *testing.T) {
	h := newHarness(t)
	m := h.start(t)

	m = press(t, m, keyTab)
	m = press(t, m, keyEnter)

	if h.svc.CallCount("Login") != 0 {
		t.Error("expected no login request")
	}
	if m.status != "Username and password are required" {
		t.Errorf("status = %q", m.status)
	}
}

func TestInit_RestoresSession(t *testing.T) {
	h := newHarness(t)
	h.svc.AddTask("Write report", service.PriorityHigh, service.StatusTodo)

	m := h.startLoggedIn(t)

	if !strings.Contains(m.View(), "Write report") {
		t.Errorf("expected task in view:\n%s", m.View())
	}
}

func TestToggle(t *testing.T) {
	h := newHarness(t)
	id := h.svc.AddTask("a", service.PriorityLow, service.StatusTodo)
	m := h.startLoggedIn(t)

	m = press(t, m, keySpace)

	updates := h.svc.Updates()
	if len(updates) != 1 || updates[0].ID != id || updates[0].Update.Status != service.StatusDone || !updates[0].Update.Completed {
		t.Errorf("unexpected updates: %+v", updates)
	}
	if task, _ := h.vm.Task(id); task.Status != service.StatusDone {
		t.Errorf("collection not refreshed: %+v", task)
	}
	if m.status != "Toggled task" {
		t.Errorf("status = %q", m.status)
	}
}

func TestFilterCycling(t *testing.T) {
	h := newHarness(t)
	h.svc.AddTask("open", service.PriorityLow, service.StatusTodo)
	h.svc.AddTask("closed", service.PriorityUrgent, service.StatusDone)
	m := h.startLoggedIn(t)

	m = press(t, m, typeText("s"))
	if got := h.vm.Filter().Status; got != "todo" {
		t.Errorf("status filter = %q, want todo", got)
	}
	view := m.View()
	if !strings.Contains(view, "open") || strings.Contains(view, "closed") {
		t.Errorf("unexpected filtered view:\n%s", view)
	}

	m = press(t, m, typeText("p"))
	if got := h.vm.Filter().Priority; got != "low" {
		t.Errorf("priority filter = %q, want low", got)
	}
}

func TestDelete_ConfirmGate(t *testing.T) {
	h := newHarness(t)
	h.svc.AddTask("doomed", service.PriorityLow, service.StatusTodo)
	m := h.startLoggedIn(t)

	m = press(t, m, typeText("d"))
	if m.mode != modeConfirmDelete || !strings.Contains(m.status, "doomed") {
		t.Fatalf("expected confirmation prompt, got mode %v status %q", m.mode, m.status)
	}
	m = press(t, m, typeText("n"))
	if h.svc.CallCount("DeleteTask") != 0 {
		t.Fatal("declined delete sent a request")
	}

	m = press(t, m, typeText("d"))
	m = press(t, m, typeText("y"))
	if len(h.svc.StoredTasks()) != 0 {
		t.Error("task not deleted")
	}
	if m.status != "Deleted task" {
		t.Errorf("status = %q", m.status)
	}
}

func TestCreateForm(t *testing.T) {
	h := newHarness(t)
	m := h.startLoggedIn(t)

	m = press(t, m, typeText("a"))
	if m.mode != modeCreate {
		t.Fatalf("expected create mode, got %v", m.mode)
	}
	m = press(t, m, typeText("Ship it"))
	m = press(t, m, keyTab)
	m = press(t, m, typeText("soon"))
	m = press(t, m, keyTab)
	m = press(t, m, keyRight) // medium -> high
	m = press(t, m, keyEnter)

	stored := h.svc.StoredTasks()
	if len(stored) != 1 {
		t.Fatalf("expected 1 task, got %d", len(stored))
	}
	got := stored[0]
	if got.Title != "Ship it" || got.Description != "soon" || got.Priority != service.PriorityHigh || got.Status != service.StatusTodo {
		t.Errorf("unexpected task: %+v", got)
	}
	if m.mode != modeList || m.title.Value() != "" {
		t.Errorf("form not closed and reset: mode %v title %q", m.mode, m.title.Value())
	}
}

func TestCreateForm_BlankTitle(t *testing.T) {
	h := newHarness(t)
	m := h.startLoggedIn(t)
	h.svc.ResetCalls()

	m = press(t, m, typeText("a"))
	m = press(t, m, keyEnter)

	if len(h.svc.Calls()) != 0 {
		t.Errorf("expected no requests, got %v", h.svc.Calls())
	}
	if m.mode != modeCreate {
		t.Error("form should stay open")
	}
	if m.status != "Title is required" {
		t.Errorf("status = %q", m.status)
	}
}

func TestUnauthorized_ReturnsToLogin(t *testing.T) {
	h := newHarness(t)
	m := h.startLoggedIn(t)
	h.svc.ListTasksErr = testutil.ErrUnauthorized

	m = press(t, m, typeText("r"))

	if m.screen != screenLogin {
		t.Fatalf("expected login screen, got %v", m.screen)
	}
	if h.store.Len() != 0 {
		t.Error("credentials not cleared")
	}
	if !strings.Contains(m.status, "Session expired") {
		t.Errorf("status = %q", m.status)
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	m := h.startLoggedIn(t)

	m = press(t, m, typeText("L"))

	if m.screen != screenLogin || m.status != "Logged out" {
		t.Errorf("expected login screen after logout, got %v %q", m.screen, m.status)
	}
	if h.vm.LoggedIn() || h.store.Len() != 0 {
		t.Error("session not cleared")
	}
}

func TestStatsPanel(t *testing.T) {
	h := newHarness(t)
	h.svc.AddTask("a", service.PriorityLow, service.StatusDone)
	h.svc.AddTask("b", service.PriorityLow, service.StatusTodo)
	m := h.startLoggedIn(t)

	if strings.Contains(m.View(), "Total 2") {
		t.Fatal("stats panel shown before toggling")
	}
	m = press(t, m, typeText("t"))
	view := m.View()
	if !strings.Contains(view, "Total 2 • Completed 1 • Active 1") || !strings.Contains(view, "50%") {
		t.Errorf("stats panel missing:\n%s", view)
	}
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	m := h.startLoggedIn(t)

	_, cmd := m.Update(typeText("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
