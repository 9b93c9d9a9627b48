package commands_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"runtime"
	"strings"
	"testing"

	"taskpro/internal/commands"
	"taskpro/internal/config"
	"taskpro/internal/credstore"
	"taskpro/internal/exitcode"
	"taskpro/internal/service"
	"taskpro/internal/testutil"
	"taskpro/internal/viewmodel"
)

var alice = service.User{ID: 1, Username: "alice", FullName: "Alice A", Email: "alice@example.com", IsActive: true}

type env struct {
	svc   *testutil.FakeService
	store *credstore.Memory
	vm    *viewmodel.Model
}

func newEnv(t *testing.T) *env {
	t.Helper()
	svc := testutil.NewFakeService()
	svc.AddUser(alice, "pw")
	store := credstore.NewMemory()
	return &env{svc: svc, store: store, vm: viewmodel.New(svc, store)}
}

// restore logs in the way the dispatcher does for commands that need a
// session, then forgets the calls it made.
func (e *env) restore(t *testing.T) *env {
	t.Helper()
	_ = e.store.Set(credstore.KeyToken, testutil.DefaultToken)
	e.svc.SetCurrentUser(alice)
	if err := e.vm.RestoreSession(context.Background()); err != nil {
		t.Fatalf("failed to restore session: %v", err)
	}
	e.svc.ResetCalls()
	return e
}

// runCommand is a helper to run a command against the env's view model.
func runCommand(t *testing.T, cmd commands.Command, e *env, args []string, in string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cfg := &config.Config{
		Dir:   t.TempDir(),
		Quiet: quiet,
	}

	var vm *viewmodel.Model
	if e != nil {
		vm = e.vm
	}

	ctx := context.Background()
	code = cmd.Run(ctx, cfg, vm, args, strings.NewReader(in), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, "", false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskpro 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestVersionCommand_Verbose(t *testing.T) {
	cmd := &commands.VersionCmd{}
	cmd.SetVerbose(true)
	cfg := &config.Config{Dir: "/tmp/taskpro", Server: "http://localhost:8000", APIURL: "/api", CredentialStore: config.StoreSQLite}

	var out, errOut bytes.Buffer
	code := cmd.Run(context.Background(), cfg, nil, nil, strings.NewReader(""), &out, &errOut)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, errOut.String())
	}
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if lines[0] != "taskpro 0.1.0" {
		t.Errorf("expected version first, got %q", lines[0])
	}
	for _, want := range []string{
		"go:          " + runtime.Version(),
		"api:         http://localhost:8000/api\n",
		"credentials: sqlite\n",
		"config:      /tmp/taskpro\n",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, out.String())
		}
	}
}

// TestVersionCommand_InvalidServer verifies a bad endpoint is reported
// rather than failing the command.
func TestVersionCommand_InvalidServer(t *testing.T) {
	cmd := &commands.VersionCmd{}
	cmd.SetVerbose(true)
	cfg := &config.Config{Server: "nowhere", APIURL: "/api"}

	var out, errOut bytes.Buffer
	code := cmd.Run(context.Background(), cfg, nil, nil, strings.NewReader(""), &out, &errOut)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(out.String(), `api:         invalid (invalid server "nowhere")`) {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestVersionCommand_UnexpectedArgument(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, []string{"now"}, "", false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unexpected argument: now\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, nil, "", false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "help", stdout)
}

// TestHelpCommand_ListsEveryCommand verifies each registered command
// appears in the help text.
func TestHelpCommand_ListsEveryCommand(t *testing.T) {
	stdout, _, _ := runCommand(t, &commands.HelpCmd{}, nil, nil, "", false)

	for _, cmd := range commands.DefaultRegistry.All() {
		if !strings.Contains(stdout, "taskpro "+cmd.Name()) {
			t.Errorf("help output missing %q", cmd.Name())
		}
	}
}

func TestListCommand_Tasks(t *testing.T) {
	e := newEnv(t)
	e.svc.AddTask("Buy milk", service.PriorityLow, service.StatusTodo)
	e.svc.AddTask("Ship release", service.PriorityUrgent, service.StatusDone)
	e.restore(t)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, e, nil, "", false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "   1  [ ] low      todo        Buy milk\n" +
		"   2  [x] urgent   done        Ship release\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
	if len(e.svc.Calls()) != 0 {
		t.Errorf("list should reuse the loaded collection, got %v", e.svc.Calls())
	}
}

func TestListCommand_Empty(t *testing.T) {
	e := newEnv(t).restore(t)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, e, nil, "", false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected 'no tasks found', got %q", stdout)
	}

	stdout, _, _ = runCommand(t, &commands.ListCmd{}, e, nil, "", true)
	if stdout != "" {
		t.Errorf("expected no output in quiet mode, got %q", stdout)
	}
}

func TestListCommand_Filter(t *testing.T) {
	e := newEnv(t)
	e.svc.AddTask("Buy milk", service.PriorityLow, service.StatusTodo)
	e.svc.AddTask("Write report", service.PriorityHigh, service.StatusInProgress)
	e.svc.AddTask("Fix bug", service.PriorityHigh, service.StatusTodo)
	e.restore(t)

	cmd := &commands.ListCmd{}
	cmd.SetFilter("todo", "HIGH")
	stdout, _, code := runCommand(t, cmd, e, nil, "", false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "------------\nstatus: todo, priority: high\n------------\n" +
		"   3  [ ] high     todo        Fix bug\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_InvalidFilter(t *testing.T) {
	e := newEnv(t).restore(t)

	cmd := &commands.ListCmd{}
	cmd.SetFilter("blocked", "")
	_, stderr, code := runCommand(t, cmd, e, nil, "", false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid status: blocked\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAddCommand(t *testing.T) {
	e := newEnv(t).restore(t)

	cmd := &commands.AddCmd{}
	cmd.SetFields("two litres", "high", "in-progress")
	stdout, stderr, code := runCommand(t, cmd, e, []string{"Buy", "milk"}, "", false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	stored := e.svc.StoredTasks()
	if len(stored) != 1 {
		t.Fatalf("expected 1 task, got %d", len(stored))
	}
	got := stored[0]
	if got.Title != "Buy milk" || got.Description != "two litres" || got.Priority != service.PriorityHigh || got.Status != service.StatusInProgress {
		t.Errorf("unexpected task: %+v", got)
	}
	if len(e.vm.Tasks()) != 1 {
		t.Error("collection not refreshed after create")
	}
}

func TestAddCommand_Defaults(t *testing.T) {
	e := newEnv(t).restore(t)

	_, _, code := runCommand(t, &commands.AddCmd{}, e, []string{"Buy milk"}, "", false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	got := e.svc.StoredTasks()[0]
	if got.Priority != service.PriorityMedium || got.Status != service.StatusTodo {
		t.Errorf("expected medium/todo defaults, got %s/%s", got.Priority, got.Status)
	}
}

func TestAddCommand_TitleRequired(t *testing.T) {
	e := newEnv(t).restore(t)

	_, stderr, code := runCommand(t, &commands.AddCmd{}, e, []string{"  "}, "", false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: title required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(e.svc.Calls()) != 0 {
		t.Errorf("expected no requests, got %v", e.svc.Calls())
	}
}

func TestAddCommand_InvalidPriority(t *testing.T) {
	e := newEnv(t).restore(t)

	cmd := &commands.AddCmd{}
	cmd.SetFields("", "huge", "")
	_, stderr, code := runCommand(t, cmd, e, []string{"Buy milk"}, "", false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid priority: huge\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if e.svc.CallCount("CreateTask") != 0 {
		t.Error("expected no create request")
	}
}

func TestAddCommand_ServerError(t *testing.T) {
	e := newEnv(t).restore(t)
	e.svc.CreateTaskErr = &service.APIError{Status: http.StatusInternalServerError, Detail: "db down"}

	_, stderr, code := runCommand(t, &commands.AddCmd{}, e, []string{"Buy milk"}, "", false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.HasPrefix(stderr, "error: backend error: create task:") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestToggleCommand(t *testing.T) {
	e := newEnv(t)
	id := e.svc.AddTask("Buy milk", service.PriorityLow, service.StatusTodo)
	e.restore(t)

	stdout, stderr, code := runCommand(t, &commands.ToggleCmd{}, e, []string{"1"}, "", false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "[x] done\n" {
		t.Errorf("expected '[x] done', got %q", stdout)
	}

	stdout, _, _ = runCommand(t, &commands.ToggleCmd{}, e, []string{"#1"}, "", false)
	if stdout != "[ ] todo\n" {
		t.Errorf("expected '[ ] todo', got %q", stdout)
	}

	updates := e.svc.Updates()
	if len(updates) != 2 || updates[0].ID != id || !updates[0].Update.Completed || updates[1].Update.Status != service.StatusTodo {
		t.Errorf("unexpected updates: %+v", updates)
	}
}

func TestToggleCommand_NotFound(t *testing.T) {
	e := newEnv(t).restore(t)

	_, stderr, code := runCommand(t, &commands.ToggleCmd{}, e, []string{"42"}, "", false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task not found: 42\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if e.svc.CallCount("UpdateTask") != 0 {
		t.Error("expected no update request")
	}
}

func TestToggleCommand_InvalidID(t *testing.T) {
	e := newEnv(t).restore(t)

	_, stderr, code := runCommand(t, &commands.ToggleCmd{}, e, []string{"abc"}, "", false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid task id: abc\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// TestToggleCommand_SessionExpired verifies a 401 ends the session.
func TestToggleCommand_SessionExpired(t *testing.T) {
	e := newEnv(t)
	e.svc.AddTask("Buy milk", service.PriorityLow, service.StatusTodo)
	e.restore(t)
	e.svc.UpdateTaskErr = testutil.ErrUnauthorized

	_, stderr, code := runCommand(t, &commands.ToggleCmd{}, e, []string{"1"}, "", false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: session expired (run: taskpro login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if e.store.Len() != 0 || e.vm.LoggedIn() {
		t.Error("expected credentials and session to be cleared")
	}
}

func TestRmCommand_Yes(t *testing.T) {
	e := newEnv(t)
	e.svc.AddTask("Buy milk", service.PriorityLow, service.StatusTodo)
	e.restore(t)

	cmd := &commands.RmCmd{}
	cmd.SetYes(true)
	stdout, stderr, code := runCommand(t, cmd, e, []string{"1"}, "", false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if len(e.svc.StoredTasks()) != 0 || len(e.vm.Tasks()) != 0 {
		t.Error("task not deleted")
	}
}

func TestRmCommand_Prompt(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		deleted bool
	}{
		{"yes", "y\n", true},
		{"full yes", "YES\n", true},
		{"no", "n\n", false},
		{"empty line", "\n", false},
		{"eof", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.svc.AddTask("Buy milk", service.PriorityLow, service.StatusTodo)
			e.restore(t)

			_, stderr, code := runCommand(t, &commands.RmCmd{}, e, []string{"1"}, tt.in, false)

			if !strings.HasPrefix(stderr, viewmodel.DeletePrompt+" [y/N] ") {
				t.Errorf("expected prompt on stderr, got %q", stderr)
			}
			if tt.deleted {
				if code != exitcode.Success || len(e.svc.StoredTasks()) != 0 {
					t.Errorf("expected delete, got code %d", code)
				}
				return
			}
			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if !strings.HasSuffix(stderr, "error: cancelled\n") {
				t.Errorf("unexpected stderr %q", stderr)
			}
			if e.svc.CallCount("DeleteTask") != 0 {
				t.Error("declined delete sent a request")
			}
		})
	}
}

// TestRmCommand_GoneOnServer verifies a 404 from the server reads as an
// unknown task.
func TestRmCommand_GoneOnServer(t *testing.T) {
	e := newEnv(t)
	e.svc.AddTask("Buy milk", service.PriorityLow, service.StatusTodo)
	e.restore(t)
	e.svc.DeleteTaskErr = testutil.ErrNotFound

	cmd := &commands.RmCmd{}
	cmd.SetYes(true)
	_, stderr, code := runCommand(t, cmd, e, []string{"1"}, "", false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task not found: 1\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestShowCommand(t *testing.T) {
	e := newEnv(t)
	e.svc.AddTask("Buy milk", service.PriorityLow, service.StatusTodo)
	e.restore(t)

	stdout, stderr, code := runCommand(t, &commands.ShowCmd{}, e, []string{"1"}, "", false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	expected := "ID:          1\n" +
		"Title:       Buy milk\n" +
		"Status:      [ ] todo\n" +
		"Priority:    low\n" +
		"Created:     2026-01-01 00:00\n" +
		"Updated:     2026-01-01 00:00\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
	if e.svc.CallCount("GetTask") != 1 {
		t.Error("expected show to fetch the task")
	}
}

func TestShowCommand_NotFound(t *testing.T) {
	e := newEnv(t).restore(t)

	_, stderr, code := runCommand(t, &commands.ShowCmd{}, e, []string{"7"}, "", false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task not found: 7\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestStatsCommand(t *testing.T) {
	e := newEnv(t)
	e.svc.AddTask("a", service.PriorityLow, service.StatusTodo)
	e.svc.AddTask("b", service.PriorityHigh, service.StatusDone)
	e.svc.AddTask("c", service.PriorityHigh, service.StatusInProgress)
	e.svc.AddTask("d", service.PriorityUrgent, service.StatusDone)
	e.restore(t)

	stdout, stderr, code := runCommand(t, &commands.StatsCmd{}, e, nil, "", false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	testutil.GoldenString(t, "stats", stdout)
}

// TestStatsCommand_Unavailable verifies a stats failure that was only
// logged during the refresh is reported when stats are asked for.
func TestStatsCommand_Unavailable(t *testing.T) {
	e := newEnv(t)
	e.svc.StatsErr = errors.New("stats unavailable")
	e.restore(t)

	_, stderr, code := runCommand(t, &commands.StatsCmd{}, e, nil, "", false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.HasPrefix(stderr, "error: backend error:") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestWhoamiCommand(t *testing.T) {
	e := newEnv(t).restore(t)

	stdout, _, code := runCommand(t, &commands.WhoamiCmd{}, e, nil, "", false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "Alice A (alice) via Local\nemail: alice@example.com\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestUsersCommand(t *testing.T) {
	e := newEnv(t)
	e.svc.AddUser(service.User{ID: 2, Username: "bob", Email: "bob@example.com", IsAdmin: true}, "x")
	e.restore(t)

	stdout, _, code := runCommand(t, &commands.UsersCmd{}, e, nil, "", false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "   1  alice            alice@example.com\n" +
		"   2  bob              bob@example.com [admin,inactive]\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

// TestUsersCommand_Forbidden verifies a 403 keeps the session.
func TestUsersCommand_Forbidden(t *testing.T) {
	e := newEnv(t).restore(t)
	e.svc.ListUsersErr = &service.APIError{Status: http.StatusForbidden, Detail: "Not enough permissions"}

	_, stderr, code := runCommand(t, &commands.UsersCmd{}, e, nil, "", false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: permission denied\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if !e.vm.LoggedIn() || e.store.Len() == 0 {
		t.Error("a 403 should not end the session")
	}
}

func TestSSOCommand(t *testing.T) {
	e := newEnv(t)

	stdout, _, code := runCommand(t, &commands.SSOCmd{}, e, nil, "", false)
	if code != exitcode.Success || stdout != "disabled\n" {
		t.Errorf("expected 'disabled', got %q (code %d)", stdout, code)
	}

	e.svc.SSO = service.SSOStatus{Enabled: true, Realm: "corp"}
	stdout, _, _ = runCommand(t, &commands.SSOCmd{}, e, nil, "", false)
	if stdout != "enabled (realm: corp)\n" {
		t.Errorf("expected realm output, got %q", stdout)
	}
}

func TestSSOCommand_Unavailable(t *testing.T) {
	e := newEnv(t)
	e.svc.SSOStatusErr = errors.New("connection refused")

	_, stderr, code := runCommand(t, &commands.SSOCmd{}, e, nil, "", false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: sso status unavailable\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}
