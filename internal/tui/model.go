// Package tui implements the interactive terminal UI on top of the
// view-model. Every API call runs as a tea.Cmd; the screen is rendered from
// view-model state when the call completes.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskpro/internal/service"
	"taskpro/internal/viewmodel"
)

type screen int

const (
	screenLoading screen = iota
	screenLogin
	screenMain
)

type mode int

const (
	modeList mode = iota
	modeCreate
	modeConfirmDelete
)

// Creation form fields, in focus order.
const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldStatus
	fieldCount
)

// Messages returned by the async commands.
type (
	sessionMsg struct{ err error }
	ssoMsg     struct{}
	loginMsg   struct{ err error }
	refreshMsg struct{ err error }
	createMsg  struct{ err error }
	toggleMsg  struct{ err error }
	deleteMsg  struct{ err error }
	logoutMsg  struct{}
)

// Model is the Bubble Tea model.
type Model struct {
	ctx context.Context
	vm  *viewmodel.Model

	screen    screen
	mode      mode
	busy      bool
	cursor    int
	showStats bool
	status    string
	width     int
	help      help.Model

	// login screen
	username   textinput.Model
	password   textinput.Model
	loginFocus int

	// creation form
	title       textinput.Model
	description textinput.Model
	priority    service.Priority
	taskStatus  service.Status
	formFocus   int

	pendingDelete *service.Task
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// New creates the UI model. Call Init to restore the stored session.
func New(ctx context.Context, vm *viewmodel.Model) Model {
	m := Model{
		ctx:         ctx,
		vm:          vm,
		screen:      screenLoading,
		status:      "Connecting...",
		help:        help.New(),
		username:    newInput("Username", 128),
		password:    newInput("Password", 256),
		title:       newInput("Task title", 256),
		description: newInput("Description (optional)", 1024),
	}
	m.password.EchoMode = textinput.EchoPassword
	m.password.EchoCharacter = '•'
	m.resetForm()
	return m
}

// Run starts the UI and blocks until the user quits.
func Run(ctx context.Context, vm *viewmodel.Model, in io.Reader, out io.Writer) error {
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	_, err := tea.NewProgram(New(ctx, vm), opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.restoreCmd(), m.ssoCmd())
}

func (m Model) restoreCmd() tea.Cmd {
	vm, ctx := m.vm, m.ctx
	return func() tea.Msg {
		return sessionMsg{err: vm.RestoreSession(ctx)}
	}
}

func (m Model) ssoCmd() tea.Cmd {
	vm, ctx := m.vm, m.ctx
	return func() tea.Msg {
		vm.FetchSSOProvisioning(ctx)
		return ssoMsg{}
	}
}

func (m Model) loginCmd(username, password string) tea.Cmd {
	vm, ctx := m.vm, m.ctx
	return func() tea.Msg {
		return loginMsg{err: vm.Login(ctx, username, password)}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	vm, ctx := m.vm, m.ctx
	return func() tea.Msg {
		return refreshMsg{err: vm.RefreshAll(ctx)}
	}
}

func (m Model) createCmd() tea.Cmd {
	vm, ctx := m.vm, m.ctx
	return func() tea.Msg {
		return createMsg{err: vm.SubmitForm(ctx)}
	}
}

func (m Model) toggleCmd(task service.Task) tea.Cmd {
	vm, ctx := m.vm, m.ctx
	return func() tea.Msg {
		return toggleMsg{err: vm.ToggleTask(ctx, task.ID, task.Status)}
	}
}

// deleteCmd runs after the y/n prompt, so the delete is pre-confirmed.
func (m Model) deleteCmd(id int) tea.Cmd {
	vm, ctx := m.vm, m.ctx
	return func() tea.Msg {
		_, err := vm.DeleteTask(ctx, id, viewmodel.Confirmed)
		return deleteMsg{err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	vm, ctx := m.vm, m.ctx
	return func() tea.Msg {
		vm.Logout(ctx)
		return logoutMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case sessionMsg:
		m.busy = false
		if m.vm.LoggedIn() {
			m.enterMain("")
			if msg.err != nil {
				m.status = fmt.Sprintf("refresh failed: %v", msg.err)
			}
			return m, nil
		}
		cmd := m.enterLogin()
		if msg.err != nil && !errors.Is(msg.err, viewmodel.ErrNoSession) {
			m.status = viewmodel.MsgConnection
		}
		return m, cmd

	case ssoMsg:
		return m, nil

	case loginMsg:
		m.busy = false
		if m.vm.LoggedIn() {
			m.password.SetValue("")
			m.enterMain("Logged in")
			if msg.err != nil {
				m.status = fmt.Sprintf("refresh failed: %v", msg.err)
			}
			return m, nil
		}
		// The view-model keeps the message for the error line.
		m.status = ""
		if msg.err != nil && errors.Is(msg.err, viewmodel.ErrSessionExpired) {
			m.status = "Session expired. Please log in again."
		}
		return m, nil

	case refreshMsg:
		return m.afterAction(msg.err, "Refreshed")

	case toggleMsg:
		return m.afterAction(msg.err, "Toggled task")

	case deleteMsg:
		return m.afterAction(msg.err, "Deleted task")

	case createMsg:
		if msg.err != nil && m.vm.LoggedIn() {
			m.busy = false
			m.status = describe(msg.err)
			return m, nil
		}
		m.resetForm()
		m.mode = modeList
		return m.afterAction(msg.err, "Added task")

	case logoutMsg:
		m.busy = false
		cmd := m.enterLogin()
		m.status = "Logged out"
		return m, cmd

	case tea.KeyMsg:
		switch m.screen {
		case screenLoading:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case screenLogin:
			return m.updateLogin(msg)
		}
		switch m.mode {
		case modeCreate:
			return m.updateCreate(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

// afterAction settles an async action. A lost session returns to the
// login screen.
func (m Model) afterAction(err error, done string) (tea.Model, tea.Cmd) {
	m.busy = false
	if !m.vm.LoggedIn() {
		cmd := m.enterLogin()
		m.status = "Session expired. Please log in again."
		return m, cmd
	}
	m.clampCursor()
	if err != nil {
		m.status = describe(err)
		return m, nil
	}
	m.status = done
	return m, nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, viewmodel.ErrTitleRequired):
		return "Title is required"
	case errors.Is(err, viewmodel.ErrInvalidInput):
		return err.Error()
	case errors.Is(err, service.ErrNotFound):
		return "Task no longer exists"
	case errors.Is(err, service.ErrForbidden):
		return "Permission denied"
	}
	return fmt.Sprintf("error: %v", err)
}

func (m *Model) enterMain(status string) {
	m.screen = screenMain
	m.mode = modeList
	m.status = status
	m.username.Blur()
	m.password.Blur()
	m.clampCursor()
}

func (m *Model) enterLogin() tea.Cmd {
	m.screen = screenLogin
	m.mode = modeList
	m.pendingDelete = nil
	m.showStats = false
	m.cursor = 0
	m.password.SetValue("")
	m.loginFocus = 0
	m.password.Blur()
	return m.username.Focus()
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c", key.Matches(msg, form.Cancel):
		return m, tea.Quit
	case key.Matches(msg, form.Next), key.Matches(msg, form.Prev):
		return m, m.focusLogin(1 - m.loginFocus)
	case key.Matches(msg, form.Submit):
		if m.loginFocus == 0 {
			return m, m.focusLogin(1)
		}
		if m.busy {
			return m, nil
		}
		username := m.username.Value()
		password := m.password.Value()
		if username == "" || password == "" {
			m.status = "Username and password are required"
			return m, nil
		}
		m.busy = true
		m.status = "Signing in..."
		return m, m.loginCmd(username, password)
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) focusLogin(i int) tea.Cmd {
	m.loginFocus = i
	if i == 0 {
		m.password.Blur()
		return m.username.Focus()
	}
	m.username.Blur()
	return m.password.Focus()
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}

	tasks := m.vm.FilteredTasks()
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, keys.Down):
		if m.cursor < len(tasks)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, keys.Stats):
		m.showStats = !m.showStats
		return m, nil
	case key.Matches(msg, keys.Status):
		m.vm.SetFilter(m.vm.Filter().CycleStatus())
		m.clampCursor()
		return m, nil
	case key.Matches(msg, keys.Priority):
		m.vm.SetFilter(m.vm.Filter().CyclePriority())
		m.clampCursor()
		return m, nil
	}

	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Toggle):
		if len(tasks) == 0 {
			return m, nil
		}
		m.busy = true
		return m, m.toggleCmd(tasks[m.cursor])
	case key.Matches(msg, keys.Add):
		m.mode = modeCreate
		m.resetForm()
		m.status = "New task: tab to move, enter to save, esc to cancel"
		return m, m.focusForm(fieldTitle)
	case key.Matches(msg, keys.Delete):
		if len(tasks) == 0 {
			return m, nil
		}
		t := tasks[m.cursor]
		m.pendingDelete = &t
		m.mode = modeConfirmDelete
		m.status = fmt.Sprintf("Delete %q? y/n", t.Title)
		return m, nil
	case key.Matches(msg, keys.Refresh):
		m.busy = true
		m.status = "Refreshing..."
		return m, m.refreshCmd()
	case key.Matches(msg, keys.Logout):
		m.busy = true
		return m, m.logoutCmd()
	}
	return m, nil
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if m.pendingDelete == nil {
			m.mode = modeList
			return m, nil
		}
		id := m.pendingDelete.ID
		m.pendingDelete = nil
		m.mode = modeList
		m.busy = true
		m.status = "Deleting..."
		return m, m.deleteCmd(id)
	case "n", "N", "esc":
		m.pendingDelete = nil
		m.mode = modeList
		m.status = "Delete cancelled"
	}
	return m, nil
}

func (m Model) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, form.Cancel):
		m.mode = modeList
		m.resetForm()
		m.status = "Cancelled"
		return m, nil
	case key.Matches(msg, form.Submit):
		if m.busy {
			return m, nil
		}
		m.vm.SetForm(m.formInput())
		m.busy = true
		m.status = "Saving..."
		return m, m.createCmd()
	case key.Matches(msg, form.Next):
		return m, m.focusForm((m.formFocus + 1) % fieldCount)
	case key.Matches(msg, form.Prev):
		return m, m.focusForm((m.formFocus + fieldCount - 1) % fieldCount)
	}

	switch m.formFocus {
	case fieldTitle:
		var cmd tea.Cmd
		m.title, cmd = m.title.Update(msg)
		return m, cmd
	case fieldDescription:
		var cmd tea.Cmd
		m.description, cmd = m.description.Update(msg)
		return m, cmd
	case fieldPriority:
		if step := cycleStep(msg); step != 0 {
			m.priority = service.Priorities[rotate(indexOf(service.Priorities, m.priority), step, len(service.Priorities))]
		}
	case fieldStatus:
		if step := cycleStep(msg); step != 0 {
			m.taskStatus = service.Statuses[rotate(indexOf(service.Statuses, m.taskStatus), step, len(service.Statuses))]
		}
	}
	return m, nil
}

func cycleStep(msg tea.KeyMsg) int {
	switch {
	case key.Matches(msg, form.Left):
		return -1
	case key.Matches(msg, form.Right):
		return 1
	}
	return 0
}

func indexOf[T comparable](values []T, v T) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return 0
}

func rotate(i, step, n int) int {
	return ((i+step)%n + n) % n
}

func (m *Model) focusForm(field int) tea.Cmd {
	m.formFocus = field
	m.title.Blur()
	m.description.Blur()
	switch field {
	case fieldTitle:
		return m.title.Focus()
	case fieldDescription:
		return m.description.Focus()
	}
	return nil
}

func (m *Model) resetForm() {
	def := viewmodel.DefaultForm()
	m.title.SetValue(def.Title)
	m.description.SetValue(def.Description)
	m.priority = def.Priority
	m.taskStatus = def.Status
	m.formFocus = fieldTitle
	m.title.Blur()
	m.description.Blur()
}

func (m Model) formInput() service.TaskInput {
	return service.TaskInput{
		Title:       m.title.Value(),
		Description: m.description.Value(),
		Priority:    m.priority,
		Status:      m.taskStatus,
	}
}

func (m *Model) clampCursor() {
	n := len(m.vm.FilteredTasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
