package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskpro/internal/output"
	"taskpro/internal/service"
)

const appTitle = "Task Manager Pro"

func (m Model) View() string {
	switch m.screen {
	case screenLoading:
		return titleStyle.Render(appTitle) + "\n\n" + m.status + "\n"
	case screenLogin:
		return m.viewLogin()
	}
	return m.viewMain()
}

func (m Model) viewLogin() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(appTitle))
	b.WriteString("\n\n")

	if sso, ok := m.vm.SSO(); ok && sso.Enabled {
		b.WriteString(bannerStyle.Render(fmt.Sprintf("SSO enabled (realm: %s): sign in with your organization account", sso.Realm)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.username.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	if msg := m.vm.Error(); msg != "" {
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("tab switch field • enter sign in • esc quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.showStats {
		b.WriteString(m.renderStats())
		b.WriteString("\n")
	}

	f := m.vm.Filter()
	b.WriteString(mutedStyle.Render(fmt.Sprintf("status: %s • priority: %s", f.Status, f.Priority)))
	b.WriteString("\n\n")

	tasks := m.vm.FilteredTasks()
	if len(tasks) == 0 {
		b.WriteString("No tasks. Press 'a' to add one.\n")
	} else {
		b.WriteString(m.renderTaskList(tasks))
	}

	if m.mode == modeCreate {
		b.WriteString("\n")
		b.WriteString(m.renderForm())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(keys))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderHeader() string {
	sess, ok := m.vm.Session()
	if !ok {
		return titleStyle.Render(appTitle)
	}
	header := titleStyle.Render("Hello, " + sess.User.DisplayName())
	if sess.User.IsAdmin {
		header += " " + badgeStyle.Render("[admin]")
	}
	header += " " + mutedStyle.Render("("+sess.AuthType.Label()+")")
	return header
}

func (m Model) renderStats() string {
	st, ok := m.vm.Stats()
	if !ok {
		return panelStyle.Render("Statistics unavailable")
	}
	pct := st.Progress()
	lines := []string{
		fmt.Sprintf("Total %d • Completed %d • Active %d", st.TotalTasks, st.CompletedTasks, st.ActiveTasks),
		progressStyle.Render(output.ProgressBar(pct, output.BarWidth)) + fmt.Sprintf(" %d%%", pct),
	}
	var parts []string
	for _, s := range service.Statuses {
		parts = append(parts, fmt.Sprintf("%s %d", s.Label(), st.ByStatus[string(s)]))
	}
	lines = append(lines, mutedStyle.Render(strings.Join(parts, " • ")))
	parts = parts[:0]
	for _, p := range service.Priorities {
		parts = append(parts, fmt.Sprintf("%s %d", p, st.ByPriority[string(p)]))
	}
	lines = append(lines, mutedStyle.Render(strings.Join(parts, " • ")))
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderTaskList(tasks []service.Task) string {
	var b strings.Builder
	for i, t := range tasks {
		cursor := " "
		if i == m.cursor && m.mode == modeList {
			cursor = ">"
		}

		title := t.Title
		if output.Checkbox(t) == "[x]" {
			title = doneStyle.Render(title)
		} else if i == m.cursor {
			title = selectedStyle.Render(title)
		}

		prio := priorityStyle(string(t.Priority)).Render(fmt.Sprintf("%-6s", t.Priority))
		fmt.Fprintf(&b, "%s %s %s %-11s %s\n", cursor, output.Checkbox(t), prio, t.Status.Label(), title)
	}
	return b.String()
}

func (m Model) renderForm() string {
	label := func(field int, s string) string {
		if m.formFocus == field {
			return selectedStyle.Render("> " + s)
		}
		return "  " + s
	}
	rows := []string{
		titleStyle.Render("New task"),
		label(fieldTitle, "Title:       ") + m.title.View(),
		label(fieldDescription, "Description: ") + m.description.View(),
		label(fieldPriority, "Priority:    ") + "< " + string(m.priority) + " >",
		label(fieldStatus, "Status:      ") + "< " + m.taskStatus.Label() + " >",
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
