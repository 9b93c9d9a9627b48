// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"taskpro/internal/service"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	// TimeLayout is used for every timestamp shown to the user.
	TimeLayout = "2006-01-02 15:04"

	// BarWidth is the width of the stats progress bar.
	BarWidth = 20
)

// Checkbox returns "[x]" for completed tasks and "[ ]" otherwise.
func Checkbox(task service.Task) string {
	if task.Completed || task.Status == service.StatusDone {
		return "[x]"
	}
	return "[ ]"
}

// FormatTask formats a task line for the list command.
// Format: "{ID:>4}  {[x]} {PRIORITY:<8} {STATUS:<11} {TITLE}\n"
func FormatTask(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %-8s %-11s %s\n",
		task.ID, Checkbox(task), task.Priority, task.Status.Label(), normalizeTitle(task.Title))
}

// FormatTaskWithDescription is FormatTask followed by an indented
// description line when the task has one.
func FormatTaskWithDescription(w io.Writer, task service.Task) {
	FormatTask(w, task)
	if d := normalizeText(task.Description); d != "" {
		fmt.Fprintf(w, "          %s\n", d)
	}
}

// FormatListHeader formats a list section header.
func FormatListHeader(w io.Writer, title string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, ListSeparator)
}

// FormatTaskDetail formats every field of a task, one per line.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "ID:          %d\n", task.ID)
	fmt.Fprintf(w, "Title:       %s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "Status:      %s %s\n", Checkbox(task), task.Status.Label())
	fmt.Fprintf(w, "Priority:    %s\n", task.Priority)
	if d := normalizeText(task.Description); d != "" {
		fmt.Fprintf(w, "Description: %s\n", d)
	}
	fmt.Fprintf(w, "Created:     %s\n", FormatTime(task.CreatedAt))
	fmt.Fprintf(w, "Updated:     %s\n", FormatTime(task.UpdatedAt))
	if task.CompletedAt != nil && !task.CompletedAt.IsZero() {
		fmt.Fprintf(w, "Completed:   %s\n", FormatTime(*task.CompletedAt))
	}
}

// FormatTime formats a server timestamp, "-" when unset.
func FormatTime(ts service.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format(TimeLayout)
}

// ProgressBar renders pct (0-100) as a bar of width cells.
func ProgressBar(pct, width int) string {
	pct = max(0, min(100, pct))
	filled := pct * width / 100
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}

// FormatStats formats the statistics summary with per-status and
// per-priority breakdowns.
func FormatStats(w io.Writer, st service.Stats) {
	pct := st.Progress()
	fmt.Fprintf(w, "Total:     %d\n", st.TotalTasks)
	fmt.Fprintf(w, "Completed: %d\n", st.CompletedTasks)
	fmt.Fprintf(w, "Active:    %d\n", st.ActiveTasks)
	fmt.Fprintf(w, "Progress:  [%s] %d%%\n", ProgressBar(pct, BarWidth), pct)

	statuses := make([]string, len(service.Statuses))
	for i, s := range service.Statuses {
		statuses[i] = string(s)
	}
	priorities := make([]string, len(service.Priorities))
	for i, p := range service.Priorities {
		priorities[i] = string(p)
	}

	fmt.Fprintln(w, "By status:")
	formatBreakdown(w, st.ByStatus, statuses)
	fmt.Fprintln(w, "By priority:")
	formatBreakdown(w, st.ByPriority, priorities)
}

// formatBreakdown prints known keys in order, then any unknown keys the
// server sent, sorted.
func formatBreakdown(w io.Writer, counts map[string]int, known []string) {
	seen := make(map[string]bool, len(known))
	for _, k := range known {
		seen[k] = true
		fmt.Fprintf(w, "  %-11s %d\n", strings.ReplaceAll(k, "_", " "), counts[k])
	}
	var extra []string
	for k := range counts {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		fmt.Fprintf(w, "  %-11s %d\n", k, counts[k])
	}
}

// FormatUser formats a user line for the users command.
func FormatUser(w io.Writer, u service.User) {
	var flags []string
	if u.IsAdmin {
		flags = append(flags, "admin")
	}
	if !u.IsActive {
		flags = append(flags, "inactive")
	}
	line := fmt.Sprintf("%4d  %-16s %s", u.ID, u.Username, u.Email)
	if len(flags) > 0 {
		line += " [" + strings.Join(flags, ",") + "]"
	}
	fmt.Fprintln(w, line)
}

// FormatWhoami formats the logged-in identity.
// Format: "{DISPLAY} ({USERNAME}) via {AUTH}\n"
func FormatWhoami(w io.Writer, u service.User, auth string) {
	fmt.Fprintf(w, "%s (%s) via %s\n", u.DisplayName(), u.Username, auth)
	if u.Email != "" {
		fmt.Fprintf(w, "email: %s\n", u.Email)
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = normalizeText(title)
	if title == "" {
		return "(untitled)"
	}
	return title
}

// normalizeText flattens newlines and trims.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
