package viewmodel

import (
	"strings"

	"taskpro/internal/service"
)

// All disables a filter dimension.
const All = "all"

// Filter narrows the task collection by status and priority. It is never
// sent to the server.
type Filter struct {
	Status   string
	Priority string
}

// DefaultFilter matches every task.
func DefaultFilter() Filter {
	return Filter{Status: All, Priority: All}
}

// ParseFilter validates user input. Empty values mean All.
func ParseFilter(status, priority string) (Filter, error) {
	f := DefaultFilter()
	if s := strings.TrimSpace(status); s != "" && !strings.EqualFold(s, All) {
		st, err := service.ParseStatus(s)
		if err != nil {
			return Filter{}, err
		}
		f.Status = string(st)
	}
	if p := strings.TrimSpace(priority); p != "" && !strings.EqualFold(p, All) {
		pr, err := service.ParsePriority(p)
		if err != nil {
			return Filter{}, err
		}
		f.Priority = string(pr)
	}
	return f, nil
}

// Match reports whether t passes the filter.
func (f Filter) Match(t service.Task) bool {
	if !isAll(f.Status) && string(t.Status) != f.Status {
		return false
	}
	if !isAll(f.Priority) && string(t.Priority) != f.Priority {
		return false
	}
	return true
}

// Apply returns the tasks that pass the filter, in order.
func (f Filter) Apply(tasks []service.Task) []service.Task {
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// CycleStatus advances the status dimension: all, each status in workflow
// order, then all again.
func (f Filter) CycleStatus() Filter {
	values := make([]string, len(service.Statuses))
	for i, s := range service.Statuses {
		values[i] = string(s)
	}
	f.Status = cycle(f.Status, values)
	return f
}

// CyclePriority advances the priority dimension like CycleStatus.
func (f Filter) CyclePriority() Filter {
	values := make([]string, len(service.Priorities))
	for i, p := range service.Priorities {
		values[i] = string(p)
	}
	f.Priority = cycle(f.Priority, values)
	return f
}

func cycle(current string, values []string) string {
	if isAll(current) {
		return values[0]
	}
	for i, v := range values {
		if v == current && i+1 < len(values) {
			return values[i+1]
		}
	}
	return All
}

func isAll(v string) bool {
	return v == "" || v == All
}

// FilteredTasks applies the current filter to the current collection.
func (m *Model) FilteredTasks() []service.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter.Apply(m.tasks)
}
