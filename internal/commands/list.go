package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskpro/internal/config"
	"taskpro/internal/exitcode"
	"taskpro/internal/output"
	"taskpro/internal/viewmodel"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskpro` (no args) and `taskpro list`.
type ListCmd struct {
	status   string
	priority string
	long     bool
}

// SetFilter sets the filter flags (for testing).
func (c *ListCmd) SetFilter(status, priority string) {
	c.status = status
	c.priority = priority
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "taskpro list [--status <s>] [--priority <p>] [--long]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.status, "s", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
	fs.BoolVar(&c.long, "long", false, "")
	fs.BoolVar(&c.long, "l", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, vm *viewmodel.Model, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	filter, err := viewmodel.ParseFilter(c.status, c.priority)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	vm.SetFilter(filter)

	// The dispatcher already loaded the collection.
	tasks := vm.FilteredTasks()
	if filter != viewmodel.DefaultFilter() {
		output.FormatListHeader(out, fmt.Sprintf("status: %s, priority: %s", filter.Status, filter.Priority))
	}
	for _, task := range tasks {
		if c.long {
			output.FormatTaskWithDescription(out, task)
		} else {
			output.FormatTask(out, task)
		}
	}

	if len(tasks) == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}
