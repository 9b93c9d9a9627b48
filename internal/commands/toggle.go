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
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command. It flips a task between todo
// and done; any other status moves to done.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string  { return "Mark a task done, or reopen a done task" }
func (c *ToggleCmd) Usage() string     { return "taskpro toggle <id>" }
func (c *ToggleCmd) NeedsAuth() bool   { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, vm *viewmodel.Model, args []string, in io.Reader, out, errOut io.Writer) int {
	id, valid := taskIDArg(args, errOut)
	if !valid {
		return exitcode.UserError
	}

	task, found := vm.Task(id)
	if !found {
		fmt.Fprintf(errOut, "error: task not found: %d\n", id)
		return exitcode.UserError
	}

	if err := vm.ToggleTask(ctx, id, task.Status); err != nil {
		return reportTask(errOut, id, err)
	}

	if !cfg.Quiet {
		if updated, found := vm.Task(id); found {
			fmt.Fprintf(out, "%s %s\n", output.Checkbox(updated), updated.Status.Label())
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}
