package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskpro/internal/config"
	"taskpro/internal/exitcode"
	"taskpro/internal/viewmodel"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes bool
}

// SetYes skips the confirmation prompt (for testing).
func (c *RmCmd) SetYes(yes bool) {
	c.yes = yes
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskpro rm [--yes] <id>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, vm *viewmodel.Model, args []string, in io.Reader, out, errOut io.Writer) int {
	id, valid := taskIDArg(args, errOut)
	if !valid {
		return exitcode.UserError
	}

	if _, found := vm.Task(id); !found {
		fmt.Fprintf(errOut, "error: task not found: %d\n", id)
		return exitcode.UserError
	}

	confirm := viewmodel.Confirmed
	if !c.yes {
		confirm = newPrompter(in, errOut).confirm()
	}

	sent, err := vm.DeleteTask(ctx, id, confirm)
	if err != nil {
		return reportTask(errOut, id, err)
	}
	if !sent {
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.UserError
	}

	ok(cfg.Quiet, out)
	return exitcode.Success
}
