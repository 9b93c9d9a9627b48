package commands

import (
	"context"
	"flag"
	"io"

	"taskpro/internal/config"
	"taskpro/internal/exitcode"
	"taskpro/internal/output"
	"taskpro/internal/viewmodel"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show every field of a task" }
func (c *ShowCmd) Usage() string     { return "taskpro show <id>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, vm *viewmodel.Model, args []string, in io.Reader, out, errOut io.Writer) int {
	id, valid := taskIDArg(args, errOut)
	if !valid {
		return exitcode.UserError
	}

	task, err := vm.GetTask(ctx, id)
	if err != nil {
		return reportTask(errOut, id, err)
	}

	output.FormatTaskDetail(out, task)
	return exitcode.Success
}
