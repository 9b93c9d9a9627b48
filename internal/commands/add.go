package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskpro/internal/config"
	"taskpro/internal/exitcode"
	"taskpro/internal/service"
	"taskpro/internal/viewmodel"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
	priority    string
	status      string
}

// SetFields sets the optional task fields (for testing).
func (c *AddCmd) SetFields(description, priority, status string) {
	c.description = description
	c.priority = priority
	c.status = status
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskpro add [--priority <p>] [--status <s>] [--description <d>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.status, "s", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, vm *viewmodel.Model, args []string, in io.Reader, out, errOut io.Writer) int {
	input := viewmodel.DefaultForm()
	input.Title = strings.Join(args, " ")
	input.Description = c.description

	if c.priority != "" {
		p, err := service.ParsePriority(c.priority)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		input.Priority = p
	}
	if c.status != "" {
		s, err := service.ParseStatus(c.status)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		input.Status = s
	}

	if err := vm.CreateTask(ctx, input); err != nil {
		return Report(errOut, err)
	}

	ok(cfg.Quiet, out)
	return exitcode.Success
}
