package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskpro/internal/config"
	"taskpro/internal/exitcode"
	"taskpro/internal/viewmodel"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command. The command list is generated
// from the registry.
type HelpCmd struct {
	registry *Registry
}

// SetRegistry sets the registry to describe (for testing).
// DefaultRegistry is used otherwise.
func (c *HelpCmd) SetRegistry(r *Registry) {
	c.registry = r
}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskpro help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }
func (c *HelpCmd) Offline()          {}

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, vm *viewmodel.Model, args []string, in io.Reader, out, errOut io.Writer) int {
	r := c.registry
	if r == nil {
		r = DefaultRegistry
	}

	fmt.Fprint(out, "Usage:\n  taskpro <command> [common flags] [args]\n")
	fmt.Fprint(out, "  taskpro                  List tasks\n\nCommands:\n")
	for _, cmd := range r.All() {
		label := strings.Join(append([]string{cmd.Name()}, cmd.Aliases()...), ", ")
		fmt.Fprintf(out, "  %-14s %s\n", label, cmd.Synopsis())
		fmt.Fprintf(out, "  %-14s %s\n", "", cmd.Usage())
	}
	fmt.Fprint(out, helpFooter)
	fmt.Fprint(out, "\nExit codes:\n")
	for _, code := range exitcode.Codes {
		fmt.Fprintf(out, "  %d  %s\n", code, exitcode.Describe(code))
	}
	return exitcode.Success
}

const helpFooter = `
Statuses:   todo, in_progress, review, done, archived
Priorities: low, medium, high, urgent

Common flags:
  --config <dir>   Override config directory
  --server <url>   Override server URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
