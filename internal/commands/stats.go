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
	Register(&StatsCmd{})
}

// StatsCmd implements the stats command.
type StatsCmd struct{}

func (c *StatsCmd) Name() string      { return "stats" }
func (c *StatsCmd) Aliases() []string { return nil }
func (c *StatsCmd) Synopsis() string  { return "Show task statistics" }
func (c *StatsCmd) Usage() string     { return "taskpro stats" }
func (c *StatsCmd) NeedsAuth() bool   { return true }

func (c *StatsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, cfg *config.Config, vm *viewmodel.Model, args []string, in io.Reader, out, errOut io.Writer) int {
	st, loaded := vm.Stats()
	if !loaded {
		// Stats failures during the refresh are only logged. Retry to
		// surface the error.
		if err := vm.FetchStats(ctx); err != nil {
			return Report(errOut, err)
		}
		st, _ = vm.Stats()
	}

	output.FormatStats(out, st)
	return exitcode.Success
}
