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
	Register(&SSOCmd{})
}

// SSOCmd implements the sso command.
type SSOCmd struct{}

func (c *SSOCmd) Name() string      { return "sso" }
func (c *SSOCmd) Aliases() []string { return nil }
func (c *SSOCmd) Synopsis() string  { return "Show whether the server offers SSO" }
func (c *SSOCmd) Usage() string     { return "taskpro sso" }
func (c *SSOCmd) NeedsAuth() bool   { return false }

func (c *SSOCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SSOCmd) Run(ctx context.Context, cfg *config.Config, vm *viewmodel.Model, args []string, in io.Reader, out, errOut io.Writer) int {
	vm.FetchSSOProvisioning(ctx)
	sso, ok := vm.SSO()
	if !ok {
		fmt.Fprintln(errOut, "error: backend error: sso status unavailable")
		return exitcode.BackendError
	}
	if sso.Enabled {
		fmt.Fprintf(out, "enabled (realm: %s)\n", sso.Realm)
	} else {
		fmt.Fprintln(out, "disabled")
	}
	return exitcode.Success
}
