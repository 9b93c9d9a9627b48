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
	Register(&WhoamiCmd{})
	Register(&UsersCmd{})
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the logged-in user" }
func (c *WhoamiCmd) Usage() string     { return "taskpro whoami" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, vm *viewmodel.Model, args []string, in io.Reader, out, errOut io.Writer) int {
	sess, loggedIn := vm.Session()
	if !loggedIn {
		return Report(errOut, viewmodel.ErrNoSession)
	}
	output.FormatWhoami(out, sess.User, sess.AuthType.Label())
	return exitcode.Success
}

// UsersCmd implements the users command. The server restricts it to admins.
type UsersCmd struct{}

func (c *UsersCmd) Name() string      { return "users" }
func (c *UsersCmd) Aliases() []string { return nil }
func (c *UsersCmd) Synopsis() string  { return "List all users (admin only)" }
func (c *UsersCmd) Usage() string     { return "taskpro users" }
func (c *UsersCmd) NeedsAuth() bool   { return true }

func (c *UsersCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UsersCmd) Run(ctx context.Context, cfg *config.Config, vm *viewmodel.Model, args []string, in io.Reader, out, errOut io.Writer) int {
	users, err := vm.ListUsers(ctx)
	if err != nil {
		return Report(errOut, err)
	}
	for _, u := range users {
		output.FormatUser(out, u)
	}
	return exitcode.Success
}
