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
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	username      string
	passwordStdin bool
}

// SetUsername sets the username (for testing).
func (c *LoginCmd) SetUsername(name string) {
	c.username = name
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Authenticate with username and password" }
func (c *LoginCmd) Usage() string {
	return "taskpro login [--username <u>] [--password-stdin]"
}
func (c *LoginCmd) NeedsAuth() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.username, "u", "", "")
	fs.BoolVar(&c.passwordStdin, "password-stdin", false, "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, vm *viewmodel.Model, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	// Keycloak accounts use the same form.
	vm.FetchSSOProvisioning(ctx)
	if sso, ok := vm.SSO(); ok && sso.Enabled && !cfg.Quiet {
		fmt.Fprintf(errOut, "SSO enabled (realm: %s): sign in with your organization account\n", sso.Realm)
	}

	p := newPrompter(in, errOut)

	username := strings.TrimSpace(c.username)
	if username == "" {
		var err error
		username, err = p.line("Username: ")
		if err != nil {
			fmt.Fprintf(errOut, "error: failed to read username: %v\n", err)
			return exitcode.UserError
		}
		username = strings.TrimSpace(username)
	}
	if username == "" {
		fmt.Fprintln(errOut, "error: username required")
		return exitcode.UserError
	}

	var password string
	var err error
	if c.passwordStdin {
		password, err = p.line("")
	} else {
		password, err = p.password("Password: ")
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to read password: %v\n", err)
		return exitcode.UserError
	}
	if password == "" {
		fmt.Fprintln(errOut, "error: password required")
		return exitcode.UserError
	}

	if err := vm.Login(ctx, username, password); err != nil {
		if vm.LoggedIn() {
			// Logged in, but the initial load failed.
			fmt.Fprintf(errOut, "warning: %v\n", err)
		} else {
			return Report(errOut, err)
		}
	}

	if !cfg.Quiet {
		sess, _ := vm.Session()
		fmt.Fprintf(out, "logged in as %s (%s)\n", sess.User.Username, sess.AuthType.Label())
	}
	return exitcode.Success
}
