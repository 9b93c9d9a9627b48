package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"taskpro/internal/config"
	"taskpro/internal/exitcode"
	"taskpro/internal/viewmodel"
)

// Version is the application version. Set at build time with
// -ldflags "-X taskpro/internal/commands.Version=...".
var Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

// VersionCmd prints the version. With --verbose it also reports the
// build and the endpoint and credential backend the configuration selects.
type VersionCmd struct {
	verbose bool
}

// SetVerbose enables the build report (for testing).
func (c *VersionCmd) SetVerbose(v bool) {
	c.verbose = v
}

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print version" }
func (c *VersionCmd) Usage() string     { return "taskpro version [--verbose]" }
func (c *VersionCmd) NeedsAuth() bool   { return false }
func (c *VersionCmd) Offline()          {}

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "verbose", false, "")
	fs.BoolVar(&c.verbose, "v", false, "")
}

func (c *VersionCmd) Run(ctx context.Context, cfg *config.Config, vm *viewmodel.Model, args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	fmt.Fprintf(out, "%s %s\n", config.AppName, Version)
	if !c.verbose {
		return exitcode.Success
	}

	fmt.Fprintf(out, "go:          %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if rev, ok := vcsRevision(); ok {
		fmt.Fprintf(out, "commit:      %s\n", rev)
	}
	api, err := cfg.ResolveAPIURL()
	if err != nil {
		api = "invalid (" + err.Error() + ")"
	}
	fmt.Fprintf(out, "api:         %s\n", api)
	fmt.Fprintf(out, "credentials: %s\n", cfg.CredentialStore)
	fmt.Fprintf(out, "config:      %s\n", cfg.Dir)
	return exitcode.Success
}

// vcsRevision returns the commit the binary was built from, marked when
// the tree had local changes.
func vcsRevision() (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return "", false
	}
	if dirty {
		rev += " (modified)"
	}
	return rev, true
}
