// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"taskpro/internal/config"
	"taskpro/internal/viewmodel"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a session.
	// The dispatcher restores it before Run, so vm is logged in with
	// tasks and stats loaded.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths).
	// vm is nil for Offline commands.
	// args contains positional arguments after flag parsing.
	// in is read for prompts (password, delete confirmation).
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, vm *viewmodel.Model, args []string, in io.Reader, out, errOut io.Writer) int
}

// Offline is implemented by commands that never touch the API or the
// credential store, such as help and version.
type Offline interface {
	Offline()
}

// Interactive is implemented by commands that take over the terminal.
// Their logs go to a file instead of errOut.
type Interactive interface {
	Interactive()
}
