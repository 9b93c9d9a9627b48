package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"taskpro/internal/commands"
	"taskpro/internal/config"
	"taskpro/internal/credstore"
	"taskpro/internal/exitcode"
	"taskpro/internal/service"
	"taskpro/internal/viewmodel"
)

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, store credstore.Store, log *slog.Logger) (service.Service, error)

// StoreFactory opens the credential store for cfg.
type StoreFactory func(cfg *config.Config) (credstore.Store, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
	stores   StoreFactory
}

// NewDispatcher creates a new dispatcher with the given registry and
// service factory. Credentials come from credstore.Open unless
// WithStoreFactory replaces it.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
		stores:   credstore.Open,
	}
}

// WithStoreFactory replaces how the credential store is opened (for testing).
func (d *Dispatcher) WithStoreFactory(f StoreFactory) *Dispatcher {
	d.stores = f
	return d
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, in, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], in, out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, in io.Reader, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, in, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, in io.Reader, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var server string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.StringVar(&server, "server", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(errOut, flagError(err))
		return exitcode.UserError
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug
	if server != "" {
		cfg.Server = server
	}

	if _, offline := cmd.(commands.Offline); offline {
		return cmd.Run(ctx, cfg, nil, positionalArgs, in, out, errOut)
	}

	logger, closeLog, err := d.logger(cmd, cfg, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to open log file: %v\n", err)
		return exitcode.AuthError
	}
	defer closeLog()

	store, err := d.stores(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to open credential store: %v\n", err)
		return exitcode.AuthError
	}
	defer store.Close()

	svc, err := d.factory(ctx, cfg, store, logger)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}

	vm := viewmodel.New(svc, store, viewmodel.WithLogger(logger))

	if cmd.NeedsAuth() {
		if code, ok := restore(ctx, vm, errOut); !ok {
			return code
		}
	}

	return cmd.Run(ctx, cfg, vm, positionalArgs, in, out, errOut)
}

// restore establishes the session for commands that need one. A missing
// or rejected token reports "not logged in"; a valid token whose task
// list cannot be loaded reports a backend error.
func restore(ctx context.Context, vm *viewmodel.Model, errOut io.Writer) (int, bool) {
	if err := vm.RestoreSession(ctx); err != nil {
		return commands.Report(errOut, err), false
	}
	return exitcode.Success, true
}

// logger routes logs to errOut, or to the log file for commands that own
// the terminal.
func (d *Dispatcher) logger(cmd commands.Command, cfg *config.Config, errOut io.Writer) (*slog.Logger, func(), error) {
	if _, interactive := cmd.(commands.Interactive); !interactive {
		return cfg.Logger(errOut), func() {}, nil
	}
	if err := cfg.EnsureDir(); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, err
	}
	return cfg.Logger(f), func() { f.Close() }, nil
}

// flagError formats a flag parsing error.
func flagError(err error) string {
	errStr := err.Error()

	// Check for missing flag value
	if strings.Contains(errStr, "flag needs an argument") {
		// Extract flag name
		flagPart := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		return "error: flag needs an argument: " + flagPart
	}

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
		return "error: unknown flag: " + flagName
	}

	return "error: " + errStr
}
