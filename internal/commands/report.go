package commands

import (
	"errors"
	"fmt"
	"io"

	"taskpro/internal/exitcode"
	"taskpro/internal/service"
	"taskpro/internal/viewmodel"
)

// Report prints err in the CLI's error format and returns the matching
// exit code. Callers handle command-specific cases (such as an unknown
// task ID) first.
func Report(errOut io.Writer, err error) int {
	var lerr *viewmodel.LoginError
	switch {
	case err == nil:
		return exitcode.Success
	case errors.As(err, &lerr):
		fmt.Fprintf(errOut, "error: %s\n", lerr.Message)
		return exitcode.AuthError
	case errors.Is(err, viewmodel.ErrSessionExpired):
		fmt.Fprintln(errOut, "error: session expired (run: taskpro login)")
		return exitcode.AuthError
	case errors.Is(err, viewmodel.ErrNoSession), errors.Is(err, service.ErrNotLoggedIn):
		fmt.Fprintln(errOut, "error: not logged in (run: taskpro login)")
		return exitcode.AuthError
	case errors.Is(err, service.ErrForbidden):
		fmt.Fprintln(errOut, "error: permission denied")
		return exitcode.AuthError
	case errors.Is(err, viewmodel.ErrTitleRequired):
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	case errors.Is(err, viewmodel.ErrInvalidInput):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// reportTask is Report with a 404 read as an unknown task ID.
func reportTask(errOut io.Writer, id int, err error) int {
	if errors.Is(err, service.ErrNotFound) {
		fmt.Fprintf(errOut, "error: task not found: %d\n", id)
		return exitcode.UserError
	}
	return Report(errOut, err)
}

// taskIDArg parses the task ID or prints the error.
func taskIDArg(args []string, errOut io.Writer) (int, bool) {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 0, false
	}
	return id, true
}

func ok(quiet bool, out io.Writer) {
	if !quiet {
		fmt.Fprintln(out, "ok")
	}
}
