// Package exitcode defines the process exit codes of taskpro and the
// meaning printed for each in the help text.
package exitcode

import "fmt"

const (
	Success      = 0
	UserError    = 1
	AuthError    = 2
	BackendError = 3
)

// Codes lists every exit code in ascending order.
var Codes = []int{Success, UserError, AuthError, BackendError}

var meanings = map[int]string{
	Success:      "success",
	UserError:    "bad arguments, unknown task or declined prompt",
	AuthError:    "not logged in, session expired, login rejected or bad config",
	BackendError: "server or network failure",
}

// Describe returns what code means. Codes taskpro never returns are
// reported as unknown.
func Describe(code int) string {
	if m, ok := meanings[code]; ok {
		return m
	}
	return fmt.Sprintf("unknown exit code %d", code)
}
