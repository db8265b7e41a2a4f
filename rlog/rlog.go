// Package rlog implements the toolkit's plain stderr logging, matching the
// teacher's unadorned fmt.Fprintf-to-stderr style rather than pulling in a
// structured logging library the example pack never uses.
package rlog

import (
	"fmt"
	"os"
	"time"

	"github.com/binref/refinery-go/refineryerr"
)

// nowFunc is overridable by tests.
var nowFunc = time.Now

// Warn prints a non-fatal unit failure to stderr in the form
// "(HH:MM:SS) failure in <unit>: <message>" (spec.md §7 "unit errors are
// reported and the chunk is dropped").
func Warn(unit string, err error) {
	fmt.Fprintf(os.Stderr, "(%s) failure in %s: %s\n", nowFunc().Format("15:04:05"), unit, err)
}

// Fatal prints a fatal error to stderr and exits the process with the
// error's classified exit code (spec.md §7). It never returns.
func Fatal(err *refineryerr.Error) {
	fmt.Fprintf(os.Stderr, "(%s) %s\n", nowFunc().Format("15:04:05"), err)
	os.Exit(err.ExitCode())
}

// Info prints an informational line, used sparingly by the CLI front end
// (e.g. to report an error a command returned). -Q/--quiet does not affect
// it; the front end applies -Q/--quiet to Warn output only.
func Info(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
}
