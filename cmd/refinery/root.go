// Command refinery is the Binary Refinery CLI front end: every built-in
// unit is available as its own subcommand, plus a `run` subcommand that
// parses a whole pipeline string (spec.md §6).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/binref/refinery-go/handlers"
	"github.com/binref/refinery-go/rlog"
)

var rootCmd = &cobra.Command{
	Use:   "refinery",
	Short: "Binary Refinery: a framework for binary data transformation pipelines",
	Long: fmt.Sprintf(`Binary Refinery composes small reversible units into pipelines over a
framed chunk stream, carrying per-chunk metadata through nested bracket
scopes.

The pbkdf2 multibin handler derives keys with PBKDF2-HMAC-SHA1 at %d
iterations; its key length defaults to %d bytes.`, handlers.DefaultPBKDF2Iterations, handlers.DefaultPBKDF2KeyLen),
	SilenceErrors: true,
	SilenceUsage:  true,
}

// exitCode lets a subcommand's RunE report a precise classified exit status
// (spec.md §7) instead of collapsing every failure to 2, the status main
// uses for any error a RunE returns.
var exitCode int

func init() {
	rootCmd.AddCommand(runCmd)
	for _, name := range unitNames {
		rootCmd.AddCommand(newUnitCommand(name))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		rlog.Info("error: %s", err)
		os.Exit(2)
	}
	os.Exit(exitCode)
}
