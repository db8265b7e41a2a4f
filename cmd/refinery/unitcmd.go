package main

import (
	"github.com/spf13/cobra"

	"github.com/binref/refinery-go/pipeline"
	"github.com/binref/refinery-go/refineryerr"
	"github.com/binref/refinery-go/unit"
)

// unitNames lists every built-in unit exposed as its own top-level
// subcommand (spec.md §6 "<unit> [switches] [positional multibin args...]").
var unitNames = []string{
	"emit", "ef", "hex", "b64", "b85", "url", "esc",
	"zl", "pack", "resplit", "put", "cfmt", "aes", "ccp",
	"dedup", "sorted",
}

// newUnitCommand wires one unit up as its own subcommand. Flag parsing is
// disabled here: a unit's own switches (e.g. aes's --iv/--mode, spec.md §8)
// are not known to cobra ahead of time, so this command pulls only the
// reserved -R/-Q/-L/-f switches out of the raw argv itself and hands
// everything else straight to pipeline.Build, the same way `run` does for a
// unit invocation inside a pipeline string.
func newUnitCommand(name string) *cobra.Command {
	return &cobra.Command{
		Use:                name + " [args...]",
		Short:              "Run the " + name + " unit over stdin, writing to stdout",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, reverse, quiet, lenient, force := extractReservedSwitches(args)

			if err := guardTerminalOutput(force); err != nil {
				return err
			}

			d := pipeline.NewDriver()
			u, err := unitFromName(d, name, args)
			if err != nil {
				return err
			}
			if reverse {
				if _, ok := u.(unit.Reversible); !ok {
					return refineryerr.NewArgument(name, "unit does not support -R/--reverse")
				}
			}

			exitCode = runStagesOverStdio(d, []pipeline.Stage{{Unit: u, Reverse: reverse}}, quiet, lenient)
			return nil
		},
	}
}

// extractReservedSwitches pulls the switches every unit invocation may carry
// (-R/--reverse, -Q/--quiet, -L/--lenient) plus this CLI's own -f/--force
// terminal guard out of argv, leaving the unit's own positional and named
// arguments untouched and in order.
func extractReservedSwitches(args []string) (rest []string, reverse, quiet, lenient, force bool) {
	rest = make([]string, 0, len(args))
	for _, a := range args {
		switch a {
		case "-R", "--reverse":
			reverse = true
		case "-Q", "--quiet":
			quiet = true
		case "-L", "--lenient":
			lenient = true
		case "-f", "--force":
			force = true
		default:
			rest = append(rest, a)
		}
	}
	return rest, reverse, quiet, lenient, force
}

func unitFromName(d *pipeline.Driver, name string, args []string) (unit.Unit, error) {
	u, _, err := pipeline.Build(d.Evaluator(), pipeline.Segment{Unit: name, Args: args})
	return u, err
}
