package main

import (
	"github.com/spf13/cobra"

	"github.com/binref/refinery-go/pipeline"
	"github.com/binref/refinery-go/unit"
)

// runCmd implements `refinery run "<pipeline string>"`, parsing a whole
// pipeline including bracket groups in one shot (spec.md §6), as opposed to
// the per-unit subcommands which only ever build a single-stage pipeline.
var runCmd = &cobra.Command{
	Use:   "run <pipeline>",
	Short: "Run a whole pipeline string, brackets and all, over stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")
		lenient, _ := cmd.Flags().GetBool("lenient")
		force, _ := cmd.Flags().GetBool("force")

		if err := guardTerminalOutput(force); err != nil {
			return err
		}

		d := pipeline.NewDriver()
		segments, err := pipeline.Parse(args[0])
		if err != nil {
			return err
		}
		stages, err := pipeline.BuildTree(segments, func(seg pipeline.Segment) (unit.Unit, bool, error) {
			return pipeline.Build(d.Evaluator(), seg)
		})
		if err != nil {
			return err
		}

		exitCode = runStagesOverStdio(d, stages, quiet, lenient)
		return nil
	},
}

func init() {
	runCmd.Flags().BoolP("quiet", "Q", false, "suppress non-fatal unit error messages")
	runCmd.Flags().BoolP("lenient", "L", false, "pass a chunk through unchanged on a non-fatal error instead of dropping it")
	runCmd.Flags().BoolP("force", "f", false, "allow writing binary output to a terminal")
}
