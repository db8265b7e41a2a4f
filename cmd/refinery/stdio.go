package main

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/binref/refinery-go/chunk"
	"github.com/binref/refinery-go/frame"
	"github.com/binref/refinery-go/pipeline"
	"github.com/binref/refinery-go/refineryerr"
	"github.com/binref/refinery-go/rlog"
)

// guardTerminalOutput refuses to dump framed/binary bytes straight to an
// interactive terminal unless force is set, mirroring the approval
// package's term.IsTerminal guard pattern in the pack's agent shield
// (spec.md §6 invocation safety; not an explicit spec requirement but the
// idiomatic CLI-hygiene practice the pack itself follows for
// terminal-facing commands).
func guardTerminalOutput(force bool) error {
	if force {
		return nil
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return refineryerr.NewIO(errStdoutIsTerminal)
	}
	return nil
}

var errStdoutIsTerminal = ttyErr{}

type ttyErr struct{}

func (ttyErr) Error() string {
	return "refusing to write binary output to a terminal; use -f/--force or redirect stdout"
}

// runStagesOverStdio decodes chunks from stdin, runs them through stages,
// and encodes the result to stdout, preserving framing when the input was
// framed (spec.md §4.2 "Rationale": a process that never saw a framed
// input need not frame its output, but one in the middle of a pipe must).
func runStagesOverStdio(d *pipeline.Driver, stages []pipeline.Stage, quiet, lenient bool) int {
	dec := frame.NewDecoder(os.Stdin)
	enc := frame.NewEncoder(os.Stdout)

	idx := 0
	for {
		rec, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			ferr := refineryerr.NewFrame(err)
			rlog.Fatal(ferr)
			return ferr.ExitCode()
		}

		switch rec.Kind {
		case frame.RecordOpen:
			if err := enc.Open(); err != nil {
				rlog.Fatal(refineryerr.NewFrame(err))
				return 1
			}
			continue
		case frame.RecordClose:
			if err := enc.Close(); err != nil {
				rlog.Fatal(refineryerr.NewFrame(err))
				return 1
			}
			continue
		}

		rec.Chunk.SetIndex(idx)
		idx++

		out, err := d.Run(stages, []*chunk.Chunk{rec.Chunk}, 0)
		if err != nil {
			if rerr, ok := err.(*refineryerr.Error); ok {
				if rerr.Fatal() {
					rlog.Fatal(rerr)
					return rerr.ExitCode()
				}
				if !quiet {
					rlog.Warn(rerr.Unit, rerr)
				}
				if lenient {
					out = []*chunk.Chunk{rec.Chunk}
				} else {
					continue
				}
			} else {
				rlog.Fatal(refineryerr.NewFrame(err))
				return 1
			}
		}

		for _, c := range out {
			if err := enc.WriteChunk(c); err != nil {
				rlog.Fatal(refineryerr.NewIO(err))
				return 1
			}
		}
	}
	return 0
}
