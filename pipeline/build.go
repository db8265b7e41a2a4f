package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/binref/refinery-go/chunk"
	"github.com/binref/refinery-go/refineryerr"
	"github.com/binref/refinery-go/unit"
)

// Switches holds the reserved per-unit switches every unit invocation may
// carry (spec.md §6): -R/--reverse, -Q/--quiet, -L/--lenient.
type Switches struct {
	Reverse bool
	Quiet   bool
	Lenient bool
}

// splitSwitches pulls the reserved switches out of argv, returning the
// remaining positional arguments in order.
func splitSwitches(args []string) ([]string, Switches) {
	var sw Switches
	var rest []string
	for _, a := range args {
		switch a {
		case "-R", "--reverse":
			sw.Reverse = true
		case "-Q", "--quiet":
			sw.Quiet = true
		case "-L", "--lenient":
			sw.Lenient = true
		default:
			rest = append(rest, a)
		}
	}
	return rest, sw
}

// extractNamedArg pulls the first "--name value" (or "--name=value") pair out
// of args, returning its value, the remaining args with that pair removed
// (order preserved), and whether it was present at all. It reports an error
// only when the flag appears with nothing after it.
func extractNamedArg(args []string, name string) (value string, rest []string, found bool, err error) {
	flag := "--" + name
	rest = make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == flag:
			if i+1 >= len(args) {
				return "", nil, false, fmt.Errorf("%s: expected a value", flag)
			}
			value, found = args[i+1], true
			i++
		case strings.HasPrefix(a, flag+"="):
			value, found = strings.TrimPrefix(a, flag+"="), true
		default:
			rest = append(rest, a)
		}
	}
	return value, rest, found, nil
}

// Build constructs the unit.Unit named by seg.Unit, with seg.Args parsed
// according to that unit's own positional-argument convention. eval
// supplies the handler registry and sub-pipeline runner every
// multibin-backed unit needs.
func Build(eval unit.Evaluator, seg Segment) (unit.Unit, bool, error) {
	args, sw := splitSwitches(seg.Args)
	u, err := build(eval, seg.Unit, args)
	if err != nil {
		return nil, false, refineryerr.NewArgument(seg.Unit, "%s", err)
	}
	if sw.Reverse {
		if _, ok := u.(unit.Reversible); !ok {
			return nil, false, refineryerr.NewArgument(seg.Unit, "unit does not support -R/--reverse")
		}
	}
	return u, sw.Reverse, nil
}

func build(eval unit.Evaluator, name string, args []string) (unit.Unit, error) {
	switch name {
	case "emit":
		return unit.NewEmit(eval, args...)
	case "ef":
		return unit.NewEf(args...), nil
	case "hex":
		return unit.Hex(), nil
	case "b64":
		return unit.B64(), nil
	case "b85":
		return unit.B85(), nil
	case "url":
		return unit.URL(), nil
	case "esc":
		return unit.Esc(), nil
	case "zl":
		level := 0
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, fmt.Errorf("zl: invalid level %q", args[0])
			}
			level = n
		}
		return unit.NewZl(level), nil
	case "pack":
		sep := " "
		if len(args) > 0 {
			sep = args[0]
		}
		return unit.NewPack(sep), nil
	case "resplit":
		if len(args) != 1 {
			return nil, fmt.Errorf("resplit: requires exactly one delimiter argument")
		}
		return unit.NewResplit(eval, args[0])
	case "put":
		if len(args) != 2 {
			return nil, fmt.Errorf("put: requires a name and a value expression")
		}
		return unit.NewPut(eval, args[0], args[1])
	case "cfmt":
		if len(args) != 1 {
			return nil, fmt.Errorf("cfmt: requires exactly one template argument")
		}
		return unit.NewCfmt(args[0]), nil
	case "aes":
		ivExpr, args, found, err := extractNamedArg(args, "iv")
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("aes: requires --iv <expression>")
		}
		mode, args, _, err := extractNamedArg(args, "mode")
		if err != nil {
			return nil, err
		}
		if mode != "" && mode != "cbc" {
			return nil, fmt.Errorf("aes: unsupported --mode %q (only cbc is implemented)", mode)
		}
		if len(args) != 1 {
			return nil, fmt.Errorf("aes: requires exactly one key expression in addition to --iv")
		}
		return unit.NewAes(eval, args[0], ivExpr)
	case "ccp":
		if len(args) != 1 {
			return nil, fmt.Errorf("ccp: requires exactly one expression argument")
		}
		return unit.NewCcp(eval, args[0])
	case "dedup":
		return unit.NewDedup(), nil
	case "sorted":
		return unit.NewSorted(), nil
	case "nop":
		return nopUnit{}, nil
	default:
		return nil, fmt.Errorf("unknown unit %q", name)
	}
}

// nopUnit passes chunks through unchanged. It is available as an explicit
// `nop` stage; the `]]` fused-closure shorthand is not recognized by Parse,
// so a trailing no-op stage has to be written out as `] | nop ]`.
type nopUnit struct{}

func (nopUnit) Name() string { return "nop" }
func (nopUnit) Process(c *chunk.Chunk) ([]*chunk.Chunk, error) { return []*chunk.Chunk{c}, nil }
