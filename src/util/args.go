package util

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options holds one invocation's fully-resolved configuration: CLI flags
// layered over an optional YAML manifest (§10.3), flags always winning.
type Options struct {
	Command    string // "compile", "tokens", "build", "history" or "version".
	Name       string // Source name, without extension, relative to the playground directory.
	Names      []string // Multiple sources, set by the "build" command's manifest.
	Opt        bool   // Enable the optimizing emitter.
	Run        bool   // Invoke the external C toolchain and execute the result.
	DumpIR     bool   // Pretty-print the C-AST alongside the IR dump in verbose mode.
	ConfigPath string // Path to an optional YAML build manifest.
	Arch       string // Target triple recorded in the compile ledger, informational only; not passed to the C toolchain.
	Verbose    bool   // Print compile statistics.
	NoColor    bool   // Disable ANSI diagnostics even on a TTY.
}

// ---------------------
// ----- Constants -----
// ---------------------

const appVersion = "vslc2c 1.0"

// ---------------------
// ----- functions -----
// ---------------------

// ParseArgs parses command line arguments into an Options structure. The
// first argument is always the subcommand; its own flags follow.
func ParseArgs() (Options, error) {
	opt := Options{}
	if len(os.Args) < 2 {
		printHelp()
		return opt, fmt.Errorf("expected a subcommand")
	}
	opt.Command = os.Args[1]
	args := os.Args[2:]

	switch opt.Command {
	case "-h", "--h", "-help", "--help":
		printHelp()
		os.Exit(0)
	case "-v", "--v", "-version", "--version", "version":
		fmt.Println(appVersion)
		os.Exit(0)
	case "tokens", "compile", "build", "history":
		// fall through to flag parsing below
	default:
		return opt, fmt.Errorf("unexpected subcommand: %s", opt.Command)
	}

	for i1 := 0; i1 < len(args); i1++ {
		switch args[i1] {
		case "--opt":
			opt.Opt = true
		case "--run":
			opt.Run = true
		case "--dump-ir":
			opt.DumpIR = true
		case "--vb":
			opt.Verbose = true
		case "--no-color":
			opt.NoColor = true
		case "--config":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			opt.ConfigPath = args[i1+1]
			i1++
		case "--arch":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			opt.Arch = args[i1+1]
			i1++
		default:
			if strings.HasPrefix(args[i1], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i1])
			}
			opt.Name = args[i1]
		}
	}

	if opt.Command == "compile" || opt.Command == "tokens" {
		if opt.Name == "" {
			return opt, fmt.Errorf("%s requires a source name", opt.Command)
		}
	}
	return opt, nil
}

// printHelp prints a helpful usage message to stdout.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "vslc2c compile <name> [--opt] [--run] [--dump-ir] [--config <file>] [--arch <target>] [--vb] [--no-color]")
	_, _ = fmt.Fprintln(w, "vslc2c tokens  <name>\tdump the token stream and exit")
	_, _ = fmt.Fprintln(w, "vslc2c build   --config <file>\tcompile every source listed in the manifest")
	_, _ = fmt.Fprintln(w, "vslc2c history\tlist past compile invocations from the local ledger")
	_, _ = fmt.Fprintln(w, "vslc2c version")
	_ = w.Flush()
}
