package util

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// ----------------------
// ----- Constants ------
// ----------------------

const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorReset  = "\x1b[0m"
)

// ---------------------
// ----- Functions -----
// ---------------------

// ColorEnabled reports whether diagnostics should be colorized: stdout must
// be a terminal and --no-color must not have been passed.
func ColorEnabled(opt Options) bool {
	return !opt.NoColor && isatty.IsTerminal(os.Stdout.Fd())
}

// PrintError writes a stage failure to stderr, colorized red when
// ColorEnabled.
func PrintError(opt Options, err error) {
	if ColorEnabled(opt) {
		fmt.Fprintf(os.Stderr, "%serror:%s %s\n", colorRed, colorReset, err)
	} else {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
	}
}

// PrintWarning writes a non-fatal diagnostic to stderr, colorized yellow
// when ColorEnabled.
func PrintWarning(opt Options, msg string) {
	if ColorEnabled(opt) {
		fmt.Fprintf(os.Stderr, "%swarning:%s %s\n", colorYellow, colorReset, msg)
	} else {
		fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
	}
}
