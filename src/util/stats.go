package util

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kr/pretty"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// StageTiming records how long one pipeline stage took to run.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Stats collects the numbers a --vb invocation reports: source size, token
// count, AST/IR node counts, emitted C byte size, and per-stage timing.
type Stats struct {
	SourceBytes int
	Tokens      int
	ASTNodes    int
	IRInstrs    int
	OutputBytes int
	Stages      []StageTiming
}

// ---------------------
// ----- Functions -----
// ---------------------

// Track appends a completed stage's duration to the stats.
func (s *Stats) Track(stage string, d time.Duration) {
	s.Stages = append(s.Stages, StageTiming{Stage: stage, Duration: d})
}

// Print writes a human-readable statistics banner to stdout, formatting
// byte counts with go-humanize the way the teacher's own verbose mode
// reported compile sizes; stage durations are rounded to the microsecond
// by humanizeDuration.
func (s *Stats) Print() {
	fmt.Printf("source:   %s\n", humanize.Bytes(uint64(s.SourceBytes)))
	fmt.Printf("tokens:   %d\n", s.Tokens)
	fmt.Printf("ast:      %d nodes\n", s.ASTNodes)
	fmt.Printf("ir:       %d instructions\n", s.IRInstrs)
	fmt.Printf("output:   %s\n", humanize.Bytes(uint64(s.OutputBytes)))
	for _, st := range s.Stages {
		fmt.Printf("  %-16s %s\n", st.Stage, humanizeDuration(st.Duration))
	}
}

// DumpTree pretty-prints an arbitrary C-AST/IR value using kr/pretty,
// mirroring the teacher's Node.Print recursive dumper but generically,
// since this compiler's stage outputs are plain Go structs rather than one
// shared Node type.
func DumpTree(label string, v interface{}) {
	fmt.Printf("%s:\n%s\n", label, pretty.Sprint(v))
}

func humanizeDuration(d time.Duration) string {
	if d < time.Microsecond {
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
	return d.Round(time.Microsecond).String()
}
