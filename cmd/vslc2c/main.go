// Command vslc2c drives the compiler's five stages end to end: Symbol
// Table, Type Checker, IR Generator, C-AST Builder and C Emitter, per
// spec.md §4 and its extended CLI surface in SPEC_FULL.md §6.
package main

import (
	"fmt"
	"os"
	"time"

	"vslc2c/src/cast"
	"vslc2c/src/check"
	"vslc2c/src/emit"
	"vslc2c/src/frontend"
	"vslc2c/src/ir"
	"vslc2c/src/util"
)

func main() {
	opt, err := util.ParseArgs()
	if err != nil {
		util.PrintError(opt, err)
		os.Exit(1)
	}

	if opt.ConfigPath != "" {
		m, err := util.LoadManifest(opt.ConfigPath)
		if err != nil {
			util.PrintError(opt, err)
			os.Exit(1)
		}
		util.ApplyManifest(&opt, m)
	}

	var runErr error
	switch opt.Command {
	case "tokens":
		runErr = runTokens(opt)
	case "compile":
		runErr = runCompile(opt, opt.Name)
	case "build":
		runErr = runBuild(opt)
	case "history":
		runErr = runHistory(opt)
	}
	if runErr != nil {
		util.PrintError(opt, runErr)
		os.Exit(1)
	}
}

func runTokens(opt util.Options) error {
	src, err := util.ReadSource(opt.Name)
	if err != nil {
		return fmt.Errorf("could not read source: %w", err)
	}
	out, err := frontend.TokenStream(src)
	if err != nil {
		return fmt.Errorf("syntax error: %w", err)
	}
	fmt.Print(out)
	return nil
}

func runBuild(opt util.Options) error {
	if len(opt.Names) == 0 {
		return fmt.Errorf("build requires a --config manifest listing sources")
	}
	for _, name := range opt.Names {
		if err := runCompile(opt, name); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func runHistory(opt util.Options) error {
	entries, err := util.History()
	if err != nil {
		return fmt.Errorf("could not read ledger: %w", err)
	}
	for _, e := range entries {
		fmt.Printf("%s  %-20s  %-10s  opt=%-5v  %-8s  %s\n",
			e.BuildID, e.Source, e.Target, e.Optimized, e.Outcome, e.StartedAt.Format(time.RFC3339))
	}
	return nil
}

// runCompile runs the full pipeline for one source: Symbol Table, Type
// Checker, IR Generator, C-AST Builder, C Emitter, always writing
// <name>.ir.txt and <name>.c, and, with --run, invoking the external C
// toolchain to build and execute the result.
func runCompile(opt util.Options, name string) error {
	buildID := util.NewBuildID()
	started := time.Now()
	stats := &util.Stats{}

	outcome := "ok"
	mangled := 0
	defer func() {
		_ = util.AppendLedger(util.LedgerEntry{
			BuildID:   buildID,
			Source:    util.SourcePath(name),
			Target:    opt.Arch,
			Optimized: opt.Opt,
			StartedAt: started,
			Duration:  time.Since(started),
			Outcome:   outcome,
			ManglCount: mangled,
		})
	}()

	src, err := util.ReadSource(name)
	if err != nil {
		outcome = "read-error"
		return fmt.Errorf("could not read source: %w", err)
	}
	stats.SourceBytes = len(src)
	if n, err := frontend.TokenCount(src); err == nil {
		stats.Tokens = n
	}

	t0 := time.Now()
	prog, err := frontend.Parse(src)
	if err != nil {
		outcome = "parse-error"
		return fmt.Errorf("parse error: %w", err)
	}
	stats.Track("parse", time.Since(t0))
	stats.ASTNodes = frontend.CountNodes(prog)

	t0 = time.Now()
	res, err := check.Check(prog)
	if err != nil {
		outcome = "type-error"
		return fmt.Errorf("type checker: %w", err)
	}
	stats.Track("check", time.Since(t0))

	t0 = time.Now()
	irProg, err := ir.Generate(prog, res)
	if err != nil {
		outcome = "ir-error"
		return fmt.Errorf("ir generator: %w", err)
	}
	stats.Track("ir", time.Since(t0))
	mangled = len(irProg.Functions) // one mangled C name per user-defined function
	stats.IRInstrs = len(irProg.Main)
	for _, fn := range irProg.Functions {
		stats.IRInstrs += len(fn.Body)
	}

	irPath, err := util.WriteOutput(name, ".ir.txt", fmt.Sprintf("# IR dump for build %s\n%s", buildID, dumpIR(irProg)))
	if err != nil {
		outcome = "io-error"
		return fmt.Errorf("could not write IR dump: %w", err)
	}

	t0 = time.Now()
	cfile, err := cast.Build(irProg)
	if err != nil {
		outcome = "cast-error"
		return fmt.Errorf("c-ast builder: %w", err)
	}
	stats.Track("cast", time.Since(t0))

	if opt.DumpIR && opt.Verbose {
		util.DumpTree("C-AST", cfile)
	}

	t0 = time.Now()
	cSrc, err := emit.Emit(cfile, opt.Opt)
	if err != nil {
		outcome = "emit-error"
		return fmt.Errorf("c emitter: %w", err)
	}
	stats.Track("emit", time.Since(t0))
	stats.OutputBytes = len(cSrc)

	cPath, err := util.WriteOutput(name, ".c", cSrc)
	if err != nil {
		outcome = "io-error"
		return fmt.Errorf("could not write C output: %w", err)
	}

	if opt.Verbose {
		fmt.Printf("wrote %s and %s\n", cPath, irPath)
		stats.Print()
	}

	if opt.Run {
		binPath := "playground/" + name
		if err := util.Compile(cPath, binPath, buildID); err != nil {
			outcome = "cc-error"
			return err
		}
		if err := util.Run(binPath); err != nil {
			outcome = "run-error"
			return err
		}
	}
	return nil
}

func dumpIR(prog *ir.Program) string {
	s := "main:\n"
	for _, in := range prog.Main {
		s += fmt.Sprintf("  %+v\n", in)
	}
	for _, fn := range prog.Functions {
		s += fmt.Sprintf("%s (%s):\n", fn.Name, fn.Mangled)
		for _, in := range fn.Body {
			s += fmt.Sprintf("  %+v\n", in)
		}
	}
	return s
}
