package ir

import (
	"testing"

	"vslc2c/src/check"
	"vslc2c/src/frontend"
)

func mustGenerate(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := check.Check(prog)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	irProg, err := Generate(prog, res)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return irProg
}

func countOps(instrs []Instr, op Op) int {
	n := 0
	for _, i := range instrs {
		if i.Op == op {
			n++
		}
	}
	return n
}

func TestGenerateAssignment(t *testing.T) {
	prog := mustGenerate(t, "x: int = 1\n")
	if countOps(prog.Main, OpLoadConst) != 1 {
		t.Fatalf("expected one OpLoadConst, got %d", countOps(prog.Main, OpLoadConst))
	}
	if countOps(prog.Main, OpStoreVar) != 1 {
		t.Fatalf("expected one OpStoreVar, got %d", countOps(prog.Main, OpStoreVar))
	}
}

func TestGenerateIfElifElseLabelTopology(t *testing.T) {
	src := "x: int = 1\nif x == 1:\n\ty = 1\nelif x == 2:\n\ty = 2\nelse:\n\ty = 3\n"
	prog := mustGenerate(t, src)
	// One shared end label, landed once, plus one else-label per if/elif arm.
	labels := countOps(prog.Main, OpLabel)
	gotos := countOps(prog.Main, OpGoto)
	if labels == 0 || gotos == 0 {
		t.Fatalf("expected labels and gotos in %+v", prog.Main)
	}
	// Exactly two arms (if, elif) each jump to the same shared end label.
	endLabelTargets := map[string]int{}
	for _, i := range prog.Main {
		if i.Op == OpGoto {
			endLabelTargets[i.Label]++
		}
	}
	maxCount := 0
	for _, c := range endLabelTargets {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount != 2 {
		t.Fatalf("expected the shared end label to be targeted twice, got %d", maxCount)
	}
}

func TestGenerateWhileLoop(t *testing.T) {
	prog := mustGenerate(t, "x: int = 0\nwhile x < 10:\n\tx = x + 1\n")
	if countOps(prog.Main, OpIfFalseGoto) != 1 {
		t.Fatalf("expected one conditional branch, got %d", countOps(prog.Main, OpIfFalseGoto))
	}
	if countOps(prog.Main, OpGoto) != 1 {
		t.Fatalf("expected one back-edge goto, got %d", countOps(prog.Main, OpGoto))
	}
}

func TestGenerateForRangeDefaultsStartAndStep(t *testing.T) {
	prog := mustGenerate(t, "for i in range(5):\n\tprint(i)\n")
	if countOps(prog.Main, OpStoreVar) < 2 {
		t.Fatalf("expected at least 2 OpStoreVar (init + increment), got %d", countOps(prog.Main, OpStoreVar))
	}
}

func TestGenerateFunctionDefMangledName(t *testing.T) {
	prog := mustGenerate(t, "def add(a: int, b: int) -> int:\n\treturn a + b\nx = add(1, 2)\n")
	if len(prog.Functions) != 1 {
		t.Fatalf("expected one compiled function, got %d", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Mangled == "" || fn.Mangled == fn.Name {
		t.Fatalf("expected a mangled name distinct from %q, got %q", fn.Name, fn.Mangled)
	}
	if countOps(fn.Body, OpReturn) != 1 {
		t.Fatalf("expected one return in function body, got %d", countOps(fn.Body, OpReturn))
	}
	if countOps(prog.Main, OpCall) != 1 {
		t.Fatalf("expected one call in main body, got %d", countOps(prog.Main, OpCall))
	}
}

func TestGenerateBuiltinCallUsesRuntimeName(t *testing.T) {
	prog := mustGenerate(t, "print(1)\n")
	found := false
	for _, i := range prog.Main {
		if i.Op == OpCallVoid && i.Name == "vslc_print_int" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an OpCallVoid to vslc_print_int in %+v", prog.Main)
	}
}

func TestGenerateListLiteralAndAppend(t *testing.T) {
	prog := mustGenerate(t, "xs: [int] = [1, 2, 3]\nxs.append(4)\n")
	if countOps(prog.Main, OpNewList) != 1 {
		t.Fatalf("expected one OpNewList, got %d", countOps(prog.Main, OpNewList))
	}
	if countOps(prog.Main, OpListAppend) != 1 {
		t.Fatalf("expected one OpListAppend, got %d", countOps(prog.Main, OpListAppend))
	}
}
