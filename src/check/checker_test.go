package check

import (
	"testing"

	"vslc2c/src/frontend"
)

func mustParse(t *testing.T, src string) *frontend.Program {
	t.Helper()
	prog, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return prog
}

func TestCheckSimpleAssignment(t *testing.T) {
	prog := mustParse(t, "x: int = 1\ny = x + 1\n")
	res, err := Check(prog)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	v, ok := res.Table.LookupVariable("y")
	if !ok || v.Type.Kind != frontend.Int {
		t.Fatalf("y type = %v, want int", v)
	}
}

func TestCheckAssignmentTypeMismatchFails(t *testing.T) {
	prog := mustParse(t, "x: int = 1\nx = \"hi\"\n")
	if _, err := Check(prog); err == nil {
		t.Fatal("expected a type error")
	}
}

func TestCheckIfRequiresBoolCondition(t *testing.T) {
	prog := mustParse(t, "x: int = 1\nif x:\n\ty = 1\n")
	if _, err := Check(prog); err == nil {
		t.Fatal("expected an error for a non-bool if condition")
	}
}

func TestCheckIfElifElse(t *testing.T) {
	prog := mustParse(t, "x: int = 1\nif x == 1:\n\ty = 1\nelif x == 2:\n\ty = 2\nelse:\n\ty = 3\n")
	if _, err := Check(prog); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestCheckForRangeDeclaresIntVar(t *testing.T) {
	prog := mustParse(t, "for i in range(10):\n\tprint(i)\n")
	if _, err := Check(prog); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestCheckForListOverUnresolvedEmptyListFails(t *testing.T) {
	prog := mustParse(t, "xs = []\nfor v in xs:\n\tprint(v)\n")
	if _, err := Check(prog); err == nil {
		t.Fatal("expected an error iterating a list of unknown element type")
	}
}

func TestCheckFunctionDefAndCall(t *testing.T) {
	prog := mustParse(t, "def add(a: int, b: int) -> int:\n\treturn a + b\nx = add(1, 2)\n")
	res, err := Check(prog)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	v, ok := res.Table.LookupVariable("x")
	if !ok || v.Type.Kind != frontend.Int {
		t.Fatalf("x type = %v, want int", v)
	}
}

func TestCheckReturnTypeMismatchFails(t *testing.T) {
	prog := mustParse(t, "def f() -> int:\n\treturn \"nope\"\n")
	if _, err := Check(prog); err == nil {
		t.Fatal("expected a return-type mismatch error")
	}
}

func TestCheckLstAppendResolvesEmptyList(t *testing.T) {
	prog := mustParse(t, "xs: [int] = []\nxs.append(1)\n")
	res, err := Check(prog)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	v, ok := res.Table.LookupVariable("xs")
	if !ok || v.Type.IsUnresolved() || v.Type.Elem.Kind != frontend.Int {
		t.Fatalf("xs type = %v, want resolved [int]", v)
	}
}

func TestCheckLstAppendTypeMismatchFails(t *testing.T) {
	prog := mustParse(t, "xs: [int] = [1, 2]\nxs.append(\"nope\")\n")
	if _, err := Check(prog); err == nil {
		t.Fatal("expected an error appending a mismatched type")
	}
}

func TestCheckUndeclaredIdentifierFails(t *testing.T) {
	prog := mustParse(t, "y = x + 1\n")
	if _, err := Check(prog); err == nil {
		t.Fatal("expected an error referencing an undeclared identifier")
	}
}

func TestCheckIndexAndSlice(t *testing.T) {
	prog := mustParse(t, "xs: [int] = [1, 2, 3]\ny = xs[0]\nzs = xs[0:2]\n")
	res, err := Check(prog)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	y, _ := res.Table.LookupVariable("y")
	if y.Type.Kind != frontend.Int {
		t.Fatalf("y type = %v, want int", y.Type)
	}
	zs, _ := res.Table.LookupVariable("zs")
	if zs.Type.Kind != frontend.List || zs.Type.Elem.Kind != frontend.Int {
		t.Fatalf("zs type = %v, want [int]", zs.Type)
	}
}

func TestCheckBuiltinPrintOverloads(t *testing.T) {
	prog := mustParse(t, "print(1)\nprint(1.5)\nprint(True)\nprint(\"hi\")\n")
	if _, err := Check(prog); err != nil {
		t.Fatalf("Check: %v", err)
	}
}
