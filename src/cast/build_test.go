package cast

import (
	"testing"

	"vslc2c/src/check"
	"vslc2c/src/frontend"
	"vslc2c/src/ir"
)

func mustBuild(t *testing.T, src string) *File {
	t.Helper()
	prog, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := check.Check(prog)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	irProg, err := ir.Generate(prog, res)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	cfile, err := Build(irProg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return cfile
}

func TestBuildAssignmentDeclaresVariableOnce(t *testing.T) {
	f := mustBuild(t, "x: int = 1\nx = x + 1\n")
	decls := 0
	for _, s := range f.Main.Body {
		if d, ok := s.(Decl); ok && d.Name == "x" {
			decls++
		}
	}
	if decls != 1 {
		t.Fatalf("expected exactly one declaration of x, got %d", decls)
	}
}

func TestBuildFunctionUsesMangledName(t *testing.T) {
	f := mustBuild(t, "def add(a: int, b: int) -> int:\n\treturn a + b\nx = add(1, 2)\n")
	if len(f.Functions) != 1 {
		t.Fatalf("expected one function, got %d", len(f.Functions))
	}
	fn := f.Functions[0]
	if fn.Name == "add" {
		t.Fatal("expected the function's C name to be mangled, not the bare source name")
	}
	if len(fn.Params) != 2 || fn.Params[0].Type != CInt {
		t.Fatalf("params = %+v", fn.Params)
	}
}

func TestBuildListLiteral(t *testing.T) {
	f := mustBuild(t, "xs: [int] = [1, 2, 3]\n")
	found := false
	for _, s := range f.Main.Body {
		if d, ok := s.(Decl); ok {
			if ln, ok := d.Init.(ListNew); ok {
				found = true
				if len(ln.Elems) != 3 || ln.Elem != CInt {
					t.Fatalf("ListNew = %+v", ln)
				}
			}
		}
	}
	if !found {
		t.Fatal("expected a ListNew initializer in main's body")
	}
}

func TestBuildIfGotoAndLabels(t *testing.T) {
	f := mustBuild(t, "x: int = 1\nif x == 1:\n\ty = 1\nelse:\n\ty = 2\n")
	var sawIfGoto, sawLabel bool
	for _, s := range f.Main.Body {
		switch s.(type) {
		case IfGoto:
			sawIfGoto = true
		case Label:
			sawLabel = true
		}
	}
	if !sawIfGoto || !sawLabel {
		t.Fatalf("expected both IfGoto and Label statements in %+v", f.Main.Body)
	}
}
