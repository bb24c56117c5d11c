package emit

import (
	"testing"

	"vslc2c/src/cast"
)

func findDecl(body []cast.Stmt, name string) (cast.Decl, bool) {
	for _, s := range body {
		if d, ok := s.(cast.Decl); ok && d.Name == name {
			return d, true
		}
	}
	return cast.Decl{}, false
}

func TestOptimiseFoldsIntArithmetic(t *testing.T) {
	f := &cast.File{Main: &cast.FuncDef{Name: "main", Return: cast.CInt, Body: []cast.Stmt{
		cast.Decl{Type: cast.CInt, Name: "x", Init: cast.Binary{Op: "+", Left: cast.IntLit{Value: 2}, Right: cast.IntLit{Value: 3}}},
	}}}
	out := Optimise(f)
	d, ok := findDecl(out.Main.Body, "x")
	if !ok {
		t.Fatal("expected declaration of x to survive")
	}
	lit, ok := d.Init.(cast.IntLit)
	if !ok || lit.Value != 5 {
		t.Fatalf("expected folded literal 5, got %#v", d.Init)
	}
}

func TestOptimiseFoldsComparisonToBool(t *testing.T) {
	f := &cast.File{Main: &cast.FuncDef{Body: []cast.Stmt{
		cast.IfGoto{Cond: cast.Binary{Op: "<", Left: cast.IntLit{Value: 1}, Right: cast.IntLit{Value: 2}}, Name: "L1"},
	}}}
	out := Optimise(f)
	if len(out.Main.Body) != 0 {
		t.Fatalf("expected a statically-true condition to eliminate the guarded goto entirely, got %+v", out.Main.Body)
	}
}

func TestOptimiseRewritesStaticallyFalseIfGotoAsGoto(t *testing.T) {
	f := &cast.File{Main: &cast.FuncDef{Body: []cast.Stmt{
		cast.IfGoto{Cond: cast.Binary{Op: ">", Left: cast.IntLit{Value: 1}, Right: cast.IntLit{Value: 2}}, Name: "L1"},
	}}}
	out := Optimise(f)
	if len(out.Main.Body) != 1 {
		t.Fatalf("expected exactly one statement, got %+v", out.Main.Body)
	}
	g, ok := out.Main.Body[0].(cast.Goto)
	if !ok || g.Name != "L1" {
		t.Fatalf("expected an unconditional Goto to L1, got %+v", out.Main.Body[0])
	}
}

func TestOptimiseInlinesBuilderTempsAndDropsDeclaration(t *testing.T) {
	f := &cast.File{Main: &cast.FuncDef{Body: []cast.Stmt{
		cast.Decl{Type: cast.CInt, Name: "t0", Init: cast.IntLit{Value: 7}},
		cast.Decl{Type: cast.CInt, Name: "x", Init: cast.Var{Name: "t0"}},
	}}}
	out := Optimise(f)
	if _, found := findDecl(out.Main.Body, "t0"); found {
		t.Fatal("expected the builder temp's own declaration to be dropped once inlined")
	}
	d, ok := findDecl(out.Main.Body, "x")
	if !ok {
		t.Fatal("expected x's declaration to survive")
	}
	lit, ok := d.Init.(cast.IntLit)
	if !ok || lit.Value != 7 {
		t.Fatalf("expected x's initializer to be the inlined literal 7, got %#v", d.Init)
	}
}

func TestOptimiseDoesNotInlineNamedSourceVariables(t *testing.T) {
	f := &cast.File{Main: &cast.FuncDef{Body: []cast.Stmt{
		cast.Decl{Type: cast.CInt, Name: "x", Init: cast.IntLit{Value: 1}},
		cast.Assign{Name: "x", Value: cast.IntLit{Value: 2}},
		cast.Decl{Type: cast.CInt, Name: "y", Init: cast.Var{Name: "x"}},
	}}}
	out := Optimise(f)
	d, ok := findDecl(out.Main.Body, "y")
	if !ok {
		t.Fatal("expected y's declaration to survive")
	}
	v, ok := d.Init.(cast.Var)
	if !ok || v.Name != "x" {
		t.Fatalf("expected y to keep reading the named variable x, got %#v", d.Init)
	}
}

func TestOptimiseDoesNotInlineCallsOrListConstructors(t *testing.T) {
	f := &cast.File{Main: &cast.FuncDef{Body: []cast.Stmt{
		cast.Decl{Type: cast.CInt, Name: "t0", Init: cast.Call{Name: "f", Args: nil}},
		cast.Decl{Type: cast.CInt, Name: "x", Init: cast.Var{Name: "t0"}},
	}}}
	out := Optimise(f)
	if _, found := findDecl(out.Main.Body, "t0"); !found {
		t.Fatal("expected a call-initialized temp's declaration to be kept, not inlined")
	}
}

func TestOptimiseLeavesUnfoldableBinaryAlone(t *testing.T) {
	f := &cast.File{Main: &cast.FuncDef{Body: []cast.Stmt{
		cast.Decl{Type: cast.CInt, Name: "x", Init: cast.IntLit{Value: 1}},
		cast.Assign{Name: "x", Value: cast.IntLit{Value: 2}},
		cast.Decl{Type: cast.CInt, Name: "y", Init: cast.Binary{Op: "+", Left: cast.Var{Name: "x"}, Right: cast.IntLit{Value: 1}}},
	}}}
	out := Optimise(f)
	d, ok := findDecl(out.Main.Body, "y")
	if !ok {
		t.Fatal("expected y's declaration to survive")
	}
	if _, ok := d.Init.(cast.Binary); !ok {
		t.Fatalf("expected an unfoldable binary expression (x is not a constant), got %#v", d.Init)
	}
}
