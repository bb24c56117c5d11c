// Package symtab implements the Symbol Table stage: a scope-stacked table
// of variables and overloaded functions, populated bottom-up by the parsed
// program and consulted top-down by every later stage. Structure is
// grounded on the teacher's scope-handling idiom in
// hhramberg-go-vslc/src/ir/validate.go (lutExp/lutAssign lookups keyed by
// structural type), generalized here to real nested scopes; overload
// resolution and the pre-populated runtime globals are grounded on
// original_source/symbol_table.py.
package symtab

import (
	"fmt"

	"vslc2c/src/frontend"
	"vslc2c/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Variable is one declared name bound to a type and a scope depth.
type Variable struct {
	Name  string
	Type  frontend.Type
	Depth int
}

// Function is one user-defined overload of a source-level function name.
// Mangled is the unique C identifier this overload is emitted under.
type Function struct {
	Name    string
	Params  []frontend.Type
	Return  frontend.Type
	Mangled string
}

// CFunction is a built-in overload backed directly by a fixed runtime C
// function name (never mangled, since it must match a name the emitted
// runtime header declares).
type CFunction struct {
	Name   string
	Params []frontend.Type
	Return frontend.Type
	CName  string
}

// FunctionSet collects every overload, user-defined and built-in, declared
// under one source name.
type FunctionSet struct {
	Name      string
	Overloads []*Function
	Builtins  []*CFunction
}

type scope struct {
	vars  map[string]*Variable
	funcs map[string]*FunctionSet
}

func newScope() *scope {
	return &scope{
		vars:  make(map[string]*Variable),
		funcs: make(map[string]*FunctionSet),
	}
}

// Table is the Symbol Table stage's data: a stack of scopes (the bottom,
// global scope is never popped) plus the mangler handing out unique C
// names to user-defined functions.
type Table struct {
	scopes  []*scope
	mangler *util.Mangler
}

// ---------------------
// ----- functions -----
// ---------------------

// New builds a Table with its global scope pre-populated with the source
// language's built-in functions, and returns it.
func New() *Table {
	t := &Table{
		scopes:  []*scope{newScope()},
		mangler: util.NewMangler(9),
	}
	t.populateGlobals()
	return t
}

// PushScope opens a new nested scope (a function body, branch or loop).
func (t *Table) PushScope() {
	t.scopes = append(t.scopes, newScope())
}

// PopScope discards the innermost scope. It is a no-op on the global scope,
// mirroring the persistent-global-scope invariant of spec.md §3.2.
func (t *Table) PopScope() {
	if len(t.scopes) <= 1 {
		return
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth returns the current scope nesting depth; 0 is the global scope.
func (t *Table) Depth() int {
	return len(t.scopes) - 1
}

func (t *Table) top() *scope {
	return t.scopes[len(t.scopes)-1]
}

// DeclareVariable binds name to typ in the innermost scope. It reports an
// error if name is already bound in that exact scope (shadowing an outer
// scope's binding is legal; redeclaring within the same scope is not).
func (t *Table) DeclareVariable(name string, typ frontend.Type) (*Variable, error) {
	s := t.top()
	if _, ok := s.vars[name]; ok {
		return nil, fmt.Errorf("%q is already declared in this scope", name)
	}
	v := &Variable{Name: name, Type: typ, Depth: t.Depth()}
	s.vars[name] = v
	return v, nil
}

// LookupVariable searches from the innermost scope outward for name.
func (t *Table) LookupVariable(name string) (*Variable, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if v, ok := t.scopes[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// UpdateVariable re-types an already-declared variable in place, used when
// an empty-literal assignment is later resolved to a concrete element type
// (spec.md §4.2).
func (t *Table) UpdateVariable(name string, typ frontend.Type) bool {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if v, ok := t.scopes[i].vars[name]; ok {
			v.Type = typ
			return true
		}
	}
	return false
}

// functionSet finds or creates the named FunctionSet in the global scope;
// functions are always declared globally in the source language.
func (t *Table) functionSet(name string) *FunctionSet {
	g := t.scopes[0]
	fs, ok := g.funcs[name]
	if !ok {
		fs = &FunctionSet{Name: name}
		g.funcs[name] = fs
	}
	return fs
}

// DeclareFunction registers a new user-defined overload of name, mangling
// it to a unique C identifier. It reports an error if an overload with an
// identical parameter-type tuple already exists.
func (t *Table) DeclareFunction(name string, params []frontend.Type, ret frontend.Type) (*Function, error) {
	fs := t.functionSet(name)
	for _, f := range fs.Overloads {
		if paramsEqual(f.Params, params) {
			return nil, fmt.Errorf("function %q is already declared with these parameter types", name)
		}
	}
	f := &Function{Name: name, Params: params, Return: ret, Mangled: t.mangler.Mangle(name)}
	fs.Overloads = append(fs.Overloads, f)
	return f, nil
}

// declareCFunction registers a built-in overload backed by a fixed runtime
// C name. Used only while populating globals.
func (t *Table) declareCFunction(name string, params []frontend.Type, ret frontend.Type, cname string) {
	fs := t.functionSet(name)
	fs.Builtins = append(fs.Builtins, &CFunction{Name: name, Params: params, Return: ret, CName: cname})
}

// ResolveCall finds the overload of name (user-defined or built-in) whose
// parameter-type tuple structurally matches args. It returns exactly one
// of (*Function, nil) or (nil, *CFunction) on success.
func (t *Table) ResolveCall(name string, args []frontend.Type) (*Function, *CFunction, error) {
	g := t.scopes[0]
	fs, ok := g.funcs[name]
	if !ok {
		return nil, nil, fmt.Errorf("undeclared function %q", name)
	}
	for _, f := range fs.Overloads {
		if paramsEqual(f.Params, args) {
			return f, nil, nil
		}
	}
	for _, c := range fs.Builtins {
		if paramsEqual(c.Params, args) {
			return nil, c, nil
		}
	}
	return nil, nil, fmt.Errorf("no overload of %q matches argument types %v", name, args)
}

// FindFunction looks up the exact user-defined overload of name declared
// with params, without the built-in fallback ResolveCall performs. The IR
// generator uses this to recover a FunctionDef's own mangled name.
func (t *Table) FindFunction(name string, params []frontend.Type) (*Function, bool) {
	fs, ok := t.scopes[0].funcs[name]
	if !ok {
		return nil, false
	}
	for _, f := range fs.Overloads {
		if paramsEqual(f.Params, params) {
			return f, true
		}
	}
	return nil, false
}

// paramsEqual reports whether two parameter-type tuples are structurally
// identical, per spec.md Design Note: "an implementer should use proper
// structural equality on type trees" rather than the original's repr()
// string comparison.
func paramsEqual(a, b []frontend.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// populateGlobals seeds the global scope with the runtime-provided
// functions every program may call without declaring them: print (one
// overload per primitive type) and the four input_* readers (bare and
// with a str prompt), per original_source/symbol_table.py.
func (t *Table) populateGlobals() {
	none := frontend.Primitive(frontend.None)
	str := frontend.Primitive(frontend.Str)

	for _, k := range []frontend.Kind{frontend.Int, frontend.Float, frontend.Bool, frontend.Str} {
		t.declareCFunction("print", []frontend.Type{frontend.Primitive(k)}, none,
			fmt.Sprintf("vslc_print_%s", k.String()))
	}

	readers := []struct {
		kind frontend.Kind
		name string
	}{
		{frontend.Int, "input_int"},
		{frontend.Float, "input_float"},
		{frontend.Bool, "input_bool"},
		{frontend.Str, "input_str"},
	}
	for _, r := range readers {
		ret := frontend.Primitive(r.kind)
		t.declareCFunction(r.name, nil, ret, fmt.Sprintf("vslc_%s", r.name))
		t.declareCFunction(r.name, []frontend.Type{str}, ret, fmt.Sprintf("vslc_%s_prompt", r.name))
	}
}
