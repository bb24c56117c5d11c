// Package emit implements the C Emitter stage: it renders a cast.File as
// portable C source text, in either a direct ("plain") mode or, after
// Optimise has folded constants and propagated copies through the tree,
// an optimized mode — spec.md §5's two required emitter behaviors.
//
// The indent-tracking text writer is grounded on
// other_examples/65fbde14_clarete-langlang__go-genc.go.go's outputWriter,
// the one pack file that emits portable C text rather than bytecode or
// native assembly.
package emit

import (
	"fmt"
	"strings"

	"vslc2c/src/cast"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// writer accumulates indented C source text.
type writer struct {
	b      strings.Builder
	indent int
}

func newWriter() *writer { return &writer{} }

func (w *writer) line(format string, args ...interface{}) {
	w.b.WriteString(strings.Repeat("    ", w.indent))
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *writer) raw(s string) { w.b.WriteString(s) }

// ---------------------
// ----- functions -----
// ---------------------

// runtimeHeader is the include preamble of every emitted file: the C
// standard headers plus vslc_runtime.h, which is expected to declare the
// fixed-name runtime functions symtab.New pre-populates the global scope
// with and the boxed list type every list/tuple value lowers to.
const runtimeHeader = `#include <stdbool.h>
#include <stdint.h>
#include <stdio.h>
#include <stdlib.h>
#include "vslc_runtime.h"

`

// Emit renders f as a complete, compilable C translation unit. When opt is
// true the tree is first passed through Optimise.
func Emit(f *cast.File, opt bool) (string, error) {
	if opt {
		f = Optimise(f)
	}
	w := newWriter()
	w.raw(runtimeHeader)

	for _, fn := range f.Functions {
		w.line("%s %s(%s);", fn.Return, fn.Name, paramList(fn))
	}
	if len(f.Functions) > 0 {
		w.raw("\n")
	}

	for _, fn := range f.Functions {
		if err := emitFunc(w, fn); err != nil {
			return "", err
		}
		w.raw("\n")
	}
	if err := emitFunc(w, f.Main); err != nil {
		return "", err
	}
	return w.b.String(), nil
}

func paramList(fn *cast.FuncDef) string {
	if len(fn.Params) == 0 {
		return "void"
	}
	parts := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		parts[i] = fmt.Sprintf("%s %s", p.Type, p.Name)
	}
	return strings.Join(parts, ", ")
}

func emitFunc(w *writer, fn *cast.FuncDef) error {
	ret := fn.Return.String()
	if fn.Name == "main" {
		ret = "int" // user functions are always mangled, so only the entry point is named main
	}
	w.line("%s %s(%s) {", ret, fn.Name, paramList(fn))
	w.indent++
	for _, s := range fn.Body {
		if err := emitStmt(w, s); err != nil {
			return err
		}
	}
	w.indent--
	w.line("}")
	return nil
}

func emitStmt(w *writer, s cast.Stmt) error {
	switch n := s.(type) {
	case cast.Decl:
		if n.Init == nil {
			w.line("%s %s;", n.Type, n.Name)
		} else {
			w.line("%s %s = %s;", n.Type, n.Name, exprString(n.Init))
		}
	case cast.Assign:
		w.line("%s = %s;", n.Name, exprString(n.Value))
	case cast.ListAppendStmt:
		w.line("list_append(%s, %s);", exprString(n.List), exprString(n.Value))
	case cast.Label:
		// C labels may not immediately precede a closing brace; an empty
		// statement keeps every emitted label valid regardless of position.
		w.line("%s: ;", n.Name)
	case cast.Goto:
		w.line("goto %s;", n.Name)
	case cast.IfGoto:
		w.line("if (!(%s)) goto %s;", exprString(n.Cond), n.Name)
	case cast.Return:
		if n.Value == nil {
			w.line("return;")
		} else {
			w.line("return %s;", exprString(n.Value))
		}
	case cast.ExprStmt:
		w.line("%s;", exprString(n.Expr))
	default:
		return fmt.Errorf("emit: unhandled statement type %T", s)
	}
	return nil
}

func exprString(e cast.Expr) string {
	switch n := e.(type) {
	case cast.IntLit:
		return fmt.Sprintf("%d", n.Value)
	case cast.FloatLit:
		return fmt.Sprintf("%g", n.Value)
	case cast.BoolLit:
		if n.Value {
			return "true"
		}
		return "false"
	case cast.StrLit:
		return fmt.Sprintf("%q", n.Value)
	case cast.Var:
		return n.Name
	case cast.Binary:
		return fmt.Sprintf("(%s %s %s)", exprString(n.Left), cOp(n.Op), exprString(n.Right))
	case cast.Unary:
		return fmt.Sprintf("(%s%s)", cOp(n.Op), exprString(n.Operand))
	case cast.Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = exprString(a)
		}
		return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", "))
	case cast.ListIndex:
		return fmt.Sprintf("list_get(%s, %s)", exprString(n.List), exprString(n.Index))
	case cast.ListSlice:
		return fmt.Sprintf("list_slice(%s, %s, %s)", exprString(n.List), exprString(n.Start), exprString(n.End))
	case cast.ListLen:
		return fmt.Sprintf("list_len(%s)", exprString(n.List))
	case cast.ListNew:
		elems := make([]string, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = exprString(el)
		}
		return fmt.Sprintf("list_new(%d, (%s[]){%s})", len(elems), n.Elem, strings.Join(elems, ", "))
	default:
		return fmt.Sprintf("/* unhandled expr %T */", e)
	}
}

// cOp maps the source language's operator spellings onto C's, where they
// differ (and/or/xor/not are keywords in the source grammar but not
// valid C operator tokens on their own).
func cOp(op string) string {
	switch op {
	case "and":
		return "&&"
	case "or":
		return "||"
	case "xor":
		return "^"
	case "not":
		return "!"
	case "=":
		return "=="
	default:
		return op
	}
}
