// Package check implements the Type Checker stage: it walks the parsed
// program, declaring every variable and function it encounters in a
// symtab.Table and verifying every expression, assignment, call and
// control-flow condition against the source language's type rules.
//
// The visitor shape (a type switch per AST node, an explicit scope stack,
// and binary/unary compatibility lookup tables) is grounded on
// hhramberg-go-vslc/src/ir/validate.go's lutExp/lutAssign tables,
// generalized from that table's int/float-only domain to the source
// language's bool/str/list/tuple types. Rule-by-rule behavior (which
// operators accept which types, what an empty-literal assignment resolves
// to, how function overloads are matched) is grounded on
// original_source/type_checker.py.
package check

import (
	"fmt"

	"github.com/pkg/errors"

	"vslc2c/src/frontend"
	"vslc2c/src/symtab"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Result is the Type Checker stage's output: the populated symbol table
// plus every expression's resolved type, keyed by node identity so the IR
// generator never has to re-derive a type.
type Result struct {
	Table *symtab.Table
	Types map[frontend.Expr]frontend.Type
}

type checker struct {
	tab      *symtab.Table
	types    map[frontend.Expr]frontend.Type
	fnReturn []*frontend.Type // stack of enclosing functions' declared return types
}

// ---------------------
// ----- functions -----
// ---------------------

// Check type-checks prog from a fresh symbol table and returns the
// resolved Result, or the first type error encountered, wrapped with
// "type check" stage context.
func Check(prog *frontend.Program) (*Result, error) {
	c := &checker{
		tab:   symtab.New(),
		types: make(map[frontend.Expr]frontend.Type),
	}
	if err := c.checkBlock(prog.Stmts); err != nil {
		return nil, errors.Wrap(err, "type check")
	}
	return &Result{Table: c.tab, Types: c.types}, nil
}

func (c *checker) checkBlock(b frontend.Block) error {
	for _, stmt := range b {
		if err := c.checkStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkStmt(stmt frontend.Stmt) error {
	switch n := stmt.(type) {
	case *frontend.Assignment:
		return c.checkAssignment(n)
	case *frontend.IfStmt:
		return c.checkIf(n)
	case *frontend.WhileStmt:
		return c.checkWhile(n)
	case *frontend.ForLoopRange:
		return c.checkForRange(n)
	case *frontend.ForLoopList:
		return c.checkForList(n)
	case *frontend.FunctionDef:
		return c.checkFunctionDef(n)
	case *frontend.ReturnStmt:
		return c.checkReturn(n)
	case *frontend.LstAppend:
		return c.checkLstAppend(n)
	case *frontend.ExprStmt:
		_, err := c.checkCall(n.Call)
		return err
	default:
		return posErrorf(stmt.At(), "unhandled statement type %T", stmt)
	}
}

func (c *checker) checkAssignment(n *frontend.Assignment) error {
	valType, err := c.checkExpr(n.Value)
	if err != nil {
		return err
	}
	if existing, ok := c.tab.LookupVariable(n.Target.Name); ok {
		if n.Declared != nil {
			return posErrorf(n.Pos, "%q is already declared and cannot be redeclared", n.Target.Name)
		}
		if existing.Type.IsUnresolved() && valType.IsCollection() {
			c.tab.UpdateVariable(n.Target.Name, existing.Type.Resolve(*valType.Elem))
			return nil
		}
		if !existing.Type.Equal(valType) {
			return posErrorf(n.Pos, "cannot assign %s to %q of type %s", valType, n.Target.Name, existing.Type)
		}
		return nil
	}
	declared := valType
	if n.Declared != nil {
		declared = *n.Declared
		if !declared.Equal(valType) {
			return posErrorf(n.Pos, "declared type %s does not match value of type %s", declared, valType)
		}
	}
	_, err = c.tab.DeclareVariable(n.Target.Name, declared)
	return err
}

func (c *checker) checkIf(n *frontend.IfStmt) error {
	t, err := c.checkExpr(n.Cond)
	if err != nil {
		return err
	}
	if t.Kind != frontend.Bool {
		return posErrorf(n.Pos, "if condition must be bool, got %s", t)
	}
	c.tab.PushScope()
	err = c.checkBlock(n.Body)
	c.tab.PopScope()
	if err != nil {
		return err
	}
	for _, elif := range n.Elifs {
		et, err := c.checkExpr(elif.Cond)
		if err != nil {
			return err
		}
		if et.Kind != frontend.Bool {
			return posErrorf(elif.Pos, "elif condition must be bool, got %s", et)
		}
		c.tab.PushScope()
		err = c.checkBlock(elif.Body)
		c.tab.PopScope()
		if err != nil {
			return err
		}
	}
	if n.Else != nil {
		c.tab.PushScope()
		err = c.checkBlock(n.Else)
		c.tab.PopScope()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkWhile(n *frontend.WhileStmt) error {
	t, err := c.checkExpr(n.Cond)
	if err != nil {
		return err
	}
	if t.Kind != frontend.Bool {
		return posErrorf(n.Pos, "while condition must be bool, got %s", t)
	}
	c.tab.PushScope()
	defer c.tab.PopScope()
	return c.checkBlock(n.Body)
}

func (c *checker) checkForRange(n *frontend.ForLoopRange) error {
	for _, bound := range []frontend.Expr{n.Range.Start, n.Range.Stop, n.Range.Step} {
		if bound == nil {
			continue
		}
		t, err := c.checkExpr(bound)
		if err != nil {
			return err
		}
		if t.Kind != frontend.Int {
			return posErrorf(bound.At(), "range() bounds must be int, got %s", t)
		}
	}
	c.tab.PushScope()
	defer c.tab.PopScope()
	if _, err := c.tab.DeclareVariable(n.Var.Name, frontend.Primitive(frontend.Int)); err != nil {
		return err
	}
	return c.checkBlock(n.Body)
}

func (c *checker) checkForList(n *frontend.ForLoopList) error {
	t, err := c.checkExpr(n.List)
	if err != nil {
		return err
	}
	if t.Kind != frontend.List {
		return posErrorf(n.Pos, "for ... in requires a list, got %s", t)
	}
	if t.IsUnresolved() {
		return posErrorf(n.Pos, "cannot iterate a list of unknown element type")
	}
	c.tab.PushScope()
	defer c.tab.PopScope()
	if _, err := c.tab.DeclareVariable(n.Var.Name, *t.Elem); err != nil {
		return err
	}
	return c.checkBlock(n.Body)
}

func (c *checker) checkFunctionDef(n *frontend.FunctionDef) error {
	params := make([]frontend.Type, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.Type
	}
	ret := frontend.Primitive(frontend.None)
	if n.Return != nil {
		ret = *n.Return
	}
	if _, err := c.tab.DeclareFunction(n.Name, params, ret); err != nil {
		return errors.Wrapf(err, "line %d", n.Pos.Line)
	}

	c.tab.PushScope()
	defer c.tab.PopScope()
	for _, p := range n.Params {
		if _, err := c.tab.DeclareVariable(p.Name.Name, p.Type); err != nil {
			return err
		}
	}
	c.fnReturn = append(c.fnReturn, &ret)
	defer func() { c.fnReturn = c.fnReturn[:len(c.fnReturn)-1] }()
	return c.checkBlock(n.Body)
}

func (c *checker) checkReturn(n *frontend.ReturnStmt) error {
	if len(c.fnReturn) == 0 {
		return posErrorf(n.Pos, "return outside of a function")
	}
	want := c.fnReturn[len(c.fnReturn)-1]
	if n.Value == nil {
		if want.Kind != frontend.None {
			return posErrorf(n.Pos, "function must return %s, got bare return", want)
		}
		return nil
	}
	got, err := c.checkExpr(n.Value)
	if err != nil {
		return err
	}
	if !want.Equal(got) {
		return posErrorf(n.Pos, "function must return %s, got %s", want, got)
	}
	return nil
}

func (c *checker) checkLstAppend(n *frontend.LstAppend) error {
	objType, err := c.checkExpr(n.Obj)
	if err != nil {
		return err
	}
	if objType.Kind != frontend.List {
		return posErrorf(n.Pos, ".append is only valid on a list, got %s", objType)
	}
	valType, err := c.checkExpr(n.Value)
	if err != nil {
		return err
	}
	if objType.IsUnresolved() {
		if ident, ok := n.Obj.(*frontend.Ident); ok {
			c.tab.UpdateVariable(ident.Name, objType.Resolve(valType))
		}
		return nil
	}
	if !objType.Elem.Equal(valType) {
		return posErrorf(n.Pos, "cannot append %s to a list of %s", valType, objType.Elem)
	}
	return nil
}

// ----------------------
// ----- Expressions -----
// ----------------------

func (c *checker) checkExpr(e frontend.Expr) (frontend.Type, error) {
	t, err := c.resolveExpr(e)
	if err != nil {
		return frontend.Type{}, err
	}
	c.types[e] = t
	return t, nil
}

func (c *checker) resolveExpr(e frontend.Expr) (frontend.Type, error) {
	switch n := e.(type) {
	case *frontend.PrimitiveLiteral:
		return frontend.Primitive(n.Kind), nil
	case *frontend.NonPrimitiveLiteral:
		return c.checkNonPrimitiveLiteral(n)
	case *frontend.Ident:
		v, ok := c.tab.LookupVariable(n.Name)
		if !ok {
			return frontend.Type{}, posErrorf(n.Pos, "undeclared identifier %q", n.Name)
		}
		return v.Type, nil
	case *frontend.BinaryOp:
		return c.checkBinaryOp(n)
	case *frontend.UnaryOp:
		return c.checkUnaryOp(n)
	case *frontend.CallExpr:
		return c.checkCall(n)
	case *frontend.IndexExpr:
		return c.checkIndex(n)
	case *frontend.SliceExpr:
		return c.checkSlice(n)
	default:
		return frontend.Type{}, posErrorf(e.At(), "unhandled expression type %T", e)
	}
}

func (c *checker) checkNonPrimitiveLiteral(n *frontend.NonPrimitiveLiteral) (frontend.Type, error) {
	if len(n.Children) == 0 {
		return frontend.Type{Kind: n.Kind}, nil
	}
	first, err := c.checkExpr(n.Children[0])
	if err != nil {
		return frontend.Type{}, err
	}
	for _, child := range n.Children[1:] {
		t, err := c.checkExpr(child)
		if err != nil {
			return frontend.Type{}, err
		}
		if !t.Equal(first) {
			return frontend.Type{}, posErrorf(child.At(), "%s elements must share one type: %s vs %s", n.Kind, first, t)
		}
	}
	return frontend.Collection(n.Kind, first), nil
}

var arithmeticOps = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true}
var comparisonOps = map[string]bool{"<": true, "<=": true, ">": true, ">=": true}
var equalityOps = map[string]bool{"==": true, "!=": true}
var logicalOps = map[string]bool{"and": true, "or": true, "xor": true, "&": true, "|": true, "^": true}

func (c *checker) checkBinaryOp(n *frontend.BinaryOp) (frontend.Type, error) {
	lt, err := c.checkExpr(n.Left)
	if err != nil {
		return frontend.Type{}, err
	}
	rt, err := c.checkExpr(n.Right)
	if err != nil {
		return frontend.Type{}, err
	}
	switch {
	case arithmeticOps[n.Op]:
		if !lt.IsNumeric() || !rt.IsNumeric() {
			return frontend.Type{}, posErrorf(n.Pos, "operator %q requires numeric operands, got %s and %s", n.Op, lt, rt)
		}
		if n.Op == "%" && (lt.Kind != frontend.Int || rt.Kind != frontend.Int) {
			return frontend.Type{}, posErrorf(n.Pos, "%% requires int operands, got %s and %s", lt, rt)
		}
		if lt.Kind == frontend.Float || rt.Kind == frontend.Float {
			return frontend.Primitive(frontend.Float), nil
		}
		return frontend.Primitive(frontend.Int), nil
	case comparisonOps[n.Op]:
		if !lt.IsNumeric() || !rt.IsNumeric() {
			return frontend.Type{}, posErrorf(n.Pos, "operator %q requires numeric operands, got %s and %s", n.Op, lt, rt)
		}
		return frontend.Primitive(frontend.Bool), nil
	case equalityOps[n.Op]:
		if !lt.Equal(rt) {
			return frontend.Type{}, posErrorf(n.Pos, "operator %q requires operands of the same type, got %s and %s", n.Op, lt, rt)
		}
		return frontend.Primitive(frontend.Bool), nil
	case logicalOps[n.Op]:
		if lt.Kind != frontend.Bool || rt.Kind != frontend.Bool {
			return frontend.Type{}, posErrorf(n.Pos, "operator %q requires bool operands, got %s and %s", n.Op, lt, rt)
		}
		return frontend.Primitive(frontend.Bool), nil
	default:
		return frontend.Type{}, posErrorf(n.Pos, "unknown operator %q", n.Op)
	}
}

func (c *checker) checkUnaryOp(n *frontend.UnaryOp) (frontend.Type, error) {
	t, err := c.checkExpr(n.Operand)
	if err != nil {
		return frontend.Type{}, err
	}
	switch n.Op {
	case "-":
		if !t.IsNumeric() {
			return frontend.Type{}, posErrorf(n.Pos, "unary - requires a numeric operand, got %s", t)
		}
		return t, nil
	case "not", "!":
		if t.Kind != frontend.Bool {
			return frontend.Type{}, posErrorf(n.Pos, "unary not requires a bool operand, got %s", t)
		}
		return frontend.Primitive(frontend.Bool), nil
	default:
		return frontend.Type{}, posErrorf(n.Pos, "unknown unary operator %q", n.Op)
	}
}

func (c *checker) checkCall(n *frontend.CallExpr) (frontend.Type, error) {
	argTypes := make([]frontend.Type, len(n.Args))
	for i, a := range n.Args {
		t, err := c.checkExpr(a)
		if err != nil {
			return frontend.Type{}, err
		}
		argTypes[i] = t
	}
	fn, cfn, err := c.tab.ResolveCall(n.Fn.Name, argTypes)
	if err != nil {
		return frontend.Type{}, errors.Wrapf(err, "line %d", n.Pos.Line)
	}
	if fn != nil {
		return fn.Return, nil
	}
	return cfn.Return, nil
}

func (c *checker) checkIndex(n *frontend.IndexExpr) (frontend.Type, error) {
	objType, err := c.checkExpr(n.Obj)
	if err != nil {
		return frontend.Type{}, err
	}
	if !objType.IsCollection() {
		return frontend.Type{}, posErrorf(n.Pos, "indexing requires a list or tuple, got %s", objType)
	}
	idxType, err := c.checkExpr(n.Idx)
	if err != nil {
		return frontend.Type{}, err
	}
	if idxType.Kind != frontend.Int {
		return frontend.Type{}, posErrorf(n.Pos, "index must be int, got %s", idxType)
	}
	if objType.IsUnresolved() {
		return frontend.Type{}, posErrorf(n.Pos, "cannot index a %s of unknown element type", objType.Kind)
	}
	return *objType.Elem, nil
}

func (c *checker) checkSlice(n *frontend.SliceExpr) (frontend.Type, error) {
	objType, err := c.checkExpr(n.Obj)
	if err != nil {
		return frontend.Type{}, err
	}
	if !objType.IsCollection() {
		return frontend.Type{}, posErrorf(n.Pos, "slicing requires a list or tuple, got %s", objType)
	}
	for _, bound := range []frontend.Expr{n.Start, n.End} {
		if bound == nil {
			continue
		}
		t, err := c.checkExpr(bound)
		if err != nil {
			return frontend.Type{}, err
		}
		if t.Kind != frontend.Int {
			return frontend.Type{}, posErrorf(bound.At(), "slice bound must be int, got %s", t)
		}
	}
	return objType, nil
}

func posErrorf(pos frontend.Pos, format string, args ...interface{}) error {
	return fmt.Errorf("line %d:%d: %s", pos.Line, pos.Col, fmt.Sprintf(format, args...))
}
