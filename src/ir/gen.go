package ir

import (
	"fmt"

	"vslc2c/src/check"
	"vslc2c/src/frontend"
	"vslc2c/src/symtab"
)

// generator carries the per-Program state needed to linearize a checked
// AST into flat instruction streams: a monotonic register counter, a
// per-kind label counter, the Type Checker's resolved expression types,
// and the symbol table built during checking (for mangled call targets).
type generator struct {
	table    *symtab.Table
	types    map[frontend.Expr]frontend.Type
	nextReg  Reg
	labelSeq map[string]int
	instrs   []Instr
}

// Generate lowers a type-checked program into its IR Program: a flat
// instruction stream per function plus an implicit top-level entry point
// for the program's module-level statements.
//
// Unlike original_source/ir_gen.py, which emits elif/else arms before the
// position of their shared end label is known and so must splice the
// label in afterwards (its cond_label_stack/cond_label_idx_stack
// protocol), frontend.IfStmt already carries every arm's full body before
// generation begins. Each arm's end-of-chain goto is therefore emitted in
// one forward pass; the resulting label/goto topology is the same, there
// is simply no splice step left to perform.
func Generate(prog *frontend.Program, res *check.Result) (*Program, error) {
	g := &generator{
		table:    res.Table,
		types:    res.Types,
		labelSeq: make(map[string]int),
	}

	var funcs []*Function
	var mainStmts frontend.Block
	for _, stmt := range prog.Stmts {
		if fd, ok := stmt.(*frontend.FunctionDef); ok {
			fn, err := g.genFunctionDef(fd)
			if err != nil {
				return nil, err
			}
			funcs = append(funcs, fn)
			continue
		}
		mainStmts = append(mainStmts, stmt)
	}

	g.instrs = nil
	g.nextReg = 0
	if err := g.genBlock(mainStmts); err != nil {
		return nil, err
	}

	return &Program{Main: g.instrs, Functions: funcs}, nil
}

func (g *generator) newReg() Reg {
	r := g.nextReg
	g.nextReg++
	return r
}

func (g *generator) newLabel(kind string) string {
	n := g.labelSeq[kind]
	g.labelSeq[kind] = n + 1
	return fmt.Sprintf("L%s_%03d", kind, n)
}

func (g *generator) emit(i Instr) {
	g.instrs = append(g.instrs, i)
}

func (g *generator) genBlock(b frontend.Block) error {
	for _, stmt := range b {
		if err := g.genStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) genStmt(stmt frontend.Stmt) error {
	switch n := stmt.(type) {
	case *frontend.Assignment:
		return g.genAssignment(n)
	case *frontend.IfStmt:
		return g.genIf(n)
	case *frontend.WhileStmt:
		return g.genWhile(n)
	case *frontend.ForLoopRange:
		return g.genForRange(n)
	case *frontend.ForLoopList:
		return g.genForList(n)
	case *frontend.ReturnStmt:
		return g.genReturn(n)
	case *frontend.LstAppend:
		return g.genLstAppend(n)
	case *frontend.ExprStmt:
		_, err := g.genCall(n.Call)
		return err
	case *frontend.FunctionDef:
		return fmt.Errorf("nested function definitions are not supported")
	default:
		return fmt.Errorf("ir: unhandled statement type %T", stmt)
	}
}

func (g *generator) genAssignment(n *frontend.Assignment) error {
	src, err := g.genExpr(n.Value)
	if err != nil {
		return err
	}
	g.emit(Instr{Op: OpStoreVar, Name: n.Target.Name, Left: src, Type: g.types[n.Value]})
	return nil
}

func (g *generator) genIf(n *frontend.IfStmt) error {
	endLabel := g.newLabel("ifend")

	if err := g.genBranch(n.Cond, n.Body, endLabel); err != nil {
		return err
	}
	for _, elif := range n.Elifs {
		if err := g.genBranch(elif.Cond, elif.Body, endLabel); err != nil {
			return err
		}
	}
	if n.Else != nil {
		if err := g.genBlock(n.Else); err != nil {
			return err
		}
	}
	g.emit(Instr{Op: OpLabel, Label: endLabel})
	return nil
}

// genBranch emits one `if`/`elif` arm: evaluate cond, skip to the arm's own
// else-label when false, emit body, then jump to the chain's shared
// endLabel and land the else-label right after.
func (g *generator) genBranch(cond frontend.Expr, body frontend.Block, endLabel string) error {
	condReg, err := g.genExpr(cond)
	if err != nil {
		return err
	}
	elseLabel := g.newLabel("else")
	g.emit(Instr{Op: OpIfFalseGoto, Label: elseLabel, Left: condReg})
	if err := g.genBlock(body); err != nil {
		return err
	}
	g.emit(Instr{Op: OpGoto, Label: endLabel})
	g.emit(Instr{Op: OpLabel, Label: elseLabel})
	return nil
}

func (g *generator) genWhile(n *frontend.WhileStmt) error {
	headLabel := g.newLabel("whilehead")
	endLabel := g.newLabel("whileend")
	g.emit(Instr{Op: OpLabel, Label: headLabel})
	condReg, err := g.genExpr(n.Cond)
	if err != nil {
		return err
	}
	g.emit(Instr{Op: OpIfFalseGoto, Label: endLabel, Left: condReg})
	if err := g.genBlock(n.Body); err != nil {
		return err
	}
	g.emit(Instr{Op: OpGoto, Label: headLabel})
	g.emit(Instr{Op: OpLabel, Label: endLabel})
	return nil
}

// genForRange lowers `for v in range(start, stop, step)` to an equivalent
// while loop over a hidden counter, per spec.md §9's preserved behavior
// for non-positive steps: the generated test is always a strict `<`
// against stop, so a non-positive step yields a loop that never runs.
func (g *generator) genForRange(n *frontend.ForLoopRange) error {
	startReg, err := g.constOrExpr(n.Range.Start, int64(0))
	if err != nil {
		return err
	}
	stopReg, err := g.genExpr(n.Range.Stop)
	if err != nil {
		return err
	}
	stepReg, err := g.constOrExpr(n.Range.Step, int64(1))
	if err != nil {
		return err
	}

	g.emit(Instr{Op: OpStoreVar, Name: n.Var.Name, Left: startReg, Type: frontend.Primitive(frontend.Int)})

	headLabel := g.newLabel("forhead")
	endLabel := g.newLabel("forend")
	g.emit(Instr{Op: OpLabel, Label: headLabel})

	cur := g.newReg()
	g.emit(Instr{Op: OpLoadVar, Dst: cur, Name: n.Var.Name})
	cond := g.newReg()
	g.emit(Instr{Op: OpBinary, Dst: cond, Left: cur, Right: stopReg, BinOp: "<"})
	g.emit(Instr{Op: OpIfFalseGoto, Label: endLabel, Left: cond})

	if err := g.genBlock(n.Body); err != nil {
		return err
	}

	cur2 := g.newReg()
	g.emit(Instr{Op: OpLoadVar, Dst: cur2, Name: n.Var.Name})
	next := g.newReg()
	g.emit(Instr{Op: OpBinary, Dst: next, Left: cur2, Right: stepReg, BinOp: "+"})
	g.emit(Instr{Op: OpStoreVar, Name: n.Var.Name, Left: next, Type: frontend.Primitive(frontend.Int)})
	g.emit(Instr{Op: OpGoto, Label: headLabel})
	g.emit(Instr{Op: OpLabel, Label: endLabel})
	return nil
}

// constOrExpr evaluates e if non-nil, otherwise loads the literal default.
func (g *generator) constOrExpr(e frontend.Expr, deflt int64) (Reg, error) {
	if e == nil {
		r := g.newReg()
		g.emit(Instr{Op: OpLoadConst, Dst: r, Const: deflt, Type: frontend.Primitive(frontend.Int)})
		return r, nil
	}
	return g.genExpr(e)
}

func (g *generator) genForList(n *frontend.ForLoopList) error {
	listReg, err := g.genExpr(n.List)
	if err != nil {
		return err
	}
	lenReg := g.newReg()
	g.emit(Instr{Op: OpListLen, Dst: lenReg, Left: listReg})

	idxName := "__idx_" + n.Var.Name
	zero := g.newReg()
	g.emit(Instr{Op: OpLoadConst, Dst: zero, Const: int64(0), Type: frontend.Primitive(frontend.Int)})
	g.emit(Instr{Op: OpStoreVar, Name: idxName, Left: zero, Type: frontend.Primitive(frontend.Int)})

	headLabel := g.newLabel("forlisthead")
	endLabel := g.newLabel("forlistend")
	g.emit(Instr{Op: OpLabel, Label: headLabel})

	idx := g.newReg()
	g.emit(Instr{Op: OpLoadVar, Dst: idx, Name: idxName})
	cond := g.newReg()
	g.emit(Instr{Op: OpBinary, Dst: cond, Left: idx, Right: lenReg, BinOp: "<"})
	g.emit(Instr{Op: OpIfFalseGoto, Label: endLabel, Left: cond})

	elemType := frontend.Type{}
	if lt := g.types[n.List]; lt.Elem != nil {
		elemType = *lt.Elem
	}
	elem := g.newReg()
	g.emit(Instr{Op: OpListGet, Dst: elem, Left: listReg, Right: idx, Type: elemType})
	g.emit(Instr{Op: OpStoreVar, Name: n.Var.Name, Left: elem, Type: elemType})

	if err := g.genBlock(n.Body); err != nil {
		return err
	}

	idx2 := g.newReg()
	g.emit(Instr{Op: OpLoadVar, Dst: idx2, Name: idxName})
	one := g.newReg()
	g.emit(Instr{Op: OpLoadConst, Dst: one, Const: int64(1), Type: frontend.Primitive(frontend.Int)})
	next := g.newReg()
	g.emit(Instr{Op: OpBinary, Dst: next, Left: idx2, Right: one, BinOp: "+"})
	g.emit(Instr{Op: OpStoreVar, Name: idxName, Left: next, Type: frontend.Primitive(frontend.Int)})
	g.emit(Instr{Op: OpGoto, Label: headLabel})
	g.emit(Instr{Op: OpLabel, Label: endLabel})
	return nil
}

func (g *generator) genReturn(n *frontend.ReturnStmt) error {
	if n.Value == nil {
		g.emit(Instr{Op: OpReturn, Left: RegNone})
		return nil
	}
	r, err := g.genExpr(n.Value)
	if err != nil {
		return err
	}
	g.emit(Instr{Op: OpReturn, Left: r})
	return nil
}

func (g *generator) genLstAppend(n *frontend.LstAppend) error {
	objReg, err := g.genExpr(n.Obj)
	if err != nil {
		return err
	}
	valReg, err := g.genExpr(n.Value)
	if err != nil {
		return err
	}
	g.emit(Instr{Op: OpListAppend, Left: objReg, Right: valReg})
	return nil
}

func (g *generator) genFunctionDef(n *frontend.FunctionDef) (*Function, error) {
	params := make([]frontend.Type, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.Type
	}
	ret := frontend.Primitive(frontend.None)
	if n.Return != nil {
		ret = *n.Return
	}
	decl, ok := g.table.FindFunction(n.Name, params)
	if !ok {
		return nil, fmt.Errorf("ir: function %q was not declared during type checking", n.Name)
	}

	saved := g.instrs
	savedReg := g.nextReg
	g.instrs = nil
	g.nextReg = 0

	names := make([]string, len(n.Params))
	for i, p := range n.Params {
		names[i] = p.Name.Name
		g.emit(Instr{Op: OpParam, Name: p.Name.Name, Type: p.Type})
	}
	if err := g.genBlock(n.Body); err != nil {
		return nil, err
	}

	body := g.instrs
	g.instrs = saved
	g.nextReg = savedReg

	return &Function{
		Name:    n.Name,
		Mangled: decl.Mangled,
		Params:  names,
		Return:  ret,
		Body:    body,
	}, nil
}

// ----------------------
// ----- Expressions -----
// ----------------------

func (g *generator) genExpr(e frontend.Expr) (Reg, error) {
	switch n := e.(type) {
	case *frontend.PrimitiveLiteral:
		r := g.newReg()
		if n.Kind == frontend.Str {
			g.emit(Instr{Op: OpLoadString, Dst: r, Const: n.Value, Type: g.types[e]})
		} else {
			g.emit(Instr{Op: OpLoadConst, Dst: r, Const: n.Value, Type: g.types[e]})
		}
		return r, nil
	case *frontend.NonPrimitiveLiteral:
		return g.genNonPrimitiveLiteral(n)
	case *frontend.Ident:
		r := g.newReg()
		g.emit(Instr{Op: OpLoadVar, Dst: r, Name: n.Name, Type: g.types[e]})
		return r, nil
	case *frontend.BinaryOp:
		return g.genBinaryOp(n)
	case *frontend.UnaryOp:
		return g.genUnaryOp(n)
	case *frontend.CallExpr:
		return g.genCall(n)
	case *frontend.IndexExpr:
		return g.genIndex(n)
	case *frontend.SliceExpr:
		return g.genSlice(n)
	default:
		return RegNone, fmt.Errorf("ir: unhandled expression type %T", e)
	}
}

func (g *generator) genNonPrimitiveLiteral(n *frontend.NonPrimitiveLiteral) (Reg, error) {
	elems := make([]Reg, len(n.Children))
	for i, c := range n.Children {
		r, err := g.genExpr(c)
		if err != nil {
			return RegNone, err
		}
		elems[i] = r
	}
	dst := g.newReg()
	g.emit(Instr{Op: OpNewList, Dst: dst, Len: len(elems), Elems: elems, Type: g.types[n]})
	return dst, nil
}

func (g *generator) genBinaryOp(n *frontend.BinaryOp) (Reg, error) {
	l, err := g.genExpr(n.Left)
	if err != nil {
		return RegNone, err
	}
	r, err := g.genExpr(n.Right)
	if err != nil {
		return RegNone, err
	}
	dst := g.newReg()
	g.emit(Instr{Op: OpBinary, Dst: dst, Left: l, Right: r, BinOp: n.Op, Type: g.types[n]})
	return dst, nil
}

func (g *generator) genUnaryOp(n *frontend.UnaryOp) (Reg, error) {
	src, err := g.genExpr(n.Operand)
	if err != nil {
		return RegNone, err
	}
	dst := g.newReg()
	g.emit(Instr{Op: OpUnary, Dst: dst, Left: src, UnOp: n.Op, Type: g.types[n]})
	return dst, nil
}

func (g *generator) genCall(n *frontend.CallExpr) (Reg, error) {
	argRegs := make([]Reg, len(n.Args))
	argTypes := make([]frontend.Type, len(n.Args))
	for i, a := range n.Args {
		r, err := g.genExpr(a)
		if err != nil {
			return RegNone, err
		}
		argRegs[i] = r
		argTypes[i] = g.types[a]
	}
	for _, r := range argRegs {
		g.emit(Instr{Op: OpArg, Left: r})
	}

	fn, cfn, err := g.table.ResolveCall(n.Fn.Name, argTypes)
	if err != nil {
		return RegNone, err
	}
	var name string
	var ret frontend.Type
	if fn != nil {
		name, ret = fn.Mangled, fn.Return
	} else {
		name, ret = cfn.CName, cfn.Return
	}

	if ret.Kind == frontend.None {
		g.emit(Instr{Op: OpCallVoid, Name: name})
		return RegNone, nil
	}
	dst := g.newReg()
	g.emit(Instr{Op: OpCall, Dst: dst, Name: name, Type: ret})
	return dst, nil
}

func (g *generator) genIndex(n *frontend.IndexExpr) (Reg, error) {
	objReg, err := g.genExpr(n.Obj)
	if err != nil {
		return RegNone, err
	}
	idxReg, err := g.genExpr(n.Idx)
	if err != nil {
		return RegNone, err
	}
	dst := g.newReg()
	g.emit(Instr{Op: OpListGet, Dst: dst, Left: objReg, Right: idxReg, Type: g.types[n]})
	return dst, nil
}

func (g *generator) genSlice(n *frontend.SliceExpr) (Reg, error) {
	objReg, err := g.genExpr(n.Obj)
	if err != nil {
		return RegNone, err
	}
	startReg, err := g.constOrExpr(n.Start, 0)
	if err != nil {
		return RegNone, err
	}
	var endReg Reg
	if n.End != nil {
		endReg, err = g.genExpr(n.End)
		if err != nil {
			return RegNone, err
		}
	} else {
		endReg = RegNone
		lenReg := g.newReg()
		g.emit(Instr{Op: OpListLen, Dst: lenReg, Left: objReg})
		endReg = lenReg
	}
	dst := g.newReg()
	g.emit(Instr{Op: OpListSlice, Dst: dst, Left: objReg, Right: startReg, Type: g.types[n], Elems: []Reg{endReg}})
	return dst, nil
}
