package cast

import (
	"fmt"

	"vslc2c/src/frontend"
	"vslc2c/src/ir"
)

// builder walks one function's flat instruction stream, turning each
// register definition into a declared C temporary and each named-variable
// store into either a first declaration or a plain assignment. Grounded
// on original_source/C_AST_gen.py's single left-to-right pass over IR,
// generalized to this IR's explicit Reg/Name split rather than the
// original's single symbol-table-backed name per value.
type builder struct {
	body        []Stmt
	regType     map[ir.Reg]CType
	declaredVar map[string]bool
	pendingArgs []Expr
}

// Build lowers prog into a C-AST File: every user-defined function plus
// the program's top-level statements as an implicit `main`.
func Build(prog *ir.Program) (*File, error) {
	f := &File{}
	for _, fn := range prog.Functions {
		cf, err := buildFunction(fn)
		if err != nil {
			return nil, err
		}
		f.Functions = append(f.Functions, cf)
	}

	b := newBuilder()
	if err := b.walk(prog.Main); err != nil {
		return nil, err
	}
	f.Main = &FuncDef{Name: "main", Return: CInt, Body: append(b.body, Return{Value: IntLit{0}})}
	return f, nil
}

func newBuilder() *builder {
	return &builder{
		regType:     make(map[ir.Reg]CType),
		declaredVar: make(map[string]bool),
	}
}

func buildFunction(fn *ir.Function) (*FuncDef, error) {
	b := newBuilder()
	cf := &FuncDef{Name: fn.Mangled, Return: FromSourceType(fn.Return)}

	i := 0
	for i < len(fn.Body) && fn.Body[i].Op == ir.OpParam {
		p := fn.Body[i]
		cf.Params = append(cf.Params, Param{Type: FromSourceType(p.Type), Name: p.Name})
		b.declaredVar[p.Name] = true
		i++
	}
	if err := b.walk(fn.Body[i:]); err != nil {
		return nil, err
	}
	cf.Body = b.body
	return cf, nil
}

func (b *builder) emit(s Stmt) { b.body = append(b.body, s) }

func (b *builder) reg(r ir.Reg) Expr { return Var{Name: fmt.Sprintf("t%d", r)} }

func (b *builder) declareReg(dst ir.Reg, typ CType, init Expr) {
	b.emit(Decl{Type: typ, Name: fmt.Sprintf("t%d", dst), Init: init})
	b.regType[dst] = typ
}

// pickType resolves the C type for an instruction that may or may not
// carry an explicit source Type, falling back to the type already
// recorded for its source register (used by stores whose value type is
// only known from where it came from, e.g. a for-list loop variable).
func (b *builder) pickType(t frontend.Type, fallback ir.Reg) CType {
	if t.Kind != frontend.Int || t.Elem != nil {
		return FromSourceType(t)
	}
	if ct, ok := b.regType[fallback]; ok {
		return ct
	}
	return FromSourceType(t)
}

func (b *builder) walk(instrs []ir.Instr) error {
	for _, instr := range instrs {
		if err := b.step(instr); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) step(instr ir.Instr) error {
	switch instr.Op {
	case ir.OpLabel:
		b.emit(Label{Name: instr.Label})
	case ir.OpGoto:
		b.emit(Goto{Name: instr.Label})
	case ir.OpIfFalseGoto:
		b.emit(IfGoto{Cond: b.reg(instr.Left), Name: instr.Label})
	case ir.OpLoadConst:
		b.declareReg(instr.Dst, FromSourceType(instr.Type), constExpr(instr))
	case ir.OpLoadString:
		b.declareReg(instr.Dst, CString, StrLit{Value: instr.Const.(string)})
	case ir.OpBinary:
		b.declareReg(instr.Dst, FromSourceType(instr.Type), Binary{Op: instr.BinOp, Left: b.reg(instr.Left), Right: b.reg(instr.Right)})
	case ir.OpUnary:
		b.declareReg(instr.Dst, FromSourceType(instr.Type), Unary{Op: instr.UnOp, Operand: b.reg(instr.Left)})
	case ir.OpMove:
		b.declareReg(instr.Dst, b.regType[instr.Left], b.reg(instr.Left))
	case ir.OpLoadVar:
		b.declareReg(instr.Dst, FromSourceType(instr.Type), Var{Name: instr.Name})
	case ir.OpStoreVar:
		ct := b.pickType(instr.Type, instr.Left)
		if !b.declaredVar[instr.Name] {
			b.declaredVar[instr.Name] = true
			b.emit(Decl{Type: ct, Name: instr.Name, Init: b.reg(instr.Left)})
		} else {
			b.emit(Assign{Name: instr.Name, Value: b.reg(instr.Left)})
		}
	case ir.OpNewList:
		elemType := CInt
		if instr.Type.Elem != nil {
			elemType = FromSourceType(*instr.Type.Elem)
		}
		elems := make([]Expr, len(instr.Elems))
		for i, r := range instr.Elems {
			elems[i] = b.reg(r)
		}
		b.declareReg(instr.Dst, CList, ListNew{Elem: elemType, Elems: elems})
	case ir.OpListGet:
		b.declareReg(instr.Dst, FromSourceType(instr.Type), ListIndex{List: b.reg(instr.Left), Index: b.reg(instr.Right)})
	case ir.OpListSlice:
		end := Expr(ListLen{List: b.reg(instr.Left)})
		if len(instr.Elems) == 1 && instr.Elems[0] != ir.RegNone {
			end = b.reg(instr.Elems[0])
		}
		b.declareReg(instr.Dst, CList, ListSlice{List: b.reg(instr.Left), Start: b.reg(instr.Right), End: end})
	case ir.OpListLen:
		b.declareReg(instr.Dst, CInt, ListLen{List: b.reg(instr.Left)})
	case ir.OpListAppend:
		b.emit(ListAppendStmt{List: b.reg(instr.Left), Value: b.reg(instr.Right)})
	case ir.OpArg:
		b.pendingArgs = append(b.pendingArgs, b.reg(instr.Left))
	case ir.OpCall:
		args := b.pendingArgs
		b.pendingArgs = nil
		b.declareReg(instr.Dst, FromSourceType(instr.Type), Call{Name: instr.Name, Args: args})
	case ir.OpCallVoid:
		args := b.pendingArgs
		b.pendingArgs = nil
		b.emit(ExprStmt{Expr: Call{Name: instr.Name, Args: args}})
	case ir.OpReturn:
		if instr.Left == ir.RegNone {
			b.emit(Return{})
		} else {
			b.emit(Return{Value: b.reg(instr.Left)})
		}
	default:
		return fmt.Errorf("cast: unhandled IR op %v", instr.Op)
	}
	return nil
}

func constExpr(instr ir.Instr) Expr {
	switch instr.Type.Kind {
	case frontend.Float:
		return FloatLit{Value: instr.Const.(float64)}
	case frontend.Bool:
		return BoolLit{Value: instr.Const.(bool)}
	default:
		return IntLit{Value: instr.Const.(int64)}
	}
}
