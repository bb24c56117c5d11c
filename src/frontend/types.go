// types.go defines the source language's type system: primitive scalar types
// and homogeneous non-primitive collection types (list, tuple).

package frontend

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Kind differentiates the primitive and non-primitive type families of the
// source language.
type Kind int

const (
	Int Kind = iota
	Float
	Bool
	Str
	None
	List
	Tuple
)

var kindNames = [...]string{"int", "float", "bool", "str", "none", "list", "tuple"}

// String returns the source-level spelling of k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Type represents either a Primitive(kind) or a NonPrimitive(kind, element)
// as described by the source AST's Type entity. Elem is nil for primitive
// types and for a non-primitive type whose element type has not yet been
// resolved (an empty list/tuple literal).
type Type struct {
	Kind Kind
	Elem *Type
}

// ---------------------
// ----- functions -----
// ---------------------

// Primitive builds a Type for one of the scalar kinds.
func Primitive(k Kind) Type {
	return Type{Kind: k}
}

// Collection builds a Type for a list or tuple of elem. elem may be the zero
// Type{} to represent an element type that is not yet known (empty
// literal); IsUnresolved reports this case.
func Collection(k Kind, elem Type) Type {
	e := elem
	return Type{Kind: k, Elem: &e}
}

// IsPrimitive reports whether t is one of int/float/bool/str/none.
func (t Type) IsPrimitive() bool {
	return t.Kind == Int || t.Kind == Float || t.Kind == Bool || t.Kind == Str || t.Kind == None
}

// IsNumeric reports whether t is int or float.
func (t Type) IsNumeric() bool {
	return t.Kind == Int || t.Kind == Float
}

// IsCollection reports whether t is a list or tuple.
func (t Type) IsCollection() bool {
	return t.Kind == List || t.Kind == Tuple
}

// IsUnresolved reports whether t is a collection whose element type has not
// yet been determined, i.e. the result of type-checking an empty literal.
func (t Type) IsUnresolved() bool {
	return t.IsCollection() && t.Elem == nil
}

// Resolve returns a copy of t with its element type replaced by elem. It is
// a no-op (returns t unchanged) unless t is an unresolved collection.
func (t Type) Resolve(elem Type) Type {
	if !t.IsUnresolved() {
		return t
	}
	return Collection(t.Kind, elem)
}

// Equal reports whether t and o are structurally identical: same Kind, and
// for collections, structurally identical element types. Two unresolved
// collections of the same Kind are considered equal to each other and to
// any resolved collection of the same Kind, mirroring the assignability
// carve-out in spec.md §4.2 ("list/tuple with unknown element type is
// assignable to same-kind collection").
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	if !t.IsCollection() {
		return true
	}
	if t.IsUnresolved() || o.IsUnresolved() {
		return true
	}
	return t.Elem.Equal(*o.Elem)
}

// String renders t in the source language's annotation syntax, e.g. "int",
// "[float]", "(str)".
func (t Type) String() string {
	switch t.Kind {
	case List:
		if t.Elem == nil {
			return "[]"
		}
		return fmt.Sprintf("[%s]", t.Elem)
	case Tuple:
		if t.Elem == nil {
			return "()"
		}
		return fmt.Sprintf("(%s)", t.Elem)
	default:
		return t.Kind.String()
	}
}
