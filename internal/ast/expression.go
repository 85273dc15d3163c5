package ast

// Kind identifies the operator or leaf form of an expression node
type Kind int

const (
	// Leaves
	Identifier Kind = iota
	Literal         // integer constant
	List            // initialiser list

	// Access
	Dot   // record field access
	Index // array subscript

	// Binary arithmetic and logic
	Plus
	Minus
	Mult
	Div
	Mod
	BitAnd
	BitOr
	BitXor
	LShift
	RShift
	And
	Or
	Min
	Max

	// Comparisons
	Lt
	Le
	Ge
	Gt
	Eq
	Neq

	// Unary
	Not
	UnaryMinus

	// Assignment
	Assign
	AssPlus
	AssMinus
	AssMult
	AssDiv
	AssMod
	AssAnd
	AssOr
	AssXor
	AssLShift
	AssRShift

	// Increment and decrement
	PreIncrement
	PostIncrement
	PreDecrement
	PostDecrement

	InlineIf
	Comma
	FunCall

	// Property forms
	LeadsTo
)

// IsCompoundAssignment reports whether the kind is one of the arithmetic or
// bitwise assignment operators (excluding plain assignment)
func (k Kind) IsCompoundAssignment() bool {
	return k >= AssPlus && k <= AssRShift
}

// IsAssignment reports whether the kind is any assignment operator
func (k Kind) IsAssignment() bool {
	return k == Assign || k.IsCompoundAssignment()
}

// Position is a source location
type Position struct {
	Line   int
	Column int
}

// Expression is a node in an expression tree. A nil *Expression represents
// the absence of an expression (an empty guard, a variable without an
// initialiser). Typ is written exactly once, by the annotator; the parser
// pre-establishes the types of identifiers, literals, field accesses and
// subscripts.
type Expression struct {
	Kind Kind
	Sub  []*Expression
	Pos  Position
	Sym  *Symbol // bound symbol for identifiers
	Val  int32   // value of a Literal
	Name string  // field name of a Dot, or named initialiser element
	Typ  *Type
}

// NewLiteral creates an integer literal expression
func NewLiteral(pos Position, n int32) *Expression {
	return &Expression{Kind: Literal, Pos: pos, Val: n, Typ: TypeInt}
}

// NewIdentifier creates an identifier expression bound to sym
func NewIdentifier(pos Position, sym *Symbol) *Expression {
	return &Expression{Kind: Identifier, Pos: pos, Sym: sym, Typ: sym.Typ}
}

// Base returns the base of the expression's annotated type. It is safe on
// nil expressions and on nodes the annotator has not reached, both of
// which read as Void.
func (e *Expression) Base() Base {
	if e == nil {
		return Void
	}
	return e.Typ.Base()
}

// Type returns the annotated type, nil if none has been assigned
func (e *Expression) Type() *Type {
	if e == nil {
		return nil
	}
	return e.Typ
}

// Symbol returns the root symbol the expression refers to: the symbol of an
// identifier, the array or record variable of a subscript or field access,
// the right operand of a comma. Returns nil when the expression does not
// refer to a variable.
func (e *Expression) Symbol() *Symbol {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case Identifier:
		return e.Sym
	case Dot, Index, PreIncrement, PreDecrement:
		return e.Sub[0].Symbol()
	case InlineIf:
		return e.Sub[1].Symbol()
	case Comma:
		return e.Sub[1].Symbol()
	default:
		if e.Kind.IsAssignment() {
			return e.Sub[0].Symbol()
		}
		return nil
	}
}

// Equal reports syntactic equality of two expression trees. Two nil
// expressions are equal.
func (e *Expression) Equal(o *Expression) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.Kind != o.Kind || e.Val != o.Val || e.Name != o.Name || e.Sym != o.Sym {
		return false
	}
	if len(e.Sub) != len(o.Sub) {
		return false
	}
	for i := range e.Sub {
		if !e.Sub[i].Equal(o.Sub[i]) {
			return false
		}
	}
	return true
}

// DependsOn reports whether the expression reads any symbol in the given
// set. Expressions depending on persistent variables are not computable at
// analysis time.
func (e *Expression) DependsOn(set map[*Symbol]bool) bool {
	if e == nil {
		return false
	}
	if e.Kind == Identifier && set[e.Sym] {
		return true
	}
	for _, sub := range e.Sub {
		if sub.DependsOn(set) {
			return true
		}
	}
	return false
}

// ChangesAnyOf reports whether evaluating the expression may modify any
// symbol in the given set. Assignment targets contribute their root
// symbol; a function call is conservatively assumed to be able to modify
// any variable.
func (e *Expression) ChangesAnyOf(set map[*Symbol]bool) bool {
	if e == nil {
		return false
	}
	switch {
	case e.Kind == FunCall:
		return len(set) > 0
	case e.Kind.IsAssignment(),
		e.Kind == PreIncrement, e.Kind == PostIncrement,
		e.Kind == PreDecrement, e.Kind == PostDecrement:
		for _, target := range e.Sub[0].targets() {
			if set[target] {
				return true
			}
		}
	}
	for _, sub := range e.Sub {
		if sub.ChangesAnyOf(set) {
			return true
		}
	}
	return false
}

// targets returns the symbols an assignment to this expression may write
func (e *Expression) targets() []*Symbol {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case Identifier:
		return []*Symbol{e.Sym}
	case Dot, Index:
		return e.Sub[0].targets()
	case InlineIf:
		return append(e.Sub[1].targets(), e.Sub[2].targets()...)
	case Comma:
		return e.Sub[1].targets()
	default:
		if e.Kind.IsAssignment() {
			return e.Sub[0].targets()
		}
		return nil
	}
}
