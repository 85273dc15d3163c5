package checker

import (
	"github.com/rohitverma007/utap/internal/ast"
	"github.com/rohitverma007/utap/internal/interp"
)

// typeOfBinaryNonInt returns the type of a binary operation with
// non-integer operands, or nil when the combination is invalid. Clock and
// clock-difference arithmetic stays within the clock/diff domains; the
// comparison operators lift into the constraint lattice. Note the
// asymmetry between the strict comparison directions on clocks: an upper
// bound on a clock is admissible in an invariant, a lower bound only in a
// guard.
func typeOfBinaryNonInt(left *ast.Expression, op ast.Kind, right *ast.Expression) *ast.Type {
	switch op {
	case ast.Plus:
		if isInteger(left) && isClock(right) || isClock(left) && isInteger(right) {
			return ast.TypeClock
		}
		if isDiff(left) && isInteger(right) || isInteger(left) && isDiff(right) {
			return ast.TypeDiff
		}

	case ast.Minus:
		// clock - int stays a clock so that it can still be turned
		// into a clock guard; int - clock does not
		if isClock(left) && isInteger(right) {
			return ast.TypeClock
		}
		if isDiff(left) && isInteger(right) ||
			isInteger(left) && isDiff(right) ||
			isClock(left) && isClock(right) {
			return ast.TypeDiff
		}

	case ast.And:
		if isInvariant(left) && isInvariant(right) {
			return ast.TypeInvariant
		}
		if isGuard(left) && isGuard(right) {
			return ast.TypeGuard
		}
		if isConstraint(left) && isConstraint(right) {
			return ast.TypeConstraint
		}

	case ast.Or:
		if isConstraint(left) && isConstraint(right) {
			return ast.TypeConstraint
		}

	case ast.Lt, ast.Le:
		if isClock(left) && isClock(right) ||
			isClock(left) && isInteger(right) ||
			isDiff(left) && isInteger(right) ||
			isInteger(left) && isDiff(right) {
			return ast.TypeInvariant
		}
		if isInteger(left) && isClock(right) {
			return ast.TypeGuard
		}

	case ast.Eq:
		if isClock(left) && isClock(right) ||
			isClock(left) && isInteger(right) ||
			isInteger(left) && isClock(right) ||
			isDiff(left) && isInteger(right) ||
			isInteger(left) && isDiff(right) {
			return ast.TypeGuard
		}

	case ast.Neq:
		if isClock(left) && isClock(right) ||
			isClock(left) && isInteger(right) ||
			isInteger(left) && isClock(right) ||
			isDiff(left) && isInteger(right) ||
			isInteger(left) && isDiff(right) {
			return ast.TypeConstraint
		}

	case ast.Ge, ast.Gt:
		if isClock(left) && isClock(right) ||
			isInteger(left) && isClock(right) ||
			isDiff(left) && isInteger(right) ||
			isInteger(left) && isDiff(right) {
			return ast.TypeInvariant
		}
		if isClock(left) && isGuard(right) {
			return ast.TypeGuard
		}
	}

	return nil
}

// annotate performs basic type checking of the expression and assigns a
// type to every subexpression. It checks that only left-hand side values
// are updated, that functions are called with compatible arguments, and
// that operators are applied to compatible operands. Errors are recorded
// and a recovery type is assigned so that enclosing checks still produce
// useful diagnostics. The range of integer expressions is not computed
// here, so no out-of-range errors are produced.
func (c *Checker) annotate(e *ast.Expression) {
	if e == nil {
		return
	}

	for _, sub := range e.Sub {
		c.annotate(sub)
	}

	var typ *ast.Type
	switch e.Kind {
	case ast.Eq, ast.Neq:
		if isInteger(e.Sub[0]) && isInteger(e.Sub[1]) {
			typ = ast.TypeInt
		} else if e.Sub[0].Base() == ast.Record &&
			e.Sub[0].Type().RecordFields() == e.Sub[1].Type().RecordFields() {
			typ = ast.TypeInt
		} else {
			typ = typeOfBinaryNonInt(e.Sub[0], e.Kind, e.Sub[1])
			if typ == nil {
				c.errorAt(e, "Invalid operands to binary operator")
				typ = ast.TypeConstraint
			}
		}

	case ast.Plus, ast.Minus, ast.Mult, ast.Div, ast.Mod,
		ast.BitAnd, ast.BitOr, ast.BitXor, ast.LShift, ast.RShift,
		ast.And, ast.Or, ast.Min, ast.Max,
		ast.Lt, ast.Le, ast.Ge, ast.Gt:
		if isInteger(e.Sub[0]) && isInteger(e.Sub[1]) {
			typ = ast.TypeInt
		} else {
			typ = typeOfBinaryNonInt(e.Sub[0], e.Kind, e.Sub[1])
			if typ == nil {
				c.errorAt(e, "Invalid operands to binary operator")
				typ = ast.TypeConstraint
			}
		}

	case ast.Not:
		if isInteger(e.Sub[0]) {
			typ = ast.TypeInt
		} else if isConstraint(e.Sub[0]) {
			typ = ast.TypeConstraint
		} else {
			c.errorAt(e, "Invalid operation for type")
			typ = ast.TypeInt
		}

	case ast.UnaryMinus:
		if !isInteger(e.Sub[0]) {
			c.errorAt(e, "Invalid operation for type")
		}
		typ = ast.TypeInt

	case ast.Assign:
		if !areAssignmentCompatible(e.Sub[0].Type(), e.Sub[1].Type()) {
			c.errorAt(e, "Incompatible types")
		} else if !c.isLHSValue(e.Sub[0]) {
			c.errorAt(e.Sub[0], "Left hand side value expected")
		}
		typ = e.Sub[0].Type()

	case ast.AssPlus, ast.AssMinus, ast.AssMult, ast.AssDiv, ast.AssMod,
		ast.AssAnd, ast.AssOr, ast.AssXor, ast.AssLShift, ast.AssRShift:
		if !isInteger(e.Sub[0]) || !isInteger(e.Sub[1]) {
			c.errorAt(e, "Non-integer types must use regular assignment operator.")
		} else if !c.isLHSValue(e.Sub[0]) {
			c.errorAt(e.Sub[0], "Left hand side value expected")
		}
		typ = e.Sub[0].Type()

	case ast.PreIncrement, ast.PostIncrement, ast.PreDecrement, ast.PostDecrement:
		if e.Sub[0].Base() != ast.Int {
			c.errorAt(e, "Argument must be an integer value")
		} else if !c.isLHSValue(e.Sub[0]) {
			c.errorAt(e.Sub[0], "Left hand side value expected")
		}
		typ = ast.TypeInt

	case ast.InlineIf:
		if !isInteger(e.Sub[0]) {
			c.errorAt(e, "First argument of inline if must be an integer")
		}
		if !areInlineIfCompatible(e.Sub[1].Type(), e.Sub[2].Type()) {
			c.errorAt(e, "Incompatible arguments to inline if")
		}
		typ = e.Sub[1].Type()

	case ast.Comma:
		if !isInteger(e.Sub[0]) && !isClock(e.Sub[0]) && !isRecord(e.Sub[0]) ||
			!isInteger(e.Sub[1]) && !isClock(e.Sub[1]) && !isRecord(e.Sub[1]) {
			c.errorAt(e, "Arguments must be of integer, clock or record type")
		}
		typ = e.Sub[1].Type()

	case ast.FunCall:
		if e.Sub[0].Base() != ast.Function {
			c.errorAt(e.Sub[0], "A function name was expected here")
		} else {
			c.checkFunctionCallArguments(e)
		}
		// The call node is deliberately left without a type; functions
		// cannot yet be used as subexpressions.
		return

	default:
		// Identifiers, literals, field accesses, subscripts and lists
		// carry the types established by the parser.
		return
	}
	e.Typ = typ
}

// checkFunctionCallArguments verifies the arity of a call and checks each
// argument against the corresponding formal parameter
func (c *Checker) checkFunctionCallArguments(e *ast.Expression) {
	parameters := e.Sub[0].Type().Parameters()
	argc := len(e.Sub) - 1

	if parameters.Size() > argc {
		c.errorAt(e, "Too few arguments")
	} else if parameters.Size() < argc {
		for i := parameters.Size() + 1; i < len(e.Sub); i++ {
			c.errorAt(e.Sub[i], "Too many arguments")
		}
	} else {
		in := interp.New(c.system.ConstantValuation())
		for i := 0; i < parameters.Size(); i++ {
			c.checkParameterCompatible(in, parameters.At(i).Type(), e.Sub[i+1])
		}
	}
}
