package checker

import (
	"github.com/rohitverma007/utap/internal/ast"
	"github.com/rohitverma007/utap/internal/interp"
)

// areAssignmentCompatible returns true if an expression of type rvalue can
// be assigned to an expression of type lvalue. It does not check whether
// the left operand actually is a left-hand side value, and for integers it
// does not check ranges. Record assignment requires the two records to
// share their field frame.
func areAssignmentCompatible(lvalue, rvalue *ast.Type) bool {
	lbase := lvalue.Base()
	rbase := rvalue.Base()

	if lbase == ast.Void {
		return false
	}

	if lbase == ast.Clock || lbase == ast.Int || lbase == ast.Bool {
		return rbase == ast.Int || rbase == ast.Bool
	}

	if lbase == ast.Record {
		return rbase == ast.Record &&
			lvalue.RecordFields() == rvalue.RecordFields()
	}

	return false
}

// areInlineIfCompatible returns true if the two results of an inline if
// are compatible. Clocks are only compatible with clocks, integers and
// booleans are mutually compatible, channels require identical urgent and
// broadcast prefixes, arrays require equal sizes and compatible subtypes,
// records require the same field frame.
func areInlineIfCompatible(thenArg, elseArg *ast.Type) bool {
	thenBase := thenArg.Base()
	elseBase := elseArg.Base()

	switch thenBase {
	case ast.Int, ast.Bool:
		return elseBase == ast.Int || elseBase == ast.Bool
	case ast.Clock:
		return elseBase == ast.Clock
	case ast.Channel:
		return elseBase == ast.Channel &&
			thenArg.HasPrefix(ast.PrefixUrgent) == elseArg.HasPrefix(ast.PrefixUrgent) &&
			thenArg.HasPrefix(ast.PrefixBroadcast) == elseArg.HasPrefix(ast.PrefixBroadcast)
	case ast.Array:
		return elseBase == ast.Array &&
			thenArg.ArraySize().Equal(elseArg.ArraySize()) &&
			areInlineIfCompatible(thenArg.Sub(), elseArg.Sub())
	case ast.Record:
		return elseBase == ast.Record &&
			thenArg.RecordFields() == elseArg.RecordFields()
	}

	return false
}

// channelCapability grades a channel type: 0 for urgent channels, 1 for
// non-urgent broadcast channels, 2 otherwise. An argument to a channel
// parameter must have at least the capability of the parameter.
func channelCapability(t *ast.Type) int {
	if t.HasPrefix(ast.PrefixUrgent) {
		return 0
	}
	if t.HasPrefix(ast.PrefixBroadcast) {
		return 1
	}
	return 2
}

// checkParameterCompatible checks whether the argument expression is
// compatible with the formal parameter type. Value parameters admit an
// implicit conversion between booleans and integers; non-constant
// reference parameters require a left-hand side value with an exactly
// matching range; constant reference parameters require containment.
// Where ranges cannot be evaluated, reference parameters fall back to
// syntactic comparison of the range declarations and value parameters are
// left to the runtime.
func (c *Checker) checkParameterCompatible(in *interp.Interpreter, paramType *ast.Type, arg *ast.Expression) {
	ref := paramType.HasPrefix(ast.PrefixReference)
	constant := paramType.HasPrefix(ast.PrefixConstant)
	lhs := c.isLHSValue(arg)

	argType := arg.Type()

	if !ref {
		// Value parameters admit conversion between booleans and
		// integers.
		if paramType.Base() == ast.Int && argType.Base() == ast.Bool {
			argType = ast.NewIntRange(
				ast.NewLiteral(arg.Pos, 0), ast.NewLiteral(arg.Pos, 1))
			lhs = false
		}
		if paramType.Base() == ast.Bool && argType.Base() == ast.Int {
			argType = ast.TypeBool
			lhs = false
		}
	}

	if ref && !constant && !lhs {
		c.errorAt(arg, "Reference parameter requires left value argument")
		return
	}

	// Resolve base type of arrays, checking sizes in lockstep
	for paramType.Base() == ast.Array {
		if argType.Base() != ast.Array {
			c.errorAt(arg, "Incompatible argument to array parameter")
			return
		}

		argSize, argErr := in.Evaluate(argType.ArraySize())
		paramSize, paramErr := in.Evaluate(paramType.ArraySize())
		if argErr == nil && paramErr == nil && argSize != paramSize {
			c.errorAt(arg, "Parameter array size does not match argument array size")
		}

		paramType = paramType.Sub()
		argType = argType.Sub()
	}

	if paramType.Base() != argType.Base() {
		c.errorAt(arg, "Incompatible argument")
		return
	}

	switch paramType.Base() {
	case ast.Clock, ast.Bool:
		// Nothing more to check

	case ast.Int:
		c.checkIntParameterRange(in, paramType, argType, arg, ref, constant, lhs)

	case ast.Record:
		if paramType.RecordFields() != argType.RecordFields() {
			c.errorAt(arg, "Argument has incompatible type")
		}

	case ast.Channel:
		if channelCapability(argType) < channelCapability(paramType) {
			c.errorAt(arg, "Incompatible channel type")
		}

	default:
		c.errorAt(arg, "Incompatible argument")
	}
}

// checkIntParameterRange performs the range reasoning for an integer
// argument. The main purpose is to ensure that arguments to reference
// parameters are within range of the parameter; for value parameters the
// check is only possible when the argument is computable at analysis time.
func (c *Checker) checkIntParameterRange(in *interp.Interpreter, paramType, argType *ast.Type, arg *ast.Expression, ref, constant, lhs bool) {
	// A parameter without a range accepts everything
	paramLo, paramHi := paramType.RangeExprs()
	if paramLo == nil {
		return
	}

	if lhs {
		// A left value argument has no exact value; use the declared
		// ranges.
		argLo, argHi := argType.RangeExprs()
		paramRange, paramErr := in.EvaluateRange(paramLo, paramHi)
		argRange, argErr := in.EvaluateRange(argLo, argHi)

		if paramErr != nil || argErr != nil {
			// Computing the declared ranges failed; for reference
			// parameters fall back to comparing the declarations
			// syntactically.
			if ref {
				if !paramLo.Equal(argLo) || !paramHi.Equal(argHi) {
					c.errorAt(arg, "Range of argument does not match range of formal parameter")
				}
			}
			return
		}

		if ref && !constant && argRange != paramRange {
			c.errorAt(arg, "Range of argument does not match range of formal parameter")
			return
		}

		if ref && constant && !paramRange.ContainsRange(argRange) {
			c.errorAt(arg, "Range of argument is outside of the range of the formal parameter")
			return
		}

		// If the two ranges do not intersect at all, the argument can
		// never be valid.
		if paramRange.Intersect(argRange).IsEmpty() {
			c.errorAt(arg, "Range of argument is outside of the range of the formal parameter")
		}
	} else {
		// Not a left value; try to compute the exact values.
		paramRange, paramErr := in.EvaluateRange(paramLo, paramHi)
		values, valErr := in.EvaluateList(arg)
		if paramErr != nil || valErr != nil {
			// Not computable; the check falls to the runtime.
			return
		}

		argRange := ast.EmptyRange()
		for _, v := range values {
			argRange = argRange.Join(ast.Point(v))
		}

		if !paramRange.ContainsRange(argRange) {
			c.errorAt(arg, "Range of argument is outside of the range of the formal parameter")
		}
	}
}
