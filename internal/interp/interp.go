// Package interp evaluates expressions at analysis time. Evaluation fails
// with ErrNotComputable whenever an expression reads a variable that is
// not part of the valuation; callers choose their own fallback, typically
// a conservative syntactic check or deferral to runtime.
package interp

import (
	"errors"

	"github.com/rohitverma007/utap/internal/ast"
)

// ErrNotComputable reports that an expression cannot be evaluated at
// analysis time
var ErrNotComputable = errors.New("expression is not computable")

// Interpreter evaluates constant expressions under a valuation mapping
// symbols to the expressions they are bound to
type Interpreter struct {
	valuation map[*ast.Symbol]*ast.Expression
	depth     int
}

// maxDepth bounds the expansion of symbol bindings; a self-referential
// constant declaration would otherwise recurse forever
const maxDepth = 512

// New creates an interpreter over the given constant valuation. The map is
// copied so later extensions do not alias the caller's map.
func New(valuation map[*ast.Symbol]*ast.Expression) *Interpreter {
	v := make(map[*ast.Symbol]*ast.Expression, len(valuation))
	for sym, expr := range valuation {
		v[sym] = expr
	}
	return &Interpreter{valuation: v}
}

// AddValuation extends the valuation with an instance parameter mapping
func (in *Interpreter) AddValuation(mapping []ast.Binding) {
	for _, b := range mapping {
		in.valuation[b.Param] = b.Arg
	}
}

// Evaluate computes the integer value of the expression, or fails with
// ErrNotComputable
func (in *Interpreter) Evaluate(e *ast.Expression) (int32, error) {
	if e == nil {
		return 0, ErrNotComputable
	}
	switch e.Kind {
	case ast.Literal:
		return e.Val, nil

	case ast.Identifier:
		bound, ok := in.valuation[e.Sym]
		if !ok {
			return 0, ErrNotComputable
		}
		if in.depth >= maxDepth {
			return 0, ErrNotComputable
		}
		in.depth++
		v, err := in.Evaluate(bound)
		in.depth--
		return v, err

	case ast.UnaryMinus:
		v, err := in.Evaluate(e.Sub[0])
		return -v, err

	case ast.Not:
		v, err := in.Evaluate(e.Sub[0])
		if err != nil {
			return 0, err
		}
		return boolVal(v == 0), nil

	case ast.InlineIf:
		c, err := in.Evaluate(e.Sub[0])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return in.Evaluate(e.Sub[1])
		}
		return in.Evaluate(e.Sub[2])

	case ast.Comma:
		if _, err := in.Evaluate(e.Sub[0]); err != nil {
			return 0, err
		}
		return in.Evaluate(e.Sub[1])

	case ast.Plus, ast.Minus, ast.Mult, ast.Div, ast.Mod,
		ast.BitAnd, ast.BitOr, ast.BitXor, ast.LShift, ast.RShift,
		ast.And, ast.Or, ast.Min, ast.Max,
		ast.Lt, ast.Le, ast.Ge, ast.Gt, ast.Eq, ast.Neq:
		left, err := in.Evaluate(e.Sub[0])
		if err != nil {
			return 0, err
		}
		right, err := in.Evaluate(e.Sub[1])
		if err != nil {
			return 0, err
		}
		return binary(e.Kind, left, right)

	default:
		return 0, ErrNotComputable
	}
}

// EvaluateList computes the values of a list expression; a non-list
// expression yields a single value
func (in *Interpreter) EvaluateList(e *ast.Expression) ([]int32, error) {
	if e != nil && e.Kind == ast.List {
		values := make([]int32, 0, len(e.Sub))
		for _, sub := range e.Sub {
			vs, err := in.EvaluateList(sub)
			if err != nil {
				return nil, err
			}
			values = append(values, vs...)
		}
		return values, nil
	}
	v, err := in.Evaluate(e)
	if err != nil {
		return nil, err
	}
	return []int32{v}, nil
}

// EvaluateRange computes a concrete range from symbolic endpoints
func (in *Interpreter) EvaluateRange(lo, hi *ast.Expression) (ast.Range, error) {
	l, err := in.Evaluate(lo)
	if err != nil {
		return ast.Range{}, err
	}
	h, err := in.Evaluate(hi)
	if err != nil {
		return ast.Range{}, err
	}
	return ast.Range{Lo: l, Hi: h}, nil
}

func binary(kind ast.Kind, left, right int32) (int32, error) {
	switch kind {
	case ast.Plus:
		return left + right, nil
	case ast.Minus:
		return left - right, nil
	case ast.Mult:
		return left * right, nil
	case ast.Div:
		if right == 0 {
			return 0, ErrNotComputable
		}
		return left / right, nil
	case ast.Mod:
		if right == 0 {
			return 0, ErrNotComputable
		}
		return left % right, nil
	case ast.BitAnd:
		return left & right, nil
	case ast.BitOr:
		return left | right, nil
	case ast.BitXor:
		return left ^ right, nil
	case ast.LShift:
		if right < 0 || right >= 32 {
			return 0, ErrNotComputable
		}
		return left << uint(right), nil
	case ast.RShift:
		if right < 0 || right >= 32 {
			return 0, ErrNotComputable
		}
		return left >> uint(right), nil
	case ast.And:
		return boolVal(left != 0 && right != 0), nil
	case ast.Or:
		return boolVal(left != 0 || right != 0), nil
	case ast.Min:
		if left < right {
			return left, nil
		}
		return right, nil
	case ast.Max:
		if left > right {
			return left, nil
		}
		return right, nil
	case ast.Lt:
		return boolVal(left < right), nil
	case ast.Le:
		return boolVal(left <= right), nil
	case ast.Ge:
		return boolVal(left >= right), nil
	case ast.Gt:
		return boolVal(left > right), nil
	case ast.Eq:
		return boolVal(left == right), nil
	case ast.Neq:
		return boolVal(left != right), nil
	default:
		return 0, ErrNotComputable
	}
}

func boolVal(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
