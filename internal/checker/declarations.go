package checker

import (
	"github.com/rohitverma007/utap/internal/ast"
	"github.com/rohitverma007/utap/internal/interp"
)

// initialiserError aborts the check of a single variable at the first
// invalid initialiser element; the offending expression carries the
// position for the report.
type initialiserError struct {
	expr *ast.Expression
	msg  string
}

func (e *initialiserError) Error() string {
	return e.msg
}

// annotateAndExpectConstantInteger annotates the expression and checks
// that it is an integer not depending on persistent variables
func (c *Checker) annotateAndExpectConstantInteger(e *ast.Expression) {
	c.annotate(e)

	if !isInteger(e) {
		c.errorAt(e, "Integer expression expected")
	} else if e.DependsOn(c.persistent) {
		c.errorAt(e, "Constant expression expected")
	}
}

// checkType checks that the expressions contained in a type, such as
// array sizes and integer range endpoints, are constant integers
func (c *Checker) checkType(t *ast.Type) {
	switch t.Base() {
	case ast.Int:
		lo, hi := t.RangeExprs()
		if lo == nil {
			return
		}
		c.annotateAndExpectConstantInteger(lo)
		c.annotateAndExpectConstantInteger(hi)

	case ast.Array:
		c.annotateAndExpectConstantInteger(t.ArraySize())
		c.checkType(t.Sub())

	case ast.Record:
		// TODO: check the field types
	}
}

// checkVariableInitialiser checks the initialiser of a constant or a
// variable
func (c *Checker) checkVariableInitialiser(variable *ast.Variable) {
	if variable.Init == nil {
		return
	}

	c.annotate(variable.Init)

	if variable.Init.DependsOn(c.persistent) {
		c.errorAt(variable.Init, "Constant expression expected")
	} else if !c.isSideEffectFree(variable.Init) {
		c.errorAt(variable.Init, "Initialiser must not have side effects")
	} else if err := c.checkInitialiser(variable.Sym.Type(), variable.Init); err != nil {
		c.errorAt(err.expr, "%s", err.msg)
	}
}

// checkInitialiser checks whether init is a valid initialiser for a
// variable or constant of the given type. The first invalid element stops
// the check of this variable; errors in sibling fields of a record are
// still reported individually.
func (c *Checker) checkInitialiser(t *ast.Type, init *ast.Expression) *initialiserError {
	in := interp.New(c.system.ConstantValuation())

	switch t.Base() {
	case ast.Array:
		if init.Kind != ast.List {
			return &initialiserError{init, "Invalid array initialiser"}
		}

		dim, err := in.Evaluate(t.ArraySize())
		if err != nil {
			return &initialiserError{init, "Arrays with parameterized size cannot have an initialiser"}
		}

		if int32(len(init.Sub)) > dim {
			return &initialiserError{init, "Excess elements in array initialiser"}
		}

		fields := init.Type().RecordFields()
		for i := 0; i < fields.Size(); i++ {
			if fields.At(i).Name != "" {
				return &initialiserError{init.Sub[i], "Unknown field specified in initialiser"}
			}
			if err := c.checkInitialiser(t.Sub(), init.Sub[i]); err != nil {
				return err
			}
		}

		if int32(fields.Size()) < dim {
			return &initialiserError{init, "Missing fields in initialiser"}
		}

	case ast.Bool:
		if !isInteger(init) {
			return &initialiserError{init, "Invalid initialiser"}
		}

	case ast.Int:
		if !isInteger(init) {
			return &initialiserError{init, "Invalid initialiser"}
		}

		// Without a range there is nothing more to check (constants
		// are often declared without one)
		lo, hi := t.RangeExprs()
		if lo == nil {
			return nil
		}

		// We cannot in general decide whether the initialiser is
		// within range; but when both the value and the range are
		// computable, the value must be contained.
		n, errVal := in.Evaluate(init)
		rng, errRange := in.EvaluateRange(lo, hi)
		if errVal == nil && errRange == nil && !rng.Contains(n) {
			return &initialiserError{init, "Initialiser is out of range"}
		}

	case ast.Record:
		// Fast path: an initialiser that already has the record's own
		// field frame.
		if t.RecordFields() == init.Type().RecordFields() {
			return nil
		}

		if init.Kind != ast.List {
			return &initialiserError{init, "Invalid initialiser for struct"}
		}

		fields := t.RecordFields()
		initialisers := init.Type().RecordFields()
		hasInitialiser := make([]bool, fields.Size())

		current := 0
		for i := 0; i < initialisers.Size(); i, current = i+1, current+1 {
			if initialisers.At(i).Name != "" {
				current = fields.IndexOf(initialisers.At(i).Name)
				if current == -1 {
					c.errorAt(init.Sub[i], "Unknown field")
					break
				}
			}

			if current >= fields.Size() {
				c.errorAt(init.Sub[i], "Excess elements in initialiser")
				break
			}

			if hasInitialiser[current] {
				c.errorAt(init.Sub[i], "Multiple initialisers for field")
				continue
			}

			hasInitialiser[current] = true
			if err := c.checkInitialiser(fields.At(current).Type(), init.Sub[i]); err != nil {
				return err
			}
		}

		for i := range hasInitialiser {
			if !hasInitialiser[i] {
				return &initialiserError{init, "Incomplete initialiser"}
			}
		}
	}

	return nil
}
