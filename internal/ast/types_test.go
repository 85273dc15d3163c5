package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeOperations(t *testing.T) {
	r := Range{Lo: 0, Hi: 10}

	assert.True(t, r.Contains(0))
	assert.True(t, r.Contains(10))
	assert.False(t, r.Contains(-1))
	assert.False(t, r.Contains(11))

	assert.True(t, r.ContainsRange(Range{Lo: 2, Hi: 8}))
	assert.False(t, r.ContainsRange(Range{Lo: 2, Hi: 11}))
	assert.True(t, r.ContainsRange(EmptyRange()))

	assert.Equal(t, Range{Lo: 5, Hi: 10}, r.Intersect(Range{Lo: 5, Hi: 20}))
	assert.True(t, r.Intersect(Range{Lo: 11, Hi: 20}).IsEmpty())

	assert.Equal(t, Range{Lo: -5, Hi: 10}, r.Join(Range{Lo: -5, Hi: -2}))
	assert.Equal(t, r, EmptyRange().Join(r))
	assert.Equal(t, Point(3), EmptyRange().Join(Point(3)))
}

func TestTypePrefixes(t *testing.T) {
	c := TypeChannel.WithPrefix(PrefixUrgent)

	assert.True(t, c.HasPrefix(PrefixUrgent))
	assert.False(t, c.HasPrefix(PrefixBroadcast))
	assert.Equal(t, Channel, c.Base())

	// The shared singleton is untouched
	assert.False(t, TypeChannel.HasPrefix(PrefixUrgent))
}

func TestRecordEqualityIsNominal(t *testing.T) {
	f1 := NewFrame()
	f1.Add("a", TypeInt)
	f2 := NewFrame()
	f2.Add("a", TypeInt)

	r1 := NewRecord(f1)
	r2 := NewRecord(f2)

	assert.False(t, r1.Equal(r2), "structurally equal records with distinct frames must differ")
	assert.True(t, r1.Equal(NewRecord(f1)))
}

func TestIntRangeEqualityIsSyntactic(t *testing.T) {
	lo := NewLiteral(Position{}, 0)
	hi := NewLiteral(Position{}, 10)

	a := NewIntRange(lo, hi)
	b := NewIntRange(NewLiteral(Position{}, 0), NewLiteral(Position{}, 10))
	c := NewIntRange(NewLiteral(Position{}, 0), NewLiteral(Position{}, 20))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(TypeInt))
}

func TestExpressionDependsOn(t *testing.T) {
	n := &Symbol{Name: "n", Typ: TypeInt}
	m := &Symbol{Name: "m", Typ: TypeInt}

	sum := &Expression{Kind: Plus, Sub: []*Expression{
		NewIdentifier(Position{}, n),
		NewLiteral(Position{}, 1),
	}}

	assert.True(t, sum.DependsOn(map[*Symbol]bool{n: true}))
	assert.False(t, sum.DependsOn(map[*Symbol]bool{m: true}))
}

func TestExpressionChangesAnyOf(t *testing.T) {
	n := &Symbol{Name: "n", Typ: TypeInt}
	m := &Symbol{Name: "m", Typ: TypeInt}

	assign := &Expression{Kind: Assign, Sub: []*Expression{
		NewIdentifier(Position{}, n),
		NewLiteral(Position{}, 1),
	}}

	assert.True(t, assign.ChangesAnyOf(map[*Symbol]bool{n: true}))
	assert.False(t, assign.ChangesAnyOf(map[*Symbol]bool{m: true}))

	read := NewIdentifier(Position{}, n)
	assert.False(t, read.ChangesAnyOf(map[*Symbol]bool{n: true}))
}

func TestExpressionSymbol(t *testing.T) {
	arr := &Symbol{Name: "a", Typ: NewArray(NewLiteral(Position{}, 3), TypeInt)}

	subscript := &Expression{Kind: Index, Sub: []*Expression{
		NewIdentifier(Position{}, arr),
		NewLiteral(Position{}, 0),
	}}

	require.NotNil(t, subscript.Symbol())
	assert.Equal(t, arr, subscript.Symbol())
}

func TestFrameLookup(t *testing.T) {
	f := NewFrame()
	f.Add("x", TypeInt)
	f.Add("y", TypeClock)

	assert.Equal(t, 0, f.IndexOf("x"))
	assert.Equal(t, 1, f.IndexOf("y"))
	assert.Equal(t, -1, f.IndexOf("z"))

	require.NotNil(t, f.Lookup("y"))
	assert.Equal(t, Clock, f.Lookup("y").Type().Base())
}
