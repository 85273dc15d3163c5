package parser

import (
	"testing"

	"github.com/rohitverma007/utap/internal/ast"
)

func parse(t *testing.T, source string) *ast.System {
	t.Helper()
	p := New(source, true)
	sys := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("Parser errors: %s", p.Diagnostics().Format("test"))
	}
	return sys
}

func TestGlobalDeclarations(t *testing.T) {
	sys := parse(t, `
clock x, y;
int n = 3;
const int[0,10] N = 5;
urgent chan c;
broadcast chan b;
bool flag;
int arr[4] = { 1, 2, 3, 4 };
`)

	if got := len(sys.Global.Variables); got != 8 {
		t.Fatalf("expected 8 variables, got %d", got)
	}

	x := sys.Global.Frame.Lookup("x")
	if x == nil || x.Type().Base() != ast.Clock {
		t.Errorf("expected x to be a clock")
	}

	n := sys.Global.Frame.Lookup("N")
	if n == nil || !n.Type().HasPrefix(ast.PrefixConstant) {
		t.Errorf("expected N to be constant")
	}
	if lo, hi := n.Type().RangeExprs(); lo == nil || hi == nil {
		t.Errorf("expected N to carry a range")
	}

	c := sys.Global.Frame.Lookup("c")
	if c == nil || !c.Type().HasPrefix(ast.PrefixUrgent) {
		t.Errorf("expected c to be urgent")
	}

	arr := sys.Global.Frame.Lookup("arr")
	if arr == nil || arr.Type().Base() != ast.Array || arr.Type().Sub().Base() != ast.Int {
		t.Errorf("expected arr to be an integer array")
	}
}

func TestTypedefStruct(t *testing.T) {
	sys := parse(t, `
typedef struct { int a; bool b; } S;
S s1, s2;
`)

	s1 := sys.Global.Frame.Lookup("s1")
	s2 := sys.Global.Frame.Lookup("s2")
	if s1 == nil || s2 == nil {
		t.Fatal("expected s1 and s2 to be declared")
	}
	if s1.Type().Base() != ast.Record {
		t.Fatalf("expected s1 to be a record")
	}
	if s1.Type().RecordFields() != s2.Type().RecordFields() {
		t.Errorf("expected s1 and s2 to share one field frame")
	}
	if s1.Type().RecordFields().IndexOf("b") != 1 {
		t.Errorf("expected field b at index 1")
	}
}

func TestTemplateStructure(t *testing.T) {
	sys := parse(t, `
chan c;
int[0,5] v0;

process P(const int id, int[0,5] &v) {
    clock z;
    state s0 { z <= 10 }, s1;
    init s0;
    trans s0 -> s1 { guard z >= 2; sync c!; assign z = 0; },
          s1 -> s0 { sync c?; };
}

P1 = P(1, v0);
system P1;
`)

	if len(sys.Templates) != 1 {
		t.Fatalf("expected one template, got %d", len(sys.Templates))
	}
	tpl := sys.Templates[0]

	if tpl.Parameters.Size() != 2 {
		t.Fatalf("expected two parameters, got %d", tpl.Parameters.Size())
	}
	if !tpl.Parameters.At(1).Type().HasPrefix(ast.PrefixReference) {
		t.Errorf("expected second parameter to be a reference")
	}

	if len(tpl.States) != 2 {
		t.Fatalf("expected two states, got %d", len(tpl.States))
	}
	if tpl.States[0].Invariant == nil {
		t.Errorf("expected s0 to carry an invariant")
	}
	if tpl.Init != tpl.States[0] {
		t.Errorf("expected s0 to be the initial state")
	}

	if len(tpl.Transitions) != 2 {
		t.Fatalf("expected two transitions, got %d", len(tpl.Transitions))
	}

	first := tpl.Transitions[0]
	if first.Src != tpl.States[0] || first.Dst != tpl.States[1] {
		t.Errorf("expected transition s0 -> s1")
	}
	if first.Guard == nil || first.Sync == nil || first.Assign == nil {
		t.Errorf("expected guard, sync and assignment labels")
	}
	if first.Dir != ast.SyncBang {
		t.Errorf("expected an emitting synchronisation")
	}

	second := tpl.Transitions[1]
	if second.Dir != ast.SyncQue {
		t.Errorf("expected a receiving synchronisation")
	}
	if second.Assign == nil || second.Assign.Kind != ast.Literal || second.Assign.Val != 1 {
		t.Errorf("expected the default assignment literal")
	}
}

func TestInstantiationMapping(t *testing.T) {
	sys := parse(t, `
int[0,5] w;

process P(const int id, int[0,5] &v) {
    state s0;
    init s0;
}

P1 = P(3, w);
system P1;
`)

	if len(sys.Instances) != 1 {
		t.Fatalf("expected one instance, got %d", len(sys.Instances))
	}
	inst := sys.Instances[0]

	if len(inst.Mapping) != 2 {
		t.Fatalf("expected two bindings, got %d", len(inst.Mapping))
	}
	if inst.Mapping[0].Param.Name != "id" || inst.Mapping[0].Arg.Kind != ast.Literal {
		t.Errorf("expected id bound to a literal")
	}
	if inst.Mapping[1].Arg.Kind != ast.Identifier || inst.Mapping[1].Arg.Sym.Name != "w" {
		t.Errorf("expected v bound to w")
	}

	if len(sys.Processes) != 1 || sys.Processes[0] != inst {
		t.Errorf("expected P1 on the system line")
	}
}

func TestParameterlessTemplateOnSystemLine(t *testing.T) {
	sys := parse(t, `
process P() {
    state s0;
    init s0;
}

system P;
`)

	if len(sys.Instances) != 1 || len(sys.Processes) != 1 {
		t.Fatalf("expected an implicit instance for P")
	}
}

func TestFunctionParsing(t *testing.T) {
	sys := parse(t, `
int add(int a, int b) {
    int r;
    r = a + b;
    return r;
}
`)

	if len(sys.Global.Functions) != 1 {
		t.Fatalf("expected one function, got %d", len(sys.Global.Functions))
	}
	fn := sys.Global.Functions[0]

	if fn.Sym.Type().Base() != ast.Function {
		t.Fatalf("expected a function type")
	}
	if fn.Sym.Type().Parameters().Size() != 2 {
		t.Errorf("expected two parameters")
	}
	if fn.Sym.Type().Return().Base() != ast.Int {
		t.Errorf("expected an integer return type")
	}
	if len(fn.Body.Decls) != 1 || len(fn.Body.Stmts) != 2 {
		t.Errorf("expected one local and two statements")
	}
}

func TestExpressionPrecedence(t *testing.T) {
	sys := parse(t, `
int a, b, c;
process P() {
    state s0;
    init s0;
    trans s0 -> s0 { guard a + b * c == 7; };
}
P1 = P();
system P1;
`)

	guard := sys.Templates[0].Transitions[0].Guard
	if guard.Kind != ast.Eq {
		t.Fatalf("expected == at the root")
	}
	sum := guard.Sub[0]
	if sum.Kind != ast.Plus {
		t.Fatalf("expected + below ==")
	}
	if sum.Sub[1].Kind != ast.Mult {
		t.Errorf("expected * to bind tighter than +")
	}
}

func TestUnknownIdentifier(t *testing.T) {
	p := New(`int n = m;`, true)
	p.Parse()

	if !p.Diagnostics().HasErrors() {
		t.Fatal("expected an error for the unknown identifier")
	}
}

func TestDuplicateDeclaration(t *testing.T) {
	p := New("int n;\nint n;", true)
	p.Parse()

	if !p.Diagnostics().HasErrors() {
		t.Fatal("expected an error for the duplicate declaration")
	}
}

func TestQueries(t *testing.T) {
	sys := parse(t, `
clock x;
int n;
`)

	qp := New("A[] x <= 5\nE<> n == 2\nn == 1 --> n == 2\n", true)
	qp.ParseQueries(sys)
	if qp.Diagnostics().HasErrors() {
		t.Fatalf("Query parser errors: %s", qp.Diagnostics().Format("test"))
	}

	if len(sys.Properties) != 3 {
		t.Fatalf("expected three properties, got %d", len(sys.Properties))
	}
	if sys.Properties[0].Quant != "A[]" {
		t.Errorf("expected an A[] quantifier, got %q", sys.Properties[0].Quant)
	}
	if sys.Properties[1].Quant != "E<>" {
		t.Errorf("expected an E<> quantifier, got %q", sys.Properties[1].Quant)
	}
	if sys.Properties[2].Expr.Kind != ast.LeadsTo {
		t.Errorf("expected a leads-to property")
	}
}
