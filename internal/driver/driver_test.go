package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rohitverma007/utap/internal/diagnostic"
)

const validModel = `
clock x;
int n;
chan c;

process P(const int id) {
    state s0 { x <= 10 }, s1;
    init s0;
    trans s0 -> s1 { guard x >= 2; sync c!; assign x = 0, n = id; },
          s1 -> s0 { sync c?; };
}

P1 = P(1);
P2 = P(2);
system P1, P2;
`

func TestParseXTABuffer(t *testing.T) {
	diag := diagnostic.New()
	sys, ok := ParseXTABuffer(validModel, true, diag)

	if !ok {
		t.Fatalf("expected a clean model, got:\n%s", diag.Format("test"))
	}
	if sys == nil || len(sys.Templates) != 1 || len(sys.Instances) != 2 {
		t.Errorf("unexpected system shape")
	}
}

func TestParseXTABufferReportsErrors(t *testing.T) {
	source := `
clock x;
urgent chan c;

process P() {
    state s0, s1;
    init s0;
    trans s0 -> s1 { guard x >= 5; sync c!; };
}

P1 = P();
system P1;
`
	diag := diagnostic.New()
	_, ok := ParseXTABuffer(source, true, diag)

	if ok {
		t.Fatal("expected the check to fail")
	}
	if !strings.Contains(diag.Format("test"), "urgent transitions") {
		t.Errorf("expected the urgent clock guard error, got:\n%s", diag.Format("test"))
	}
}

func TestParseXTAFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.xta")
	if err := os.WriteFile(path, []byte(validModel), 0644); err != nil {
		t.Fatal(err)
	}

	diag := diagnostic.New()
	_, ok := ParseXTAFile(path, true, diag)
	if !ok {
		t.Fatalf("expected a clean model, got:\n%s", diag.Format(path))
	}
}

func TestParseXTAFileMissing(t *testing.T) {
	diag := diagnostic.New()
	_, ok := ParseXTAFile(filepath.Join(t.TempDir(), "nope.xta"), true, diag)
	if ok || !diag.HasErrors() {
		t.Fatal("expected an error for a missing file")
	}
}

func TestParseQueriesBuffer(t *testing.T) {
	diag := diagnostic.New()
	sys, ok := ParseXTABuffer(validModel, true, diag)
	if !ok {
		t.Fatalf("model: %s", diag.Format("test"))
	}

	if !ParseQueriesBuffer("A[] x <= 10\nE<> n == 2", sys, true, diag) {
		t.Fatalf("expected clean queries, got:\n%s", diag.Format("test"))
	}
	if len(sys.Properties) != 2 {
		t.Errorf("expected two properties, got %d", len(sys.Properties))
	}

	if ParseQueriesBuffer("A[] n = 2", sys, true, diag) {
		t.Error("expected the side-effecting query to fail")
	}
}

const xmlModel = `<?xml version="1.0" encoding="utf-8"?>
<nta>
  <declaration>
clock x;
int n;
chan c;
  </declaration>
  <template>
    <name>P</name>
    <parameter>const int id</parameter>
    <declaration>clock z;</declaration>
    <location id="id0">
      <name>s0</name>
      <label kind="invariant">z &lt;= 10</label>
    </location>
    <location id="id1">
      <name>s1</name>
    </location>
    <init ref="id0"/>
    <transition>
      <source ref="id0"/>
      <target ref="id1"/>
      <label kind="guard">z &gt;= 2</label>
      <label kind="synchronisation">c!</label>
      <label kind="assignment">z = 0, n = id</label>
    </transition>
  </template>
  <instantiation>P1 = P(1);</instantiation>
  <system>system P1;</system>
  <queries>
    <query><formula>A[] x &lt;= 100</formula></query>
  </queries>
</nta>
`

func TestParseXMLBuffer(t *testing.T) {
	diag := diagnostic.New()
	sys, ok := ParseXMLBuffer(xmlModel, true, diag)

	if !ok {
		t.Fatalf("expected a clean model, got:\n%s", diag.Format("test"))
	}
	if sys == nil || len(sys.Templates) != 1 {
		t.Fatalf("unexpected system shape")
	}

	tpl := sys.Templates[0]
	if len(tpl.States) != 2 || tpl.States[0].Invariant == nil {
		t.Errorf("expected two states with an invariant on the first")
	}
	if len(tpl.Transitions) != 1 || tpl.Transitions[0].Sync == nil {
		t.Errorf("expected one synchronising transition")
	}
	if len(sys.Properties) != 1 {
		t.Errorf("expected the embedded query to be parsed, got %d", len(sys.Properties))
	}
}

func TestParseXMLBufferInvalidDocument(t *testing.T) {
	diag := diagnostic.New()
	_, ok := ParseXMLBuffer("<nta><unclosed>", true, diag)
	if ok || !diag.HasErrors() {
		t.Fatal("expected an error for an invalid document")
	}
}

func TestParseXMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.xml")
	if err := os.WriteFile(path, []byte(xmlModel), 0644); err != nil {
		t.Fatal(err)
	}

	diag := diagnostic.New()
	_, ok := ParseXMLFile(path, true, diag)
	if !ok {
		t.Fatalf("expected a clean model, got:\n%s", diag.Format(path))
	}
}
