package parser

import (
	"testing"

	"github.com/devbrain/datascript/internal/ast"
	"github.com/devbrain/datascript/internal/diag"
	"github.com/devbrain/datascript/internal/lexer"
)

func parseModule(t *testing.T, src string) (*ast.Module, *diag.Report) {
	t.Helper()
	l := lexer.New("test.ds", src, lexer.WithPreserveComments(true))
	report := diag.NewReport()
	p := New("test.ds", l, report)
	m := p.ParseModule()
	return m, report
}

func requireNoErrors(t *testing.T, report *diag.Report) {
	t.Helper()
	if report.HasErrors() {
		for _, d := range report.All() {
			t.Errorf("unexpected diagnostic: %s", d.String())
		}
	}
}

func TestParsePackageAndImports(t *testing.T) {
	src := `
package a.b.c;
import foo.bar;
import foo.baz.*;
`
	m, report := parseModule(t, src)
	requireNoErrors(t, report)
	if got := m.PackageName(); got != "a.b.c" {
		t.Errorf("package name = %q", got)
	}
	if len(m.Imports) != 2 {
		t.Fatalf("expected 2 imports, got %d", len(m.Imports))
	}
	if !m.Imports[1].IsWildcard {
		t.Error("expected second import to be wildcard")
	}
}

func TestParseConstant(t *testing.T) {
	src := `const uint32 kMax = 1 + 2 * 3;`
	m, report := parseModule(t, src)
	requireNoErrors(t, report)
	if len(m.Constants) != 1 {
		t.Fatalf("expected 1 constant, got %d", len(m.Constants))
	}
	c := m.Constants[0]
	if c.Name != "kMax" {
		t.Errorf("name = %q", c.Name)
	}
	bin, ok := c.Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected top-level BinaryExpr (lowest precedence = +), got %T", c.Value)
	}
	if bin.Op != ast.BinAdd {
		t.Errorf("expected + at top, got %v (precedence climbing is broken)", bin.Op)
	}
	rhs, ok := bin.Right.(*ast.BinaryExpr)
	if !ok || rhs.Op != ast.BinMul {
		t.Errorf("expected 2*3 nested on the right, got %#v", bin.Right)
	}
}

func TestParseEnumAndBitmask(t *testing.T) {
	src := `
enum Color : uint8 { Red, Green = 5, Blue };
bitmask Flags : uint16 { A = 1, B = 2 };
`
	m, report := parseModule(t, src)
	requireNoErrors(t, report)
	if len(m.Enums) != 2 {
		t.Fatalf("expected 2 enums, got %d", len(m.Enums))
	}
	if m.Enums[0].IsBitmask {
		t.Error("enum should not be a bitmask")
	}
	if !m.Enums[1].IsBitmask {
		t.Error("bitmask should be IsBitmask")
	}
	if len(m.Enums[0].Items) != 3 {
		t.Fatalf("expected 3 enum items, got %d", len(m.Enums[0].Items))
	}
	if m.Enums[0].Items[1].Value == nil {
		t.Error("Green should have an explicit value")
	}
}

func TestParseStructFields(t *testing.T) {
	src := `
struct Header {
	uint32 magic;
	little uint16 version;
	string name;
	uint8 payload[length];
	align(4):
	uint8 checksum if version > 1 : checksum != 0;
};
`
	m, report := parseModule(t, src)
	requireNoErrors(t, report)
	if len(m.Structs) != 1 {
		t.Fatalf("expected 1 struct, got %d", len(m.Structs))
	}
	body := m.Structs[0].Body
	if len(body) != 6 {
		t.Fatalf("expected 6 body items, got %d", len(body))
	}
	arr, ok := body[3].(*ast.FieldDef)
	if !ok {
		t.Fatalf("expected FieldDef, got %T", body[3])
	}
	at, ok := arr.Type.(*ast.ArrayType)
	if !ok || at.Sizing != ast.ArrayFixed {
		t.Errorf("expected fixed-size array type, got %#v", arr.Type)
	}
	if _, ok := body[4].(*ast.AlignDirective); !ok {
		t.Errorf("expected AlignDirective, got %T", body[4])
	}
}

func TestParseUnionWithAnonymousCase(t *testing.T) {
	src := `
union Payload {
	uint32 asInt;
	{ uint16 lo; uint16 hi; } asPair;
};
`
	m, report := parseModule(t, src)
	requireNoErrors(t, report)
	if len(m.Unions) != 1 || len(m.Unions[0].Cases) != 2 {
		t.Fatalf("unexpected union shape: %#v", m.Unions)
	}
	if m.Unions[0].Cases[0].IsAnonymous {
		t.Error("first case should not be anonymous")
	}
	if !m.Unions[0].Cases[1].IsAnonymous {
		t.Error("second case should be anonymous")
	}
}

func TestParseChoiceSelectorKinds(t *testing.T) {
	src := `
choice Message on kind {
	case 1, 2: uint32 small;
	case >= 100: uint64 big;
	default: { uint8 raw[]; } unknown;
};
`
	m, report := parseModule(t, src)
	requireNoErrors(t, report)
	if len(m.Choices) != 1 {
		t.Fatalf("expected 1 choice, got %d", len(m.Choices))
	}
	cd := m.Choices[0]
	if cd.Selector == nil || cd.DiscriminatorType != nil {
		t.Error("expected selector-expr form, not discriminator type")
	}
	if len(cd.Cases) != 3 {
		t.Fatalf("expected 3 cases, got %d", len(cd.Cases))
	}
	if cd.Cases[0].Kind != ast.SelectorExact || len(cd.Cases[0].Exprs) != 2 {
		t.Errorf("case 0 selector wrong: %#v", cd.Cases[0])
	}
	if cd.Cases[1].Kind != ast.SelectorGE || cd.Cases[1].RangeBound == nil {
		t.Errorf("case 1 selector wrong: %#v", cd.Cases[1])
	}
	if !cd.Cases[2].IsDefault || !cd.Cases[2].IsAnonymous {
		t.Errorf("case 2 should be an anonymous default: %#v", cd.Cases[2])
	}
}

func TestParseChoiceWithDiscriminatorType(t *testing.T) {
	src := `
choice Tagged : uint8 {
	case 0: uint32 a;
	default: uint32 b;
};
`
	m, report := parseModule(t, src)
	requireNoErrors(t, report)
	cd := m.Choices[0]
	if cd.DiscriminatorType == nil || cd.Selector != nil {
		t.Error("expected discriminator-type form, not selector expr")
	}
}

func TestParseTernaryAndFieldAccessPrecedence(t *testing.T) {
	src := `const uint32 k = a.b ? c[0] : d(1, 2);`
	m, report := parseModule(t, src)
	requireNoErrors(t, report)
	tern, ok := m.Constants[0].Value.(*ast.TernaryExpr)
	if !ok {
		t.Fatalf("expected TernaryExpr, got %T", m.Constants[0].Value)
	}
	if _, ok := tern.Condition.(*ast.FieldAccessExpr); !ok {
		t.Errorf("expected field access as condition, got %T", tern.Condition)
	}
	if _, ok := tern.Then.(*ast.IndexExpr); !ok {
		t.Errorf("expected index expr as then-branch, got %T", tern.Then)
	}
	call, ok := tern.Else.(*ast.CallExpr)
	if !ok || len(call.Args) != 2 {
		t.Errorf("expected 2-arg call as else-branch, got %#v", tern.Else)
	}
}

func TestParseTypeInstantiationAndArraySizing(t *testing.T) {
	src := `
struct S {
	Record(16) fixedParam;
	uint8 ranged[1..10];
	uint8 unsized[];
};
`
	m, report := parseModule(t, src)
	requireNoErrors(t, report)
	body := m.Structs[0].Body
	f0 := body[0].(*ast.FieldDef)
	if _, ok := f0.Type.(*ast.TypeInstantiation); !ok {
		t.Errorf("expected TypeInstantiation, got %T", f0.Type)
	}
	f1 := body[1].(*ast.FieldDef)
	at1 := f1.Type.(*ast.ArrayType)
	if at1.Sizing != ast.ArrayRanged || at1.Min == nil || at1.Max == nil {
		t.Errorf("expected ranged array with min+max, got %#v", at1)
	}
	f2 := body[2].(*ast.FieldDef)
	at2 := f2.Type.(*ast.ArrayType)
	if at2.Sizing != ast.ArrayUnsized {
		t.Errorf("expected unsized array, got %#v", at2)
	}
}

func TestParseDocComment(t *testing.T) {
	src := `
/** Describes a frame header. */
struct Header {
	uint32 magic;
};
`
	m, report := parseModule(t, src)
	requireNoErrors(t, report)
	if m.Structs[0].Doc != "Describes a frame header." {
		t.Errorf("doc = %q", m.Structs[0].Doc)
	}
}

func TestUnexpectedTokenRecordsDiagnosticNotPanic(t *testing.T) {
	src := `struct S { @@@ };`
	_, report := parseModule(t, src)
	if !report.HasErrors() {
		t.Error("expected a diagnostic for the malformed field")
	}
}
