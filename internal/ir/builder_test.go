package ir_test

import (
	"testing"

	"github.com/devbrain/datascript/internal/desugar"
	"github.com/devbrain/datascript/internal/diag"
	"github.com/devbrain/datascript/internal/ir"
	"github.com/devbrain/datascript/internal/lexer"
	"github.com/devbrain/datascript/internal/loader"
	"github.com/devbrain/datascript/internal/parser"
	"github.com/devbrain/datascript/internal/semantic"
)

func buildBundle(t *testing.T, src string) (*ir.Bundle, *semantic.Context) {
	t.Helper()
	report := diag.NewReport()
	l := lexer.New("main.ds", src)
	p := parser.New("main.ds", l, report)
	m := p.ParseModule()
	m.File = "main.ds"
	if report.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", report.All())
	}
	desugar.Module(m)

	set := &loader.ModuleSet{
		Main:         loader.LoadedModule{FilePath: m.File, PackageName: m.PackageName(), Module: m},
		PackageIndex: make(map[string]int),
	}
	ctx := semantic.NewContext(set, diag.NewReport())
	semantic.NewPassManager(semantic.StandardPasses()...).RunAll(ctx)
	if ctx.Report.HasErrors() {
		t.Fatalf("unexpected analysis errors: %v", ctx.Report.All())
	}

	b, err := ir.Build(ctx)
	if err != nil {
		t.Fatalf("ir.Build: %v", err)
	}
	return b, ctx
}

// buildBundleAllowErrors mirrors buildBundle but proceeds even when the
// analysis reported errors, so a test can inspect the resulting partial
// bundle instead of treating every diagnostic as a test failure.
func buildBundleAllowErrors(t *testing.T, src string) (*ir.Bundle, *semantic.Context) {
	t.Helper()
	report := diag.NewReport()
	l := lexer.New("main.ds", src)
	p := parser.New("main.ds", l, report)
	m := p.ParseModule()
	m.File = "main.ds"
	if report.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", report.All())
	}
	desugar.Module(m)

	set := &loader.ModuleSet{
		Main:         loader.LoadedModule{FilePath: m.File, PackageName: m.PackageName(), Module: m},
		PackageIndex: make(map[string]int),
	}
	ctx := semantic.NewContext(set, diag.NewReport())
	semantic.NewPassManager(semantic.StandardPasses()...).RunAll(ctx)

	b, err := ir.Build(ctx)
	if err != nil {
		t.Fatalf("ir.Build: %v", err)
	}
	return b, ctx
}

func TestBuildPoisonedConstantOnOverflow(t *testing.T) {
	src := `
const uint64 Max = 9223372036854775807 + 1;
struct S {
	uint32 x;
};
`
	b, ctx := buildBundleAllowErrors(t, src)
	if !ctx.Report.HasErrors() {
		t.Fatal("expected the overflowing constant to report an error")
	}
	var maxEnt, sEnt *ir.Entity
	for _, e := range b.Entities {
		switch e.Name {
		case "Max":
			maxEnt = e
		case "S":
			sEnt = e
		}
	}
	if maxEnt == nil || !maxEnt.Constant.Poisoned {
		t.Fatalf("expected Max to be a poisoned constant entity, got %+v", maxEnt)
	}
	if sEnt == nil {
		t.Fatal("expected S to still be built even though an earlier constant was poisoned")
	}
}

func TestBuildSimpleStruct(t *testing.T) {
	src := `
const uint32 MaxLen = 16;
struct Header {
	uint32 magic;
	uint8 payload[MaxLen];
};
`
	b, _ := buildBundle(t, src)
	if len(b.Entities) != 2 {
		t.Fatalf("expected 2 entities (constant + struct), got %d", len(b.Entities))
	}
	var header *ir.Entity
	for _, e := range b.Entities {
		if e.Kind == ir.EntStruct && e.Name == "Header" {
			header = e
		}
	}
	if header == nil {
		t.Fatal("expected a Header struct entity")
	}
	if len(header.Struct.Body) != 2 {
		t.Fatalf("expected 2 body entries, got %d", len(header.Struct.Body))
	}
	magic := header.Struct.Body[0].Field
	if magic.Name != "magic" || magic.Offset != 0 {
		t.Errorf("magic = %+v, want offset 0", magic)
	}
	payload := header.Struct.Body[1].Field
	if payload.Type.Kind != ir.RefArray || payload.Type.Size.Kind != ir.ExprConstRef {
		t.Errorf("payload.Type = %+v, want array sized by a const ref", payload.Type)
	}
}

func TestBuildEntityRefBetweenStructs(t *testing.T) {
	src := `
struct Point {
	uint32 x;
	uint32 y;
};
struct Line {
	Point start;
	Point end;
};
`
	b, _ := buildBundle(t, src)
	var line *ir.Entity
	var pointIndex int
	for i, e := range b.Entities {
		if e.Name == "Point" {
			pointIndex = i
		}
		if e.Name == "Line" {
			line = e
		}
	}
	if line == nil {
		t.Fatal("expected a Line entity")
	}
	start := line.Struct.Body[0].Field
	if start.Type.Kind != ir.RefEntity || start.Type.EntityIndex != pointIndex {
		t.Errorf("start.Type = %+v, want entity ref to Point (index %d)", start.Type, pointIndex)
	}
}

func TestBuildEnumAutoIncrement(t *testing.T) {
	src := `
enum Color : uint8 {
	Red,
	Green = 5,
	Blue
};
`
	b, _ := buildBundle(t, src)
	var colorEnt *ir.Entity
	for _, e := range b.Entities {
		if e.Kind == ir.EntEnum {
			colorEnt = e
		}
	}
	if colorEnt == nil {
		t.Fatal("expected an enum entity")
	}
	want := map[string]uint64{"Red": 0, "Green": 5, "Blue": 6}
	for _, item := range colorEnt.Enum.Items {
		if item.Value != want[item.Name] {
			t.Errorf("%s = %d, want %d", item.Name, item.Value, want[item.Name])
		}
	}
}

func TestBuildFieldGuardRebindsToFieldRef(t *testing.T) {
	src := `
struct S {
	bool hasExtra;
	uint32 extra if hasExtra;
};
`
	b, _ := buildBundle(t, src)
	var s *ir.Entity
	for _, e := range b.Entities {
		if e.Kind == ir.EntStruct {
			s = e
		}
	}
	extra := s.Struct.Body[1].Field
	if extra.Guard == nil || extra.Guard.Kind != ir.ExprFieldRef || extra.Guard.FieldName != "hasExtra" {
		t.Errorf("extra.Guard = %+v, want a field_ref to hasExtra", extra.Guard)
	}
}
