package semantic

import (
	"testing"

	"github.com/devbrain/datascript/internal/ast"
	"github.com/devbrain/datascript/internal/desugar"
	"github.com/devbrain/datascript/internal/diag"
	"github.com/devbrain/datascript/internal/lexer"
	"github.com/devbrain/datascript/internal/loader"
	"github.com/devbrain/datascript/internal/parser"
)

func parseModule(t *testing.T, file, src string) *ast.Module {
	t.Helper()
	report := diag.NewReport()
	l := lexer.New(file, src)
	p := parser.New(file, l, report)
	m := p.ParseModule()
	m.File = file
	if report.HasErrors() {
		t.Fatalf("unexpected parse errors for %s: %v", file, report.All())
	}
	return m
}

func analyze(t *testing.T, main *ast.Module, imported ...*ast.Module) *Context {
	t.Helper()
	desugar.Module(main)
	for _, m := range imported {
		desugar.Module(m)
	}

	set := &loader.ModuleSet{
		Main:         loader.LoadedModule{FilePath: main.File, PackageName: main.PackageName(), Module: main},
		PackageIndex: make(map[string]int),
	}
	for i, m := range imported {
		set.Imported = append(set.Imported, loader.LoadedModule{FilePath: m.File, PackageName: m.PackageName(), Module: m})
		if m.PackageName() != "" {
			set.PackageIndex[m.PackageName()] = i
		}
	}

	report := diag.NewReport()
	ctx := NewContext(set, report)
	NewPassManager(StandardPasses()...).RunAll(ctx)
	return ctx
}

func TestAnalyzeValidStructPasses(t *testing.T) {
	src := `
struct Header {
	uint32 magic;
	uint16 version;
	uint8 payload[16];
};
`
	m := parseModule(t, "main.ds", src)
	ctx := analyze(t, m)
	if ctx.Report.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Report.All())
	}
}

func TestAnalyzeDuplicateDefinition(t *testing.T) {
	src := `
const uint32 Size = 4;
const uint32 Size = 8;
`
	m := parseModule(t, "main.ds", src)
	ctx := analyze(t, m)
	assertHasCode(t, ctx.Report, diag.EDuplicateDefinition)
}

func TestAnalyzeKeywordCollisionWarning(t *testing.T) {
	src := `
struct class {
	uint8 x;
};
`
	m := parseModule(t, "main.ds", src)
	ctx := analyze(t, m)
	assertHasCode(t, ctx.Report, diag.WKeywordCollision)
}

func TestAnalyzeUndefinedType(t *testing.T) {
	src := `
struct Outer {
	Missing field;
};
`
	m := parseModule(t, "main.ds", src)
	ctx := analyze(t, m)
	assertHasCode(t, ctx.Report, diag.EUndefinedType)
}

func TestAnalyzeTypeMismatchInGuard(t *testing.T) {
	src := `
struct S {
	uint32 n;
	uint8 flag if n;
};
`
	m := parseModule(t, "main.ds", src)
	ctx := analyze(t, m)
	assertHasCode(t, ctx.Report, diag.ETypeMismatch)
}

func TestAnalyzeCircularConstant(t *testing.T) {
	src := `
const uint32 A = B;
const uint32 B = A;
`
	m := parseModule(t, "main.ds", src)
	ctx := analyze(t, m)
	assertHasCode(t, ctx.Report, diag.ECircularConstant)
}

func TestAnalyzeOverflow(t *testing.T) {
	src := `
const uint64 Max = 9223372036854775807 + 1;
`
	m := parseModule(t, "main.ds", src)
	ctx := analyze(t, m)
	assertHasCode(t, ctx.Report, diag.EOverflow)
}

func TestAnalyzeOverflowMinInt64TimesNegOne(t *testing.T) {
	src := `
const int64 MinVal = -9223372036854775807 - 1;
const int64 Y = -1;
const int64 X = MinVal * Y;
`
	m := parseModule(t, "main.ds", src)
	ctx := analyze(t, m)
	assertHasCode(t, ctx.Report, diag.EOverflow)
}

func TestRunAllContinuesAfterEarlierPhaseError(t *testing.T) {
	src := `
const uint32 A = A;

struct Good {
	uint32 x;
};
`
	m := parseModule(t, "main.ds", src)
	ctx := analyze(t, m)
	assertHasCode(t, ctx.Report, diag.ECircularConstant)
	if _, ok := ctx.Layouts[m.Structs[0]]; !ok {
		t.Fatalf("Phase 5 never ran on Good: later phases were aborted by an earlier error")
	}
}

func TestAnalyzeAlwaysTrueCondition(t *testing.T) {
	src := `
struct S {
	uint8 x : 1 == 1;
};
`
	m := parseModule(t, "main.ds", src)
	ctx := analyze(t, m)
	assertHasCode(t, ctx.Report, diag.WAlwaysTrue)
}

func TestAnalyzeUnusedConstantWarning(t *testing.T) {
	src := `
const uint32 Unused = 42;
struct S {
	uint8 x;
};
`
	m := parseModule(t, "main.ds", src)
	ctx := analyze(t, m)
	assertHasCode(t, ctx.Report, diag.WUnusedConstant)
}

func TestAnalyzeEnumAutoIncrement(t *testing.T) {
	src := `
enum Color : uint8 {
	Red,
	Green = 5,
	Blue
};
`
	m := parseModule(t, "main.ds", src)
	ctx := analyze(t, m)
	if ctx.Report.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Report.All())
	}
	enum := m.Enums[0]
	want := map[string]int64{"Red": 0, "Green": 5, "Blue": 6}
	for _, item := range enum.Items {
		if got := ctx.EnumItemValues[item]; got != want[item.Name] {
			t.Errorf("%s = %d, want %d", item.Name, got, want[item.Name])
		}
	}
}

func TestAnalyzeStructLayout(t *testing.T) {
	src := `
struct Header {
	uint32 magic;
	uint8 flag;
	uint16 version;
};
`
	m := parseModule(t, "main.ds", src)
	ctx := analyze(t, m)
	if ctx.Report.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Report.All())
	}
	layout := ctx.Layouts[m.Structs[0]]
	if layout == nil {
		t.Fatal("expected a computed layout")
	}
	if layout.Fields[0].Offset != 0 {
		t.Errorf("magic offset = %d, want 0", layout.Fields[0].Offset)
	}
	if layout.Fields[1].Offset != 4 {
		t.Errorf("flag offset = %d, want 4", layout.Fields[1].Offset)
	}
	if layout.Fields[2].Offset != 6 {
		t.Errorf("version offset = %d, want 6 (aligned to 2)", layout.Fields[2].Offset)
	}
	if layout.Size.Size != 8 {
		t.Errorf("struct size = %d, want 8 (padded to 4-byte alignment)", layout.Size.Size)
	}
}

func assertHasCode(t *testing.T, report *diag.Report, code string) {
	t.Helper()
	for _, d := range report.All() {
		if d.Code == code {
			return
		}
	}
	t.Fatalf("expected a diagnostic with code %s, got: %v", code, report.All())
}
