package semantic

import (
	"github.com/devbrain/datascript/internal/ast"
	"github.com/devbrain/datascript/internal/diag"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Phase6Constraints re-walks every boolean-typed guard and condition
// already evaluated by Phase 4 and warns when the value is statically
// decidable: an always-true guard never excludes a reading, and an
// always-false one marks dead input it will never match. Neither case is
// rejected; this phase only reports.
type Phase6Constraints struct{}

func (Phase6Constraints) Name() string { return "constraints" }

func (Phase6Constraints) Run(ctx *Context) {
	for _, lm := range ctx.AllModules() {
		checkModuleConstraints(ctx, lm.Module)
	}
}

func checkModuleConstraints(ctx *Context, m *ast.Module) {
	for _, c := range m.Constraints {
		reportIfDecidable(ctx, c.Condition)
	}
	for _, s := range m.Subtypes {
		reportIfDecidable(ctx, s.Constraint)
	}
	for _, s := range m.Structs {
		checkBodyConstraints(ctx, s.Body)
	}
	for _, u := range m.Unions {
		for _, c := range u.Cases {
			reportIfDecidable(ctx, c.Condition)
			checkBodyConstraints(ctx, c.Items)
		}
	}
	for _, c := range m.Choices {
		for _, cc := range c.Cases {
			checkBodyConstraints(ctx, cc.Items)
		}
	}
}

func checkBodyConstraints(ctx *Context, body []ast.BodyItem) {
	for _, item := range body {
		if fd, ok := item.(*ast.FieldDef); ok {
			reportIfDecidable(ctx, fd.Guard)
			reportIfDecidable(ctx, fd.Constraint)
			checkDefaultEncodable(ctx, fd)
		}
	}
}

// checkDefaultEncodable rejects a string field's default value when it
// cannot round-trip through the field's declared width. UTF-8 never
// fails this; UTF-16 fails only on lone surrogates, which a parsed
// string literal cannot contain, so this mainly guards against a
// future literal source (e.g. an imported constant) that can.
func checkDefaultEncodable(ctx *Context, fd *ast.FieldDef) {
	lit, ok := fd.Default.(*ast.StringLiteral)
	if !ok {
		return
	}
	st, ok := fd.Type.(*ast.StringType)
	if !ok || st.Width != ast.StringUTF16 {
		return
	}
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	if st.ByteOrder == ast.EndianBig {
		enc = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	}
	if _, _, err := transform.String(enc.NewEncoder(), lit.Value); err != nil {
		ctx.Report.Errorf(diag.EDefaultNotEncodable, lit.Pos(),
			"default value %q for field %q is not representable in its declared encoding", lit.Value, fd.Name)
	}
}

func reportIfDecidable(ctx *Context, e ast.Expr) {
	if e == nil {
		return
	}
	v, ok := ctx.ConstValues[e]
	if !ok || !v.IsBool {
		return
	}
	if v.Bool {
		ctx.Report.Warnf(diag.WAlwaysTrue, e.Pos(), "condition is always true")
	} else {
		ctx.Report.Warnf(diag.WAlwaysFalse, e.Pos(), "condition is always false")
	}
}
