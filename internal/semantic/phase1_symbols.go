package semantic

import (
	"fmt"
	"strings"

	"github.com/devbrain/datascript/internal/diag"
	"github.com/devbrain/datascript/internal/keywords"
)

// Phase1Symbols collects each module's top-level declarations into a
// SymbolTable, reports every redefinition as E_DUPLICATE_DEFINITION with a
// related-location pointer at the first definition, and warns when a
// declared name collides with a reserved word of any registered
// code-generation target language. A non-empty Context.TargetLanguage that
// names no registered language is reported as E_UNKNOWN_TARGET_LANGUAGE.
type Phase1Symbols struct{}

func (Phase1Symbols) Name() string { return "symbols" }

func (p Phase1Symbols) Run(ctx *Context) {
	if ctx.TargetLanguage != "" && !ctx.Keywords.IsKnownLanguage(ctx.TargetLanguage) {
		ctx.Report.Add(diag.Diagnostic{Level: diag.Error, Code: diag.EUnknownTargetLanguage,
			Message: fmt.Sprintf("unknown target language %q; known languages: %s",
				ctx.TargetLanguage, strings.Join(ctx.Keywords.KnownLanguages(), ", "))})
	}
	for _, lm := range ctx.AllModules() {
		table, dups := CollectModuleSymbols(lm.Module)
		ctx.Symbols[lm.FilePath] = table

		for _, d := range dups {
			ctx.Report.ErrorWithRelated(
				diag.EDuplicateDefinition,
				d.New.Decl.Pos(),
				fmt.Sprintf("%q is already defined as a %s", d.New.Name, d.Prev.Kind),
				d.Prev.Decl.Pos(),
				fmt.Sprintf("previous definition of %q here", d.Prev.Name),
			)
		}

		for _, sym := range table.All() {
			p.checkKeywordCollision(ctx, sym)
		}
	}
}

func (Phase1Symbols) checkKeywordCollision(ctx *Context, sym *Symbol) {
	langs := ctx.Keywords.CollidingLanguages(sym.Name)
	if len(langs) == 0 {
		return
	}
	ctx.Report.WarnWithSuggestion(
		diag.WKeywordCollision,
		sym.Decl.Pos(),
		fmt.Sprintf("%q collides with a reserved word in: %s", sym.Name, strings.Join(langs, ", ")),
		"rename to "+keywords.SanitizedSuggestion(sym.Name),
	)
}
