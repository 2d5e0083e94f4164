package semantic

import (
	"github.com/devbrain/datascript/internal/ast"
	"github.com/devbrain/datascript/internal/diag"
	"github.com/devbrain/datascript/internal/keywords"
	"github.com/devbrain/datascript/internal/loader"
)

// Pass is one stage of semantic analysis over a whole module set. Passes
// run in a fixed order; each one reads and enriches the shared Context
// rather than mutating the AST's shape (Phase 0 desugaring is the only
// stage allowed to do that, and it runs before any Pass does).
type Pass interface {
	Name() string
	Run(ctx *Context)
}

// PassManager runs a fixed sequence of passes over a Context. Every pass
// runs to completion over every module regardless of what earlier passes
// reported: a pass that cannot make sense of some declaration marks it
// (poisoned constants, an absent Resolved/Types/Layouts entry) rather
// than aborting, and later passes skip what they find marked instead of
// assuming the whole Context is sound.
type PassManager struct {
	passes []Pass
}

// NewPassManager builds a manager running passes in the given order.
func NewPassManager(passes ...Pass) *PassManager {
	return &PassManager{passes: passes}
}

// RunAll executes every pass in order. Diagnostics accumulate across the
// whole run; an error from one pass never prevents the rest from running.
func (pm *PassManager) RunAll(ctx *Context) {
	for _, pass := range pm.passes {
		pass.Run(ctx)
	}
}

// Context is the shared state threaded through every pass: the loaded
// module set, a per-module symbol table, resolved type/size information
// built up phase by phase, and the diagnostic report every pass writes
// to.
type Context struct {
	Set      *loader.ModuleSet
	Report   *diag.Report
	Keywords *keywords.Registry

	// TargetLanguage, when non-empty, must name a language registered in
	// Keywords; Phase 1 reports E_UNKNOWN_TARGET_LANGUAGE otherwise.
	// Keyword-collision warnings cover every registered language whatever
	// its value.
	TargetLanguage string

	// Symbols maps each loaded module (by file path) to its own
	// top-level symbol table, populated by Phase 1.
	Symbols map[string]*SymbolTable

	// Resolved maps an *ast.QualifiedName or *ast.TypeInstantiation node (by
	// pointer identity) used in type position to the Symbol it resolves
	// to, populated by Phase 2.
	Resolved map[ast.Node]*Symbol

	// Types maps an expression node to its inferred Type, populated by
	// Phase 3.
	Types map[ast.Expr]Type

	// ConstValues maps a constant-evaluable expression node to its
	// evaluated integer or boolean value, populated by Phase 4.
	ConstValues map[ast.Expr]ConstValue

	// EnumItemValues maps an enum item to its resolved integer value
	// (explicit or auto-incremented), populated by Phase 4.
	EnumItemValues map[*ast.EnumItem]int64

	// Layouts maps a struct/union/choice declaration to its computed
	// size/layout record, populated by Phase 5.
	Layouts map[ast.Decl]*Layout

	// fieldTypeCache memoizes a struct's field-name -> Type map for
	// repeated field-access lookups in Phase 3.
	fieldTypeCache map[*ast.StructDecl]map[string]Type

	// reachable and used are populated by Phase 7.
	reachable map[ast.Decl]bool
	usedImports map[*ast.ImportDecl]bool
	usedConstants map[*ast.ConstantDecl]bool
}

// NewContext builds an empty Context over a loaded module set.
func NewContext(set *loader.ModuleSet, report *diag.Report) *Context {
	return &Context{
		Set:         set,
		Report:      report,
		Keywords:    keywords.Default(),
		Symbols:     make(map[string]*SymbolTable),
		Resolved:    make(map[ast.Node]*Symbol),
		Types:       make(map[ast.Expr]Type),
		ConstValues:    make(map[ast.Expr]ConstValue),
		EnumItemValues: make(map[*ast.EnumItem]int64),
		Layouts:        make(map[ast.Decl]*Layout),
		fieldTypeCache: make(map[*ast.StructDecl]map[string]Type),
		reachable:      make(map[ast.Decl]bool),
		usedImports:    make(map[*ast.ImportDecl]bool),
		usedConstants:  make(map[*ast.ConstantDecl]bool),
	}
}

// AllModules is a convenience pass-through to the module set's combined
// module list (main module first).
func (c *Context) AllModules() []loader.LoadedModule { return c.Set.AllModules() }

// IsReachable reports whether Phase 7 marked d as reachable from the main
// module.
func (c *Context) IsReachable(d ast.Decl) bool { return c.reachable[d] }

// StandardPasses returns the seven analysis passes in their required
// order.
func StandardPasses() []Pass {
	return []Pass{
		&Phase1Symbols{},
		&Phase2Resolve{},
		&Phase3Types{},
		&Phase4Constants{},
		&Phase5Layout{},
		&Phase6Constraints{},
		&Phase7Reachability{},
	}
}
