package semantic

import (
	"path/filepath"
	"strings"

	"github.com/devbrain/datascript/internal/ast"
	"github.com/devbrain/datascript/internal/diag"
	"github.com/devbrain/datascript/internal/loader"
)

// Phase2Resolve binds every type reference (QualifiedName, possibly
// wrapped in a TypeInstantiation) found in parameter, field, subtype,
// typedef, enum-base, and choice-discriminator position to the
// declaration it names, recording the binding in ctx.Resolved and
// checking parameterized-type arity.
type Phase2Resolve struct{}

func (Phase2Resolve) Name() string { return "resolve" }

func (p Phase2Resolve) Run(ctx *Context) {
	for _, lm := range ctx.AllModules() {
		local := ctx.Symbols[lm.FilePath]
		overlay := wildcardOverlay(ctx, lm)
		r := &resolver{ctx: ctx, module: lm.Module, local: local, overlay: overlay}
		r.resolveModule()
	}
}

// wildcardOverlay collects, for every `import a.b.*` in lm's module, the
// symbol tables of every loaded module whose file lives under the
// directory named by the import's dotted path, keyed by declared name so
// conflicts across more than one source module can be detected. Shared
// by Phase 2 (type references) and Phase 4 (bare identifiers naming
// constants brought in by a wildcard import).
func wildcardOverlay(ctx *Context, lm loader.LoadedModule) map[string][]*Symbol {
	overlay := make(map[string][]*Symbol)
	for _, imp := range lm.Module.Imports {
		if !imp.IsWildcard {
			continue
		}
		dir := filepath.Join(imp.Parts...)
		for _, other := range ctx.Set.Imported {
			if other.FilePath == lm.FilePath {
				continue
			}
			if !strings.HasSuffix(filepath.ToSlash(filepath.Dir(other.FilePath)), filepath.ToSlash(dir)) {
				continue
			}
			table := ctx.Symbols[other.FilePath]
			if table == nil {
				continue
			}
			for _, sym := range table.All() {
				overlay[sym.Name] = append(overlay[sym.Name], sym)
			}
		}
	}
	return overlay
}

type resolver struct {
	ctx     *Context
	module  *ast.Module
	local   *SymbolTable
	overlay map[string][]*Symbol
}

func (r *resolver) resolveModule() {
	for _, c := range r.module.Constants {
		r.resolveType(c.Type)
	}
	for _, s := range r.module.Subtypes {
		r.resolveType(s.Base)
	}
	for _, c := range r.module.Constraints {
		r.resolveParams(c.Params)
	}
	for _, a := range r.module.TypeAliases {
		r.resolveType(a.Target)
	}
	for _, e := range r.module.Enums {
		if e.Base != nil {
			r.resolveType(e.Base)
		}
	}
	for _, s := range r.module.Structs {
		r.resolveParams(s.Params)
		r.resolveBody(s.Body)
	}
	for _, u := range r.module.Unions {
		r.resolveParams(u.Params)
		for _, c := range u.Cases {
			r.resolveBody(c.Items)
		}
	}
	for _, c := range r.module.Choices {
		r.resolveParams(c.Params)
		if c.DiscriminatorType != nil {
			r.resolveType(c.DiscriminatorType)
		}
		for _, cc := range c.Cases {
			r.resolveBody(cc.Items)
		}
	}
}

func (r *resolver) resolveParams(params []*ast.Param) {
	for _, p := range params {
		r.resolveType(p.Type)
	}
}

func (r *resolver) resolveBody(body []ast.BodyItem) {
	for _, item := range body {
		if fd, ok := item.(*ast.FieldDef); ok {
			r.resolveType(fd.Type)
		}
	}
}

// resolveType walks a type node, recursing into array element types and
// resolving the first user-defined type name it finds.
func (r *resolver) resolveType(t ast.TypeNode) {
	switch n := t.(type) {
	case *ast.ArrayType:
		r.resolveType(n.Element)
	case *ast.QualifiedName:
		r.resolveName(n, n, nil)
	case *ast.TypeInstantiation:
		r.resolveName(n, n.Base, n.Args)
	}
}

func (r *resolver) resolveName(site ast.Node, qn *ast.QualifiedName, args []ast.Expr) {
	var sym *Symbol
	if len(qn.Parts) == 1 {
		sym = r.resolveSingleSegment(site, qn)
	} else {
		sym = r.resolveQualified(site, qn)
	}
	if sym == nil {
		return
	}
	r.ctx.Resolved[site] = sym
	r.checkArity(site, sym, args)
}

func (r *resolver) resolveSingleSegment(site ast.Node, qn *ast.QualifiedName) *Symbol {
	name := qn.Parts[0]
	if sym, ok := r.local.Lookup(name); ok {
		return sym
	}
	candidates := r.overlay[name]
	if len(candidates) == 0 {
		r.ctx.Report.Errorf(diag.EUndefinedType, site.Pos(), "undefined type %q", name)
		return nil
	}
	if len(candidates) > 1 {
		r.ctx.Report.Warnf(diag.WWildcardConflict, site.Pos(),
			"%q is brought in by more than one wildcard import; using the first", name)
	}
	return candidates[0]
}

func (r *resolver) resolveQualified(site ast.Node, qn *ast.QualifiedName) *Symbol {
	pkg := strings.Join(qn.Parts[:len(qn.Parts)-1], ".")
	typeName := qn.Parts[len(qn.Parts)-1]

	idx, ok := r.ctx.Set.PackageIndex[pkg]
	if !ok {
		r.ctx.Report.Errorf(diag.EUndefinedPackage, site.Pos(), "undefined package %q", pkg)
		return nil
	}
	target := r.ctx.Set.Imported[idx]
	table := r.ctx.Symbols[target.FilePath]
	sym, ok := table.Lookup(typeName)
	if !ok {
		r.ctx.Report.Errorf(diag.EUndefinedType, site.Pos(), "undefined type %q in package %q", typeName, pkg)
		return nil
	}
	return sym
}

func (r *resolver) checkArity(site ast.Node, sym *Symbol, args []ast.Expr) {
	params := declParams(sym.Decl)
	if len(params) == 0 && len(args) == 0 {
		return
	}
	if len(args) != len(params) {
		r.ctx.Report.Errorf(diag.EParamCountMismatch, site.Pos(),
			"%q expects %d type argument(s), got %d", sym.Name, len(params), len(args))
	}
}

func declParams(decl ast.Decl) []*ast.Param {
	switch d := decl.(type) {
	case *ast.StructDecl:
		return d.Params
	case *ast.UnionDecl:
		return d.Params
	case *ast.ChoiceDecl:
		return d.Params
	case *ast.ConstraintDecl:
		return d.Params
	}
	return nil
}
