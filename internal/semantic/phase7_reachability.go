package semantic

import (
	"path/filepath"
	"strings"

	"github.com/devbrain/datascript/internal/ast"
	"github.com/devbrain/datascript/internal/diag"
)

// Phase7Reachability marks every declaration transitively reachable from
// the main module's own top-level definitions, then warns about imports
// that contributed nothing reachable and constants that Phase 4 never
// evaluated through a reference (only through their own definition).
type Phase7Reachability struct{}

func (Phase7Reachability) Name() string { return "reachability" }

func (Phase7Reachability) Run(ctx *Context) {
	markReachable(ctx)
	markUsedImports(ctx)
	reportUnused(ctx)
}

// markReachable walks every type reference starting from the main
// module's declarations, following Phase 2's Resolved bindings into
// whatever module they land in.
func markReachable(ctx *Context) {
	var stack []ast.Decl
	for _, c := range ctx.Set.Main.Module.Constants {
		ctx.reachable[c] = true
	}
	for _, d := range allTopLevelDecls(ctx.Set.Main.Module) {
		stack = append(stack, d)
	}

	visited := make(map[ast.Decl]bool)
	for len(stack) > 0 {
		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[d] {
			continue
		}
		visited[d] = true
		ctx.reachable[d] = true

		for _, ref := range typeRefsIn(d) {
			sym, ok := ctx.Resolved[ref]
			if !ok {
				continue
			}
			stack = append(stack, sym.Decl)
		}
	}
}

func allTopLevelDecls(m *ast.Module) []ast.Decl {
	var out []ast.Decl
	for _, c := range m.Constants {
		out = append(out, c)
	}
	for _, s := range m.Subtypes {
		out = append(out, s)
	}
	for _, c := range m.Constraints {
		out = append(out, c)
	}
	for _, a := range m.TypeAliases {
		out = append(out, a)
	}
	for _, e := range m.Enums {
		out = append(out, e)
	}
	for _, s := range m.Structs {
		out = append(out, s)
	}
	for _, u := range m.Unions {
		out = append(out, u)
	}
	for _, c := range m.Choices {
		out = append(out, c)
	}
	return out
}

// typeRefsIn collects every *ast.QualifiedName / *ast.TypeInstantiation
// appearing in d's type positions, as recorded by Phase 2's resolver.
func typeRefsIn(d ast.Decl) []ast.Node {
	var refs []ast.Node
	collect := func(t ast.TypeNode) {
		for t != nil {
			switch n := t.(type) {
			case *ast.ArrayType:
				t = n.Element
				continue
			case *ast.QualifiedName:
				refs = append(refs, n)
			case *ast.TypeInstantiation:
				refs = append(refs, n)
			}
			break
		}
	}
	collectBody := func(body []ast.BodyItem) {
		for _, item := range body {
			if fd, ok := item.(*ast.FieldDef); ok {
				collect(fd.Type)
			}
		}
	}

	switch n := d.(type) {
	case *ast.ConstantDecl:
		collect(n.Type)
	case *ast.SubtypeDecl:
		collect(n.Base)
	case *ast.TypeAliasDecl:
		collect(n.Target)
	case *ast.EnumDecl:
		collect(n.Base)
	case *ast.StructDecl:
		for _, p := range n.Params {
			collect(p.Type)
		}
		collectBody(n.Body)
	case *ast.UnionDecl:
		for _, p := range n.Params {
			collect(p.Type)
		}
		for _, c := range n.Cases {
			collectBody(c.Items)
		}
	case *ast.ChoiceDecl:
		for _, p := range n.Params {
			collect(p.Type)
		}
		collect(n.DiscriminatorType)
		for _, c := range n.Cases {
			collectBody(c.Items)
		}
	}
	return refs
}

// markUsedImports flags every import that contributed at least one
// symbol reachable via Phase 2's resolution - multi-segment imports by
// target package, wildcard imports by directory containment.
func markUsedImports(ctx *Context) {
	usedModules := make(map[string]bool)
	for _, sym := range ctx.Resolved {
		usedModules[sym.Module.File] = true
	}

	for _, lm := range ctx.AllModules() {
		for _, imp := range lm.Module.Imports {
			if imp.IsWildcard {
				dir := filepath.Join(imp.Parts...)
				for path := range usedModules {
					if strings.HasSuffix(filepath.ToSlash(filepath.Dir(path)), filepath.ToSlash(dir)) {
						ctx.usedImports[imp] = true
						break
					}
				}
				continue
			}
			pkg := strings.Join(imp.Parts, ".")
			idx, ok := ctx.Set.PackageIndex[pkg]
			if !ok {
				continue
			}
			if usedModules[ctx.Set.Imported[idx].FilePath] {
				ctx.usedImports[imp] = true
			}
		}
	}
}

func reportUnused(ctx *Context) {
	for _, lm := range ctx.AllModules() {
		for _, imp := range lm.Module.Imports {
			if !ctx.usedImports[imp] {
				ctx.Report.Warnf(diag.WUnusedImport, imp.Pos(), "import %q is never used", importName(imp))
			}
		}
		for _, c := range lm.Module.Constants {
			if !ctx.usedConstants[c] {
				ctx.Report.Warnf(diag.WUnusedConstant, c.Pos(), "constant %q is never referenced", c.Name)
			}
		}
		for _, c := range lm.Module.Constraints {
			if !ctx.reachable[c] {
				ctx.Report.Warnf(diag.WUnusedConstant, c.Pos(), "constraint %q is never referenced", c.Name)
			}
		}
	}
}

func importName(imp *ast.ImportDecl) string {
	name := imp.Name()
	if imp.IsWildcard {
		return name + ".*"
	}
	return name
}
