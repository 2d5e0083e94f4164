// Package desugar implements the module-level lowering pass that runs
// before semantic analysis: every inline struct/union field nested inside
// a struct, union case, or choice case body is lifted to a synthesized
// top-level declaration, and the original field position is replaced with
// a reference to it. This keeps every later phase working over a single
// uniform shape (a field always names a type, never embeds a body).
package desugar

import (
	"fmt"

	"github.com/devbrain/datascript/internal/ast"
)

// Module rewrites m in place, appending every synthesized declaration to
// m.Structs / m.Unions and returning the list of generated names for
// diagnostics/testing.
func Module(m *ast.Module) []string {
	d := &desugarer{module: m}
	for _, s := range m.Structs {
		s.Body = d.rewriteBody(s.Name, s.Params, s.Body)
	}
	for _, u := range m.Unions {
		for _, c := range u.Cases {
			c.Items = d.rewriteBody(u.Name+"_"+c.CaseName, u.Params, c.Items)
		}
	}
	for _, c := range m.Choices {
		for _, cc := range c.Cases {
			label := c.Name + "_" + cc.FieldName
			cc.Items = d.rewriteBody(label, c.Params, cc.Items)
		}
	}
	return d.generated
}

type desugarer struct {
	module    *ast.Module
	generated []string
	counter   int
}

func (d *desugarer) nextName(scope string) string {
	d.counter++
	name := fmt.Sprintf("%s__anon%d", scope, d.counter)
	d.generated = append(d.generated, name)
	return name
}

// rewriteBody walks a single body (struct, union case, or choice case),
// recursing into any inline fields it finds, lifting each one to a
// synthesized declaration and replacing it with an equivalent FieldDef
// that references the declaration by name.
func (d *desugarer) rewriteBody(scope string, parentParams []*ast.Param, body []ast.BodyItem) []ast.BodyItem {
	out := make([]ast.BodyItem, 0, len(body))
	for _, item := range body {
		switch n := item.(type) {
		case *ast.InlineStructField:
			name := d.nextName(scope)
			innerBody := d.rewriteBody(name, parentParams, n.Body)
			decl := &ast.StructDecl{
				Position: n.Position,
				Name:     name,
				Params:   parentParams,
				Body:     innerBody,
				Doc:      n.Doc,
			}
			d.module.Structs = append(d.module.Structs, decl)
			out = append(out, fieldRefFor(n.Position, name, parentParams, n.Name, n.Guard, n.Constraint))

		case *ast.InlineUnionField:
			name := d.nextName(scope)
			cases := make([]*ast.UnionCase, len(n.Cases))
			for i, c := range n.Cases {
				cases[i] = &ast.UnionCase{
					Position:    c.Position,
					CaseName:    c.CaseName,
					Items:       d.rewriteBody(name+"_"+c.CaseName, parentParams, c.Items),
					Condition:   c.Condition,
					IsAnonymous: c.IsAnonymous,
					Doc:         c.Doc,
				}
			}
			decl := &ast.UnionDecl{
				Position: n.Position,
				Name:     name,
				Params:   parentParams,
				Cases:    cases,
				Doc:      n.Doc,
			}
			d.module.Unions = append(d.module.Unions, decl)
			out = append(out, fieldRefFor(n.Position, name, parentParams, n.Name, n.Guard, n.Constraint))

		default:
			out = append(out, item)
		}
	}
	return out
}

// fieldRefFor builds the FieldDef that replaces a lifted inline field: its
// type is a reference to the synthesized declaration, instantiated with
// the enclosing declaration's own parameters forwarded as arguments (the
// synthesized declaration shares the exact parameter list, so the
// arguments are simply the parameter names read back as expressions).
func fieldRefFor(pos ast.Position, declName string, params []*ast.Param, fieldName string, guard, constraint ast.Expr) *ast.FieldDef {
	var typ ast.TypeNode = &ast.QualifiedName{Position: pos, Parts: []string{declName}}
	if len(params) > 0 {
		args := make([]ast.Expr, len(params))
		for i, p := range params {
			args[i] = &ast.Identifier{Position: pos, Name: p.Name}
		}
		typ = &ast.TypeInstantiation{Position: pos, Base: typ.(*ast.QualifiedName), Args: args}
	}
	return &ast.FieldDef{
		Position:   pos,
		Type:       typ,
		Name:       fieldName,
		Guard:      guard,
		Constraint: constraint,
	}
}
