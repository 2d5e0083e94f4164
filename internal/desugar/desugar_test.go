package desugar

import (
	"testing"

	"github.com/devbrain/datascript/internal/ast"
)

func TestModuleLiftsInlineStructField(t *testing.T) {
	m := &ast.Module{
		Structs: []*ast.StructDecl{
			{
				Name: "Outer",
				Body: []ast.BodyItem{
					&ast.InlineStructField{
						Name: "inner",
						Body: []ast.BodyItem{
							&ast.FieldDef{Name: "x", Type: &ast.PrimitiveType{Bits: 32}},
						},
					},
				},
			},
		},
	}

	Module(m)

	if len(m.Structs) != 2 {
		t.Fatalf("expected original + 1 synthesized struct, got %d", len(m.Structs))
	}
	outer := m.Structs[0]
	fd, ok := outer.Body[0].(*ast.FieldDef)
	if !ok {
		t.Fatalf("expected the inline field to be replaced by a FieldDef, got %T", outer.Body[0])
	}
	if fd.Name != "inner" {
		t.Errorf("field name = %q, want %q", fd.Name, "inner")
	}
	qn, ok := fd.Type.(*ast.QualifiedName)
	if !ok {
		t.Fatalf("expected QualifiedName type reference, got %T", fd.Type)
	}
	synth := m.Structs[1]
	if qn.String() != synth.Name {
		t.Errorf("field type %q does not reference synthesized struct %q", qn.String(), synth.Name)
	}
	if len(synth.Body) != 1 {
		t.Fatalf("synthesized struct body not carried over: %#v", synth.Body)
	}
}

func TestModuleForwardsParentParams(t *testing.T) {
	m := &ast.Module{
		Structs: []*ast.StructDecl{
			{
				Name:   "Outer",
				Params: []*ast.Param{{Name: "n", Type: &ast.PrimitiveType{Bits: 32}}},
				Body: []ast.BodyItem{
					&ast.InlineStructField{
						Name: "inner",
						Body: []ast.BodyItem{
							&ast.FieldDef{Name: "data", Type: &ast.ArrayType{Sizing: ast.ArraySizing(0)}},
						},
					},
				},
			},
		},
	}

	Module(m)

	outer := m.Structs[0]
	fd := outer.Body[0].(*ast.FieldDef)
	inst, ok := fd.Type.(*ast.TypeInstantiation)
	if !ok {
		t.Fatalf("expected TypeInstantiation forwarding the parent param, got %T", fd.Type)
	}
	if len(inst.Args) != 1 {
		t.Fatalf("expected 1 forwarded argument, got %d", len(inst.Args))
	}
	ident, ok := inst.Args[0].(*ast.Identifier)
	if !ok || ident.Name != "n" {
		t.Errorf("expected forwarded identifier 'n', got %#v", inst.Args[0])
	}
	synth := m.Structs[1]
	if len(synth.Params) != 1 || synth.Params[0].Name != "n" {
		t.Errorf("synthesized struct should inherit parent params, got %#v", synth.Params)
	}
}

func TestModuleLiftsInlineUnionField(t *testing.T) {
	m := &ast.Module{
		Structs: []*ast.StructDecl{
			{
				Name: "Outer",
				Body: []ast.BodyItem{
					&ast.InlineUnionField{
						Name: "u",
						Cases: []*ast.UnionCase{
							{CaseName: "asInt", Items: []ast.BodyItem{
								&ast.FieldDef{Name: "asInt", Type: &ast.PrimitiveType{Bits: 32}},
							}},
						},
					},
				},
			},
		},
	}

	Module(m)

	if len(m.Unions) != 1 {
		t.Fatalf("expected 1 synthesized union, got %d", len(m.Unions))
	}
	outer := m.Structs[0]
	fd := outer.Body[0].(*ast.FieldDef)
	qn := fd.Type.(*ast.QualifiedName)
	if qn.String() != m.Unions[0].Name {
		t.Errorf("field does not reference the synthesized union")
	}
}
