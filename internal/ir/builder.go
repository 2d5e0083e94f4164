package ir

import (
	"fmt"

	"github.com/devbrain/datascript/internal/ast"
	"github.com/devbrain/datascript/internal/semantic"
)

// Build walks the main module's top-level declarations (and, through
// them, whatever cross-module types they reference) and emits a Bundle.
// ctx must already have run every analysis phase through reachability;
// Build does not itself validate anything, it only rebinds and flattens
// what the analyzer already resolved.
func Build(ctx *semantic.Context) (*Bundle, error) {
	b := &builder{ctx: ctx, bundle: &Bundle{}, index: make(map[ast.Decl]int)}

	main := ctx.Set.Main.Module
	for _, c := range main.Constants {
		b.entityIndex(c, main)
	}
	for _, s := range main.Subtypes {
		b.entityIndex(s, main)
	}
	for _, a := range main.TypeAliases {
		b.entityIndex(a, main)
	}
	for _, e := range main.Enums {
		b.entityIndex(e, main)
	}
	for _, s := range main.Structs {
		b.entityIndex(s, main)
	}
	for _, u := range main.Unions {
		b.entityIndex(u, main)
	}
	for _, c := range main.Choices {
		b.entityIndex(c, main)
	}

	if b.err != nil {
		return nil, b.err
	}
	return b.bundle, nil
}

type builder struct {
	ctx    *semantic.Context
	bundle *Bundle
	index  map[ast.Decl]int
	err    error
}

// entityIndex returns d's bundle-local index, building it on first
// request. The slot is reserved before recursing into d's own
// dependencies so a reference cycle resolves to a stable (if initially
// incomplete) index rather than looping forever.
func (b *builder) entityIndex(d ast.Decl, module *ast.Module) int {
	if idx, ok := b.index[d]; ok {
		return idx
	}
	idx := len(b.bundle.Entities)
	b.index[d] = idx
	b.bundle.Entities = append(b.bundle.Entities, nil)
	b.bundle.Entities[idx] = b.buildEntity(d, module)
	return idx
}

func (b *builder) buildEntity(d ast.Decl, module *ast.Module) *Entity {
	pkg := module.PackageName()
	switch n := d.(type) {
	case *ast.ConstantDecl:
		return &Entity{Kind: EntConstant, Name: n.Name, Package: pkg, Doc: n.Doc, Constant: b.buildConstant(n, module)}
	case *ast.SubtypeDecl:
		return &Entity{Kind: EntSubtype, Name: n.Name, Package: pkg, Doc: n.Doc, Subtype: b.buildSubtype(n, module)}
	case *ast.TypeAliasDecl:
		return &Entity{Kind: EntTypeAlias, Name: n.Name, Package: pkg, Doc: n.Doc, TypeAlias: &TypeAliasEntity{Target: b.typeRef(n.Target, module, exprScope{})}}
	case *ast.EnumDecl:
		return &Entity{Kind: EntEnum, Name: n.Name, Package: pkg, Doc: n.Doc, Enum: b.buildEnum(n, module)}
	case *ast.StructDecl:
		return &Entity{Kind: EntStruct, Name: n.Name, Package: pkg, Doc: n.Doc, Struct: b.buildStruct(n, module)}
	case *ast.UnionDecl:
		return &Entity{Kind: EntUnion, Name: n.Name, Package: pkg, Doc: n.Doc, Union: b.buildUnion(n, module)}
	case *ast.ChoiceDecl:
		return &Entity{Kind: EntChoice, Name: n.Name, Package: pkg, Doc: n.Doc, Choice: b.buildChoice(n, module)}
	}
	if b.err == nil {
		b.err = fmt.Errorf("ir: unsupported declaration kind %T", d)
	}
	return &Entity{}
}

func (b *builder) buildConstant(n *ast.ConstantDecl, module *ast.Module) *ConstantEntity {
	signed := false
	if prim, ok := n.Type.(*ast.PrimitiveType); ok {
		signed = prim.Signedness == ast.Signed
	}
	v, ok := b.ctx.ConstValues[n.Value]
	return &ConstantEntity{
		Type:     b.typeRef(n.Type, module, exprScope{}),
		Value:    v.Bits(),
		Signed:   signed,
		Poisoned: !ok,
	}
}

func (b *builder) buildSubtype(n *ast.SubtypeDecl, module *ast.Module) *SubtypeEntity {
	scope := exprScope{fields: []string{"this"}}
	return &SubtypeEntity{Base: b.typeRef(n.Base, module, exprScope{}), Constraint: b.rebind(n.Constraint, scope, module)}
}

func (b *builder) buildEnum(n *ast.EnumDecl, module *ast.Module) *EnumEntity {
	var base *TypeRef
	if n.Base != nil {
		base = b.typeRef(n.Base, module, exprScope{})
	} else {
		base = &TypeRef{Kind: RefPrimitive, Primitive: &PrimitiveRef{Signed: false, Bits: 32}}
	}
	items := make([]EnumItemInfo, len(n.Items))
	for i, item := range n.Items {
		items[i] = EnumItemInfo{Name: item.Name, Value: uint64(b.ctx.EnumItemValues[item])}
	}
	return &EnumEntity{Base: base, IsBitmask: n.IsBitmask, Items: items}
}

func buildParams(params []*ast.Param, module *ast.Module, b *builder) []ParamInfo {
	out := make([]ParamInfo, len(params))
	for i, p := range params {
		out[i] = ParamInfo{Name: p.Name, Type: b.typeRef(p.Type, module, exprScope{})}
	}
	return out
}

func paramNames(params []*ast.Param) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}

func fieldNames(body []ast.BodyItem) []string {
	var out []string
	for _, item := range body {
		if fd, ok := item.(*ast.FieldDef); ok {
			out = append(out, fd.Name)
		}
	}
	return out
}

func (b *builder) buildStruct(n *ast.StructDecl, module *ast.Module) *StructEntity {
	scope := exprScope{fields: fieldNames(n.Body), params: paramNames(n.Params)}
	return &StructEntity{Params: buildParams(n.Params, module, b), Body: b.buildBody(n.Body, scope, module)}
}

func (b *builder) buildUnion(n *ast.UnionDecl, module *ast.Module) *UnionEntity {
	cases := make([]*UnionCaseEntity, len(n.Cases))
	for i, c := range n.Cases {
		scope := exprScope{fields: fieldNames(c.Items), params: paramNames(n.Params)}
		cases[i] = &UnionCaseEntity{
			Name:      c.CaseName,
			Condition: b.rebind(c.Condition, scope, module),
			Body:      b.buildBody(c.Items, scope, module),
		}
	}
	return &UnionEntity{Params: buildParams(n.Params, module, b), Cases: cases}
}

func (b *builder) buildChoice(n *ast.ChoiceDecl, module *ast.Module) *ChoiceEntity {
	paramScope := exprScope{params: paramNames(n.Params)}
	disc := Discriminator{}
	if n.Selector != nil {
		disc.External = b.rebind(n.Selector, paramScope, module)
	} else {
		disc.Inline = b.typeRef(n.DiscriminatorType, module, paramScope)
	}

	var ordinary, defaults []*ChoiceCaseEntity
	for _, c := range n.Cases {
		scope := exprScope{fields: fieldNames(c.Items), params: paramNames(n.Params)}
		ce := &ChoiceCaseEntity{
			IsDefault:  c.IsDefault,
			Kind:       SelectorKind(c.Kind),
			FieldName:  c.FieldName,
			RangeBound: b.rebind(c.RangeBound, paramScope, module),
			Body:       b.buildBody(c.Items, scope, module),
		}
		for _, e := range c.Exprs {
			ce.Values = append(ce.Values, b.rebind(e, paramScope, module))
		}
		if c.IsDefault {
			defaults = append(defaults, ce)
		} else {
			ordinary = append(ordinary, ce)
		}
	}
	return &ChoiceEntity{Params: buildParams(n.Params, module, b), Discriminator: disc, Cases: append(ordinary, defaults...)}
}

func (b *builder) buildBody(body []ast.BodyItem, scope exprScope, module *ast.Module) []*BodyEntry {
	out := make([]*BodyEntry, 0, len(body))
	for _, item := range body {
		switch n := item.(type) {
		case *ast.FieldDef:
			out = append(out, &BodyEntry{Kind: BodyField, Field: b.buildField(n, scope, module)})
		case *ast.LabelDirective:
			out = append(out, &BodyEntry{Kind: BodyLabel, LabelOffset: b.rebind(n.Label, scope, module)})
		case *ast.AlignDirective:
			out = append(out, &BodyEntry{Kind: BodyAlign, AlignTo: b.rebind(n.Alignment, scope, module)})
		}
	}
	return out
}

func (b *builder) buildField(n *ast.FieldDef, scope exprScope, module *ast.Module) *Field {
	offset := int64(-1)
	if decl, ok := b.enclosingLayoutOwner(n, module); ok {
		if layout, ok := b.ctx.Layouts[decl]; ok {
			for _, fl := range layout.Fields {
				if fl.Name == n.Name {
					offset = fl.Offset
					break
				}
			}
		}
	}
	return &Field{
		Name:       n.Name,
		Type:       b.typeRef(n.Type, module, scope),
		Offset:     offset,
		Guard:      b.rebind(n.Guard, scope, module),
		Constraint: b.rebind(n.Constraint, scope, module),
		Default:    b.rebind(n.Default, scope, module),
		Doc:        n.Doc,
	}
}

// enclosingLayoutOwner finds the struct declaration in module whose body
// directly contains n, so buildField can look up its computed offset.
// Union and choice case bodies have no single static offset and are
// skipped (enclosingLayoutOwner returns ok=false).
func (b *builder) enclosingLayoutOwner(n *ast.FieldDef, module *ast.Module) (ast.Decl, bool) {
	for _, s := range module.Structs {
		for _, item := range s.Body {
			if fd, ok := item.(*ast.FieldDef); ok && fd == n {
				return s, true
			}
		}
	}
	return nil, false
}

func (b *builder) typeRef(t ast.TypeNode, module *ast.Module, scope exprScope) *TypeRef {
	switch n := t.(type) {
	case nil:
		return nil
	case *ast.PrimitiveType:
		return &TypeRef{Kind: RefPrimitive, Primitive: &PrimitiveRef{
			Signed: n.Signedness == ast.Signed, Bits: n.Bits, BigEndian: n.ByteOrder == ast.EndianBig}}
	case *ast.BitfieldType:
		return &TypeRef{Kind: RefBitfield, BitWidth: b.rebind(n.Width, scope, module)}
	case *ast.BoolType:
		return &TypeRef{Kind: RefBool}
	case *ast.StringType:
		width := 8
		switch n.Width {
		case ast.StringUTF16:
			width = 16
		case ast.StringUTF32:
			width = 32
		}
		return &TypeRef{Kind: RefString, String: &StringRef{Width: width, BigEndian: n.ByteOrder == ast.EndianBig}}
	case *ast.ArrayType:
		elem := b.typeRef(n.Element, module, scope)
		switch n.Sizing {
		case ast.ArrayFixed:
			return &TypeRef{Kind: RefArray, Element: elem, Sizing: ArraySizeFixed, Size: b.rebind(n.Size, scope, module)}
		case ast.ArrayRanged:
			return &TypeRef{Kind: RefArray, Element: elem, Sizing: ArraySizeRanged,
				Min: b.rebind(n.Min, scope, module), Max: b.rebind(n.Max, scope, module)}
		default:
			return &TypeRef{Kind: RefArray, Element: elem, Sizing: ArraySizeUnsized}
		}
	case *ast.QualifiedName:
		return b.resolvedTypeRef(n)
	case *ast.TypeInstantiation:
		return b.resolvedTypeRef(n)
	}
	return &TypeRef{Kind: RefPrimitive, Primitive: &PrimitiveRef{Bits: 32}}
}

// resolvedTypeRef follows Phase 2's resolution of a qualified name or
// type instantiation to its target declaration and returns an
// entity-index reference into the bundle, building that entity first if
// this is the first time it's referenced.
func (b *builder) resolvedTypeRef(site ast.Node) *TypeRef {
	sym, ok := b.ctx.Resolved[site]
	if !ok {
		return &TypeRef{Kind: RefPrimitive, Primitive: &PrimitiveRef{Bits: 32}}
	}
	return &TypeRef{Kind: RefEntity, EntityIndex: b.entityIndex(sym.Decl, sym.Module)}
}
