package semantic

import "github.com/devbrain/datascript/internal/ast"

// Phase5Layout computes a TypeInfo for every type used in a struct or
// union field, and a field-offset Layout for every struct, union, and
// choice declaration. Label and alignment directives are read-time
// concerns handled by the generated reader, not layout-time ones: they
// never shift a field's computed offset.
type Phase5Layout struct{}

func (Phase5Layout) Name() string { return "layout" }

func (Phase5Layout) Run(ctx *Context) {
	lc := &layoutComputer{ctx: ctx}
	for _, lm := range ctx.AllModules() {
		for _, s := range lm.Module.Structs {
			lc.structLayout(s)
		}
		for _, u := range lm.Module.Unions {
			lc.unionLayout(u)
		}
		for _, c := range lm.Module.Choices {
			lc.choiceLayout(c)
		}
	}
}

type layoutComputer struct {
	ctx *Context
}

func (lc *layoutComputer) structLayout(decl *ast.StructDecl) *Layout {
	if l, ok := lc.ctx.Layouts[decl]; ok {
		return l
	}
	l := &Layout{}
	lc.ctx.Layouts[decl] = l // break cycles: a self-referencing struct sees a partial layout, not infinite recursion

	var offset int64
	variableFromHere := false
	maxAlign := 1

	for _, item := range decl.Body {
		fd, ok := item.(*ast.FieldDef)
		if !ok {
			continue
		}
		info := lc.typeInfo(fd.Type)
		if info.Alignment > maxAlign {
			maxAlign = info.Alignment
		}
		fieldOffset := int64(infiniteSize)
		if !variableFromHere {
			offset = alignOffset(offset, info.Alignment)
			fieldOffset = offset
		}
		l.Fields = append(l.Fields, FieldLayout{Name: fd.Name, Offset: fieldOffset, Info: info})
		if info.IsVariable {
			variableFromHere = true
		} else if !variableFromHere {
			offset += info.Size
		}
	}

	if variableFromHere {
		l.Size = variableInfo(offset, infiniteSize)
	} else {
		l.Size = fixedInfo(alignOffset(offset, maxAlign), false)
	}
	l.Size.Alignment = maxAlign
	return l
}

func (lc *layoutComputer) unionLayout(decl *ast.UnionDecl) *Layout {
	if l, ok := lc.ctx.Layouts[decl]; ok {
		return l
	}
	l := &Layout{}
	lc.ctx.Layouts[decl] = l

	maxAlign := 1
	var maxSize int64
	variable := false

	for _, c := range decl.Cases {
		for _, item := range c.Items {
			fd, ok := item.(*ast.FieldDef)
			if !ok {
				continue
			}
			info := lc.typeInfo(fd.Type)
			l.Fields = append(l.Fields, FieldLayout{Name: c.CaseName + "." + fd.Name, Offset: 0, Info: info})
			if info.Alignment > maxAlign {
				maxAlign = info.Alignment
			}
			if info.IsVariable {
				variable = true
			} else if info.Size > maxSize {
				maxSize = info.Size
			}
		}
	}

	if variable {
		l.Size = variableInfo(0, infiniteSize)
	} else {
		l.Size = fixedInfo(alignOffset(maxSize, maxAlign), false)
	}
	l.Size.Alignment = maxAlign
	return l
}

// choiceLayout always reports a variable size: the reader picks the
// active case at runtime based on the discriminator's value, so no
// single static size describes every instance.
func (lc *layoutComputer) choiceLayout(decl *ast.ChoiceDecl) *Layout {
	if l, ok := lc.ctx.Layouts[decl]; ok {
		return l
	}
	l := &Layout{Size: variableInfo(0, infiniteSize)}
	lc.ctx.Layouts[decl] = l
	for _, c := range decl.Cases {
		for _, item := range c.Items {
			if fd, ok := item.(*ast.FieldDef); ok {
				l.Fields = append(l.Fields, FieldLayout{Name: c.FieldName + "." + fd.Name, Offset: infiniteSize, Info: lc.typeInfo(fd.Type)})
			}
		}
	}
	return l
}

func (lc *layoutComputer) typeInfo(t ast.TypeNode) TypeInfo {
	switch n := t.(type) {
	case *ast.PrimitiveType:
		return fixedInfo(int64(n.Bits/8), n.Signedness == ast.Signed)
	case *ast.BitfieldType:
		return lc.bitfieldInfo(n)
	case *ast.BoolType:
		return fixedInfo(1, false)
	case *ast.StringType:
		return variableInfo(0, infiniteSize)
	case *ast.ArrayType:
		return lc.arrayInfo(n)
	case *ast.QualifiedName:
		return lc.resolvedInfo(n)
	case *ast.TypeInstantiation:
		return lc.resolvedInfo(n)
	}
	return variableInfo(0, infiniteSize)
}

func (lc *layoutComputer) bitfieldInfo(n *ast.BitfieldType) TypeInfo {
	v, ok := lc.ctx.ConstValues[n.Width]
	if !ok {
		return variableInfo(0, 16) // width not statically known; 128-bit cap / 8
	}
	bytes := (v.Int + 7) / 8
	return TypeInfo{Size: bytes, Alignment: 1, IsSigned: false, MinSize: bytes, MaxSize: bytes}
}

func (lc *layoutComputer) arrayInfo(n *ast.ArrayType) TypeInfo {
	elem := lc.typeInfo(n.Element)
	switch n.Sizing {
	case ast.ArrayFixed:
		if count, ok := lc.ctx.ConstValues[n.Size]; ok && !elem.IsVariable {
			size := count.Int * elem.Size
			return fixedInfo(size, false)
		}
		return variableInfo(0, infiniteSize)
	case ast.ArrayRanged:
		minCount, minOK := lc.ctx.ConstValues[n.Min]
		maxCount, maxOK := lc.ctx.ConstValues[n.Max]
		minSize, maxSize := int64(0), int64(infiniteSize)
		if minOK && !elem.IsVariable {
			minSize = minCount.Int * elem.Size
		}
		if maxOK && !elem.IsVariable {
			maxSize = maxCount.Int * elem.Size
		}
		return variableInfo(minSize, maxSize)
	default: // ArrayUnsized
		return variableInfo(0, infiniteSize)
	}
}

func (lc *layoutComputer) resolvedInfo(site ast.Node) TypeInfo {
	sym, ok := lc.ctx.Resolved[site]
	if !ok {
		return variableInfo(0, infiniteSize)
	}
	switch sym.Kind {
	case SymStruct:
		return lc.structLayout(sym.Decl.(*ast.StructDecl)).Size
	case SymUnion:
		return lc.unionLayout(sym.Decl.(*ast.UnionDecl)).Size
	case SymChoice:
		return lc.choiceLayout(sym.Decl.(*ast.ChoiceDecl)).Size
	case SymEnum:
		base := sym.Decl.(*ast.EnumDecl).Base
		if base == nil {
			return fixedInfo(4, false)
		}
		return lc.typeInfo(base)
	case SymSubtype:
		return lc.typeInfo(sym.Decl.(*ast.SubtypeDecl).Base)
	case SymTypeAlias:
		return lc.typeInfo(sym.Decl.(*ast.TypeAliasDecl).Target)
	}
	return variableInfo(0, infiniteSize)
}
