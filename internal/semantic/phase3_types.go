package semantic

import (
	"github.com/devbrain/datascript/internal/ast"
	"github.com/devbrain/datascript/internal/diag"
)

// Phase3Types walks every expression tree reachable from a module's
// declarations, classifying each into {integer, boolean, string, array,
// user-defined, bitfield, unknown} and checking the operator/context
// rules that depend on those categories. A category of unknown -
// recorded whenever a prior error left a node unclassifiable - is
// tolerated everywhere to avoid a single mistake cascading into a wall
// of secondary diagnostics.
type Phase3Types struct{}

func (Phase3Types) Name() string { return "types" }

func (Phase3Types) Run(ctx *Context) {
	for _, lm := range ctx.AllModules() {
		tc := &typeChecker{ctx: ctx, module: lm.Module}
		tc.checkModule()
	}
}

type typeChecker struct {
	ctx    *Context
	module *ast.Module
}

// scope resolves bare identifiers while checking one struct/union-case/
// choice-case body: sibling fields declared so far, the enclosing
// declaration's parameters, and (falling through) this module's own
// constants.
type scope struct {
	locals    map[string]Type
	functions map[string]*ast.FunctionDef
}

func newScope(params []*ast.Param) *scope {
	s := &scope{locals: make(map[string]Type), functions: make(map[string]*ast.FunctionDef)}
	for _, p := range params {
		s.locals[p.Name] = categoryOfTypeNode(nil, p.Type)
	}
	return s
}

func (tc *typeChecker) checkModule() {
	for _, c := range tc.module.Constants {
		tc.typeOf(newScope(nil), c.Value)
	}
	for _, s := range tc.module.Subtypes {
		if s.Constraint != nil {
			sc := newScope(nil)
			sc.locals["this"] = categoryOfTypeNode(tc.ctx, s.Base)
			tc.expectBoolean(sc, s.Constraint, "subtype constraint")
		}
	}
	for _, c := range tc.module.Constraints {
		sc := newScope(c.Params)
		tc.expectBoolean(sc, c.Condition, "constraint condition")
	}
	for _, e := range tc.module.Enums {
		tc.checkEnum(e)
	}
	for _, s := range tc.module.Structs {
		tc.checkBody(newScope(s.Params), s.Body)
	}
	for _, u := range tc.module.Unions {
		for _, c := range u.Cases {
			sc := newScope(u.Params)
			if c.Condition != nil {
				tc.expectBoolean(sc, c.Condition, "union case condition")
			}
			tc.checkBody(sc, c.Items)
		}
	}
	for _, c := range tc.module.Choices {
		tc.checkChoice(c)
	}
}

func (tc *typeChecker) checkEnum(e *ast.EnumDecl) {
	if e.Base != nil && categoryOfTypeNode(tc.ctx, e.Base).Category != CatInteger {
		tc.ctx.Report.Errorf(diag.EInvalidOperandType, e.Pos(), "enum %q base type must be integer", e.Name)
	}
	sc := newScope(nil)
	for _, item := range e.Items {
		if item.Value == nil {
			continue
		}
		if t := tc.typeOf(sc, item.Value); t.Category != CatInteger && t.Category != CatUnknown {
			tc.ctx.Report.Errorf(diag.ETypeMismatch, item.Value.Pos(),
				"enum item %q value must be integer, got %s", item.Name, t)
		}
	}
}

func (tc *typeChecker) checkChoice(c *ast.ChoiceDecl) {
	sc := newScope(c.Params)
	var selectorType Type
	if c.Selector != nil {
		selectorType = tc.typeOf(sc, c.Selector)
	} else if c.DiscriminatorType != nil {
		selectorType = categoryOfTypeNode(tc.ctx, c.DiscriminatorType)
	}
	if selectorType.Category != CatInteger && selectorType.Category != CatUnknown {
		tc.ctx.Report.Errorf(diag.EInvalidOperandType, c.Pos(), "choice %q selector must be integer", c.Name)
	}
	for _, cc := range c.Cases {
		if cc.Kind == ast.SelectorExact {
			for _, ex := range cc.Exprs {
				if t := tc.typeOf(sc, ex); !compatible(t, selectorType) {
					tc.ctx.Report.Errorf(diag.ETypeMismatch, ex.Pos(),
						"choice case value has type %s, selector has type %s", t, selectorType)
				}
			}
		} else if cc.RangeBound != nil {
			tc.typeOf(sc, cc.RangeBound)
		}
		tc.checkBody(sc, cc.Items)
	}
}

// checkBody type-checks one struct/union-case/choice-case body, adding
// each field to scope as it goes so later fields (and their guards,
// constraints, and the array sizes of later fields) can reference
// earlier ones by name.
func (tc *typeChecker) checkBody(sc *scope, body []ast.BodyItem) {
	for _, item := range body {
		switch n := item.(type) {
		case *ast.FieldDef:
			if n.Guard != nil {
				tc.expectBoolean(sc, n.Guard, "field guard")
			}
			if n.Constraint != nil {
				tc.expectBoolean(sc, n.Constraint, "field constraint")
			}
			ft := categoryOfTypeNode(tc.ctx, n.Type)
			sc.locals[n.Name] = ft
			if arr, ok := n.Type.(*ast.ArrayType); ok {
				tc.checkArraySizeExprs(sc, arr)
			}
			if bf, ok := n.Type.(*ast.BitfieldType); ok {
				if t := tc.typeOf(sc, bf.Width); t.Category != CatInteger && t.Category != CatUnknown {
					tc.ctx.Report.Errorf(diag.ETypeMismatch, bf.Width.Pos(), "bitfield width must be integer")
				}
			}
		case *ast.AlignDirective:
			if t := tc.typeOf(sc, n.Alignment); t.Category != CatInteger && t.Category != CatUnknown {
				tc.ctx.Report.Errorf(diag.ETypeMismatch, n.Alignment.Pos(), "alignment must be integer")
			}
		case *ast.LabelDirective:
			tc.typeOf(sc, n.Label)
		case *ast.FunctionDef:
			sc.functions[n.Name] = n
		}
	}
}

func (tc *typeChecker) checkArraySizeExprs(sc *scope, arr *ast.ArrayType) {
	check := func(e ast.Expr) {
		if e == nil {
			return
		}
		if t := tc.typeOf(sc, e); t.Category != CatInteger && t.Category != CatUnknown {
			tc.ctx.Report.Errorf(diag.ETypeMismatch, e.Pos(), "array size must be integer")
		}
	}
	check(arr.Size)
	check(arr.Min)
	check(arr.Max)
}

func (tc *typeChecker) expectBoolean(sc *scope, e ast.Expr, what string) {
	if t := tc.typeOf(sc, e); t.Category != CatBoolean && t.Category != CatUnknown {
		tc.ctx.Report.Errorf(diag.ETypeMismatch, e.Pos(), "%s must be boolean, got %s", what, t)
	}
}

// typeOf computes and memoizes e's Type, recursing into subexpressions.
func (tc *typeChecker) typeOf(sc *scope, e ast.Expr) Type {
	if t, ok := tc.ctx.Types[e]; ok {
		return t
	}
	t := tc.classify(sc, e)
	tc.ctx.Types[e] = t
	return t
}

func (tc *typeChecker) classify(sc *scope, e ast.Expr) Type {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return Integer
	case *ast.BoolLiteral:
		return Boolean
	case *ast.StringLiteral:
		return String
	case *ast.Identifier:
		return tc.identifierType(sc, n.Name)
	case *ast.UnaryExpr:
		return tc.classifyUnary(sc, n)
	case *ast.BinaryExpr:
		return tc.classifyBinary(sc, n)
	case *ast.TernaryExpr:
		return tc.classifyTernary(sc, n)
	case *ast.FieldAccessExpr:
		return tc.classifyFieldAccess(sc, n)
	case *ast.IndexExpr:
		return tc.classifyIndex(sc, n)
	case *ast.CallExpr:
		return tc.classifyCall(sc, n)
	}
	return Unknown
}

func (tc *typeChecker) identifierType(sc *scope, name string) Type {
	if t, ok := sc.locals[name]; ok {
		return t
	}
	if sym, ok := lookupConstant(tc.module, name); ok {
		return categoryOfTypeNode(tc.ctx, sym.Type)
	}
	return Unknown
}

func lookupConstant(m *ast.Module, name string) (*ast.ConstantDecl, bool) {
	for _, c := range m.Constants {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (tc *typeChecker) classifyUnary(sc *scope, n *ast.UnaryExpr) Type {
	operand := tc.typeOf(sc, n.Operand)
	switch n.Op {
	case ast.UnaryLogNot:
		if operand.Category != CatBoolean && operand.Category != CatUnknown {
			tc.ctx.Report.Errorf(diag.EInvalidOperandType, n.Pos(), "'!' requires a boolean operand, got %s", operand)
		}
		return Boolean
	default: // negation, bitwise complement
		if operand.Category != CatInteger && operand.Category != CatUnknown {
			tc.ctx.Report.Errorf(diag.EInvalidOperandType, n.Pos(), "unary %s requires an integer operand, got %s", n.Op, operand)
		}
		return Integer
	}
}

func (tc *typeChecker) classifyBinary(sc *scope, n *ast.BinaryExpr) Type {
	lhs := tc.typeOf(sc, n.Left)
	rhs := tc.typeOf(sc, n.Right)
	op := n.Op

	switch {
	case op.IsArithmetic() || op.IsBitwise():
		tc.requireInteger(n.Pos(), lhs, rhs, op.String())
		return Integer
	case op.IsLogical():
		tc.requireBoolean(n.Pos(), lhs, rhs, op.String())
		return Boolean
	case op.IsComparison():
		if !compatible(lhs, rhs) {
			tc.ctx.Report.Errorf(diag.EIncompatibleTypes, n.Pos(),
				"cannot compare %s with %s", lhs, rhs)
		}
		return Boolean
	}
	return Unknown
}

func (tc *typeChecker) requireInteger(pos ast.Position, lhs, rhs Type, op string) {
	if (lhs.Category != CatInteger && lhs.Category != CatUnknown) ||
		(rhs.Category != CatInteger && rhs.Category != CatUnknown) {
		tc.ctx.Report.Errorf(diag.EInvalidOperandType, pos, "%q requires integer operands, got %s and %s", op, lhs, rhs)
	}
}

func (tc *typeChecker) requireBoolean(pos ast.Position, lhs, rhs Type, op string) {
	if (lhs.Category != CatBoolean && lhs.Category != CatUnknown) ||
		(rhs.Category != CatBoolean && rhs.Category != CatUnknown) {
		tc.ctx.Report.Errorf(diag.EInvalidOperandType, pos, "%q requires boolean operands, got %s and %s", op, lhs, rhs)
	}
}

func (tc *typeChecker) classifyTernary(sc *scope, n *ast.TernaryExpr) Type {
	cond := tc.typeOf(sc, n.Condition)
	if cond.Category != CatBoolean && cond.Category != CatUnknown {
		tc.ctx.Report.Errorf(diag.EInvalidOperandType, n.Pos(), "ternary condition must be boolean, got %s", cond)
	}
	then := tc.typeOf(sc, n.Then)
	els := tc.typeOf(sc, n.Else)
	if !compatible(then, els) {
		tc.ctx.Report.Errorf(diag.EIncompatibleTypes, n.Pos(), "ternary branches have incompatible types %s and %s", then, els)
		return Unknown
	}
	if then.Category == CatUnknown {
		return els
	}
	return then
}

func (tc *typeChecker) classifyFieldAccess(sc *scope, n *ast.FieldAccessExpr) Type {
	base := tc.typeOf(sc, n.Object)
	if base.Category != CatUser || base.Struct == nil {
		return Unknown
	}
	decl, ok := base.Struct.Decl.(*ast.StructDecl)
	if !ok {
		return Unknown
	}
	fields := tc.ctx.structFieldTypes(decl)
	if t, ok := fields[n.Field]; ok {
		return t
	}
	return Unknown
}

func (tc *typeChecker) classifyIndex(sc *scope, n *ast.IndexExpr) Type {
	base := tc.typeOf(sc, n.Array)
	idx := tc.typeOf(sc, n.Index)
	if idx.Category != CatInteger && idx.Category != CatUnknown {
		tc.ctx.Report.Errorf(diag.EInvalidOperandType, n.Index.Pos(), "array index must be integer, got %s", idx)
	}
	if base.Category == CatArray && base.Element != nil {
		return *base.Element
	}
	return Unknown
}

func (tc *typeChecker) classifyCall(sc *scope, n *ast.CallExpr) Type {
	for _, a := range n.Args {
		tc.typeOf(sc, a)
	}
	ident, ok := n.Callee.(*ast.Identifier)
	if !ok {
		return Unknown
	}
	fn, ok := sc.functions[ident.Name]
	if !ok || fn.ReturnType == nil {
		return Unknown
	}
	return categoryOfTypeNode(tc.ctx, fn.ReturnType)
}

// categoryOfTypeNode maps a type node to its Type. ctx may be nil when
// called before Phase 2 has resolved anything (newScope's parameter
// pass); user-defined references are then left Unknown.
func categoryOfTypeNode(ctx *Context, t ast.TypeNode) Type {
	switch n := t.(type) {
	case *ast.PrimitiveType:
		return Integer
	case *ast.BitfieldType:
		return Bitfield
	case *ast.BoolType:
		return Boolean
	case *ast.StringType:
		return String
	case *ast.ArrayType:
		elem := categoryOfTypeNode(ctx, n.Element)
		return Type{Category: CatArray, Element: &elem}
	case *ast.QualifiedName:
		return resolvedCategory(ctx, n)
	case *ast.TypeInstantiation:
		return resolvedCategory(ctx, n)
	}
	return Unknown
}

func resolvedCategory(ctx *Context, site ast.Node) Type {
	if ctx == nil {
		return Unknown
	}
	sym, ok := ctx.Resolved[site]
	if !ok {
		return Unknown
	}
	return symbolCategory(ctx, sym)
}

func symbolCategory(ctx *Context, sym *Symbol) Type {
	switch sym.Kind {
	case SymStruct:
		return Type{Category: CatUser, Struct: sym}
	case SymUnion, SymChoice:
		return Type{Category: CatUser}
	case SymEnum:
		return Integer
	case SymSubtype:
		return categoryOfTypeNode(ctx, sym.Decl.(*ast.SubtypeDecl).Base)
	case SymTypeAlias:
		return categoryOfTypeNode(ctx, sym.Decl.(*ast.TypeAliasDecl).Target)
	}
	return Unknown
}

// structFieldTypes lazily computes and caches decl's immediate field-name
// -> Type map, used to type `x.f` field access.
func (c *Context) structFieldTypes(decl *ast.StructDecl) map[string]Type {
	if m, ok := c.fieldTypeCache[decl]; ok {
		return m
	}
	m := make(map[string]Type)
	for _, item := range decl.Body {
		if fd, ok := item.(*ast.FieldDef); ok {
			m[fd.Name] = categoryOfTypeNode(c, fd.Type)
		}
	}
	c.fieldTypeCache[decl] = m
	return m
}
