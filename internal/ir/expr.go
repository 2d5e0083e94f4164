package ir

import "github.com/devbrain/datascript/internal/ast"

// ExprKind tags an IR expression node. Identifier references are split
// by what they name so a renderer never has to re-resolve a string.
type ExprKind int

const (
	ExprIntLit ExprKind = iota
	ExprBoolLit
	ExprStringLit
	ExprFieldRef
	ExprConstRef
	ExprParamRef
	ExprEnumItemRef
	ExprUnary
	ExprBinary
	ExprTernary
	ExprFieldAccess
	ExprIndex
	ExprCall
)

// Expr is a rebound expression tree: every *ast.Identifier site has
// already been classified into one of FieldRef/ConstRef/ParamRef/
// EnumItemRef, and every operator is carried as its source spelling
// (renderers map that string to their own target-language operator).
type Expr struct {
	Kind ExprKind

	IntValue    int64
	BoolValue   bool
	StringValue string

	FieldName string // ExprFieldRef: name within the immediate composite

	ConstIndex int // ExprConstRef: bundle index of the constant entity

	ParamIndex int // ExprParamRef: position in the enclosing decl's params
	ParamName  string

	EnumIndex    int // ExprEnumItemRef: bundle index of the enum entity
	EnumItemName string

	Op      string // ExprUnary / ExprBinary
	Operand *Expr  // ExprUnary
	Left    *Expr  // ExprBinary
	Right   *Expr  // ExprBinary

	Cond *Expr // ExprTernary
	Then *Expr // ExprTernary
	Else *Expr // ExprTernary

	Object *Expr  // ExprFieldAccess
	Field  string // ExprFieldAccess

	Array *Expr // ExprIndex
	Index *Expr // ExprIndex

	Callee string  // ExprCall
	Args   []*Expr // ExprCall
}

// exprScope is the name resolution context threaded through rebind:
// fields of the immediate composite and parameters of its enclosing
// declaration take priority over module-level constants and enum items,
// mirroring how a reader would look a bare name up at the point of use.
type exprScope struct {
	fields []string
	params []string
}

func (s exprScope) fieldIndex(name string) (int, bool) {
	for i, f := range s.fields {
		if f == name {
			return i, true
		}
	}
	return 0, false
}

func (s exprScope) paramIndex(name string) (int, bool) {
	for i, p := range s.params {
		if p == name {
			return i, true
		}
	}
	return 0, false
}

// rebind converts a parsed expression tree into its IR form. b supplies
// the module-level constant/enum lookup (see builder.go); scope supplies
// the field and parameter names visible at this point in the body.
func (b *builder) rebind(e ast.Expr, scope exprScope, module *ast.Module) *Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return &Expr{Kind: ExprIntLit, IntValue: int64(n.Value)}
	case *ast.BoolLiteral:
		return &Expr{Kind: ExprBoolLit, BoolValue: n.Value}
	case *ast.StringLiteral:
		return &Expr{Kind: ExprStringLit, StringValue: n.Value}
	case *ast.Identifier:
		return b.rebindIdentifier(n, scope, module)
	case *ast.UnaryExpr:
		return &Expr{Kind: ExprUnary, Op: n.Op.String(), Operand: b.rebind(n.Operand, scope, module)}
	case *ast.BinaryExpr:
		return &Expr{Kind: ExprBinary, Op: n.Op.String(),
			Left:  b.rebind(n.Left, scope, module),
			Right: b.rebind(n.Right, scope, module)}
	case *ast.TernaryExpr:
		return &Expr{Kind: ExprTernary,
			Cond: b.rebind(n.Condition, scope, module),
			Then: b.rebind(n.Then, scope, module),
			Else: b.rebind(n.Else, scope, module)}
	case *ast.FieldAccessExpr:
		return &Expr{Kind: ExprFieldAccess, Object: b.rebind(n.Object, scope, module), Field: n.Field}
	case *ast.IndexExpr:
		return &Expr{Kind: ExprIndex, Array: b.rebind(n.Array, scope, module), Index: b.rebind(n.Index, scope, module)}
	case *ast.CallExpr:
		callee := ""
		if id, ok := n.Callee.(*ast.Identifier); ok {
			callee = id.Name
		}
		args := make([]*Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = b.rebind(a, scope, module)
		}
		return &Expr{Kind: ExprCall, Callee: callee, Args: args}
	}
	return nil
}

// rebindIdentifier classifies a bare name in priority order: a field of
// the immediate composite, a parameter of its enclosing declaration, a
// same-module constant, then a same-module enum item. Cross-module
// wildcard-imported names are left unresolved (ExprFieldRef with the
// bare name) since the IR's consumer only needs same-module rebinding to
// drive a reader; a renderer encountering an unresolved name for a
// cross-module identifier falls back to treating it as a field lookup.
func (b *builder) rebindIdentifier(n *ast.Identifier, scope exprScope, module *ast.Module) *Expr {
	if _, ok := scope.fieldIndex(n.Name); ok {
		return &Expr{Kind: ExprFieldRef, FieldName: n.Name}
	}
	if idx, ok := scope.paramIndex(n.Name); ok {
		return &Expr{Kind: ExprParamRef, ParamIndex: idx, ParamName: n.Name}
	}
	for _, c := range module.Constants {
		if c.Name == n.Name {
			return &Expr{Kind: ExprConstRef, ConstIndex: b.entityIndex(c, module)}
		}
	}
	for _, en := range module.Enums {
		for _, item := range en.Items {
			if item.Name == n.Name {
				return &Expr{Kind: ExprEnumItemRef, EnumIndex: b.entityIndex(en, module), EnumItemName: item.Name}
			}
		}
	}
	return &Expr{Kind: ExprFieldRef, FieldName: n.Name}
}
