package semantic

import (
	"math"

	"github.com/devbrain/datascript/internal/ast"
	"github.com/devbrain/datascript/internal/diag"
)

// Phase4Constants evaluates every expression that must be statically
// known: constant definitions, enum item values (auto-incrementing an
// omitted value from the previous item plus one, starting at 0), array
// size expressions, bitfield widths, and alignment-directive arguments.
// It also evaluates field guards and constraints, union case conditions,
// constraint declarations, and subtype constraints, so Phase 6 can see the
// ones that reduce to a constant. An array size, label, guard, or
// condition that names a field or parameter is left unevaluated without a
// diagnostic. Integer arithmetic is signed 64-bit with overflow/underflow and
// division/modulo-by-zero detection; a circular reference between
// constants is an error rather than a stack overflow.
type Phase4Constants struct{}

func (Phase4Constants) Name() string { return "constants" }

func (Phase4Constants) Run(ctx *Context) {
	for _, lm := range ctx.AllModules() {
		ev := &evaluator{ctx: ctx, module: lm.Module, overlay: wildcardOverlay(ctx, lm), visiting: make(map[*ast.ConstantDecl]bool)}
		ev.evalModule()
	}
}

type evaluator struct {
	ctx      *Context
	module   *ast.Module
	overlay  map[string][]*Symbol
	visiting map[*ast.ConstantDecl]bool
	// runtime is set while evaluating an expression that may name a field
	// or parameter; an unknown identifier then reports nothing.
	runtime bool
}

func (ev *evaluator) evalModule() {
	for _, c := range ev.module.Constants {
		ev.evalConstant(c)
	}
	for _, e := range ev.module.Enums {
		ev.evalEnum(e)
	}
	for _, c := range ev.module.Constraints {
		ev.evalIfPresent(c.Condition)
	}
	for _, s := range ev.module.Subtypes {
		ev.evalIfPresent(s.Constraint)
	}
	for _, s := range ev.module.Structs {
		ev.evalBody(s.Body)
	}
	for _, u := range ev.module.Unions {
		for _, c := range u.Cases {
			ev.evalIfPresent(c.Condition)
			ev.evalBody(c.Items)
		}
	}
	for _, c := range ev.module.Choices {
		for _, cc := range c.Cases {
			ev.evalBody(cc.Items)
		}
	}
}

func (ev *evaluator) evalBody(body []ast.BodyItem) {
	for _, item := range body {
		switch n := item.(type) {
		case *ast.FieldDef:
			if arr, ok := n.Type.(*ast.ArrayType); ok {
				ev.evalIfPresent(arr.Size)
				ev.evalIfPresent(arr.Min)
				ev.evalIfPresent(arr.Max)
			}
			if bf, ok := n.Type.(*ast.BitfieldType); ok {
				ev.eval(bf.Width)
			}
			ev.evalIfPresent(n.Guard)
			ev.evalIfPresent(n.Constraint)
		case *ast.AlignDirective:
			v, ok := ev.eval(n.Alignment)
			if !ok || v.IsBool {
				ev.ctx.Report.Errorf(diag.ENonConstantAlign, n.Pos(), "alignment must be a constant integer")
			}
		case *ast.LabelDirective:
			ev.evalIfPresent(n.Label)
		}
	}
}

// evalIfPresent evaluates e, if any, as an expression that may depend on
// run-time values (see evaluator.runtime).
func (ev *evaluator) evalIfPresent(e ast.Expr) {
	if e != nil {
		ev.runtime = true
		ev.eval(e)
		ev.runtime = false
	}
}

func (ev *evaluator) evalConstant(c *ast.ConstantDecl) (ConstValue, bool) {
	if v, ok := ev.ctx.ConstValues[c.Value]; ok {
		return v, true
	}
	if ev.visiting[c] {
		ev.ctx.Report.Errorf(diag.ECircularConstant, c.Pos(), "circular definition of constant %q", c.Name)
		return ConstValue{}, false
	}
	ev.visiting[c] = true
	defer delete(ev.visiting, c)

	v, ok := ev.eval(c.Value)
	if ok {
		ev.ctx.ConstValues[c.Value] = v
	}
	return v, ok
}

func (ev *evaluator) evalEnum(e *ast.EnumDecl) {
	var next int64
	for _, item := range e.Items {
		if item.Value != nil {
			if v, ok := ev.eval(item.Value); ok {
				next = v.Int
			}
		}
		ev.ctx.EnumItemValues[item] = next
		next++
	}
}

// eval evaluates and memoizes e's ConstValue.
func (ev *evaluator) eval(e ast.Expr) (ConstValue, bool) {
	if v, ok := ev.ctx.ConstValues[e]; ok {
		return v, true
	}
	v, ok := ev.evalExpr(e)
	if ok {
		ev.ctx.ConstValues[e] = v
	}
	return v, ok
}

func (ev *evaluator) evalExpr(e ast.Expr) (ConstValue, bool) {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return intValue(int64(n.Value)), true
	case *ast.BoolLiteral:
		return boolValue(n.Value), true
	case *ast.StringLiteral:
		return ConstValue{}, false // strings are not reduced to a ConstValue
	case *ast.Identifier:
		return ev.evalIdentifier(n)
	case *ast.UnaryExpr:
		return ev.evalUnary(n)
	case *ast.BinaryExpr:
		return ev.evalBinary(n)
	case *ast.TernaryExpr:
		cond, ok := ev.eval(n.Condition)
		if !ok {
			return ConstValue{}, false
		}
		if cond.Bool {
			return ev.eval(n.Then)
		}
		return ev.eval(n.Else)
	}
	return ConstValue{}, false
}

func (ev *evaluator) evalIdentifier(n *ast.Identifier) (ConstValue, bool) {
	for _, c := range ev.module.Constants {
		if c.Name == n.Name {
			ev.ctx.usedConstants[c] = true
			return ev.evalConstant(c)
		}
	}
	if candidates, ok := ev.overlay[n.Name]; ok && len(candidates) > 0 {
		if c, ok := candidates[0].Decl.(*ast.ConstantDecl); ok {
			ev.ctx.usedConstants[c] = true
			return ev.evalConstant(c)
		}
	}
	for _, e := range ev.module.Enums {
		for _, item := range e.Items {
			if item.Name == n.Name {
				if v, ok := ev.ctx.EnumItemValues[item]; ok {
					return intValue(v), true
				}
			}
		}
	}
	if !ev.runtime {
		ev.ctx.Report.Errorf(diag.EUndefinedConstant, n.Pos(), "undefined constant %q", n.Name)
	}
	return ConstValue{}, false
}

func (ev *evaluator) evalUnary(n *ast.UnaryExpr) (ConstValue, bool) {
	v, ok := ev.eval(n.Operand)
	if !ok {
		return ConstValue{}, false
	}
	switch n.Op {
	case ast.UnaryNeg:
		if v.Int == math.MinInt64 {
			ev.ctx.Report.Errorf(diag.EOverflow, n.Pos(), "negation of minimum signed 64-bit value overflows")
			return ConstValue{}, false
		}
		return intValue(-v.Int), true
	case ast.UnaryPos:
		return v, true
	case ast.UnaryBitNot:
		return intValue(^v.Int), true
	case ast.UnaryLogNot:
		return boolValue(!v.Bool), true
	}
	return ConstValue{}, false
}

func (ev *evaluator) evalBinary(n *ast.BinaryExpr) (ConstValue, bool) {
	lhs, lok := ev.eval(n.Left)
	rhs, rok := ev.eval(n.Right)
	if !lok || !rok {
		return ConstValue{}, false
	}

	switch n.Op {
	case ast.BinAdd:
		return ev.checkedAdd(n, lhs.Int, rhs.Int)
	case ast.BinSub:
		return ev.checkedSub(n, lhs.Int, rhs.Int)
	case ast.BinMul:
		return ev.checkedMul(n, lhs.Int, rhs.Int)
	case ast.BinDiv:
		if rhs.Int == 0 {
			ev.ctx.Report.Errorf(diag.EDivisionByZero, n.Pos(), "division by zero")
			return ConstValue{}, false
		}
		return intValue(lhs.Int / rhs.Int), true
	case ast.BinMod:
		if rhs.Int == 0 {
			ev.ctx.Report.Errorf(diag.EDivisionByZero, n.Pos(), "modulo by zero")
			return ConstValue{}, false
		}
		return intValue(lhs.Int % rhs.Int), true
	case ast.BinBitAnd:
		return intValue(lhs.Int & rhs.Int), true
	case ast.BinBitOr:
		return intValue(lhs.Int | rhs.Int), true
	case ast.BinBitXor:
		return intValue(lhs.Int ^ rhs.Int), true
	case ast.BinShl, ast.BinShr:
		if rhs.Int < 0 || rhs.Int > 63 {
			ev.ctx.Report.Errorf(diag.EOverflow, n.Pos(), "shift amount %d out of range [0, 63]", rhs.Int)
			return ConstValue{}, false
		}
		if n.Op == ast.BinShl {
			return intValue(lhs.Int << uint(rhs.Int)), true
		}
		return intValue(lhs.Int >> uint(rhs.Int)), true
	case ast.BinEq:
		return boolValue(equalConst(lhs, rhs)), true
	case ast.BinNe:
		return boolValue(!equalConst(lhs, rhs)), true
	case ast.BinLt:
		return boolValue(lhs.Int < rhs.Int), true
	case ast.BinGt:
		return boolValue(lhs.Int > rhs.Int), true
	case ast.BinLe:
		return boolValue(lhs.Int <= rhs.Int), true
	case ast.BinGe:
		return boolValue(lhs.Int >= rhs.Int), true
	case ast.BinLogAnd:
		return boolValue(lhs.Bool && rhs.Bool), true
	case ast.BinLogOr:
		return boolValue(lhs.Bool || rhs.Bool), true
	}
	return ConstValue{}, false
}

func equalConst(a, b ConstValue) bool {
	if a.IsBool || b.IsBool {
		return a.Bool == b.Bool
	}
	return a.Int == b.Int
}

func (ev *evaluator) checkedAdd(n *ast.BinaryExpr, a, b int64) (ConstValue, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		ev.ctx.Report.Errorf(diag.EOverflow, n.Pos(), "%d + %d overflows signed 64-bit", a, b)
		return ConstValue{}, false
	}
	return intValue(sum), true
}

func (ev *evaluator) checkedSub(n *ast.BinaryExpr, a, b int64) (ConstValue, bool) {
	diff := a - b
	if (b < 0 && diff < a) || (b > 0 && diff > a) {
		ev.ctx.Report.Errorf(diag.EOverflow, n.Pos(), "%d - %d overflows signed 64-bit", a, b)
		return ConstValue{}, false
	}
	return intValue(diff), true
}

func (ev *evaluator) checkedMul(n *ast.BinaryExpr, a, b int64) (ConstValue, bool) {
	if a == 0 || b == 0 {
		return intValue(0), true
	}
	if (a == math.MinInt64 && b == -1) || (b == math.MinInt64 && a == -1) {
		ev.ctx.Report.Errorf(diag.EOverflow, n.Pos(), "%d * %d overflows signed 64-bit", a, b)
		return ConstValue{}, false
	}
	product := a * b
	if product/b != a {
		ev.ctx.Report.Errorf(diag.EOverflow, n.Pos(), "%d * %d overflows signed 64-bit", a, b)
		return ConstValue{}, false
	}
	return intValue(product), true
}
