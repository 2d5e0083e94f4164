package ast

import "testing"

func TestQualifiedNameString(t *testing.T) {
	q := &QualifiedName{Parts: []string{"a", "b", "c"}}
	if got := q.String(); got != "a.b.c" {
		t.Errorf("got %q", got)
	}
}

func TestModulePackageName(t *testing.T) {
	m := &Module{}
	if got := m.PackageName(); got != "" {
		t.Errorf("expected empty package name, got %q", got)
	}
	m.Package = &PackageDecl{Parts: []string{"foo", "bar"}}
	if got := m.PackageName(); got != "foo.bar" {
		t.Errorf("got %q", got)
	}
}

func TestBinaryOpClassification(t *testing.T) {
	if !BinAdd.IsArithmetic() || BinAdd.IsComparison() || BinAdd.IsBitwise() || BinAdd.IsLogical() {
		t.Error("BinAdd misclassified")
	}
	if !BinEq.IsComparison() {
		t.Error("BinEq should be a comparison operator")
	}
	if !BinShl.IsBitwise() {
		t.Error("BinShl should be bitwise")
	}
	if !BinLogAnd.IsLogical() {
		t.Error("BinLogAnd should be logical")
	}
}

func TestSelectorKindString(t *testing.T) {
	cases := map[SelectorKind]string{
		SelectorExact: "exact", SelectorGE: ">=", SelectorGT: ">",
		SelectorLE: "<=", SelectorLT: "<", SelectorNE: "!=",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%v: got %q, want %q", k, got, want)
		}
	}
}

func TestNodePosPropagation(t *testing.T) {
	pos := Position{File: "x.ds", Line: 3, Column: 5}
	var e Expr = &IntegerLiteral{Position: pos, Value: 1}
	if e.Pos() != pos {
		t.Errorf("got %+v, want %+v", e.Pos(), pos)
	}
}
