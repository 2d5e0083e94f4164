package ast

// FieldDef is a single field inside a struct, union case, or choice case
// body: a type, a name, and optional guard/constraint/default/docstring
//.
type FieldDef struct {
	Position   Position
	Type       TypeNode
	Name       string
	Guard      Expr // optional "if <expr>"
	Constraint Expr // optional inline "field: <expr>"
	Default    Expr // optional default value
	Doc        string
}

func (n *FieldDef) Pos() Position { return n.Position }
func (*FieldDef) bodyItemNode()   {}

// LabelDirective is a standalone expression whose value is an absolute
// byte offset the reader seeks to before the next field.
type LabelDirective struct {
	Position Position
	Label    Expr
}

func (n *LabelDirective) Pos() Position { return n.Position }
func (*LabelDirective) bodyItemNode()   {}

// AlignDirective is `align(N):` — the reader advances to the next
// N-aligned offset relative to the start of the buffer.
type AlignDirective struct {
	Position  Position
	Alignment Expr
}

func (n *AlignDirective) Pos() Position { return n.Position }
func (*AlignDirective) bodyItemNode()   {}

// InlineUnionField is `union { cases... } name;` written directly inside a
// struct/union/choice body. Phase 0 lifts it to a synthesized
// top-level UnionDecl and replaces it with an equivalent FieldDef.
type InlineUnionField struct {
	Position   Position
	Cases      []*UnionCase
	Name       string
	Guard      Expr
	Constraint Expr
	Doc        string
}

func (n *InlineUnionField) Pos() Position { return n.Position }
func (*InlineUnionField) bodyItemNode()   {}

// InlineStructField is `{ items... } name;` written directly inside a
// struct/union/choice body. Phase 0 lifts it to a synthesized top-level
// StructDecl and replaces it with an equivalent FieldDef.
type InlineStructField struct {
	Position   Position
	Body       []BodyItem
	Name       string
	Guard      Expr
	Constraint Expr
	Doc        string
}

func (n *InlineStructField) Pos() Position { return n.Position }
func (*InlineStructField) bodyItemNode()   {}

// UnionCase is one alternative of a union: either a single typed field
// (Items has length 1, desugared from `<type> name [: cond];`) or an
// anonymous block `{ items... } name [: cond];` (Items has length > 1).
type UnionCase struct {
	Position    Position
	CaseName    string
	Items       []BodyItem
	Condition   Expr // optional
	IsAnonymous bool
	Doc         string
}

func (n *UnionCase) Pos() Position { return n.Position }

// UnionDecl is `union Name(params) { cases... };`.
type UnionDecl struct {
	Position Position
	Name     string
	Params   []*Param
	Cases    []*UnionCase
	Doc      string
}

func (n *UnionDecl) Pos() Position { return n.Position }
func (*UnionDecl) declNode()       {}

// SelectorKind is the comparator that matches a choice case against the
// discriminator value.
type SelectorKind int

const (
	SelectorExact SelectorKind = iota
	SelectorGE
	SelectorGT
	SelectorLE
	SelectorLT
	SelectorNE
)

func (k SelectorKind) String() string {
	switch k {
	case SelectorExact:
		return "exact"
	case SelectorGE:
		return ">="
	case SelectorGT:
		return ">"
	case SelectorLE:
		return "<="
	case SelectorLT:
		return "<"
	case SelectorNE:
		return "!="
	}
	return "?"
}

// ChoiceCase is one branch of a choice: `case expr[, expr]*:`,
// `case >= expr:` (and the other four comparators), or `default:`.
// Exprs holds the comma-separated exact-match values when Kind ==
// SelectorExact; RangeBound holds the single comparator operand
// otherwise. Neither is set when IsDefault.
type ChoiceCase struct {
	Position    Position
	IsDefault   bool
	Kind        SelectorKind
	Exprs       []Expr
	RangeBound  Expr
	FieldName   string
	Items       []BodyItem
	IsAnonymous bool
}

func (n *ChoiceCase) Pos() Position { return n.Position }

// ChoiceDecl is a tagged union over an integer discriminator. Either
// Selector (an expression read from the enclosing scope, "on <expr>") or
// DiscriminatorType (an inline type read at the choice's start,
// ": <type>") is set, never both.
type ChoiceDecl struct {
	Position          Position
	Name              string
	Params            []*Param
	Selector          Expr
	DiscriminatorType TypeNode
	Cases             []*ChoiceCase
	Doc               string
}

func (n *ChoiceDecl) Pos() Position { return n.Position }
func (*ChoiceDecl) declNode()       {}
