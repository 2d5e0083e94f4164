// Package ir builds the renderer-facing bundle from an analyzed module
// set: a flat list of entities where every
// cross-reference (to a type, a constant, a field, a parameter, or an
// enum item) has already been resolved to a bundle-local index or a
// tagged reference kind. A renderer walks the bundle without ever
// re-resolving a name.
package ir

// EntityKind distinguishes the seven top-level declaration shapes a
// bundle can carry.
type EntityKind int

const (
	EntConstant EntityKind = iota
	EntSubtype
	EntTypeAlias
	EntEnum
	EntStruct
	EntUnion
	EntChoice
)

func (k EntityKind) String() string {
	switch k {
	case EntConstant:
		return "constant"
	case EntSubtype:
		return "subtype"
	case EntTypeAlias:
		return "type_alias"
	case EntEnum:
		return "enum"
	case EntStruct:
		return "struct"
	case EntUnion:
		return "union"
	case EntChoice:
		return "choice"
	}
	return "unknown"
}

// Entity is one bundle member. Exactly one of the kind-specific payload
// fields is set, matching Kind.
type Entity struct {
	Kind    EntityKind
	Name    string
	Package string
	Doc     string

	Constant  *ConstantEntity
	Subtype   *SubtypeEntity
	TypeAlias *TypeAliasEntity
	Enum      *EnumEntity
	Struct    *StructEntity
	Union     *UnionEntity
	Choice    *ChoiceEntity
}

// Bundle is the complete output of the IR builder: every entity
// reachable from the main module, in the order the builder first reaches
// them. An entity takes its slot before the entities it references are
// built, so a referenced entity can appear after the entity that first
// references it; the order is not a dependency order.
type Bundle struct {
	Entities []*Entity
}

// ParamInfo is one declaration parameter, in declaration order; its
// position in this slice is what ParamRef indexes into.
type ParamInfo struct {
	Name string
	Type *TypeRef
}

// TypeRefKind distinguishes a reference to a built-in primitive shape
// from a reference to another bundle entity.
type TypeRefKind int

const (
	RefPrimitive TypeRefKind = iota
	RefBitfield
	RefBool
	RefString
	RefArray
	RefEntity
)

// PrimitiveRef describes a fixed-width integer: signedness, bit width,
// and declared byte order (the module/field default has already been
// resolved by the time the IR is built).
type PrimitiveRef struct {
	Signed    bool
	Bits      int
	BigEndian bool
}

// StringRef describes a UTF-8/16/32 string primitive.
type StringRef struct {
	Width     int // 8, 16, or 32
	BigEndian bool
}

// TypeRef is a type appearing in field, parameter, constant, or array
// element position, fully resolved: no name lookup remains for a
// renderer to perform.
type TypeRef struct {
	Kind TypeRefKind

	Primitive *PrimitiveRef // RefPrimitive
	String    *StringRef    // RefString
	BitWidth  *Expr         // RefBitfield; may be non-constant

	Element *TypeRef // RefArray
	Sizing  ArraySizing
	Size    *Expr // RefArray, ArraySizeFixed
	Min     *Expr // RefArray, ArraySizeRanged, optional
	Max     *Expr // RefArray, ArraySizeRanged

	EntityIndex int // RefEntity: bundle-local index of the referenced entity
}

// ArraySizing mirrors ast.ArraySizing without importing the ast package
// into the renderer's view of the IR.
type ArraySizing int

const (
	ArraySizeFixed ArraySizing = iota
	ArraySizeRanged
	ArraySizeUnsized
)

// Field is one member of a struct, union case, or choice case body.
type Field struct {
	Name       string
	Type       *TypeRef
	Offset     int64 // -1 when the field's offset is not statically known
	Guard      *Expr
	Constraint *Expr
	Default    *Expr
	Doc        string
}

// BodyEntryKind distinguishes the three things that can appear, in
// source order, inside a struct/union-case/choice-case body.
type BodyEntryKind int

const (
	BodyField BodyEntryKind = iota
	BodyLabel
	BodyAlign
)

// BodyEntry preserves the source interleaving of fields with label and
// alignment directives; the reader applies them in this order.
type BodyEntry struct {
	Kind        BodyEntryKind
	Field       *Field      // BodyField
	LabelOffset *Expr       // BodyLabel
	AlignTo     *Expr       // BodyAlign
}

// ConstantEntity is a resolved top-level constant: its declared type and
// its evaluated bit pattern (sign reinterpreted by the declared type).
// Poisoned is set when Phase 4 could not evaluate the constant's
// initializer (e.g. it overflowed); Value is then meaningless and
// renderers must skip emitting this constant rather than trust a 0.
type ConstantEntity struct {
	Type     *TypeRef
	Value    uint64
	Signed   bool
	Poisoned bool
}

// SubtypeEntity narrows a base type with an optional constraint
// expression evaluated with `this` bound to the subtype's own value.
type SubtypeEntity struct {
	Base       *TypeRef
	Constraint *Expr
}

// TypeAliasEntity is a bare rename with no added constraint.
type TypeAliasEntity struct {
	Target *TypeRef
}

// EnumItemInfo is one member of an enum, in declaration order.
type EnumItemInfo struct {
	Name  string
	Value uint64
}

// EnumEntity is an enumeration (or bitmask, when IsBitmask) over an
// integer base type.
type EnumEntity struct {
	Base      *TypeRef
	IsBitmask bool
	Items     []EnumItemInfo
}

// StructEntity is a sequential-field composite type.
type StructEntity struct {
	Params []ParamInfo
	Body   []*BodyEntry
}

// UnionCaseEntity is one alternative of a union.
type UnionCaseEntity struct {
	Name      string
	Condition *Expr // optional
	Body      []*BodyEntry
}

// UnionEntity is a set of same-offset alternatives, at most one of which
// applies to any given instance.
type UnionEntity struct {
	Params []ParamInfo
	Cases  []*UnionCaseEntity
}

// Discriminator is either read from the enclosing scope (External) or
// declared inline at the choice's own start (Inline).
type Discriminator struct {
	External *Expr
	Inline   *TypeRef
}

// ChoiceCaseEntity is one branch of a choice, with its selector already
// resolved to a kind plus operand expressions; IsDefault cases carry
// neither Values nor RangeBound and are always emitted last.
type ChoiceCaseEntity struct {
	IsDefault  bool
	Kind       SelectorKind
	Values     []*Expr // SelectorExact
	RangeBound *Expr   // any other kind
	FieldName  string
	Body       []*BodyEntry
}

// SelectorKind mirrors ast.SelectorKind for the IR's own use.
type SelectorKind int

const (
	SelectorExact SelectorKind = iota
	SelectorGE
	SelectorGT
	SelectorLE
	SelectorLT
	SelectorNE
)

// ChoiceEntity is a tagged union keyed by an integer discriminator.
type ChoiceEntity struct {
	Params        []ParamInfo
	Discriminator Discriminator
	Cases         []*ChoiceCaseEntity // source order, default (if any) moved last
}
