package semantic

import "github.com/devbrain/datascript/internal/ast"

// SymbolKind classifies what a Symbol names.
type SymbolKind int

const (
	SymConstant SymbolKind = iota
	SymStruct
	SymUnion
	SymChoice
	SymEnum
	SymSubtype
	SymTypeAlias
	SymConstraint
)

func (k SymbolKind) String() string {
	switch k {
	case SymConstant:
		return "constant"
	case SymStruct:
		return "struct"
	case SymUnion:
		return "union"
	case SymChoice:
		return "choice"
	case SymEnum:
		return "enum"
	case SymSubtype:
		return "subtype"
	case SymTypeAlias:
		return "type alias"
	case SymConstraint:
		return "constraint"
	}
	return "unknown"
}

// Symbol is one entry in a module's symbol table: a declared name, its
// kind, the declaring node (for position and further inspection), and the
// module it was declared in.
type Symbol struct {
	Name   string
	Kind   SymbolKind
	Decl   ast.Decl
	Module *ast.Module
}

// SymbolTable holds every top-level declaration of a single module, keyed
// by name. DataScript identifiers are case-sensitive, so lookups are
// exact-match.
type SymbolTable struct {
	entries map[string]*Symbol
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{entries: make(map[string]*Symbol)}
}

// Define registers a symbol, returning the previously-defined symbol of
// the same name (if any) so the caller can raise E_DUPLICATE_DEFINITION
// with a related-location pointer.
func (t *SymbolTable) Define(sym *Symbol) *Symbol {
	prev := t.entries[sym.Name]
	t.entries[sym.Name] = sym
	return prev
}

// Lookup finds a symbol by exact name within this table only.
func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	s, ok := t.entries[name]
	return s, ok
}

// All returns every symbol in the table, in no particular order.
func (t *SymbolTable) All() []*Symbol {
	out := make([]*Symbol, 0, len(t.entries))
	for _, s := range t.entries {
		out = append(out, s)
	}
	return out
}

// Duplicate records a redefinition found while collecting a module's
// symbols: New shadows Prev, both under the same name.
type Duplicate struct {
	Prev *Symbol
	New  *Symbol
}

// CollectModuleSymbols builds a SymbolTable from every top-level
// declaration in m, keeping the first definition of any repeated name.
// It does not itself raise diagnostics; Phase 1 reports each returned
// Duplicate as E_DUPLICATE_DEFINITION.
func CollectModuleSymbols(m *ast.Module) (*SymbolTable, []Duplicate) {
	t := NewSymbolTable()
	var duplicates []Duplicate

	define := func(name string, kind SymbolKind, decl ast.Decl) {
		sym := &Symbol{Name: name, Kind: kind, Decl: decl, Module: m}
		if prev, ok := t.Lookup(name); ok {
			duplicates = append(duplicates, Duplicate{Prev: prev, New: sym})
			return
		}
		t.Define(sym)
	}

	for _, c := range m.Constants {
		define(c.Name, SymConstant, c)
	}
	for _, s := range m.Structs {
		define(s.Name, SymStruct, s)
	}
	for _, u := range m.Unions {
		define(u.Name, SymUnion, u)
	}
	for _, c := range m.Choices {
		define(c.Name, SymChoice, c)
	}
	for _, e := range m.Enums {
		define(e.Name, SymEnum, e)
	}
	for _, s := range m.Subtypes {
		define(s.Name, SymSubtype, s)
	}
	for _, a := range m.TypeAliases {
		define(a.Name, SymTypeAlias, a)
	}
	for _, c := range m.Constraints {
		define(c.Name, SymConstraint, c)
	}

	return t, duplicates
}
