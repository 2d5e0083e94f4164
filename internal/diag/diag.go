// Package diag defines the structured diagnostic record used by every
// stage of the pipeline and the Report that accumulates them.
// Diagnostics never cause control flow to abort a phase early; a phase
// that hits a poisoned node skips it and continues on its siblings
//.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/devbrain/datascript/internal/token"
)

// Level classifies a Diagnostic's severity.
type Level int

const (
	Error Level = iota
	Warning
	Note
)

func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	}
	return "unknown"
}

// Stable diagnostic codes. Kept as named constants rather than string
// literals at each call site so a typo in a code is a compile error, not a
// silent miss in a golden-output test.
const (
	// Lexical
	EInvalidLiteral    = "E_INVALID_LITERAL"
	EIdentifierTooLong = "E_IDENTIFIER_TOO_LONG"
	EStringTooLong     = "E_STRING_TOO_LONG"
	ENestingTooDeep    = "E_NESTING_TOO_DEEP"

	// Syntactic
	EUnexpectedToken  = "E_UNEXPECTED_TOKEN"
	EMissingSemicolon = "E_MISSING_SEMICOLON"

	// Import
	EImportNotFound = "E_IMPORT_NOT_FOUND"
	ECircularImport = "E_CIRCULAR_IMPORT"

	// Symbol
	EDuplicateDefinition = "E_DUPLICATE_DEFINITION"
	EUndefinedType       = "E_UNDEFINED_TYPE"
	EUndefinedConstant   = "E_UNDEFINED_CONSTANT"
	EUndefinedPackage    = "E_UNDEFINED_PACKAGE"

	// Type
	ETypeMismatch          = "E_TYPE_MISMATCH"
	EInvalidOperandType    = "E_INVALID_OPERAND_TYPE"
	EIncompatibleTypes     = "E_INCOMPATIBLE_TYPES"
	EParamCountMismatch    = "E_PARAM_COUNT_MISMATCH"

	// Constant evaluation
	EOverflow         = "E_OVERFLOW"
	EUnderflow        = "E_UNDERFLOW"
	EDivisionByZero   = "E_DIVISION_BY_ZERO"
	ECircularConstant = "E_CIRCULAR_CONSTANT"
	ENonConstantAlign = "E4001"

	// Keyword / wildcard
	WKeywordCollision = "W_KEYWORD_COLLISION"
	WWildcardConflict = "W_WILDCARD_CONFLICT"

	// Target language
	EUnknownTargetLanguage = "E_UNKNOWN_TARGET_LANGUAGE"

	// Constraint/condition validation (Phase 6) and reachability (Phase 7)
	WAlwaysTrue       = "W_ALWAYS_TRUE"
	WAlwaysFalse      = "W_ALWAYS_FALSE"
	WUnusedImport     = "W_UNUSED_IMPORT"
	WUnusedConstant   = "W_UNUSED_CONSTANT"
	EDefaultNotEncodable = "E_DEFAULT_NOT_ENCODABLE"
)

// RelatedLocation annotates a Diagnostic with a secondary position and
// message, e.g. pointing at a prior definition for E_DUPLICATE_DEFINITION.
type RelatedLocation struct {
	Pos     token.Position
	Message string
}

// Diagnostic is one error, warning, or note.
type Diagnostic struct {
	Level      Level
	Code       string
	Pos        token.Position
	Message    string
	Related    *RelatedLocation
	Suggestion string
}

// String renders "filename:line:column: level[code]: message" plus an
// optional related-location line and suggestion line.
func (d Diagnostic) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s[%s]: %s", d.Pos.String(), d.Level.String(), d.Code, d.Message)
	if d.Related != nil {
		fmt.Fprintf(&sb, "\n%s: note: %s", d.Related.Pos.String(), d.Related.Message)
	}
	if d.Suggestion != "" {
		fmt.Fprintf(&sb, "\n  suggestion: %s", d.Suggestion)
	}
	return sb.String()
}

// Report accumulates diagnostics across the whole pipeline. Phases never
// return early on finding an error; they push to Report and keep going
//.
type Report struct {
	diags            []Diagnostic
	WarningsAsErrors bool
	Suppressed       map[string]bool
}

// NewReport creates an empty Report.
func NewReport() *Report {
	return &Report{Suppressed: make(map[string]bool)}
}

func (r *Report) add(d Diagnostic) {
	if r.Suppressed[d.Code] {
		return
	}
	if r.WarningsAsErrors && d.Level == Warning {
		d.Level = Error
	}
	r.diags = append(r.diags, d)
}

// Errorf records an error-level diagnostic.
func (r *Report) Errorf(code string, pos token.Position, format string, args ...any) {
	r.add(Diagnostic{Level: Error, Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Warnf records a warning-level diagnostic.
func (r *Report) Warnf(code string, pos token.Position, format string, args ...any) {
	r.add(Diagnostic{Level: Warning, Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// ErrorWithRelated records an error with a secondary related location,
// e.g. a duplicate-definition error pointing back at the original.
func (r *Report) ErrorWithRelated(code string, pos token.Position, message string, relatedPos token.Position, relatedMsg string) {
	r.add(Diagnostic{
		Level: Error, Code: code, Pos: pos, Message: message,
		Related: &RelatedLocation{Pos: relatedPos, Message: relatedMsg},
	})
}

// WarnWithSuggestion records a warning with a one-line suggestion, e.g.
// W_KEYWORD_COLLISION's sanitized identifier form.
func (r *Report) WarnWithSuggestion(code string, pos token.Position, message, suggestion string) {
	r.add(Diagnostic{Level: Warning, Code: code, Pos: pos, Message: message, Suggestion: suggestion})
}

// Add appends an already-built Diagnostic.
func (r *Report) Add(d Diagnostic) { r.add(d) }

// All returns every diagnostic sorted by source position (file, line,
// column); diagnostics at the same position keep the order they were
// recorded in. The sort does not group diagnostics by the phase that
// reported them.
func (r *Report) All() []Diagnostic {
	out := make([]Diagnostic, len(r.diags))
	copy(out, r.diags)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Pos.Less(out[j].Pos)
	})
	return out
}

// HasErrors reports whether any error-level diagnostic was recorded
// (after warnings-as-errors promotion).
func (r *Report) HasErrors() bool {
	for _, d := range r.diags {
		if d.Level == Error {
			return true
		}
	}
	return false
}

// Count returns the total number of diagnostics recorded, across all
// levels.
func (r *Report) Count() int { return len(r.diags) }
