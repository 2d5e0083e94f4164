// Package keywords holds the reserved-word lists of every code-generation
// target language DataScript supports, used by semantic Phase 1 to warn
// when a schema identifier collides with a keyword in one of them.
package keywords

import "sort"

// Registry maps a target language name to its reserved-word set.
type Registry struct {
	languages map[string]map[string]bool
}

// Default returns the built-in registry covering the target languages
// named in the glossary. Callers needing a
// custom or extended set can build their own Registry with New.
func Default() *Registry {
	return New(map[string][]string{
		"c": {
			"auto", "break", "case", "char", "const", "continue", "default",
			"do", "double", "else", "enum", "extern", "float", "for", "goto",
			"if", "int", "long", "register", "return", "short", "signed",
			"sizeof", "static", "struct", "switch", "typedef", "union",
			"unsigned", "void", "volatile", "while",
		},
		"cpp": {
			"alignas", "alignof", "and", "asm", "auto", "bool", "break",
			"case", "catch", "char", "class", "const", "constexpr",
			"continue", "decltype", "default", "delete", "do", "double",
			"dynamic_cast", "else", "enum", "explicit", "export", "extern",
			"false", "float", "for", "friend", "goto", "if", "inline",
			"int", "long", "mutable", "namespace", "new", "noexcept",
			"nullptr", "operator", "or", "private", "protected", "public",
			"register", "reinterpret_cast", "return", "short", "signed",
			"sizeof", "static", "static_assert", "struct", "switch",
			"template", "this", "throw", "true", "try", "typedef",
			"typeid", "typename", "union", "unsigned", "using", "virtual",
			"void", "volatile", "while",
		},
		"python": {
			"False", "None", "True", "and", "as", "assert", "async",
			"await", "break", "class", "continue", "def", "del", "elif",
			"else", "except", "finally", "for", "from", "global", "if",
			"import", "in", "is", "lambda", "nonlocal", "not", "or",
			"pass", "raise", "return", "try", "while", "with", "yield",
		},
		"go": {
			"break", "case", "chan", "const", "continue", "default",
			"defer", "else", "fallthrough", "for", "func", "go", "goto",
			"if", "import", "interface", "map", "package", "range",
			"return", "select", "struct", "switch", "type", "var",
		},
		"rust": {
			"as", "break", "const", "continue", "crate", "else", "enum",
			"extern", "false", "fn", "for", "if", "impl", "in", "let",
			"loop", "match", "mod", "move", "mut", "pub", "ref", "return",
			"self", "Self", "static", "struct", "super", "trait", "true",
			"type", "unsafe", "use", "where", "while",
		},
		"java": {
			"abstract", "assert", "boolean", "break", "byte", "case",
			"catch", "char", "class", "const", "continue", "default",
			"do", "double", "else", "enum", "extends", "final", "finally",
			"float", "for", "goto", "if", "implements", "import",
			"instanceof", "int", "interface", "long", "native", "new",
			"package", "private", "protected", "public", "return",
			"short", "static", "strictfp", "super", "switch",
			"synchronized", "this", "throw", "throws", "transient", "try",
			"void", "volatile", "while",
		},
	})
}

// New builds a Registry from an explicit language->reserved-words map.
func New(langs map[string][]string) *Registry {
	r := &Registry{languages: make(map[string]map[string]bool, len(langs))}
	for lang, words := range langs {
		set := make(map[string]bool, len(words))
		for _, w := range words {
			set[w] = true
		}
		r.languages[lang] = set
	}
	return r
}

// KnownLanguages returns every registered target-language name, sorted.
func (r *Registry) KnownLanguages() []string {
	out := make([]string, 0, len(r.languages))
	for lang := range r.languages {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// IsKnownLanguage reports whether lang is registered.
func (r *Registry) IsKnownLanguage(lang string) bool {
	_, ok := r.languages[lang]
	return ok
}

// CollidesWith reports whether ident is a reserved word in the named
// target language. It returns false (no collision reported) for an
// unrecognized language; callers are expected to have already validated
// the language name against IsKnownLanguage and raised
// E_UNKNOWN_TARGET_LANGUAGE separately.
func (r *Registry) CollidesWith(lang, ident string) bool {
	set, ok := r.languages[lang]
	if !ok {
		return false
	}
	return set[ident]
}

// CollidingLanguages returns, in sorted order, every registered language
// whose reserved-word set contains ident.
func (r *Registry) CollidingLanguages(ident string) []string {
	var out []string
	for lang, set := range r.languages {
		if set[ident] {
			out = append(out, lang)
		}
	}
	sort.Strings(out)
	return out
}

// SanitizedSuggestion returns a mechanically-safe alternative identifier
// for a colliding name, appended with a trailing underscore. Used as a
// W_KEYWORD_COLLISION diagnostic suggestion.
func SanitizedSuggestion(ident string) string {
	return ident + "_"
}
