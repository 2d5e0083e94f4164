// Package ast defines the abstract syntax tree produced by the parser for
// DataScript schema source. Every node family is a tagged variant
// expressed as a Go interface with an unexported marker method, favoring
// exhaustive type switches over inheritance.
package ast

import "github.com/devbrain/datascript/internal/token"

// Position re-exports token.Position so callers only need to import this
// package when walking the tree.
type Position = token.Position

// Node is the base interface implemented by every AST node.
type Node interface {
	Pos() Position
}

// Expr is a tagged variant over every expression form.
type Expr interface {
	Node
	exprNode()
}

// TypeNode is a tagged variant over every type form.
type TypeNode interface {
	Node
	typeNode()
}

// Stmt is a tagged variant over function-body statements.
type Stmt interface {
	Node
	stmtNode()
}

// BodyItem is a tagged variant over struct/union/choice body members: a
// field, a label or alignment directive, a member function, or an inline
// union/struct field awaiting desugaring.
type BodyItem interface {
	Node
	bodyItemNode()
}

// Decl is a tagged variant over top-level declarations.
type Decl interface {
	Node
	declNode()
}
