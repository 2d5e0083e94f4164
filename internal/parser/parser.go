// Package parser implements the DataScript recursive-descent/Pratt parser:
// it turns a token stream from internal/lexer into the internal/ast node
// tree for a single module, recording structured diagnostics instead of
// panicking on malformed input.
package parser

import (
	"github.com/devbrain/datascript/internal/ast"
	"github.com/devbrain/datascript/internal/diag"
	"github.com/devbrain/datascript/internal/lexer"
	"github.com/devbrain/datascript/internal/token"
)

// Operator precedence levels, lowest to highest.
const (
	_ int = iota
	lowest
	ternary
	logOr
	logAnd
	bitOr
	bitXor
	bitAnd
	equals
	relational
	shift
	additive
	multiplicative
	prefix
	postfix
)

var precedences = map[token.Type]int{
	token.QUESTION: ternary,
	token.OROR:     logOr,
	token.ANDAND:   logAnd,
	token.PIPE:     bitOr,
	token.CARET:    bitXor,
	token.AMP:      bitAnd,
	token.EQ:       equals,
	token.NE:       equals,
	token.LT:       relational,
	token.GT:       relational,
	token.LE:       relational,
	token.GE:       relational,
	token.SHL:      shift,
	token.SHR:      shift,
	token.PLUS:     additive,
	token.MINUS:    additive,
	token.ASTERISK: multiplicative,
	token.SLASH:    multiplicative,
	token.PERCENT:  multiplicative,
	token.DOT:      postfix,
	token.LPAREN:   postfix,
	token.LBRACK:   postfix,
}

var binaryOps = map[token.Type]ast.BinaryOp{
	token.PLUS: ast.BinAdd, token.MINUS: ast.BinSub,
	token.ASTERISK: ast.BinMul, token.SLASH: ast.BinDiv, token.PERCENT: ast.BinMod,
	token.EQ: ast.BinEq, token.NE: ast.BinNe,
	token.LT: ast.BinLt, token.GT: ast.BinGt, token.LE: ast.BinLe, token.GE: ast.BinGe,
	token.AMP: ast.BinBitAnd, token.PIPE: ast.BinBitOr, token.CARET: ast.BinBitXor,
	token.SHL: ast.BinShl, token.SHR: ast.BinShr,
	token.ANDAND: ast.BinLogAnd, token.OROR: ast.BinLogOr,
}

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(left ast.Expr) ast.Expr
)

// Parser holds parsing state for a single module/file.
type Parser struct {
	c      *cursor
	file   string
	report *diag.Report

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

// New creates a Parser reading from l, recording diagnostics into report.
func New(file string, l *lexer.Lexer, report *diag.Report) *Parser {
	p := &Parser{c: newCursor(l), file: file, report: report}

	p.prefixFns = map[token.Type]prefixParseFn{
		token.INT:     p.parseIntegerLiteral,
		token.TRUE:    p.parseBoolLiteral,
		token.FALSE:   p.parseBoolLiteral,
		token.STRING:  p.parseStringLiteral,
		token.IDENT:   p.parseIdentifier,
		token.MINUS:   p.parseUnaryExpr,
		token.PLUS:    p.parseUnaryExpr,
		token.TILDE:   p.parseUnaryExpr,
		token.BANG:    p.parseUnaryExpr,
		token.LPAREN:  p.parseGroupedExpr,
	}
	p.infixFns = map[token.Type]infixParseFn{
		token.PLUS: p.parseBinaryExpr, token.MINUS: p.parseBinaryExpr,
		token.ASTERISK: p.parseBinaryExpr, token.SLASH: p.parseBinaryExpr, token.PERCENT: p.parseBinaryExpr,
		token.EQ: p.parseBinaryExpr, token.NE: p.parseBinaryExpr,
		token.LT: p.parseBinaryExpr, token.GT: p.parseBinaryExpr, token.LE: p.parseBinaryExpr, token.GE: p.parseBinaryExpr,
		token.AMP: p.parseBinaryExpr, token.PIPE: p.parseBinaryExpr, token.CARET: p.parseBinaryExpr,
		token.SHL: p.parseBinaryExpr, token.SHR: p.parseBinaryExpr,
		token.ANDAND: p.parseBinaryExpr, token.OROR: p.parseBinaryExpr,
		token.QUESTION: p.parseTernaryExpr,
		token.DOT:      p.parseFieldAccessExpr,
		token.LPAREN:   p.parseCallExpr,
		token.LBRACK:   p.parseIndexExpr,
	}
	return p
}

func (p *Parser) pos() token.Position { return p.c.curToken.Pos }

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.c.peekToken.Type]; ok {
		return pr
	}
	return lowest
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.c.curToken.Type]; ok {
		return pr
	}
	return lowest
}

func (p *Parser) errorf(format string, args ...any) {
	p.report.Errorf(diag.EUnexpectedToken, p.pos(), format, args...)
}

// expect advances past curToken if it has type t, else records a
// diagnostic and leaves the cursor in place so the caller can attempt
// recovery rather than cascading further errors.
func (p *Parser) expect(t token.Type) bool {
	if p.c.curToken.Type == t {
		p.c.advance()
		return true
	}
	p.errorf("expected %s, got %s (%q)", t, p.c.curToken.Type, p.c.curToken.Literal)
	return false
}

func (p *Parser) curIs(t token.Type) bool  { return p.c.curToken.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.c.peekToken.Type == t }

// skipToSemiOrBrace discards tokens until a statement boundary, used for
// error recovery after a malformed declaration.
func (p *Parser) skipToSemiOrBrace() {
	for !p.curIs(token.SEMI) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		p.c.advance()
	}
	if p.curIs(token.SEMI) {
		p.c.advance()
	}
}

// ParseExpr parses a single expression at the lowest precedence; exported
// for reuse by declaration parsing that embeds bare expressions.
func (p *Parser) ParseExpr(precedence int) ast.Expr {
	prefix := p.prefixFns[p.c.curToken.Type]
	if prefix == nil {
		p.errorf("unexpected token %s (%q) in expression", p.c.curToken.Type, p.c.curToken.Literal)
		return nil
	}
	left := prefix()

	for !p.curIs(token.SEMI) && precedence < p.curPrecedence() {
		infix := p.infixFns[p.c.curToken.Type]
		if infix == nil {
			return left
		}
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIntegerLiteral() ast.Expr {
	pos, lit := p.pos(), p.c.curToken.Literal
	v, err := lexer.ParseIntLiteral(lit)
	if err != nil {
		p.report.Errorf(diag.EInvalidLiteral, pos, "invalid integer literal %q: %v", lit, err)
		v = 0
	}
	p.c.advance()
	return &ast.IntegerLiteral{Position: pos, Value: v, Raw: lit}
}

func (p *Parser) parseBoolLiteral() ast.Expr {
	pos := p.pos()
	v := p.curIs(token.TRUE)
	p.c.advance()
	return &ast.BoolLiteral{Position: pos, Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expr {
	pos, lit := p.pos(), p.c.curToken.Literal
	p.c.advance()
	return &ast.StringLiteral{Position: pos, Value: lit}
}

func (p *Parser) parseIdentifier() ast.Expr {
	pos, name := p.pos(), p.c.curToken.Literal
	p.c.advance()
	return &ast.Identifier{Position: pos, Name: name}
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	pos := p.pos()
	var op ast.UnaryOp
	switch p.c.curToken.Type {
	case token.MINUS:
		op = ast.UnaryNeg
	case token.PLUS:
		op = ast.UnaryPos
	case token.TILDE:
		op = ast.UnaryBitNot
	case token.BANG:
		op = ast.UnaryLogNot
	}
	p.c.advance()
	operand := p.ParseExpr(prefix)
	return &ast.UnaryExpr{Position: pos, Op: op, Operand: operand}
}

func (p *Parser) parseGroupedExpr() ast.Expr {
	p.c.advance() // consume '('
	e := p.ParseExpr(lowest)
	p.expect(token.RPAREN)
	return e
}

func (p *Parser) parseBinaryExpr(left ast.Expr) ast.Expr {
	pos := p.pos()
	op, ok := binaryOps[p.c.curToken.Type]
	if !ok {
		p.errorf("internal: %s is not a binary operator", p.c.curToken.Type)
		return left
	}
	prec := p.curPrecedence()
	p.c.advance()
	right := p.ParseExpr(prec)
	return &ast.BinaryExpr{Position: pos, Op: op, Left: left, Right: right}
}

func (p *Parser) parseTernaryExpr(cond ast.Expr) ast.Expr {
	pos := p.pos()
	p.c.advance() // consume '?'
	thenE := p.ParseExpr(lowest)
	p.expect(token.COLON)
	elseE := p.ParseExpr(ternary)
	return &ast.TernaryExpr{Position: pos, Condition: cond, Then: thenE, Else: elseE}
}

func (p *Parser) parseFieldAccessExpr(obj ast.Expr) ast.Expr {
	pos := p.pos()
	p.c.advance() // consume '.'
	if !p.curIs(token.IDENT) {
		p.errorf("expected identifier after '.', got %s", p.c.curToken.Type)
		return obj
	}
	field := p.c.curToken.Literal
	p.c.advance()
	return &ast.FieldAccessExpr{Position: pos, Object: obj, Field: field}
}

func (p *Parser) parseIndexExpr(arr ast.Expr) ast.Expr {
	pos := p.pos()
	p.c.advance() // consume '['
	idx := p.ParseExpr(lowest)
	p.expect(token.RBRACK)
	return &ast.IndexExpr{Position: pos, Array: arr, Index: idx}
}

func (p *Parser) parseCallExpr(callee ast.Expr) ast.Expr {
	pos := p.pos()
	args := p.parseExprList(token.LPAREN, token.RPAREN)
	return &ast.CallExpr{Position: pos, Callee: callee, Args: args}
}

// parseExprList parses a comma-separated, possibly empty expression list
// delimited by open/close, consuming both delimiters.
func (p *Parser) parseExprList(open, close token.Type) []ast.Expr {
	var args []ast.Expr
	if !p.expect(open) {
		return args
	}
	if p.curIs(close) {
		p.c.advance()
		return args
	}
	args = append(args, p.ParseExpr(lowest))
	for p.curIs(token.COMMA) {
		p.c.advance()
		args = append(args, p.ParseExpr(lowest))
	}
	p.expect(close)
	return args
}

// parseQualifiedName parses a dotted identifier path `a.b.c`.
func (p *Parser) parseQualifiedName() *ast.QualifiedName {
	pos := p.pos()
	var parts []string
	if !p.curIs(token.IDENT) {
		p.errorf("expected identifier, got %s", p.c.curToken.Type)
		return &ast.QualifiedName{Position: pos, Parts: []string{""}}
	}
	parts = append(parts, p.c.curToken.Literal)
	p.c.advance()
	for p.curIs(token.DOT) {
		p.c.advance()
		if !p.curIs(token.IDENT) {
			p.errorf("expected identifier after '.', got %s", p.c.curToken.Type)
			break
		}
		parts = append(parts, p.c.curToken.Literal)
		p.c.advance()
	}
	return &ast.QualifiedName{Position: pos, Parts: parts}
}

// identName consumes curToken as an IDENT and returns its literal,
// recording a diagnostic and returning "" on mismatch.
func (p *Parser) identName() string {
	if !p.curIs(token.IDENT) {
		p.errorf("expected identifier, got %s (%q)", p.c.curToken.Type, p.c.curToken.Literal)
		return ""
	}
	name := p.c.curToken.Literal
	p.c.advance()
	return name
}

