package parser

import (
	"github.com/devbrain/datascript/internal/ast"
	"github.com/devbrain/datascript/internal/token"
)

// parseFunctionDef parses a member function attached to a struct/union/
// choice body: `function <type> name(params) { stmts... }`.
func (p *Parser) parseFunctionDef(doc string) ast.BodyItem {
	pos := p.pos()
	p.c.advance() // 'function'
	retType := p.parseType()
	name := p.identName()
	params := p.parseParamList()
	body := p.parseStmtBlock()
	return &ast.FunctionDef{Position: pos, Name: name, ReturnType: retType, Params: params, Body: body, Doc: doc}
}

func (p *Parser) parseStmtBlock() []ast.Stmt {
	p.expect(token.LBRACE)
	var stmts []ast.Stmt
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmts = append(stmts, p.parseStmt())
	}
	p.expect(token.RBRACE)
	return stmts
}

func (p *Parser) parseStmt() ast.Stmt {
	if p.curIs(token.RETURN) {
		return p.parseReturnStmt()
	}
	return p.parseExprStmt()
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	pos := p.pos()
	p.c.advance() // 'return'
	val := p.ParseExpr(lowest)
	p.expect(token.SEMI)
	return &ast.ReturnStmt{Position: pos, Value: val}
}

func (p *Parser) parseExprStmt() ast.Stmt {
	pos := p.pos()
	val := p.ParseExpr(lowest)
	p.expect(token.SEMI)
	return &ast.ExprStmt{Position: pos, Value: val}
}
