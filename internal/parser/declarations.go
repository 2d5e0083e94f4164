package parser

import (
	"github.com/devbrain/datascript/internal/ast"
	"github.com/devbrain/datascript/internal/token"
)

// ParseModule parses an entire file into an ast.Module:
// an optional package declaration, zero or more imports, an optional
// byte-order directive, then a sequence of top-level declarations.
func (p *Parser) ParseModule() *ast.Module {
	m := &ast.Module{File: p.file, DefaultByteOrder: ast.EndianBig}

	if p.curIs(token.PACKAGE) {
		m.Package = p.parsePackageDecl()
	}
	for p.curIs(token.IMPORT) {
		m.Imports = append(m.Imports, p.parseImportDecl())
	}
	if p.curIs(token.LITTLE) || p.curIs(token.BIG) {
		if p.curIs(token.LITTLE) {
			m.DefaultByteOrder = ast.EndianLittle
		} else {
			m.DefaultByteOrder = ast.EndianBig
		}
		p.c.advance()
		p.expect(token.SEMI)
	}

	for !p.curIs(token.EOF) {
		p.parseTopLevelDecl(m)
	}
	return m
}

func (p *Parser) parsePackageDecl() *ast.PackageDecl {
	pos := p.pos()
	p.c.advance() // 'package'
	qn := p.parseQualifiedName()
	p.expect(token.SEMI)
	return &ast.PackageDecl{Position: pos, Parts: qn.Parts}
}

func (p *Parser) parseImportDecl() *ast.ImportDecl {
	pos := p.pos()
	p.c.advance() // 'import'
	var parts []string
	parts = append(parts, p.identName())
	wildcard := false
	for p.curIs(token.DOT) {
		p.c.advance()
		if p.curIs(token.ASTERISK) {
			wildcard = true
			p.c.advance()
			break
		}
		parts = append(parts, p.identName())
	}
	p.expect(token.SEMI)
	return &ast.ImportDecl{Position: pos, Parts: parts, IsWildcard: wildcard}
}

func (p *Parser) parseTopLevelDecl(m *ast.Module) {
	doc := p.c.takeDoc()
	switch p.c.curToken.Type {
	case token.CONST:
		m.Constants = append(m.Constants, p.parseConstantDecl(doc))
	case token.SUBTYPE:
		m.Subtypes = append(m.Subtypes, p.parseSubtypeDecl(doc))
	case token.CONSTRAINT:
		m.Constraints = append(m.Constraints, p.parseConstraintDecl(doc))
	case token.TYPEDEF:
		m.TypeAliases = append(m.TypeAliases, p.parseTypeAliasDecl(doc))
	case token.ENUM, token.BITMASK:
		m.Enums = append(m.Enums, p.parseEnumDecl(doc))
	case token.STRUCT:
		m.Structs = append(m.Structs, p.parseStructDecl(doc))
	case token.UNION:
		m.Unions = append(m.Unions, p.parseUnionDecl(doc))
	case token.CHOICE:
		m.Choices = append(m.Choices, p.parseChoiceDecl(doc))
	default:
		p.errorf("expected a top-level declaration, got %s (%q)", p.c.curToken.Type, p.c.curToken.Literal)
		p.skipToSemiOrBrace()
	}
}

// parseParamList parses an optional parenthesized parameter list used by
// struct/union/choice/constraint declarations: `(type name, type name)`.
func (p *Parser) parseParamList() []*ast.Param {
	if !p.curIs(token.LPAREN) {
		return nil
	}
	p.c.advance()
	var params []*ast.Param
	if p.curIs(token.RPAREN) {
		p.c.advance()
		return params
	}
	params = append(params, p.parseParam())
	for p.curIs(token.COMMA) {
		p.c.advance()
		params = append(params, p.parseParam())
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseParam() *ast.Param {
	pos := p.pos()
	typ := p.parseType()
	name := p.identName()
	return &ast.Param{Position: pos, Type: typ, Name: name}
}

func (p *Parser) parseConstantDecl(doc string) *ast.ConstantDecl {
	pos := p.pos()
	p.c.advance() // 'const'
	typ := p.parseType()
	name := p.identName()
	p.expect(token.ASSIGN)
	val := p.ParseExpr(lowest)
	p.expect(token.SEMI)
	return &ast.ConstantDecl{Position: pos, Name: name, Type: typ, Value: val, Doc: doc}
}

func (p *Parser) parseSubtypeDecl(doc string) *ast.SubtypeDecl {
	pos := p.pos()
	p.c.advance() // 'subtype'
	name := p.identName()
	p.expect(token.COLON)
	base := p.parseType()
	var constraint ast.Expr
	if p.curIs(token.IDENT) && p.c.curToken.Literal == "where" {
		p.c.advance()
		constraint = p.ParseExpr(lowest)
	}
	p.expect(token.SEMI)
	return &ast.SubtypeDecl{Position: pos, Name: name, Base: base, Constraint: constraint, Doc: doc}
}

func (p *Parser) parseConstraintDecl(doc string) *ast.ConstraintDecl {
	pos := p.pos()
	p.c.advance() // 'constraint'
	name := p.identName()
	params := p.parseParamList()
	p.expect(token.ASSIGN)
	cond := p.ParseExpr(lowest)
	p.expect(token.SEMI)
	return &ast.ConstraintDecl{Position: pos, Name: name, Params: params, Condition: cond, Doc: doc}
}

func (p *Parser) parseTypeAliasDecl(doc string) *ast.TypeAliasDecl {
	pos := p.pos()
	p.c.advance() // 'typedef'
	name := p.identName()
	p.expect(token.ASSIGN)
	target := p.parseType()
	p.expect(token.SEMI)
	return &ast.TypeAliasDecl{Position: pos, Name: name, Target: target, Doc: doc}
}

func (p *Parser) parseEnumDecl(doc string) *ast.EnumDecl {
	pos := p.pos()
	isBitmask := p.curIs(token.BITMASK)
	p.c.advance() // 'enum' / 'bitmask'
	name := p.identName()
	var base ast.TypeNode
	if p.curIs(token.COLON) {
		p.c.advance()
		base = p.parseType()
	}
	p.expect(token.LBRACE)
	var items []*ast.EnumItem
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		itemDoc := p.c.takeDoc()
		itemPos := p.pos()
		itemName := p.identName()
		var val ast.Expr
		if p.curIs(token.ASSIGN) {
			p.c.advance()
			val = p.ParseExpr(lowest)
		}
		items = append(items, &ast.EnumItem{Position: itemPos, Name: itemName, Value: val, Doc: itemDoc})
		if p.curIs(token.COMMA) {
			p.c.advance()
		} else {
			break
		}
	}
	p.expect(token.RBRACE)
	p.expect(token.SEMI)
	return &ast.EnumDecl{Position: pos, Name: name, Base: base, Items: items, IsBitmask: isBitmask, Doc: doc}
}

func (p *Parser) parseStructDecl(doc string) *ast.StructDecl {
	pos := p.pos()
	p.c.advance() // 'struct'
	name := p.identName()
	params := p.parseParamList()
	body := p.parseBody()
	p.expect(token.SEMI)
	return &ast.StructDecl{Position: pos, Name: name, Params: params, Body: body, Doc: doc}
}
