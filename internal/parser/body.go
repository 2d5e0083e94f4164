package parser

import (
	"github.com/devbrain/datascript/internal/ast"
	"github.com/devbrain/datascript/internal/token"
)

// parseBody parses a brace-delimited sequence of body items shared by
// struct, union-case, and choice-case bodies: field defs, label/align
// directives, inline union/struct fields, and member function defs
//.
func (p *Parser) parseBody() []ast.BodyItem {
	p.expect(token.LBRACE)
	var items []ast.BodyItem
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		item := p.parseBodyItem()
		if item != nil {
			items = append(items, item)
		}
	}
	p.expect(token.RBRACE)
	return items
}

func (p *Parser) parseBodyItem() ast.BodyItem {
	doc := p.c.takeDoc()
	switch p.c.curToken.Type {
	case token.ALIGN:
		return p.parseAlignDirective()
	case token.FUNCTION:
		return p.parseFunctionDef(doc)
	case token.UNION:
		return p.parseInlineUnionField(doc)
	case token.LBRACE:
		return p.parseInlineStructField(doc)
	case token.IDENT:
		if p.c.curToken.Literal == "label" && p.peekIs(token.COLON) {
			return p.parseLabelDirective()
		}
		return p.parseFieldDef(doc)
	default:
		return p.parseFieldDef(doc)
	}
}

func (p *Parser) parseLabelDirective() ast.BodyItem {
	pos := p.pos()
	p.c.advance() // 'label'
	p.expect(token.COLON)
	val := p.ParseExpr(lowest)
	p.expect(token.SEMI)
	return &ast.LabelDirective{Position: pos, Label: val}
}

func (p *Parser) parseAlignDirective() ast.BodyItem {
	pos := p.pos()
	p.c.advance() // 'align'
	p.expect(token.LPAREN)
	n := p.ParseExpr(lowest)
	p.expect(token.RPAREN)
	p.expect(token.COLON)
	return &ast.AlignDirective{Position: pos, Alignment: n}
}

func (p *Parser) parseFieldDef(doc string) ast.BodyItem {
	pos := p.pos()
	typ := p.parseType()
	name := p.identName()

	var guard, constraint, def ast.Expr
	if p.curIs(token.IF) {
		p.c.advance()
		guard = p.ParseExpr(lowest)
	}
	if p.curIs(token.COLON) {
		p.c.advance()
		constraint = p.ParseExpr(lowest)
	}
	if p.curIs(token.ASSIGN) {
		p.c.advance()
		def = p.ParseExpr(lowest)
	}
	p.expect(token.SEMI)
	return &ast.FieldDef{Position: pos, Type: typ, Name: name, Guard: guard, Constraint: constraint, Default: def, Doc: doc}
}

func (p *Parser) parseInlineStructField(doc string) ast.BodyItem {
	pos := p.pos()
	body := p.parseBody()
	name := p.identName()
	var guard, constraint ast.Expr
	if p.curIs(token.IF) {
		p.c.advance()
		guard = p.ParseExpr(lowest)
	}
	if p.curIs(token.COLON) {
		p.c.advance()
		constraint = p.ParseExpr(lowest)
	}
	p.expect(token.SEMI)
	return &ast.InlineStructField{Position: pos, Body: body, Name: name, Guard: guard, Constraint: constraint, Doc: doc}
}

func (p *Parser) parseInlineUnionField(doc string) ast.BodyItem {
	pos := p.pos()
	p.c.advance() // 'union'
	p.expect(token.LBRACE)
	var cases []*ast.UnionCase
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		cases = append(cases, p.parseUnionCase())
	}
	p.expect(token.RBRACE)
	name := p.identName()
	var guard, constraint ast.Expr
	if p.curIs(token.IF) {
		p.c.advance()
		guard = p.ParseExpr(lowest)
	}
	if p.curIs(token.COLON) {
		p.c.advance()
		constraint = p.ParseExpr(lowest)
	}
	p.expect(token.SEMI)
	return &ast.InlineUnionField{Position: pos, Cases: cases, Name: name, Guard: guard, Constraint: constraint, Doc: doc}
}

// parseUnionCase parses one union alternative: either `{ items... }
// caseName [: cond];` (anonymous block, arbitrary field count) or
// `<type> caseName [: cond];` (single typed field, desugared to a
// one-item Items slice).
func (p *Parser) parseUnionCase() *ast.UnionCase {
	doc := p.c.takeDoc()
	pos := p.pos()

	if p.curIs(token.LBRACE) {
		body := p.parseBody()
		name := p.identName()
		var cond ast.Expr
		if p.curIs(token.COLON) {
			p.c.advance()
			cond = p.ParseExpr(lowest)
		}
		p.expect(token.SEMI)
		return &ast.UnionCase{Position: pos, CaseName: name, Items: body, Condition: cond, IsAnonymous: true, Doc: doc}
	}

	field := p.parseFieldDef(doc)
	fd, ok := field.(*ast.FieldDef)
	if !ok {
		return &ast.UnionCase{Position: pos, Doc: doc}
	}
	return &ast.UnionCase{
		Position: pos, CaseName: fd.Name, Items: []ast.BodyItem{fd},
		Condition: fd.Constraint, IsAnonymous: false, Doc: doc,
	}
}

func (p *Parser) parseUnionDecl(doc string) *ast.UnionDecl {
	pos := p.pos()
	p.c.advance() // 'union'
	name := p.identName()
	params := p.parseParamList()
	p.expect(token.LBRACE)
	var cases []*ast.UnionCase
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		cases = append(cases, p.parseUnionCase())
	}
	p.expect(token.RBRACE)
	p.expect(token.SEMI)
	return &ast.UnionDecl{Position: pos, Name: name, Params: params, Cases: cases, Doc: doc}
}

// parseChoiceDecl parses `choice Name(params) on <expr> { cases };` or
// `choice Name(params) : <type> { cases };` — exactly one of the selector
// expression or the inline discriminator type is present.
func (p *Parser) parseChoiceDecl(doc string) *ast.ChoiceDecl {
	pos := p.pos()
	p.c.advance() // 'choice'
	name := p.identName()
	params := p.parseParamList()

	decl := &ast.ChoiceDecl{Position: pos, Name: name, Params: params, Doc: doc}
	switch {
	case p.curIs(token.ON):
		p.c.advance()
		decl.Selector = p.ParseExpr(lowest)
	case p.curIs(token.COLON):
		p.c.advance()
		decl.DiscriminatorType = p.parseType()
	default:
		p.errorf("expected 'on <expr>' or ': <type>' in choice declaration, got %s", p.c.curToken.Type)
	}

	p.expect(token.LBRACE)
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		decl.Cases = append(decl.Cases, p.parseChoiceCase())
	}
	p.expect(token.RBRACE)
	p.expect(token.SEMI)
	return decl
}

// parseChoiceCase parses one `case ...:` or `default:` arm:
// `case e1, e2, ...:`, `case >= e:` / `>` / `<=` / `<` / `!=`, or
// `default:`, followed by a body and its field name.
func (p *Parser) parseChoiceCase() *ast.ChoiceCase {
	pos := p.pos()

	if p.curIs(token.DEFAULT) {
		p.c.advance()
		p.expect(token.COLON)
		items, name, anon := p.parseChoiceCaseBody()
		return &ast.ChoiceCase{Position: pos, IsDefault: true, Items: items, FieldName: name, IsAnonymous: anon}
	}

	p.expect(token.CASE)
	kind, exprs, bound := p.parseSelector()
	p.expect(token.COLON)
	items, name, anon := p.parseChoiceCaseBody()
	return &ast.ChoiceCase{Position: pos, Kind: kind, Exprs: exprs, RangeBound: bound, Items: items, FieldName: name, IsAnonymous: anon}
}

// parseSelector parses the comparator portion of a case label: either a
// comma-separated list of exact-match expressions, or one of the five
// relational comparators applied to a single bound expression.
func (p *Parser) parseSelector() (ast.SelectorKind, []ast.Expr, ast.Expr) {
	var kind ast.SelectorKind
	switch p.c.curToken.Type {
	case token.GE:
		kind = ast.SelectorGE
	case token.GT:
		kind = ast.SelectorGT
	case token.LE:
		kind = ast.SelectorLE
	case token.LT:
		kind = ast.SelectorLT
	case token.NE:
		kind = ast.SelectorNE
	default:
		exprs := []ast.Expr{p.ParseExpr(lowest)}
		for p.curIs(token.COMMA) {
			p.c.advance()
			exprs = append(exprs, p.ParseExpr(lowest))
		}
		return ast.SelectorExact, exprs, nil
	}
	p.c.advance()
	bound := p.ParseExpr(lowest)
	return kind, nil, bound
}

// parseChoiceCaseBody parses the body following a case label's colon:
// either `{ items... } name;` (anonymous block) or `<type> name;`
// (single typed field).
func (p *Parser) parseChoiceCaseBody() ([]ast.BodyItem, string, bool) {
	if p.curIs(token.LBRACE) {
		body := p.parseBody()
		name := p.identName()
		p.expect(token.SEMI)
		return body, name, true
	}
	doc := p.c.takeDoc()
	field := p.parseFieldDef(doc)
	fd, ok := field.(*ast.FieldDef)
	if !ok {
		return nil, "", false
	}
	return []ast.BodyItem{fd}, fd.Name, false
}
