package parser

import (
	"github.com/devbrain/datascript/internal/ast"
	"github.com/devbrain/datascript/internal/token"
)

// parseType parses any type reference: a primitive integer (with optional
// leading byte-order keyword), bool, string (with optional width/byte
// order), bit:N, a qualified user-defined name (optionally instantiated
// with arguments), or any of those wrapped in one or more array
// dimensions.
func (p *Parser) parseType() ast.TypeNode {
	base := p.parseBaseType()
	for p.curIs(token.LBRACK) {
		base = p.parseArrayType(base)
	}
	return base
}

func (p *Parser) parseBaseType() ast.TypeNode {
	pos := p.pos()

	switch p.c.curToken.Type {
	case token.LITTLE, token.BIG:
		order := ast.EndianLittle
		if p.curIs(token.BIG) {
			order = ast.EndianBig
		}
		p.c.advance()
		return p.parseOrderedType(pos, order)

	case token.BOOL:
		p.c.advance()
		return &ast.BoolType{Position: pos}

	case token.STRINGKW:
		p.c.advance()
		return p.parseStringTail(pos, ast.EndianUnspecified)

	case token.BIT:
		p.c.advance()
		return p.parseBitfieldTail(pos)

	case token.IDENT:
		return p.parseUserTypeRef()
	}

	if p.c.curToken.Type.IsPrimitiveIntKeyword() {
		return p.parsePrimitiveTail(pos, ast.EndianUnspecified)
	}

	p.errorf("expected a type, got %s (%q)", p.c.curToken.Type, p.c.curToken.Literal)
	p.c.advance()
	return &ast.BoolType{Position: pos}
}

// parseOrderedType parses whatever follows an explicit "little"/"big"
// byte-order keyword: an integer primitive or a multi-byte string.
func (p *Parser) parseOrderedType(pos token.Position, order ast.Endian) ast.TypeNode {
	if p.curIs(token.STRINGKW) {
		p.c.advance()
		return p.parseStringTail(pos, order)
	}
	if p.c.curToken.Type.IsPrimitiveIntKeyword() {
		return p.parsePrimitiveTail(pos, order)
	}
	p.errorf("expected an integer or string type after byte-order keyword, got %s", p.c.curToken.Type)
	return &ast.PrimitiveType{Position: pos, Bits: 32, ByteOrder: order}
}

var primitiveWidths = map[token.Type]struct {
	bits int
	sign ast.Signedness
}{
	token.UINT8:   {8, ast.Unsigned},
	token.UINT16:  {16, ast.Unsigned},
	token.UINT32:  {32, ast.Unsigned},
	token.UINT64:  {64, ast.Unsigned},
	token.UINT128: {128, ast.Unsigned},
	token.INT8:    {8, ast.Signed},
	token.INT16:   {16, ast.Signed},
	token.INT32:   {32, ast.Signed},
	token.INT64:   {64, ast.Signed},
	token.INT128:  {128, ast.Signed},
}

func (p *Parser) parsePrimitiveTail(pos token.Position, order ast.Endian) ast.TypeNode {
	info, ok := primitiveWidths[p.c.curToken.Type]
	if !ok {
		p.errorf("expected a primitive integer keyword, got %s", p.c.curToken.Type)
		p.c.advance()
		return &ast.PrimitiveType{Position: pos, Bits: 32, ByteOrder: order}
	}
	p.c.advance()
	return &ast.PrimitiveType{Position: pos, Signedness: info.sign, Bits: info.bits, ByteOrder: order}
}

func (p *Parser) parseStringTail(pos token.Position, order ast.Endian) ast.TypeNode {
	width := ast.StringUTF8
	if p.curIs(token.LT) {
		// string<16> / string<32>: explicit width annotation.
		p.c.advance()
		switch {
		case p.curIs(token.INT) && p.c.curToken.Literal == "16":
			width = ast.StringUTF16
		case p.curIs(token.INT) && p.c.curToken.Literal == "32":
			width = ast.StringUTF32
		default:
			p.errorf("expected 16 or 32 as string width, got %q", p.c.curToken.Literal)
		}
		p.c.advance()
		p.expect(token.GT)
	}
	return &ast.StringType{Position: pos, Width: width, ByteOrder: order}
}

func (p *Parser) parseBitfieldTail(pos token.Position) ast.TypeNode {
	p.expect(token.COLON)
	if p.curIs(token.INT) {
		width := p.ParseExpr(lowest)
		return &ast.BitfieldType{Position: pos, Width: width, WidthOnly: true}
	}
	width := p.ParseExpr(lowest)
	return &ast.BitfieldType{Position: pos, Width: width, WidthOnly: false}
}

// parseUserTypeRef parses a qualified user-defined type name, optionally
// instantiated with a parenthesized argument list, e.g. `a.b.Record(16)`.
func (p *Parser) parseUserTypeRef() ast.TypeNode {
	qn := p.parseQualifiedName()
	if !p.curIs(token.LPAREN) {
		return qn
	}
	args := p.parseExprList(token.LPAREN, token.RPAREN)
	return &ast.TypeInstantiation{Position: qn.Position, Base: qn, Args: args}
}

// parseArrayType parses one `[...]` suffix following an already-parsed
// element type: `[N]` fixed, `[min..max]` ranged, or `[]` unsized.
func (p *Parser) parseArrayType(elem ast.TypeNode) ast.TypeNode {
	pos := p.pos()
	p.c.advance() // consume '['

	if p.curIs(token.RBRACK) {
		p.c.advance()
		return &ast.ArrayType{Position: pos, Element: elem, Sizing: ast.ArrayUnsized}
	}

	first := p.ParseExpr(lowest)
	if p.curIs(token.DOTDOT) {
		p.c.advance()
		max := p.ParseExpr(lowest)
		p.expect(token.RBRACK)
		return &ast.ArrayType{Position: pos, Element: elem, Sizing: ast.ArrayRanged, Min: first, Max: max}
	}
	p.expect(token.RBRACK)
	return &ast.ArrayType{Position: pos, Element: elem, Sizing: ast.ArrayFixed, Size: first}
}
