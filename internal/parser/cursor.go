package parser

import (
	"github.com/devbrain/datascript/internal/lexer"
	"github.com/devbrain/datascript/internal/token"
	"golang.org/x/text/unicode/norm"
)

// cursor wraps the lexer with one token of lookahead (curToken/peekToken)
// plus a small linear buffer for peekN.
type cursor struct {
	l         *lexer.Lexer
	curToken  token.Token
	peekToken token.Token
	buffered  []token.Token
	lastDoc   string
}

func newCursor(l *lexer.Lexer) *cursor {
	c := &cursor{l: l}
	c.advance()
	c.advance()
	return c
}

func (c *cursor) nextNonComment() token.Token {
	for {
		tok := c.l.NextToken()
		if tok.Type == token.COMMENT {
			c.lastDoc = norm.NFC.String(tok.Literal)
			continue
		}
		return tok
	}
}

// advance shifts curToken <- peekToken <- (buffered or lexer).
func (c *cursor) advance() {
	c.curToken = c.peekToken
	if len(c.buffered) > 0 {
		c.peekToken = c.buffered[0]
		c.buffered = c.buffered[1:]
	} else {
		c.peekToken = c.nextNonComment()
	}
}

// takeDoc returns and clears the most recently captured docstring.
func (c *cursor) takeDoc() string {
	d := c.lastDoc
	c.lastDoc = ""
	return d
}

// peekN returns the token n positions after curToken (peekN(1) ==
// peekToken) without consuming anything.
func (c *cursor) peekN(n int) token.Token {
	if n <= 1 {
		return c.peekToken
	}
	for len(c.buffered) < n-1 {
		c.buffered = append(c.buffered, c.nextNonComment())
	}
	return c.buffered[n-2]
}
