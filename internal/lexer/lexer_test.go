package lexer

import (
	"testing"

	"github.com/devbrain/datascript/internal/token"
)

func collect(src string) []token.Token {
	l := New("test.ds", src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestKeywordsAndIdents(t *testing.T) {
	toks := collect("struct Point { int32 x; };")
	want := []token.Type{token.STRUCT, token.IDENT, token.LBRACE, token.INT32, token.IDENT, token.SEMI, token.RBRACE, token.SEMI, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestIntegerLiteralBases(t *testing.T) {
	cases := []struct {
		src  string
		want uint64
	}{
		{"123", 123},
		{"0x1F", 0x1F},
		{"0b1010", 0b1010},
		{"1010b", 0b1010},
		{"017", 15},
		{"0", 0},
	}
	for _, c := range cases {
		toks := collect(c.src)
		if toks[0].Type != token.INT {
			t.Fatalf("%q: expected INT, got %s (errs=%v)", c.src, toks[0].Type, New("t", c.src).Errors())
		}
		got, err := ParseIntLiteral(toks[0].Literal)
		if err != nil {
			t.Fatalf("%q: parse error: %v", c.src, err)
		}
		if got != c.want {
			t.Errorf("%q: got %d, want %d", c.src, got, c.want)
		}
	}
}

func TestInvalidIntegerLiteralsDoNotPanic(t *testing.T) {
	cases := []string{"0x", "0b", "099999999999999999999999"}
	for _, src := range cases {
		l := New("t", src)
		tok := l.NextToken()
		if tok.Type != token.ILLEGAL && len(l.Errors()) == 0 {
			t.Errorf("%q: expected ILLEGAL or error, got %s", src, tok.Type)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	toks := collect(`"a\nb\tc\\d\"e"`)
	want := "a\nb\tc\\d\"e"
	if toks[0].Literal != want {
		t.Errorf("got %q, want %q", toks[0].Literal, want)
	}
}

func TestDocCommentNormalization(t *testing.T) {
	l := New("t", "/** line one\n * line two\n */", WithPreserveComments(true))
	tok := l.NextToken()
	if tok.Type != token.COMMENT {
		t.Fatalf("expected COMMENT, got %s", tok.Type)
	}
	got := tok.Literal
	want := "line one\nline two"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	// Idempotence (Testable Property 2): normalizing twice is a no-op.
	if again := NormalizeDocstring(got); again != got {
		t.Errorf("normalization not idempotent: %q -> %q", got, again)
	}
}

func TestEmptyDocstringBecomesAbsent(t *testing.T) {
	if got := NormalizeDocstring("*\n*\n"); got != "" {
		t.Errorf("expected empty docstring, got %q", got)
	}
}

func TestPositionTracking(t *testing.T) {
	l := New("t", "ab\ncd")
	tok1 := l.NextToken()
	if tok1.Pos.Line != 1 || tok1.Pos.Column != 1 {
		t.Errorf("tok1 pos = %+v", tok1.Pos)
	}
	tok2 := l.NextToken()
	if tok2.Pos.Line != 2 {
		t.Errorf("tok2 expected line 2, got %+v", tok2.Pos)
	}
}

func TestOperators(t *testing.T) {
	toks := collect("<< >> <= >= == != && || .. ? :")
	want := []token.Type{
		token.SHL, token.SHR, token.LE, token.GE, token.EQ, token.NE,
		token.ANDAND, token.OROR, token.DOTDOT, token.QUESTION, token.COLON, token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s want %s", i, toks[i].Type, tt)
		}
	}
}

func TestIdentifierLengthLimit(t *testing.T) {
	long := make([]byte, MaxIdentifierBytes+10)
	for i := range long {
		long[i] = 'a'
	}
	l := New("t", string(long))
	l.NextToken()
	if len(l.Errors()) == 0 {
		t.Error("expected an error for overlong identifier")
	}
}
