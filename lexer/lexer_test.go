package lexer

import "testing"

func tokenTypes(t *testing.T, toks []Token) []TokenType {
	t.Helper()
	types := make([]TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestTokenizeSimpleList(t *testing.T) {
	l := New("(+ 1 2)")
	toks, err := l.Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenType{TokenLParen, TokenSymbol, TokenInteger, TokenInteger, TokenRParen, TokenEOF}
	got := tokenTypes(t, toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
	if toks[1].Literal != "+" {
		t.Fatalf("token 1 literal = %q, want %q", toks[1].Literal, "+")
	}
}

func TestTokenizeQuoteSugar(t *testing.T) {
	l := New("'(a b)")
	toks, err := l.Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Type != TokenQuote {
		t.Fatalf("token 0 = %s, want QUOTE", toks[0].Type)
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	l := New(`"hello \"world\""`)
	tok, err := l.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Type != TokenString {
		t.Fatalf("type = %s, want STRING", tok.Type)
	}
	want := `hello "world"`
	if tok.Literal != want {
		t.Fatalf("literal = %q, want %q", tok.Literal, want)
	}
}

func TestTokenizeKeyword(t *testing.T) {
	l := New(":foo")
	tok, err := l.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Type != TokenKeyword || tok.Literal != "foo" {
		t.Fatalf("got %s %q, want KEYWORD %q", tok.Type, tok.Literal, "foo")
	}
}

func TestTokenizeLiterals(t *testing.T) {
	l := New("true false nil")
	toks, err := l.Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenType{TokenTrue, TokenFalse, TokenNil, TokenEOF}
	got := tokenTypes(t, toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokenizeNegativeInteger(t *testing.T) {
	l := New("-42")
	tok, err := l.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Type != TokenInteger || tok.Literal != "-42" {
		t.Fatalf("got %s %q, want INTEGER %q", tok.Type, tok.Literal, "-42")
	}
}

func TestTokenizeComment(t *testing.T) {
	l := New("1 ; this is a comment\n2")
	toks, err := l.Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenType{TokenInteger, TokenInteger, TokenEOF}
	got := tokenTypes(t, toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
}

func TestTokenizeUnterminatedStringFails(t *testing.T) {
	l := New(`"abc`)
	_, err := l.NextToken()
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestTokenizeOperatorSymbols(t *testing.T) {
	l := New("(< > <= >= +)")
	toks, err := l.Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	syms := []string{"<", ">", "<=", ">=", "+"}
	idx := 0
	for _, tok := range toks {
		if tok.Type == TokenSymbol {
			if tok.Literal != syms[idx] {
				t.Fatalf("symbol %d = %q, want %q", idx, tok.Literal, syms[idx])
			}
			idx++
		}
	}
	if idx != len(syms) {
		t.Fatalf("found %d symbols, want %d", idx, len(syms))
	}
}
