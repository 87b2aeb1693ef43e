// Package lexer implements the lexical analyzer (tokenizer) for lemma's
// s-expression surface syntax.
//
// Tokens are left paren, right paren, quote sugar, integer literals,
// string literals, keywords, symbols, and the `true`/`false`/`nil`
// literals, per spec.md §4.1 and §6.3. Whitespace and `;`-to-end-of-line
// comments are skipped. The scanner itself follows the teacher's
// pkg/lexer.Lexer shape: a byte-at-a-time reader with one character of
// lookahead and line/column tracking, generalized from Smalltalk's
// Smalltalk-ish token set to lemma's s-expression one.
package lexer

import (
	"unicode"

	"github.com/kristofer/lemma/lerr"
)

// TokenType identifies what kind of lexeme a Token holds.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	TokenInteger
	TokenString
	TokenKeyword
	TokenSymbol
	TokenTrue
	TokenFalse
	TokenNil

	TokenLParen
	TokenRParen
	TokenQuote
)

func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "ILLEGAL"
	case TokenInteger:
		return "INTEGER"
	case TokenString:
		return "STRING"
	case TokenKeyword:
		return "KEYWORD"
	case TokenSymbol:
		return "SYMBOL"
	case TokenTrue:
		return "TRUE"
	case TokenFalse:
		return "FALSE"
	case TokenNil:
		return "NIL"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	case TokenQuote:
		return "QUOTE"
	default:
		return "UNKNOWN"
	}
}

// Token is a single lexeme with its source position.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// Lexer is a byte-at-a-time scanner over lemma source text.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
	line         int
	column       int
}

// New creates a Lexer over input.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken scans and returns the next token from the input.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespaceAndComments()

	tok := Token{Line: l.line, Column: l.column}

	switch l.ch {
	case 0:
		tok.Type = TokenEOF
		return tok, nil
	case '(':
		tok.Type = TokenLParen
		tok.Literal = "("
		l.readChar()
		return tok, nil
	case ')':
		tok.Type = TokenRParen
		tok.Literal = ")"
		l.readChar()
		return tok, nil
	case '\'':
		tok.Type = TokenQuote
		tok.Literal = "'"
		l.readChar()
		return tok, nil
	case '"':
		s, err := l.readString()
		if err != nil {
			return Token{}, err
		}
		tok.Type = TokenString
		tok.Literal = s
		return tok, nil
	case ':':
		l.readChar()
		name := l.readSymbolRun()
		if name == "" {
			return Token{}, lerr.Newf(lerr.FailedToLex, "empty keyword at line %d, column %d", tok.Line, tok.Column)
		}
		tok.Type = TokenKeyword
		tok.Literal = name
		return tok, nil
	}

	if l.ch == '-' && isDigit(l.peekChar()) {
		lit := l.readNumber()
		tok.Type = TokenInteger
		tok.Literal = lit
		return tok, nil
	}

	if isDigit(l.ch) {
		lit := l.readNumber()
		tok.Type = TokenInteger
		tok.Literal = lit
		return tok, nil
	}

	if isSymbolChar(l.ch) {
		lit := l.readSymbolRun()
		tok.Literal = lit
		switch lit {
		case "true":
			tok.Type = TokenTrue
		case "false":
			tok.Type = TokenFalse
		case "nil":
			tok.Type = TokenNil
		default:
			tok.Type = TokenSymbol
		}
		return tok, nil
	}

	tok.Type = TokenIllegal
	tok.Literal = string(l.ch)
	return Token{}, lerr.Newf(lerr.FailedToLex, "illegal character %q at line %d, column %d", l.ch, tok.Line, tok.Column)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			if l.ch == '\n' {
				l.line++
				l.column = 0
			}
			l.readChar()
		}
		if l.ch == ';' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

// readString reads a double-quoted string literal, honoring \" and \\
// escapes, per spec.md §6.3.
func (l *Lexer) readString() (string, error) {
	startLine, startCol := l.line, l.column
	l.readChar() // consume opening quote
	var out []byte
	for {
		if l.ch == 0 {
			return "", lerr.Newf(lerr.FailedToLex, "unterminated string starting at line %d, column %d", startLine, startCol)
		}
		if l.ch == '"' {
			l.readChar()
			return string(out), nil
		}
		if l.ch == '\\' {
			switch l.peekChar() {
			case '"':
				out = append(out, '"')
				l.readChar()
				l.readChar()
				continue
			case '\\':
				out = append(out, '\\')
				l.readChar()
				l.readChar()
				continue
			}
		}
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		out = append(out, l.ch)
		l.readChar()
	}
}

func (l *Lexer) readNumber() string {
	start := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readSymbolRun() string {
	start := l.position
	for isSymbolChar(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// isSymbolChar reports whether ch may appear in a symbol or keyword name:
// any non-delimiter run, including operator characters like + - < =.
func isSymbolChar(ch byte) bool {
	switch ch {
	case 0, '(', ')', '\'', '"', ';', ':', ' ', '\t', '\n', '\r':
		return false
	default:
		return !unicode.IsControl(rune(ch))
	}
}

// Tokenize scans the entire input, returning every token up to and
// including EOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	return toks, nil
}
