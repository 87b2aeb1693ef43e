// Package parser builds value.Form trees from lemma source text, using a
// recursive-descent design (current token plus one token of lookahead) generalized from the
// teacher's pkg/parser.Parser. Unlike the teacher, which accumulates
// parse errors to report several at once, this parser fails fast on the
// first error: spec.md's error taxonomy treats FailedToParse as a single
// terminal condition, not a batch of diagnostics.
package parser

import (
	"fmt"

	"github.com/kristofer/lemma/lerr"
	"github.com/kristofer/lemma/lexer"
	"github.com/kristofer/lemma/value"
)

// Parser consumes a token stream and produces value.Form trees.
type Parser struct {
	lex       *lexer.Lexer
	curToken  lexer.Token
	peekToken lexer.Token
}

// New creates a Parser over src.
func New(src string) (*Parser, error) {
	p := &Parser{lex: lexer.New(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	p.curToken = p.peekToken
	tok, err := p.lex.NextToken()
	if err != nil {
		// Propagate the lexer's own *lerr.Error (FailedToLex) unchanged
		// rather than rewrapping it as FailedToParse: the lex stage is
		// where the failure actually originates, and rewrapping would
		// hide that kind from callers matching on it.
		return err
	}
	p.peekToken = tok
	return nil
}

// AtEOF reports whether the parser has consumed all input.
func (p *Parser) AtEOF() bool {
	return p.curToken.Type == lexer.TokenEOF
}

// ParseAll parses every top-level form in the input.
func ParseAll(src string) ([]value.Form, error) {
	p, err := New(src)
	if err != nil {
		return nil, err
	}
	var forms []value.Form
	for !p.AtEOF() {
		f, err := p.ParseForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, nil
}

// ParseOne parses a single top-level form, per spec.md §4.1's Read
// operation.
func ParseOne(src string) (value.Form, error) {
	p, err := New(src)
	if err != nil {
		return value.Form{}, err
	}
	if p.AtEOF() {
		return value.Form{}, value.EmptyExpressionError()
	}
	return p.ParseForm()
}

// ParseForm parses exactly one form starting at the current token.
func (p *Parser) ParseForm() (value.Form, error) {
	switch p.curToken.Type {
	case lexer.TokenEOF:
		return value.Form{}, value.EmptyExpressionError()
	case lexer.TokenLParen:
		return p.parseList()
	case lexer.TokenQuote:
		if err := p.advance(); err != nil {
			return value.Form{}, err
		}
		inner, err := p.ParseForm()
		if err != nil {
			return value.Form{}, err
		}
		return value.FormOfList([]value.Form{value.FormOfSymbol("quote"), inner}), nil
	case lexer.TokenInteger:
		return p.parseInteger()
	case lexer.TokenString:
		f := value.FormOfString(p.curToken.Literal)
		return f, p.advance()
	case lexer.TokenKeyword:
		f := value.FormOfKeyword(value.KeywordID(p.curToken.Literal))
		return f, p.advance()
	case lexer.TokenTrue:
		return value.FormOfBool(true), p.advance()
	case lexer.TokenFalse:
		return value.FormOfBool(false), p.advance()
	case lexer.TokenNil:
		return value.FormOfNil(), p.advance()
	case lexer.TokenSymbol:
		f := value.FormOfSymbol(value.SymbolID(p.curToken.Literal))
		return f, p.advance()
	case lexer.TokenRParen:
		return value.Form{}, lerr.Newf(lerr.FailedToParse, "unexpected ) at line %d, column %d", p.curToken.Line, p.curToken.Column)
	default:
		return value.Form{}, lerr.Newf(lerr.FailedToParse, "unexpected token %s at line %d, column %d", p.curToken.Type, p.curToken.Line, p.curToken.Column)
	}
}

func (p *Parser) parseInteger() (value.Form, error) {
	var n int32
	_, err := fmt.Sscanf(p.curToken.Literal, "%d", &n)
	if err != nil {
		return value.Form{}, lerr.Newf(lerr.FailedToParse, "invalid integer %q at line %d", p.curToken.Literal, p.curToken.Line)
	}
	return value.FormOfInt(n), p.advance()
}

func (p *Parser) parseList() (value.Form, error) {
	if err := p.advance(); err != nil { // consume '('
		return value.Form{}, err
	}
	var items []value.Form
	for p.curToken.Type != lexer.TokenRParen {
		if p.curToken.Type == lexer.TokenEOF {
			return value.Form{}, lerr.Newf(lerr.FailedToParse, "unterminated list")
		}
		item, err := p.ParseForm()
		if err != nil {
			return value.Form{}, err
		}
		items = append(items, item)
	}
	if err := p.advance(); err != nil { // consume ')'
		return value.Form{}, err
	}
	return value.FormOfList(items), nil
}
