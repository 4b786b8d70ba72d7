package kyc

import (
	"fmt"
	"strings"

	"github.com/servicechain/executor/services/common"
)

// NullValue matches a tag the user holds no value for.
const NullValue = "NULL"

// TagLookup returns the values a user holds for a tag of an organization.
type TagLookup func(org string, tag string) ([]string, error)

// Expression is a parsed tag expression: `org.tag@value` terms joined by
// `&&` and `||`, with `&&` binding tighter, and parentheses for grouping.
type Expression interface {
	Eval(lookup TagLookup) (bool, error)
	String() string
}

type term struct {
	org   string
	tag   string
	value string
}

func (t term) Eval(lookup TagLookup) (bool, error) {
	values, err := lookup(t.org, t.tag)
	if err != nil {
		return false, err
	}
	if t.value == NullValue {
		return len(values) == 0, nil
	}
	for _, v := range values {
		if v == t.value {
			return true, nil
		}
	}
	return false, nil
}

func (t term) String() string {
	return t.org + "." + t.tag + "@" + t.value
}

type binary struct {
	op    string
	left  Expression
	right Expression
}

func (b binary) Eval(lookup TagLookup) (bool, error) {
	left, err := b.left.Eval(lookup)
	if err != nil {
		return false, err
	}
	if b.op == "&&" && !left {
		return false, nil
	}
	if b.op == "||" && left {
		return true, nil
	}
	return b.right.Eval(lookup)
}

func (b binary) String() string {
	return "(" + b.left.String() + " " + b.op + " " + b.right.String() + ")"
}

type tokenKind int

const (
	tokenTerm tokenKind = iota
	tokenAnd
	tokenOr
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "("})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")"})
			i++
		case strings.HasPrefix(input[i:], "&&"):
			tokens = append(tokens, token{kind: tokenAnd, text: "&&"})
			i += 2
		case strings.HasPrefix(input[i:], "||"):
			tokens = append(tokens, token{kind: tokenOr, text: "||"})
			i += 2
		default:
			start := i
			for i < len(input) && !strings.ContainsRune(" \t\n\r()&|", rune(input[i])) {
				i++
			}
			if start == i {
				return nil, fmt.Errorf("unexpected character %q at %d", c, i)
			}
			tokens = append(tokens, token{kind: tokenTerm, text: input[start:i]})
		}
	}
	return tokens, nil
}

func parseTerm(text string) (term, error) {
	dot := strings.Index(text, ".")
	at := strings.LastIndex(text, "@")
	if dot <= 0 || at <= dot+1 || at == len(text)-1 {
		return term{}, fmt.Errorf("invalid term %q, expected org.tag@value", text)
	}

	t := term{
		org:   text[:dot],
		tag:   text[dot+1 : at],
		value: text[at+1:],
	}
	for _, part := range []string{t.org, t.tag, t.value} {
		if !common.IsIdentifier(part) {
			return term{}, fmt.Errorf("invalid term %q", text)
		}
	}
	return t, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) parseOr() (Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenOr {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = binary{op: "||", left: left, right: right}
	}
}

func (p *parser) parseAnd() (Expression, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenAnd {
			return left, nil
		}
		p.pos++
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = binary{op: "&&", left: left, right: right}
	}
}

func (p *parser) parsePrimary() (Expression, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("unexpected end of expression")
	}
	p.pos++

	switch tok.kind {
	case tokenTerm:
		return parseTerm(tok.text)
	case tokenLParen:
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokenRParen {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return expr, nil
	default:
		return nil, fmt.Errorf("unexpected %q", tok.text)
	}
}

// ParseExpression parses a tag expression.
func ParseExpression(input string) (Expression, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty expression")
	}

	p := &parser{tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(tokens) {
		return nil, fmt.Errorf("unexpected %q", tokens[p.pos].text)
	}
	return expr, nil
}
