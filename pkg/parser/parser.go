// Package parser builds a formula AST from a token stream.
//
// The parser is a hand-written Pratt ("Top Down Operator Precedence")
// parser. Whitespace tokens are skipped and a leading "=" is ignored. When
// the input ends where an operand is expected, the missing operand is an
// Unknown node rather than an error, so "=A1:" parses to a ":" operation
// whose right side is Unknown.
//
// # Example
//
//	ast, err := parser.ParseFormula("=SUM(A1:A4)*2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(ast) // (SUM(A1:A4)*2)
package parser

import (
	"fmt"
	"strings"

	"github.com/sandrolain/gosheet/pkg/tokenizer"
	"github.com/sandrolain/gosheet/pkg/types"
)

// Binding powers. Higher values bind more tightly.
var precedence = map[string]int{
	"=":  10,
	"<>": 10,
	"<":  10,
	">":  10,
	"<=": 10,
	">=": 10,
	"&":  13,
	"+":  15,
	"-":  15,
	"*":  20,
	"/":  20,
	"^":  30,
	"%":  40,
	":":  50,
}

// unaryPower is the binding power of prefix + and -: tighter than ^ so that
// -2^2 is 4, looser than postfix %.
const unaryPower = 35

// Parser implements a recursive descent parser for formulas.
type Parser struct {
	tokens  []types.Token
	offsets []int
	pos     int
	refs    int
}

// ParseFormula tokenizes formula with the native tokenizer and parses it.
func ParseFormula(formula string) (types.Node, error) {
	return Parse(tokenizer.Tokenize(formula))
}

// Parse parses a token stream into an AST.
func Parse(tokens []types.Token) (types.Node, error) {
	return NewParser(tokens).Parse()
}

// NewParser creates a parser over tokens.
func NewParser(tokens []types.Token) *Parser {
	p := &Parser{}
	offset := 0
	for _, tok := range tokens {
		if tok.Kind != types.TokenSpace {
			p.tokens = append(p.tokens, tok)
			p.offsets = append(p.offsets, offset)
		}
		offset += len(tok.Text)
	}
	return p
}

// Parse parses the whole token stream and returns the root node.
func (p *Parser) Parse() (types.Node, error) {
	if tok, ok := p.peek(); ok && tok.Kind == types.TokenOperator && tok.Text == "=" {
		p.pos++
	}
	node, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, p.error(fmt.Sprintf("Unexpected token: %s", tok.Text))
	}
	return node, nil
}

func (p *Parser) peek() (types.Token, bool) {
	if p.pos >= len(p.tokens) {
		return types.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) next() (types.Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *Parser) error(message string) error {
	pos := -1
	if p.pos < len(p.offsets) {
		pos = p.offsets[p.pos]
	}
	return types.NewError(types.ErrSyntax, message, pos)
}

// parseExpression is the Pratt loop: a prefix expression followed by infix
// and postfix operators binding tighter than rbp.
func (p *Parser) parseExpression(rbp int) (types.Node, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.Kind != types.TokenOperator {
			return left, nil
		}
		bp, known := precedence[tok.Text]
		if !known {
			return nil, p.error(fmt.Sprintf("Unexpected operator: %s", tok.Text))
		}
		if bp <= rbp {
			return left, nil
		}
		p.pos++
		if tok.Text == "%" {
			left = &types.UnaryOperation{Op: "%", Operand: left}
			continue
		}
		right, err := p.parseExpression(bp)
		if err != nil {
			return nil, err
		}
		left = &types.BinaryOperation{Op: tok.Text, Left: left, Right: right}
	}
}

func (p *Parser) parsePrefix() (types.Node, error) {
	tok, ok := p.next()
	if !ok {
		return &types.Unknown{}, nil
	}
	switch tok.Kind {
	case types.TokenNumber:
		return &types.Number{Value: types.ParseNumber(tok.Text)}, nil
	case types.TokenString:
		return &types.String{Value: types.UnquoteString(tok.Text)}, nil
	case types.TokenReference, types.TokenInvalidReference:
		ref := &types.Reference{Value: tok.Text, Index: p.refs}
		p.refs++
		return ref, nil
	case types.TokenSymbol:
		switch strings.ToUpper(tok.Text) {
		case "TRUE":
			return &types.Boolean{Value: true}, nil
		case "FALSE":
			return &types.Boolean{Value: false}, nil
		}
		p.pos--
		return nil, p.error(fmt.Sprintf("Invalid name: %s", tok.Text))
	case types.TokenFunction:
		return p.parseFunctionCall(tok.Text)
	case types.TokenLeftParen:
		return p.parseGrouping()
	case types.TokenDebugger:
		node, err := p.parsePrefix()
		if err != nil {
			return nil, err
		}
		types.SetBreakpoint(node)
		return node, nil
	case types.TokenOperator:
		if tok.Text == "-" || tok.Text == "+" {
			operand, err := p.parseExpression(unaryPower)
			if err != nil {
				return nil, err
			}
			return &types.UnaryOperation{Op: tok.Text, Operand: operand}, nil
		}
	}
	p.pos--
	return nil, p.error(fmt.Sprintf("Unexpected token: %s", tok.Text))
}

func (p *Parser) parseGrouping() (types.Node, error) {
	node, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(types.TokenRightParen); err != nil {
		return nil, err
	}
	return node, nil
}

// parseFunctionCall parses the argument list following a function name.
func (p *Parser) parseFunctionCall(name string) (types.Node, error) {
	if err := p.expect(types.TokenLeftParen); err != nil {
		return nil, err
	}
	call := &types.Funcall{Name: name}
	if tok, ok := p.peek(); ok && tok.Kind == types.TokenRightParen {
		p.pos++
		return call, nil
	}
	for {
		arg, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		tok, ok := p.next()
		if !ok {
			return nil, p.error(fmt.Sprintf("Missing closing parenthesis for %s", name))
		}
		switch tok.Kind {
		case types.TokenArgSeparator:
			continue
		case types.TokenRightParen:
			return call, nil
		}
		p.pos--
		return nil, p.error(fmt.Sprintf("Unexpected token in %s arguments: %s", name, tok.Text))
	}
}

func (p *Parser) expect(kind types.TokenKind) error {
	tok, ok := p.peek()
	if !ok {
		return p.error(fmt.Sprintf("Expected %s but reached the end of the formula", kind))
	}
	if tok.Kind != kind {
		return p.error(fmt.Sprintf("Expected %s but got %s", kind, tok.Kind))
	}
	p.pos++
	return nil
}
