package tokenizer

import (
	"strings"

	"github.com/xuri/efp"

	"github.com/sandrolain/gosheet/pkg/types"
)

// TokenizeExcel tokenizes a formula with the efp Excel formula parser and
// maps the result onto the native token vocabulary.
//
// efp normalizes some of its input: string literals lose their quoting and
// stop tokens carry no text, so the token text is rebuilt here. Every
// operand efp classifies as a range becomes a reference, including bare
// names.
func TokenizeExcel(formula string) []types.Token {
	var tokens []types.Token
	src := strings.TrimLeft(formula, " ")
	if strings.HasPrefix(src, "=") {
		tokens = append(tokens, types.Token{Kind: types.TokenOperator, Text: "="})
		src = src[1:]
	}
	if strings.TrimSpace(src) == "" {
		return tokens
	}
	ps := efp.ExcelParser()
	for _, t := range ps.Parse(src) {
		tokens = append(tokens, fromExcel(t)...)
	}
	return tokens
}

func fromExcel(t efp.Token) []types.Token {
	switch t.TType {
	case efp.TokenTypeOperand:
		switch t.TSubType {
		case efp.TokenSubTypeNumber:
			return one(types.TokenNumber, t.TValue)
		case efp.TokenSubTypeText:
			return one(types.TokenString, `"`+strings.ReplaceAll(t.TValue, `"`, `\"`)+`"`)
		case efp.TokenSubTypeLogical:
			return one(types.TokenSymbol, strings.ToUpper(t.TValue))
		case efp.TokenSubTypeError:
			if strings.HasPrefix(strings.ToUpper(t.TValue), "#REF") {
				return one(types.TokenInvalidReference, t.TValue)
			}
			return one(types.TokenUnknown, t.TValue)
		case efp.TokenSubTypeRange:
			return one(types.TokenReference, t.TValue)
		}
		return one(types.TokenSymbol, t.TValue)
	case efp.TokenTypeFunction:
		if t.TSubType == efp.TokenSubTypeStart {
			return []types.Token{
				{Kind: types.TokenFunction, Text: t.TValue},
				{Kind: types.TokenLeftParen, Text: "("},
			}
		}
		return one(types.TokenRightParen, ")")
	case efp.TokenTypeSubexpression:
		if t.TSubType == efp.TokenSubTypeStart {
			return one(types.TokenLeftParen, "(")
		}
		return one(types.TokenRightParen, ")")
	case efp.TokenTypeArgument:
		return one(types.TokenArgSeparator, ",")
	case efp.TokenTypeOperatorPrefix, efp.TokenTypeOperatorInfix, efp.TokenTypeOperatorPostfix:
		return one(types.TokenOperator, t.TValue)
	case efp.TokenTypeWhitespace:
		if t.TValue == "" {
			return one(types.TokenSpace, " ")
		}
		return one(types.TokenSpace, t.TValue)
	}
	return one(types.TokenUnknown, t.TValue)
}

func one(kind types.TokenKind, text string) []types.Token {
	return []types.Token{{Kind: kind, Text: text}}
}
