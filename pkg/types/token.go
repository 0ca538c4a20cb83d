package types

import (
	"errors"
	"strconv"
	"strings"
)

// TokenKind identifies the lexical category of a formula token.
type TokenKind uint8

const (
	TokenUnknown TokenKind = iota

	// Literals
	TokenNumber           // 1, 3.14, 1e-10
	TokenString           // "hello"
	TokenReference        // A1, $B$2, Sheet2!A1:C9
	TokenInvalidReference // #REF

	// Punctuation
	TokenSpace        // whitespace run
	TokenOperator     // = + - * / ^ & % < > <= >= <> :
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenArgSeparator // ,

	// Names
	TokenFunction // identifier immediately followed by (
	TokenSymbol   // any other identifier, including TRUE and FALSE
	TokenDebugger // ?
)

// String returns a string representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "NUMBER"
	case TokenString:
		return "STRING"
	case TokenReference:
		return "REFERENCE"
	case TokenInvalidReference:
		return "INVALID_REFERENCE"
	case TokenSpace:
		return "SPACE"
	case TokenOperator:
		return "OPERATOR"
	case TokenLeftParen:
		return "LEFT_PAREN"
	case TokenRightParen:
		return "RIGHT_PAREN"
	case TokenArgSeparator:
		return "ARG_SEPARATOR"
	case TokenFunction:
		return "FUNCTION"
	case TokenSymbol:
		return "SYMBOL"
	case TokenDebugger:
		return "DEBUGGER"
	default:
		return "UNKNOWN"
	}
}

// Token is a single lexical unit of a formula. Text is the exact source
// substring the token was read from.
type Token struct {
	Kind TokenKind
	Text string
}

// IsReference reports whether the token occupies a dependency slot.
func (t Token) IsReference() bool {
	return t.Kind == TokenReference || t.Kind == TokenInvalidReference
}

// UnquoteString removes the enclosing double quotes of a string token. A
// closing quote preceded by a backslash is kept.
func UnquoteString(s string) string {
	if strings.HasPrefix(s, `"`) {
		s = s[1:]
	}
	if strings.HasSuffix(s, `"`) && !strings.HasSuffix(s, `\"`) {
		return s[:len(s)-1]
	}
	return s
}

// ParseNumber parses the text of a number token. Text that is not a valid
// number parses as 0; out of range values parse as ±Inf or 0.
func ParseNumber(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return f
}
