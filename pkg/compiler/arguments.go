package compiler

import (
	"strconv"
	"strings"

	"github.com/sandrolain/gosheet/pkg/types"
)

// FormulaArguments collects, in one pass over tokens, the text of every
// reference token (in order, duplicates kept) and the distinct number and
// string literals.
func FormulaArguments(tokens []types.Token) ([]string, types.ConstantValues) {
	var deps []string
	var consts types.ConstantValues
	for _, tok := range tokens {
		switch tok.Kind {
		case types.TokenReference, types.TokenInvalidReference:
			deps = append(deps, tok.Text)
		case types.TokenString:
			s := types.UnquoteString(tok.Text)
			if consts.StringIndex(s) < 0 {
				consts.Strings = append(consts.Strings, s)
			}
		case types.TokenNumber:
			n := types.ParseNumber(tok.Text)
			if consts.NumberIndex(n) < 0 {
				consts.Numbers = append(consts.Numbers, n)
			}
		}
	}
	return deps, consts
}

// CacheKey computes the structural key of a formula: references, numbers and
// strings are replaced by placeholders and whitespace is dropped, so
// "=A1+1+\"2\"" and "=A2 + 2 + \"3\"" share the key "=|0|+|N0|+|S0|".
//
// A reference placeholder is the index of the first occurrence of the same
// reference text in deps, so "=A1+A1" has the key "=|0|+|0|".
func CacheKey(tokens []types.Token, deps []string, consts types.ConstantValues) string {
	var sb strings.Builder
	for _, tok := range tokens {
		switch tok.Kind {
		case types.TokenString:
			sb.WriteString("|S")
			sb.WriteString(strconv.Itoa(consts.StringIndex(types.UnquoteString(tok.Text))))
			sb.WriteString("|")
		case types.TokenNumber:
			sb.WriteString("|N")
			sb.WriteString(strconv.Itoa(consts.NumberIndex(types.ParseNumber(tok.Text))))
			sb.WriteString("|")
		case types.TokenReference, types.TokenInvalidReference:
			sb.WriteString("|")
			sb.WriteString(strconv.Itoa(indexOf(deps, tok.Text)))
			sb.WriteString("|")
		case types.TokenSpace:
		default:
			sb.WriteString(tok.Text)
		}
	}
	return sb.String()
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
