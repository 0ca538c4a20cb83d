// Package tokenizer turns formula text into a flat token stream.
//
// Two tokenizers are provided. Tokenize is the native lexer; TokenizeExcel
// delegates to github.com/xuri/efp for Excel-grammar compatibility. Both
// return the same token vocabulary and merge "A1:B2" style ranges into a
// single reference token.
//
// Concatenating the Text of every token returned by Tokenize gives back the
// input.
package tokenizer

import (
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/gosheet/pkg/types"
)

const eof = -1

// Func tokenizes formula text.
type Func func(formula string) []types.Token

// Tokenize splits a formula into tokens.
func Tokenize(formula string) []types.Token {
	l := NewLexer(formula)
	var tokens []types.Token
	for {
		tok, ok := l.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// Lexer converts a formula into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string // Input string being scanned
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
}

// NewLexer creates a new lexer from the provided input string.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Next returns the next token. It returns false once the input is exhausted.
func (l *Lexer) Next() (types.Token, bool) {
	l.start = l.current
	ch := l.nextRune()
	switch {
	case ch == eof:
		return types.Token{}, false
	case isSpace(ch):
		for isSpace(l.peek()) {
			l.nextRune()
		}
		return l.emit(types.TokenSpace), true
	case ch == '"':
		return l.scanString(), true
	case isDigit(ch) || (ch == '.' && isDigit(l.peek())):
		return l.scanNumber(), true
	case ch == '(':
		return l.emit(types.TokenLeftParen), true
	case ch == ')':
		return l.emit(types.TokenRightParen), true
	case ch == ',':
		return l.emit(types.TokenArgSeparator), true
	case ch == '?':
		return l.emit(types.TokenDebugger), true
	case ch == '#':
		return l.scanError(), true
	case ch == '\'':
		return l.scanQuotedSheet(), true
	case isWordStart(ch):
		return l.scanWord(), true
	}
	if l.scanOperator(ch) {
		return l.emit(types.TokenOperator), true
	}
	return l.emit(types.TokenUnknown), true
}

func (l *Lexer) emit(kind types.TokenKind) types.Token {
	return types.Token{Kind: kind, Text: l.input[l.start:l.current]}
}

func (l *Lexer) nextRune() rune {
	if l.current >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) peek() rune {
	r := l.nextRune()
	l.backup()
	return r
}

func (l *Lexer) acceptRune(r rune) bool {
	if l.nextRune() == r {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptRun(valid func(rune) bool) {
	for valid(l.nextRune()) {
	}
	l.backup()
}

// scanOperator consumes the remainder of an operator starting with ch.
func (l *Lexer) scanOperator(ch rune) bool {
	switch ch {
	case '<':
		if !l.acceptRune('=') {
			l.acceptRune('>')
		}
		return true
	case '>':
		l.acceptRune('=')
		return true
	case '=', '+', '-', '*', '/', '^', '&', '%', ':':
		return true
	}
	return false
}

// scanString scans a double-quoted string. A backslash escapes the next
// character. An unterminated string runs to the end of the input.
func (l *Lexer) scanString() types.Token {
	for {
		switch l.nextRune() {
		case '\\':
			l.nextRune()
		case '"', eof:
			return l.emit(types.TokenString)
		}
	}
}

func (l *Lexer) scanNumber() types.Token {
	l.acceptRun(isDigit)
	if l.acceptRune('.') {
		l.acceptRun(isDigit)
	}
	if r := l.peek(); r == 'e' || r == 'E' {
		mark := l.current
		l.nextRune()
		if !l.acceptRune('+') {
			l.acceptRune('-')
		}
		if !isDigit(l.peek()) {
			l.current = mark
			return l.emit(types.TokenNumber)
		}
		l.acceptRun(isDigit)
	}
	return l.emit(types.TokenNumber)
}

// scanError scans an error literal. Only #REF (with or without the
// trailing !) is a reference; other error literals are unknown tokens.
func (l *Lexer) scanError() types.Token {
	l.acceptRun(isWordRune)
	l.acceptRune('!')
	text := strings.ToUpper(strings.TrimSuffix(l.input[l.start:l.current], "!"))
	if text == "#REF" {
		return l.emit(types.TokenInvalidReference)
	}
	return l.emit(types.TokenUnknown)
}

// scanQuotedSheet scans 'Sheet name'!A1. A quoted name that is not followed
// by a valid cell reference is an unknown token.
func (l *Lexer) scanQuotedSheet() types.Token {
	for {
		r := l.nextRune()
		if r == eof {
			return l.emit(types.TokenUnknown)
		}
		if r == '\'' {
			if l.acceptRune('\'') {
				continue
			}
			break
		}
	}
	if !l.acceptRune('!') {
		return l.emit(types.TokenUnknown)
	}
	cellStart := l.current
	l.acceptRun(isWordRune)
	if !isCell(l.input[cellStart:l.current]) {
		return l.emit(types.TokenUnknown)
	}
	l.scanRangeEnd()
	return l.emit(types.TokenReference)
}

// scanWord scans an identifier, a cell reference (optionally sheet
// qualified) or a function name.
func (l *Lexer) scanWord() types.Token {
	l.acceptRun(isWordRune)
	wordEnd := l.current
	if l.acceptRune('!') {
		cellStart := l.current
		l.acceptRun(isWordRune)
		if isCell(l.input[cellStart:l.current]) {
			l.scanRangeEnd()
			return l.emit(types.TokenReference)
		}
		l.current = wordEnd
	}
	// LOG10( and SUM (1) are calls, not a cell and a name. Spaces before
	// the parenthesis stay separate tokens.
	if l.parenFollows() {
		return l.emit(types.TokenFunction)
	}
	if isCell(l.input[l.start:l.current]) {
		l.scanRangeEnd()
		return l.emit(types.TokenReference)
	}
	return l.emit(types.TokenSymbol)
}

// parenFollows reports whether the next rune after any whitespace is '('.
// The read position is left unchanged.
func (l *Lexer) parenFollows() bool {
	for _, r := range l.input[l.current:] {
		if !isSpace(r) {
			return r == '('
		}
	}
	return false
}

// scanRangeEnd extends a reference with ":<cell>" when present.
func (l *Lexer) scanRangeEnd() {
	mark := l.current
	if !l.acceptRune(':') {
		return
	}
	cellStart := l.current
	l.acceptRun(isWordRune)
	if !isCell(l.input[cellStart:l.current]) {
		l.current = mark
	}
}

// isCell reports whether s is a cell address such as A1, $B$12 or xfd99.
func isCell(s string) bool {
	i := 0
	if i < len(s) && s[i] == '$' {
		i++
	}
	letters := i
	for i < len(s) && isLetter(rune(s[i])) {
		i++
	}
	if n := i - letters; n == 0 || n > 3 {
		return false
	}
	if i < len(s) && s[i] == '$' {
		i++
	}
	digits := i
	for i < len(s) && isDigit(rune(s[i])) {
		i++
	}
	return i == len(s) && i > digits
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isWordStart(r rune) bool {
	return isLetter(r) || r == '_' || r == '$'
}

func isWordRune(r rune) bool {
	return isLetter(r) || isDigit(r) || r == '_' || r == '.' || r == '$'
}
