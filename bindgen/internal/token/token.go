package token

import (
	"strings"
	"unicode"

	"github.com/osforge/acpica-go/errors"
)

type Type int

const (
	Ident Type = iota
	Number
	String
	Char
	Punct
	Ellipsis
)

func (t Type) String() string {
	switch t {
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Char:
		return "character"
	case Punct:
		return "punctuation"
	case Ellipsis:
		return "'...'"
	}
	return "unknown"
}

type Token struct {
	Value string
	File  string
	Type  Type
	Line  int
}

// StripComments replaces every C comment with a single space while
// preserving newlines, so later line numbers stay accurate. String and
// character literals are respected.
func StripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	runes := []rune(src)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case r == '/' && i+1 < len(runes) && runes[i+1] == '/':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			if i < len(runes) {
				b.WriteByte('\n')
			}
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			i += 2
			b.WriteByte(' ')
			for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
				if runes[i] == '\n' {
					b.WriteByte('\n')
				}
				i++
			}
			i++ // skip the '/'
		case r == '"' || r == '\'':
			quote := r
			b.WriteRune(r)
			i++
			for i < len(runes) {
				b.WriteRune(runes[i])
				if runes[i] == '\\' && i+1 < len(runes) {
					i++
					b.WriteRune(runes[i])
				} else if runes[i] == quote {
					break
				}
				i++
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokenize lexes one stretch of comment-free C text. file and line locate
// the text in its source header for diagnostics. An unterminated string or
// character literal is reported as a parse error rather than producing a
// truncated token.
func Tokenize(input, file string, line int) ([]Token, error) {
	var tokens []Token
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			line++
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		// Identifier or keyword
		if isIdentStart(r) {
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}
			tokens = append(tokens, Token{Value: string(runes[start:i]), File: file, Type: Ident, Line: line})
			i--
			continue
		}

		// Number (decimal, hex, octal, float; suffixes kept verbatim)
		if unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])) {
			start := i
			for i < len(runes) && isNumberPart(runes[i], i > start && (runes[i-1] == 'e' || runes[i-1] == 'E')) {
				i++
			}
			tokens = append(tokens, Token{Value: string(runes[start:i]), File: file, Type: Number, Line: line})
			i--
			continue
		}

		// String literal
		if r == '"' {
			start := i
			i++
			for i < len(runes) && runes[i] != '"' {
				if runes[i] == '\\' {
					i++
				}
				i++
			}
			if i >= len(runes) {
				return nil, errors.ParseFailed(file, line, "unterminated string literal")
			}
			tokens = append(tokens, Token{Value: string(runes[start : i+1]), File: file, Type: String, Line: line})
			continue
		}

		// Character literal
		if r == '\'' {
			start := i
			i++
			for i < len(runes) && runes[i] != '\'' {
				if runes[i] == '\\' {
					i++
				}
				i++
			}
			if i >= len(runes) {
				return nil, errors.ParseFailed(file, line, "unterminated character literal")
			}
			tokens = append(tokens, Token{Value: string(runes[start : i+1]), File: file, Type: Char, Line: line})
			continue
		}

		// Ellipsis
		if r == '.' && i+2 < len(runes) && runes[i+1] == '.' && runes[i+2] == '.' {
			tokens = append(tokens, Token{Value: "...", File: file, Type: Ellipsis, Line: line})
			i += 2
			continue
		}

		tokens = append(tokens, Token{Value: string(r), File: file, Type: Punct, Line: line})
	}
	return tokens, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isNumberPart(r rune, afterExp bool) bool {
	if afterExp && (r == '+' || r == '-') {
		return true
	}
	return r == '.' || r == '_' || isIdentPart(r)
}
