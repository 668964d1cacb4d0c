package parser

import (
	"strconv"
	"strings"

	"github.com/osforge/acpica-go/bindgen/internal/token"
	"github.com/osforge/acpica-go/errors"
)

// evalCondition evaluates a #if/#elif controlling expression. The grammar
// covers what vendor headers actually use in their guard logic: defined(),
// !, &&, ||, comparisons, parens, integer literals, and defines that
// expand to integers. Undefined identifiers evaluate to 0, as in C.
func (p *Preprocessor) evalCondition(expr, file string, line int) (bool, error) {
	toks, err := token.Tokenize(expr, file, line)
	if err != nil {
		return false, err
	}
	ev := &condEval{pp: p, toks: toks, file: file, line: line}
	v, err := ev.parseOr()
	if err != nil {
		return false, err
	}
	if ev.pos != len(ev.toks) {
		return false, errors.ParseFailed(file, line, "trailing tokens in conditional expression")
	}
	return v != 0, nil
}

type condEval struct {
	pp   *Preprocessor
	toks []token.Token
	file string
	pos  int
	line int
	// expanding guards against self-referential defines
	expanding map[string]bool
}

func (e *condEval) peek() string {
	if e.pos >= len(e.toks) {
		return ""
	}
	return e.toks[e.pos].Value
}

func (e *condEval) next() string {
	v := e.peek()
	if v != "" {
		e.pos++
	}
	return v
}

// accept consumes op when the upcoming punctuation spells it. Multi-rune
// operators arrive as consecutive single-rune tokens.
func (e *condEval) accept(op string) bool {
	if e.pos+len(op) > len(e.toks) {
		return false
	}
	for i := 0; i < len(op); i++ {
		t := e.toks[e.pos+i]
		if t.Type != token.Punct || t.Value != string(op[i]) {
			return false
		}
	}
	e.pos += len(op)
	return true
}

func (e *condEval) parseOr() (int64, error) {
	v, err := e.parseAnd()
	if err != nil {
		return 0, err
	}
	for e.accept("||") {
		r, err := e.parseAnd()
		if err != nil {
			return 0, err
		}
		if v != 0 || r != 0 {
			v = 1
		} else {
			v = 0
		}
	}
	return v, nil
}

func (e *condEval) parseAnd() (int64, error) {
	v, err := e.parseCmp()
	if err != nil {
		return 0, err
	}
	for e.accept("&&") {
		r, err := e.parseCmp()
		if err != nil {
			return 0, err
		}
		if v != 0 && r != 0 {
			v = 1
		} else {
			v = 0
		}
	}
	return v, nil
}

func (e *condEval) parseCmp() (int64, error) {
	v, err := e.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		var op string
		switch {
		case e.accept("=="):
			op = "=="
		case e.accept("!="):
			op = "!="
		case e.accept("<="):
			op = "<="
		case e.accept(">="):
			op = ">="
		case e.accept("<"):
			op = "<"
		case e.accept(">"):
			op = ">"
		default:
			return v, nil
		}
		r, err := e.parseUnary()
		if err != nil {
			return 0, err
		}
		var b bool
		switch op {
		case "==":
			b = v == r
		case "!=":
			b = v != r
		case "<=":
			b = v <= r
		case ">=":
			b = v >= r
		case "<":
			b = v < r
		case ">":
			b = v > r
		}
		if b {
			v = 1
		} else {
			v = 0
		}
	}
}

func (e *condEval) parseUnary() (int64, error) {
	if e.accept("!") {
		v, err := e.parseUnary()
		if err != nil {
			return 0, err
		}
		if v == 0 {
			return 1, nil
		}
		return 0, nil
	}
	if e.accept("(") {
		v, err := e.parseOr()
		if err != nil {
			return 0, err
		}
		if !e.accept(")") {
			return 0, errors.ParseFailed(e.file, e.line, "missing ')' in conditional expression")
		}
		return v, nil
	}

	if e.pos >= len(e.toks) {
		return 0, errors.ParseFailed(e.file, e.line, "unexpected end of conditional expression")
	}

	t := e.toks[e.pos]
	switch t.Type {
	case token.Number:
		e.pos++
		v, err := parseCInt(t.Value)
		if err != nil {
			return 0, errors.ParseFailed(e.file, e.line, "bad integer literal "+t.Value)
		}
		return v, nil
	case token.Ident:
		e.pos++
		if t.Value == "defined" {
			paren := e.accept("(")
			name := e.next()
			if name == "" {
				return 0, errors.ParseFailed(e.file, e.line, "defined without operand")
			}
			if paren && !e.accept(")") {
				return 0, errors.ParseFailed(e.file, e.line, "missing ')' after defined")
			}
			if e.pp.defined(name) {
				return 1, nil
			}
			return 0, nil
		}
		return e.identValue(t.Value), nil
	default:
		return 0, errors.ParseFailed(e.file, e.line, "unexpected token "+t.Value+" in conditional expression")
	}
}

// identValue resolves an identifier through the define table; chains of
// object-like defines are followed, anything non-numeric is 0.
func (e *condEval) identValue(name string) int64 {
	if e.expanding == nil {
		e.expanding = make(map[string]bool)
	}
	for !e.expanding[name] {
		e.expanding[name] = true
		d, ok := e.pp.defines[name]
		if !ok || d.funcLike {
			return 0
		}
		body := strings.TrimSpace(d.value)
		if v, err := parseCInt(body); err == nil {
			return v
		}
		if !isIdentifier(body) {
			return 0
		}
		name = body
	}
	return 0
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isIdentRune(r) {
			return false
		}
	}
	return s[0] < '0' || s[0] > '9'
}

// parseCInt parses a C integer literal, accepting 0x/0 prefixes and
// U/L suffixes.
func parseCInt(s string) (int64, error) {
	s = strings.TrimRight(s, "uUlL")
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		// values like 0xFFFFFFFFFFFFFFFF overflow int64 but are valid C
		u, uerr := strconv.ParseUint(s, 0, 64)
		if uerr != nil {
			return 0, err
		}
		v = int64(u)
	}
	if neg {
		v = -v
	}
	return v, nil
}
