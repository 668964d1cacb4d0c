package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/osforge/acpica-go/bindgen/internal/ast"
	"github.com/osforge/acpica-go/bindgen/internal/token"
	"github.com/osforge/acpica-go/errors"
)

// define is one entry in the preprocessor's define table.
type define struct {
	value    string // raw replacement text, "" for bare defines
	funcLike bool
}

// Preprocessor expands the umbrella header and everything it transitively
// includes into one token stream, in include-expansion order. That single
// deterministic ordering is what makes the generated binding set
// byte-stable across runs.
//
// It is deliberately not a full C preprocessor: object-like defines are
// collected as binding constants and feed conditional evaluation, but no
// macro expansion is performed on declaration text. Vendor headers declare
// their public surface directly, which is all the generator consumes.
type Preprocessor struct {
	includeDirs []string
	defines     map[string]define
	included    map[string]bool
	header      *ast.Header
	tokens      []token.Token
}

// NewPreprocessor creates a Preprocessor searching includeDirs, with
// predefines active from the start (the platform configuration the shim
// header would otherwise establish at compile time).
func NewPreprocessor(includeDirs []string, predefines map[string]string) *Preprocessor {
	p := &Preprocessor{
		includeDirs: includeDirs,
		defines:     make(map[string]define),
		included:    make(map[string]bool),
		header:      ast.NewHeader(),
	}
	for name, value := range predefines {
		p.defines[name] = define{value: value}
	}
	return p
}

// Header returns the declaration set accumulated so far (constants from
// object-like defines; the parser adds the rest).
func (p *Preprocessor) Header() *ast.Header { return p.header }

// Tokens returns the expanded token stream.
func (p *Preprocessor) Tokens() []token.Token { return p.tokens }

// Expand processes path and its transitive includes. Each file is expanded
// at most once (include guards and #pragma once both short-circuit here).
func (p *Preprocessor) Expand(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Filesystem(errors.StageBindgen, path, err)
	}
	if p.included[abs] {
		return nil
	}
	p.included[abs] = true

	raw, err := os.ReadFile(abs)
	if err != nil {
		return errors.Filesystem(errors.StageBindgen, abs, err)
	}

	src := token.StripComments(string(raw))
	lines := logicalLines(src)

	// Conditional nesting state for this file.
	var stack []frame

	active := func() bool {
		for _, f := range stack {
			if !f.active {
				return false
			}
		}
		return true
	}

	for _, ln := range lines {
		text := strings.TrimSpace(ln.text)
		if text == "" {
			continue
		}

		if !strings.HasPrefix(text, "#") {
			if active() {
				toks, err := token.Tokenize(ln.text, abs, ln.line)
				if err != nil {
					return err
				}
				p.tokens = append(p.tokens, toks...)
			}
			continue
		}

		directive, rest := splitDirective(text)
		switch directive {
		case "include":
			if !active() {
				continue
			}
			target, ok := includeTarget(rest)
			if !ok {
				return errors.ParseFailed(abs, ln.line, fmt.Sprintf("malformed include %q", text))
			}
			resolved, err := p.resolveInclude(filepath.Dir(abs), target)
			if err != nil {
				return errors.UnresolvedInclude(fmt.Sprintf("%s:%d", abs, ln.line), target, err)
			}
			if err := p.Expand(resolved); err != nil {
				return err
			}

		case "define":
			if active() {
				p.handleDefine(rest)
			}

		case "undef":
			if active() {
				delete(p.defines, strings.TrimSpace(rest))
			}

		case "ifdef":
			name := strings.TrimSpace(rest)
			on := active() && p.defined(name)
			stack = append(stack, frame{active: on, taken: on})

		case "ifndef":
			name := strings.TrimSpace(rest)
			on := active() && !p.defined(name)
			stack = append(stack, frame{active: on, taken: on})

		case "if":
			on := false
			if active() {
				v, err := p.evalCondition(rest, abs, ln.line)
				if err != nil {
					return err
				}
				on = v
			}
			stack = append(stack, frame{active: on, taken: on})

		case "elif":
			if len(stack) == 0 {
				return errors.ParseFailed(abs, ln.line, "#elif without #if")
			}
			f := &stack[len(stack)-1]
			if f.taken {
				f.active = false
				continue
			}
			stack[len(stack)-1].active = false
			if activeAbove(stack) {
				v, err := p.evalCondition(rest, abs, ln.line)
				if err != nil {
					return err
				}
				f.active = v
				f.taken = v
			}

		case "else":
			if len(stack) == 0 {
				return errors.ParseFailed(abs, ln.line, "#else without #if")
			}
			f := &stack[len(stack)-1]
			f.active = !f.taken && activeAbove(stack)
			if f.active {
				f.taken = true
			}

		case "endif":
			if len(stack) == 0 {
				return errors.ParseFailed(abs, ln.line, "#endif without #if")
			}
			stack = stack[:len(stack)-1]

		case "pragma":
			if active() && strings.TrimSpace(rest) == "once" {
				// already guaranteed by the included map
				continue
			}

		case "error":
			if active() {
				return errors.ParseFailed(abs, ln.line, fmt.Sprintf("#error %s", strings.TrimSpace(rest)))
			}

		default:
			// #warning, #line and friends carry nothing the generator needs
		}
	}

	if len(stack) != 0 {
		return errors.ParseFailed(abs, len(lines), "unterminated conditional block")
	}
	return nil
}

// frame records whether the current conditional branch is active and
// whether any branch of its #if chain has been taken yet.
type frame struct {
	active bool
	taken  bool
}

// activeAbove reports whether every frame except the innermost is active.
func activeAbove(stack []frame) bool {
	for _, f := range stack[:len(stack)-1] {
		if !f.active {
			return false
		}
	}
	return true
}

func (p *Preprocessor) defined(name string) bool {
	_, ok := p.defines[name]
	return ok
}

// handleDefine records a define and, when it is an object-like define with
// a literal value, adds it to the binding constants.
func (p *Preprocessor) handleDefine(rest string) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return
	}

	name := rest
	var body string
	for i, r := range rest {
		if !isIdentRune(r) {
			name = rest[:i]
			body = rest[i:]
			break
		}
	}
	if name == "" {
		return
	}

	// A '(' immediately after the name makes it function-like.
	if strings.HasPrefix(body, "(") {
		p.defines[name] = define{funcLike: true}
		return
	}

	body = strings.TrimSpace(body)
	p.defines[name] = define{value: body}

	if c, ok := constantFromDefine(name, body); ok {
		p.header.AddConstant(c)
	}
}

// constantFromDefine classifies an object-like define body as a manifest
// constant. Only literal values are taken: an integer (with optional
// parens and suffixes) or a string. Anything else (casts, expressions,
// other macros) is visible to conditionals but generates nothing.
func constantFromDefine(name, body string) (ast.Constant, bool) {
	body = strings.TrimSpace(body)
	for strings.HasPrefix(body, "(") && strings.HasSuffix(body, ")") {
		body = strings.TrimSpace(body[1 : len(body)-1])
	}
	if body == "" {
		return ast.Constant{}, false
	}

	toks, err := token.Tokenize(body, "", 0)
	if err != nil {
		return ast.Constant{}, false
	}
	if len(toks) == 1 && toks[0].Type == token.String {
		return ast.Constant{Name: name, Value: toks[0].Value, IsString: true}, true
	}
	if len(toks) == 1 && toks[0].Type == token.Number {
		return ast.Constant{Name: name, Value: trimIntSuffix(toks[0].Value)}, true
	}
	// Negative literal.
	if len(toks) == 2 && toks[0].Value == "-" && toks[1].Type == token.Number {
		return ast.Constant{Name: name, Value: "-" + trimIntSuffix(toks[1].Value)}, true
	}
	return ast.Constant{}, false
}

// trimIntSuffix drops C integer suffixes (U, L, UL, ULL, ...) which have
// no Go spelling.
func trimIntSuffix(v string) string {
	return strings.TrimRight(v, "uUlL")
}

func (p *Preprocessor) resolveInclude(fromDir, target string) (string, error) {
	candidates := make([]string, 0, len(p.includeDirs)+1)
	candidates = append(candidates, filepath.Join(fromDir, target))
	for _, dir := range p.includeDirs {
		candidates = append(candidates, filepath.Join(dir, target))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("not found under %s or include roots", fromDir)
}

// includeTarget extracts the path from `"x.h"` or `<x.h>` forms.
func includeTarget(rest string) (string, bool) {
	rest = strings.TrimSpace(rest)
	if len(rest) >= 2 && rest[0] == '"' && rest[len(rest)-1] == '"' {
		return rest[1 : len(rest)-1], true
	}
	if len(rest) >= 2 && rest[0] == '<' && rest[len(rest)-1] == '>' {
		return rest[1 : len(rest)-1], true
	}
	return "", false
}

// splitDirective splits "#  define FOO 1" into ("define", " FOO 1").
func splitDirective(text string) (string, string) {
	text = strings.TrimSpace(strings.TrimPrefix(text, "#"))
	for i, r := range text {
		if !isIdentRune(r) {
			return text[:i], text[i:]
		}
	}
	return text, ""
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// logicalLine is one backslash-joined source line.
type logicalLine struct {
	text string
	line int
}

// logicalLines splits comment-free source into logical lines, joining
// backslash-newline continuations onto the line they start on.
func logicalLines(src string) []logicalLine {
	var out []logicalLine
	physical := strings.Split(src, "\n")

	for i := 0; i < len(physical); i++ {
		start := i + 1 // 1-based
		text := physical[i]
		for strings.HasSuffix(strings.TrimRight(text, " \t"), "\\") && i+1 < len(physical) {
			text = strings.TrimSuffix(strings.TrimRight(text, " \t"), "\\") + " " + physical[i+1]
			i++
		}
		out = append(out, logicalLine{text: text, line: start})
	}
	return out
}
