package parser

import (
	"fmt"
	"strings"

	"github.com/osforge/acpica-go/bindgen/internal/ast"
	"github.com/osforge/acpica-go/bindgen/internal/token"
	"github.com/osforge/acpica-go/errors"
)

// Parser turns the preprocessed token stream into the declaration set.
// Shape follows the usual recursive-descent layout: pos/peek/next/expect
// over a flat token slice.
type Parser struct {
	header *ast.Header
	tokens []token.Token
	pos    int
}

// New creates a Parser that appends declarations to header.
func New(tokens []token.Token, header *ast.Header) *Parser {
	return &Parser{tokens: tokens, header: header}
}

func (p *Parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) next() *token.Token {
	t := p.peek()
	if t != nil {
		p.pos++
	}
	return t
}

func (p *Parser) accept(value string) bool {
	t := p.peek()
	if t == nil || t.Value != value {
		return false
	}
	p.pos++
	return true
}

func (p *Parser) expect(value string) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, p.errAtEnd("expected %q, found end of input", value)
	}
	if t.Value != value {
		return nil, p.errAt(t, "expected %q, got %q", value, t.Value)
	}
	return t, nil
}

func (p *Parser) errAt(t *token.Token, format string, args ...any) error {
	return errors.ParseFailed(t.File, t.Line, fmt.Sprintf(format, args...))
}

func (p *Parser) errAtEnd(format string, args ...any) error {
	file, line := "", 0
	if len(p.tokens) > 0 {
		last := p.tokens[len(p.tokens)-1]
		file, line = last.File, last.Line
	}
	return errors.ParseFailed(file, line, fmt.Sprintf(format, args...))
}

// Parse consumes the whole stream. Declarations that contribute to the
// binding set (prototypes, aggregates, enums, scalar typedefs) are
// recorded; extern variable declarations are walked over without being
// recorded. Anything that fits neither shape is a fatal parse error.
func (p *Parser) Parse() error {
	for p.peek() != nil {
		if p.accept(";") {
			continue
		}
		if err := p.parseDeclaration(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseDeclaration() error {
	if p.accept("typedef") {
		return p.parseTypedef()
	}

	typ, err := p.parseTypeSpec("")
	if err != nil {
		return err
	}

	// A bare aggregate or enum definition: "struct foo {...};"
	if p.accept(";") {
		return nil
	}

	return p.parseDeclarators(typ, false)
}

// parseDeclarators handles the declarator list after a type specifier,
// classifying each entry as prototype or variable.
func (p *Parser) parseDeclarators(base ast.Type, insideTypedef bool) error {
	for {
		typ := base
		for p.accept("*") {
			typ.Pointers++
		}

		// Function pointer declarator: (*Name)(params)
		if t := p.peek(); t != nil && t.Value == "(" {
			name, err := p.parseFuncPointer()
			if err != nil {
				return err
			}
			if insideTypedef {
				p.header.AddTypedef(ast.Typedef{
					Name:       name,
					Underlying: ast.Type{Name: "void", Pointers: 1},
				})
			}
		} else {
			nameTok := p.next()
			if nameTok == nil {
				return p.errAtEnd("expected declarator name")
			}
			if nameTok.Type != token.Ident {
				return p.errAt(nameTok, "expected declarator name, got %q", nameTok.Value)
			}

			if t := p.peek(); t != nil && t.Value == "(" {
				fn, err := p.parsePrototype(nameTok.Value, typ)
				if err != nil {
					return err
				}
				if !insideTypedef {
					p.header.AddFunc(fn)
				}
			} else {
				if err := p.skipArraySuffix(&typ); err != nil {
					return err
				}
				if insideTypedef {
					p.header.AddTypedef(ast.Typedef{Name: nameTok.Value, Underlying: typ})
				}
				// extern variables are not part of the binding set
			}
		}

		if p.accept(",") {
			continue
		}
		_, err := p.expect(";")
		return err
	}
}

func (p *Parser) parseTypedef() error {
	typ, err := p.parseTypeSpec("")
	if err != nil {
		return err
	}

	// "typedef struct {...} NAME;": the aggregate was parsed with an
	// empty name; the declarator supplies it.
	if typ.Name == "" && (typ.Struct || typ.Union || typ.Enum) {
		nameTok := p.next()
		if nameTok == nil || nameTok.Type != token.Ident {
			return p.errAtEnd("expected typedef name after anonymous aggregate")
		}
		p.adoptAnonymous(typ, nameTok.Value)
		_, err := p.expect(";")
		return err
	}

	return p.parseDeclarators(typ, true)
}

// adoptAnonymous names the most recently added anonymous aggregate.
func (p *Parser) adoptAnonymous(typ ast.Type, name string) {
	if typ.Enum {
		p.header.AdoptAnonymousEnum(name)
		return
	}
	p.header.AdoptAnonymousStruct(name)
}

// parseTypeSpec parses qualifiers plus a base type. context names the
// enclosing declaration when parsing nested aggregates, for synthesized
// names.
func (p *Parser) parseTypeSpec(context string) (ast.Type, error) {
	for {
		t := p.peek()
		if t == nil {
			return ast.Type{}, p.errAtEnd("expected type specifier")
		}
		switch t.Value {
		case "const", "volatile", "extern", "static", "inline", "register":
			p.pos++
			continue
		}
		break
	}

	t := p.peek()
	switch t.Value {
	case "struct", "union":
		return p.parseAggregate(t.Value == "union", context)
	case "enum":
		return p.parseEnum()
	}

	if t.Type != token.Ident {
		return ast.Type{}, p.errAt(t, "expected type specifier, got %q", t.Value)
	}

	// Multi-word scalar types.
	if isScalarWord(t.Value) {
		var words []string
		for {
			w := p.peek()
			if w == nil || w.Type != token.Ident || !isScalarWord(w.Value) {
				break
			}
			words = append(words, w.Value)
			p.pos++
		}
		return ast.Type{Name: strings.Join(words, " ")}, nil
	}

	// Typedef name.
	p.pos++
	return ast.Type{Name: t.Value}, nil
}

func isScalarWord(w string) bool {
	switch w {
	case "void", "char", "short", "int", "long", "float", "double",
		"signed", "unsigned":
		return true
	}
	return false
}

func (p *Parser) parseAggregate(isUnion bool, context string) (ast.Type, error) {
	p.pos++ // struct / union

	name := ""
	if t := p.peek(); t != nil && t.Type == token.Ident {
		name = t.Value
		p.pos++
	}

	typ := ast.Type{Name: name, Struct: !isUnion, Union: isUnion}

	if t := p.peek(); t == nil || t.Value != "{" {
		// Reference to a previously (or externally) defined tag.
		return typ, nil
	}
	p.pos++ // {

	def := ast.Struct{Name: name, Union: isUnion}
	outer := name
	if outer == "" {
		outer = context
	}

	for {
		t := p.peek()
		if t == nil {
			return ast.Type{}, p.errAtEnd("unterminated %s body", aggregateWord(isUnion))
		}
		if t.Value == "}" {
			p.pos++
			break
		}

		fieldType, err := p.parseTypeSpec(outer)
		if err != nil {
			return ast.Type{}, err
		}

		for {
			ft := fieldType
			for p.accept("*") {
				ft.Pointers++
			}

			if nt := p.peek(); nt != nil && nt.Value == "(" {
				fname, err := p.parseFuncPointer()
				if err != nil {
					return ast.Type{}, err
				}
				def.Fields = append(def.Fields, ast.Field{
					Name: fname,
					Type: ast.Type{Name: "void", Pointers: 1},
				})
			} else {
				nameTok := p.next()
				if nameTok == nil || nameTok.Type != token.Ident {
					return ast.Type{}, p.errAtEnd("expected field name in %s %s", aggregateWord(isUnion), name)
				}
				if err := p.skipArraySuffix(&ft); err != nil {
					return ast.Type{}, err
				}
				// Bitfields keep the declared base type.
				if p.accept(":") {
					if w := p.next(); w == nil {
						return ast.Type{}, p.errAtEnd("unterminated bitfield")
					}
				}
				// Name anonymous nested aggregates after their field.
				if ft.Name == "" && (ft.Struct || ft.Union) {
					synth := outer + "_" + nameTok.Value
					p.adoptAnonymous(ft, synth)
					ft.Name = synth
				}
				def.Fields = append(def.Fields, ast.Field{Name: nameTok.Value, Type: ft})
			}

			if p.accept(",") {
				continue
			}
			if _, err := p.expect(";"); err != nil {
				return ast.Type{}, err
			}
			break
		}
	}

	p.header.AddStruct(def)
	return typ, nil
}

func aggregateWord(isUnion bool) string {
	if isUnion {
		return "union"
	}
	return "struct"
}

// joinExpr renders captured value tokens back to text, reuniting the
// shift operators the single-rune lexer split apart.
func joinExpr(parts []string) string {
	var out []string
	for i := 0; i < len(parts); i++ {
		if (parts[i] == "<" || parts[i] == ">") && i+1 < len(parts) && parts[i+1] == parts[i] {
			out = append(out, parts[i]+parts[i])
			i++
			continue
		}
		out = append(out, parts[i])
	}
	return strings.Join(out, " ")
}

func (p *Parser) parseEnum() (ast.Type, error) {
	p.pos++ // enum

	name := ""
	if t := p.peek(); t != nil && t.Type == token.Ident {
		name = t.Value
		p.pos++
	}

	typ := ast.Type{Name: name, Enum: true}

	if t := p.peek(); t == nil || t.Value != "{" {
		return typ, nil
	}
	p.pos++ // {

	def := ast.Enum{Name: name}
	for {
		t := p.peek()
		if t == nil {
			return ast.Type{}, p.errAtEnd("unterminated enum body")
		}
		if t.Value == "}" {
			p.pos++
			break
		}

		memberTok := p.next()
		if memberTok.Type != token.Ident {
			return ast.Type{}, p.errAt(memberTok, "expected enumerator name, got %q", memberTok.Value)
		}
		member := ast.EnumMember{Name: memberTok.Value}

		if p.accept("=") {
			var parts []string
			depth := 0
			for {
				vt := p.peek()
				if vt == nil {
					return ast.Type{}, p.errAtEnd("unterminated enumerator value")
				}
				if depth == 0 && (vt.Value == "," || vt.Value == "}") {
					break
				}
				if vt.Value == "(" {
					depth++
				}
				if vt.Value == ")" {
					depth--
				}
				parts = append(parts, vt.Value)
				p.pos++
			}
			member.Value = joinExpr(parts)
			member.HasValue = true
		}

		def.Members = append(def.Members, member)
		p.accept(",")
	}

	p.header.AddEnum(def)
	return typ, nil
}

// parsePrototype parses "(params);" after a function name.
func (p *Parser) parsePrototype(name string, ret ast.Type) (ast.Func, error) {
	if _, err := p.expect("("); err != nil {
		return ast.Func{}, err
	}

	fn := ast.Func{Name: name, Ret: ret}

	if p.accept(")") {
		return fn, nil
	}

	for {
		if t := p.peek(); t != nil && t.Type == token.Ellipsis {
			p.pos++
			fn.Variadic = true
			break
		}

		ptype, err := p.parseTypeSpec(name)
		if err != nil {
			return ast.Func{}, err
		}
		for p.accept("*") {
			ptype.Pointers++
		}

		param := ast.Param{Type: ptype}

		if t := p.peek(); t != nil && t.Value == "(" {
			pname, err := p.parseFuncPointer()
			if err != nil {
				return ast.Func{}, err
			}
			param.Name = pname
			param.Type = ast.Type{Name: "void", Pointers: 1}
		} else if t := p.peek(); t != nil && t.Type == token.Ident && !isScalarWord(t.Value) {
			param.Name = t.Value
			p.pos++
			if err := p.skipArraySuffix(&param.Type); err != nil {
				return ast.Func{}, err
			}
			// array parameters decay to pointers
			if param.Type.ArrayLen != "" {
				param.Type.ArrayLen = ""
				param.Type.Pointers++
			}
		}

		// "(void)" -> no parameters
		if !(param.Type.IsVoid() && param.Name == "" && len(fn.Params) == 0 && p.peek() != nil && p.peek().Value == ")") {
			fn.Params = append(fn.Params, param)
		}

		if p.accept(",") {
			continue
		}
		break
	}

	if _, err := p.expect(")"); err != nil {
		return ast.Func{}, err
	}
	return fn, nil
}

// parseFuncPointer consumes "(*Name)(params)" and returns Name. The
// parameter list is skipped: function pointers surface in Go as opaque
// pointers.
func (p *Parser) parseFuncPointer() (string, error) {
	if _, err := p.expect("("); err != nil {
		return "", err
	}
	for p.accept("*") {
	}
	nameTok := p.next()
	if nameTok == nil || nameTok.Type != token.Ident {
		return "", p.errAtEnd("expected function pointer name")
	}
	if _, err := p.expect(")"); err != nil {
		return "", err
	}
	if _, err := p.expect("("); err != nil {
		return "", err
	}
	depth := 1
	for depth > 0 {
		t := p.next()
		if t == nil {
			return "", p.errAtEnd("unterminated function pointer parameter list")
		}
		switch t.Value {
		case "(":
			depth++
		case ")":
			depth--
		}
	}
	return nameTok.Value, nil
}

// skipArraySuffix folds "[N]" onto the type; an empty extent decays to a
// pointer.
func (p *Parser) skipArraySuffix(typ *ast.Type) error {
	for p.accept("[") {
		var parts []string
		for {
			t := p.peek()
			if t == nil {
				return p.errAtEnd("unterminated array extent")
			}
			if t.Value == "]" {
				p.pos++
				break
			}
			parts = append(parts, t.Value)
			p.pos++
		}
		if len(parts) == 0 {
			typ.Pointers++
		} else if typ.ArrayLen == "" {
			typ.ArrayLen = strings.Join(parts, " ")
		}
	}
	return nil
}
