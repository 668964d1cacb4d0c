package bindgen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/osforge/acpica-go/bindgen/internal/ast"
	"github.com/osforge/acpica-go/bindgen/internal/token"
	"github.com/osforge/acpica-go/errors"
)

// EmitOptions fixes the shape of the generated module. The values come
// from pipeline configuration, not from anything discovered at run time,
// so two runs over identical headers emit identical bytes.
type EmitOptions struct {
	// Package is the Go package name of the output module.
	Package string
	// Include is the umbrella header line for the cgo preamble.
	Include string
	// CgoCFLAGS and CgoLDFLAGS are the fixed cgo directives.
	CgoCFLAGS  string
	CgoLDFLAGS string
}

// Emit serializes the binding set as a Go cgo source file: the fixed
// preamble followed by constants, enums, typedefs, struct mirrors and
// function wrappers, all in declaration order.
func Emit(set *Set, opts EmitOptions) ([]byte, error) {
	e := &emitter{set: set}
	body, err := e.renderBody()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("// Code generated by acpigen. DO NOT EDIT.\n")
	b.WriteString("//\n")
	b.WriteString("// Freestanding bindings over the vendored ACPICA public surface. Nothing\n")
	b.WriteString("// here may rely on hosted C runtime initialization; callers link only\n")
	b.WriteString("// against the freestanding static archive this repository builds.\n")
	b.WriteString("//\n")
	b.WriteString("//nolint:revive,stylecheck,unused // mechanical generation artifacts\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "package %s\n\n", opts.Package)
	b.WriteString("/*\n")
	if opts.CgoCFLAGS != "" {
		fmt.Fprintf(&b, "#cgo CFLAGS: %s\n", opts.CgoCFLAGS)
	}
	if opts.CgoLDFLAGS != "" {
		fmt.Fprintf(&b, "#cgo LDFLAGS: %s\n", opts.CgoLDFLAGS)
	}
	fmt.Fprintf(&b, "#include %q\n", opts.Include)
	b.WriteString("*/\n")
	b.WriteString("import \"C\"\n\n")
	if e.usesUnsafe {
		b.WriteString("import \"unsafe\"\n\n")
	}
	b.WriteString(body)

	return []byte(b.String()), nil
}

type emitter struct {
	set        *Set
	usesUnsafe bool
}

func (e *emitter) renderBody() (string, error) {
	var b strings.Builder

	for _, c := range e.set.Constants() {
		fmt.Fprintf(&b, "const %s = %s\n", goName(c.Name), c.Value)
	}
	if len(e.set.Constants()) > 0 {
		b.WriteString("\n")
	}

	for _, en := range e.set.Enums() {
		if err := e.renderEnum(&b, en); err != nil {
			return "", err
		}
	}

	for _, td := range e.set.Typedefs() {
		if err := e.renderTypedef(&b, td); err != nil {
			return "", err
		}
	}
	if len(e.set.Typedefs()) > 0 {
		b.WriteString("\n")
	}

	for _, st := range e.set.Structs() {
		if err := e.renderStruct(&b, st); err != nil {
			return "", err
		}
	}

	for _, fn := range e.set.Funcs() {
		if err := e.renderFunc(&b, fn); err != nil {
			return "", err
		}
	}

	return b.String(), nil
}

func (e *emitter) renderEnum(b *strings.Builder, en ast.Enum) error {
	typeName := ""
	if en.Name != "" {
		typeName = goName(en.Name)
		fmt.Fprintf(b, "type %s int32\n\n", typeName)
	}
	if len(en.Members) == 0 {
		return nil
	}

	b.WriteString("const (\n")
	next := int64(0)
	counterValid := true
	prev := ""
	for _, m := range en.Members {
		name := goName(m.Name)
		value := ""
		switch {
		case m.HasValue:
			value = m.Value
			if v, err := parseEnumValue(m.Value); err == nil {
				value = fmt.Sprintf("%d", v)
				next = v + 1
				counterValid = true
			} else {
				if !enumExprOK(m.Value) {
					return errors.New(errors.StageEmit, errors.KindParse).
						Detail("enum %s: enumerator %s has value %q with no Go spelling",
							enumDisplayName(en), m.Name, m.Value).
						Build()
				}
				counterValid = false
			}
		case counterValid:
			value = fmt.Sprintf("%d", next)
			next++
		default:
			// predecessor had a non-literal value; chain off its name
			value = prev + " + 1"
		}
		if typeName != "" {
			fmt.Fprintf(b, "\t%s %s = %s\n", name, typeName, value)
		} else {
			fmt.Fprintf(b, "\t%s = %s\n", name, value)
		}
		prev = name
	}
	b.WriteString(")\n\n")
	return nil
}

func (e *emitter) renderTypedef(b *strings.Builder, td ast.Typedef) error {
	u := td.Underlying
	name := goName(td.Name)

	switch {
	case u.Pointers > 0:
		e.usesUnsafe = true
		fmt.Fprintf(b, "type %s = unsafe.Pointer\n", name)
	case u.Struct || u.Union:
		if e.set.header.StructNamed(u.Name) {
			fmt.Fprintf(b, "type %s = %s\n", name, goName(u.Name))
		} else {
			// incomplete tag, only ever used behind a pointer
			fmt.Fprintf(b, "type %s struct{}\n", name)
		}
	case u.Enum:
		if e.set.header.EnumNamed(u.Name) {
			fmt.Fprintf(b, "type %s = %s\n", name, goName(u.Name))
		} else {
			fmt.Fprintf(b, "type %s = int32\n", name)
		}
	default:
		goType, err := e.goType(u)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "type %s = %s\n", name, goType)
	}
	return nil
}

func (e *emitter) renderStruct(b *strings.Builder, st ast.Struct) error {
	if st.Name == "" {
		// anonymous aggregate that no typedef adopted; nothing can
		// reference it
		return nil
	}

	if st.Union {
		// Go has no unions; mirror the layout as raw storage plus typed
		// accessors is out of scope, so expose the bytes.
		fmt.Fprintf(b, "type %s struct {\n", goName(st.Name))
		fmt.Fprintf(b, "\tRaw [%d]byte\n", e.unionSize(st))
		b.WriteString("}\n\n")
		return nil
	}

	fmt.Fprintf(b, "type %s struct {\n", goName(st.Name))
	for _, f := range st.Fields {
		goType, err := e.goType(f.Type)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "\t%s %s\n", goName(f.Name), goType)
	}
	b.WriteString("}\n\n")
	return nil
}

func (e *emitter) renderFunc(b *strings.Builder, fn ast.Func) error {
	if fn.Variadic {
		fmt.Fprintf(b, "// %s is variadic; cgo cannot call variadic C functions.\n\n", goName(fn.Name))
		return nil
	}

	var params, args []string
	for i, p := range fn.Params {
		pname := paramName(p.Name, i)
		goType, err := e.goType(p.Type)
		if err != nil {
			return err
		}
		arg, err := e.castToC(pname, p.Type)
		if err != nil {
			return err
		}
		params = append(params, pname+" "+goType)
		args = append(args, arg)
	}

	call := fmt.Sprintf("C.%s(%s)", fn.Name, strings.Join(args, ", "))

	if fn.Ret.IsVoid() {
		fmt.Fprintf(b, "func %s(%s) {\n\t%s\n}\n\n", goName(fn.Name), strings.Join(params, ", "), call)
		return nil
	}

	retType, err := e.goType(fn.Ret)
	if err != nil {
		return err
	}
	ret, err := e.castFromC(call, fn.Ret, retType)
	if err != nil {
		return err
	}
	fmt.Fprintf(b, "func %s(%s) %s {\n\t%s\n}\n\n",
		goName(fn.Name), strings.Join(params, ", "), retType, ret)
	return nil
}

// goType maps a C type reference onto its Go spelling.
func (e *emitter) goType(t ast.Type) (string, error) {
	if t.ArrayLen != "" {
		elem := t
		elem.ArrayLen = ""
		inner, err := e.goType(elem)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%s]%s", t.ArrayLen, inner), nil
	}
	if t.Pointers > 0 {
		e.usesUnsafe = true
		return "unsafe.Pointer", nil
	}
	if t.Struct || t.Union || t.Enum {
		return goName(t.Name), nil
	}
	if g, ok := scalarGoType(t.Name); ok {
		return g, nil
	}
	// Named type: typedef, struct or enum known to the set.
	h := e.set.header
	if _, ok := h.Typedef(t.Name); ok {
		return goName(t.Name), nil
	}
	if h.StructNamed(t.Name) || h.EnumNamed(t.Name) {
		return goName(t.Name), nil
	}
	return "", errors.New(errors.StageBindgen, errors.KindParse).
		Detail("unknown type %q in binding set", t.Name).
		Build()
}

// castToC converts a wrapper argument to its C spelling.
func (e *emitter) castToC(name string, t ast.Type) (string, error) {
	if t.Pointers > 0 {
		if t.Name == "void" {
			if t.Pointers == 1 {
				return name, nil // unsafe.Pointer matches void* directly
			}
			return fmt.Sprintf("(%sunsafe.Pointer)(%s)", strings.Repeat("*", t.Pointers-1), name), nil
		}
		stars := strings.Repeat("*", t.Pointers)
		spelling, err := e.cSpelling(t)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%sC.%s)(%s)", stars, spelling, name), nil
	}

	spelling, err := e.cSpelling(t)
	if err != nil {
		return "", err
	}
	h := e.set.header
	if t.Struct || t.Union || h.StructNamed(t.Name) || isAggregateTypedef(h, t.Name) {
		// by-value aggregate: reinterpret the Go mirror
		e.usesUnsafe = true
		return fmt.Sprintf("*(*C.%s)(unsafe.Pointer(&%s))", spelling, name), nil
	}
	return fmt.Sprintf("C.%s(%s)", spelling, name), nil
}

// castFromC converts the C call result back to the Go return type.
func (e *emitter) castFromC(call string, t ast.Type, goRet string) (string, error) {
	if t.Pointers > 0 {
		e.usesUnsafe = true
		return fmt.Sprintf("return unsafe.Pointer(%s)", call), nil
	}
	h := e.set.header
	if t.Struct || t.Union || h.StructNamed(t.Name) || isAggregateTypedef(h, t.Name) {
		e.usesUnsafe = true
		return fmt.Sprintf("ret := %s\n\treturn *(*%s)(unsafe.Pointer(&ret))", call, goRet), nil
	}
	return fmt.Sprintf("return %s(%s)", goRet, call), nil
}

// cSpelling returns the C-side spelling of a base type for use after "C.".
func (e *emitter) cSpelling(t ast.Type) (string, error) {
	if t.Struct {
		return "struct_" + t.Name, nil
	}
	if t.Union {
		return "union_" + t.Name, nil
	}
	if t.Enum {
		return "enum_" + t.Name, nil
	}
	if s, ok := scalarCSpelling(t.Name); ok {
		return s, nil
	}
	h := e.set.header
	if _, ok := h.Typedef(t.Name); ok {
		return t.Name, nil
	}
	if h.StructNamed(t.Name) {
		return "struct_" + t.Name, nil
	}
	if h.EnumNamed(t.Name) {
		return t.Name, nil
	}
	return "", errors.New(errors.StageBindgen, errors.KindParse).
		Detail("unknown C type %q", t.Name).
		Build()
}

func isAggregateTypedef(h *ast.Header, name string) bool {
	td, ok := h.Typedef(name)
	return ok && (td.Underlying.Struct || td.Underlying.Union)
}

// scalarGoType maps normalized C scalar spellings to Go types.
func scalarGoType(name string) (string, bool) {
	switch normalizeScalar(name) {
	case "char", "signed char":
		return "int8", true
	case "unsigned char":
		return "uint8", true
	case "short":
		return "int16", true
	case "unsigned short":
		return "uint16", true
	case "int", "signed":
		return "int32", true
	case "unsigned", "unsigned int":
		return "uint32", true
	case "long", "long long":
		return "int64", true
	case "unsigned long", "unsigned long long":
		return "uint64", true
	case "float":
		return "float32", true
	case "double":
		return "float64", true
	}
	return "", false
}

// scalarCSpelling maps normalized C scalars to their cgo names.
func scalarCSpelling(name string) (string, bool) {
	switch normalizeScalar(name) {
	case "char":
		return "char", true
	case "signed char":
		return "schar", true
	case "unsigned char":
		return "uchar", true
	case "short":
		return "short", true
	case "unsigned short":
		return "ushort", true
	case "int", "signed":
		return "int", true
	case "unsigned", "unsigned int":
		return "uint", true
	case "long":
		return "long", true
	case "unsigned long":
		return "ulong", true
	case "long long":
		return "longlong", true
	case "unsigned long long":
		return "ulonglong", true
	case "float":
		return "float", true
	case "double":
		return "double", true
	case "void":
		return "void", true
	}
	return "", false
}

// normalizeScalar canonicalizes multi-word scalar spellings: signedness
// first, "int" dropped when another width word carries it, redundant
// "signed" kept only on char.
func normalizeScalar(name string) string {
	words := strings.Fields(name)
	if len(words) <= 1 {
		return name
	}
	var unsigned, signed, short bool
	longs := 0
	base := ""
	for _, w := range words {
		switch w {
		case "unsigned":
			unsigned = true
		case "signed":
			signed = true
		case "long":
			longs++
		case "short":
			short = true
		default:
			base = w
		}
	}
	var out []string
	if unsigned {
		out = append(out, "unsigned")
	}
	if signed && base == "char" {
		out = append(out, "signed")
	}
	switch {
	case short:
		out = append(out, "short")
	case longs == 1:
		out = append(out, "long")
	case longs >= 2:
		out = append(out, "long", "long")
	}
	if base != "" && base != "int" {
		out = append(out, base)
	}
	if len(out) == 0 {
		return "int"
	}
	return strings.Join(out, " ")
}

// parseEnumValue parses a literal enumerator value; expressions like
// shifts fail here and are emitted verbatim instead.
func parseEnumValue(v string) (int64, error) {
	clean := strings.TrimRight(strings.TrimSpace(v), "uUlL")
	return strconv.ParseInt(clean, 0, 64)
}

// enumExprOK vets a non-literal enumerator value for verbatim emission.
// Arithmetic over numbers and other enumerators reads the same in Go; a
// C cast such as (UINT32) 4 does not, and must be rejected rather than
// handed to the formatter.
func enumExprOK(v string) bool {
	toks, err := token.Tokenize(v, "", 0)
	if err != nil || len(toks) == 0 {
		return false
	}
	for i, t := range toks {
		switch t.Type {
		case token.Number, token.Ident:
		case token.Punct:
			switch t.Value {
			case "+", "-", "*", "/", "|", "&", "^", "<", ">", "(", ")":
			default:
				return false
			}
		default:
			return false
		}
		if t.Type == token.Ident && i > 0 && i+2 < len(toks) &&
			toks[i-1].Value == "(" && toks[i+1].Value == ")" &&
			(toks[i+2].Type == token.Number || toks[i+2].Type == token.Ident) {
			return false
		}
	}
	return true
}

func enumDisplayName(en ast.Enum) string {
	if en.Name == "" {
		return "<anonymous>"
	}
	return en.Name
}

// unionSize bounds the storage for a union's Go mirror by resolving each
// member down to scalars: 8 bytes per scalar slot, arrays scaled by their
// extent, nested aggregates summed field by field with each field rounded
// up to a full slot. The mirror only needs to be at least as large as the
// C union; by-value round trips do not occur in the vendor's public
// surface.
func (e *emitter) unionSize(st ast.Struct) int {
	max := 8
	for _, f := range st.Fields {
		if s := e.fieldBound(f.Type); s > max {
			max = s
		}
	}
	return max
}

func (e *emitter) fieldBound(t ast.Type) int {
	count := 1
	if t.ArrayLen != "" {
		if n, err := parseEnumValue(t.ArrayLen); err == nil && n > 0 {
			count = int(n)
		}
	}
	elem := t
	elem.ArrayLen = ""
	return count * e.elemBound(elem)
}

func (e *emitter) elemBound(t ast.Type) int {
	if t.Pointers > 0 {
		return 8
	}
	if t.Struct || t.Union {
		return e.aggregateBound(t.Name)
	}
	if td, ok := e.set.header.Typedef(t.Name); ok {
		return e.fieldBound(td.Underlying)
	}
	if e.set.header.StructNamed(t.Name) {
		return e.aggregateBound(t.Name)
	}
	return 8
}

func (e *emitter) aggregateBound(name string) int {
	st, ok := e.set.header.StructDef(name)
	if !ok {
		// incomplete tag; only ever referenced behind a pointer
		return 8
	}
	if st.Union {
		return e.unionSize(st)
	}
	sum := 0
	for _, f := range st.Fields {
		sum += roundUpSlot(e.fieldBound(f.Type))
	}
	if sum < 8 {
		return 8
	}
	return sum
}

func roundUpSlot(n int) int {
	return (n + 7) &^ 7
}

// goName exports a C identifier by capitalizing its first rune. Collisions
// are impossible for the vendor's all-caps public names; lowercase tags
// gain access without renaming the rest of the identifier.
func goName(c string) string {
	if c == "" {
		return c
	}
	r := []rune(c)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true,
	"continue": true, "default": true, "defer": true, "else": true,
	"fallthrough": true, "for": true, "func": true, "go": true,
	"goto": true, "if": true, "import": true, "interface": true,
	"map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true,
	"var": true,
}

// paramName picks a collision-free Go parameter name.
func paramName(c string, i int) string {
	if c == "" {
		return fmt.Sprintf("arg%d", i)
	}
	if goKeywords[c] {
		return c + "_"
	}
	return c
}
