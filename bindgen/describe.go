package bindgen

import (
	"fmt"
	"strings"

	"github.com/osforge/acpica-go/bindgen/internal/ast"
)

// Decl is a display-oriented view of one binding set entry, for the CLI
// inventory listing and the interactive browser.
type Decl struct {
	// Kind is one of "const", "enum", "typedef", "struct", "union", "func".
	Kind string
	// Name is the C declaration name.
	Name string
	// Detail is a one-line C-flavored rendering of the declaration.
	Detail string
}

// Inventory renders every declaration in emission order.
func (s *Set) Inventory() []Decl {
	decls := make([]Decl, 0, s.Len())

	for _, c := range s.Constants() {
		decls = append(decls, Decl{Kind: "const", Name: c.Name, Detail: c.Value})
	}
	for _, en := range s.Enums() {
		decls = append(decls, Decl{
			Kind:   "enum",
			Name:   en.Name,
			Detail: fmt.Sprintf("%d enumerators", len(en.Members)),
		})
	}
	for _, td := range s.Typedefs() {
		decls = append(decls, Decl{Kind: "typedef", Name: td.Name, Detail: typeString(td.Underlying)})
	}
	for _, st := range s.Structs() {
		kind := "struct"
		if st.Union {
			kind = "union"
		}
		decls = append(decls, Decl{
			Kind:   kind,
			Name:   st.Name,
			Detail: fmt.Sprintf("%d fields", len(st.Fields)),
		})
	}
	for _, fn := range s.Funcs() {
		decls = append(decls, Decl{Kind: "func", Name: fn.Name, Detail: signature(fn)})
	}

	return decls
}

// typeString renders a C type reference.
func typeString(t ast.Type) string {
	var b strings.Builder
	switch {
	case t.Struct:
		b.WriteString("struct ")
	case t.Union:
		b.WriteString("union ")
	case t.Enum:
		b.WriteString("enum ")
	}
	if t.Name == "" {
		b.WriteString("<anonymous>")
	} else {
		b.WriteString(t.Name)
	}
	b.WriteString(strings.Repeat("*", t.Pointers))
	if t.ArrayLen != "" {
		fmt.Fprintf(&b, "[%s]", t.ArrayLen)
	}
	return b.String()
}

// signature renders a prototype the way the umbrella header spells it.
func signature(f ast.Func) string {
	var params []string
	for _, p := range f.Params {
		s := typeString(p.Type)
		if p.Name != "" {
			s += " " + p.Name
		}
		params = append(params, s)
	}
	if f.Variadic {
		params = append(params, "...")
	}
	if len(params) == 0 {
		params = []string{"void"}
	}
	return fmt.Sprintf("%s %s(%s)", typeString(f.Ret), f.Name, strings.Join(params, ", "))
}
