package bindgen

import (
	"github.com/osforge/acpica-go/bindgen/internal/ast"
	"github.com/osforge/acpica-go/bindgen/internal/parser"
)

// Config controls binding generation.
type Config struct {
	// IncludeDirs are searched, in order, for includes that are not
	// relative to the including header. The patched include root and its
	// platform subdirectory belong here.
	IncludeDirs []string
	// Predefines seed the preprocessor's define table, standing in for
	// what the C compiler would define on its command line.
	Predefines map[string]string
}

// Set is the binding set: the ordered, deduplicated collection of typed
// declarations visible from the umbrella header. Order is parse order
// (include expansion, then in-file order), so byte-identical headers
// produce an identical Set regardless of where the workspace lives.
type Set struct {
	header *ast.Header
}

// Generate parses the umbrella header and everything it transitively
// includes, producing the binding set. Any malformed declaration or
// unresolvable include is fatal.
func Generate(umbrellaPath string, cfg Config) (*Set, error) {
	pp := parser.NewPreprocessor(cfg.IncludeDirs, cfg.Predefines)
	if err := pp.Expand(umbrellaPath); err != nil {
		return nil, err
	}

	header := pp.Header()
	if err := parser.New(pp.Tokens(), header).Parse(); err != nil {
		return nil, err
	}
	return &Set{header: header}, nil
}

// Constants returns the manifest constants in declaration order.
func (s *Set) Constants() []ast.Constant { return s.header.Constants }

// Enums returns the enum definitions in declaration order.
func (s *Set) Enums() []ast.Enum { return s.header.Enums }

// Structs returns the struct and union definitions in declaration order.
func (s *Set) Structs() []ast.Struct { return s.header.Structs }

// Typedefs returns the scalar typedefs in declaration order.
func (s *Set) Typedefs() []ast.Typedef { return s.header.Typedefs }

// Funcs returns the function prototypes in declaration order.
func (s *Set) Funcs() []ast.Func { return s.header.Funcs }

// Len returns the total number of declarations in the set.
func (s *Set) Len() int {
	return len(s.header.Constants) + len(s.header.Enums) +
		len(s.header.Structs) + len(s.header.Typedefs) + len(s.header.Funcs)
}
