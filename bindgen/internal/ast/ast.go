package ast

// Type is a parsed C type reference: a named base type plus pointer depth
// and an optional array length. Qualifiers (const, volatile) are dropped
// during parsing; they have no representation on the Go side.
type Type struct {
	// Name is the C spelling of the base type with multi-word scalars
	// normalized ("unsigned int", "unsigned long long", "void", or a
	// typedef/tag name such as "UINT32" or "ACPI_TABLE_HEADER").
	Name string
	// Struct/Union/Enum mark a tagged aggregate reference
	// ("struct acpi_obj *p").
	Struct bool
	Union  bool
	Enum   bool
	// Pointers is the pointer depth.
	Pointers int
	// ArrayLen is the literal array extent, empty when not an array.
	ArrayLen string
}

// IsVoid reports a plain void type (not void*).
func (t Type) IsVoid() bool {
	return t.Name == "void" && t.Pointers == 0
}

// Param is one function parameter.
type Param struct {
	Name string
	Type Type
}

// Func is a top-level function prototype.
type Func struct {
	Name     string
	Ret      Type
	Params   []Param
	Variadic bool
}

// Field is one struct or union member.
type Field struct {
	Name string
	Type Type
}

// Struct is a struct or union definition.
type Struct struct {
	Name   string
	Fields []Field
	Union  bool
}

// EnumMember is one enumerator, with its explicit value when present.
type EnumMember struct {
	Name     string
	Value    string
	HasValue bool
}

// Enum is an enum definition. Name may come from the tag or from a
// wrapping typedef; anonymous enums have an empty name and contribute
// bare constants.
type Enum struct {
	Name    string
	Members []EnumMember
}

// Typedef records a scalar alias (typedef unsigned int UINT32). Aggregate
// typedefs are recorded as Structs/Enums directly under the alias name.
type Typedef struct {
	Name       string
	Underlying Type
}

// Constant is an object-like #define with an integer or string value.
type Constant struct {
	Name     string
	Value    string
	IsString bool
}

// Header is the complete declaration set visible from the umbrella header.
// All slices preserve parse order (include expansion order, then in-file
// order), which is what makes generation deterministic.
type Header struct {
	Constants []Constant
	Enums     []Enum
	Structs   []Struct
	Typedefs  []Typedef
	Funcs     []Func

	typedefIndex map[string]int
	structIndex  map[string]int
	enumIndex    map[string]int
	funcIndex    map[string]int
	constIndex   map[string]int
}

// NewHeader returns an empty Header.
func NewHeader() *Header {
	return &Header{
		typedefIndex: make(map[string]int),
		structIndex:  make(map[string]int),
		enumIndex:    make(map[string]int),
		funcIndex:    make(map[string]int),
		constIndex:   make(map[string]int),
	}
}

// AddConstant appends a constant unless the name was already recorded.
func (h *Header) AddConstant(c Constant) {
	if _, dup := h.constIndex[c.Name]; dup {
		return
	}
	h.constIndex[c.Name] = len(h.Constants)
	h.Constants = append(h.Constants, c)
}

// AddEnum appends an enum definition, deduplicated by name. Anonymous
// enums are always appended.
func (h *Header) AddEnum(e Enum) {
	if e.Name != "" {
		if _, dup := h.enumIndex[e.Name]; dup {
			return
		}
		h.enumIndex[e.Name] = len(h.Enums)
	}
	h.Enums = append(h.Enums, e)
}

// AddStruct appends a struct/union definition, deduplicated by name.
func (h *Header) AddStruct(s Struct) {
	if s.Name != "" {
		if _, dup := h.structIndex[s.Name]; dup {
			return
		}
		h.structIndex[s.Name] = len(h.Structs)
	}
	h.Structs = append(h.Structs, s)
}

// AddTypedef appends a scalar typedef, deduplicated by name.
func (h *Header) AddTypedef(td Typedef) {
	if _, dup := h.typedefIndex[td.Name]; dup {
		return
	}
	h.typedefIndex[td.Name] = len(h.Typedefs)
	h.Typedefs = append(h.Typedefs, td)
}

// AddFunc appends a prototype, deduplicated by name.
func (h *Header) AddFunc(f Func) {
	if _, dup := h.funcIndex[f.Name]; dup {
		return
	}
	h.funcIndex[f.Name] = len(h.Funcs)
	h.Funcs = append(h.Funcs, f)
}

// AdoptAnonymousStruct names the most recently added anonymous struct or
// union and indexes it. No-op when the last aggregate already has a name.
func (h *Header) AdoptAnonymousStruct(name string) {
	n := len(h.Structs)
	if n == 0 || h.Structs[n-1].Name != "" {
		return
	}
	h.Structs[n-1].Name = name
	h.structIndex[name] = n - 1
}

// AdoptAnonymousEnum names the most recently added anonymous enum.
func (h *Header) AdoptAnonymousEnum(name string) {
	n := len(h.Enums)
	if n == 0 || h.Enums[n-1].Name != "" {
		return
	}
	h.Enums[n-1].Name = name
	h.enumIndex[name] = n - 1
}

// Typedef resolves a scalar typedef by name.
func (h *Header) Typedef(name string) (Typedef, bool) {
	i, ok := h.typedefIndex[name]
	if !ok {
		return Typedef{}, false
	}
	return h.Typedefs[i], true
}

// StructNamed reports whether name is a known struct/union definition.
func (h *Header) StructNamed(name string) bool {
	_, ok := h.structIndex[name]
	return ok
}

// StructDef resolves a struct or union definition by name.
func (h *Header) StructDef(name string) (Struct, bool) {
	i, ok := h.structIndex[name]
	if !ok {
		return Struct{}, false
	}
	return h.Structs[i], true
}

// EnumNamed reports whether name is a known enum definition.
func (h *Header) EnumNamed(name string) bool {
	_, ok := h.enumIndex[name]
	return ok
}
