package parser

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/osforge/acpica-go/bindgen/internal/ast"
	"github.com/osforge/acpica-go/errors"
)

// expand writes the given headers into a directory and preprocesses root.
func expand(t *testing.T, headers map[string]string, root string, predefines map[string]string) (*Preprocessor, error) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range headers {
		full := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	pp := NewPreprocessor([]string{dir}, predefines)
	err := pp.Expand(filepath.Join(dir, root))
	return pp, err
}

// parse runs the full front end over the headers and returns the
// declaration set.
func parse(t *testing.T, headers map[string]string, root string) *ast.Header {
	t.Helper()
	pp, err := expand(t, headers, root, nil)
	if err != nil {
		t.Fatalf("preprocess failed: %v", err)
	}
	p := New(pp.Tokens(), pp.Header())
	if err := p.Parse(); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return pp.Header()
}

func TestIncludeExpansion(t *testing.T) {
	h := parse(t, map[string]string{
		"wrapper.h": "#include \"acpi.h\"\n",
		"acpi.h":    "#include \"actypes.h\"\nUINT32 AcpiGetType(void *Handle);\n",
		"actypes.h": "typedef unsigned int UINT32;\n",
	}, "wrapper.h")

	if len(h.Funcs) != 1 || h.Funcs[0].Name != "AcpiGetType" {
		t.Fatalf("funcs: %+v", h.Funcs)
	}
	td, ok := h.Typedef("UINT32")
	if !ok || td.Underlying.Name != "unsigned int" {
		t.Fatalf("typedef UINT32: %+v ok=%v", td, ok)
	}
}

func TestIncludeGuard(t *testing.T) {
	h := parse(t, map[string]string{
		"wrapper.h": "#include \"a.h\"\n#include \"b.h\"\n",
		"a.h":       "#ifndef A_H\n#define A_H\ntypedef int INT32;\n#endif\n",
		"b.h":       "#include \"a.h\"\nINT32 AcpiOne(void);\n",
	}, "wrapper.h")

	if len(h.Typedefs) != 1 {
		t.Errorf("guarded header expanded twice: %+v", h.Typedefs)
	}
}

func TestUnresolvedIncludeFatal(t *testing.T) {
	_, err := expand(t, map[string]string{
		"wrapper.h": "#include \"missing.h\"\n",
	}, "wrapper.h", nil)
	if err == nil {
		t.Fatal("expected error for unresolved include")
	}
	var perr *errors.Error
	if !stderrors.As(err, &perr) || perr.Kind != errors.KindParse {
		t.Fatalf("expected parse error, got %v", err)
	}
	if !strings.Contains(perr.Error(), "missing.h") {
		t.Errorf("error must name the include: %v", perr)
	}
}

func TestDefineConstants(t *testing.T) {
	h := parse(t, map[string]string{
		"wrapper.h": `#define ACPI_MAX_TABLES 128
#define ACPI_OS_NAME "Microsoft Windows NT"
#define ACPI_NEG (-1)
#define ACPI_HEX 0x20UL
#define ACPI_CAST(x) ((UINT32)(x))
#define ACPI_EXPR (ACPI_MAX_TABLES + 1)
#define ACPI_BARE
`,
	}, "wrapper.h")

	want := map[string]string{
		"ACPI_MAX_TABLES": "128",
		"ACPI_OS_NAME":    `"Microsoft Windows NT"`,
		"ACPI_NEG":        "-1",
		"ACPI_HEX":        "0x20",
	}
	if len(h.Constants) != len(want) {
		t.Fatalf("constants: %+v", h.Constants)
	}
	for _, c := range h.Constants {
		if want[c.Name] != c.Value {
			t.Errorf("constant %s = %q, want %q", c.Name, c.Value, want[c.Name])
		}
	}
}

func TestConditionals(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		defines map[string]string
		want    []string // expected constant names
	}{
		{
			name: "ifdef taken",
			src:  "#ifdef _ACGO\n#define A 1\n#else\n#define B 2\n#endif\n",
			defines: map[string]string{
				"_ACGO": "",
			},
			want: []string{"A"},
		},
		{
			name: "ifdef not taken",
			src:  "#ifdef _ACGO\n#define A 1\n#else\n#define B 2\n#endif\n",
			want: []string{"B"},
		},
		{
			name: "if defined or",
			src:  "#if defined(_LINUX) || defined(_ACGO)\n#define A 1\n#endif\n",
			defines: map[string]string{
				"_ACGO": "",
			},
			want: []string{"A"},
		},
		{
			name: "elif chain",
			src:  "#if defined(_LINUX)\n#define A 1\n#elif defined(_ACGO)\n#define B 2\n#else\n#define C 3\n#endif\n",
			defines: map[string]string{
				"_ACGO": "",
			},
			want: []string{"B"},
		},
		{
			name: "comparison",
			src:  "#define WIDTH 64\n#if WIDTH == 64\n#define A 1\n#endif\n",
			want: []string{"WIDTH", "A"},
		},
		{
			name: "nested inactive",
			src:  "#ifdef NOPE\n#ifdef _ACGO\n#define A 1\n#endif\n#define B 2\n#endif\n#define C 3\n",
			defines: map[string]string{
				"_ACGO": "",
			},
			want: []string{"C"},
		},
		{
			name: "ifndef guard",
			src:  "#ifndef NOPE\n#define A 1\n#endif\n",
			want: []string{"A"},
		},
		{
			name: "undefined identifier is zero",
			src:  "#if MYSTERY\n#define A 1\n#else\n#define B 2\n#endif\n",
			want: []string{"B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pp, err := expand(t, map[string]string{"w.h": tt.src}, "w.h", tt.defines)
			if err != nil {
				t.Fatalf("expand failed: %v", err)
			}
			var got []string
			for _, c := range pp.Header().Constants {
				got = append(got, c.Name)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("constants %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("constant %d: got %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestErrorDirective(t *testing.T) {
	_, err := expand(t, map[string]string{
		"w.h": "#if !defined(_ACGO)\n#error unsupported platform\n#endif\n",
	}, "w.h", nil)
	if err == nil {
		t.Fatal("expected #error to be fatal")
	}
	if !strings.Contains(err.Error(), "unsupported platform") {
		t.Errorf("error text lost: %v", err)
	}
}

func TestUnterminatedConditional(t *testing.T) {
	_, err := expand(t, map[string]string{
		"w.h": "#ifdef A\nint x;\n",
	}, "w.h", nil)
	if err == nil {
		t.Fatal("expected error for unterminated conditional")
	}
}

func TestParseStruct(t *testing.T) {
	h := parse(t, map[string]string{
		"w.h": `typedef unsigned int UINT32;
typedef struct acpi_table_header {
    char Signature[4];
    UINT32 Length;
    unsigned char Revision;
    void *Pointer;
} ACPI_TABLE_HEADER;
`,
	}, "w.h")

	if len(h.Structs) != 1 {
		t.Fatalf("structs: %+v", h.Structs)
	}
	st := h.Structs[0]
	if st.Name != "acpi_table_header" || st.Union {
		t.Errorf("struct identity: %+v", st)
	}
	if len(st.Fields) != 4 {
		t.Fatalf("fields: %+v", st.Fields)
	}
	if st.Fields[0].Type.ArrayLen != "4" || st.Fields[0].Type.Name != "char" {
		t.Errorf("Signature field: %+v", st.Fields[0])
	}
	if st.Fields[3].Type.Pointers != 1 {
		t.Errorf("Pointer field: %+v", st.Fields[3])
	}

	td, ok := h.Typedef("ACPI_TABLE_HEADER")
	if !ok || !td.Underlying.Struct || td.Underlying.Name != "acpi_table_header" {
		t.Errorf("typedef: %+v ok=%v", td, ok)
	}
}

func TestParseAnonymousTypedefStruct(t *testing.T) {
	h := parse(t, map[string]string{
		"w.h": "typedef struct {\n int X;\n} ACPI_POINT;\n",
	}, "w.h")

	if len(h.Structs) != 1 || h.Structs[0].Name != "ACPI_POINT" {
		t.Fatalf("anonymous struct not adopted: %+v", h.Structs)
	}
	if !h.StructNamed("ACPI_POINT") {
		t.Error("adopted name not indexed")
	}
}

func TestParseEnum(t *testing.T) {
	h := parse(t, map[string]string{
		"w.h": `typedef enum {
    ACPI_STATE_S0 = 0,
    ACPI_STATE_S1,
    ACPI_STATE_S5 = 5,
} ACPI_SLEEP_STATE;
enum acpi_mode { MODE_A, MODE_B };
`,
	}, "w.h")

	if len(h.Enums) != 2 {
		t.Fatalf("enums: %+v", h.Enums)
	}
	first := h.Enums[0]
	if first.Name != "ACPI_SLEEP_STATE" || len(first.Members) != 3 {
		t.Fatalf("first enum: %+v", first)
	}
	if !first.Members[0].HasValue || first.Members[0].Value != "0" {
		t.Errorf("explicit value: %+v", first.Members[0])
	}
	if first.Members[1].HasValue {
		t.Errorf("implicit value marked explicit: %+v", first.Members[1])
	}
	if h.Enums[1].Name != "acpi_mode" {
		t.Errorf("second enum: %+v", h.Enums[1])
	}
}

func TestParsePrototypes(t *testing.T) {
	h := parse(t, map[string]string{
		"w.h": `typedef unsigned int UINT32;
typedef UINT32 ACPI_STATUS;
ACPI_STATUS AcpiInitializeSubsystem(void);
ACPI_STATUS AcpiGetTable(char *Signature, UINT32 Instance, void **OutTable);
void AcpiOsFree(void *Memory);
void *AcpiOsAllocate(UINT32 Size);
UINT32 AcpiDbgPrint(const char *Format, ...);
extern UINT32 AcpiGbl_EnableInterpreterSlack;
`,
	}, "w.h")

	if len(h.Funcs) != 5 {
		t.Fatalf("funcs: %d %+v", len(h.Funcs), h.Funcs)
	}

	byName := map[string]ast.Func{}
	for _, f := range h.Funcs {
		byName[f.Name] = f
	}

	init := byName["AcpiInitializeSubsystem"]
	if len(init.Params) != 0 || init.Ret.Name != "ACPI_STATUS" {
		t.Errorf("AcpiInitializeSubsystem: %+v", init)
	}

	get := byName["AcpiGetTable"]
	if len(get.Params) != 3 {
		t.Fatalf("AcpiGetTable params: %+v", get.Params)
	}
	if get.Params[0].Type.Name != "char" || get.Params[0].Type.Pointers != 1 {
		t.Errorf("Signature param: %+v", get.Params[0])
	}
	if get.Params[2].Type.Pointers != 2 {
		t.Errorf("OutTable param: %+v", get.Params[2])
	}

	alloc := byName["AcpiOsAllocate"]
	if alloc.Ret.Pointers != 1 || alloc.Ret.Name != "void" {
		t.Errorf("AcpiOsAllocate return: %+v", alloc.Ret)
	}

	if !byName["AcpiDbgPrint"].Variadic {
		t.Error("variadic prototype not flagged")
	}
}

func TestParseFunctionPointerTypedef(t *testing.T) {
	h := parse(t, map[string]string{
		"w.h": "typedef unsigned int UINT32;\ntypedef UINT32 (*ACPI_OSD_HANDLER)(void *Context);\n",
	}, "w.h")

	td, ok := h.Typedef("ACPI_OSD_HANDLER")
	if !ok || td.Underlying.Pointers != 1 {
		t.Errorf("function pointer typedef: %+v ok=%v", td, ok)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated struct", "struct acpi_x {\n int A;\n"},
		{"unterminated enum", "enum acpi_y { A, B\n"},
		{"garbage", "42 + 12;\n"},
		{"unterminated prototype", "void AcpiFoo(int A\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pp, err := expand(t, map[string]string{"w.h": tt.src}, "w.h", nil)
			if err != nil {
				return // preprocessor may legitimately reject some inputs
			}
			p := New(pp.Tokens(), pp.Header())
			if err := p.Parse(); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

func TestDeclarationOrderStable(t *testing.T) {
	headers := map[string]string{
		"w.h": "#include \"a.h\"\n#include \"b.h\"\n",
		"a.h": "#define A_CONST 1\ntypedef int INT32;\n",
		"b.h": "#define B_CONST 2\nINT32 AcpiTwo(void);\n",
	}
	first := parse(t, headers, "w.h")
	second := parse(t, headers, "w.h")

	if len(first.Constants) != len(second.Constants) {
		t.Fatal("constant count differs across runs")
	}
	for i := range first.Constants {
		if first.Constants[i] != second.Constants[i] {
			t.Errorf("constant %d differs: %+v vs %+v", i, first.Constants[i], second.Constants[i])
		}
	}
	if first.Constants[0].Name != "A_CONST" || first.Constants[1].Name != "B_CONST" {
		t.Errorf("include-expansion order not preserved: %+v", first.Constants)
	}
}
