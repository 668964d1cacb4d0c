package bindgen

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeHeaders(t *testing.T, headers map[string]string) string {
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
	return dir
}

var testEmitOptions = EmitOptions{
	Package:    "acpica",
	Include:    "wrapper.h",
	CgoCFLAGS:  "-fno-stack-protector -I${SRCDIR}/../c_headers",
	CgoLDFLAGS: "-L${SRCDIR}/../lib -lacpica",
}

func TestGenerateMinimalUmbrella(t *testing.T) {
	// One prototype, one struct, nothing else: the set must contain
	// exactly one function and one struct declaration.
	dir := writeHeaders(t, map[string]string{
		"wrapper.h": `typedef struct acpi_buffer {
    unsigned int Length;
    void *Pointer;
} ACPI_BUFFER;

unsigned int AcpiGetBuffer(ACPI_BUFFER *Buffer);
`,
	})

	set, err := Generate(filepath.Join(dir, "wrapper.h"), Config{IncludeDirs: []string{dir}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(set.Funcs()) != 1 {
		t.Errorf("funcs: got %d, want 1", len(set.Funcs()))
	}
	if len(set.Structs()) != 1 {
		t.Errorf("structs: got %d, want 1", len(set.Structs()))
	}
	if len(set.Enums()) != 0 || len(set.Constants()) != 0 {
		t.Errorf("unexpected extra declarations: %d enums, %d constants",
			len(set.Enums()), len(set.Constants()))
	}

	out, err := Emit(set, testEmitOptions)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	src := string(out)

	for _, want := range []string{
		"// Code generated by acpigen. DO NOT EDIT.",
		"//nolint:revive,stylecheck,unused",
		"package acpica",
		`#include "wrapper.h"`,
		"type Acpi_buffer struct {",
		"func AcpiGetBuffer(Buffer unsafe.Pointer) uint32 {",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q\n%s", want, src)
		}
	}
	// Nothing generated beyond the two declarations and the typedef alias.
	if n := strings.Count(src, "\nfunc "); n != 1 {
		t.Errorf("generated %d functions, want 1", n)
	}
	if n := strings.Count(src, " struct {"); n != 1 {
		t.Errorf("generated %d structs, want 1", n)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	headers := map[string]string{
		"wrapper.h": "#include \"acpi.h\"\n",
		"acpi.h": `#include "actypes.h"
#define ACPI_MAX_TABLES 128
ACPI_STATUS AcpiInitializeSubsystem(void);
ACPI_STATUS AcpiEnableSubsystem(UINT32 Flags);
`,
		"actypes.h": `typedef unsigned int UINT32;
typedef UINT32 ACPI_STATUS;
typedef struct acpi_table_header {
    char Signature[4];
    UINT32 Length;
} ACPI_TABLE_HEADER;
`,
	}

	// Two runs from two different directories: byte-identical output.
	var outputs [][]byte
	for i := 0; i < 2; i++ {
		dir := writeHeaders(t, headers)
		set, err := Generate(filepath.Join(dir, "wrapper.h"), Config{IncludeDirs: []string{dir}})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		out, err := Emit(set, testEmitOptions)
		if err != nil {
			t.Fatalf("Emit failed: %v", err)
		}
		outputs = append(outputs, out)
	}

	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Error("output differs across runs over identical headers")
	}
}

func TestEmitDeclarations(t *testing.T) {
	dir := writeHeaders(t, map[string]string{
		"wrapper.h": `#define ACPI_LV_ERROR 0x00000002
typedef unsigned int UINT32;
typedef UINT32 ACPI_STATUS;
typedef enum {
    ACPI_TYPE_ANY = 0,
    ACPI_TYPE_INTEGER,
    ACPI_TYPE_STRING,
} ACPI_OBJECT_TYPE;
typedef struct acpi_table_header {
    char Signature[4];
    UINT32 Length;
    void *Data;
} ACPI_TABLE_HEADER;
ACPI_STATUS AcpiGetType(void *Handle, ACPI_OBJECT_TYPE *RetType);
void AcpiReset(void);
void *AcpiOsAllocate(UINT32 Size);
ACPI_STATUS AcpiDbgPrint(const char *Format, ...);
`,
	})

	set, err := Generate(filepath.Join(dir, "wrapper.h"), Config{IncludeDirs: []string{dir}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	out, err := Emit(set, testEmitOptions)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	src := string(out)

	checks := []string{
		"const ACPI_LV_ERROR = 0x00000002",
		"type ACPI_OBJECT_TYPE int32",
		"ACPI_TYPE_ANY ACPI_OBJECT_TYPE = 0",
		"ACPI_TYPE_INTEGER ACPI_OBJECT_TYPE = 1",
		"ACPI_TYPE_STRING ACPI_OBJECT_TYPE = 2",
		"type UINT32 = uint32",
		"type ACPI_STATUS = UINT32",
		"type ACPI_TABLE_HEADER = Acpi_table_header",
		"Signature [4]int8",
		"Length UINT32",
		"Data unsafe.Pointer",
		"func AcpiGetType(Handle unsafe.Pointer, RetType unsafe.Pointer) ACPI_STATUS {",
		"return ACPI_STATUS(C.AcpiGetType(Handle, (*C.ACPI_OBJECT_TYPE)(RetType)))",
		"func AcpiReset() {",
		"C.AcpiReset()",
		"func AcpiOsAllocate(Size UINT32) unsafe.Pointer {",
		"return unsafe.Pointer(C.AcpiOsAllocate(C.UINT32(Size)))",
		"// AcpiDbgPrint is variadic; cgo cannot call variadic C functions.",
	}
	for _, want := range checks {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(src, "func AcpiDbgPrint(") {
		t.Error("variadic function must not get a wrapper")
	}
}

func TestEmitUnionStorage(t *testing.T) {
	// The union mirror must hold the largest member, counting nested
	// aggregates and struct arrays field by field rather than as a
	// single scalar slot.
	dir := writeHeaders(t, map[string]string{
		"wrapper.h": `typedef unsigned long long UINT64;
typedef unsigned int UINT32;
typedef struct acpi_object_common {
    UINT64 NextObject;
    UINT64 Flags;
    UINT64 ReferenceCount;
} ACPI_OBJECT_COMMON;
union acpi_operand_object {
    struct acpi_object_common Common;
    ACPI_OBJECT_COMMON Stack[2];
    UINT32 Value;
};
`,
	})

	set, err := Generate(filepath.Join(dir, "wrapper.h"), Config{IncludeDirs: []string{dir}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	out, err := Emit(set, testEmitOptions)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	src := string(out)

	if !strings.Contains(src, "type Acpi_operand_object struct {") {
		t.Fatalf("union mirror missing:\n%s", src)
	}
	// Stack is two copies of a 24-byte struct.
	if !strings.Contains(src, "Raw [48]byte") {
		t.Errorf("union storage bound wrong:\n%s", src)
	}
}

func TestEmitEnumExpressions(t *testing.T) {
	dir := writeHeaders(t, map[string]string{
		"wrapper.h": `typedef enum {
    ACPI_FLAG_WAKE = 1 << 4,
    ACPI_FLAG_RUNTIME,
} ACPI_EVENT_FLAGS;
`,
	})

	set, err := Generate(filepath.Join(dir, "wrapper.h"), Config{IncludeDirs: []string{dir}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	out, err := Emit(set, testEmitOptions)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	src := string(out)

	for _, want := range []string{
		"ACPI_FLAG_WAKE ACPI_EVENT_FLAGS = 1 << 4",
		"ACPI_FLAG_RUNTIME ACPI_EVENT_FLAGS = ACPI_FLAG_WAKE + 1",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q\n%s", want, src)
		}
	}
}

func TestEmitEnumCastValueFails(t *testing.T) {
	// A C cast in an enumerator value has no Go spelling; emitting it
	// verbatim would only surface later as an opaque formatter error, so
	// Emit must reject it and name the offender.
	dir := writeHeaders(t, map[string]string{
		"wrapper.h": `typedef unsigned int UINT32;
typedef enum {
    ACPI_KIND_RAW = (UINT32) 4,
} ACPI_KIND;
`,
	})

	set, err := Generate(filepath.Join(dir, "wrapper.h"), Config{IncludeDirs: []string{dir}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	_, err = Emit(set, testEmitOptions)
	if err == nil {
		t.Fatal("expected cast-valued enumerator to be rejected")
	}
	for _, want := range []string{"ACPI_KIND", "ACPI_KIND_RAW"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not name %q", err, want)
		}
	}
}

func TestGenerateParseFailure(t *testing.T) {
	dir := writeHeaders(t, map[string]string{
		"wrapper.h": "struct acpi_broken {\n int A;\n",
	})
	_, err := Generate(filepath.Join(dir, "wrapper.h"), Config{IncludeDirs: []string{dir}})
	if err == nil {
		t.Fatal("expected parse failure to be fatal")
	}
}
