package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/osforge/acpica-go/bindgen"
)

func generateSet(t *testing.T, umbrella string) *bindgen.Set {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "wrapper.h")
	if err := os.WriteFile(path, []byte(umbrella), 0o644); err != nil {
		t.Fatal(err)
	}
	set, err := bindgen.Generate(path, bindgen.Config{IncludeDirs: []string{dir}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return set
}

var publishOpts = bindgen.EmitOptions{
	Package:    "bindings",
	Include:    "wrapper.h",
	CgoCFLAGS:  "-fno-stack-protector",
	CgoLDFLAGS: "-lacpica",
}

func TestPublishReplacesDestination(t *testing.T) {
	set := generateSet(t, "typedef unsigned int UINT32;\nUINT32 AcpiGetCount(void);\n")

	dir := t.TempDir()
	dest := filepath.Join(dir, "bindings", "bindings.go")
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dest, []byte("package bindings // stale\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Publish(set, publishOpts, dest); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	out, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "stale") {
		t.Error("previous module content survived the rewrite")
	}
	if !strings.Contains(string(out), "func AcpiGetCount() UINT32 {") {
		t.Errorf("rewritten module missing wrapper:\n%s", out)
	}

	// The staging temp file must not be left behind.
	entries, err := os.ReadDir(filepath.Dir(dest))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("destination directory holds %d entries, want 1", len(entries))
	}
}

func TestPublishCreatesDirectory(t *testing.T) {
	set := generateSet(t, "void AcpiReset(void);\n")
	dest := filepath.Join(t.TempDir(), "bindings", "bindings.go")

	if err := Publish(set, publishOpts, dest); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("destination not created: %v", err)
	}
}

func TestPublishFailurePreservesDestination(t *testing.T) {
	// A prototype referencing an undeclared type emits an error before
	// anything reaches the filesystem.
	set := generateSet(t, "void AcpiBroken(ACPI_NEVER_DECLARED Arg);\n")

	dir := t.TempDir()
	dest := filepath.Join(dir, "bindings.go")
	previous := []byte("package bindings // previous\n")
	if err := os.WriteFile(dest, previous, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Publish(set, publishOpts, dest); err == nil {
		t.Fatal("expected emit failure")
	}

	out, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, previous) {
		t.Error("failed publish modified the destination")
	}
}
