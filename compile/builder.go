package compile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/osforge/acpica-go/errors"
)

// Options carries the fixed, non-configurable part of the compile stage's
// behavior plus the two knobs the surrounding build actually exposes.
type Options struct {
	// IncludeRoot is the patched tree's public include directory.
	IncludeRoot string
	// DebugOutput adds the vendor's verbose-diagnostics define.
	DebugOutput bool
}

// Builder compiles the non-excluded component groups of a staged source
// tree into one static archive.
type Builder struct {
	tc     *Toolchain
	runner Runner
	excl   *Exclusions
	opts   Options
}

// NewBuilder creates a Builder. A nil runner selects the exec-backed one.
func NewBuilder(tc *Toolchain, excl *Exclusions, runner Runner, opts Options) *Builder {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Builder{tc: tc, runner: runner, excl: excl, opts: opts}
}

// Collect enumerates the immediate children of componentsRoot, drops the
// excluded groups, and returns the union of files each remaining group
// directly contains. There is no deeper recursion. The result is sorted so
// runs are reproducible, but nothing downstream may depend on the order:
// the vendor headers alone define cross-file visibility.
func (b *Builder) Collect(componentsRoot string) ([]string, error) {
	groups, err := os.ReadDir(componentsRoot)
	if err != nil {
		return nil, errors.Filesystem(errors.StageCompile, componentsRoot, err)
	}

	var files []string
	for _, group := range groups {
		if !group.IsDir() {
			continue
		}
		if b.excl.Excluded(group.Name()) {
			continue
		}

		groupDir := filepath.Join(componentsRoot, group.Name())
		entries, err := os.ReadDir(groupDir)
		if err != nil {
			return nil, errors.Filesystem(errors.StageCompile, groupDir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			files = append(files, filepath.Join(groupDir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

// Build compiles every collected translation unit and archives the objects
// at archivePath. The flag set is fixed: warnings disabled, stack-protector
// instrumentation disabled (the freestanding target has no runtime support
// for it), optimization level 1. The first toolchain failure aborts the
// build with the tool's output; there is no per-file retry or skip.
func (b *Builder) Build(ctx context.Context, componentsRoot, archivePath string) error {
	files, err := b.Collect(componentsRoot)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New(errors.StageCompile, errors.KindFilesystem).
			Path(componentsRoot).
			Detail("no translation units found under components root").
			Build()
	}

	objDir := filepath.Join(filepath.Dir(componentsRoot), "obj")
	if err := os.MkdirAll(objDir, 0o755); err != nil {
		return errors.Filesystem(errors.StageCompile, objDir, err)
	}

	objects := make([]string, 0, len(files))
	for _, file := range files {
		obj := filepath.Join(objDir, objectName(componentsRoot, file))
		args := b.compileArgs(file, obj)

		out, err := b.runner.Run(ctx, "", b.tc.CC, args...)
		if err != nil {
			return errors.ToolchainFailed(file, string(out), err)
		}
		objects = append(objects, obj)
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return errors.Filesystem(errors.StageCompile, filepath.Dir(archivePath), err)
	}
	arArgs := append([]string{"rcs", archivePath}, objects...)
	if out, err := b.runner.Run(ctx, "", b.tc.AR, arArgs...); err != nil {
		return errors.ToolchainFailed(archivePath, string(out), err)
	}
	return nil
}

func (b *Builder) compileArgs(src, obj string) []string {
	args := []string{
		"-w",
		"-fno-stack-protector",
		"-O1",
		"-I", b.opts.IncludeRoot,
	}
	if b.opts.DebugOutput {
		args = append(args, "-DACPI_DEBUG_OUTPUT")
	}
	return append(args, "-c", src, "-o", obj)
}

// objectName flattens "<group>/<file>.c" into a unique object file name;
// vendor file names alone are unique in practice, the group prefix keeps
// that true even if a future snapshot breaks it.
func objectName(componentsRoot, file string) string {
	rel, err := filepath.Rel(componentsRoot, file)
	if err != nil {
		rel = filepath.Base(file)
	}
	flat := strings.ReplaceAll(rel, string(filepath.Separator), "_")
	return fmt.Sprintf("%s.o", strings.TrimSuffix(flat, filepath.Ext(flat)))
}
