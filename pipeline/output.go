package pipeline

import (
	"go/format"
	"os"
	"path/filepath"

	"github.com/osforge/acpica-go/bindgen"
	"github.com/osforge/acpica-go/errors"
)

// Publish serializes the binding set, formats it, and atomically replaces
// dest. The bytes land in a temp file in the destination directory first
// and are renamed over dest only after a successful write, so a failure at
// any point leaves the previous module intact. A formatter rejection means
// the generator produced invalid Go and is fatal.
func Publish(set *bindgen.Set, opts bindgen.EmitOptions, dest string) error {
	raw, err := bindgen.Emit(set, opts)
	if err != nil {
		return err
	}
	formatted, err := format.Source(raw)
	if err != nil {
		return errors.FormatFailed(dest, err)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Filesystem(errors.StageEmit, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".bindings-*.go")
	if err != nil {
		return errors.Filesystem(errors.StageEmit, dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(formatted); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Filesystem(errors.StageEmit, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Filesystem(errors.StageEmit, tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return errors.Filesystem(errors.StageEmit, tmpName, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return errors.Filesystem(errors.StageEmit, dest, err)
	}
	return nil
}
