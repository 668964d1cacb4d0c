package workspace

import (
	"io"
	"os"
	"path/filepath"

	"github.com/osforge/acpica-go/errors"
)

// Workspace is the owning handle over one pipeline run's ephemeral
// directory tree. Exactly one run owns a workspace; it is never shared.
//
// Close removes the tree on every normal exit path. Removal after abnormal
// termination (crash, forced kill) is not guaranteed; stale directories
// under the system temp root are the accepted cost.
type Workspace struct {
	root   string
	closed bool
}

// New creates the workspace root under the system temp directory.
// Failure here aborts the pipeline before any vendor file is touched.
func New() (*Workspace, error) {
	root, err := os.MkdirTemp("", "acpica-go-")
	if err != nil {
		return nil, errors.Filesystem(errors.StageWorkspace, os.TempDir(), err)
	}
	return &Workspace{root: root}, nil
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string { return w.root }

// SourceRoot returns the staged vendor source tree root.
func (w *Workspace) SourceRoot() string { return filepath.Join(w.root, "source") }

// IncludeRoot returns the staged public include directory.
func (w *Workspace) IncludeRoot() string { return filepath.Join(w.root, "source", "include") }

// PlatformInclude returns the staged platform header directory, where the
// shim header is placed during staging.
func (w *Workspace) PlatformInclude() string {
	return filepath.Join(w.root, "source", "include", "platform")
}

// ComponentsRoot returns the staged components directory whose immediate
// children are the named component groups.
func (w *Workspace) ComponentsRoot() string { return filepath.Join(w.root, "source", "components") }

// Close removes the workspace tree. It is idempotent.
func (w *Workspace) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := os.RemoveAll(w.root); err != nil {
		return errors.Filesystem(errors.StageWorkspace, w.root, err)
	}
	return nil
}

// Stage populates the workspace: a complete recursive copy of the vendor
// tree at SourceRoot, with the shim header additionally placed under
// PlatformInclude. Any I/O failure is fatal and names the offending path;
// a partially staged workspace is never usable and is not repaired.
func (w *Workspace) Stage(vendorSrc, shimHeader string) error {
	if err := copyTree(vendorSrc, w.SourceRoot()); err != nil {
		return err
	}

	dst := filepath.Join(w.PlatformInclude(), filepath.Base(shimHeader))
	if err := copyFile(shimHeader, dst); err != nil {
		return err
	}
	return nil
}

func copyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Filesystem(errors.StageWorkspace, src, err)
	}
	if !info.IsDir() {
		return errors.New(errors.StageWorkspace, errors.KindFilesystem).
			Path(src).
			Detail("vendor source root is not a directory").
			Build()
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return errors.Filesystem(errors.StageWorkspace, dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Filesystem(errors.StageWorkspace, src, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.IsDir():
			if err := copyTree(srcPath, dstPath); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		default:
			// The vendor snapshot never contains symlinks or devices;
			// refusing beats silently flattening one.
			return errors.New(errors.StageWorkspace, errors.KindFilesystem).
				Path(srcPath).
				Detail("unsupported entry type %s", entry.Type()).
				Build()
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Filesystem(errors.StageWorkspace, src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Filesystem(errors.StageWorkspace, dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Filesystem(errors.StageWorkspace, dst, err)
	}
	if err := out.Close(); err != nil {
		return errors.Filesystem(errors.StageWorkspace, dst, err)
	}
	return nil
}
