package compile

import (
	"context"
	"os"
	"os/exec"

	"github.com/osforge/acpica-go/errors"
)

// Runner executes one external tool invocation to completion and returns
// its combined output. It exists so tests can stand in for a real
// toolchain; the pipeline itself always uses the exec-backed runner.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Toolchain holds the resolved compiler and archiver commands.
type Toolchain struct {
	CC string
	AR string
}

// ResolveToolchain locates the C compiler and archiver. Explicit overrides
// win, then the CC/AR environment variables, then the conventional names.
// An unresolvable tool is a fatal precondition failure, not something the
// pipeline works around.
func ResolveToolchain(ccOverride, arOverride string) (*Toolchain, error) {
	cc, err := resolveTool(ccOverride, "CC", "cc")
	if err != nil {
		return nil, err
	}
	ar, err := resolveTool(arOverride, "AR", "ar")
	if err != nil {
		return nil, err
	}
	return &Toolchain{CC: cc, AR: ar}, nil
}

func resolveTool(override, envVar, fallback string) (string, error) {
	name := override
	if name == "" {
		name = os.Getenv(envVar)
	}
	if name == "" {
		name = fallback
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.ToolchainMissing(name, err)
	}
	return path, nil
}
