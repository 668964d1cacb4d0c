package errors

import (
	"fmt"
	"strings"
)

// Stage indicates where in the pipeline the error occurred
type Stage string

const (
	StageConfig    Stage = "config"    // configuration loading/validation
	StageWorkspace Stage = "workspace" // workspace staging
	StagePatch     Stage = "patch"     // environment header patching
	StageCompile   Stage = "compile"   // component compilation
	StageBindgen   Stage = "bindgen"   // binding generation
	StageEmit      Stage = "emit"      // output module rewrite
	StageFormat    Stage = "format"    // formatter pass
)

// Kind categorizes the error
type Kind string

const (
	KindFilesystem   Kind = "filesystem"    // missing/unreadable/unwritable path
	KindPattern      Kind = "pattern"       // sentinel absent or already removed
	KindToolchain    Kind = "toolchain"     // compiler/archiver failure or absence
	KindParse        Kind = "parse"         // malformed header, unresolved include
	KindFormat       Kind = "format"        // formatter rejected generated source
	KindInvalidInput Kind = "invalid_input" // bad configuration value
)

// Error is the structured error type used throughout the pipeline.
// Every pipeline failure is fatal; the structure exists so diagnostics
// always name the failing stage and the path or pattern involved.
type Error struct {
	Cause   error
	Stage   Stage
	Kind    Kind
	Path    string
	Pattern string
	Detail  string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Stage))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Pattern != "" {
		b.WriteString(" pattern ")
		b.WriteString(e.Pattern)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Stage == t.Stage && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(stage Stage, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Stage: stage,
			Kind:  kind,
		},
	}
}

// Path sets the offending filesystem path
func (b *Builder) Path(p string) *Builder {
	b.err.Path = p
	return b
}

// Pattern sets the pattern involved in the failure
func (b *Builder) Pattern(p string) *Builder {
	b.err.Pattern = p
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Filesystem creates a filesystem error for the given path
func Filesystem(stage Stage, path string, cause error) *Error {
	return &Error{
		Stage: stage,
		Kind:  KindFilesystem,
		Path:  path,
		Cause: cause,
	}
}

// PatternNotApplied creates a pattern error for a patch that made no change
func PatternNotApplied(path, pattern string) *Error {
	return &Error{
		Stage:   StagePatch,
		Kind:    KindPattern,
		Path:    path,
		Pattern: pattern,
		Detail:  "replacement produced content identical to input (sentinel absent or already patched)",
	}
}

// ToolchainMissing creates a toolchain error for an unresolvable tool
func ToolchainMissing(tool string, cause error) *Error {
	return &Error{
		Stage:  StageCompile,
		Kind:   KindToolchain,
		Detail: fmt.Sprintf("%s not found in environment", tool),
		Cause:  cause,
	}
}

// ToolchainFailed creates a toolchain error carrying the tool's output
func ToolchainFailed(path string, output string, cause error) *Error {
	return &Error{
		Stage:  StageCompile,
		Kind:   KindToolchain,
		Path:   path,
		Detail: strings.TrimSpace(output),
		Cause:  cause,
	}
}

// ParseFailed creates a parse error at file:line
func ParseFailed(path string, line int, detail string) *Error {
	return &Error{
		Stage:  StageBindgen,
		Kind:   KindParse,
		Path:   fmt.Sprintf("%s:%d", path, line),
		Detail: detail,
	}
}

// UnresolvedInclude creates a parse error for an include that cannot be read
func UnresolvedInclude(from string, include string, cause error) *Error {
	return &Error{
		Stage:  StageBindgen,
		Kind:   KindParse,
		Path:   from,
		Detail: fmt.Sprintf("unresolved include %q", include),
		Cause:  cause,
	}
}

// FormatFailed creates a formatter error
func FormatFailed(path string, cause error) *Error {
	return &Error{
		Stage: StageFormat,
		Kind:  KindFormat,
		Path:  path,
		Cause: cause,
	}
}

// InvalidConfig creates a configuration error
func InvalidConfig(detail string, cause error) *Error {
	return &Error{
		Stage:  StageConfig,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}
