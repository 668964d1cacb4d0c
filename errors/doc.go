// Package errors provides structured error types for the build pipeline.
//
// Errors are categorized by Stage (which pipeline stage failed) and Kind
// (error category). The Error type carries the offending path or pattern so
// a failure report always names what a human must fix before re-running the
// pipeline from scratch; there is no partial recovery anywhere.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.StageCompile, errors.KindToolchain).
//		Path("source/components/executer/exsystem.c").
//		Detail("undefined type ACPI_EXECUTE_TYPE").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Filesystem(errors.StageWorkspace, path, cause)
//	err := errors.PatternNotApplied(path, pattern)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
