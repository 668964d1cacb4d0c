// Package pipeline orchestrates the acpica-go build: workspace staging,
// environment header patching, component compilation, binding generation,
// and the atomic rewrite of the generated cgo module.
//
// Stages run strictly in order and single-threaded. Every failure is
// fatal; there is no retry, no skipped stage, and no partial output. The
// staged workspace is ephemeral and removed on every return path.
package pipeline
