// Package acpicago vendors the ACPICA C interpreter engine and prepares
// it for consumption from Go through cgo.
//
// The acpigen pipeline stages a pristine copy of the vendor tree, swaps
// ACPICA's OS-detection block for the freestanding acgo.h platform shim,
// compiles the non-excluded interpreter components into libacpica.a,
// parses the public umbrella header into a typed declaration set, and
// regenerates the committed bindings module from that set.
//
// # Architecture Overview
//
// The repository is organized into several packages with distinct
// responsibilities:
//
//	acpica-go/           Root package documentation
//	├── workspace/       Ephemeral staging of the vendor source tree
//	├── patch/           Sentinel-block replacement in the environment header
//	├── compile/         Component compilation and static archiving
//	├── bindgen/         C header parsing and cgo module generation
//	├── pipeline/        Stage orchestration, config, atomic output rewrite
//	├── errors/          Structured error types for diagnostics
//	├── bindings/        The generated cgo module (DO NOT EDIT)
//	└── cmd/acpigen/     The pipeline CLI and interactive binding browser
//
// # Quick Start
//
// Regenerate the archive and the bindings from the vendor submodule:
//
//	go run ./cmd/acpigen
//
// Inspect what would be generated without touching anything:
//
//	go run ./cmd/acpigen -list
//
// Every pipeline failure is fatal with a structured error naming the
// stage and the offending path; there are no partial outputs.
package acpicago
