// Package bindgen derives the foreign-function declaration set from the
// patched vendor tree's public umbrella header.
//
// Generate expands the umbrella header and its transitive includes into a
// single token stream (internal/token, internal/parser), parses the
// top-level declarations (function prototypes, struct/union and enum
// definitions, scalar typedefs, and manifest constants) into a Set, and
// Emit serializes the Set as a freestanding cgo module.
//
// Generation is deterministic: declaration order is include-expansion
// order, names are taken verbatim from the headers, and nothing about the
// ephemeral workspace path leaks into the output. Byte-identical headers
// therefore always produce a byte-identical module.
package bindgen
