// Package compile turns the staged, patched vendor tree into one static
// archive.
//
// Component groups are the immediate subdirectories of the components
// root; a configured denylist excludes groups that cannot build in the
// freestanding configuration. Each remaining group contributes the files
// it directly contains, compiled with a fixed flag set and archived under
// the fixed library name. Any compiler or archiver failure is fatal.
package compile
