// Package workspace stages the vendored ACPICA source tree into an
// ephemeral, process-scoped directory for one pipeline run.
//
// A Workspace is created empty with New, populated with Stage, and removed
// with Close. Its fixed sub-paths (source root, include root, platform
// include, components root) are exposed as read-only accessors so later
// stages never construct vendor paths themselves.
package workspace
