// Package patch rewrites the staged vendor environment header so that it
// pulls in the Go platform shim instead of vendor-recognized OS targets.
//
// The sentinel, the OS-conditional compilation block in acenv.h, is
// located by a configured pattern and replaced by a configured include
// directive. Exactly one occurrence must exist before patching and zero
// after; an application that changes nothing is always an error.
package patch
