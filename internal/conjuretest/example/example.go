// Package example holds Go code generated from the catalog test definition.
// The tests under it check the wire behaviour of generated types and the
// client and server stubs against the runtime.
package example

//go:generate go run ../../../cmd/conjure gen --module-prefix github.com/broady/conjure/internal/conjuretest/example --strip-package-prefix com.example ../../../conjuregen/spec/testdata/catalog.conjure.json .
