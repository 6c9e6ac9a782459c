// Package golang emits Go source for Conjure definitions.
package golang

import (
	"context"

	"github.com/broady/conjure/conjuregen/sink"
	"github.com/broady/conjure/conjuregen/spec"
)

// DefaultRuntimeImportPath is the import path of the runtime support
// library referenced by generated code.
const DefaultRuntimeImportPath = "github.com/broady/conjure"

// Generator transforms Conjure definitions into target language source code.
type Generator interface {
	// Name returns the generator's identifier.
	Name() string

	// Generate produces source code for the given definition.
	Generate(ctx context.Context, def *spec.ConjureDefinition, opts GenerateOptions) (*GenerateResult, error)
}

// GenerateOptions configures generation behavior.
type GenerateOptions struct {
	// Sink receives generated output files.
	Sink sink.OutputSink

	// Config contains generator configuration.
	Config GeneratorConfig
}

// GenerateResult contains generation output metadata.
type GenerateResult struct {
	// Files lists all files that were written, sorted by path.
	Files []OutputFile

	// TypesGenerated is the count of types, errors and services emitted.
	TypesGenerated int

	// Warnings contains non-fatal issues encountered.
	Warnings []spec.Warning
}

// OutputFile describes a generated file.
type OutputFile struct {
	// Path is the relative path of the generated file.
	Path string

	// Size is the number of bytes written.
	Size int64

	// Package is the import path of the Go package the file belongs to.
	Package string
}

// GeneratorConfig provides configuration options.
type GeneratorConfig struct {
	// ModulePrefix is the import path of the output root. Generated
	// packages live at ModulePrefix/<dir>.
	ModulePrefix string

	// StripPackagePrefix removes this prefix from conjure package names
	// before they are mapped to directories.
	// Example: "com.example" maps "com.example.catalog" to "catalog".
	StripPackagePrefix string

	// SinglePackage emits every definition into the Go package at
	// ModulePrefix. Cross-package name clashes get suffixes.
	SinglePackage bool

	// ExternalTypes maps external references ("pkg.Name") to Go types
	// ("import/path.Type"). Unmapped external types use their fallback.
	ExternalTypes map[string]string

	// EmitComments includes documentation comments in output.
	EmitComments bool

	// RuntimeImportPath overrides DefaultRuntimeImportPath.
	RuntimeImportPath string
}

func (c GeneratorConfig) runtimePath() string {
	if c.RuntimeImportPath == "" {
		return DefaultRuntimeImportPath
	}
	return c.RuntimeImportPath
}
