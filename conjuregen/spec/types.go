// Package spec defines the in-memory model of a Conjure IDL document.
// These types are a read-only representation of the Conjure IR that the
// generators transform into target language source code.
package spec

import "strings"

// TypeName is the qualified identity of a declared type.
// Name is UpperCamelCase; Package is a dotted lowercase namespace.
type TypeName struct {
	Name    string `json:"name"`
	Package string `json:"package"`
}

// IsZero returns true if the type name is empty.
func (tn TypeName) IsZero() bool {
	return tn.Name == "" && tn.Package == ""
}

// String returns the dotted form "package.Name".
func (tn TypeName) String() string {
	if tn.Package == "" {
		return tn.Name
	}
	return tn.Package + "." + tn.Name
}

// Less orders type names by package, then name.
func (tn TypeName) Less(other TypeName) bool {
	if tn.Package != other.Package {
		return tn.Package < other.Package
	}
	return tn.Name < other.Name
}

// Documentation holds the docs attached to a definition, field or endpoint.
type Documentation string

// IsZero returns true if there is no documentation.
func (d Documentation) IsZero() bool {
	return strings.TrimSpace(string(d)) == ""
}

// Lines returns the documentation split into trimmed lines, without
// leading or trailing blank lines.
func (d Documentation) Lines() []string {
	text := strings.Trim(strings.ReplaceAll(string(d), "\r\n", "\n"), "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return lines
}

// LogSafety is the log-safety annotation of a field or argument.
type LogSafety string

const (
	SafetyUnset    LogSafety = ""
	SafetySafe     LogSafety = "SAFE"
	SafetyUnsafe   LogSafety = "UNSAFE"
	SafetyDoNotLog LogSafety = "DO_NOT_LOG"
)

// Warning represents a non-fatal issue encountered while loading or generating.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// TypeName is the definition that triggered the warning, if applicable.
	TypeName TypeName
}
