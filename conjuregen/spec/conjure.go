package spec

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/conjure/pathtemplate"
)

// ConjureDefinition is a complete Conjure IR document.
// It is read-only once loaded.
type ConjureDefinition struct {
	// Version is the IR format version; only version 1 is supported.
	Version int

	Errors   []*ErrorDefinition
	Types    []TypeDefinition
	Services []*ServiceDefinition

	// Extensions carries arbitrary producer-specific metadata.
	Extensions map[string]any
}

// Parse decodes a Conjure IR JSON document.
func Parse(data []byte) (*ConjureDefinition, error) {
	var def ConjureDefinition
	if err := def.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return &def, nil
}

// Load reads and parses the IR document at path. Files larger than maxSize
// bytes are rejected; maxSize <= 0 disables the check.
func Load(path string, maxSize int64) (*ConjureDefinition, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "stat conjure definition")
	}
	if info.IsDir() {
		return nil, errors.Newf("%s is a directory", path)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, errors.WithHint(
			errors.Newf("%s is %d bytes, larger than the configured maximum of %d", path, info.Size(), maxSize),
			"raise max_idl_size in the generator config",
		)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read conjure definition")
	}
	def, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return def, nil
}

// FindType looks up a type definition by name. Returns nil if not found.
func (d *ConjureDefinition) FindType(name TypeName) TypeDefinition {
	for _, t := range d.Types {
		if t.TypeName() == name {
			return t
		}
	}
	return nil
}

// FindError looks up an error definition by name. Returns nil if not found.
func (d *ConjureDefinition) FindError(name TypeName) *ErrorDefinition {
	for _, e := range d.Errors {
		if e.ErrorName == name {
			return e
		}
	}
	return nil
}

// FindService looks up a service definition by name. Returns nil if not found.
func (d *ConjureDefinition) FindService(name TypeName) *ServiceDefinition {
	for _, s := range d.Services {
		if s.ServiceName == name {
			return s
		}
	}
	return nil
}

// Packages returns the distinct conjure packages declared by the document, sorted.
func (d *ConjureDefinition) Packages() []string {
	seen := make(map[string]bool)
	add := func(tn TypeName) { seen[tn.Package] = true }
	for _, t := range d.Types {
		add(t.TypeName())
	}
	for _, e := range d.Errors {
		add(e.ErrorName)
	}
	for _, s := range d.Services {
		add(s.ServiceName)
	}
	pkgs := make([]string, 0, len(seen))
	for p := range seen {
		pkgs = append(pkgs, p)
	}
	sort.Strings(pkgs)
	return pkgs
}

// ValidationError represents a structural problem in a definition document.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the document for structural issues.
// Returns all validation errors found (not just the first).
func (d *ConjureDefinition) Validate() []error {
	var errs []*ValidationError
	report := func(code, format string, args ...any) {
		errs = append(errs, &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if d.Version != 0 && d.Version != 1 {
		report("unsupported_version", "unsupported conjure IR version %d", d.Version)
	}

	// Type and error names share a namespace per package.
	names := make(map[TypeName]bool)
	declare := func(tn TypeName, what string) {
		if tn.Name == "" {
			report("empty_name", "%s with empty name in package %q", what, tn.Package)
			return
		}
		if names[tn] {
			report("duplicate_type", "duplicate type name: %s (package: %s)", tn.Name, tn.Package)
		}
		names[tn] = true
	}
	for _, t := range d.Types {
		declare(t.TypeName(), t.Kind().String())
	}
	for _, e := range d.Errors {
		declare(e.ErrorName, "error")
	}

	checkRefs := func(t Type, context string) {
		for _, ref := range references(t) {
			if !names[ref] {
				report("missing_type_reference", "%s references unknown type %s (package: %s)", context, ref.Name, ref.Package)
			}
		}
	}
	checkFields := func(fields []FieldDefinition, owner string) {
		seen := make(map[string]bool)
		for _, f := range fields {
			if seen[f.FieldName] {
				report("duplicate_field", "duplicate field %s in %s", f.FieldName, owner)
			}
			seen[f.FieldName] = true
			checkRefs(f.Type, owner+"."+f.FieldName)
		}
	}

	for _, t := range d.Types {
		owner := t.TypeName().String()
		switch def := t.(type) {
		case *ObjectDefinition:
			checkFields(def.Fields, owner)
		case *UnionDefinition:
			if len(def.Union) == 0 {
				report("empty_union", "union %s has no variants", owner)
			}
			checkFields(def.Union, owner)
		case *AliasDefinition:
			checkRefs(def.Alias, owner)
		case *EnumDefinition:
			seen := make(map[string]bool)
			for _, v := range def.Values {
				if seen[v.Value] {
					report("duplicate_enum_value", "duplicate value %s in enum %s", v.Value, owner)
				}
				seen[v.Value] = true
			}
		}
	}
	for _, e := range d.Errors {
		checkFields(e.AllArgs(), e.ErrorName.String())
		if e.Namespace == "" {
			report("empty_namespace", "error %s has no namespace", e.ErrorName)
		}
	}

	for _, svc := range d.Services {
		endpointNames := make(map[string]bool)
		for _, ep := range svc.Endpoints {
			context := svc.ServiceName.String() + "." + ep.EndpointName
			if endpointNames[ep.EndpointName] {
				report("duplicate_endpoint", "duplicate endpoint name in service %s: %s", svc.ServiceName, ep.EndpointName)
			}
			endpointNames[ep.EndpointName] = true

			if ep.Returns != nil {
				checkRefs(ep.Returns, context+" returns")
			}

			tmpl, err := pathtemplate.Parse(ep.HTTPPath)
			if err != nil {
				report("invalid_path", "endpoint %s: %v", context, err)
			}

			argNames := make(map[string]bool)
			bodies := 0
			pathArgs := make(map[string]bool)
			for _, arg := range ep.Args {
				if argNames[arg.ArgName] {
					report("duplicate_arg", "duplicate argument %s in endpoint %s", arg.ArgName, context)
				}
				argNames[arg.ArgName] = true
				checkRefs(arg.Type, context+"("+arg.ArgName+")")

				switch arg.ParamType.Kind {
				case ParamBody:
					bodies++
				case ParamPath:
					pathArgs[arg.ArgName] = true
				}
			}
			if bodies > 1 {
				report("multiple_bodies", "endpoint %s declares %d body arguments", context, bodies)
			}
			if bodies > 0 && ep.HTTPMethod == MethodGet {
				report("get_with_body", "GET endpoint %s declares a body argument", context)
			}

			if err == nil {
				params := tmpl.Params()
				for _, p := range params {
					if !pathArgs[p] {
						report("unbound_path_param", "endpoint %s: path parameter {%s} has no path argument", context, p)
					}
					delete(pathArgs, p)
				}
				var extra []string
				for name := range pathArgs {
					extra = append(extra, name)
				}
				sort.Strings(extra)
				if len(extra) > 0 {
					report("unknown_path_arg", "endpoint %s: path arguments %s do not appear in %s", context, strings.Join(extra, ", "), ep.HTTPPath)
				}
			}
		}
	}

	var result []error
	for _, e := range errs {
		result = append(result, e)
	}
	return result
}

// references returns every type name referenced by t, in traversal order.
func references(t Type) []TypeName {
	switch t := t.(type) {
	case *ReferenceType:
		return []TypeName{t.Target}
	case *OptionalType:
		return references(t.ItemType)
	case *ListType:
		return references(t.ItemType)
	case *SetType:
		return references(t.ItemType)
	case *MapType:
		return append(references(t.KeyType), references(t.ValueType)...)
	case *ExternalType:
		if t.Fallback != nil {
			return references(t.Fallback)
		}
	}
	return nil
}
