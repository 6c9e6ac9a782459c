// Package conjuregen generates Go code from Conjure IR documents.
//
// Configure a run with the fluent API and write the output to a directory:
//
//	conjuregen.FromFile("api.conjure.json").
//	    ModulePrefix("example.com/app/api").
//	    StripPackagePrefix("com.example").
//	    ToDir("./api")
//
// or load a Config from a YAML or TOML file with LoadConfig.
package conjuregen

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/broady/conjure"
	"github.com/broady/conjure/conjuregen/golang"
	"github.com/broady/conjure/internal/bytesize"
)

// DefaultMaxIDLSize bounds the size of the IR document read from disk.
const DefaultMaxIDLSize = "64MiB"

// Config holds the configuration for code generation.
type Config struct {
	// IDLPath is the Conjure IR JSON document to read.
	IDLPath string `yaml:"idl" toml:"idl"`

	// OutDir is the directory generated files are written to.
	OutDir string `yaml:"out_dir" toml:"out_dir"`

	// ModulePrefix is the Go import path of OutDir.
	// e.g. "github.com/myorg/app/api"
	ModulePrefix string `yaml:"module_prefix" toml:"module_prefix" validate:"required,importpath"`

	// StripPackagePrefix removes this prefix from conjure package names
	// before they are mapped to directories.
	// Example: "com.example" maps "com.example.catalog" to "catalog".
	StripPackagePrefix string `yaml:"strip_package_prefix" toml:"strip_package_prefix"`

	// SinglePackage emits every definition into the package at ModulePrefix.
	SinglePackage bool `yaml:"single_package" toml:"single_package"`

	// Module, when set, writes a go.mod declaring this module path and the
	// runtime dependency.
	Module string `yaml:"module" toml:"module" validate:"omitempty,importpath"`

	// ProjectName and ProjectVersion are recorded in the manifest.
	// ProjectName defaults to the last element of ModulePrefix.
	ProjectName    string `yaml:"project_name" toml:"project_name"`
	ProjectVersion string `yaml:"project_version" toml:"project_version" validate:"omitempty,semver3"`

	// ExternalTypes maps external references ("pkg.Name") to Go types
	// ("import/path.Type").
	ExternalTypes map[string]string `yaml:"external_types" toml:"external_types" validate:"dive,keys,required,endkeys,gotype"`

	// EmitComments controls whether IDL docs become Go comments.
	// Default: true.
	EmitComments *bool `yaml:"emit_comments" toml:"emit_comments"`

	// MaxIDLSize is a size literal such as "64MiB". Default: DefaultMaxIDLSize.
	MaxIDLSize string `yaml:"max_idl_size" toml:"max_idl_size" validate:"omitempty,bytesize"`

	// RuntimeImportPath overrides the import path of the runtime library.
	RuntimeImportPath string `yaml:"runtime_import_path" toml:"runtime_import_path" validate:"omitempty,importpath"`

	// Logger receives progress logs. Default: zap.NewNop().
	Logger *zap.Logger `yaml:"-" toml:"-" validate:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("semver3", func(fl validator.FieldLevel) bool {
		_, err := semver.StrictNewVersion(strings.TrimPrefix(fl.Field().String(), "v"))
		return err == nil
	}))
	must(v.RegisterValidation("bytesize", func(fl validator.FieldLevel) bool {
		n, err := bytesize.Parse(fl.Field().String())
		return err == nil && n > 0
	}))
	must(v.RegisterValidation("importpath", func(fl validator.FieldLevel) bool {
		return validImportPath(fl.Field().String())
	}))
	must(v.RegisterValidation("gotype", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		i := strings.LastIndex(s, ".")
		return i > 0 && i < len(s)-1 && validImportPath(s[:i])
	}))
	return v
}

func validImportPath(s string) bool {
	if s == "" || strings.HasPrefix(s, "/") || strings.HasSuffix(s, "/") {
		return false
	}
	for _, seg := range strings.Split(s, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
		for _, r := range seg {
			if r <= ' ' || strings.ContainsRune(`"'\:*<>?|`+"`", r) {
				return false
			}
		}
	}
	return true
}

// Validate checks the configuration, reporting every invalid field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return errors.Wrap(err, "validate config")
	}
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		messages = append(messages, ve.Namespace()+": "+formatValidationError(ve))
	}
	return errors.WithHint(
		errors.Newf("invalid config: %s", strings.Join(messages, "; ")),
		"see the conjuregen.Config field documentation for accepted values")
}

func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "importpath":
		return "must be a Go import path"
	case "gotype":
		return `must be written as "import/path.Type"`
	case "semver3":
		return "must be a semantic version"
	case "bytesize":
		return `must be a positive size such as "64MiB"`
	default:
		return conjure.ValidationMessage(ve)
	}
}

// withDefaults returns a copy of c with defaults applied.
func (c Config) withDefaults() Config {
	if c.EmitComments == nil {
		emit := true
		c.EmitComments = &emit
	}
	if c.MaxIDLSize == "" {
		c.MaxIDLSize = DefaultMaxIDLSize
	}
	if c.ProjectVersion == "" {
		c.ProjectVersion = "0.0.0"
	}
	if c.ProjectName == "" && c.ModulePrefix != "" {
		c.ProjectName = c.ModulePrefix[strings.LastIndex(c.ModulePrefix, "/")+1:]
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

func (c Config) generatorConfig() golang.GeneratorConfig {
	return golang.GeneratorConfig{
		ModulePrefix:       c.ModulePrefix,
		StripPackagePrefix: c.StripPackagePrefix,
		SinglePackage:      c.SinglePackage,
		ExternalTypes:      c.ExternalTypes,
		EmitComments:       c.EmitComments == nil || *c.EmitComments,
		RuntimeImportPath:  c.RuntimeImportPath,
	}
}

// LoadConfig reads a YAML (.yaml, .yml) or TOML (.toml) config file.
// Unknown keys are an error. Relative IDLPath and OutDir values are
// resolved against the directory of the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errors.Newf("parse %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	default:
		return nil, errors.WithHint(
			errors.Newf("unsupported config format %q", ext),
			"use a .yaml, .yml or .toml file")
	}

	dir := filepath.Dir(path)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	cfg.IDLPath = resolve(cfg.IDLPath)
	cfg.OutDir = resolve(cfg.OutDir)
	return &cfg, nil
}
