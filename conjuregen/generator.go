package conjuregen

import (
	"context"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/broady/conjure/conjuregen/golang"
	"github.com/broady/conjure/conjuregen/sink"
	"github.com/broady/conjure/conjuregen/spec"
	"github.com/broady/conjure/internal/bytesize"
)

// RuntimeVersion is the version of the runtime library generated code is
// written against.
const RuntimeVersion = "v0.1.0"

// ManifestFile is written to the output root of every run.
const ManifestFile = "conjure-manifest.json"

// Generator provides a fluent API for code generation.
// Create with FromFile, FromDefinition or FromConfig and configure with
// method chaining.
type Generator struct {
	def *spec.ConjureDefinition
	cfg Config
}

// FromFile creates a Generator reading the IR document at path.
func FromFile(path string) *Generator {
	return &Generator{cfg: Config{IDLPath: path}}
}

// FromDefinition creates a Generator for an already loaded document.
func FromDefinition(def *spec.ConjureDefinition) *Generator {
	return &Generator{def: def}
}

// FromConfig creates a Generator from a complete configuration.
func FromConfig(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// ModulePrefix sets the Go import path of the output directory.
func (g *Generator) ModulePrefix(prefix string) *Generator {
	g.cfg.ModulePrefix = prefix
	return g
}

// StripPackagePrefix sets the prefix removed from conjure package names.
func (g *Generator) StripPackagePrefix(prefix string) *Generator {
	g.cfg.StripPackagePrefix = prefix
	return g
}

// SinglePackage emits every definition into one Go package.
func (g *Generator) SinglePackage() *Generator {
	g.cfg.SinglePackage = true
	return g
}

// Module writes a go.mod for module next to the generated code.
func (g *Generator) Module(module string) *Generator {
	g.cfg.Module = module
	return g
}

// Project sets the name and version recorded in the manifest.
func (g *Generator) Project(name, version string) *Generator {
	g.cfg.ProjectName = name
	g.cfg.ProjectVersion = version
	return g
}

// ExternalType maps an external reference ("pkg.Name") to a Go type
// ("import/path.Type").
func (g *Generator) ExternalType(ref, goType string) *Generator {
	if g.cfg.ExternalTypes == nil {
		g.cfg.ExternalTypes = make(map[string]string)
	}
	g.cfg.ExternalTypes[ref] = goType
	return g
}

// WithoutComments drops IDL documentation from the output.
func (g *Generator) WithoutComments() *Generator {
	emit := false
	g.cfg.EmitComments = &emit
	return g
}

// MaxIDLSize bounds the size of the IR document, e.g. "16MiB".
func (g *Generator) MaxIDLSize(size string) *Generator {
	g.cfg.MaxIDLSize = size
	return g
}

// RuntimeImportPath overrides the import path of the runtime library.
func (g *Generator) RuntimeImportPath(path string) *Generator {
	g.cfg.RuntimeImportPath = path
	return g
}

// Logger sets the logger. Definitions are logged at debug level and the
// run summary at info level.
func (g *Generator) Logger(logger *zap.Logger) *Generator {
	g.cfg.Logger = logger
	return g
}

// Config returns the configuration with defaults applied.
func (g *Generator) Config() Config {
	return g.cfg.withDefaults()
}

// Result describes a completed run.
type Result struct {
	*golang.GenerateResult

	Manifest Manifest

	Services  int
	Errors    int
	Endpoints int

	Duration time.Duration
}

// ToDir generates files into dir. Nothing is written unless generation
// succeeds.
func (g *Generator) ToDir(dir string) (*Result, error) {
	g.cfg.OutDir = dir
	return g.ToSink(context.Background(), sink.NewFilesystemSink(dir))
}

// ToSink generates files into out. Output is staged and committed only
// after the whole run succeeded.
func (g *Generator) ToSink(ctx context.Context, out sink.OutputSink) (*Result, error) {
	staging := sink.NewStagingSink(out)
	res, err := g.run(ctx, staging)
	if err != nil {
		staging.Discard()
		return nil, err
	}
	if err := staging.Commit(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

// Check runs generation in memory and discards the output.
func (g *Generator) Check(ctx context.Context) (*Result, error) {
	return g.run(ctx, sink.NewMemorySink())
}

func (g *Generator) run(ctx context.Context, out sink.OutputSink) (*Result, error) {
	start := time.Now()
	cfg := g.cfg.withDefaults()
	log := cfg.Logger
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	def := g.def
	if def == nil {
		if cfg.IDLPath == "" {
			return nil, errors.WithHint(errors.New("no conjure definition"), "pass the IR document path")
		}
		maxSize, err := bytesize.Parse(cfg.MaxIDLSize)
		if err != nil {
			return nil, err
		}
		if def, err = spec.Load(cfg.IDLPath, maxSize); err != nil {
			return nil, err
		}
		log.Debug("loaded conjure definition",
			zap.String("path", cfg.IDLPath),
			zap.Int("types", len(def.Types)),
			zap.Int("errors", len(def.Errors)),
			zap.Int("services", len(def.Services)))
	}

	gen := &golang.GoGenerator{}
	genResult, err := gen.Generate(ctx, def, golang.GenerateOptions{
		Sink:   out,
		Config: cfg.generatorConfig(),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "%s generator", gen.Name())
	}

	var total int64
	for _, f := range genResult.Files {
		total += f.Size
		log.Debug("generated file",
			zap.String("path", f.Path),
			zap.String("package", f.Package),
			zap.String("size", bytesize.Format(f.Size)))
	}
	for _, w := range genResult.Warnings {
		log.Warn(w.Message, zap.String("code", w.Code), zap.Stringer("type", w.TypeName))
	}

	manifest, err := buildManifest(cfg, genResult)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode manifest")
	}
	if err := out.WriteFile(ctx, ManifestFile, append(data, '\n')); err != nil {
		return nil, errors.Wrap(err, "write manifest")
	}

	if cfg.Module != "" {
		if err := out.WriteFile(ctx, "go.mod", goMod(cfg)); err != nil {
			return nil, errors.Wrap(err, "write go.mod")
		}
	}

	res := &Result{
		GenerateResult: genResult,
		Manifest:       manifest,
		Services:       len(def.Services),
		Errors:         len(def.Errors),
		Duration:       time.Since(start),
	}
	for _, svc := range def.Services {
		res.Endpoints += len(svc.Endpoints)
	}
	log.Info("generated conjure definitions",
		zap.Int("types", len(def.Types)),
		zap.Int("services", res.Services),
		zap.Int("errors", res.Errors),
		zap.Int("files", len(genResult.Files)),
		zap.String("bytes", bytesize.Format(total)),
		zap.Duration("duration", res.Duration))
	return res, nil
}

// Manifest records what a run produced.
type Manifest struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Generator    string       `json:"generator"`
	Dependencies []Dependency `json:"dependencies"`
	Files        []string     `json:"files"`
}

// Dependency is a Go module generated code requires.
type Dependency struct {
	Module  string `json:"module"`
	Version string `json:"version"`
}

func buildManifest(cfg Config, res *golang.GenerateResult) (Manifest, error) {
	version, err := semver.NewVersion(cfg.ProjectVersion)
	if err != nil {
		return Manifest{}, errors.Wrapf(err, "project version %q", cfg.ProjectVersion)
	}
	runtime := cfg.RuntimeImportPath
	if runtime == "" {
		runtime = golang.DefaultRuntimeImportPath
	}
	files := make([]string, len(res.Files))
	for i, f := range res.Files {
		files[i] = f.Path
	}
	return Manifest{
		Name:         cfg.ProjectName,
		Version:      version.String(),
		Generator:    "conjure-go",
		Dependencies: []Dependency{{Module: runtime, Version: RuntimeVersion}},
		Files:        files,
	}, nil
}

func goMod(cfg Config) []byte {
	runtime := cfg.RuntimeImportPath
	if runtime == "" {
		runtime = golang.DefaultRuntimeImportPath
	}
	var b strings.Builder
	b.WriteString("module " + cfg.Module + "\n\n")
	b.WriteString("go 1.25\n\n")
	b.WriteString("require " + runtime + " " + RuntimeVersion + "\n")
	return []byte(b.String())
}
