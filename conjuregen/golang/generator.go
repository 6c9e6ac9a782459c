package golang

import (
	"bytes"
	"context"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"

	"github.com/broady/conjure/conjuregen/spec"
)

// ErrInvalidDefinition is returned when the document fails validation.
var ErrInvalidDefinition = errors.New("invalid conjure definition")

// ErrImportCycle is returned when the generated Go packages would import
// each other.
var ErrImportCycle = errors.New("import cycle")

// HeaderComment is the first line of every generated file.
const HeaderComment = "Code generated by conjure-go. DO NOT EDIT."

// GoGenerator emits one Go file per type, error and service definition.
type GoGenerator struct{}

// Name returns "go".
func (g *GoGenerator) Name() string {
	return "go"
}

// Generate validates def, resolves every type and writes one formatted Go
// file per definition to opts.Sink, in sorted (package, name) order.
func (g *GoGenerator) Generate(ctx context.Context, def *spec.ConjureDefinition, opts GenerateOptions) (*GenerateResult, error) {
	if def == nil {
		return nil, errors.New("conjure definition is nil")
	}
	if opts.Sink == nil {
		return nil, errors.New("output sink is nil")
	}
	cfg := opts.Config
	if cfg.ModulePrefix == "" {
		return nil, errors.WithHint(errors.New("module prefix is required"),
			"set module_prefix to the import path of the output directory")
	}
	if errs := def.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		return nil, errors.Mark(
			errors.Newf("invalid conjure definition:\n  %s", strings.Join(msgs, "\n  ")),
			ErrInvalidDefinition)
	}

	pkgs := newPackageMap(cfg)
	index := NewIndex(def)
	if !cfg.SinglePackage {
		if err := checkImportCycles(index, pkgs); err != nil {
			return nil, err
		}
	}

	names := NewContext(func(tn spec.TypeName) string { return pkgs.forType(tn).ImportPath })
	if err := names.RegisterTypes(index.Names()); err != nil {
		return nil, err
	}
	res, err := newResolver(index, pkgs, names, cfg)
	if err != nil {
		return nil, err
	}
	e := &emitter{res: res, names: names, pkgs: pkgs, cfg: cfg}

	result := &GenerateResult{}
	taken := make(map[string]bool)
	for _, tn := range index.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pkg := pkgs.forType(tn)
		goName, err := names.TypeName(tn)
		if err != nil {
			return nil, err
		}
		f := e.newFile(pkg)
		if err := e.emitDefinition(f, index, tn, goName); err != nil {
			return nil, errors.Wrapf(err, "emit %s", tn)
		}

		file := unitPath(pkg.Dir, goName, taken)
		var buf bytes.Buffer
		if err := f.Render(&buf); err != nil {
			return nil, errors.Wrapf(err, "render %s", file)
		}
		src, err := imports.Process(file, buf.Bytes(), &imports.Options{
			Comments:   true,
			TabIndent:  true,
			TabWidth:   8,
			FormatOnly: true,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "format %s", file)
		}
		if err := opts.Sink.WriteFile(ctx, file, src); err != nil {
			return nil, errors.Wrapf(err, "write %s", file)
		}
		result.Files = append(result.Files, OutputFile{
			Path:    file,
			Size:    int64(len(src)),
			Package: pkg.ImportPath,
		})
		result.TypesGenerated++
	}

	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].Path < result.Files[j].Path })
	result.Warnings = res.Warnings()
	return result, nil
}

func (e *emitter) newFile(pkg goPackage) *goFile {
	f := jen.NewFilePathName(pkg.ImportPath, pkg.Name)
	f.HeaderComment(HeaderComment)
	f.ImportName(e.res.runtime, "conjure")
	f.ImportName(e.res.runtime+"/codecs", "codecs")
	return &goFile{File: f}
}

func (e *emitter) emitDefinition(f *goFile, index *Index, tn spec.TypeName, goName string) error {
	if def, ok := index.Type(tn); ok {
		switch def := def.(type) {
		case *spec.ObjectDefinition:
			_, err := e.emitObject(f, def.Name, goName, def.Fields, def.Docs)
			return err
		case *spec.EnumDefinition:
			return e.emitEnum(f, def, goName)
		case *spec.UnionDefinition:
			return e.emitUnion(f, def, goName)
		case *spec.AliasDefinition:
			return e.emitAlias(f, def, goName)
		}
		return errors.Newf("unsupported definition kind %s", def.Kind())
	}
	if def, ok := index.errors[tn]; ok {
		return e.emitError(f, def, goName)
	}
	if def, ok := index.services[tn]; ok {
		return e.emitService(f, def, goName)
	}
	return errors.Mark(errors.Newf("no definition named %s", tn), ErrUnknownReference)
}

// unitPath returns <dir>/<snake_name>.conjure.go, adding a numeric suffix
// when names differ only in case.
func unitPath(dir, goName string, taken map[string]bool) string {
	base := snakeCase(goName)
	file := path.Join(dir, base+".conjure.go")
	for i := 2; taken[file]; i++ {
		file = path.Join(dir, base+"_"+strconv.Itoa(i)+".conjure.go")
	}
	taken[file] = true
	return file
}

// typeRefs returns the named types t mentions.
func typeRefs(t spec.Type) []spec.TypeName {
	switch t := t.(type) {
	case *spec.OptionalType:
		return typeRefs(t.ItemType)
	case *spec.ListType:
		return typeRefs(t.ItemType)
	case *spec.SetType:
		return typeRefs(t.ItemType)
	case *spec.MapType:
		return append(typeRefs(t.KeyType), typeRefs(t.ValueType)...)
	case *spec.ReferenceType:
		return []spec.TypeName{t.Target}
	case *spec.ExternalType:
		if t.Fallback != nil {
			return typeRefs(t.Fallback)
		}
	}
	return nil
}

// definitionRefs returns the named types a definition mentions.
func (ix *Index) definitionRefs(tn spec.TypeName) []spec.TypeName {
	var refs []spec.TypeName
	fields := func(defs []spec.FieldDefinition) {
		for _, f := range defs {
			refs = append(refs, typeRefs(f.Type)...)
		}
	}
	if def, ok := ix.types[tn]; ok {
		switch def := def.(type) {
		case *spec.ObjectDefinition:
			fields(def.Fields)
		case *spec.UnionDefinition:
			fields(def.Union)
		case *spec.AliasDefinition:
			refs = typeRefs(def.Alias)
		}
	}
	if def, ok := ix.errors[tn]; ok {
		fields(def.AllArgs())
	}
	if def, ok := ix.services[tn]; ok {
		for _, ep := range def.Endpoints {
			for _, a := range ep.Args {
				refs = append(refs, typeRefs(a.Type)...)
			}
			if ep.Returns != nil {
				refs = append(refs, typeRefs(ep.Returns)...)
			}
		}
	}
	return refs
}

// checkImportCycles reports an error when the Go packages the definitions
// map to would import each other.
func checkImportCycles(index *Index, pkgs *packageMap) error {
	graph := make(map[string]map[string]bool)
	for _, tn := range index.Names() {
		from := pkgs.forType(tn).ImportPath
		if graph[from] == nil {
			graph[from] = make(map[string]bool)
		}
		for _, ref := range index.definitionRefs(tn) {
			if to := pkgs.forType(ref).ImportPath; to != from {
				graph[from][to] = true
			}
		}
	}

	nodes := make([]string, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(nodes))
	var stack []string
	var visit func(n string) []string
	visit = func(n string) []string {
		state[n] = visiting
		stack = append(stack, n)
		edges := make([]string, 0, len(graph[n]))
		for to := range graph[n] {
			edges = append(edges, to)
		}
		sort.Strings(edges)
		for _, to := range edges {
			switch state[to] {
			case visiting:
				for i, s := range stack {
					if s == to {
						return append(append([]string(nil), stack[i:]...), to)
					}
				}
			case unvisited:
				if cycle := visit(to); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[n] = done
		return nil
	}

	for _, n := range nodes {
		if state[n] != unvisited {
			continue
		}
		if cycle := visit(n); cycle != nil {
			return errors.WithHint(
				errors.Mark(errors.Newf("generated packages import each other: %s", strings.Join(cycle, " -> ")), ErrImportCycle),
				"set single_package to emit every definition into one Go package")
		}
	}
	return nil
}
