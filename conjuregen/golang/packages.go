package golang

import (
	"path"
	"strings"
	"unicode"

	"github.com/broady/conjure/conjuregen/spec"
)

// goPackage is the Go package a conjure package maps to.
type goPackage struct {
	// ImportPath is the full import path.
	ImportPath string

	// Dir is the output directory relative to the output root, slash
	// separated. Empty for the root package.
	Dir string

	// Name is the package clause name.
	Name string
}

type packageMap struct {
	cfg   GeneratorConfig
	cache map[string]goPackage
}

func newPackageMap(cfg GeneratorConfig) *packageMap {
	return &packageMap{cfg: cfg, cache: make(map[string]goPackage)}
}

func (m *packageMap) forType(tn spec.TypeName) goPackage {
	return m.forConjure(tn.Package)
}

// forConjure maps a dotted conjure package to a Go package.
func (m *packageMap) forConjure(pkg string) goPackage {
	if p, ok := m.cache[pkg]; ok {
		return p
	}
	var p goPackage
	if m.cfg.SinglePackage {
		p = goPackage{
			ImportPath: m.cfg.ModulePrefix,
			Name:       packageName(path.Base(m.cfg.ModulePrefix)),
		}
	} else {
		dir := packageDir(pkg, m.cfg.StripPackagePrefix)
		p = goPackage{
			ImportPath: path.Join(m.cfg.ModulePrefix, dir),
			Dir:        dir,
			Name:       packageName(path.Base(dir)),
		}
	}
	m.cache[pkg] = p
	return p
}

// packageDir strips prefix from pkg and turns the remaining dotted
// segments into a directory path. Stripping the whole package leaves its
// last segment.
func packageDir(pkg, prefix string) string {
	rest := pkg
	if prefix != "" && (pkg == prefix || strings.HasPrefix(pkg, prefix+".")) {
		rest = strings.TrimPrefix(strings.TrimPrefix(pkg, prefix), ".")
	}
	if rest == "" {
		rest = pkg[strings.LastIndex(pkg, ".")+1:]
	}
	segments := strings.Split(rest, ".")
	for i, s := range segments {
		segments[i] = packageName(s)
	}
	return strings.Join(segments, "/")
}

// packageName returns a valid package clause name for s.
func packageName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	switch {
	case name == "":
		return "api"
	case unicode.IsDigit(rune(name[0])):
		return "p" + name
	case goKeywords[name]:
		return name + "_"
	}
	return name
}
