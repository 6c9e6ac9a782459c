package conjuregen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/broady/conjure/conjuregen/sink"
	"github.com/broady/conjure/conjuregen/spec"
)

const catalogIR = "spec/testdata/catalog.conjure.json"

var catalogFiles = []string{
	"catalog/book.conjure.go",
	"catalog/book_not_found.conjure.go",
	"catalog/catalog_service.conjure.go",
	"catalog/genre.conjure.go",
	"catalog/media.conjure.go",
	"common/book_id.conjure.go",
}

func catalog() *Generator {
	return FromFile(catalogIR).
		ModulePrefix("example.com/app/gen").
		StripPackagePrefix("com.example")
}

func TestGenerator_ToSink(t *testing.T) {
	mem := sink.NewMemorySink()
	res, err := catalog().
		Project("catalog-api", "v1.2.3").
		Module("example.com/app/gen").
		ToSink(context.Background(), mem)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Services)
	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, 4, res.Endpoints)
	require.Len(t, res.Files, len(catalogFiles))

	want := append(append([]string{}, catalogFiles...), ManifestFile, "go.mod")
	assert.ElementsMatch(t, want, mem.Paths())

	var manifest Manifest
	require.NoError(t, json.Unmarshal(mem.Get(ManifestFile), &manifest))
	assert.Equal(t, "catalog-api", manifest.Name)
	assert.Equal(t, "1.2.3", manifest.Version)
	assert.Equal(t, "conjure-go", manifest.Generator)
	assert.Equal(t, catalogFiles, manifest.Files)
	assert.Equal(t, []Dependency{{Module: "github.com/broady/conjure", Version: RuntimeVersion}}, manifest.Dependencies)
	assert.Equal(t, manifest, res.Manifest)

	assert.Equal(t,
		"module example.com/app/gen\n\ngo 1.25\n\nrequire github.com/broady/conjure "+RuntimeVersion+"\n",
		string(mem.Get("go.mod")))
}

func TestGenerator_RuntimeImportPath(t *testing.T) {
	mem := sink.NewMemorySink()
	res, err := catalog().
		RuntimeImportPath("example.com/fork/conjure").
		Module("example.com/app/gen").
		ToSink(context.Background(), mem)
	require.NoError(t, err)

	assert.Equal(t, "example.com/fork/conjure", res.Manifest.Dependencies[0].Module)
	assert.Contains(t, string(mem.Get("go.mod")), "require example.com/fork/conjure ")
	assert.Contains(t, string(mem.Get("catalog/book.conjure.go")), `"example.com/fork/conjure`)
}

func TestGenerator_ToDir(t *testing.T) {
	dir := t.TempDir()
	res, err := catalog().WithoutComments().ToDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, res.Files)

	for _, f := range catalogFiles {
		_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(f)))
		assert.NoError(t, err, f)
	}
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "gen"`)
	assert.Contains(t, string(data), `"version": "0.0.0"`)

	_, err = os.Stat(filepath.Join(dir, "go.mod"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerator_Check(t *testing.T) {
	res, err := catalog().Check(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Files, len(catalogFiles))
}

func TestGenerator_FailureWritesNothing(t *testing.T) {
	def := &spec.ConjureDefinition{
		Version: 1,
		Types: []spec.TypeDefinition{
			&spec.ObjectDefinition{
				Name: spec.TypeName{Name: "Thing", Package: "com.example.api"},
				Fields: []spec.FieldDefinition{
					{FieldName: "missing", Type: spec.Ref("com.example.api", "Missing")},
				},
			},
		},
	}

	mem := sink.NewMemorySink()
	_, err := FromDefinition(def).ModulePrefix("example.com/gen").ToSink(context.Background(), mem)
	require.Error(t, err)
	assert.Empty(t, mem.Paths())
}

func TestGenerator_Errors(t *testing.T) {
	tests := []struct {
		name string
		gen  *Generator
		want string
	}{
		{"missing prefix", FromFile(catalogIR), "ModulePrefix: is required"},
		{"no input", FromConfig(Config{ModulePrefix: "example.com/x"}), "no conjure definition"},
		{"missing file", FromFile("testdata/nope.json").ModulePrefix("example.com/x"), "stat conjure definition"},
		{"too large", catalog().MaxIDLSize("1KiB"), "larger than the configured maximum"},
		{"bad external", catalog().ExternalType("java.time.Instant", "Instant"), "ExternalTypes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.gen.Check(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGenerator_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mem := sink.NewMemorySink()
	_, err := catalog().ToSink(ctx, mem)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mem.Paths())
}

func TestGenerator_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, err := catalog().Logger(zap.New(core)).Check(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("loaded conjure definition").Len())
	assert.Equal(t, len(catalogFiles), logs.FilterMessage("generated file").Len())

	summary := logs.FilterMessage("generated conjure definitions").All()
	require.Len(t, summary, 1)
	assert.Equal(t, zapcore.InfoLevel, summary[0].Level)
	fields := summary[0].ContextMap()
	assert.EqualValues(t, 1, fields["services"])
	assert.EqualValues(t, len(catalogFiles), fields["files"])
}

func TestGenerator_Config(t *testing.T) {
	cfg := catalog().
		SinglePackage().
		ExternalType("java.time.Instant", "time.Time").
		Project("api", "2.0.0").
		Config()
	assert.True(t, cfg.SinglePackage)
	assert.Equal(t, "time.Time", cfg.ExternalTypes["java.time.Instant"])
	assert.Equal(t, "api", cfg.ProjectName)
	assert.Equal(t, "2.0.0", cfg.ProjectVersion)
	assert.Equal(t, DefaultMaxIDLSize, cfg.MaxIDLSize)
}
