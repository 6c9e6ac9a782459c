package options

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCLI struct {
	Options Options `embed:""`
}

func parse(t *testing.T, args ...string) *Options {
	t.Helper()
	var cli testCLI
	parser, err := kong.New(&cli)
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)
	return &cli.Options
}

func TestLoad_FlagsOnly(t *testing.T) {
	opts := parse(t,
		"--module-prefix", "example.com/app/gen",
		"--strip-package-prefix", "com.example",
		"--single-package",
		"--no-comments",
		"--external-type", "java.time.Instant=time.Time",
		"--max-idl-size", "1MiB",
	)

	cfg, err := opts.Load("api.json", "out")
	require.NoError(t, err)
	assert.Equal(t, "api.json", cfg.IDLPath)
	assert.Equal(t, "out", cfg.OutDir)
	assert.Equal(t, "example.com/app/gen", cfg.ModulePrefix)
	assert.Equal(t, "com.example", cfg.StripPackagePrefix)
	assert.True(t, cfg.SinglePackage)
	require.NotNil(t, cfg.EmitComments)
	assert.False(t, *cfg.EmitComments)
	assert.Equal(t, map[string]string{"java.time.Instant": "time.Time"}, cfg.ExternalTypes)
	assert.Equal(t, "1MiB", cfg.MaxIDLSize)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conjure.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`idl: api.json
out_dir: gen
module_prefix: example.com/file
project_version: 1.0.0
external_types:
  a.B: example.com/b.B
`), 0o644))

	opts := parse(t, "--config", path, "--module-prefix", "example.com/flag", "--external-type", "c.D=example.com/d.D")
	cfg, err := opts.Load("", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "api.json"), cfg.IDLPath)
	assert.Equal(t, filepath.Join(dir, "gen"), cfg.OutDir)
	assert.Equal(t, "example.com/flag", cfg.ModulePrefix)
	assert.Equal(t, "1.0.0", cfg.ProjectVersion)
	assert.Equal(t, map[string]string{"a.B": "example.com/b.B", "c.D": "example.com/d.D"}, cfg.ExternalTypes)
	assert.Nil(t, cfg.EmitComments)

	cfg, err = opts.Load("other.json", "elsewhere")
	require.NoError(t, err)
	assert.Equal(t, "other.json", cfg.IDLPath)
	assert.Equal(t, "elsewhere", cfg.OutDir)
}

func TestLoad_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conjure.toml")
	require.NoError(t, os.WriteFile(path, []byte("bogus = 1\n"), 0o644))

	opts := parse(t, "--config", path)
	_, err := opts.Load("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys bogus")
}
