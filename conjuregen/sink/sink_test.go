package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "simple", path: "catalog/book.conjure.go"},
		{name: "nested", path: "a/b/c/d/file.go"},
		{name: "single file", path: "go.mod"},
		{name: "empty", path: "", wantErr: "empty"},
		{name: "absolute", path: "/abs/path.go", wantErr: "absolute paths not allowed"},
		{name: "windows drive", path: "C:/x.go", wantErr: "absolute paths not allowed"},
		{name: "traversal", path: "foo/../bar.go", wantErr: "path traversal not allowed"},
		{name: "leading traversal", path: "../bar.go", wantErr: "path traversal not allowed"},
		{name: "dot prefix", path: "./foo.go", wantErr: "not clean"},
		{name: "double slash", path: "foo//bar.go", wantErr: "not clean"},
		{name: "trailing slash", path: "foo/bar/", wantErr: "not clean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySink()

	content := []byte("package catalog\n")
	require.NoError(t, s.WriteFile(ctx, "catalog/book.conjure.go", content))
	require.NoError(t, s.WriteFile(ctx, "catalog/genre.conjure.go", []byte("x")))

	content[0] = 'X'
	assert.Equal(t, "package catalog\n", string(s.Get("catalog/book.conjure.go")), "sink must copy written content")
	assert.Nil(t, s.Get("missing.go"))
	assert.Equal(t, []string{"catalog/book.conjure.go", "catalog/genre.conjure.go"}, s.Paths())

	files := s.Files()
	files["catalog/book.conjure.go"][0] = 'Y'
	assert.Equal(t, byte('p'), s.Get("catalog/book.conjure.go")[0])

	assert.Error(t, s.WriteFile(ctx, "../escape.go", nil))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, s.WriteFile(cancelled, "late.go", nil), context.Canceled)

	s.Reset()
	assert.Empty(t, s.Paths())
}

func TestMemorySink_Concurrent(t *testing.T) {
	s := NewMemorySink()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.WriteFile(context.Background(), fmt.Sprintf("f%d.go", i), []byte{byte(i)}))
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.Files(), 50)
}

const header = "// Code generated by conjure-go. DO NOT EDIT.\n\n"

func TestFilesystemSink(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewFilesystemSink(root)

	require.NoError(t, s.WriteFile(ctx, "com/example/catalog/book.conjure.go", []byte(header+"v1")))
	require.NoError(t, s.WriteFile(ctx, "com/example/catalog/book.conjure.go", []byte(header+"v2")))

	got, err := os.ReadFile(filepath.Join(root, "com", "example", "catalog", "book.conjure.go"))
	require.NoError(t, err)
	assert.Equal(t, header+"v2", string(got))

	info, err := os.Stat(filepath.Join(root, "com", "example", "catalog", "book.conjure.go"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	leftovers, err := filepath.Glob(filepath.Join(root, "com", "example", "catalog", ".conjure-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFilesystemSink_HandWritten(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "doc.go"), []byte("package catalog\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module old\n"), 0o644))

	s := NewFilesystemSink(root)
	err := s.WriteFile(ctx, "doc.go", []byte(header+"package catalog\n"))
	require.ErrorIs(t, err, ErrHandWritten)
	assert.NotEmpty(t, errors.GetAllHints(err))

	got, err := os.ReadFile(filepath.Join(root, "doc.go"))
	require.NoError(t, err)
	assert.Equal(t, "package catalog\n", string(got))

	require.NoError(t, s.WriteFile(ctx, "go.mod", []byte("module new\n")), "only Go sources are checked")

	s.AllowHandWritten = true
	require.NoError(t, s.WriteFile(ctx, "doc.go", []byte(header+"package catalog\n")))
}

func TestFilesystemSink_PathSecurity(t *testing.T) {
	s := NewFilesystemSink(t.TempDir())
	for _, path := range []string{"../outside.go", "/etc/passwd", "a/../../b.go"} {
		assert.Error(t, s.WriteFile(context.Background(), path, nil), path)
	}
}

type failingSink struct {
	failOn string
	writes []string
}

func (f *failingSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if path == f.failOn {
		return errors.New("disk full")
	}
	f.writes = append(f.writes, path)
	return nil
}

func TestStagingSink(t *testing.T) {
	ctx := context.Background()
	target := NewMemorySink()
	s := NewStagingSink(target)

	require.NoError(t, s.WriteFile(ctx, "b.go", []byte("b")))
	require.NoError(t, s.WriteFile(ctx, "a.go", []byte("a")))
	assert.Equal(t, []string{"a.go", "b.go"}, s.Staged())
	assert.Empty(t, target.Paths(), "nothing is written before Commit")

	require.NoError(t, s.Commit(ctx))
	assert.Equal(t, []string{"a.go", "b.go"}, target.Paths())
	assert.Empty(t, s.Staged())
}

func TestStagingSink_Discard(t *testing.T) {
	ctx := context.Background()
	target := NewMemorySink()
	s := NewStagingSink(target)

	require.NoError(t, s.WriteFile(ctx, "a.go", []byte("a")))
	s.Discard()
	require.NoError(t, s.Commit(ctx))
	assert.Empty(t, target.Paths())
}

func TestStagingSink_CommitFailure(t *testing.T) {
	ctx := context.Background()
	target := &failingSink{failOn: "b.go"}
	s := NewStagingSink(target)

	for _, p := range []string{"c.go", "b.go", "a.go"} {
		require.NoError(t, s.WriteFile(ctx, p, nil))
	}
	err := s.Commit(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit b.go")
	assert.Equal(t, []string{"a.go"}, target.writes)
}
