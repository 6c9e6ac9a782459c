// Package sink provides output destinations for generated code.
package sink

import (
	"bytes"
	"context"
	"maps"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrHandWritten marks writes refused because they would replace a Go file
// that does not carry a generated-code header.
var ErrHandWritten = errors.New("refusing to overwrite hand-written file")

// generatedHeader is the standard marker of generated Go source.
var generatedHeader = regexp.MustCompile(`(?m)^// Code generated .* DO NOT EDIT\.$`)

// OutputSink receives generated file content.
// Implementations must be safe for concurrent calls.
type OutputSink interface {
	// WriteFile writes content to a relative, slash separated path. The
	// sink decides where the file really ends up.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// FilesystemSink writes below a root directory. Every write replaces the
// target atomically, so a reader never sees a partial file.
type FilesystemSink struct {
	Root string

	// Mode of written files. Zero means 0644.
	Mode os.FileMode

	// AllowHandWritten disables the check that an existing .go file is
	// generated code before it is replaced.
	AllowHandWritten bool
}

// NewFilesystemSink returns a sink writing below root.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0o644}
}

func (s *FilesystemSink) WriteFile(ctx context.Context, rel string, content []byte) error {
	if err := ValidatePath(rel); err != nil {
		return errors.Wrapf(err, "invalid path %q", rel)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if !s.AllowHandWritten && strings.HasSuffix(rel, ".go") {
		existing, err := os.ReadFile(target)
		switch {
		case err == nil && !generatedHeader.Match(existing):
			return errors.WithHint(errors.Wrapf(ErrHandWritten, "%s", rel),
				"move the file out of the output directory or choose another output directory")
		case err != nil && !errors.Is(err, os.ErrNotExist):
			return errors.Wrapf(err, "read %s", rel)
		}
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create directories")
	}
	mode := s.Mode
	if mode == 0 {
		mode = 0o644
	}
	return replaceFile(ctx, dir, target, content, mode)
}

// resolve maps rel below Root and rejects anything that lands outside it.
func (s *FilesystemSink) resolve(rel string) (string, error) {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", errors.Wrap(err, "resolve root directory")
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return "", errors.Newf("path escapes root directory: %q", rel)
	}
	return target, nil
}

// replaceFile writes content to a temp file in dir and renames it over
// target. Leftover temp files match .conjure-*.tmp.
func replaceFile(ctx context.Context, dir, target string, content []byte, mode os.FileMode) (err error) {
	tmp, err := os.CreateTemp(dir, ".conjure-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return errors.Wrap(err, "set file mode")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}

// MemorySink keeps written files in memory. Content is copied on the way in
// and on the way out.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

func (s *MemorySink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return errors.Wrapf(err, "invalid path %q", path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = bytes.Clone(content)
	return nil
}

// Files returns a copy of every written file keyed by path.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := maps.Clone(s.files)
	for p, c := range out {
		out[p] = bytes.Clone(c)
	}
	return out
}

// Paths returns the written paths in sorted order.
func (s *MemorySink) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.files))
}

// Get returns the content written to path, or nil.
func (s *MemorySink) Get(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bytes.Clone(s.files[path])
}

func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.files)
}

// StagingSink buffers every write in memory. Nothing reaches the target
// until Commit, so a failed generation run leaves the target untouched.
type StagingSink struct {
	target OutputSink
	staged *MemorySink
}

// NewStagingSink returns a StagingSink in front of target.
func NewStagingSink(target OutputSink) *StagingSink {
	return &StagingSink{target: target, staged: NewMemorySink()}
}

// WriteFile stages content for path.
func (s *StagingSink) WriteFile(ctx context.Context, path string, content []byte) error {
	return s.staged.WriteFile(ctx, path, content)
}

// Staged returns the staged paths in sorted order.
func (s *StagingSink) Staged() []string {
	return s.staged.Paths()
}

// Commit writes every staged file to the target in sorted path order and
// clears the stage. It stops at the first failing write.
func (s *StagingSink) Commit(ctx context.Context) error {
	files := s.staged.Files()
	for _, p := range slices.Sorted(maps.Keys(files)) {
		if err := s.target.WriteFile(ctx, p, files[p]); err != nil {
			return errors.Wrapf(err, "commit %s", p)
		}
	}
	s.staged.Reset()
	return nil
}

// Discard drops every staged file.
func (s *StagingSink) Discard() {
	s.staged.Reset()
}

// ValidatePath reports whether p is usable as an output path: relative,
// slash separated, clean, and free of ".." elements.
func ValidatePath(p string) error {
	switch {
	case p == "":
		return errors.New("path is empty")
	case strings.HasPrefix(p, "/") || filepath.IsAbs(p) || hasDriveLetter(p):
		return errors.New("absolute paths not allowed")
	case slices.Contains(strings.Split(p, "/"), ".."):
		return errors.New("path traversal not allowed")
	}
	if cleaned := path.Clean(p); cleaned != p {
		return errors.Newf("path is not clean (expected %q, got %q)", cleaned, p)
	}
	return nil
}

func hasDriveLetter(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0] | 0x20
	return c >= 'a' && c <= 'z'
}
