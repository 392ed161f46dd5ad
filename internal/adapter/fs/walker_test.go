package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tfidx/internal/domain"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("1\tt\tb\n"), 0644))
}

func paths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestWalker_Walk(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "b.tsv"))
	writeFile(t, filepath.Join(root, "a.tsv"))
	writeFile(t, filepath.Join(root, "notes.txt"))
	writeFile(t, filepath.Join(root, "nested", "c.tsv"))
	writeFile(t, filepath.Join(root, ".git", "d.tsv"))

	w := NewWalker([]string{"**/*.tsv"}, []string{"**/.git/**", ".git/**"})
	files, err := w.Walk(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "a.tsv"),
		filepath.Join(root, "b.tsv"),
		filepath.Join(root, "nested", "c.tsv"),
	}, paths(files))
}

func TestWalker_ResolveFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "corpus.txt")
	writeFile(t, file)

	w := NewWalker([]string{"**/*.tsv"}, nil)
	files, err := w.Resolve(file)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, file, files[0].Path)
	assert.Equal(t, int64(6), files[0].Size)
}

func TestWalker_ResolveMissing(t *testing.T) {
	w := NewWalker(nil, nil)
	_, err := w.Resolve(filepath.Join(t.TempDir(), "missing.tsv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnreadableSource))
}
