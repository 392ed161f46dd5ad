package usecase

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tfidx/config"
	"tfidx/internal/adapter/analyzer"
	"tfidx/internal/adapter/fs"
)

const workedCorpus = "id0\tCats\tcat dog cat\n" +
	"id1\tDogs and birds\tdog bird\n" +
	"id2\tBirds\tcat bird bird\n"

func writeCorpus(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "")), 0644))
	return path
}

func newBuildUseCase(cfg *config.Config) *BuildUseCase {
	return NewBuildUseCase(
		fs.NewWalker(cfg.Index.Includes, cfg.Index.Excludes),
		analyzer.NewTokenizer(cfg.Index.Delimiters),
		cfg.Index,
		nil,
	)
}
