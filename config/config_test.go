package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Index.Delimiters != DefaultDelimiters {
		t.Errorf("expected default delimiters, got %q", cfg.Index.Delimiters)
	}
	if cfg.Index.FieldSeparator != "\t" {
		t.Errorf("expected tab field separator, got %q", cfg.Index.FieldSeparator)
	}
	if cfg.Index.ProgressEvery != 10000 {
		t.Errorf("expected ProgressEvery=10000, got %d", cfg.Index.ProgressEvery)
	}
	if cfg.Serve.TopK != 3 {
		t.Errorf("expected TopK=3, got %d", cfg.Serve.TopK)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tfidx.yaml")

	content := `
index:
  delimiters: " ,."
  progress_every: 500
serve:
  top_k: 10
  cache_ttl: 30s
logging:
  format: json
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, " ,.", cfg.Index.Delimiters)
	assert.Equal(t, 500, cfg.Index.ProgressEvery)
	assert.Equal(t, "\t", cfg.Index.FieldSeparator, "unset keys keep defaults")
	assert.Equal(t, 10, cfg.Serve.TopK)
	assert.Equal(t, 30*time.Second, cfg.Serve.CacheTTL)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty delimiters", "index:\n  delimiters: \"\"\n"},
		{"long separator", "index:\n  field_separator: \"||\"\n"},
		{"zero top_k", "serve:\n  top_k: 0\n"},
		{"zero progress", "index:\n  progress_every: 0\n"},
		{"negative cache", "serve:\n  cache_size: -1\n"},
		{"bad yaml", "index: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tfidx.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, ".tfidx"), 0755))

	content := `
serve:
  top_k: 7
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".tfidx", "config.yaml"), []byte(content), 0644))

	cfg, err := LoadFromDir(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Serve.TopK)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tfidx.yaml")
	cfg := DefaultConfig()
	cfg.Serve.TopK = 5
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSnapshotPath(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "corpus.tsv")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	assert.Equal(t, filepath.Join(tmpDir, "_index.db"), SnapshotPath(file, "_index.db"))
	assert.Equal(t, filepath.Join(tmpDir, "_index.db"), SnapshotPath(tmpDir, "_index.db"))
}
