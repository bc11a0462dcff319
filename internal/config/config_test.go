package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Contains(t, cfg.Extensions, ".go")
	assert.Equal(t, 50, cfg.Chunker.WindowLines)
	assert.Equal(t, 10, cfg.Chunker.WindowOverlap)
	assert.Equal(t, 32, cfg.Indexer.BatchSize)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, 4000, cfg.Context.TokenBudget)
	assert.False(t, cfg.Watch.Enabled)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	body := `
extensions: [".go"]
indexer:
  workers: 8
watch:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{".go"}, cfg.Extensions)
	assert.Equal(t, 8, cfg.Indexer.Workers)
	assert.True(t, cfg.Watch.Enabled)
	// Unset values fall back to defaults.
	assert.Equal(t, 32, cfg.Indexer.BatchSize)
	assert.Equal(t, 50, cfg.Chunker.WindowLines)
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("extensions: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadProject_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadProject(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default().Extensions, cfg.Extensions)
}

func TestLoadProject_ReadsProjectFile(t *testing.T) {
	root := t.TempDir()
	body := "ignore:\n  - \"testdata/**\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(body), 0644))

	cfg, err := LoadProject(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"testdata/**"}, cfg.Ignore)
}
