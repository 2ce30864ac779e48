package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graphword.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadKeepsDefaultsForOmittedFields(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
builder:
  max_word_length: 9
  pace: 250ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 9, cfg.Builder.MaxWordLength)
	assert.Equal(t, 3, cfg.Builder.MinWordLength)
	assert.Equal(t, 250*time.Millisecond, cfg.Builder.Pace)
	assert.Equal(t, "datamart_graph/word_graph.txt", cfg.Graph.Path)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
graph:
  paht: typo.txt
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paht")
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("GRAPHWORD_DATA", "/srv/graphword")
	path := writeConfig(t, `
graph:
  path: ${GRAPHWORD_DATA}/word_graph.txt
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/graphword/word_graph.txt", cfg.Graph.Path)
}

func TestLoadValidates(t *testing.T) {
	path := writeConfig(t, `
builder:
  min_word_length: 6
  max_word_length: 4
`)
	_, err := Load(path)
	require.Error(t, err)

	path = writeConfig(t, `
log:
  format: xml
`)
	_, err = Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
