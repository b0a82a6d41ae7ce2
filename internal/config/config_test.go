package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: sqlite\ndefault_bucket: idea\n"), 0644)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "idea", cfg.DefaultBucket)
	assert.Equal(t, DefaultSlot, cfg.Slot, "unset keys keep their defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{{bad yaml"), 0644)

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: sqlite\n"), 0644)
	t.Setenv("KANBAN_BACKEND", "markdown")
	t.Setenv("KANBAN_DEFAULT_BUCKET", "inbox")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "markdown", cfg.Backend)
	assert.Equal(t, "inbox", cfg.DefaultBucket)
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.DefaultBucket = "in_progress"
	cfg.Backend = "markdown"

	require.NoError(t, Save(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSave_CreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "subdir")

	require.NoError(t, Save(dir, Default()))
	_, err := os.Stat(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err)
}

func TestSetGet(t *testing.T) {
	cfg := Default()
	for _, tt := range []struct{ key, value string }{
		{"backend", "sqlite"},
		{"slot", "work"},
		{"default_bucket", "inbox"},
		{"log_level", "debug"},
		{"listen", ":8080"},
	} {
		require.NoError(t, cfg.Set(tt.key, tt.value), tt.key)
		got, err := cfg.Get(tt.key)
		require.NoError(t, err)
		assert.Equal(t, tt.value, got)
	}
}

func TestSet_Rejects(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Set("backend", "postgres"))
	assert.Error(t, cfg.Set("slot", "../escape"))
	assert.Error(t, cfg.Set("colour", "blue"))
	_, err := cfg.Get("colour")
	assert.Error(t, err)
	assert.Equal(t, "json", cfg.Backend)
}
