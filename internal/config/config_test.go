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
	assert.Equal(t, 25565, cfg.Port)
	assert.Equal(t, 256, cfg.CompressThreshold)
	assert.Equal(t, 24, cfg.SectionCount())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 25575\nmax_view_distance: 16\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25575, cfg.Port)
	assert.Equal(t, int32(16), cfg.MaxViewDistance)
	assert.Equal(t, Default().Motd, cfg.Motd)
}

func TestSectionCount_MinimumOne(t *testing.T) {
	cfg := Default()
	cfg.DefaultDimHeight = 0
	assert.Equal(t, 1, cfg.SectionCount())
}
