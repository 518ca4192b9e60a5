package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, IndexModeSingle, cfg.Import.IndexMode)
	assert.Equal(t, 32, cfg.Import.IndexWidth)
	assert.False(t, cfg.Import.GenerateNormals)
	assert.Equal(t, "utf-8", cfg.Import.Encoding)
	assert.Equal(t, float32(1.0), cfg.Export.TextureScale)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "objconv.yaml", `
import:
  index_mode: multi
  index_width: 16
  generate_normals: true
export:
  texture_resolution_limit: 1024
logging:
  level: debug
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, IndexModeMulti, cfg.Import.IndexMode)
	assert.Equal(t, 16, cfg.Import.IndexWidth)
	assert.True(t, cfg.Import.GenerateNormals)
	assert.Equal(t, "utf-8", cfg.Import.Encoding, "unset keys keep defaults")
	assert.Equal(t, 1024, cfg.Export.TextureResolutionLimit)
	assert.Equal(t, float32(1.0), cfg.Export.TextureScale)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "objconv.toml", `
[import]
encoding = "shift_jis"

[export]
force_unlit = true
texture_scale = 0.5
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "shift_jis", cfg.Import.Encoding)
	assert.Equal(t, IndexModeSingle, cfg.Import.IndexMode)
	assert.True(t, cfg.Export.ForceUnlit)
	assert.Equal(t, float32(0.5), cfg.Export.TextureScale)
}

func TestLoadInvalid(t *testing.T) {
	_, err := LoadFile(writeFile(t, "bad.yaml", "import:\n  index_width: 8\n"))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "bad.yaml", "import:\n  index_mode: both\n"))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "objconv.json", "{}"))
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
