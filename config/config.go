// Package config holds import/export settings for objconv.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

const (
	IndexModeSingle = "single"
	IndexModeMulti  = "multi"
)

type Config struct {
	Import  ImportConfig  `yaml:"import" toml:"import"`
	Export  ExportConfig  `yaml:"export" toml:"export"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// ImportConfig controls how .obj files are parsed and assembled.
type ImportConfig struct {
	IndexMode       string `yaml:"index_mode" toml:"index_mode"`   // "single" or "multi"
	IndexWidth      int    `yaml:"index_width" toml:"index_width"` // 16 or 32
	GenerateNormals bool   `yaml:"generate_normals" toml:"generate_normals"`
	Encoding        string `yaml:"encoding" toml:"encoding"` // text encoding of .obj/.mtl
}

// ExportConfig controls the .glb writer of the CLI.
type ExportConfig struct {
	ForceUnlit             bool    `yaml:"force_unlit" toml:"force_unlit"`
	TextureScale           float32 `yaml:"texture_scale" toml:"texture_scale"`
	TextureResolutionLimit int     `yaml:"texture_resolution_limit" toml:"texture_resolution_limit"` // 0: unlimited
	WebPTextures           bool    `yaml:"webp_textures" toml:"webp_textures"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
	File  string `yaml:"file" toml:"file"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			IndexMode:  IndexModeSingle,
			IndexWidth: 32,
			Encoding:   "utf-8",
		},
		Export: ExportConfig{
			TextureScale: 1.0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFile reads a YAML or TOML file over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config type: %v", filepath.Ext(path))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Import.IndexMode {
	case IndexModeSingle, IndexModeMulti:
	default:
		return fmt.Errorf("invalid index_mode: %q", c.Import.IndexMode)
	}
	if c.Import.IndexWidth != 16 && c.Import.IndexWidth != 32 {
		return fmt.Errorf("invalid index_width: %d", c.Import.IndexWidth)
	}
	if c.Export.TextureScale <= 0 {
		return fmt.Errorf("invalid texture_scale: %v", c.Export.TextureScale)
	}
	return nil
}
