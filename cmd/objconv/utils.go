package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/binzume/objconv/assets"
	"github.com/binzume/objconv/config"
	"github.com/binzume/objconv/converter"
	"github.com/binzume/objconv/scene"
)

func importOptions(cfg *config.Config) *converter.OBJToSceneOption {
	mode := converter.IndexModeSingle
	if cfg.Import.IndexMode == config.IndexModeMulti {
		mode = converter.IndexModeMulti
	}
	return &converter.OBJToSceneOption{
		IndexMode:       mode,
		Index16:         cfg.Import.IndexWidth == 16,
		GenerateNormals: cfg.Import.GenerateNormals,
		Encoding:        cfg.Import.Encoding,
	}
}

func loadScene(input string, cfg *config.Config) (*scene.Scene, error) {
	if ext := strings.ToLower(filepath.Ext(input)); ext != ".obj" {
		return nil, fmt.Errorf("unsupported input type: %v", ext)
	}
	return converter.NewOBJToSceneConverter(assets.NewStore(""), importOptions(cfg)).Import(input)
}

func saveScene(s *scene.Scene, output string, cfg *config.Config) error {
	ext := strings.ToLower(filepath.Ext(output))
	if ext != ".glb" {
		return fmt.Errorf("unsupported output type: %v", ext)
	}
	return converter.SaveGLB(s, output, &converter.SceneToGLTFOption{
		ForceUnlit:             cfg.Export.ForceUnlit,
		TextureScale:           cfg.Export.TextureScale,
		TextureResolutionLimit: cfg.Export.TextureResolutionLimit,
		WebPTextures:           cfg.Export.WebPTextures,
	})
}
