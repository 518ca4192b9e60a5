package converter

import (
	"bytes"
	"io"
	"path/filepath"

	"github.com/binzume/objconv/assets"
	"github.com/binzume/objconv/logger"
	"github.com/binzume/objconv/obj"
	"github.com/binzume/objconv/scene"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type OBJToSceneOption struct {
	IndexMode       IndexMode
	Index16         bool
	GenerateNormals bool
	Encoding        string // text encoding of .obj/.mtl, "" for utf-8
}

type objToScene struct {
	*OBJToSceneOption
	store *assets.Store
}

// NewOBJToSceneConverter returns a converter reading files and textures through store.
func NewOBJToSceneConverter(store *assets.Store, options *OBJToSceneOption) *objToScene {
	if options == nil {
		options = &OBJToSceneOption{}
	}
	if store == nil {
		store = assets.NewStore("")
	}
	return &objToScene{OBJToSceneOption: options, store: store}
}

func (c *objToScene) loadOptions() *obj.LoadOptions {
	return &obj.LoadOptions{
		SingleIndex: c.IndexMode == IndexModeSingle,
		Index16:     c.Index16,
		Encoding:    c.Encoding,
	}
}

func (c *objToScene) assembleOptions() *AssembleOptions {
	return &AssembleOptions{
		Mode:            c.IndexMode,
		Index16:         c.Index16,
		GenerateNormals: c.GenerateNormals,
	}
}

// openFunc reads side files (material libraries) from the store, falling back to disk.
func (c *objToScene) openFunc(dir string) func(name string) (io.ReadCloser, error) {
	return func(name string) (io.ReadCloser, error) {
		path := obj.ResolvePath(dir, name)
		data, ok := c.store.Get(path)
		if !ok {
			var err error
			if data, err = c.store.ReadFile(path); err != nil {
				return nil, err
			}
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
}

// Import loads an .obj file and converts it into a scene named after path.
// Only an unreadable or unparsable primary file is fatal.
func (c *objToScene) Import(path string) (*scene.Scene, error) {
	data, err := c.store.Remove(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	dir := filepath.Dir(path)
	p := obj.NewParser(path, c.loadOptions())
	p.Open = c.openFunc(dir)
	res, err := p.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return c.Convert(path, res, dir)
}

// Convert builds a scene from parsed records. Texture references are resolved against baseDir.
func (c *objToScene) Convert(name string, res *obj.Result, baseDir string) (*scene.Scene, error) {
	if res.MaterialErr != nil {
		logger.Warn("materials not loaded", zap.String("scene", name), zap.Error(res.MaterialErr))
	}

	textures := NewTextureResolver(c.store, baseDir)
	materials := make([]*scene.PbrMaterial, 0, len(res.Materials))
	for _, rec := range res.Materials {
		materials = append(materials, SynthesizeMaterial(rec, textures))
	}

	opts := c.assembleOptions()
	nodes := make([]*scene.Node, 0, len(res.Meshes))
	for _, rec := range res.Meshes {
		node, err := AssembleNode(rec, opts)
		if err != nil {
			return nil, err
		}
		node.MaterialIndex = linkMaterial(rec, materials)
		nodes = append(nodes, node)
	}

	logger.Info("imported", zap.String("scene", name), zap.Int("nodes", len(nodes)),
		zap.Int("materials", len(materials)), zap.Stringer("indexMode", c.IndexMode))
	return &scene.Scene{Name: name, Nodes: nodes, Materials: materials}, nil
}
