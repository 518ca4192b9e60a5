package converter

import (
	"github.com/binzume/objconv/logger"
	"github.com/binzume/objconv/obj"
	"github.com/binzume/objconv/scene"
	"go.uber.org/zap"
)

// TextureStore is the part of assets.Store used by TextureResolver.
type TextureStore interface {
	Has(key string) bool
	Insert(key string, data []byte)
	ReadFile(path string) ([]byte, error)
	Deserialize(key string) (*scene.Texture2D, error)
}

// TextureResolver turns texture references of a material library into decoded textures.
// References are resolved against the directory of the source file and registered in
// the store under the reference string itself.
type TextureResolver struct {
	store   TextureStore
	baseDir string
	failed  map[string]bool
}

func NewTextureResolver(store TextureStore, baseDir string) *TextureResolver {
	return &TextureResolver{store: store, baseDir: baseDir, failed: map[string]bool{}}
}

// Resolve returns nil for an empty reference and for files that cannot be read or decoded.
func (r *TextureResolver) Resolve(ref string) *scene.Texture2D {
	if ref == "" || r.failed[ref] {
		return nil
	}
	if !r.store.Has(ref) {
		path := obj.ResolvePath(r.baseDir, ref)
		data, err := r.store.ReadFile(path)
		if err != nil {
			logger.Warn("texture not found", zap.String("ref", ref), zap.String("path", path), zap.Error(err))
			r.failed[ref] = true
			return nil
		}
		r.store.Insert(ref, data)
	}
	tex, err := r.store.Deserialize(ref)
	if err != nil {
		logger.Warn("texture decode error", zap.String("ref", ref), zap.Error(err))
		r.failed[ref] = true
		return nil
	}
	return tex
}
