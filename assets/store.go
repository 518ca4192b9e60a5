// Package assets is a keyed byte store that also decodes registered image
// payloads into textures.
package assets

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/binzume/objconv/logger"
	"github.com/binzume/objconv/scene"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrNotFound          = errors.New("assets: not found")
	ErrUnsupportedFormat = errors.New("assets: unsupported format")
)

// Stats counts store activity.
type Stats struct {
	Hits    int // Get/Remove served from memory
	Misses  int
	Reads   int // files read from disk
	Decodes int // successful texture decodes
}

// Store maps keys to raw bytes and decoded textures. It is safe for concurrent use.
type Store struct {
	root string

	mu       sync.RWMutex
	data     map[string][]byte
	textures map[string]*scene.Texture2D
	failed   map[string]error
	stats    Stats
}

// NewStore creates a store. Relative paths passed to ReadFile and Remove are
// resolved against root.
func NewStore(root string) *Store {
	return &Store{
		root:     root,
		data:     map[string][]byte{},
		textures: map[string]*scene.Texture2D{},
		failed:   map[string]error{},
	}
}

func (s *Store) path(p string) string {
	if s.root == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.root, p)
}

// Insert registers bytes under key. Any texture decoded from a previous payload is dropped.
func (s *Store) Insert(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = data
	delete(s.textures, key)
	delete(s.failed, key)
}

// Has reports whether bytes are registered under key.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}

// Get returns the bytes registered under key.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[key]
	if ok {
		s.stats.Hits++
	} else {
		s.stats.Misses++
	}
	return data, ok
}

// ReadFile reads a file from disk without registering it.
func (s *Store) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(s.path(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrNotFound, err.Error())
		}
		return nil, err
	}
	s.mu.Lock()
	s.stats.Reads++
	s.mu.Unlock()
	return data, nil
}

// Remove takes the bytes registered under path out of the store. If nothing is
// registered the file is read from disk instead.
func (s *Store) Remove(path string) ([]byte, error) {
	s.mu.Lock()
	data, ok := s.data[path]
	if ok {
		delete(s.data, path)
		delete(s.textures, path)
		delete(s.failed, path)
		s.stats.Hits++
	} else {
		s.stats.Misses++
	}
	s.mu.Unlock()
	if ok {
		return data, nil
	}
	return s.ReadFile(path)
}

// Deserialize decodes the bytes registered under key into a texture.
// Results, including failures, are cached per key until the key is re-inserted.
func (s *Store) Deserialize(key string) (*scene.Texture2D, error) {
	s.mu.RLock()
	tex, done := s.textures[key]
	failErr := s.failed[key]
	data, ok := s.data[key]
	s.mu.RUnlock()
	if done {
		return tex, nil
	}
	if failErr != nil {
		return nil, failErr
	}
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "key %q", key)
	}

	tex, err := DecodeTexture(key, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failed[key] = err
		return nil, err
	}
	if cur, exists := s.textures[key]; exists {
		return cur, nil
	}
	s.textures[key] = tex
	s.stats.Decodes++
	logger.Debug("texture decoded", zap.String("key", key), zap.String("mime", tex.MIME),
		zap.Int("width", tex.Width), zap.Int("height", tex.Height))
	return tex, nil
}

// Stats returns a snapshot of the counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Len returns the number of registered keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Clear drops all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = map[string][]byte{}
	s.textures = map[string]*scene.Texture2D{}
	s.failed = map[string]error{}
	s.stats = Stats{}
}
