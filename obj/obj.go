// Package obj parses Wavefront OBJ files (*.obj) and their material libraries (*.mtl)
// into flat mesh and material records.
package obj

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrSyntax is returned for malformed statements and undefined vertex references.
var ErrSyntax = errors.New("obj: syntax error")

// MeshRecord is one object/group of an .obj file using a single material.
type MeshRecord struct {
	Name      string
	Positions []float32 // xyz triples
	Normals   []float32 // xyz triples, empty if the file has no normals for this record
	TexCoords []float32 // uv pairs, empty if the file has no texcoords for this record
	Indices   []uint32
	Indices16 []uint16 // used instead of Indices when loaded with Index16

	// MaterialID indexes Result.Materials, nil if the record has no known material.
	MaterialID   *int
	MaterialName string
}

// IndexCount returns the number of index slots regardless of bit width.
func (m *MeshRecord) IndexCount() int {
	if m.Indices16 != nil {
		return len(m.Indices16)
	}
	return len(m.Indices)
}

// Index returns the i-th index widened to 32 bits.
func (m *MeshRecord) Index(i int) uint32 {
	if m.Indices16 != nil {
		return uint32(m.Indices16[i])
	}
	return m.Indices[i]
}

// MaterialRecord holds the non-PBR fields of a newmtl block.
type MaterialRecord struct {
	Name           string
	Ambient        [3]float32
	Diffuse        [3]float32
	Specular       [3]float32
	Emissive       [3]float32
	Shininess      float32
	Dissolve       float32
	OpticalDensity float32
	Illum          int

	AmbientTexture   string
	DiffuseTexture   string
	SpecularTexture  string
	NormalTexture    string
	ShininessTexture string
	DissolveTexture  string
	EmissiveTexture  string
}

func newMaterialRecord(name string) *MaterialRecord {
	return &MaterialRecord{Name: name, Dissolve: 1, OpticalDensity: 1}
}

// LoadOptions selects the output layout of mesh records.
type LoadOptions struct {
	// SingleIndex shares one vertex per distinct (v, vt, vn) corner.
	// Otherwise every face corner gets its own vertex.
	SingleIndex bool
	// Index16 stores indices in MeshRecord.Indices16 when the record has at most 65536 vertices.
	Index16 bool
	// Encoding is the text encoding name of the .obj and .mtl files ("" means utf-8).
	Encoding string
}

// Result of parsing an .obj file.
type Result struct {
	Meshes    []*MeshRecord
	Materials []*MaterialRecord
	// MaterialErr is set when a material library could not be read or parsed.
	// Meshes are still valid in that case.
	MaterialErr error
}

// Load parses an .obj file. Material libraries are opened relative to path.
func Load(r io.Reader, path string, opts *LoadOptions) (*Result, error) {
	return NewParser(path, opts).Parse(r)
}

// LoadFile opens and parses an .obj file.
func LoadFile(path string, opts *LoadOptions) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, path, opts)
}

// SplitPath splits a file reference on both slash conventions, dropping empty segments.
func SplitPath(ref string) []string {
	return strings.FieldsFunc(ref, func(r rune) bool { return r == '/' || r == '\\' })
}

// ResolvePath joins a file reference found in an .obj/.mtl file onto dir.
func ResolvePath(dir, ref string) string {
	return filepath.Join(append([]string{dir}, SplitPath(ref)...)...)
}
