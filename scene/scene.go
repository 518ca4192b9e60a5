// Package scene defines the renderer-ready scene graph produced by importers.
package scene

import (
	"image"

	"github.com/binzume/objconv/geom"
	"github.com/google/uuid"
)

// Scene is the result of a single import. Nodes keep the source mesh order and
// Materials keep the source material order.
type Scene struct {
	Name      string
	Nodes     []*Node
	Materials []*PbrMaterial
}

// Node is a named scene element that may carry geometry and a material link.
type Node struct {
	Name     string
	Geometry *TriMesh
	// MaterialIndex indexes Scene.Materials. nil if unlinked.
	MaterialIndex *int
}

// TriMesh is an indexed triangle list.
type TriMesh struct {
	Positions []geom.Vector3
	Normals   []geom.Vector3 // nil if absent
	UVs       []geom.Vector2 // nil if absent
	Indices   Indices
}

// VertexCount returns the number of entries in the position buffer.
func (m *TriMesh) VertexCount() int {
	return len(m.Positions)
}

type IndexFormat int

const (
	IndexU32 IndexFormat = iota
	IndexU16
)

func (f IndexFormat) String() string {
	if f == IndexU16 {
		return "u16"
	}
	return "u32"
}

// Indices is an index buffer. Only the slice matching Format is set.
type Indices struct {
	Format IndexFormat
	U16    []uint16
	U32    []uint32
}

func NewIndicesU32(v []uint32) Indices {
	return Indices{Format: IndexU32, U32: v}
}

func NewIndicesU16(v []uint16) Indices {
	return Indices{Format: IndexU16, U16: v}
}

func (ind *Indices) Len() int {
	if ind.Format == IndexU16 {
		return len(ind.U16)
	}
	return len(ind.U32)
}

func (ind *Indices) At(i int) uint32 {
	if ind.Format == IndexU16 {
		return uint32(ind.U16[i])
	}
	return ind.U32[i]
}

// ToU32 returns the indices widened to 32 bits.
func (ind *Indices) ToU32() []uint32 {
	if ind.Format == IndexU32 {
		return ind.U32
	}
	dst := make([]uint32, len(ind.U16))
	for i, v := range ind.U16 {
		dst[i] = uint32(v)
	}
	return dst
}

// Color is a linear RGBA color.
type Color struct {
	R, G, B, A float32
}

func NewColorFromRGBASlice(v []float32) Color {
	return Color{R: v[0], G: v[1], B: v[2], A: v[3]}
}

func (c Color) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// LightingModel tells the renderer how to interpret a material.
type LightingModel int

const (
	LightingCookTorrance LightingModel = iota
	// LightingBlinn marks PBR fields derived from a legacy Blinn-Phong material.
	LightingBlinn
)

func (m LightingModel) String() string {
	switch m {
	case LightingBlinn:
		return "blinn"
	default:
		return "cook-torrance"
	}
}

// Texture2D is a decoded texture owned by an asset store.
type Texture2D struct {
	ID     uuid.UUID
	Key    string
	MIME   string
	Width  int
	Height int
	Image  *image.NRGBA
}

type PbrMaterial struct {
	Name                     string
	Albedo                   Color
	AlbedoTexture            *Texture2D
	Metallic                 float32
	Roughness                float32
	MetallicRoughnessTexture *Texture2D
	NormalTexture            *Texture2D
	Emissive                 Color
	AlphaBlend               bool
	LightingModel            LightingModel
}
