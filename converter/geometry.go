package converter

import (
	"github.com/binzume/objconv/geom"
	"github.com/binzume/objconv/logger"
	"github.com/binzume/objconv/obj"
	"github.com/binzume/objconv/scene"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrInvalidMesh is returned for mesh records that break buffer invariants.
var ErrInvalidMesh = errors.New("converter: invalid mesh")

// IndexMode is the layout the parser produced mesh records in.
type IndexMode int

const (
	// IndexModeSingle records share vertices between index slots.
	IndexModeSingle IndexMode = iota
	// IndexModeMulti records carry aligned per-vertex arrays read straight through.
	IndexModeMulti
)

func (m IndexMode) String() string {
	if m == IndexModeMulti {
		return "multi"
	}
	return "single"
}

type AssembleOptions struct {
	Mode IndexMode
	// Index16 emits 16-bit index buffers when every index fits.
	Index16 bool
	// GenerateNormals fills a missing normal buffer with smooth normals.
	GenerateNormals bool
}

func readVec3(src []float32) []geom.Vector3 {
	dst := make([]geom.Vector3, len(src)/3)
	for i := range dst {
		dst[i] = *geom.NewVector3FromSlice(src[i*3:])
	}
	return dst
}

func readVec2(src []float32) []geom.Vector2 {
	dst := make([]geom.Vector2, len(src)/2)
	for i := range dst {
		dst[i] = geom.Vector2{X: src[i*2], Y: src[i*2+1]}
	}
	return dst
}

func validateRecord(rec *obj.MeshRecord) error {
	if len(rec.Positions)%3 != 0 {
		return errors.Wrapf(ErrInvalidMesh, "%s: position array length %d is not a multiple of 3", rec.Name, len(rec.Positions))
	}
	vertexCount := uint32(len(rec.Positions) / 3)
	for i, n := 0, rec.IndexCount(); i < n; i++ {
		if v := rec.Index(i); v >= vertexCount {
			return errors.Wrapf(ErrInvalidMesh, "%s: index %d at slot %d out of range (%d vertices)", rec.Name, v, i, vertexCount)
		}
	}
	return nil
}

// AssembleNode converts a mesh record into a node with typed vertex and index buffers.
// The material link is left unset.
func AssembleNode(rec *obj.MeshRecord, opts *AssembleOptions) (*scene.Node, error) {
	if opts == nil {
		opts = &AssembleOptions{}
	}
	if err := validateRecord(rec); err != nil {
		return nil, err
	}

	var mesh *scene.TriMesh
	var indices []uint32
	if opts.Mode == IndexModeMulti {
		mesh, indices = assembleMulti(rec, opts)
	} else {
		mesh, indices = assembleSingle(rec, opts)
	}

	if opts.Index16 && len(mesh.Positions) <= 0x10000 {
		ind := make([]uint16, len(indices))
		for i, v := range indices {
			ind[i] = uint16(v)
		}
		mesh.Indices = scene.NewIndicesU16(ind)
	} else {
		if opts.Index16 {
			logger.Warn("too many vertices for 16-bit indices", zap.String("mesh", rec.Name), zap.Int("vertices", len(mesh.Positions)))
		}
		mesh.Indices = scene.NewIndicesU32(indices)
	}
	return &scene.Node{Name: rec.Name, Geometry: mesh}, nil
}

// assembleMulti reads aligned arrays straight through and copies indices.
func assembleMulti(rec *obj.MeshRecord, opts *AssembleOptions) (*scene.TriMesh, []uint32) {
	mesh := &scene.TriMesh{Positions: readVec3(rec.Positions)}
	vertexCount := len(mesh.Positions)

	if len(rec.Normals) > 0 {
		if len(rec.Normals)/3 == vertexCount {
			mesh.Normals = readVec3(rec.Normals)
		} else {
			logger.Warn("normal array does not match positions, dropped", zap.String("mesh", rec.Name),
				zap.Int("normals", len(rec.Normals)/3), zap.Int("vertices", vertexCount))
		}
	}
	if len(rec.TexCoords) > 0 {
		if len(rec.TexCoords)/2 == vertexCount {
			mesh.UVs = readVec2(rec.TexCoords)
		} else {
			logger.Warn("texcoord array does not match positions, dropped", zap.String("mesh", rec.Name),
				zap.Int("texcoords", len(rec.TexCoords)/2), zap.Int("vertices", vertexCount))
		}
	}

	indices := make([]uint32, rec.IndexCount())
	for i := range indices {
		indices[i] = rec.Index(i)
	}
	if mesh.Normals == nil && opts.GenerateNormals {
		mesh.Normals = geom.SmoothNormals(mesh.Positions, indices)
	}
	return mesh, indices
}

// assembleSingle emits one vertex per index slot. Normals missing for a slot become zero.
func assembleSingle(rec *obj.MeshRecord, opts *AssembleOptions) (*scene.TriMesh, []uint32) {
	n := rec.IndexCount()
	srcVertexCount := len(rec.Positions) / 3
	mesh := &scene.TriMesh{Positions: make([]geom.Vector3, n)}
	indices := make([]uint32, n)

	var normals []float32
	if len(rec.Normals) > 0 {
		normals = rec.Normals
	} else if opts.GenerateNormals {
		src := make([]uint32, n)
		for i := range src {
			src[i] = rec.Index(i)
		}
		for _, v := range geom.SmoothNormals(readVec3(rec.Positions), src) {
			normals = append(normals, v.X, v.Y, v.Z)
		}
	}
	if normals != nil {
		mesh.Normals = make([]geom.Vector3, n)
	}

	// texcoords aligned with the shared vertices are gathered like normals.
	gatherUV := len(rec.TexCoords) > 0 && len(rec.TexCoords)/2 == srcVertexCount
	if gatherUV {
		mesh.UVs = make([]geom.Vector2, n)
	} else if len(rec.TexCoords) > 0 {
		mesh.UVs = readVec2(rec.TexCoords)
	}

	for k := 0; k < n; k++ {
		i := int(rec.Index(k))
		mesh.Positions[k] = *geom.NewVector3FromSlice(rec.Positions[i*3:])
		if mesh.Normals != nil && i*3+2 < len(normals) {
			mesh.Normals[k] = *geom.NewVector3FromSlice(normals[i*3:])
		}
		if gatherUV {
			mesh.UVs[k] = geom.Vector2{X: rec.TexCoords[i*2], Y: rec.TexCoords[i*2+1]}
		}
		indices[k] = uint32(k)
	}
	return mesh, indices
}

// linkMaterial resolves the material of a record. The positional index wins;
// the name is only used when the record carries no index.
func linkMaterial(rec *obj.MeshRecord, materials []*scene.PbrMaterial) *int {
	if rec.MaterialID != nil {
		id := *rec.MaterialID
		if id >= 0 && id < len(materials) {
			return &id
		}
		logger.Warn("material index out of range", zap.String("mesh", rec.Name), zap.Int("index", id), zap.Int("materials", len(materials)))
		return nil
	}
	if rec.MaterialName == "" {
		return nil
	}
	for i, m := range materials {
		if m.Name == rec.MaterialName {
			i := i
			return &i
		}
	}
	return nil
}
