package converter

import (
	"strings"
	"testing"

	"github.com/binzume/objconv/geom"
	"github.com/binzume/objconv/obj"
	"github.com/binzume/objconv/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cubeObj = `o Cube
v -1 -1 -1
v 1 -1 -1
v 1 1 -1
v -1 1 -1
v -1 -1 1
v 1 -1 1
v 1 1 1
v -1 1 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 -1
vn 0 0 1
vn 0 -1 0
vn 0 1 0
vn -1 0 0
vn 1 0 0
f 1/1/1 4/4/1 3/3/1 2/2/1
f 5/1/2 6/2/2 7/3/2 8/4/2
f 1/1/3 2/2/3 6/3/3 5/4/3
f 4/1/4 8/2/4 7/3/4 3/4/4
f 1/1/5 5/2/5 8/3/5 4/4/5
f 2/1/6 3/2/6 7/3/6 6/4/6
`

func triangleRecord() *obj.MeshRecord {
	return &obj.MeshRecord{
		Name:      "tri",
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:   []uint32{0, 1, 2},
	}
}

func parseRecords(t *testing.T, src string, single bool) []*obj.MeshRecord {
	t.Helper()
	res, err := obj.Load(strings.NewReader(src), "cube.obj", &obj.LoadOptions{SingleIndex: single})
	require.NoError(t, err)
	return res.Meshes
}

func TestAssembleTriangleWithoutAttributes(t *testing.T) {
	for _, mode := range []IndexMode{IndexModeSingle, IndexModeMulti} {
		t.Run(mode.String(), func(t *testing.T) {
			node, err := AssembleNode(triangleRecord(), &AssembleOptions{Mode: mode})
			require.NoError(t, err)
			assert.Equal(t, "tri", node.Name)
			assert.Nil(t, node.MaterialIndex)
			mesh := node.Geometry
			assert.Equal(t, []geom.Vector3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}}, mesh.Positions)
			assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices.ToU32())
			assert.Equal(t, scene.IndexU32, mesh.Indices.Format)
			assert.Nil(t, mesh.Normals)
			assert.Nil(t, mesh.UVs)
		})
	}
}

func TestAssembleModesAgree(t *testing.T) {
	single := parseRecords(t, cubeObj, true)
	multi := parseRecords(t, cubeObj, false)
	require.Len(t, single, 1)
	require.Len(t, multi, 1)
	assert.Less(t, len(single[0].Positions), len(multi[0].Positions), "single index mode shares vertices")

	a, err := AssembleNode(single[0], &AssembleOptions{Mode: IndexModeSingle})
	require.NoError(t, err)
	b, err := AssembleNode(multi[0], &AssembleOptions{Mode: IndexModeMulti})
	require.NoError(t, err)

	// 6 quads -> 12 triangles -> 36 corners
	assert.Len(t, a.Geometry.Positions, 36)
	assert.Equal(t, 36, a.Geometry.Indices.Len())
	assert.Len(t, b.Geometry.Positions, 36)
	assert.Equal(t, 36, b.Geometry.Indices.Len())
	for _, n := range []*scene.Node{a, b} {
		for i := 0; i < n.Geometry.Indices.Len(); i++ {
			assert.Less(t, int(n.Geometry.Indices.At(i)), n.Geometry.VertexCount())
		}
	}

	for i := 0; i < a.Geometry.Indices.Len(); i++ {
		ia, ib := a.Geometry.Indices.At(i), b.Geometry.Indices.At(i)
		assert.Equal(t, a.Geometry.Positions[ia], b.Geometry.Positions[ib], "slot %d", i)
		assert.Equal(t, a.Geometry.Normals[ia], b.Geometry.Normals[ib], "slot %d", i)
		assert.Equal(t, a.Geometry.UVs[ia], b.Geometry.UVs[ib], "slot %d", i)
	}
}

func TestAssembleSingleExpandsPerSlot(t *testing.T) {
	rec := &obj.MeshRecord{
		Name:      "quad",
		Positions: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		TexCoords: []float32{0, 0, 1, 0, 1, 1, 0, 1},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
	node, err := AssembleNode(rec, nil)
	require.NoError(t, err)
	mesh := node.Geometry
	assert.Len(t, mesh.Positions, 6)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, mesh.Indices.ToU32())
	assert.Equal(t, geom.Vector3{X: 1, Y: 1, Z: 0}, mesh.Positions[4])
	assert.Equal(t, geom.Vector2{X: 0, Y: 1}, mesh.UVs[5])
}

func TestAssembleSingleShortNormals(t *testing.T) {
	rec := triangleRecord()
	rec.Normals = []float32{0, 0, 1}
	node, err := AssembleNode(rec, &AssembleOptions{Mode: IndexModeSingle})
	require.NoError(t, err)
	assert.Equal(t, []geom.Vector3{{X: 0, Y: 0, Z: 1}, {}, {}}, node.Geometry.Normals)
}

func TestAssembleSingleFlatTexCoords(t *testing.T) {
	rec := triangleRecord()
	rec.TexCoords = []float32{0, 0, 1, 0}
	node, err := AssembleNode(rec, &AssembleOptions{Mode: IndexModeSingle})
	require.NoError(t, err)
	assert.Equal(t, []geom.Vector2{{X: 0, Y: 0}, {X: 1, Y: 0}}, node.Geometry.UVs)
}

func TestAssembleMultiDropsMisalignedArrays(t *testing.T) {
	rec := triangleRecord()
	rec.Normals = []float32{0, 0, 1, 0, 0, 1}
	rec.TexCoords = []float32{0, 0, 1, 0, 0, 1}
	node, err := AssembleNode(rec, &AssembleOptions{Mode: IndexModeMulti})
	require.NoError(t, err)
	assert.Nil(t, node.Geometry.Normals)
	assert.Len(t, node.Geometry.UVs, 3)
}

func TestAssembleGenerateNormals(t *testing.T) {
	for _, mode := range []IndexMode{IndexModeSingle, IndexModeMulti} {
		node, err := AssembleNode(triangleRecord(), &AssembleOptions{Mode: mode, GenerateNormals: true})
		require.NoError(t, err)
		require.Len(t, node.Geometry.Normals, 3, mode.String())
		for _, n := range node.Geometry.Normals {
			assert.InDelta(t, 1, n.Z, 1e-6, mode.String())
		}
	}

	rec := triangleRecord()
	rec.Normals = []float32{1, 0, 0, 1, 0, 0, 1, 0, 0}
	node, err := AssembleNode(rec, &AssembleOptions{Mode: IndexModeMulti, GenerateNormals: true})
	require.NoError(t, err)
	assert.Equal(t, geom.Vector3{X: 1}, node.Geometry.Normals[0], "existing normals are kept")
}

func TestAssembleIndex16(t *testing.T) {
	rec := triangleRecord()
	rec.Indices = nil
	rec.Indices16 = []uint16{0, 1, 2}
	node, err := AssembleNode(rec, &AssembleOptions{Mode: IndexModeMulti, Index16: true})
	require.NoError(t, err)
	assert.Equal(t, scene.IndexU16, node.Geometry.Indices.Format)
	assert.Equal(t, []uint16{0, 1, 2}, node.Geometry.Indices.U16)

	big := &obj.MeshRecord{Name: "big", Positions: make([]float32, 3*(0x10000+1)), Indices: []uint32{0, 1, 0x10000}}
	node, err = AssembleNode(big, &AssembleOptions{Mode: IndexModeMulti, Index16: true})
	require.NoError(t, err)
	assert.Equal(t, scene.IndexU32, node.Geometry.Indices.Format, "falls back to 32-bit")
	assert.Equal(t, uint32(0x10000), node.Geometry.Indices.At(2))
}

func TestAssembleInvalidMesh(t *testing.T) {
	rec := triangleRecord()
	rec.Indices = []uint32{0, 1, 3}
	_, err := AssembleNode(rec, nil)
	assert.ErrorIs(t, err, ErrInvalidMesh)

	rec = triangleRecord()
	rec.Positions = rec.Positions[:8]
	_, err = AssembleNode(rec, &AssembleOptions{Mode: IndexModeMulti})
	assert.ErrorIs(t, err, ErrInvalidMesh)
}

func TestLinkMaterial(t *testing.T) {
	materials := []*scene.PbrMaterial{{Name: "red"}, {Name: "blue"}}
	one, five := 1, 5

	got := linkMaterial(&obj.MeshRecord{MaterialID: &one, MaterialName: "red"}, materials)
	require.NotNil(t, got)
	assert.Equal(t, 1, *got, "positional index wins over name")

	assert.Nil(t, linkMaterial(&obj.MeshRecord{MaterialID: &five}, materials))
	assert.Nil(t, linkMaterial(&obj.MeshRecord{}, materials))
	assert.Nil(t, linkMaterial(&obj.MeshRecord{MaterialName: "green"}, materials))

	got = linkMaterial(&obj.MeshRecord{MaterialName: "blue"}, materials)
	require.NotNil(t, got)
	assert.Equal(t, 1, *got)
}
