package scene

import (
	"bytes"
	"testing"

	"github.com/binzume/objconv/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScene() *Scene {
	mat := 0
	return &Scene{
		Name:      "test.obj",
		Materials: []*PbrMaterial{{Name: "red", Albedo: Color{R: 1, A: 1}, Roughness: 0.5, LightingModel: LightingBlinn}},
		Nodes: []*Node{
			{
				Name: "tri",
				Geometry: &TriMesh{
					Positions: []geom.Vector3{{X: 0}, {X: 1}, {Y: 1}},
					Indices:   NewIndicesU16([]uint16{0, 1, 2}),
				},
				MaterialIndex: &mat,
			},
			{Name: "empty"},
		},
	}
}

func TestIndices(t *testing.T) {
	ind := NewIndicesU16([]uint16{3, 2, 1})
	assert.Equal(t, 3, ind.Len())
	assert.Equal(t, uint32(2), ind.At(1))
	assert.Equal(t, []uint32{3, 2, 1}, ind.ToU32())
	assert.Equal(t, "u16", ind.Format.String())

	ind = NewIndicesU32([]uint32{7})
	assert.Equal(t, uint32(7), ind.At(0))
	assert.Equal(t, "u32", ind.Format.String())
}

func TestTransform(t *testing.T) {
	s := testScene()
	s.Transform(func(v *geom.Vector3) { v.X *= 2 })
	assert.Equal(t, geom.Vector3{X: 2}, s.Nodes[0].Geometry.Positions[1])
}

func TestRemoveNodes(t *testing.T) {
	s := testScene()
	assert.Equal(t, 1, s.RemoveNodes("empty", "unknown"))
	require.Len(t, s.Nodes, 1)
	assert.Equal(t, "tri", s.Nodes[0].Name)
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, testScene()))
	out := buf.String()
	assert.Contains(t, out, `scene "test.obj": 2 nodes, 1 materials`)
	assert.Contains(t, out, `material[0] "red"`)
	assert.Contains(t, out, "blinn")
	assert.Contains(t, out, `node[0] "tri" vertices=3 indices=3(u16)`)
	assert.Contains(t, out, "material=0")
	assert.Contains(t, out, `node[1] "empty"`)
}
