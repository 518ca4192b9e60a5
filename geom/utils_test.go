package geom

import (
	"testing"
)

func TestTriangulate(t *testing.T) {
	tris := Triangulate([]*Vector3{
		{0, 0, 0},
		{0, 1, 0},
		{0, 1, 1},
	})
	if len(tris) != 1 || tris[0] != [3]int{0, 1, 2} {
		t.Error("triangle should be returned as is", tris)
	}

	tris2 := Triangulate([]*Vector3{
		{0, 0, 0},
		{1, 0, 0},
		{1, 1, 0},
		{0, 1, 0},
	})
	if len(tris2) != 2 {
		t.Error("quad should be split into 2 triangles", tris2)
	}
	for _, tri := range tris2 {
		n := FaceNormal(&Vector3{0, 0, 0}, &Vector3{1, 0, 0}, &Vector3{1, 1, 0})
		quad := []*Vector3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
		if FaceNormal(quad[tri[0]], quad[tri[1]], quad[tri[2]]).Dot(n) <= 0 {
			t.Error("winding changed", tri)
		}
	}

	// non-convex
	pentagon := []*Vector3{
		{0, 0, 0},
		{2, 0, 0},
		{2, 2, 0},
		{1, 0.5, 0},
		{0, 2, 0},
	}
	tris3 := Triangulate(pentagon)
	if len(tris3) != 3 {
		t.Error("pentagon should be split into 3 triangles", tris3)
	}
	var area float32
	for _, tri := range tris3 {
		n := FaceNormal(pentagon[tri[0]], pentagon[tri[1]], pentagon[tri[2]])
		if n.Z <= 0 {
			t.Error("winding changed", tri)
		}
		area += n.Len() / 2
	}
	if area != 2.5 {
		t.Error("triangles should cover the polygon exactly", area)
	}

	if len(Triangulate([]*Vector3{{0, 0, 0}, {1, 0, 0}})) != 0 {
		t.Error("degenerate polygon")
	}
}

func TestSmoothNormals(t *testing.T) {
	positions := []Vector3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {5, 5, 5}}
	normals := SmoothNormals(positions, []uint32{0, 1, 2})
	for i := 0; i < 3; i++ {
		if normals[i] != (Vector3{0, 0, 1}) {
			t.Error("unexpected normal", i, normals[i])
		}
	}
	if normals[3] != (Vector3{}) {
		t.Error("unreferenced vertex should have zero normal", normals[3])
	}
}
