package geom

// IsInTriangle reports whether p lies strictly inside triangle abc.
func IsInTriangle(p, a, b, c *Vector3) bool {
	ab, bc, ca := b.Sub(a), c.Sub(b), a.Sub(c)
	c1, c2, c3 := ab.Cross(p.Sub(a)), bc.Cross(p.Sub(b)), ca.Cross(p.Sub(c))
	return c1.Dot(c2) > 0 && c2.Dot(c3) > 0 && c3.Dot(c1) > 0
}

// FaceNormal returns the unnormalized normal of triangle abc (counter-clockwise winding).
// Its length is twice the triangle area.
func FaceNormal(a, b, c *Vector3) *Vector3 {
	return b.Sub(a).Cross(c.Sub(a))
}

// PolygonNormal returns the Newell normal of a polygon.
func PolygonNormal(poly []*Vector3) *Vector3 {
	n := &Vector3{}
	for i := range poly {
		v0 := poly[(i+len(poly)-1)%len(poly)]
		v1 := poly[i]
		v2 := poly[(i+1)%len(poly)]
		n = n.Add(v2.Sub(v1).Cross(v0.Sub(v1)))
	}
	return n.Normalize()
}

// Triangulate splits a simple polygon into triangles by ear clipping.
// Returned triples index into poly and keep the polygon winding.
// Self-intersecting input falls back to a fan over the remaining corners.
func Triangulate(poly []*Vector3) [][3]int {
	var dst [][3]int
	if len(poly) < 3 {
		return dst
	}
	if len(poly) == 3 {
		return append(dst, [3]int{0, 1, 2})
	}
	n := PolygonNormal(poly)

	ii := make([]int, len(poly))
	for i := range poly {
		ii[i] = i
	}

	// O(N*N)
	for len(ii) >= 3 {
		count := len(ii)
		clipped := false
		for i := 0; i < count; i++ {
			i0, i1, i2 := ii[(i+count-1)%count], ii[i], ii[(i+1)%count]
			v0, v1, v2 := poly[i0], poly[i1], poly[i2]
			if FaceNormal(v0, v1, v2).Dot(n) < 0 {
				continue // reflex corner
			}
			ear := true
			for _, j := range ii {
				if j != i0 && j != i1 && j != i2 && IsInTriangle(poly[j], v0, v1, v2) {
					ear = false
					break
				}
			}
			if !ear {
				continue
			}
			dst = append(dst, [3]int{i0, i1, i2})
			ii = append(ii[:i:i], ii[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			for k := 1; k < len(ii)-1; k++ {
				dst = append(dst, [3]int{ii[0], ii[k], ii[k+1]})
			}
			break
		}
	}
	return dst
}

// SmoothNormals computes area weighted vertex normals for an indexed triangle list.
// Vertices not referenced by any triangle get (0,0,0).
func SmoothNormals(positions []Vector3, indices []uint32) []Vector3 {
	acc := make([]Vector3, len(positions))
	used := make([]bool, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		n := FaceNormal(&positions[a], &positions[b], &positions[c])
		for _, vi := range [3]uint32{a, b, c} {
			acc[vi] = *acc[vi].Add(n)
			used[vi] = true
		}
	}
	for i := range acc {
		if used[i] {
			acc[i].Normalize()
		}
	}
	return acc
}
