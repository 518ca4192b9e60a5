package scene

import (
	"fmt"
	"io"

	"github.com/binzume/objconv/geom"
)

// Transform applies f to every vertex position. Normals are left unchanged.
func (s *Scene) Transform(f func(v *geom.Vector3)) {
	for _, n := range s.Nodes {
		if n.Geometry == nil {
			continue
		}
		for i := range n.Geometry.Positions {
			f(&n.Geometry.Positions[i])
		}
	}
}

// RemoveNodes drops nodes by name. Material indices stay valid.
func (s *Scene) RemoveNodes(names ...string) int {
	drop := map[string]bool{}
	for _, n := range names {
		drop[n] = true
	}
	nodes := s.Nodes[:0]
	for _, n := range s.Nodes {
		if !drop[n.Name] {
			nodes = append(nodes, n)
		}
	}
	removed := len(s.Nodes) - len(nodes)
	s.Nodes = nodes
	return removed
}

// Dump writes a human readable summary of the scene.
func Dump(w io.Writer, s *Scene) error {
	if _, err := fmt.Fprintf(w, "scene %q: %d nodes, %d materials\n", s.Name, len(s.Nodes), len(s.Materials)); err != nil {
		return err
	}
	for i, m := range s.Materials {
		fmt.Fprintf(w, "material[%d] %q albedo=(%.3g %.3g %.3g %.3g) metallic=%.3g roughness=%.3g %v",
			i, m.Name, m.Albedo.R, m.Albedo.G, m.Albedo.B, m.Albedo.A, m.Metallic, m.Roughness, m.LightingModel)
		if m.AlphaBlend {
			fmt.Fprint(w, " blend")
		}
		for _, t := range []struct {
			slot string
			tex  *Texture2D
		}{{"albedo", m.AlbedoTexture}, {"metallicRoughness", m.MetallicRoughnessTexture}, {"normal", m.NormalTexture}} {
			if t.tex != nil {
				fmt.Fprintf(w, " %s=%q(%dx%d)", t.slot, t.tex.Key, t.tex.Width, t.tex.Height)
			}
		}
		fmt.Fprintln(w)
	}
	for i, n := range s.Nodes {
		fmt.Fprintf(w, "node[%d] %q", i, n.Name)
		if g := n.Geometry; g != nil {
			fmt.Fprintf(w, " vertices=%d indices=%d(%v) normals=%v uvs=%v",
				g.VertexCount(), g.Indices.Len(), g.Indices.Format, g.Normals != nil, g.UVs != nil)
		}
		if n.MaterialIndex != nil {
			fmt.Fprintf(w, " material=%d", *n.MaterialIndex)
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
