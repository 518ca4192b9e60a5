package converter

import (
	"github.com/binzume/objconv/obj"
	"github.com/binzume/objconv/scene"
	"github.com/chewxy/math32"
)

func clamp01(v float32) float32 {
	if math32.IsNaN(v) {
		return 0
	}
	return math32.Max(0, math32.Min(1, v))
}

// ShininessToRoughness maps a Blinn-Phong specular exponent to microfacet roughness.
func ShininessToRoughness(ns float32) float32 {
	if ns < 0 || math32.IsNaN(ns) {
		ns = 0
	}
	return clamp01(math32.Sqrt(2 / (ns + 2)))
}

// SynthesizeMaterial derives a PBR material from an .mtl record.
// Ambient, dissolve and shininess maps have no PBR slot and are not resolved.
func SynthesizeMaterial(rec *obj.MaterialRecord, textures *TextureResolver) *scene.PbrMaterial {
	dissolve := clamp01(rec.Dissolve)
	m := &scene.PbrMaterial{
		Name:          rec.Name,
		Albedo:        scene.NewColorFromRGBASlice([]float32{rec.Diffuse[0], rec.Diffuse[1], rec.Diffuse[2], dissolve}),
		Metallic:      clamp01((rec.Specular[0] + rec.Specular[1] + rec.Specular[2]) / 3),
		Roughness:     ShininessToRoughness(rec.Shininess),
		Emissive:      scene.Color{R: rec.Emissive[0], G: rec.Emissive[1], B: rec.Emissive[2], A: 1},
		AlphaBlend:    dissolve < 1,
		LightingModel: scene.LightingBlinn,
	}
	if textures != nil {
		m.AlbedoTexture = textures.Resolve(rec.DiffuseTexture)
		m.MetallicRoughnessTexture = textures.Resolve(rec.SpecularTexture)
		m.NormalTexture = textures.Resolve(rec.NormalTexture)
	}
	return m
}
