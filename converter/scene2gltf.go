package converter

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/binzume/objconv/geom"
	"github.com/binzume/objconv/logger"
	"github.com/binzume/objconv/scene"
	"github.com/google/uuid"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

const (
	unlitMaterialExt = "KHR_materials_unlit"
	webpTextureExt   = "EXT_texture_webp"
)

type SceneToGLTFOption struct {
	ForceUnlit             bool
	TextureScale           float32 // Default: 1.0
	TextureResolutionLimit int     // 0: unlimited
	WebPTextures           bool
}

type sceneToGltf struct {
	*SceneToGLTFOption
	*gltf.Document
	textures map[uuid.UUID]uint32
}

func NewSceneToGLTFConverter(options *SceneToGLTFOption) *sceneToGltf {
	if options == nil {
		options = &SceneToGLTFOption{}
	}
	if options.TextureScale == 0 {
		options.TextureScale = 1.0
	}
	return &sceneToGltf{
		SceneToGLTFOption: options,
		Document:          gltf.NewDocument(),
		textures:          map[uuid.UUID]uint32{},
	}
}

func scaleImage(img image.Image, scale float32, limit int) image.Image {
	rect := img.Bounds()
	if limit > 0 {
		sz := int(float32(max(rect.Dx(), rect.Dy())) * scale)
		if sz > limit {
			scale *= float32(limit) / float32(sz)
		}
	}
	if scale == 1.0 {
		return img
	}
	w, h := int(float32(rect.Dx())*scale), int(float32(rect.Dy())*scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, rect, draw.Over, nil)
	return dst
}

func (c *sceneToGltf) encodeTexture(tex *scene.Texture2D) (io.Reader, string, error) {
	img := scaleImage(tex.Image, c.TextureScale, c.TextureResolutionLimit)
	w := new(bytes.Buffer)
	if c.WebPTextures {
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return nil, "", err
		}
		return w, "image/webp", nil
	}
	if err := png.Encode(w, img); err != nil {
		return nil, "", err
	}
	return w, "image/png", nil
}

func (c *sceneToGltf) addTexture(tex *scene.Texture2D) (uint32, error) {
	if id, ok := c.textures[tex.ID]; ok {
		return id, nil
	}
	r, mime, err := c.encodeTexture(tex)
	if err != nil {
		return 0, err
	}
	name := strings.TrimSuffix(filepath.Base(filepath.FromSlash(strings.ReplaceAll(tex.Key, "\\", "/"))), filepath.Ext(tex.Key))
	img, err := modeler.WriteImage(c.Document, name, mime, r)
	if err != nil {
		return 0, err
	}
	c.Buffers[0].ByteLength = uint32(len(c.Buffers[0].Data)) // avoid AddImage bug

	t := &gltf.Texture{Sampler: gltf.Index(0)}
	if mime == "image/webp" {
		t.Extensions = map[string]interface{}{webpTextureExt: map[string]interface{}{"source": img}}
	} else {
		t.Source = gltf.Index(img)
	}
	c.Textures = append(c.Textures, t)
	id := uint32(len(c.Textures)) - 1
	c.textures[tex.ID] = id
	return id, nil
}

func (c *sceneToGltf) textureIndex(tex *scene.Texture2D) *uint32 {
	if tex == nil {
		return nil
	}
	id, err := c.addTexture(tex)
	if err != nil {
		logger.Warn("texture encode error", zap.String("key", tex.Key), zap.Error(err))
		return nil
	}
	return &id
}

func (c *sceneToGltf) convertMaterial(mat *scene.PbrMaterial) *gltf.Material {
	albedo := mat.Albedo.Array()
	metallic, roughness := mat.Metallic, mat.Roughness
	mm := &gltf.Material{
		Name: mat.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &albedo,
			MetallicFactor:  &metallic,
			RoughnessFactor: &roughness,
		},
		EmissiveFactor: [3]float32{mat.Emissive.R, mat.Emissive.G, mat.Emissive.B},
	}
	if mat.AlphaBlend {
		mm.AlphaMode = gltf.AlphaBlend
	}
	if c.ForceUnlit {
		mm.Extensions = map[string]interface{}{unlitMaterialExt: map[string]string{}}
	}
	if tex := c.textureIndex(mat.AlbedoTexture); tex != nil {
		mm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: *tex}
	}
	if tex := c.textureIndex(mat.MetallicRoughnessTexture); tex != nil {
		mm.PBRMetallicRoughness.MetallicRoughnessTexture = &gltf.TextureInfo{Index: *tex}
	}
	if tex := c.textureIndex(mat.NormalTexture); tex != nil {
		mm.NormalTexture = &gltf.NormalTexture{Index: tex}
	}
	return mm
}

func vec3Array(src []geom.Vector3) [][3]float32 {
	dst := make([][3]float32, len(src))
	for i, v := range src {
		dst[i] = v.Array()
	}
	return dst
}

func vec2Array(src []geom.Vector2) [][2]float32 {
	dst := make([][2]float32, len(src))
	for i, v := range src {
		dst[i] = v.Array()
	}
	return dst
}

func (c *sceneToGltf) convertMesh(node *scene.Node) *gltf.Mesh {
	g := node.Geometry
	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(c.Document, vec3Array(g.Positions)),
	}
	if len(g.Normals) == len(g.Positions) {
		attributes["NORMAL"] = modeler.WriteNormal(c.Document, vec3Array(g.Normals))
	}
	if len(g.UVs) == len(g.Positions) {
		attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(c.Document, vec2Array(g.UVs))
	}
	var indices uint32
	if g.Indices.Format == scene.IndexU16 {
		indices = modeler.WriteIndices(c.Document, g.Indices.U16)
	} else {
		indices = modeler.WriteIndices(c.Document, g.Indices.U32)
	}
	prim := &gltf.Primitive{
		Indices:    gltf.Index(indices),
		Attributes: attributes,
	}
	if node.MaterialIndex != nil {
		prim.Material = gltf.Index(uint32(*node.MaterialIndex))
	}
	return &gltf.Mesh{Name: node.Name, Primitives: []*gltf.Primitive{prim}}
}

// Convert builds a glTF document. Textures that fail to encode are left out of their material.
func (c *sceneToGltf) Convert(s *scene.Scene) (*gltf.Document, error) {
	for _, mat := range s.Materials {
		c.Materials = append(c.Materials, c.convertMaterial(mat))
	}

	for _, node := range s.Nodes {
		n := &gltf.Node{Name: node.Name}
		if node.Geometry != nil && node.Geometry.Indices.Len() > 0 {
			n.Mesh = gltf.Index(uint32(len(c.Meshes)))
			c.Meshes = append(c.Meshes, c.convertMesh(node))
		}
		c.Scenes[0].Nodes = append(c.Scenes[0].Nodes, uint32(len(c.Nodes)))
		c.Nodes = append(c.Nodes, n)
	}

	if len(c.Textures) > 0 {
		c.Samplers = []*gltf.Sampler{{}}
	}
	if c.ForceUnlit && len(c.Materials) > 0 {
		c.ExtensionsUsed = append(c.ExtensionsUsed, unlitMaterialExt)
	}
	if c.WebPTextures && len(c.Textures) > 0 {
		c.ExtensionsUsed = append(c.ExtensionsUsed, webpTextureExt)
		c.ExtensionsRequired = append(c.ExtensionsRequired, webpTextureExt)
	}
	return c.Document, nil
}

// SaveGLB converts s and writes it as a binary glTF file.
func SaveGLB(s *scene.Scene, path string, options *SceneToGLTFOption) error {
	doc, err := NewSceneToGLTFConverter(options).Convert(s)
	if err != nil {
		return err
	}
	return gltf.SaveBinary(doc, path)
}
