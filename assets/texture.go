package assets

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/binzume/objconv/scene"
	btga "github.com/blezek/tga"
	ftga "github.com/ftrvxmtrx/tga"
	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/oov/psd"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

const mimeTGA = "image/x-tga"

// decoders by sniffed MIME type. TGA has no magic number and is handled by extension.
var decoders = map[string]func(io.Reader) (image.Image, error){
	"image/png":  png.Decode,
	"image/jpeg": jpeg.Decode,
	"image/gif":  gif.Decode,
	"image/bmp":  bmp.Decode,
	"image/tiff": tiff.Decode,
	"image/webp": webp.Decode,
	"image/vnd.adobe.photoshop": func(r io.Reader) (image.Image, error) {
		doc, _, err := psd.Decode(r, &psd.DecodeOptions{SkipLayerImage: true})
		if err != nil {
			return nil, err
		}
		return doc.Picker, nil
	},
}

// textureNamespace scopes content derived texture IDs.
var textureNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/binzume/objconv/texture"))

// TextureID returns the content derived ID of a texture payload.
func TextureID(data []byte) uuid.UUID {
	return uuid.NewSHA1(textureNamespace, data)
}

// DecodeTexture decodes an image payload. key is only used to recognize TGA files.
func DecodeTexture(key string, data []byte) (*scene.Texture2D, error) {
	img, mime, err := decodeImage(key, data)
	if err != nil {
		return nil, err
	}
	rgba := toNRGBA(img)
	return &scene.Texture2D{
		ID:     TextureID(data),
		Key:    key,
		MIME:   mime,
		Width:  rgba.Bounds().Dx(),
		Height: rgba.Bounds().Dy(),
		Image:  rgba,
	}, nil
}

// SniffMIME returns the MIME type of an image payload, or "" if unknown.
func SniffMIME(key string, data []byte) string {
	kind, _ := filetype.Match(data)
	if kind != filetype.Unknown {
		return kind.MIME.Value
	}
	if strings.ToLower(filepath.Ext(key)) == ".tga" {
		return mimeTGA
	}
	return ""
}

func decodeImage(key string, data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", errors.Wrapf(ErrUnsupportedFormat, "%s: empty payload", key)
	}
	mime := SniffMIME(key, data)
	if mime == mimeTGA {
		img, err := ftga.Decode(bytes.NewReader(data))
		if err != nil {
			// retry
			img, err = btga.Decode(bytes.NewReader(data))
		}
		if err != nil {
			return nil, "", errors.Wrapf(err, "decode %s (%s)", key, mime)
		}
		return img, mime, nil
	}

	decode, ok := decoders[mime]
	if !ok {
		return nil, "", errors.Wrapf(ErrUnsupportedFormat, "%s: %q", key, mime)
	}
	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrapf(err, "decode %s (%s)", key, mime)
	}
	if img == nil {
		return nil, "", errors.Wrapf(ErrUnsupportedFormat, "%s: no image", key)
	}
	return img, mime, nil
}

// toNRGBA converts any image to a zero-origin NRGBA image.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
