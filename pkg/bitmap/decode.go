package bitmap

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/url"
	"strings"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
)

// Decode decodes a bitmap in any registered format: PNG, JPEG, GIF, BMP,
// TIFF or WebP.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode bitmap: %w", err)
	}
	return img, format, nil
}

// ScaleToFit scales img down to fit within width x height, keeping its
// aspect ratio. A zero bound leaves that dimension unconstrained. Images
// that already fit are returned unchanged.
func ScaleToFit(img image.Image, width, height int) image.Image {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return img
	}

	scale := 1.0
	if width > 0 && w > width {
		scale = float64(width) / float64(w)
	}
	if height > 0 && float64(h)*scale > float64(height) {
		scale = float64(height) / float64(h)
	}
	if scale >= 1 {
		return img
	}

	dw := max(1, int(float64(w)*scale+0.5))
	dh := max(1, int(float64(h)*scale+0.5))
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// EncodeDataURI encodes img as a base64 PNG data URI.
func EncodeDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode bitmap: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// parseDataURI returns the payload of a "data:" URI. Both base64 and
// percent-encoded payloads are accepted.
func parseDataURI(ref string) ([]byte, error) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("data URI has no payload")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data URI: %w", err)
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URI: %w", err)
	}
	return []byte(data), nil
}
