// Package imaging implements the crop/scale/encode pipeline applied to raw
// browser captures.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/jfaulkner/seedshot/internal/mapgen"
)

// Processor implements mapgen.ImageProcessor on PNG byte streams.
type Processor struct{}

// New creates a Processor.
func New() *Processor {
	return &Processor{}
}

// Crop cuts the spec window out of a PNG capture and returns PNG bytes.
func (p *Processor) Crop(raw []byte, spec mapgen.CropSpec) ([]byte, error) {
	src, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode capture: %w", err)
	}

	window := image.Rect(spec.Left, spec.Top, spec.Left+spec.Width, spec.Top+spec.Height)
	if !window.In(src.Bounds()) {
		return nil, fmt.Errorf("crop window %v outside capture bounds %v", window, src.Bounds())
	}

	dst := image.NewRGBA(image.Rect(0, 0, spec.Width, spec.Height))
	xdraw.Draw(dst, dst.Bounds(), src, window.Min, xdraw.Src)
	return encode(dst)
}

// Resize scales a PNG image to a square of the given side length.
func (p *Processor) Resize(raw []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("resize target must be > 0, got %d", size)
	}
	src, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if b := src.Bounds(); b.Dx() == size && b.Dy() == size {
		return raw, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return encode(dst)
}

// EncodePNG normalizes arbitrary decodable image bytes to PNG.
func (p *Processor) EncodePNG(raw []byte) ([]byte, error) {
	src, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return encode(src)
}

func decode(raw []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("image decode: %w", err)
	}
	return img, nil
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}
