package imagemeta

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// DecodePixels decodes an image file into a non-premultiplied 8-bit RGBA buffer whose
// origin is (0,0) and whose stride is exactly 4*width. PNG ancillary chunks are dropped
// before decoding so a corrupt metadata chunk cannot break the pixel path.
func DecodePixels(data []byte) (*image.NRGBA, error) {
	if DetectFormat(data) == FormatPNG {
		if stripped, _ := StripAncillary(data); stripped != nil {
			data = stripped
		}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return toNRGBA(img), nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if v, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && v.Stride == 4*b.Dx() {
		return v
	}
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	return nrgba
}

// DecodeSize returns the pixel dimensions without decoding pixel data.
func DecodeSize(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
