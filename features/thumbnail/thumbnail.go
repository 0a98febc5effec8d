// Package thumbnail renders small JPEG previews of generated images as data URLs.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"
	"github.com/muesli/smartcrop/nfnt"
	"github.com/vincent-petithory/dataurl"

	"github.com/sagan/naimeta/constants"
	"github.com/sagan/naimeta/features/imagemeta"
)

const (
	DefaultMaxSize = 300
	DefaultQuality = 80
)

type Options struct {
	MaxSize int // longest edge. <= 0 means DefaultMaxSize
	Quality int // JPEG quality 1-100. <= 0 means DefaultQuality
	// Square crops the most interesting square region before resizing.
	Square bool
}

// Generate fits the image of data (PNG or WebP) within maxSize keeping aspect ratio,
// encodes it as JPEG of quality and returns a "data:image/jpeg;base64,..." URL.
// Images already smaller than maxSize are never upscaled.
func Generate(data []byte, maxSize int, quality int) (string, error) {
	return GenerateWithOptions(data, &Options{MaxSize: maxSize, Quality: quality})
}

func GenerateWithOptions(data []byte, opts *Options) (string, error) {
	maxSize, quality := DefaultMaxSize, DefaultQuality
	if opts != nil {
		if opts.MaxSize > 0 {
			maxSize = opts.MaxSize
		}
		if opts.Quality > 0 {
			quality = min(opts.Quality, 100)
		}
	}
	src, err := imagemeta.DecodePixels(data)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	var img image.Image = src
	if opts != nil && opts.Square {
		img, err = squareCrop(img)
		if err != nil {
			return "", err
		}
	}
	bounds := img.Bounds()
	if bounds.Dx() > maxSize || bounds.Dy() > maxSize {
		img = imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return dataurl.New(buf.Bytes(), constants.MIME_JPEG).String(), nil
}

func squareCrop(img image.Image) (image.Image, error) {
	bounds := img.Bounds()
	side := min(bounds.Dx(), bounds.Dy())
	if side == 0 || bounds.Dx() == bounds.Dy() {
		return img, nil
	}
	analyzer := smartcrop.NewAnalyzer(nfnt.NewDefaultResizer())
	rect, err := analyzer.FindBestCrop(img, side, side)
	if err != nil {
		return nil, fmt.Errorf("find crop: %w", err)
	}
	return imaging.Crop(img, rect), nil
}
