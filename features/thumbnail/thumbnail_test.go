package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/vincent-petithory/dataurl"
)

func pngOf(t *testing.T, w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	return buf.Bytes()
}

func decodeThumbnail(t *testing.T, url string) image.Config {
	du, err := dataurl.DecodeString(url)
	if err != nil {
		t.Fatalf("DecodeString failed: %v", err)
	}
	if du.ContentType() != "image/jpeg" {
		t.Errorf("expect image/jpeg, got %s", du.ContentType())
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(du.Data))
	if err != nil {
		t.Fatalf("jpeg.DecodeConfig failed: %v", err)
	}
	return cfg
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name          string
		w, h, maxSize int
		square        bool
		ew, eh        int
	}{
		{"landscape", 200, 100, 50, false, 50, 25},
		{"portrait", 60, 120, 30, false, 15, 30},
		{"no upscale", 40, 20, 300, false, 40, 20},
		{"square crop", 200, 100, 50, true, 50, 50},
	}
	for _, tt := range tests {
		url, err := GenerateWithOptions(pngOf(t, tt.w, tt.h), &Options{MaxSize: tt.maxSize, Square: tt.square})
		if err != nil {
			t.Fatalf("%s: Generate failed: %v", tt.name, err)
		}
		cfg := decodeThumbnail(t, url)
		if cfg.Width != tt.ew || cfg.Height != tt.eh {
			t.Errorf("%s: expect %dx%d, got %dx%d", tt.name, tt.ew, tt.eh, cfg.Width, cfg.Height)
		}
	}
}

func TestGenerateInvalid(t *testing.T) {
	if _, err := Generate([]byte("not an image"), 0, 0); err == nil {
		t.Errorf("Generate: expect error for invalid data")
	}
}
