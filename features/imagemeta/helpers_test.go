package imagemeta

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// pngChunkBytes serializes one PNG chunk with a valid CRC.
func pngChunkBytes(chunkType string, data []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(data)))
	buf.WriteString(chunkType)
	buf.Write(data)
	crc := crc32.NewIEEE()
	crc.Write([]byte(chunkType))
	crc.Write(data)
	binary.Write(&buf, binary.BigEndian, crc.Sum32())
	return buf.Bytes()
}

func textChunk(keyword, text string) []byte {
	return pngChunkBytes("tEXt", append([]byte(keyword+"\x00"), text...))
}

func zlibBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("zlib write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zlib close failed: %v", err)
	}
	return buf.Bytes()
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("gzip write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close failed: %v", err)
	}
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	return buf.Bytes()
}

// opaquePNG returns a w*h fully opaque PNG.
func opaquePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	return encodePNG(t, img)
}

// withChunks inserts extra chunks right after IHDR of an encoded PNG.
func withChunks(t *testing.T, pngData []byte, chunks ...[]byte) []byte {
	t.Helper()
	const ihdrEnd = 8 + 12 + 13
	if len(pngData) < ihdrEnd || string(pngData[12:16]) != "IHDR" {
		t.Fatalf("not an encoded PNG")
	}
	out := append([]byte(nil), pngData[:ihdrEnd]...)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return append(out, pngData[ihdrEnd:]...)
}

// stealthBits lays out signature + big endian length + payload as a bit stream.
func stealthBits(signature string, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(signature)
	binary.Write(&buf, binary.BigEndian, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

// stealthImage hides data in the alpha LSBs of a w*h image, row-major and MSB first.
// Unused pixels carry a zero LSB.
func stealthImage(t *testing.T, w, h int, data []byte) *image.NRGBA {
	t.Helper()
	if len(data)*8 > w*h {
		t.Fatalf("%d bytes do not fit in %dx%d pixels", len(data), w, h)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		alpha := uint8(254)
		if i < len(data)*8 && data[i/8]&(0x80>>(i%8)) != 0 {
			alpha = 255
		}
		img.Pix[i*4] = uint8(i)
		img.Pix[i*4+1] = 128
		img.Pix[i*4+2] = 64
		img.Pix[i*4+3] = alpha
	}
	return img
}

// riffChunkBytes serializes one RIFF sub-chunk, padded to even size.
func riffChunkBytes(fourCC string, data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(fourCC)
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	if len(data)%2 == 1 {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func buildWebP(chunks ...[]byte) []byte {
	var body bytes.Buffer
	body.WriteString("WEBP")
	for _, c := range chunks {
		body.Write(c)
	}
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(body.Len()))
	buf.Write(body.Bytes())
	return buf.Bytes()
}
