package imagemeta

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// MaxInflatedSize bounds every decompressed payload.
const MaxInflatedSize = 64 << 20

var errInflatedTooLarge = fmt.Errorf("decompressed payload exceeds %d bytes", MaxInflatedSize)

func readLimited(r io.Reader) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, MaxInflatedSize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > MaxInflatedSize {
		return nil, errInflatedTooLarge
	}
	return out, nil
}

func inflateZlib(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return readLimited(zr)
}

func inflateGzip(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()
	return readLimited(gr)
}

func inflateRaw(data []byte) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(data))
	defer fr.Close()
	return readLimited(fr)
}

// inflate decompresses a DEFLATE payload wrapped in gzip, zlib, or nothing.
func inflate(data []byte) ([]byte, error) {
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		return inflateGzip(data)
	}
	out, zerr := inflateZlib(data)
	if zerr == nil {
		return out, nil
	}
	if errors.Is(zerr, errInflatedTooLarge) {
		return nil, zerr
	}
	out, err := inflateRaw(data)
	if err != nil {
		return nil, fmt.Errorf("inflate: zlib: %v; raw: %w", zerr, err)
	}
	return out, nil
}
