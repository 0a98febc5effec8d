package imagemeta

import (
	"bytes"
	"encoding/binary"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/sagan/naimeta/util/stringutil"
)

// StealthSignature is one of the fixed markers that may precede a payload hidden in
// the alpha channel's least significant bits.
type StealthSignature struct {
	Name       string
	Compressed bool // payload is DEFLATE compressed; otherwise raw UTF-8
}

// StealthSignatures are tried in this order; the first valid payload wins.
var StealthSignatures = []StealthSignature{
	{Name: "stealth_pngcomp", Compressed: true},
	{Name: "stealth_pnginfo", Compressed: false},
	{Name: "stealth_rgbcomp", Compressed: true},
	{Name: "stealth_rgbinfo", Compressed: false},
}

// ExtractAlphaLSB packs the least significant bit of every pixel's alpha byte, in row-major
// order, into bytes MSB first. pix is RGBA with 4 bytes per pixel and no row padding.
// A trailing partial byte is zero padded on its low end.
func ExtractAlphaLSB(pix []byte, width, height int) []byte {
	if width <= 0 || height <= 0 {
		return nil
	}
	n := width * height
	if complete := len(pix) / 4; complete < n {
		n = complete
	}
	out := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		if pix[i*4+3]&1 != 0 {
			out[i>>3] |= 0x80 >> (i & 7)
		}
	}
	return out
}

// DecodeStealth searches packed LSB bytes for a stealth payload. Each signature's failure
// (bad length, decompression error, invalid JSON) only moves the search on to the next one.
// Valid JSON that is not an object ends the search with an empty comment.
// ok is false when no signature yields valid JSON.
func DecodeStealth(packed []byte) (comment map[string]any, keys []string, sig StealthSignature, ok bool) {
	for _, sig = range StealthSignatures {
		payload, found := stealthPayload(packed, sig)
		if !found {
			continue
		}
		var text []byte
		if sig.Compressed {
			var err error
			if text, err = inflate(payload); err != nil {
				log.Debugf("stealth: %s: decompress: %v", sig.Name, err)
				continue
			}
		} else {
			text = payload
		}
		obj, objKeys, err := parseComment([]byte(stringutil.ToValidUTF8(text)))
		if errors.Is(err, errNotObject) {
			log.Debugf("stealth: %s: payload is not a JSON object", sig.Name)
			return map[string]any{}, nil, sig, true
		} else if err != nil {
			log.Debugf("stealth: %s: payload is not valid JSON: %v", sig.Name, err)
			continue
		}
		return obj, objKeys, sig, true
	}
	return nil, nil, StealthSignature{}, false
}

// stealthPayload locates sig in packed and returns the length prefixed payload after it.
func stealthPayload(packed []byte, sig StealthSignature) ([]byte, bool) {
	idx := bytes.Index(packed, []byte(sig.Name))
	if idx < 0 {
		return nil, false
	}
	offset := idx + len(sig.Name)
	if offset+4 > len(packed) {
		log.Debugf("stealth: %s: no room for the length field", sig.Name)
		return nil, false
	}
	length := int64(binary.BigEndian.Uint32(packed[offset:]))
	if length <= 0 || length > int64(len(packed)-offset-4) {
		log.Debugf("stealth: %s: invalid payload length %d", sig.Name, length)
		return nil, false
	}
	start := offset + 4
	return packed[start : start+int(length)], true
}
