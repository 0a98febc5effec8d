package imagemeta

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	log "github.com/sirupsen/logrus"

	"github.com/sagan/naimeta/util/stringutil"
)

// RIFFChunk is one sub-chunk of a RIFF/WEBP file.
type RIFFChunk struct {
	Offset    int
	FourCC    string
	Size      uint32 // declared payload size
	Data      []byte // payload, aliases the input buffer
	Truncated bool   // the declared size ran past the end of the buffer
}

// ReadWebPChunks iterates the chunks of a RIFF/WEBP file from offset 12. The scan is
// bounded by the RIFF size field and by the physical end of data; odd sized payloads are
// followed by one padding byte. A payload running past the buffer is kept truncated and
// ends the scan with a *MalformedError.
func ReadWebPChunks(data []byte) ([]RIFFChunk, error) {
	if DetectFormat(data) != FormatWebP {
		return nil, malformed(FormatWebP, 0, "missing RIFF/WEBP header")
	}
	limit := int64(binary.LittleEndian.Uint32(data[4:8])) + 8
	if limit > int64(len(data)) {
		limit = int64(len(data))
	}
	var chunks []RIFFChunk
	offset := int64(12)
	for offset < limit {
		if offset+8 > int64(len(data)) {
			return chunks, malformed(FormatWebP, int(offset), "truncated chunk header")
		}
		chunk := RIFFChunk{
			Offset: int(offset),
			FourCC: string(data[offset : offset+4]),
			Size:   binary.LittleEndian.Uint32(data[offset+4 : offset+8]),
		}
		start := offset + 8
		end := start + int64(chunk.Size)
		if end > int64(len(data)) {
			chunk.Data = data[start:]
			chunk.Truncated = true
			chunks = append(chunks, chunk)
			return chunks, malformed(FormatWebP, int(offset), "chunk %q size %d exceeds buffer", chunk.FourCC, chunk.Size)
		}
		chunk.Data = data[start:end]
		chunks = append(chunks, chunk)
		offset = end
		if chunk.Size%2 == 1 {
			offset++
		}
	}
	return chunks, nil
}

// ExtractBraceJSON returns the substring of text from the first '{' to its matching '}'
// found by counting brace depth. Braces inside JSON strings are not special: the
// generator never writes literal braces in string values at this depth.
func ExtractBraceJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// ReadWebPMetadata scans every EXIF chunk for an embedded JSON Comment. The last
// parseable one wins. WebP files have no stealth path, so a miss only means an empty Comment.
func ReadWebPMetadata(data []byte) Visible {
	chunks, err := ReadWebPChunks(data)
	v := Visible{Meta: &RawMetadata{}, Malformed: err}
	if err != nil {
		log.Debugf("webp: %v (%d chunks read)", err, len(chunks))
	}
	for i := range chunks {
		if chunks[i].FourCC != "EXIF" {
			continue
		}
		comment, keys, ok := commentFromExifChunk(chunks[i].Data)
		if ok {
			v.Meta.setComment(comment, keys)
		}
	}
	v.Found = v.Meta.HasComment()
	return v
}

func commentFromExifChunk(payload []byte) (map[string]any, []string, bool) {
	if text, ok := ExtractBraceJSON(stringutil.ToValidUTF8(payload)); ok {
		comment, keys, err := parseComment([]byte(text))
		if err == nil {
			return comment, keys, true
		}
		log.Debugf("webp: EXIF brace payload is not a JSON object: %v", err)
	}
	return commentFromExifTags(payload)
}

var exifHeader = []byte("Exif\x00\x00")

// commentFromExifTags parses payload as an EXIF block and tries the UserComment and
// ImageDescription tags as JSON.
func commentFromExifTags(payload []byte) (map[string]any, []string, bool) {
	payload = bytes.TrimPrefix(payload, exifHeader)
	x, err := exif.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, nil, false
	}
	var candidates []string
	if tag, err := x.Get(exif.UserComment); err == nil {
		candidates = append(candidates, decodeUserComment(tag.Val))
	}
	if tag, err := x.Get(exif.ImageDescription); err == nil {
		if s, err := tag.StringVal(); err == nil {
			candidates = append(candidates, s)
		}
	}
	for _, candidate := range candidates {
		text, ok := ExtractBraceJSON(candidate)
		if !ok {
			continue
		}
		if comment, keys, err := parseComment([]byte(text)); err == nil {
			return comment, keys, true
		}
	}
	return nil, nil, false
}

// decodeUserComment strips the 8 byte character code of an EXIF UserComment.
func decodeUserComment(val []byte) string {
	if len(val) < 8 {
		return stringutil.ToValidUTF8(val)
	}
	code, body := string(bytes.TrimRight(val[:8], "\x00 ")), val[8:]
	if code == "UNICODE" {
		charset := "UTF-16BE"
		// ASCII text in little endian UTF-16 has the zero byte second.
		if len(body) >= 2 && body[0] != 0 && body[1] == 0 {
			charset = "UTF-16LE"
		}
		if out, err := stringutil.DecodeText(body, charset, true); err == nil {
			return string(out)
		}
	}
	return stringutil.ToValidUTF8(body)
}
