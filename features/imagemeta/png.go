package imagemeta

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	log "github.com/sirupsen/logrus"
)

// PNGChunk is one chunk of a PNG datastream.
type PNGChunk struct {
	Offset int    // offset of the length field in the file
	Type   string // 4 ASCII letters
	Data   []byte // payload, aliases the input buffer
	CRC    uint32 // stored CRC
}

// CRCValid reports whether the stored CRC matches type+data.
func (c *PNGChunk) CRCValid() bool {
	h := crc32.NewIEEE()
	h.Write([]byte(c.Type))
	h.Write(c.Data)
	return h.Sum32() == c.CRC
}

// Critical reports whether the chunk is critical (uppercase first letter).
func (c *PNGChunk) Critical() bool {
	return len(c.Type) == 4 && c.Type[0]&0x20 == 0
}

// ReadPNGChunks splits a PNG datastream into chunks, stopping after IEND or at the end of data.
// When a chunk runs past the end of data, the chunks read so far are returned together
// with a *MalformedError.
func ReadPNGChunks(data []byte) ([]PNGChunk, error) {
	if !bytes.HasPrefix(data, PNGSignature) {
		return nil, malformed(FormatPNG, 0, "missing PNG signature")
	}
	var chunks []PNGChunk
	offset := len(PNGSignature)
	for offset < len(data) {
		remain := len(data) - offset
		if remain < 12 {
			return chunks, malformed(FormatPNG, offset, "truncated chunk header (%d bytes left)", remain)
		}
		length := binary.BigEndian.Uint32(data[offset:])
		chunkType := string(data[offset+4 : offset+8])
		end := int64(offset) + 12 + int64(length)
		if end > int64(len(data)) {
			return chunks, malformed(FormatPNG, offset, "chunk %q length %d exceeds buffer", chunkType, length)
		}
		dataEnd := offset + 8 + int(length)
		chunks = append(chunks, PNGChunk{
			Offset: offset,
			Type:   chunkType,
			Data:   data[offset+8 : dataEnd],
			CRC:    binary.BigEndian.Uint32(data[dataEnd:]),
		})
		offset = int(end)
		if chunkType == "IEND" {
			break
		}
	}
	return chunks, nil
}

// TextChunk is a decoded tEXt, zTXt or iTXt chunk.
type TextChunk struct {
	Type    string
	Keyword string
	Text    string
}

// DecodeTextChunk decodes a text chunk. ok is false for non-text chunks and
// for text chunks without a keyword separator.
func DecodeTextChunk(c *PNGChunk, charset TextCharset) (tc TextChunk, ok bool, err error) {
	tc.Type = c.Type
	switch c.Type {
	case "tEXt":
		before, after, found := bytes.Cut(c.Data, []byte{0})
		if !found {
			return tc, false, nil
		}
		tc.Keyword = decodeLatin1(before)
		tc.Text = decodeText(after, charset)
		return tc, true, nil
	case "zTXt":
		before, after, found := bytes.Cut(c.Data, []byte{0})
		if !found || len(after) < 1 {
			return tc, false, nil
		}
		tc.Keyword = decodeLatin1(before)
		if after[0] != 0 {
			return tc, false, fmt.Errorf("zTXt %q: unknown compression method %d", tc.Keyword, after[0])
		}
		text, err := inflateZlib(after[1:])
		if err != nil {
			return tc, false, fmt.Errorf("zTXt %q: %w", tc.Keyword, err)
		}
		tc.Text = decodeText(text, charset)
		return tc, true, nil
	case "iTXt":
		return decodeITXt(c)
	}
	return tc, false, nil
}

// iTXt: keyword\0 flag method language\0 translated keyword\0 text
func decodeITXt(c *PNGChunk) (tc TextChunk, ok bool, err error) {
	tc.Type = c.Type
	keyword, rest, found := bytes.Cut(c.Data, []byte{0})
	if !found || len(rest) < 2 {
		return tc, false, nil
	}
	tc.Keyword = decodeLatin1(keyword)
	compressed, method := rest[0], rest[1]
	rest = rest[2:]
	if _, rest, found = bytes.Cut(rest, []byte{0}); !found {
		return tc, false, nil
	}
	if _, rest, found = bytes.Cut(rest, []byte{0}); !found {
		return tc, false, nil
	}
	if compressed == 1 {
		if method != 0 {
			return tc, false, fmt.Errorf("iTXt %q: unknown compression method %d", tc.Keyword, method)
		}
		if rest, err = inflateZlib(rest); err != nil {
			return tc, false, fmt.Errorf("iTXt %q: %w", tc.Keyword, err)
		}
	}
	tc.Text = decodeText(rest, CharsetUTF8)
	return tc, true, nil
}

// Visible is the outcome of scanning the declared metadata chunks of a container.
type Visible struct {
	Meta *RawMetadata
	// Found is true when a non-empty Comment object was recovered.
	Found bool
	// Malformed is non-nil when the chunk walk stopped early. Meta still holds
	// whatever the complete chunks carried.
	Malformed error
}

// ReadPNGMetadata collects the text chunks of a PNG. A Comment keyword is parsed
// as JSON; a parse failure leaves an empty Comment. Every other keyword becomes a flat field.
func ReadPNGMetadata(data []byte, charset TextCharset) Visible {
	chunks, err := ReadPNGChunks(data)
	v := Visible{Meta: &RawMetadata{}, Malformed: err}
	if err != nil {
		log.Debugf("png: %v (%d chunks read)", err, len(chunks))
	}
	for i := range chunks {
		tc, ok, err := DecodeTextChunk(&chunks[i], charset)
		if err != nil {
			log.Debugf("png: skip text chunk at offset %d: %v", chunks[i].Offset, err)
			continue
		}
		if !ok {
			continue
		}
		if tc.Keyword == FieldComment {
			comment, keys, err := parseComment([]byte(tc.Text))
			if err != nil {
				log.Debugf("png: %s Comment is not a JSON object: %v", tc.Type, err)
			}
			v.Meta.setComment(comment, keys)
		} else {
			v.Meta.setField(tc.Keyword, tc.Text)
		}
	}
	v.Found = v.Meta.HasComment()
	return v
}

// chunks required to decode pixels, alpha included
var pixelChunks = map[string]bool{
	"IHDR": true,
	"PLTE": true,
	"tRNS": true,
	"IDAT": true,
	"IEND": true,
}

// StripAncillary rebuilds a PNG with only the chunks needed to decode its pixels.
// It returns the rebuilt datastream even when the chunk walk stopped early.
func StripAncillary(data []byte) ([]byte, error) {
	chunks, err := ReadPNGChunks(data)
	if len(chunks) == 0 {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(data))
	buf.Write(PNGSignature)
	hasEnd := false
	for i := range chunks {
		c := &chunks[i]
		if !pixelChunks[c.Type] {
			continue
		}
		writePNGChunk(&buf, c.Type, c.Data, c.CRC)
		hasEnd = hasEnd || c.Type == "IEND"
	}
	if !hasEnd {
		writePNGChunk(&buf, "IEND", nil, crc32.ChecksumIEEE([]byte("IEND")))
	}
	return buf.Bytes(), err
}

func writePNGChunk(buf *bytes.Buffer, chunkType string, data []byte, crc uint32) {
	var word [4]byte
	binary.BigEndian.PutUint32(word[:], uint32(len(data)))
	buf.Write(word[:])
	buf.WriteString(chunkType)
	buf.Write(data)
	binary.BigEndian.PutUint32(word[:], crc)
	buf.Write(word[:])
}
