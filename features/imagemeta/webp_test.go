package imagemeta

import (
	"errors"
	"reflect"
	"testing"
)

func TestExtractBraceJSON(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{`prefix{"a":1}suffix`, `{"a":1}`, true},
		{`xx{"a":{"b":2}}{"c":3}`, `{"a":{"b":2}}`, true},
		{`{"a":1`, "", false},
		{`no braces`, "", false},
		{`}{"a":1}`, `{"a":1}`, true},
	}
	for _, tt := range tests {
		got, ok := ExtractBraceJSON(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ExtractBraceJSON(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestReadWebPChunksPadding(t *testing.T) {
	data := buildWebP(
		riffChunkBytes("VP8X", []byte{1, 2, 3}), // odd size, one padding byte
		riffChunkBytes("EXIF", []byte(`{"prompt":"p"}`)),
	)
	chunks, err := ReadWebPChunks(data)
	if err != nil {
		t.Fatalf("ReadWebPChunks failed: %v", err)
	}
	var got []string
	for _, c := range chunks {
		got = append(got, c.FourCC)
	}
	if !reflect.DeepEqual(got, []string{"VP8X", "EXIF"}) {
		t.Fatalf("chunks = %v, want [VP8X EXIF]", got)
	}
	if chunks[0].Size != 3 || chunks[1].Offset != 12+8+4 {
		t.Errorf("VP8X size %d, EXIF offset %d", chunks[0].Size, chunks[1].Offset)
	}
}

func TestReadWebPChunksBoundedByRIFFSize(t *testing.T) {
	data := buildWebP(riffChunkBytes("EXIF", []byte(`{"prompt":"in"}`)))
	// trailing bytes beyond the declared RIFF size are not part of the file
	data = append(data, riffChunkBytes("EXIF", []byte(`{"prompt":"out"}`))...)
	v := ReadWebPMetadata(data)
	if v.Meta.Comment["prompt"] != "in" {
		t.Errorf("prompt = %v, want in", v.Meta.Comment["prompt"])
	}
}

func TestReadWebPChunksTruncated(t *testing.T) {
	data := buildWebP(riffChunkBytes("EXIF", []byte(`xx{"prompt":"cut"}yyyyyyyyyyyy`)))
	data = data[:len(data)-6]
	chunks, err := ReadWebPChunks(data)
	if !errors.Is(err, ErrMalformedContainer) {
		t.Fatalf("error = %v, want ErrMalformedContainer", err)
	}
	if len(chunks) != 1 || !chunks[0].Truncated {
		t.Fatalf("want one truncated chunk, got %+v", chunks)
	}
	v := ReadWebPMetadata(data)
	if !v.Found || v.Meta.Comment["prompt"] != "cut" {
		t.Errorf("truncated EXIF payload should still be scanned, got %v", v.Meta.Comment)
	}
}

func TestReadWebPMetadata(t *testing.T) {
	payload := "Exif\x00\x00MM\x00*garbage" + `{"prompt":"1girl","char_prompts":["a"]}` + "\x00\x00tail"
	data := buildWebP(
		riffChunkBytes("VP8L", []byte{0x2F, 0, 0, 0, 0}),
		riffChunkBytes("EXIF", []byte(payload)),
	)
	v := ReadWebPMetadata(data)
	if !v.Found {
		t.Fatalf("Found = false")
	}
	if v.Meta.Comment["prompt"] != "1girl" {
		t.Errorf("prompt = %v", v.Meta.Comment["prompt"])
	}
	if !reflect.DeepEqual(v.Meta.CommentKeys, []string{"prompt", "char_prompts"}) {
		t.Errorf("CommentKeys = %v", v.Meta.CommentKeys)
	}
}

func TestReadWebPMetadataWithoutExif(t *testing.T) {
	v := ReadWebPMetadata(buildWebP(riffChunkBytes("VP8 ", []byte{0, 0})))
	if v.Found || v.Malformed != nil {
		t.Errorf("Found = %v, Malformed = %v", v.Found, v.Malformed)
	}
}

func TestDecodeUserComment(t *testing.T) {
	le := []byte("UNICODE\x00")
	for _, r := range `{"a":1}` {
		le = append(le, byte(r), 0)
	}
	if got := decodeUserComment(le); got != `{"a":1}` {
		t.Errorf("UTF-16LE: got %q", got)
	}
	be := []byte("UNICODE\x00")
	for _, r := range `{"b":2}` {
		be = append(be, 0, byte(r))
	}
	if got := decodeUserComment(be); got != `{"b":2}` {
		t.Errorf("UTF-16BE: got %q", got)
	}
	if got := decodeUserComment([]byte("ASCII\x00\x00\x00{}")); got != "{}" {
		t.Errorf("ASCII: got %q", got)
	}
}
