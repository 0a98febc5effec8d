package imagemeta

import (
	"bytes"
	"encoding/json"
)

// Format is the container format of an image file.
type Format int

const (
	FormatUnknown Format = iota
	FormatPNG
	FormatWebP
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "PNG"
	case FormatWebP:
		return "WebP"
	}
	return "Unknown"
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Source tells where the Comment of a record was recovered from.
type Source string

const (
	SourceText    Source = "text"    // PNG tEXt / zTXt / iTXt chunk
	SourceExif    Source = "exif"    // WebP EXIF chunk
	SourceStealth Source = "stealth" // alpha channel LSB payload
	SourceNone    Source = "none"
)

// Well known flat text fields written by the generator.
const (
	FieldComment     = "Comment"
	FieldDescription = "Description"
	FieldTitle       = "Title"
	FieldSoftware    = "Software"
	FieldSource      = "Source"
)

// RawMetadata is the loosely typed metadata recovered directly from a container.
type RawMetadata struct {
	// Comment is the generator's structured payload. Nil if absent.
	Comment map[string]any `json:"Comment,omitempty"`
	// CommentKeys lists the top level keys of Comment in document order.
	CommentKeys []string `json:"-" yaml:"-" toml:"-"`
	// Fields holds every other text keyword as a flat string (Title, Description, Software...).
	Fields map[string]string `json:"fields,omitempty"`
}

// HasComment reports whether a non-empty Comment object is present.
func (m *RawMetadata) HasComment() bool {
	return m != nil && len(m.Comment) > 0
}

// Field returns the flat text field name, or empty string.
func (m *RawMetadata) Field(name string) string {
	if m == nil || m.Fields == nil {
		return ""
	}
	return m.Fields[name]
}

func (m *RawMetadata) setField(name, value string) {
	if m.Fields == nil {
		m.Fields = map[string]string{}
	}
	m.Fields[name] = value
}

// setComment replaces Comment. A nil comment stores an empty object.
func (m *RawMetadata) setComment(comment map[string]any, keys []string) {
	if comment == nil {
		comment = map[string]any{}
		keys = nil
	}
	m.Comment = comment
	m.CommentKeys = keys
}

// MarshalJSON writes Fields flattened next to Comment, the way the container stores them.
func (m *RawMetadata) MarshalJSON() ([]byte, error) {
	obj := map[string]any{}
	for k, v := range m.Fields {
		obj[k] = v
	}
	if m.Comment != nil {
		obj[FieldComment] = m.Comment
	}
	return json.Marshal(obj)
}

// Record is the normalized output of the engine for one image.
// Identity (id, folder, date added) belongs to the caller.
type Record struct {
	FileName         string   `json:"fileName"`
	Prompt           string   `json:"prompt"`
	NegativePrompt   string   `json:"negativePrompt"`
	Seed             int64    `json:"seed"`
	Steps            int      `json:"steps"`
	CfgScale         float64  `json:"cfgScale"`
	Sampler          string   `json:"sampler"`
	CharacterPrompts []string `json:"characterPrompts,omitempty"`
	CharacterUCs     []string `json:"characterUCs,omitempty"`
	Tags             []string `json:"tags"`
	Software         string   `json:"software,omitempty"`
	Format           string   `json:"format,omitempty"`
	Source           Source   `json:"source,omitempty"`
	Width            int      `json:"width,omitempty"`
	Height           int      `json:"height,omitempty"`
}

// CharacterText is the concatenation of character prompts and UCs, as indexed by search.
func (r *Record) CharacterText() string {
	var buf bytes.Buffer
	for _, list := range [][]string{r.CharacterPrompts, r.CharacterUCs} {
		for _, s := range list {
			if buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(s)
		}
	}
	return buf.String()
}
