package imagemeta

import (
	log "github.com/sirupsen/logrus"
)

// Options configure an Extractor. The zero value is the default configuration.
type Options struct {
	// Charset used for PNG tEXt chunks. Empty means Latin-1.
	Charset TextCharset
	// DisableStealth skips the alpha channel fallback.
	DisableStealth bool
}

// Extractor runs the full pipeline. It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	Options
}

// NewExtractor returns an Extractor with the given options.
func NewExtractor(opts Options) *Extractor {
	return &Extractor{Options: opts}
}

// Raw is the container level result for one image, before normalization.
type Raw struct {
	Format Format         `json:"format"`
	Source Source         `json:"source"`
	Meta   *RawMetadata   `json:"metadata"`
	Width  int            `json:"width,omitempty"`
	Height int            `json:"height,omitempty"`
	// Signature is the stealth signature name when Source is SourceStealth.
	Signature string `json:"signature,omitempty"`
	// Malformed is the soft chunk walk failure, if any.
	Malformed error `json:"-" yaml:"-" toml:"-"`
}

// ReadRaw detects the container format and recovers its raw metadata, falling back to the
// stealth payload for PNG files without a visible Comment. The only error is UnsupportedFormat.
func (e *Extractor) ReadRaw(data []byte) (*Raw, error) {
	format, err := detect(data)
	if err != nil {
		return nil, err
	}
	raw := &Raw{Format: format, Source: SourceNone}
	if w, h, err := DecodeSize(data); err == nil {
		raw.Width, raw.Height = w, h
	}

	var visible Visible
	switch format {
	case FormatPNG:
		visible = ReadPNGMetadata(data, e.Charset)
	case FormatWebP:
		visible = ReadWebPMetadata(data)
	}
	raw.Meta = visible.Meta
	raw.Malformed = visible.Malformed
	if visible.Found {
		raw.Source = SourceText
		if format == FormatWebP {
			raw.Source = SourceExif
		}
		return raw, nil
	}
	if format != FormatPNG || e.DisableStealth {
		return raw, nil
	}

	img, err := DecodePixels(data)
	if err != nil {
		log.Debugf("stealth: %v", err)
		return raw, nil
	}
	packed := ExtractAlphaLSB(img.Pix, img.Rect.Dx(), img.Rect.Dy())
	comment, keys, sig, ok := DecodeStealth(packed)
	if !ok {
		return raw, nil
	}
	raw.Meta.setComment(comment, keys)
	raw.Source = SourceStealth
	raw.Signature = sig.Name
	if raw.Width == 0 {
		raw.Width, raw.Height = img.Rect.Dx(), img.Rect.Dy()
	}
	return raw, nil
}

// Extract runs the whole pipeline on one image file.
func (e *Extractor) Extract(fileName string, data []byte) (*Record, error) {
	raw, err := e.ReadRaw(data)
	if err != nil {
		return nil, err
	}
	return raw.Record(fileName), nil
}

// Record normalizes the raw metadata.
func (r *Raw) Record(fileName string) *Record {
	rec := Normalize(r.Meta)
	rec.FileName = fileName
	rec.Format = r.Format.String()
	rec.Source = r.Source
	rec.Width = r.Width
	rec.Height = r.Height
	return rec
}

// Extract runs the pipeline with default options.
func Extract(fileName string, data []byte) (*Record, error) {
	return (&Extractor{}).Extract(fileName, data)
}
