package imagemeta

import "bytes"

// PNGSignature is the 8 byte PNG file signature.
var PNGSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

var (
	riffMagic = []byte("RIFF")
	webpMagic = []byte("WEBP")
)

// DetectFormat classifies data by its magic bytes.
func DetectFormat(data []byte) Format {
	if len(data) >= len(PNGSignature) && bytes.Equal(data[:len(PNGSignature)], PNGSignature) {
		return FormatPNG
	}
	if len(data) >= 12 && bytes.Equal(data[0:4], riffMagic) && bytes.Equal(data[8:12], webpMagic) {
		return FormatWebP
	}
	return FormatUnknown
}

// detect returns the format of data, or an *UnsupportedFormatError.
func detect(data []byte) (Format, error) {
	format := DetectFormat(data)
	if format == FormatUnknown {
		header := data
		if len(header) > 12 {
			header = header[:12]
		}
		return format, &UnsupportedFormatError{Header: append([]byte(nil), header...)}
	}
	return format, nil
}
