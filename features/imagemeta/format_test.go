package imagemeta

import (
	"errors"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"png", append(append([]byte(nil), PNGSignature...), 0, 0, 0, 0), FormatPNG},
		{"png signature only", PNGSignature, FormatPNG},
		{"webp", []byte("RIFF\x04\x00\x00\x00WEBP"), FormatWebP},
		{"riff but not webp", []byte("RIFF\x04\x00\x00\x00WAVE"), FormatUnknown},
		{"short riff", []byte("RIFF\x04\x00\x00\x00WEB"), FormatUnknown},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10}, FormatUnknown},
		{"truncated png signature", PNGSignature[:7], FormatUnknown},
		{"empty", nil, FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.data); got != tt.want {
				t.Errorf("DetectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectUnsupportedReportsHeader(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F', 0, 1, 1, 0, 0, 1}
	_, err := detect(jpeg)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("detect() error = %v, want ErrUnsupportedFormat", err)
	}
	var ufe *UnsupportedFormatError
	if !errors.As(err, &ufe) {
		t.Fatalf("error %T is not *UnsupportedFormatError", err)
	}
	if len(ufe.Header) != 12 || ufe.Header[0] != 0xFF {
		t.Errorf("Header = % X, want the first 12 bytes", ufe.Header)
	}
}

func TestFormatString(t *testing.T) {
	for f, want := range map[Format]string{FormatPNG: "PNG", FormatWebP: "WebP", FormatUnknown: "Unknown"} {
		if got := f.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", f, got, want)
		}
	}
}
