package imagemeta

import (
	"unicode/utf8"

	"github.com/sagan/naimeta/util/stringutil"
)

// TextCharset selects how tEXt / zTXt payload bytes are turned into strings.
// The PNG specification mandates Latin-1; some generators write UTF-8 anyway.
type TextCharset string

const (
	CharsetLatin1 TextCharset = "latin1"
	CharsetUTF8   TextCharset = "utf8"
	CharsetAuto   TextCharset = "auto" // chardet picks between UTF-8 and Latin-1
)

// ParseTextCharset validates a charset name. Empty means Latin-1.
func ParseTextCharset(name string) (TextCharset, bool) {
	switch TextCharset(name) {
	case "", CharsetLatin1:
		return CharsetLatin1, true
	case CharsetUTF8, CharsetAuto:
		return TextCharset(name), true
	}
	return "", false
}

func decodeLatin1(b []byte) string {
	if stringutil.IsASCII(b) {
		return string(b)
	}
	s, _ := stringutil.DecodeText(b, "ISO-8859-1", true)
	return string(s)
}

func decodeText(b []byte, charset TextCharset) string {
	switch charset {
	case CharsetUTF8:
		return stringutil.ToValidUTF8(b)
	case CharsetAuto:
		if stringutil.IsASCII(b) || !utf8.Valid(b) {
			return decodeLatin1(b)
		}
		if stringutil.DetectCharset(b) == "UTF-8" {
			return string(b)
		}
	}
	return decodeLatin1(b)
}
