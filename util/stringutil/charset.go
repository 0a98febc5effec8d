package stringutil

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	unicodeEncoding "golang.org/x/text/encoding/unicode"
)

var (
	ErrSeemsInvalid = fmt.Errorf("input seems not a valid string of specified charset")
)

// Key: IANA charset name (case sensitive) used by chardet.
var encodings = map[string]encoding.Encoding{
	"ISO-8859-1": charmap.ISO8859_1,
	"Shift_JIS":  japanese.ShiftJIS,
	"EUC-JP":     japanese.EUCJP,
	"GB-18030":   simplifiedchinese.GB18030,
	"EUC-KR":     korean.EUCKR,
	"Big5":       traditionalchinese.Big5,
	"UTF-16BE":   unicodeEncoding.UTF16(unicodeEncoding.BigEndian, unicodeEncoding.IgnoreBOM),
	"UTF-16LE":   unicodeEncoding.UTF16(unicodeEncoding.LittleEndian, unicodeEncoding.IgnoreBOM),
}

// DecodeText converts input of charset to UTF-8.
// If force is false, output that contains U+FFFD is reported as ErrSeemsInvalid.
func DecodeText(input []byte, charset string, force bool) ([]byte, error) {
	if charset == "UTF-8" {
		if !utf8.Valid(input) {
			if !force {
				return input, ErrSeemsInvalid
			}
			return []byte(ToValidUTF8(input)), nil
		}
		return input, nil
	}
	if enc, ok := encodings[charset]; ok {
		output, err := enc.NewDecoder().Bytes(input)
		if !force && strings.ContainsRune(string(output), utf8.RuneError) {
			return output, ErrSeemsInvalid
		}
		return output, err
	}
	return nil, fmt.Errorf("unsupported charset %s", charset)
}

// DetectCharset returns the IANA name of the most likely charset of input, or empty string.
func DetectCharset(input []byte) string {
	res, err := chardet.NewTextDetector().DetectBest(input)
	if err != nil {
		return ""
	}
	return res.Charset
}

// CjkCharsets are the legacy charsets of East Asian file names, in priority order.
// Shift_JIS goes before GB-18030: most Shift_JIS strings are also valid GBK, but not the other way.
var CjkCharsets = []string{
	"UTF-8",
	"Shift_JIS",
	"GB-18030",
	"EUC-KR",
	"EUC-JP",
	"Big5",
}

// DetectCjkCharset returns the first of CjkCharsets that chardet considers possible for every one of inputs
// and that decodes all of them cleanly. Pure ASCII inputs are ignored.
func DetectCjkCharset(inputs ...[]byte) (string, error) {
	detector := chardet.NewTextDetector()
	candidates := map[string]bool{}
	checked := 0
	for _, input := range inputs {
		if IsASCII(input) {
			continue
		}
		results, err := detector.DetectAll(input)
		if err != nil {
			return "", err
		}
		possible := map[string]bool{}
		for _, result := range results {
			possible[result.Charset] = true
		}
		for _, charset := range CjkCharsets {
			if checked == 0 {
				candidates[charset] = possible[charset]
			} else {
				candidates[charset] = candidates[charset] && possible[charset]
			}
		}
		checked++
	}
	if checked == 0 {
		return "UTF-8", nil
	}
	for _, charset := range CjkCharsets {
		if !candidates[charset] {
			continue
		}
		ok := true
		for _, input := range inputs {
			if _, err := DecodeText(input, charset, false); err != nil {
				ok = false
				break
			}
		}
		if ok {
			return charset, nil
		}
	}
	return "", fmt.Errorf("indeterministic result: not a cjk charset")
}

// IsASCII reports whether every byte of b is 7-bit.
// From https://stackoverflow.com/questions/53069040/checking-a-string-contains-only-ascii-characters .
func IsASCII(b []byte) bool {
	for len(b) > 0 {
		if len(b) >= 8 {
			first32 := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
			second32 := uint32(b[4]) | uint32(b[5])<<8 | uint32(b[6])<<16 | uint32(b[7])<<24
			if (first32|second32)&0x80808080 != 0 {
				return false
			}
			b = b[8:]
			continue
		}
		if b[0] > unicode.MaxASCII {
			return false
		}
		b = b[1:]
	}
	return true
}

// ToValidUTF8 returns b as string, each invalid UTF-8 sequence replaced by U+FFFD.
func ToValidUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
