package stringutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// 0xEF, 0xBB, 0xBF
var Utf8bom = []byte{0xEF, 0xBB, 0xBF}

// /[\t\r\n]+/
var newLinesRegex = regexp.MustCompile(`[\t\r\n]+`)

// CleanTitle:
// 1. Remove line breaks (replace them with space).
// 2. Clean (Remove invisible chars then TrimSpace).
func CleanTitle(s string) string {
	return Clean(newLinesRegex.ReplaceAllString(s, " "))
}

// Clean:
// 1. removes non-graphic (excluding spaces) characters from the given string.
// Non-graphic chars are the ones for which unicode.IsGraphic() returns false.
// For details, see https://stackoverflow.com/a/58994297/1705598 .
// 2. TrimSpace.
func Clean(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsGraphic(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
	return strings.TrimSpace(s)
}

// HasAnySuffixI is the case insensitive version of strings.HasSuffix on any of suffixes.
func HasAnySuffixI(str string, suffixes ...string) bool {
	str = strings.ToLower(str)
	for _, suffix := range suffixes {
		if strings.HasSuffix(str, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

// Return prefix of str that is at most max bytes encoded in UTF-8.
// It replace invalid UTF-8 byte(s) in str with RuneError ("Unicode replacement character"),
// so the returned result is always valid UTF-8 string.
func StringPrefixInBytes(str string, max int) string {
	if len(str) <= max {
		return str
	}
	length := 0
	sb := &strings.Builder{}
	for _, char := range str {
		runeLength := utf8.RuneLen(char)
		if length+runeLength > int(max) {
			break
		}
		sb.WriteRune(char)
		length += runeLength
	}
	return sb.String()
}

// Return prefix of string at most width and actual width.
// ASCII char has 1 width. CJK char has 2 width.
func StringPrefixInWidth(str string, width int) (string, int) {
	strWidth := 0
	sb := &strings.Builder{}
	for _, char := range str {
		runeWidth := runewidth.RuneWidth(char)
		if strWidth+runeWidth > width {
			break
		}
		sb.WriteRune(char)
		strWidth += runeWidth
	}
	return sb.String(), strWidth
}

// Ellipsis cuts the single line form of str to at most width columns, marking the cut with "…".
func Ellipsis(str string, width int) string {
	str = CleanTitle(str)
	if runewidth.StringWidth(str) <= width {
		return str
	}
	prefix, _ := StringPrefixInWidth(str, width-1)
	return prefix + "…"
}
