package pathutil

import (
	"path"
	"strconv"
	"strings"

	"github.com/sagan/naimeta/util/stringutil"
)

const FILENAME_MAX_LENGTH = 240

// Only include invalid filename characters in Windows (NTFS).
var FilenameRestrictedCharacterReplacement = map[rune]rune{
	'*':  '＊',
	':':  '：',
	'<':  '＜',
	'>':  '＞',
	'|':  '｜',
	'?':  '？',
	'"':  '＂',
	'/':  '／',
	'\\': '＼',
}

// Replace invalid Windows filename chars to alternatives. E.g. '/' => '／', 	'?' => '？'
var FilenameRestrictedCharacterReplacer *strings.Replacer

func init() {
	args := []string{}
	for old, new := range FilenameRestrictedCharacterReplacement {
		args = append(args, string(old), string(new))
	}
	FilenameRestrictedCharacterReplacer = strings.NewReplacer(args...)
}

// Return a cleaned safe base filename component.
// 1. Replace invalid chars with alternatives (e.g. "?" => "？").
// 2. CleanTitle (clean \r, \n and other invisiable chars then TrimSpace).
func CleanBasenameComponent(name string) string {
	name = FilenameRestrictedCharacterReplacer.Replace(name)
	name = stringutil.CleanTitle(name)
	return name
}

// Return a cleaned safe base filename (without path), trying to preserve ext.
// 1. CleanBaseFilenameComponent.
// 2. Clean trailing dot (".") (Windows does NOT allow dot in the end of filename)
// 3. TrimSpace, also between base and ext.
// 4. Truncate name to at most 240 (UTF-8 string) bytes.
func CleanFileBasename(name string) string {
	name = CleanBasenameComponent(name)
	for len(name) > 0 && name[len(name)-1] == '.' {
		name = name[:len(name)-1]
	}
	name = strings.TrimSpace(name)
	ext := path.Ext(name)
	if len(ext) > 14 || strings.ContainsAny(ext, " ") {
		return stringutil.StringPrefixInBytes(name, FILENAME_MAX_LENGTH)
	}
	base := name[:len(name)-len(ext)]
	base = strings.TrimSpace(base)
	return stringutil.StringPrefixInBytes(base, FILENAME_MAX_LENGTH-len(ext)) + ext
}

// ReplaceExt returns name with its extension replaced by ext ("foo.png", ".json" => "foo.json").
func ReplaceExt(name string, ext string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + ext
}

// UniqueName returns name, or name with a " (n)" suffix before the ext if used already has it.
// The returned name is added to used.
func UniqueName(used map[string]bool, name string) string {
	candidate := name
	ext := path.Ext(name)
	base := name[:len(name)-len(ext)]
	for i := 1; used[candidate]; i++ {
		candidate = base + " (" + strconv.Itoa(i) + ")" + ext
	}
	used[candidate] = true
	return candidate
}

// CleanFilePath returns a cleaned relative slash path: every component is cleaned by CleanFileBasename,
// and empty, "." and ".." components are dropped. Both "/" and "\" are separators.
func CleanFilePath(name string) string {
	var parts []string
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == "." || part == ".." {
			continue
		}
		if part = CleanFileBasename(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "/")
}
