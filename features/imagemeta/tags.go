package imagemeta

import (
	"strings"
	"unicode"
)

// TrimTag trims whitespace and byte order marks around a tag.
func TrimTag(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// SplitTags splits a comma separated prompt into trimmed, non-empty tags.
func SplitTags(prompt string) []string {
	var tags []string
	for _, seg := range strings.Split(prompt, ",") {
		if tag := TrimTag(seg); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// DeriveTags returns the tags of prompt followed by the new tags of each character prompt,
// deduplicated by exact match and in first-seen order. The result is never nil.
func DeriveTags(prompt string, characterPrompts []string) []string {
	tags := []string{}
	seen := map[string]bool{}
	add := func(text string) {
		for _, tag := range SplitTags(text) {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	add(prompt)
	for _, p := range characterPrompts {
		add(p)
	}
	return tags
}
