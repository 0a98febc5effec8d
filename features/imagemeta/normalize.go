package imagemeta

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Defaults applied when the Comment lacks a usable value.
const (
	DefaultSteps   = 28
	DefaultScale   = 7.0
	DefaultSampler = "k_euler"
)

// characterParts is the contribution of one character extractor.
type characterParts struct {
	prompts []string
	ucs     []string
}

// characterExtractor pulls character prompts / UCs out of one schema generation.
type characterExtractor struct {
	name    string
	extract func(meta *RawMetadata) characterParts
}

// characterExtractors run in this order and all their results are concatenated.
// The generator does not guarantee that only one of these layouts is present.
var characterExtractors = []characterExtractor{
	{"reference_information", extractReferenceInformation},
	{"char_prompts", extractCharPrompts},
	{"v4_caption", extractV4Captions},
	{"dynamic", extractDynamicKeys},
}

// Normalize turns raw container metadata into a Record. The returned record has Tags derived
// but no file name, format or source; those are filled by the caller.
func Normalize(meta *RawMetadata) *Record {
	if meta == nil {
		meta = &RawMetadata{}
	}
	c := meta.Comment
	rec := &Record{
		Prompt:         stringValue(c["prompt"]),
		NegativePrompt: stringValue(c["uc"]),
		Steps:          DefaultSteps,
		CfgScale:       DefaultScale,
		Sampler:        DefaultSampler,
	}
	if rec.Prompt == "" {
		rec.Prompt = meta.Field(FieldDescription)
	}
	if seed, ok := toInt64(c["seed"]); ok {
		rec.Seed = seed
	}
	if steps, ok := toInt64(c["steps"]); ok && steps > 0 && steps <= math.MaxInt32 {
		rec.Steps = int(steps)
	}
	if scale, ok := toFloat64(c["scale"]); ok && scale > 0 {
		rec.CfgScale = scale
	}
	if sampler := stringValue(c["sampler"]); sampler != "" {
		rec.Sampler = sampler
	}
	rec.Software = meta.Field(FieldSoftware)
	if rec.Software == "" {
		rec.Software = meta.Field(FieldSource)
	}

	for _, ext := range characterExtractors {
		parts := ext.extract(meta)
		rec.CharacterPrompts = append(rec.CharacterPrompts, parts.prompts...)
		rec.CharacterUCs = append(rec.CharacterUCs, parts.ucs...)
	}
	rec.Tags = DeriveTags(rec.Prompt, rec.CharacterPrompts)
	return rec
}

func extractReferenceInformation(meta *RawMetadata) (parts characterParts) {
	list, _ := meta.Comment["reference_information_extracted_multiple"].([]any)
	for _, item := range list {
		obj, _ := item.(map[string]any)
		if info := stringValue(obj["information"]); info != "" {
			parts.prompts = append(parts.prompts, info)
		}
	}
	return parts
}

func extractCharPrompts(meta *RawMetadata) characterParts {
	return characterParts{
		prompts: stringList(meta.Comment["char_prompts"]),
		ucs:     stringList(meta.Comment["char_ucs"]),
	}
}

func extractV4Captions(meta *RawMetadata) characterParts {
	return characterParts{
		prompts: charCaptions(meta.Comment["v4_prompt"]),
		ucs:     charCaptions(meta.Comment["v4_negative_prompt"]),
	}
}

// charCaptions reads v4_prompt.caption.char_captions[].char_caption.
func charCaptions(v any) (captions []string) {
	prompt, _ := v.(map[string]any)
	caption, _ := prompt["caption"].(map[string]any)
	list, _ := caption["char_captions"].([]any)
	for _, item := range list {
		obj, _ := item.(map[string]any)
		text, ok := obj["char_caption"].(string)
		if ok && TrimTag(text) != "" {
			captions = append(captions, text)
		}
	}
	return captions
}

var (
	characterMarkers = []string{"char", "character", "キャラクター"}
	promptMarkers    = []string{"prompt", "caption", "プロンプト"}
	ucMarkers        = []string{"uc", "negative"}
)

// Keys already consumed by extractCharPrompts.
var dynamicSkipKeys = map[string]bool{
	"char_prompts": true,
	"char_ucs":     true,
}

// extractDynamicKeys matches Comment keys by loose substring rules so that field names
// of future generator versions are still picked up.
func extractDynamicKeys(meta *RawMetadata) (parts characterParts) {
	for _, key := range commentKeys(meta) {
		if dynamicSkipKeys[key] {
			continue
		}
		lower := strings.ToLower(key)
		if !containsAny(lower, characterMarkers) {
			continue
		}
		value := meta.Comment[key]
		if containsAny(lower, promptMarkers) {
			parts.prompts = append(parts.prompts, looseStrings(value)...)
		}
		if containsAny(lower, ucMarkers) {
			parts.ucs = append(parts.ucs, looseStrings(value)...)
		}
	}
	return parts
}

// commentKeys returns Comment keys in document order, or sorted when the order is unknown.
func commentKeys(meta *RawMetadata) []string {
	if len(meta.CommentKeys) == len(meta.Comment) {
		return meta.CommentKeys
	}
	keys := make([]string, 0, len(meta.Comment))
	for k := range meta.Comment {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// looseStrings accepts a string or an array and returns its non-empty string elements.
func looseStrings(v any) []string {
	switch v := v.(type) {
	case string:
		if v != "" {
			return []string{v}
		}
	case []any:
		return stringList(v)
	}
	return nil
}

// stringList returns the non-empty string elements of a JSON array.
func stringList(v any) (list []string) {
	arr, _ := v.([]any)
	for _, item := range arr {
		if s, ok := item.(string); ok && s != "" {
			list = append(list, s)
		}
	}
	return list
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func toInt64(v any) (int64, bool) {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		return floatToInt64(v.String())
	case float64:
		return floatToInt64(strconv.FormatFloat(v, 'g', -1, 64))
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		return floatToInt64(s)
	}
	return 0, false
}

func floatToInt64(s string) (int64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat64(v any) (float64, bool) {
	var s string
	switch v := v.(type) {
	case json.Number:
		s = v.String()
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case string:
		s = strings.TrimSpace(v)
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
