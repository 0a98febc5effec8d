package imagemeta

import (
	"reflect"
	"testing"
)

// commentMeta parses text the way the container readers do.
func commentMeta(t *testing.T, text string) *RawMetadata {
	t.Helper()
	comment, keys, err := parseComment([]byte(text))
	if err != nil {
		t.Fatalf("parseComment(%s) failed: %v", text, err)
	}
	return &RawMetadata{Comment: comment, CommentKeys: keys}
}

func TestNormalizeFields(t *testing.T) {
	meta := commentMeta(t, `{"prompt":"1girl, solo","uc":"lowres","seed":42,"steps":20,"scale":5,"sampler":"k_dpmpp_2s_ancestral"}`)
	rec := Normalize(meta)
	want := &Record{
		Prompt:         "1girl, solo",
		NegativePrompt: "lowres",
		Seed:           42,
		Steps:          20,
		CfgScale:       5,
		Sampler:        "k_dpmpp_2s_ancestral",
		Tags:           []string{"1girl", "solo"},
	}
	if !reflect.DeepEqual(rec, want) {
		t.Errorf("Normalize() = %+v, want %+v", rec, want)
	}
	if rec.CharacterPrompts != nil || rec.CharacterUCs != nil {
		t.Errorf("character lists must stay nil when nothing matched")
	}
}

func TestNormalizeDefaults(t *testing.T) {
	tests := []struct {
		name    string
		comment string
	}{
		{"missing", `{"prompt":"sky"}`},
		{"wrong types", `{"prompt":"sky","steps":true,"scale":{},"sampler":3,"seed":"abc"}`},
		{"non positive", `{"prompt":"sky","steps":0,"scale":-1,"sampler":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(commentMeta(t, tt.comment))
			if rec.Seed != 0 || rec.Steps != DefaultSteps || rec.CfgScale != DefaultScale || rec.Sampler != DefaultSampler {
				t.Errorf("got seed=%d steps=%d scale=%v sampler=%q", rec.Seed, rec.Steps, rec.CfgScale, rec.Sampler)
			}
			if rec.NegativePrompt != "" {
				t.Errorf("NegativePrompt = %q, want empty", rec.NegativePrompt)
			}
		})
	}
}

func TestNormalizeCoercion(t *testing.T) {
	rec := Normalize(commentMeta(t, `{"seed":"1234567890123","steps":"30","scale":"5.5","sampler":"ddim"}`))
	if rec.Seed != 1234567890123 || rec.Steps != 30 || rec.CfgScale != 5.5 || rec.Sampler != "ddim" {
		t.Errorf("got seed=%d steps=%d scale=%v sampler=%q", rec.Seed, rec.Steps, rec.CfgScale, rec.Sampler)
	}
	rec = Normalize(commentMeta(t, `{"seed":9007199254740993,"steps":28.0}`))
	if rec.Seed != 9007199254740993 {
		t.Errorf("seed = %d, want 9007199254740993 without float rounding", rec.Seed)
	}
	if rec.Steps != 28 {
		t.Errorf("steps = %d", rec.Steps)
	}
}

func TestNormalizeDescriptionFallback(t *testing.T) {
	meta := &RawMetadata{Comment: map[string]any{}, Fields: map[string]string{
		FieldDescription: "masterpiece, cat",
		FieldSoftware:    "NovelAI",
	}}
	rec := Normalize(meta)
	if rec.Prompt != "masterpiece, cat" {
		t.Errorf("Prompt = %q", rec.Prompt)
	}
	if rec.Software != "NovelAI" {
		t.Errorf("Software = %q", rec.Software)
	}
	if !reflect.DeepEqual(rec.Tags, []string{"masterpiece", "cat"}) {
		t.Errorf("Tags = %v", rec.Tags)
	}
}

func TestNormalizeMismatchedCharacterArrays(t *testing.T) {
	rec := Normalize(commentMeta(t, `{"char_prompts":["A","B"],"char_ucs":["notA"]}`))
	if !reflect.DeepEqual(rec.CharacterPrompts, []string{"A", "B"}) {
		t.Errorf("CharacterPrompts = %v", rec.CharacterPrompts)
	}
	if !reflect.DeepEqual(rec.CharacterUCs, []string{"notA"}) {
		t.Errorf("CharacterUCs = %v", rec.CharacterUCs)
	}
}

func TestNormalizeStrategiesConcatenate(t *testing.T) {
	rec := Normalize(commentMeta(t, `{"char_prompts":["X"],"Character_Caption_2":"Y"}`))
	if !reflect.DeepEqual(rec.CharacterPrompts, []string{"X", "Y"}) {
		t.Errorf("CharacterPrompts = %v, want [X Y]", rec.CharacterPrompts)
	}
	if rec.CharacterUCs != nil {
		t.Errorf("CharacterUCs = %v, want nil", rec.CharacterUCs)
	}
}

func TestNormalizeAllStrategies(t *testing.T) {
	comment := `{
		"prompt": "2girls",
		"reference_information_extracted_multiple": [{"information": "ref"}, {"strength": 1}, {"information": ""}],
		"char_prompts": ["b1", "", 3],
		"char_ucs": ["bu1"],
		"v4_prompt": {"caption": {"base_caption": "2girls", "char_captions": [
			{"char_caption": "c1"}, {"char_caption": "   "}, {"centers": []}
		]}},
		"v4_negative_prompt": {"caption": {"char_captions": [{"char_caption": "cu1"}]}},
		"character_negative": ["d-uc1", 7, "d-uc2"],
		"キャラクタープロンプト": "d-jp",
		"char_uc_prompt": "d-both"
	}`
	rec := Normalize(commentMeta(t, comment))
	wantPrompts := []string{"ref", "b1", "c1", "d-jp", "d-both"}
	wantUCs := []string{"bu1", "cu1", "d-uc1", "d-uc2", "d-both"}
	if !reflect.DeepEqual(rec.CharacterPrompts, wantPrompts) {
		t.Errorf("CharacterPrompts = %q, want %q", rec.CharacterPrompts, wantPrompts)
	}
	if !reflect.DeepEqual(rec.CharacterUCs, wantUCs) {
		t.Errorf("CharacterUCs = %q, want %q", rec.CharacterUCs, wantUCs)
	}
	wantTags := []string{"2girls", "ref", "b1", "c1", "d-jp", "d-both"}
	if !reflect.DeepEqual(rec.Tags, wantTags) {
		t.Errorf("Tags = %q, want %q", rec.Tags, wantTags)
	}
}

func TestNormalizeDynamicKeyOrder(t *testing.T) {
	rec := Normalize(commentMeta(t, `{"char_z_prompt":"z","char_a_prompt":"a"}`))
	if !reflect.DeepEqual(rec.CharacterPrompts, []string{"z", "a"}) {
		t.Errorf("CharacterPrompts = %v, want document order [z a]", rec.CharacterPrompts)
	}
	// without key order information the keys are visited sorted
	rec = Normalize(&RawMetadata{Comment: map[string]any{"char_z_prompt": "z", "char_a_prompt": "a"}})
	if !reflect.DeepEqual(rec.CharacterPrompts, []string{"a", "z"}) {
		t.Errorf("CharacterPrompts = %v, want [a z]", rec.CharacterPrompts)
	}
}

func TestNormalizeNil(t *testing.T) {
	rec := Normalize(nil)
	if rec.Steps != DefaultSteps || rec.Tags == nil || len(rec.Tags) != 0 {
		t.Errorf("Normalize(nil) = %+v", rec)
	}
}
