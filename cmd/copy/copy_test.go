package copy

import (
	"testing"

	"github.com/sagan/naimeta/features/imagemeta"
)

func TestField(t *testing.T) {
	record := &imagemeta.Record{
		Prompt:           "1girl, solo",
		NegativePrompt:   "lowres",
		Seed:             12345,
		Steps:            28,
		CfgScale:         5.5,
		Sampler:          "k_euler_ancestral",
		CharacterPrompts: []string{"girl, red hair", "boy"},
		Tags:             []string{"1girl", "solo"},
	}
	tests := []struct {
		field string
		want  string
	}{
		{"prompt", "1girl, solo"},
		{"negative", "lowres"},
		{"seed", "12345"},
		{"tags", "1girl, solo"},
		{"characters", "girl, red hair\nboy"},
		{"params", "Steps: 28, CFG scale: 5.5, Sampler: k_euler_ancestral, Seed: 12345"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := Field(record, tt.field)
			if err != nil {
				t.Fatalf("Field failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Field(%q) = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
	if _, err := Field(record, "width"); err == nil {
		t.Errorf("Field(width) should fail")
	}
}
