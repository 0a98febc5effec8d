package datautil

import (
	"bytes"
	"reflect"
	"testing"
)

type sample struct {
	Prompt string   `json:"prompt"`
	Seed   int64    `json:"seed"`
	Chars  []string `json:"chars,omitempty"`
}

func TestDiff(t *testing.T) {
	a := sample{Prompt: "1girl", Seed: 1, Chars: []string{"a", "b"}}
	b := sample{Prompt: "1girl", Seed: 2, Chars: []string{"a", "c", "d"}}
	changes, err := Diff(a, b)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	expected := []Change{
		{Path: "chars[1]", Kind: Modified, From: "b", To: "c"},
		{Path: "chars[2]", Kind: Added, To: "d"},
		{Path: "seed", Kind: Modified, From: float64(1), To: float64(2)},
	}
	if !reflect.DeepEqual(changes, expected) {
		t.Errorf("Diff = %+v, expected %+v", changes, expected)
	}

	changes, _ = Diff(a, sample{Prompt: "1girl", Seed: 1})
	if len(changes) != 1 || changes[0].Path != "chars" || changes[0].Kind != Removed {
		t.Errorf("Diff(removed) = %+v", changes)
	}
	if changes, _ := Diff(a, a); len(changes) != 0 {
		t.Errorf("Diff(same) = %+v", changes)
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	changes := []Change{
		{Path: "seed", Kind: Modified, From: 1, To: 2},
		{Path: "chars[1]", Kind: Added, To: "girl"},
		{Path: "negativePrompt", Kind: Removed, From: "bad"},
	}
	if err := Print(&buf, changes); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	expected := "~ seed: 1 -> 2\n+ chars[1] = \"girl\"\n- negativePrompt = \"bad\"\n"
	if buf.String() != expected {
		t.Errorf("Print = %q, expected %q", buf.String(), expected)
	}
	buf.Reset()
	Print(&buf, nil)
	if buf.String() != "no differences\n" {
		t.Errorf("Print(nil) = %q", buf.String())
	}
}
