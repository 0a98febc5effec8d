package search

import (
	"reflect"
	"testing"
	"time"

	"github.com/sagan/naimeta/features/imagemeta"
	"github.com/sagan/naimeta/features/library"
)

func image(id, prompt string, opts ...func(*library.Image)) *library.Image {
	img := &library.Image{
		ID: id,
		Record: imagemeta.Record{
			FileName: id + ".png",
			Prompt:   prompt,
			Steps:    28,
			CfgScale: 7,
			Sampler:  "k_euler",
			Tags:     imagemeta.DeriveTags(prompt, nil),
		},
	}
	for _, opt := range opts {
		opt(img)
	}
	return img
}

func ids(images []*library.Image) (out []string) {
	for _, img := range images {
		out = append(out, img.ID)
	}
	return out
}

func newIndex(t *testing.T, images ...*library.Image) *Index {
	t.Helper()
	idx, err := NewIndex()
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	for _, img := range images {
		if err := idx.Add(img); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	return idx
}

func search(t *testing.T, idx *Index, query string) map[string]bool {
	t.Helper()
	got, err := idx.Search(query)
	if err != nil {
		t.Fatalf("Search(%q) failed: %v", query, err)
	}
	return setKeys(got)
}

func setKeys(m map[string]struct{}) map[string]bool {
	out := map[string]bool{}
	for k := range m {
		out[k] = true
	}
	return out
}

func TestTokenize(t *testing.T) {
	got := Tokenize("1girl, Solo_focus (masterpiece) 1GIRL 星空")
	want := []string{"1girl", "solo", "focus", "masterpiece", "星空"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %q, want %q", got, want)
	}
}

func TestIndexSearch(t *testing.T) {
	idx := newIndex(t,
		image("a", "1girl, silver hair, night sky"),
		image("b", "landscape, mountain", func(img *library.Image) {
			img.NegativePrompt = "lowres, bad_hands"
		}),
		image("c", "cat", func(img *library.Image) {
			img.CharacterPrompts = []string{"girl with hat"}
			img.CharacterUCs = []string{"extra limbs"}
		}),
	)

	tests := []struct {
		query string
		want  map[string]bool
	}{
		{"silv", map[string]bool{"a": true}},
		{"SKY night", map[string]bool{"a": true}},
		{"low", map[string]bool{"b": true}},
		{"gir", map[string]bool{"c": true}},
		{"1gi", map[string]bool{"a": true}},
		{"limb", map[string]bool{"c": true}},
		{"c.png", map[string]bool{"c": true}},
		{"silver mountain", map[string]bool{}},
		{"hand", map[string]bool{"b": true}},
		{"air", map[string]bool{}},
		{"  ,", map[string]bool{}},
	}
	for _, tt := range tests {
		if got := search(t, idx, tt.query); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestIndexReplaceAndRemove(t *testing.T) {
	idx := newIndex(t, image("a", "dog"), image("a", "cat"))
	if got := search(t, idx, "dog"); len(got) != 0 {
		t.Errorf("stale tokens after re-add: %v", got)
	}
	if got := search(t, idx, "cat"); len(got) != 1 {
		t.Errorf("Search(cat) = %v", got)
	}
	if err := idx.Remove("a"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if idx.Len() != 0 || len(search(t, idx, "cat")) != 0 {
		t.Errorf("Remove left data behind")
	}
	if err := idx.Rebuild([]*library.Image{image("x", "bird"), image("y", "bird")}); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if got := search(t, idx, "bi"); len(got) != 2 {
		t.Errorf("after Rebuild Search(bi) = %v", got)
	}
	if got := search(t, idx, "BIRD"); len(got) != 2 {
		t.Errorf("Search is case sensitive: %v", got)
	}
}

func TestApplyFilters(t *testing.T) {
	intp := func(v int) *int { return &v }
	floatp := func(v float64) *float64 { return &v }
	images := []*library.Image{
		image("a", "girl, sky", func(img *library.Image) { img.DateAdded = 100; img.Seed = 3; img.Steps = 20 }),
		image("b", "girl, sea", func(img *library.Image) {
			img.DateAdded = 300
			img.Seed = 1
			img.Steps = 50
			img.Sampler = "ddim"
			img.IsFavorite = true
			img.FolderID = "f1"
		}),
		image("c", "boy, sky", func(img *library.Image) { img.DateAdded = 200; img.Seed = 2; img.CfgScale = 11 }),
	}
	tests := []struct {
		name   string
		filter Filter
		sort   SortBy
		want   []string
	}{
		{"all date desc", Filter{}, SortDateDesc, []string{"b", "c", "a"}},
		{"date asc", Filter{}, SortDateAsc, []string{"a", "c", "b"}},
		{"seed", Filter{}, SortSeed, []string{"b", "c", "a"}},
		{"steps", Filter{}, SortSteps, []string{"b", "c", "a"}},
		{"query", Filter{Query: "sk"}, SortDateAsc, []string{"a", "c"}},
		{"tags or", Filter{Tags: []string{"sea", "boy"}}, SortDateAsc, []string{"c", "b"}},
		{"tags or desc", Filter{Tags: []string{"sea", "boy"}}, SortDateDesc, []string{"b", "c"}},
		{"tags and", Filter{Tags: []string{"girl", "sky"}, TagMode: TagModeAnd}, SortDateAsc, []string{"a"}},
		{"sampler", Filter{Sampler: "ddim"}, SortDateAsc, []string{"b"}},
		{"steps range", Filter{StepsMin: intp(21), StepsMax: intp(30)}, SortDateAsc, []string{"c"}},
		{"cfg range", Filter{CfgMin: floatp(8)}, SortDateAsc, []string{"c"}},
		{"dates", Filter{DateFrom: time.UnixMilli(150), DateTo: time.UnixMilli(250)}, SortDateAsc, []string{"c"}},
		{"favorites", Filter{FavoritesOnly: true}, SortDateAsc, []string{"b"}},
		{"root folder", Filter{FolderID: RootFolder}, SortDateAsc, []string{"a", "c"}},
		{"folder", Filter{FolderID: "f1"}, SortDateAsc, []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Apply(images, nil, tt.filter, tt.sort)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if got := ids(result); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
	if got := ids(images); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Apply modified its input: %v", got)
	}
}

func TestParseSortBy(t *testing.T) {
	if s, err := ParseSortBy(""); err != nil || s != SortDateDesc {
		t.Errorf("ParseSortBy(\"\") = %q, %v", s, err)
	}
	if _, err := ParseSortBy("random"); err == nil {
		t.Errorf("ParseSortBy(random) accepted")
	}
}

func TestPopularTags(t *testing.T) {
	images := []*library.Image{
		image("a", "x, y"),
		image("b", "y, z"),
		image("c", "z, w, y"),
	}
	got := PopularTags(images, 3)
	want := []TagCount{{"y", 3}, {"z", 2}, {"x", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PopularTags() = %v, want %v", got, want)
	}
	if got := PopularTags(images, 0); len(got) != 4 {
		t.Errorf("PopularTags(0) returned %d tags", len(got))
	}
}
