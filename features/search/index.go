// Package search provides the in-memory text index and the gallery filters over library images.
package search

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	regexpTokenizer "github.com/blevesearch/bleve/v2/analysis/tokenizer/regexp"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/sagan/naimeta/features/library"
)

// Indexed fields.
const (
	FieldPrompt         = "prompt"
	FieldNegativePrompt = "negativePrompt"
	FieldFileName       = "fileName"
	FieldTags           = "tags"
	FieldCharText       = "charText"
)

var Fields = []string{FieldPrompt, FieldNegativePrompt, FieldFileName, FieldTags, FieldCharText}

// A token is a run of letters and digits.
const tokenPattern = `[\p{L}\p{N}]+`

var tokenRegexp = regexp.MustCompile(tokenPattern)

const (
	tokenizerName = "naimeta_words"
	analyzerName  = "naimeta_text"
)

// Index is a forward (prefix) token index over library images backed by an in-memory bleve index.
// A query word matches a token it is a prefix of. It is safe for concurrent use.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
}

func newMemIndex() (bleve.Index, error) {
	m := bleve.NewIndexMapping()
	if err := m.AddCustomTokenizer(tokenizerName, map[string]any{
		"type":   regexpTokenizer.Name,
		"regexp": tokenPattern,
	}); err != nil {
		return nil, err
	}
	if err := m.AddCustomAnalyzer(analyzerName, map[string]any{
		"type":          custom.Name,
		"tokenizer":     tokenizerName,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, err
	}
	m.DefaultAnalyzer = analyzerName
	m.StoreDynamic = false
	m.DocValuesDynamic = false
	return bleve.NewMemOnly(m)
}

func NewIndex() (*Index, error) {
	index, err := newMemIndex()
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}
	return &Index{index: index}, nil
}

// documentFields returns the indexable text of an image per field.
func documentFields(img *library.Image) map[string]any {
	return map[string]any{
		FieldPrompt:         img.Prompt,
		FieldNegativePrompt: img.NegativePrompt,
		FieldFileName:       img.FileName,
		FieldTags:           strings.Join(img.Tags, " "),
		FieldCharText:       img.CharacterText(),
	}
}

// Tokenize splits text into lower case runs of letters and digits, deduplicated.
func Tokenize(text string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, token := range tokenRegexp.FindAllString(strings.ToLower(text), -1) {
		if _, exists := seen[token]; !exists {
			seen[token] = struct{}{}
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// Add indexes img, replacing a previous version with the same id.
func (x *Index) Add(img *library.Image) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.index.Index(img.ID, documentFields(img))
}

// Remove drops id from the index.
func (x *Index) Remove(id string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.index.Delete(id)
}

// Rebuild replaces the whole index content with images.
func (x *Index) Rebuild(images []*library.Image) error {
	index, err := newMemIndex()
	if err != nil {
		return err
	}
	batch := index.NewBatch()
	for _, img := range images {
		if err := batch.Index(img.ID, documentFields(img)); err != nil {
			index.Close()
			return err
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return err
	}
	x.mu.Lock()
	old := x.index
	x.index = index
	x.mu.Unlock()
	return old.Close()
}

// Len returns the number of indexed documents.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	count, err := x.index.DocCount()
	if err != nil {
		return 0
	}
	return int(count)
}

func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.index.Close()
}

// Search returns the ids for which, in at least one field, every query word is a prefix
// of some token. A query without words matches nothing.
func (x *Index) Search(q string) (map[string]struct{}, error) {
	words := Tokenize(q)
	result := map[string]struct{}{}
	if len(words) == 0 {
		return result, nil
	}
	var perField []query.Query
	for _, field := range Fields {
		var prefixes []query.Query
		for _, word := range words {
			prefix := bleve.NewPrefixQuery(word)
			prefix.SetField(field)
			prefixes = append(prefixes, prefix)
		}
		perField = append(perField, bleve.NewConjunctionQuery(prefixes...))
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	count, err := x.index.DocCount()
	if err != nil || count == 0 {
		return result, err
	}
	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(perField...), int(count), 0, false)
	res, err := x.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q, err)
	}
	for _, hit := range res.Hits {
		result[hit.ID] = struct{}{}
	}
	return result, nil
}
