package search

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/sagan/naimeta/features/library"
)

// RootFolder as Filter.FolderID selects the images that are in no folder.
const RootFolder = "__root__"

type TagMode string

const (
	TagModeOr  TagMode = "or"
	TagModeAnd TagMode = "and"
)

type SortBy string

const (
	SortDateDesc SortBy = "date-desc"
	SortDateAsc  SortBy = "date-asc"
	SortSeed     SortBy = "seed"  // ascending
	SortSteps    SortBy = "steps" // descending
)

var SortOrders = []SortBy{SortDateDesc, SortDateAsc, SortSeed, SortSteps}

// ParseSortBy validates name. Empty means SortDateDesc.
func ParseSortBy(name string) (SortBy, error) {
	if name == "" {
		return SortDateDesc, nil
	}
	if s := SortBy(name); slices.Contains(SortOrders, s) {
		return s, nil
	}
	return "", fmt.Errorf("invalid sort %q, must be one of %v", name, SortOrders)
}

// Filter selects gallery images. Zero fields do not filter.
type Filter struct {
	Query         string
	Tags          []string
	TagMode       TagMode // default or
	Sampler       string
	StepsMin      *int
	StepsMax      *int
	CfgMin        *float64
	CfgMax        *float64
	DateFrom      time.Time
	DateTo        time.Time
	FavoritesOnly bool
	FolderID      string // RootFolder for images in no folder
}

// Match reports whether img passes every non-text condition of f.
func (f *Filter) Match(img *library.Image) bool {
	if len(f.Tags) > 0 {
		has := func(tag string) bool { return slices.Contains(img.Tags, tag) }
		if f.TagMode == TagModeAnd {
			if !all(f.Tags, has) {
				return false
			}
		} else if !slices.ContainsFunc(f.Tags, has) {
			return false
		}
	}
	if f.Sampler != "" && img.Sampler != f.Sampler {
		return false
	}
	if f.StepsMin != nil && img.Steps < *f.StepsMin || f.StepsMax != nil && img.Steps > *f.StepsMax {
		return false
	}
	if f.CfgMin != nil && img.CfgScale < *f.CfgMin || f.CfgMax != nil && img.CfgScale > *f.CfgMax {
		return false
	}
	if !f.DateFrom.IsZero() && img.DateAdded < f.DateFrom.UnixMilli() {
		return false
	}
	if !f.DateTo.IsZero() && img.DateAdded > f.DateTo.UnixMilli() {
		return false
	}
	if f.FavoritesOnly && !img.IsFavorite {
		return false
	}
	switch f.FolderID {
	case "":
	case RootFolder:
		if img.FolderID != "" {
			return false
		}
	default:
		if img.FolderID != f.FolderID {
			return false
		}
	}
	return true
}

func all[T any](list []T, test func(T) bool) bool {
	for _, v := range list {
		if !test(v) {
			return false
		}
	}
	return true
}

// Apply filters and sorts images. idx answers f.Query; if nil, a temporary index over images is built.
// The input slice is not modified.
func Apply(images []*library.Image, idx *Index, f Filter, sortBy SortBy) ([]*library.Image, error) {
	var matched map[string]struct{}
	if len(Tokenize(f.Query)) > 0 {
		if idx == nil {
			var err error
			if idx, err = NewIndex(); err != nil {
				return nil, err
			}
			defer idx.Close()
			if err = idx.Rebuild(images); err != nil {
				return nil, err
			}
		}
		var err error
		if matched, err = idx.Search(f.Query); err != nil {
			return nil, err
		}
	}
	result := make([]*library.Image, 0, len(images))
	for _, img := range images {
		if matched != nil {
			if _, ok := matched[img.ID]; !ok {
				continue
			}
		}
		if f.Match(img) {
			result = append(result, img)
		}
	}
	Sort(result, sortBy)
	return result, nil
}

// Sort orders images in place. Equal keys keep their relative order.
func Sort(images []*library.Image, sortBy SortBy) {
	var compare func(a, b *library.Image) int
	switch sortBy {
	case SortDateAsc:
		compare = func(a, b *library.Image) int { return cmp.Compare(a.DateAdded, b.DateAdded) }
	case SortSeed:
		compare = func(a, b *library.Image) int { return cmp.Compare(a.Seed, b.Seed) }
	case SortSteps:
		compare = func(a, b *library.Image) int { return cmp.Compare(b.Steps, a.Steps) }
	default:
		compare = func(a, b *library.Image) int { return cmp.Compare(b.DateAdded, a.DateAdded) }
	}
	slices.SortStableFunc(images, compare)
}

type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DefaultPopularTags is the number of tags PopularTags returns for n <= 0.
const DefaultPopularTags = 20

// PopularTags counts tag usage over images and returns the n most used,
// ties in first-seen order.
func PopularTags(images []*library.Image, n int) []TagCount {
	if n <= 0 {
		n = DefaultPopularTags
	}
	index := map[string]int{}
	var counts []TagCount
	for _, img := range images {
		for _, tag := range img.Tags {
			if i, ok := index[tag]; ok {
				counts[i].Count++
				continue
			}
			index[tag] = len(counts)
			counts = append(counts, TagCount{Name: tag, Count: 1})
		}
	}
	slices.SortStableFunc(counts, func(a, b TagCount) int { return cmp.Compare(b.Count, a.Count) })
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
