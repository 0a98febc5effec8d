// Package export writes library images to CSV, JSON, XLSX and ZIP.
package export

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sagan/naimeta/features/library"
)

var ErrNoImages = errors.New("no images to export")

// Locales of column headers.
const (
	LocaleEn = "en"
	LocaleJa = "ja"
)

var Locales = []string{LocaleEn, LocaleJa}

// ParseLocale validates name. Empty means English.
func ParseLocale(name string) (string, error) {
	switch name {
	case "":
		return LocaleEn, nil
	case LocaleEn, LocaleJa:
		return name, nil
	}
	return "", fmt.Errorf("invalid locale %q, must be one of %v", name, Locales)
}

type labels struct {
	headers []string
	yes, no string
	date    string // time layout
}

var localeLabels = map[string]labels{
	LocaleEn: {
		headers: []string{"File Name", "Prompt", "Negative Prompt", "Seed", "Steps", "CFG Scale", "Sampler",
			"Tags", "Favorite", "Date Added"},
		yes:  "Yes",
		no:   "No",
		date: "2006-01-02 15:04:05",
	},
	LocaleJa: {
		headers: []string{"ファイル名", "プロンプト", "ネガティブプロンプト", "Seed", "Steps", "CFG Scale", "Sampler",
			"タグ", "お気に入り", "追加日時"},
		yes:  "はい",
		no:   "いいえ",
		date: "2006/1/2 15:04:05",
	},
}

func getLabels(locale string) labels {
	if l, ok := localeLabels[locale]; ok {
		return l
	}
	return localeLabels[LocaleEn]
}

// cells returns the table row of img. Numbers stay numbers for spreadsheets.
func (l labels) cells(img *library.Image) []any {
	fav := l.no
	if img.IsFavorite {
		fav = l.yes
	}
	return []any{
		img.FileName,
		img.Prompt,
		img.NegativePrompt,
		img.Seed,
		img.Steps,
		img.CfgScale,
		img.Sampler,
		strings.Join(img.Tags, ", "),
		fav,
		time.UnixMilli(img.DateAdded).Local().Format(l.date),
	}
}

func (l labels) record(img *library.Image) []string {
	cells := l.cells(img)
	record := make([]string, len(cells))
	for i, c := range cells {
		switch v := c.(type) {
		case string:
			record[i] = v
		case int64:
			record[i] = strconv.FormatInt(v, 10)
		case int:
			record[i] = strconv.Itoa(v)
		case float64:
			record[i] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			record[i] = fmt.Sprint(v)
		}
	}
	return record
}

// Metadata is the per image JSON form used by the JSON and ZIP exports.
type Metadata struct {
	FileName         string   `json:"fileName"`
	Prompt           string   `json:"prompt"`
	NegativePrompt   string   `json:"negativePrompt"`
	Seed             int64    `json:"seed"`
	Steps            int      `json:"steps"`
	CfgScale         float64  `json:"cfgScale"`
	Sampler          string   `json:"sampler"`
	Tags             []string `json:"tags"`
	CharacterPrompts []string `json:"characterPrompts,omitempty"`
	CharacterUCs     []string `json:"characterUCs,omitempty"`
	IsFavorite       bool     `json:"isFavorite"`
	DateAdded        int64    `json:"dateAdded"`
}

func NewMetadata(img *library.Image) *Metadata {
	tags := img.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Metadata{
		FileName:         img.FileName,
		Prompt:           img.Prompt,
		NegativePrompt:   img.NegativePrompt,
		Seed:             img.Seed,
		Steps:            img.Steps,
		CfgScale:         img.CfgScale,
		Sampler:          img.Sampler,
		Tags:             tags,
		CharacterPrompts: img.CharacterPrompts,
		CharacterUCs:     img.CharacterUCs,
		IsFavorite:       img.IsFavorite,
		DateAdded:        img.DateAdded,
	}
}
