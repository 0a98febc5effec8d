package library

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sagan/naimeta/features/imagemeta"
)

// Image is one library entry: a normalized record plus its identity and organization.
type Image struct {
	ID string `json:"id"`
	imagemeta.Record
	FilePath   string `json:"filePath,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"` // data URL
	FolderID   string `json:"folderId,omitempty"`  // empty means root
	DateAdded  int64  `json:"dateAdded"`           // unix milliseconds
	IsFavorite bool   `json:"isFavorite"`
}

// Added returns DateAdded as time.
func (img *Image) Added() time.Time {
	return time.UnixMilli(img.DateAdded)
}

// NewImage wraps a record with a fresh id and the current time.
func NewImage(rec *imagemeta.Record, path string) *Image {
	return &Image{
		ID:        uuid.NewString(),
		Record:    *rec,
		FilePath:  path,
		DateAdded: time.Now().UnixMilli(),
	}
}

// Folder is a named collection of images.
type Folder struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Color     string `json:"color,omitempty" db:"color"`
	CreatedAt int64  `json:"createdAt" db:"created_at"` // unix milliseconds
}

const imageColumns = "id, file_name, file_path, thumbnail, folder_id, prompt, negative_prompt, seed, steps, " +
	"cfg_scale, sampler, character_prompts, character_ucs, tags, software, format, source, width, height, " +
	"date_added, is_favorite"

const imageValues = ":id, :file_name, :file_path, :thumbnail, :folder_id, :prompt, :negative_prompt, :seed, :steps, " +
	":cfg_scale, :sampler, :character_prompts, :character_ucs, :tags, :software, :format, :source, :width, :height, " +
	":date_added, :is_favorite"

// imageRow is the database form of Image. List fields are stored as JSON text.
type imageRow struct {
	ID               string         `db:"id"`
	FileName         string         `db:"file_name"`
	FilePath         string         `db:"file_path"`
	Thumbnail        string         `db:"thumbnail"`
	FolderID         sql.NullString `db:"folder_id"`
	Prompt           string         `db:"prompt"`
	NegativePrompt   string         `db:"negative_prompt"`
	Seed             int64          `db:"seed"`
	Steps            int            `db:"steps"`
	CfgScale         float64        `db:"cfg_scale"`
	Sampler          string         `db:"sampler"`
	CharacterPrompts sql.NullString `db:"character_prompts"`
	CharacterUCs     sql.NullString `db:"character_ucs"`
	Tags             string         `db:"tags"`
	Software         string         `db:"software"`
	Format           string         `db:"format"`
	Source           string         `db:"source"`
	Width            int            `db:"width"`
	Height           int            `db:"height"`
	DateAdded        int64          `db:"date_added"`
	IsFavorite       bool           `db:"is_favorite"`
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullableList encodes nil as NULL so absent character lists stay absent.
func nullableList(list []string) sql.NullString {
	if list == nil {
		return sql.NullString{}
	}
	data, _ := json.Marshal(list)
	return sql.NullString{String: string(data), Valid: true}
}

func parseList(s sql.NullString) []string {
	if !s.Valid {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(s.String), &list); err != nil {
		return nil
	}
	return list
}

func toRow(img *Image) *imageRow {
	tags := img.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)
	return &imageRow{
		ID:               img.ID,
		FileName:         img.FileName,
		FilePath:         img.FilePath,
		Thumbnail:        img.Thumbnail,
		FolderID:         nullableString(img.FolderID),
		Prompt:           img.Prompt,
		NegativePrompt:   img.NegativePrompt,
		Seed:             img.Seed,
		Steps:            img.Steps,
		CfgScale:         img.CfgScale,
		Sampler:          img.Sampler,
		CharacterPrompts: nullableList(img.CharacterPrompts),
		CharacterUCs:     nullableList(img.CharacterUCs),
		Tags:             string(tagsJSON),
		Software:         img.Software,
		Format:           img.Format,
		Source:           string(img.Source),
		Width:            img.Width,
		Height:           img.Height,
		DateAdded:        img.DateAdded,
		IsFavorite:       img.IsFavorite,
	}
}

func (r *imageRow) image() *Image {
	tags := parseList(sql.NullString{String: r.Tags, Valid: true})
	if tags == nil {
		tags = []string{}
	}
	return &Image{
		ID: r.ID,
		Record: imagemeta.Record{
			FileName:         r.FileName,
			Prompt:           r.Prompt,
			NegativePrompt:   r.NegativePrompt,
			Seed:             r.Seed,
			Steps:            r.Steps,
			CfgScale:         r.CfgScale,
			Sampler:          r.Sampler,
			CharacterPrompts: parseList(r.CharacterPrompts),
			CharacterUCs:     parseList(r.CharacterUCs),
			Tags:             tags,
			Software:         r.Software,
			Format:           r.Format,
			Source:           imagemeta.Source(r.Source),
			Width:            r.Width,
			Height:           r.Height,
		},
		FilePath:   r.FilePath,
		Thumbnail:  r.Thumbnail,
		FolderID:   r.FolderID.String,
		DateAdded:  r.DateAdded,
		IsFavorite: r.IsFavorite,
	}
}

func rowsToImages(rows []*imageRow) []*Image {
	images := make([]*Image, 0, len(rows))
	for _, r := range rows {
		images = append(images, r.image())
	}
	return images
}
