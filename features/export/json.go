package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/sagan/naimeta/constants"
	"github.com/sagan/naimeta/features/library"
)

const JSONVersion = "1.0"

// Document is the top level object of a JSON export.
type Document struct {
	Version     string      `json:"version"`
	ExportDate  string      `json:"exportDate"`
	TotalImages int         `json:"totalImages"`
	Images      []*Metadata `json:"images"`
}

// ISO 8601 in UTC with milliseconds.

// WriteJSON writes an indented JSON document of images stamped with now.
func WriteJSON(w io.Writer, images []*library.Image, now time.Time) error {
	if len(images) == 0 {
		return ErrNoImages
	}
	doc := &Document{
		Version:     JSONVersion,
		ExportDate:  now.UTC().Format(constants.TIME_FORMAT),
		TotalImages: len(images),
		Images:      make([]*Metadata, 0, len(images)),
	}
	for _, img := range images {
		doc.Images = append(doc.Images, NewMetadata(img))
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(doc)
}
