package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sagan/zip"
	"github.com/xuri/excelize/v2"

	"github.com/sagan/naimeta/features/export"
	"github.com/sagan/naimeta/features/imagemeta"
	"github.com/sagan/naimeta/features/library"
	"github.com/sagan/naimeta/util/stringutil"
)

func sampleImages(t *testing.T) []*library.Image {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	if err := os.WriteFile(path, []byte("png bytes"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	added := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local).UnixMilli()
	return []*library.Image{
		{
			ID: "1",
			Record: imagemeta.Record{
				FileName: "a.png",
				Prompt:   "1girl, \"smile\"",
				Seed:     42,
				Steps:    28,
				CfgScale: 5.5,
				Sampler:  "k_euler",
				Tags:     []string{"1girl", "\"smile\""},
			},
			FilePath:   path,
			DateAdded:  added,
			IsFavorite: true,
		},
		{
			ID: "2",
			Record: imagemeta.Record{
				FileName:         "a.png",
				Prompt:           "sky",
				NegativePrompt:   "bad",
				Seed:             7,
				Steps:            20,
				CfgScale:         7,
				Sampler:          "k_dpmpp_2m",
				CharacterPrompts: []string{"girl"},
				CharacterUCs:     []string{""},
			},
			FilePath:  filepath.Join(dir, "missing.png"),
			DateAdded: added,
		},
	}
}

func TestEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, nil, export.LocaleEn); !errors.Is(err, export.ErrNoImages) {
		t.Errorf("WriteCSV: expect ErrNoImages, got %v", err)
	}
	if err := export.WriteJSON(&buf, nil, time.Now()); !errors.Is(err, export.ErrNoImages) {
		t.Errorf("WriteJSON: expect ErrNoImages, got %v", err)
	}
	if err := export.WriteXLSX(&buf, nil, export.LocaleEn); !errors.Is(err, export.ErrNoImages) {
		t.Errorf("WriteXLSX: expect ErrNoImages, got %v", err)
	}
	if err := export.WriteZIP(&buf, nil); !errors.Is(err, export.ErrNoImages) {
		t.Errorf("WriteZIP: expect ErrNoImages, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expect nothing written, got %d bytes", buf.Len())
	}
}

func TestWriteCSV(t *testing.T) {
	images := sampleImages(t)
	tests := []struct {
		locale string
		header string
		fav    [2]string
		date   string
	}{
		{export.LocaleEn, "File Name", [2]string{"Yes", "No"}, "2024-05-06 07:08:09"},
		{export.LocaleJa, "ファイル名", [2]string{"はい", "いいえ"}, "2024/5/6 07:08:09"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, images, tt.locale); err != nil {
			t.Fatalf("WriteCSV(%s) failed: %v", tt.locale, err)
		}
		if !bytes.HasPrefix(buf.Bytes(), stringutil.Utf8bom) {
			t.Fatalf("WriteCSV(%s): missing BOM", tt.locale)
		}
		records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(stringutil.Utf8bom):])).ReadAll()
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("WriteCSV(%s): expect 3 rows, got %d", tt.locale, len(records))
		}
		if records[0][0] != tt.header {
			t.Errorf("WriteCSV(%s): header = %q", tt.locale, records[0][0])
		}
		row := records[1]
		expected := []string{"a.png", "1girl, \"smile\"", "", "42", "28", "5.5", "k_euler",
			"1girl, \"smile\"", tt.fav[0], tt.date}
		if !reflect.DeepEqual(row, expected) {
			t.Errorf("WriteCSV(%s): row = %q, expected %q", tt.locale, row, expected)
		}
		if records[2][8] != tt.fav[1] || records[2][7] != "" {
			t.Errorf("WriteCSV(%s): second row = %q", tt.locale, records[2])
		}
	}
}

func TestWriteJSON(t *testing.T) {
	images := sampleImages(t)
	now := time.Date(2024, 1, 2, 3, 4, 5, 6e6, time.UTC)
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, images, now); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"version\": \"1.0\"") {
		t.Errorf("WriteJSON: expect 2-space indent, got %s", buf.String())
	}
	var doc export.Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if doc.ExportDate != "2024-01-02T03:04:05.006Z" || doc.TotalImages != 2 || len(doc.Images) != 2 {
		t.Errorf("WriteJSON: unexpected document %+v", doc)
	}
	if doc.Images[0].Tags == nil || doc.Images[1].Tags == nil || len(doc.Images[1].Tags) != 0 {
		t.Errorf("WriteJSON: tags must be arrays, got %v / %v", doc.Images[0].Tags, doc.Images[1].Tags)
	}
	if !reflect.DeepEqual(doc.Images[1].CharacterPrompts, []string{"girl"}) {
		t.Errorf("WriteJSON: characterPrompts = %v", doc.Images[1].CharacterPrompts)
	}
	if !doc.Images[0].IsFavorite || doc.Images[0].DateAdded != images[0].DateAdded {
		t.Errorf("WriteJSON: unexpected first image %+v", doc.Images[0])
	}
}

func TestWriteXLSX(t *testing.T) {
	images := sampleImages(t)
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, images, export.LocaleJa); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expect 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "ファイル名" || rows[0][9] != "追加日時" {
		t.Errorf("unexpected header %q", rows[0])
	}
	if rows[1][3] != "42" || rows[1][8] != "はい" || rows[2][8] != "いいえ" {
		t.Errorf("unexpected rows %q", rows[1:])
	}
}

func TestWriteZIP(t *testing.T) {
	images := sampleImages(t)
	var buf bytes.Buffer
	if err := export.WriteZIP(&buf, images); err != nil {
		t.Fatalf("WriteZIP failed: %v", err)
	}
	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	contents := map[string]string{}
	for _, file := range r.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("Open %s failed: %v", file.Name, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		contents[file.Name] = string(data)
	}
	expected := []string{"images/a.png", "metadata/a.json", "metadata/a (1).json"}
	if len(contents) != len(expected) {
		t.Errorf("expect entries %v, got %d entries", expected, len(contents))
	}
	for _, name := range expected {
		if _, ok := contents[name]; !ok {
			t.Errorf("missing entry %s", name)
		}
	}
	if contents["images/a.png"] != "png bytes" {
		t.Errorf("images/a.png = %q", contents["images/a.png"])
	}
	var meta export.Metadata
	if err := json.Unmarshal([]byte(contents["metadata/a (1).json"]), &meta); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if meta.Prompt != "sky" || meta.Seed != 7 {
		t.Errorf("unexpected metadata %+v", meta)
	}
}

func TestParseLocale(t *testing.T) {
	if l, err := export.ParseLocale(""); err != nil || l != export.LocaleEn {
		t.Errorf("ParseLocale(\"\") = %q, %v", l, err)
	}
	if l, err := export.ParseLocale("ja"); err != nil || l != export.LocaleJa {
		t.Errorf("ParseLocale(ja) = %q, %v", l, err)
	}
	if _, err := export.ParseLocale("fr"); err == nil {
		t.Errorf("ParseLocale(fr): expect error")
	}
}
