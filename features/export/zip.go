package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sagan/zip"
	log "github.com/sirupsen/logrus"

	"github.com/sagan/naimeta/features/library"
	"github.com/sagan/naimeta/util/pathutil"
)

// WriteZIP writes an archive with images/<fileName> (the original file, when readable)
// and metadata/<base>.json for each image. Clashing names get a numeric suffix.
func WriteZIP(w io.Writer, images []*library.Image) error {
	if len(images) == 0 {
		return ErrNoImages
	}
	zw := zip.NewWriter(w)
	usedImages := map[string]bool{}
	usedMetadata := map[string]bool{}
	for _, img := range images {
		name := pathutil.CleanFileBasename(img.FileName)
		if name == "" {
			name = img.ID + ".png"
		}
		if img.FilePath != "" {
			if err := addFile(zw, "images/"+pathutil.UniqueName(usedImages, name), img.FilePath); err != nil {
				log.Warnf("export: skip image file of %s: %v", img.ID, err)
			}
		}
		metaName := pathutil.UniqueName(usedMetadata, pathutil.ReplaceExt(name, ".json"))
		data, err := json.MarshalIndent(NewMetadata(img), "", "  ")
		if err != nil {
			return err
		}
		entry, err := zw.Create("metadata/" + metaName)
		if err != nil {
			return fmt.Errorf("create zip entry: %w", err)
		}
		if _, err := entry.Write(data); err != nil {
			return fmt.Errorf("write zip entry: %w", err)
		}
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	entry, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, f)
	return err
}
