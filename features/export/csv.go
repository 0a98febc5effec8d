package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/sagan/naimeta/features/library"
	"github.com/sagan/naimeta/util/stringutil"
)

// WriteCSV writes a UTF-8 (with BOM, for Excel) CSV table of images.
func WriteCSV(w io.Writer, images []*library.Image, locale string) error {
	if len(images) == 0 {
		return ErrNoImages
	}
	if _, err := w.Write(stringutil.Utf8bom); err != nil {
		return err
	}
	l := getLabels(locale)
	writer := csv.NewWriter(w)
	if err := writer.Write(l.headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, img := range images {
		if err := writer.Write(l.record(img)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
