package export

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/sagan/naimeta/features/library"
)

const SheetName = "Images"

// WriteXLSX writes an Excel workbook with one sheet of images, same columns as WriteCSV.
func WriteXLSX(w io.Writer, images []*library.Image, locale string) (err error) {
	if len(images) == 0 {
		return ErrNoImages
	}
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Error closing Excel file: %v\n", err)
		}
	}()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	l := getLabels(locale)
	header := make([]any, len(l.headers))
	for i, h := range l.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	for i, img := range images {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := l.cells(img)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
