// Package export writes transcription history to spreadsheet files.
package export

import (
	"fmt"

	"github.com/tealeg/xlsx"

	"akara-desktop/internal/transcribe"
)

// SheetName is the worksheet holding exported history rows.
const SheetName = "Transcriptions"

var headers = []string{
	"ID",
	"Created",
	"File",
	"Source",
	"Target",
	"Model",
	"Processing Time (s)",
	"Transcript",
	"Translation",
}

// ToExcel writes entries to an .xlsx file at path, one row per entry.
func ToExcel(entries []transcribe.HistoryEntry, path string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().Value = h
	}

	for _, e := range entries {
		row := sheet.AddRow()
		row.AddCell().Value = e.ID
		row.AddCell().Value = e.CreatedAt
		row.AddCell().Value = e.Filename
		row.AddCell().Value = e.SourceLanguage
		row.AddCell().Value = e.TargetLanguage
		row.AddCell().Value = e.ModelName
		row.AddCell().Value = fmt.Sprintf("%.2f", e.ProcessingTime)
		row.AddCell().Value = e.Transcript
		row.AddCell().Value = e.Translation
	}

	if err := file.Save(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
