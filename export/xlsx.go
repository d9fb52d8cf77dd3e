package export

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/tikz/corefeatures/features"
)

// SheetName is the worksheet holding the feature table.
const SheetName = "features"

// WriteXLSX writes the table to a single worksheet, header in the first row.
func WriteXLSX(path string, table *features.Table) error {
	slog.Debug("Writing XLSX file",
		slog.String("file_path", path),
		slog.Int("record_count", len(table.Rows)))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	hdr := header(table)
	cells := make([]interface{}, len(hdr))
	for i, h := range hdr {
		cells[i] = h
	}
	if err := sw.SetRow("A1", cells); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for r, row := range table.Rows {
		cells := make([]interface{}, 0, len(row.Values)+1)
		cells = append(cells, row.ID)
		for _, v := range row.Values {
			cells = append(cells, v)
		}

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("write row %s: %w", row.ID, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	return f.SaveAs(path)
}
