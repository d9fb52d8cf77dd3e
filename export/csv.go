// Package export writes feature tables to disk.
package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tikz/corefeatures/features"
)

// IDColumn is the header of the structure identifier column.
const IDColumn = "id"

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Write writes the table in every requested format to dir, as name plus the
// format extension, replacing existing files. It returns the written paths.
func Write(dir, name string, formats []string, table *features.Table) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var paths []string
	for _, format := range formats {
		path := filepath.Join(dir, name+"."+format)

		var err error
		switch format {
		case FormatCSV:
			err = WriteCSV(path, table)
		case FormatXLSX:
			err = WriteXLSX(path, table)
		default:
			err = fmt.Errorf("unknown format %q", format)
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// WriteCSV writes the table as CSV with a header line, one row per structure.
func WriteCSV(path string, table *features.Table) error {
	slog.Debug("Writing CSV file",
		slog.String("file_path", path),
		slog.Int("record_count", len(table.Rows)))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(header(table)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(table.Schema.Columns)+1)
	for _, row := range table.Rows {
		record[0] = row.ID
		for i, v := range row.Values {
			record[i+1] = formatValue(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", row.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	return file.Close()
}

func header(table *features.Table) []string {
	return append([]string{IDColumn}, table.Schema.Columns...)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
