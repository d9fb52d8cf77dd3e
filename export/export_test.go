package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tikz/corefeatures/features"
)

func testTable(t *testing.T) *features.Table {
	t.Helper()
	table := features.NewTable(&features.Schema{
		Columns:    []string{"core.total", "ext.total", "core.volume"},
		Properties: []string{"volume"},
	})
	require.NoError(t, table.Append(features.Row{ID: "1abc", Values: []float64{3, 0, 112.25}}))
	require.NoError(t, table.Append(features.Row{ID: "2xyz", Values: []float64{10, 4, 0}}))
	return table
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "core_features.csv")
	require.NoError(t, WriteCSV(path, testTable(t)))

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "core.total", "ext.total", "core.volume"}, records[0])
	assert.Equal(t, []string{"1abc", "3", "0", "112.25"}, records[1])
	assert.Equal(t, []string{"2xyz", "10", "4", "0"}, records[2])
}

func TestWriteCSV_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "core_features.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale,data\n1,2\n3,4\n5,6\n7,8\n"), 0644))

	table := testTable(t)
	table.Rows = table.Rows[:1]
	require.NoError(t, WriteCSV(path, table))

	records := readCSV(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, "1abc", records[1][0])
}

func TestWriteCSV_EmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	table := features.NewTable(&features.Schema{Columns: []string{"core.total"}})
	require.NoError(t, WriteCSV(path, table))

	records := readCSV(t, path)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"id", "core.total"}, records[0])
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "core_features.xlsx")
	require.NoError(t, WriteXLSX(path, testTable(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "core.total", "ext.total", "core.volume"}, rows[0])
	assert.Equal(t, "1abc", rows[1][0])
	assert.Equal(t, "112.25", rows[1][3])
	assert.Equal(t, "2xyz", rows[2][0])
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "features")

	paths, err := Write(dir, "core_features", []string{FormatCSV, FormatXLSX}, testTable(t))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "core_features.csv"),
		filepath.Join(dir, "core_features.xlsx"),
	}, paths)
	for _, p := range paths {
		assert.FileExists(t, p)
	}

	_, err = Write(dir, "core_features", []string{"parquet"}, testTable(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
