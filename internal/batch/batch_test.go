package batch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/research-engine/internal/model"
)

func createTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			cell := row.AddCell()
			cell.SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "targets.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestLoadXLSX(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"Company", "State", "Website"},
		{"Acme Industrial", "OH", "https://acme-industrial.com"},
		{"Velocity Pumps", "MI", ""},
	})

	up, err := LoadXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, "targets.xlsx", up.Filename)
	assert.Equal(t, []string{"Company", "State", "Website"}, up.Header)
	require.Len(t, up.Rows, 2)

	assert.Equal(t, 0, up.Rows[0].Index)
	assert.Equal(t, "Acme Industrial", up.Rows[0].Fields["Company"])
	assert.Equal(t, "https://acme-industrial.com", up.Rows[0].Fields["Website"])

	// Empty cells are omitted from the field map.
	_, ok := up.Rows[1].Fields["Website"]
	assert.False(t, ok)
}

func TestLoadXLSX_SkipsBlankRows(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"Company"},
		{"Acme Industrial"},
		{""},
		{"Velocity Pumps"},
	})

	up, err := LoadXLSX(path)
	require.NoError(t, err)
	require.Len(t, up.Rows, 2)
	assert.Equal(t, "Velocity Pumps", up.Rows[1].Fields["Company"])
	assert.Equal(t, 1, up.Rows[1].Index)
}

func TestLoadXLSX_BlankHeaderGetsColumnName(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"Company", ""},
		{"Acme Industrial", "extra"},
	})

	up, err := LoadXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Company", "Column 2"}, up.Header)
	assert.Equal(t, "extra", up.Rows[0].Fields["Column 2"])
}

func TestLoadXLSX_MissingFile(t *testing.T) {
	_, err := LoadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
}

func TestPage(t *testing.T) {
	up := &Upload{}
	for i := 0; i < 25; i++ {
		up.Rows = append(up.Rows, rowN(i))
	}

	first := up.Page(0, 10)
	require.Len(t, first, 10)
	assert.Equal(t, 0, first[0].Index)

	last := up.Page(2, 10)
	require.Len(t, last, 5)
	// Global row numbering survives paging.
	assert.Equal(t, 20, last[0].Index)

	assert.Nil(t, up.Page(3, 10))
	assert.Nil(t, up.Page(-1, 10))
}

func TestFileMeta(t *testing.T) {
	up := &Upload{Filename: "targets.xlsx"}
	for i := 0; i < 25; i++ {
		up.Rows = append(up.Rows, rowN(i))
	}

	meta := up.FileMeta(0)
	assert.Equal(t, DefaultBatchSize, meta.BatchSize)
	assert.Equal(t, 25, meta.TotalRows)
}

func TestNumBatches(t *testing.T) {
	assert.Equal(t, 3, NumBatches(25, 10))
	assert.Equal(t, 1, NumBatches(10, 10))
	assert.Equal(t, 0, NumBatches(0, 10))
}

func rowN(i int) model.UploadRow {
	return model.UploadRow{Index: i, Fields: map[string]string{"Company": "c"}}
}
