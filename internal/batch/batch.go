// Package batch loads uploaded tabular research targets and slices them
// into batch-sized pages of upload rows.
package batch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/research-engine/internal/model"
)

// DefaultBatchSize is the page size when none is configured.
const DefaultBatchSize = 10

// Upload is a parsed tabular upload: the header row plus one UploadRow per
// non-empty data row. Row indices are positions in the full upload, so a
// row keeps its number across batch pages.
type Upload struct {
	Filename string
	Header   []string
	Rows     []model.UploadRow
}

// LoadXLSX parses the first sheet of an XLSX workbook. The first row is
// the header; blank data rows are skipped.
func LoadXLSX(path string) (*Upload, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("batch: workbook has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.New("batch: sheet is empty")
	}

	header := rowToStrings(sheet.Rows[0])
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		header[i] = h
	}

	up := &Upload{Filename: filepath.Base(path), Header: header}
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		fields := make(map[string]string, len(header))
		for i, c := range cells {
			if i >= len(header) {
				break
			}
			if c = strings.TrimSpace(c); c != "" {
				fields[header[i]] = c
			}
		}
		if len(fields) == 0 {
			continue
		}
		up.Rows = append(up.Rows, model.UploadRow{Index: len(up.Rows), Fields: fields})
	}
	return up, nil
}

// FileMeta builds the session file metadata for this upload.
func (u *Upload) FileMeta(batchSize int) model.FileMeta {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return model.FileMeta{Name: u.Filename, TotalRows: len(u.Rows), BatchSize: batchSize}
}

// Page returns the rows belonging to the given batch index, or nil when
// the index is past the end of the upload.
func (u *Upload) Page(batchIndex, batchSize int) []model.UploadRow {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	start := batchIndex * batchSize
	if batchIndex < 0 || start >= len(u.Rows) {
		return nil
	}
	end := start + batchSize
	if end > len(u.Rows) {
		end = len(u.Rows)
	}
	return u.Rows[start:end]
}

// NumBatches returns how many pages a row count splits into.
func NumBatches(totalRows, batchSize int) int {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if totalRows <= 0 {
		return 0
	}
	return (totalRows + batchSize - 1) / batchSize
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}
