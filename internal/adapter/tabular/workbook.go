package tabular

import (
	"fmt"
	"io"

	"github.com/couchcryptid/flood-signal-etl/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ReadWorkbook parses one sheet of an XLSX workbook. Cells are read as their
// displayed text, so dates formatted in the sheet keep that format. Row
// numbers are the sheet's 1-based row numbers.
func ReadWorkbook(name string, src io.Reader, sheet string) (*domain.Table, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, domain.NewParseError(name, 0, "", "", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, domain.NewSchemaError(name, "", "workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, domain.NewSchemaError(name, "", fmt.Sprintf("sheet %q: %v", sheet, err))
	}

	tbl := &domain.Table{Name: name}
	for i, record := range rows {
		if isBlank(record) {
			continue
		}
		if tbl.Header == nil {
			tbl.Header = cleanHeader(record)
			continue
		}
		tbl.Rows = append(tbl.Rows, domain.Row{Line: i + 1, Fields: record})
	}

	if tbl.Header == nil {
		return nil, domain.NewSchemaError(name, "", "missing header row")
	}
	return tbl, nil
}
