// Package tabular reads delimited text files and XLSX workbooks into
// domain.Table values. It assigns no meaning to columns.
package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/flood-signal-etl/internal/domain"
)

const bom = "\ufeff"

// Reader loads tables from disk. Paths ending in .xlsx are read as workbooks,
// anything else as delimited text.
type Reader struct {
	delimiter rune
	sheet     string
}

// NewReader creates a Reader. sheet selects a workbook sheet by name; empty
// means the first sheet.
func NewReader(delimiter rune, sheet string) *Reader {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Reader{delimiter: delimiter, sheet: sheet}
}

// ReadTable opens path and parses it. Errors in the content are
// *domain.DataError values naming the file.
func (r *Reader) ReadTable(ctx context.Context, path string) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadWorkbook(name, f, r.sheet)
	}
	return ReadDelimited(name, f, r.delimiter)
}

// ReadDelimited parses delimited text. The first record is the header; blank
// lines and rows of empty cells are skipped and each row keeps the line it
// starts on. A bare quote inside an unquoted field is kept as text.
func ReadDelimited(name string, src io.Reader, delimiter rune) (*domain.Table, error) {
	cr := csv.NewReader(src)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	tbl := &domain.Table{Name: name}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		if isBlank(record) {
			continue
		}
		line, _ := cr.FieldPos(0)
		if tbl.Header == nil {
			tbl.Header = cleanHeader(record)
			continue
		}
		tbl.Rows = append(tbl.Rows, domain.Row{Line: line, Fields: record})
	}

	if tbl.Header == nil {
		return nil, domain.NewSchemaError(name, "", "missing header row")
	}
	return tbl, nil
}

func cleanHeader(record []string) []string {
	header := make([]string, len(record))
	for i, h := range record {
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		header[i] = strings.TrimSpace(h)
	}
	return header
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
