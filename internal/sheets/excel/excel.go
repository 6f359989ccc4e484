package excel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"finreport/internal/core"
	"finreport/internal/sheets"
)

// Source reads the operations table from an .xlsx bank export.
type Source struct {
	path  string
	sheet string
}

var _ sheets.TransactionSource = (*Source)(nil)

// New returns a source for path. An empty sheet selects the first sheet of
// the workbook.
func New(path, sheet string) (*Source, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("missing operations file path")
	}
	return &Source{path: path, sheet: strings.TrimSpace(sheet)}, nil
}

// Transactions opens the workbook on every call; the file is the source of
// truth and may be replaced between reports.
func (s *Source) Transactions(ctx context.Context) ([]core.Transaction, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", s.path)
		}
		sheet = list[0]
	}

	// Raw values keep number formats such as "#,##0.00" out of the amounts.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, &core.SchemaError{Field: sheets.ColumnTimestamp}
	}
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, fmt.Errorf("read workbook properties: %w", err)
	}
	date1904 := props.Date1904 != nil && *props.Date1904
	if err := convertSerialDates(rows, date1904); err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	txs, err := sheets.ParseTable(rows[0], rows[1:])
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	slog.InfoContext(ctx, "Operations workbook loaded",
		"component", "sheets",
		"path", s.path,
		"sheet", sheet,
		"rows", len(txs))
	return txs, nil
}

// convertSerialDates rewrites date cells stored as Excel serial numbers in
// the timestamp column into the export text layout. Text cells are kept.
func convertSerialDates(rows [][]string, date1904 bool) error {
	col := -1
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(h), sheets.ColumnTimestamp) {
			col = i
			break
		}
	}
	if col == -1 {
		return nil
	}

	for n, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		serial, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			continue
		}
		at, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return &core.ParseError{Field: sheets.ColumnTimestamp, Value: row[col], Row: n + 1, Err: err}
		}
		row[col] = at.Round(time.Second).Format(core.TimestampLayout)
	}
	return nil
}
