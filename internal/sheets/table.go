package sheets

import (
	"fmt"
	"strings"

	"finreport/internal/core"
)

// Column headers of the bank export.
const (
	ColumnTimestamp   = "Дата операции"
	ColumnCard        = "Номер карты"
	ColumnAmount      = "Сумма операции"
	ColumnCategory    = "Категория"
	ColumnDescription = "Описание"
)

var requiredColumns = []string{ColumnTimestamp, ColumnCard, ColumnAmount, ColumnCategory, ColumnDescription}

// ParseTable converts a header row plus data rows into transactions. Every
// row is validated eagerly: a missing column or empty amount cell yields a
// *core.SchemaError, an unparsable timestamp or amount a *core.ParseError.
// Rows that are entirely blank are skipped; extra columns are ignored.
func ParseTable(header []string, rows [][]string) ([]core.Transaction, error) {
	idx := make(map[string]int, len(requiredColumns))
	for _, col := range requiredColumns {
		i := indexOf(header, col)
		if i == -1 {
			return nil, &core.SchemaError{Field: col}
		}
		idx[col] = i
	}

	out := make([]core.Transaction, 0, len(rows))
	for n, row := range rows {
		rowNum := n + 1
		if isBlank(row) {
			continue
		}

		rawTS := safeGet(row, idx[ColumnTimestamp])
		if rawTS == "" {
			return nil, &core.SchemaError{Field: ColumnTimestamp, Row: rowNum}
		}
		at, err := core.ParseTimestamp(rawTS)
		if err != nil {
			return nil, withRow(err, rowNum)
		}

		rawAmount := safeGet(row, idx[ColumnAmount])
		if rawAmount == "" {
			return nil, &core.SchemaError{Field: ColumnAmount, Row: rowNum}
		}
		amount, err := core.ParseAmount(rawAmount)
		if err != nil {
			return nil, &core.ParseError{Field: ColumnAmount, Value: rawAmount, Row: rowNum, Err: err}
		}

		out = append(out, core.Transaction{
			OperatedAt:  at,
			CardID:      normalizeCard(safeGet(row, idx[ColumnCard])),
			Category:    safeGet(row, idx[ColumnCategory]),
			Description: safeGet(row, idx[ColumnDescription]),
			Amount:      amount,
		})
	}
	return out, nil
}

// ParseValues is ParseTable for a Sheets-style matrix whose first row is
// the header.
func ParseValues(values [][]interface{}) ([]core.Transaction, error) {
	if len(values) == 0 {
		return nil, &core.SchemaError{Field: ColumnTimestamp}
	}
	rows := make([][]string, 0, len(values)-1)
	for _, v := range values[1:] {
		rows = append(rows, toStrings(v))
	}
	return ParseTable(toStrings(values[0]), rows)
}

// normalizeCard drops spreadsheet renderings of an empty cell.
func normalizeCard(s string) string {
	switch strings.ToLower(s) {
	case "nan", "<nil>":
		return ""
	}
	return s
}

func withRow(err error, row int) error {
	if pe, ok := err.(*core.ParseError); ok {
		cp := *pe
		cp.Row = row
		return &cp
	}
	return fmt.Errorf("row %d: %w", row, err)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return strings.TrimSpace(arr[idx])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
