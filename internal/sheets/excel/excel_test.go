package excel

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"finreport/internal/core"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "operations.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestSourceTransactions(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Дата операции", "Номер карты", "Статус", "Сумма операции", "Категория", "Описание"},
		{"01.08.2024 10:00:00", "*4467", "OK", -1000, "Еда", "Кафе"},
		{"02.08.2024 11:00:00", "*5907", "OK", "-2000.50", "Транспорт", "Метро"},
	})

	src, err := New(path, "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	txs, err := src.Transactions(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(txs))
	}
	if txs[0].Amount.Cents != -100000 || txs[1].Amount.Cents != -200050 {
		t.Fatalf("unexpected amounts: %d %d", txs[0].Amount.Cents, txs[1].Amount.Cents)
	}
	if txs[1].Description != "Метро" {
		t.Fatalf("unexpected description %q", txs[1].Description)
	}
}

func TestSourceMissingColumn(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Дата операции", "Номер карты", "Категория", "Описание"},
		{"01.08.2024 10:00:00", "*4467", "Еда", "Кафе"},
	})
	src, _ := New(path, "Sheet1")
	_, err := src.Transactions(context.Background())
	var se *core.SchemaError
	if !errors.As(err, &se) || se.Field != "Сумма операции" {
		t.Fatalf("expected SchemaError for amount column, got %v", err)
	}
}

func TestSourceMissingFile(t *testing.T) {
	src, _ := New(filepath.Join(t.TempDir(), "nope.xlsx"), "")
	if _, err := src.Transactions(context.Background()); err == nil {
		t.Fatal("expected error for missing workbook")
	}
	if _, err := New(" ", ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSourceFormattedCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{"Дата операции", "Номер карты", "Сумма операции", "Категория", "Описание"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("set header: %v", err)
	}
	row := []interface{}{time.Date(2024, 8, 1, 15, 30, 0, 0, time.UTC), "*4467", -1234.5, "Еда", "Кафе"}
	if err := f.SetSheetRow("Sheet1", "A2", &row); err != nil {
		t.Fatalf("set row: %v", err)
	}

	// #,##0.00 renders -1234.5 as "-1,234.50"
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		t.Fatalf("new style: %v", err)
	}
	if err := f.SetCellStyle("Sheet1", "C2", "C2", amountStyle); err != nil {
		t.Fatalf("set style: %v", err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 22})
	if err != nil {
		t.Fatalf("new style: %v", err)
	}
	if err := f.SetCellStyle("Sheet1", "A2", "A2", dateStyle); err != nil {
		t.Fatalf("set style: %v", err)
	}

	path := filepath.Join(t.TempDir(), "formatted.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	src, _ := New(path, "")
	txs, err := src.Transactions(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 row, got %d", len(txs))
	}
	if txs[0].Amount.Cents != -123450 {
		t.Fatalf("amount = %d cents, want -123450", txs[0].Amount.Cents)
	}
	if want := time.Date(2024, 8, 1, 15, 30, 0, 0, time.UTC); !txs[0].OperatedAt.Equal(want) {
		t.Fatalf("operated at %v, want %v", txs[0].OperatedAt, want)
	}
}
