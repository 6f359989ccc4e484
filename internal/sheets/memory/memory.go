package memory

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"

	"finreport/internal/core"
	"finreport/internal/sheets"
)

// Store is an in-process operations table, optionally seeded from a CSV
// export.
type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

var (
	_ sheets.TransactionSource   = (*Store)(nil)
	_ sheets.TransactionImporter = (*Store)(nil)
)

func New(txs ...core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), txs...)}
}

// NewFromCSV seeds the store from a CSV export whose first record is the
// header. A missing file yields an empty store.
func NewFromCSV(path string) (*Store, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	txs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return New(txs...), nil
}

// ReadCSV parses a comma- or semicolon-separated export.
func ReadCSV(r io.Reader) ([]core.Transaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = trimBOM(data)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectComma(data)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return []core.Transaction{}, nil
	}
	return sheets.ParseTable(records[0], records[1:])
}

func (s *Store) Transactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...), nil
}

func (s *Store) ReplaceTransactions(_ context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Transaction(nil), txs...)
	return nil
}
