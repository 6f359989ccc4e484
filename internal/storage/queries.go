package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Row types mirror the table columns; timestamps are stored as RFC 3339 text.

type TransactionRow struct {
	ID          int64
	OperatedAt  string
	CardID      string
	Category    string
	Description string
	AmountCents int64
}

type ReportRow struct {
	ID          string
	GeneratedAt string
	ReferenceAt string
	Payload     string
}

const listTransactions = `-- name: ListTransactions :many
SELECT id, operated_at, card_id, category, description, amount_cents
FROM transactions
ORDER BY id
`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(
			&i.ID,
			&i.OperatedAt,
			&i.CardID,
			&i.Category,
			&i.Description,
			&i.AmountCents,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteTransactions = `-- name: DeleteTransactions :exec
DELETE FROM transactions
`

func (q *Queries) DeleteTransactions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteTransactions)
	return err
}

const createTransaction = `-- name: CreateTransaction :exec
INSERT INTO transactions (operated_at, card_id, category, description, amount_cents)
VALUES (?, ?, ?, ?, ?)
`

type CreateTransactionParams struct {
	OperatedAt  string
	CardID      string
	Category    string
	Description string
	AmountCents int64
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.OperatedAt,
		arg.CardID,
		arg.Category,
		arg.Description,
		arg.AmountCents,
	)
	return err
}

const createReport = `-- name: CreateReport :exec
INSERT INTO reports (id, generated_at, reference_at, payload)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    generated_at = excluded.generated_at,
    reference_at = excluded.reference_at,
    payload = excluded.payload
`

func (q *Queries) CreateReport(ctx context.Context, arg ReportRow) error {
	_, err := q.db.ExecContext(ctx, createReport,
		arg.ID,
		arg.GeneratedAt,
		arg.ReferenceAt,
		arg.Payload,
	)
	return err
}

const getReport = `-- name: GetReport :one
SELECT id, generated_at, reference_at, payload
FROM reports
WHERE id = ?
`

func (q *Queries) GetReport(ctx context.Context, id string) (ReportRow, error) {
	row := q.db.QueryRowContext(ctx, getReport, id)
	var i ReportRow
	err := row.Scan(
		&i.ID,
		&i.GeneratedAt,
		&i.ReferenceAt,
		&i.Payload,
	)
	return i, err
}

const listReports = `-- name: ListReports :many
SELECT id, generated_at, reference_at, payload
FROM reports
ORDER BY generated_at DESC, id
LIMIT ?
`

func (q *Queries) ListReports(ctx context.Context, limit int64) ([]ReportRow, error) {
	rows, err := q.db.QueryContext(ctx, listReports, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ReportRow
	for rows.Next() {
		var i ReportRow
		if err := rows.Scan(
			&i.ID,
			&i.GeneratedAt,
			&i.ReferenceAt,
			&i.Payload,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
