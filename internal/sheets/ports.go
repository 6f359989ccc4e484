package sheets

import (
	"context"

	"finreport/internal/core"
)

// Ports for inbound table adapters.
type (
	// TransactionSource yields the full operations table in export order.
	TransactionSource interface {
		Transactions(ctx context.Context) ([]core.Transaction, error)
	}

	// TransactionImporter replaces a stored snapshot of the operations table.
	TransactionImporter interface {
		ReplaceTransactions(ctx context.Context, txs []core.Transaction) error
	}
)
