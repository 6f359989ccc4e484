package sheets

import (
	"context"
	"log/slog"

	"finreport/internal/cache"
	"finreport/internal/core"
)

// CachedSource keeps the last loaded table for the cache TTL so repeated
// requests against a remote sheet do not reload it every time.
type CachedSource struct {
	source TransactionSource
	cache  cache.Cache[[]core.Transaction]
	key    string
}

var _ TransactionSource = (*CachedSource)(nil)

func NewCachedSource(source TransactionSource, c cache.Cache[[]core.Transaction], key string) *CachedSource {
	return &CachedSource{source: source, cache: c, key: key}
}

func (s *CachedSource) Transactions(ctx context.Context) ([]core.Transaction, error) {
	if txs, ok := s.cache.Get(s.key); ok {
		slog.DebugContext(ctx, "Transaction table served from cache", "key", s.key, "rows", len(txs))
		return append([]core.Transaction(nil), txs...), nil
	}

	txs, err := s.source.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(s.key, append([]core.Transaction(nil), txs...))
	return txs, nil
}

// Invalidate drops the cached table.
func (s *CachedSource) Invalidate() {
	s.cache.Delete(s.key)
}
