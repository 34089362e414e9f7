package memory

import (
	"context"
	"sort"

	"github.com/api-sage/atm-ledger/src/internal/domain"
)

func (s *Store) ListRecent(ctx context.Context, accountNumber string, limit int) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[accountNumber]; !ok {
		return nil, domain.ErrNotFound
	}
	if limit <= 0 {
		return []domain.Transaction{}, nil
	}

	entries := append([]domain.Transaction(nil), s.transactions[accountNumber]...)
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].Seq > entries[j].Seq
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
