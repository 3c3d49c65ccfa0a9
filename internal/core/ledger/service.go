// Package ledger implements the account lifecycle and the idempotent
// debit/credit processor on top of a transactional store.
package ledger

import "go.uber.org/zap"

// Service exposes the ledger operations to the handler layer. It owns no
// mutable state; everything lives in the Store so a restart loses nothing.
type Service struct {
	store Store
	log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}
