package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/juakali/walletd/internal/core/domain"
)

// CreateAccount opens a new ACTIVE account for the owner. initialBalance
// defaults to zero when the caller passed nothing; it has already been
// validated non-negative by the handler layer.
func (s *Service) CreateAccount(ctx context.Context, ownerID uuid.UUID, initialBalance decimal.Decimal) (*domain.Account, error) {
	account := domain.NewAccount(ownerID, initialBalance)

	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.log.Info("account created",
		zap.String("account_id", account.ID.String()),
		zap.String("owner_id", ownerID.String()),
	)

	return account, nil
}

// ListAccounts returns one page of the owner's accounts, oldest first, plus
// the owner's total count for pagination metadata.
func (s *Service) ListAccounts(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.Account, int64, error) {
	accounts, total, err := s.store.AccountsByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, total, nil
}

// GetAccount fetches a single account. Ownership is part of the lookup
// predicate, so someone else's account reads as domain.ErrAccountNotFound.
func (s *Service) GetAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*domain.Account, error) {
	return s.store.FindAccount(ctx, ownerID, accountID)
}

// CloseAccount transitions an account ACTIVE -> CLOSED. All three
// preconditions are checked against the same locked row that the final
// write goes to, so a debit racing with the close cannot slip in between
// the balance check and the commit.
//
// Returns domain.ErrAccountNotFound, domain.ErrNonZeroBalance or
// domain.ErrPendingTransactions when a precondition fails.
func (s *Service) CloseAccount(ctx context.Context, ownerID, accountID uuid.UUID) error {
	err := s.store.WithinTx(ctx, func(tx StoreTx) error {
		account, err := tx.LockAccount(ctx, ownerID, accountID)
		if err != nil {
			return err
		}

		if !account.Balance.IsZero() {
			return domain.ErrNonZeroBalance
		}

		pending, err := tx.CountPending(ctx, accountID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return domain.ErrPendingTransactions
		}

		return tx.CloseAccount(ctx, accountID)
	})
	if err != nil {
		return err
	}

	s.log.Info("account closed",
		zap.String("account_id", accountID.String()),
		zap.String("owner_id", ownerID.String()),
	)

	return nil
}
