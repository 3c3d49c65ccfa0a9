package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/juakali/walletd/internal/core/domain"
)

// Apply executes one debit or credit against an account, at most once per
// idempotency key.
//
// A key that already resolved to a transaction short-circuits: the original
// transaction comes back unchanged, whatever the replay's amount or type
// say. First-time processing runs in a single atomic unit holding an
// exclusive lock on the account row, so concurrent movements on the same
// account never lose an update and the balance can never be driven below
// zero.
//
// Domain outcomes: domain.ErrAccountNotFound, domain.ErrInsufficientFunds.
// Storage faults propagate unchanged; the caller decides retry policy.
func (s *Service) Apply(ctx context.Context, ownerID, accountID uuid.UUID, amount decimal.Decimal, txType domain.TransactionType, key string) (*domain.Transaction, error) {
	// Replay fast path. Keys are never deleted, so a hit here is final.
	existing, err := s.store.TransactionByReference(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("resolve idempotency key: %w", err)
	}
	if existing != nil {
		s.log.Info("idempotent replay",
			zap.String("reference_id", key),
			zap.String("transaction_id", existing.ID.String()),
		)
		return existing, nil
	}

	var (
		applied *domain.Transaction
		// Set once the request has passed validation; from that point a
		// storage fault still owes the audit trail a FAILED row.
		attempted *domain.Transaction
	)

	err = s.store.WithinTx(ctx, func(tx StoreTx) error {
		account, lockErr := tx.LockAccount(ctx, ownerID, accountID)
		if lockErr != nil {
			return lockErr
		}

		txn := domain.NewTransaction(accountID, amount, txType, key)
		newBalance := account.Balance.Add(txn.Delta())
		if newBalance.IsNegative() {
			return domain.ErrInsufficientFunds
		}

		if insErr := tx.InsertTransaction(ctx, txn); insErr != nil {
			return insErr
		}
		attempted = txn

		if upErr := tx.UpdateBalance(ctx, accountID, newBalance); upErr != nil {
			return upErr
		}
		if upErr := tx.UpdateTransactionStatus(ctx, txn.ID, domain.StatusSuccess); upErr != nil {
			return upErr
		}

		// Reserve the key last, still inside the unit. The uniqueness
		// constraint is what closes the check-then-act window: losing the
		// race rolls this whole unit back.
		if regErr := tx.RegisterIdempotencyKey(ctx, key, txn.ID); regErr != nil {
			return regErr
		}

		txn.Status = domain.StatusSuccess
		applied = txn
		return nil
	})

	switch {
	case err == nil:
		s.log.Info("transaction applied",
			zap.String("transaction_id", applied.ID.String()),
			zap.String("account_id", accountID.String()),
			zap.String("type", string(txType)),
		)
		return applied, nil

	case errors.Is(err, domain.ErrDuplicateKey):
		// A concurrent caller holding the same key committed first. Our
		// unit rolled back; hand back the winner's transaction.
		winner, resErr := s.store.TransactionByReference(ctx, key)
		if resErr != nil {
			return nil, fmt.Errorf("resolve winning transaction: %w", resErr)
		}
		if winner == nil {
			// Keys are never deleted, so this means the store broke its
			// contract.
			return nil, err
		}
		return winner, nil

	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrInsufficientFunds):
		return nil, err

	default:
		if attempted != nil {
			s.recordFailedAttempt(ctx, attempted)
		}
		return nil, err
	}
}

// recordFailedAttempt persists a FAILED copy of a transaction whose unit
// rolled back on a storage fault. It runs in its own unit, detached from
// the caller's cancellation, so the audit row survives the failure that
// aborted the balance change.
func (s *Service) recordFailedAttempt(ctx context.Context, txn *domain.Transaction) {
	failed := *txn
	failed.Status = domain.StatusFailed

	auditCtx := context.WithoutCancel(ctx)
	err := s.store.WithinTx(auditCtx, func(tx StoreTx) error {
		return tx.InsertTransaction(auditCtx, &failed)
	})
	if err != nil {
		s.log.Warn("could not record failed transaction attempt",
			zap.String("transaction_id", failed.ID.String()),
			zap.String("account_id", failed.AccountID.String()),
			zap.Error(err),
		)
	}
}
