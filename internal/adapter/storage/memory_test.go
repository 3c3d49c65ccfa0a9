package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juakali/walletd/internal/core/domain"
	"github.com/juakali/walletd/internal/core/ledger"
)

func TestMemoryStoreRollsBackFailedUnit(t *testing.T) {
	store := NewMemoryStore()
	ownerID := uuid.New()
	account := domain.NewAccount(ownerID, decimal.NewFromInt(50))
	require.NoError(t, store.CreateAccount(context.Background(), account))

	boom := errors.New("boom")
	err := store.WithinTx(context.Background(), func(tx ledger.StoreTx) error {
		txn := domain.NewTransaction(account.ID, decimal.NewFromInt(10), domain.TypeDebit, "k1")
		if err := tx.InsertTransaction(context.Background(), txn); err != nil {
			return err
		}
		if err := tx.UpdateBalance(context.Background(), account.ID, decimal.NewFromInt(40)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Every write inside the failed unit is gone.
	got, err := store.FindAccount(context.Background(), ownerID, account.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(50)))
	assert.Empty(t, store.Transactions(account.ID))
}

func TestMemoryStoreLockAccountFiltersClosedAndForeign(t *testing.T) {
	store := NewMemoryStore()
	ownerID := uuid.New()
	account := domain.NewAccount(ownerID, decimal.Zero)
	require.NoError(t, store.CreateAccount(context.Background(), account))

	err := store.WithinTx(context.Background(), func(tx ledger.StoreTx) error {
		if _, err := tx.LockAccount(context.Background(), uuid.New(), account.ID); !errors.Is(err, domain.ErrAccountNotFound) {
			t.Errorf("foreign owner: want ErrAccountNotFound, got %v", err)
		}
		return tx.CloseAccount(context.Background(), account.ID)
	})
	require.NoError(t, err)

	err = store.WithinTx(context.Background(), func(tx ledger.StoreTx) error {
		_, err := tx.LockAccount(context.Background(), ownerID, account.ID)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound, "closed accounts are not lockable")
}

func TestMemoryStoreRegisterIdempotencyKeyConflict(t *testing.T) {
	store := NewMemoryStore()
	txnID := uuid.New()

	err := store.WithinTx(context.Background(), func(tx ledger.StoreTx) error {
		return tx.RegisterIdempotencyKey(context.Background(), "k1", txnID)
	})
	require.NoError(t, err)

	err = store.WithinTx(context.Background(), func(tx ledger.StoreTx) error {
		return tx.RegisterIdempotencyKey(context.Background(), "k1", uuid.New())
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
}
