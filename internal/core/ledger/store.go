package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juakali/walletd/internal/core/domain"
)

// Store is the narrow boundary the ledger core needs from its backing
// relational store: atomic units of work plus a handful of row operations.
// The core keeps no state of its own; every invocation re-reads the store.
type Store interface {
	// WithinTx runs fn inside one atomic unit. If fn returns an error the
	// unit rolls back and the error is returned unchanged; otherwise the
	// unit commits.
	WithinTx(ctx context.Context, fn func(tx StoreTx) error) error

	// CreateAccount inserts a new account row.
	CreateAccount(ctx context.Context, account *domain.Account) error

	// FindAccount looks up an account by (id, ownerID). Returns
	// domain.ErrAccountNotFound when no row matches both.
	FindAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*domain.Account, error)

	// AccountsByOwner returns one page of the owner's accounts ordered by
	// creation time ascending, plus the owner's total account count.
	AccountsByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.Account, int64, error)

	// TransactionByReference resolves an idempotency key to the
	// transaction it produced. An unregistered key is (nil, nil), not an
	// error: it just means first-time processing.
	TransactionByReference(ctx context.Context, key string) (*domain.Transaction, error)
}

// StoreTx is the per-unit view handed to WithinTx callbacks. LockAccount
// must hold an exclusive row lock for the remainder of the unit so the
// read-modify-write span over the balance is linearizable.
type StoreTx interface {
	// LockAccount loads the account matching (id, ownerID, ACTIVE) and
	// locks its row until the unit ends. Returns domain.ErrAccountNotFound
	// when no row matches.
	LockAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*domain.Account, error)

	// UpdateBalance writes a new balance for the locked account.
	UpdateBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error

	// InsertTransaction inserts a transaction row.
	InsertTransaction(ctx context.Context, txn *domain.Transaction) error

	// UpdateTransactionStatus moves a transaction to a terminal status.
	UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error

	// CountPending counts the account's PENDING transactions.
	CountPending(ctx context.Context, accountID uuid.UUID) (int64, error)

	// CloseAccount marks the locked account CLOSED and stamps closedAt.
	CloseAccount(ctx context.Context, accountID uuid.UUID) error

	// RegisterIdempotencyKey reserves key for transactionID. The
	// implementation must back this with a uniqueness constraint and
	// return domain.ErrDuplicateKey when another caller holds the key;
	// a read-then-write check is not acceptable.
	RegisterIdempotencyKey(ctx context.Context, key string, transactionID uuid.UUID) error

	// TransactionByReference resolves an idempotency key inside the unit.
	TransactionByReference(ctx context.Context, key string) (*domain.Transaction, error)
}
