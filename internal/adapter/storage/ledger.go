package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/juakali/walletd/internal/core/domain"
	"github.com/juakali/walletd/internal/core/ledger"
)

const pgUniqueViolation = "23505"

// LedgerStore is the Postgres implementation of ledger.Store. Exclusive
// access to an account during a read-modify-write span comes from
// SELECT ... FOR UPDATE; idempotency keys are protected by the primary key
// on idempotency_keys.
type LedgerStore struct {
	db *pgxpool.Pool
}

var _ ledger.Store = (*LedgerStore)(nil)

func NewLedgerStore(db *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{db: db}
}

// WithinTx runs fn inside one database transaction. Any error from fn rolls
// the transaction back and propagates unchanged.
func (s *LedgerStore) WithinTx(ctx context.Context, fn func(tx ledger.StoreTx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *LedgerStore) CreateAccount(ctx context.Context, account *domain.Account) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO accounts (id, owner_id, balance, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		account.ID, account.OwnerID, account.Balance, account.Status, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *LedgerStore) FindAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*domain.Account, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, owner_id, balance, status, closed_at, created_at
		FROM accounts
		WHERE id = $1 AND owner_id = $2`,
		accountID, ownerID,
	)
	return scanAccount(row)
}

func (s *LedgerStore) AccountsByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.Account, int64, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, owner_id, balance, status, closed_at, created_at
		FROM accounts
		WHERE owner_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0, limit)
	for rows.Next() {
		var acc domain.Account
		if err := rows.Scan(&acc.ID, &acc.OwnerID, &acc.Balance, &acc.Status, &acc.ClosedAt, &acc.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE owner_id = $1`, ownerID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	return accounts, total, nil
}

func (s *LedgerStore) TransactionByReference(ctx context.Context, key string) (*domain.Transaction, error) {
	return transactionByReference(ctx, s.db, key)
}

// ledgerTx implements ledger.StoreTx over one open pgx transaction.
type ledgerTx struct {
	tx pgx.Tx
}

func (t *ledgerTx) LockAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*domain.Account, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT id, owner_id, balance, status, closed_at, created_at
		FROM accounts
		WHERE id = $1 AND owner_id = $2 AND status = $3
		FOR UPDATE`,
		accountID, ownerID, domain.AccountActive,
	)
	return scanAccount(row)
}

func (t *ledgerTx) UpdateBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	_, err := t.tx.Exec(ctx, `UPDATE accounts SET balance = $1 WHERE id = $2`, balance, accountID)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}

func (t *ledgerTx) InsertTransaction(ctx context.Context, txn *domain.Transaction) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO transactions (id, account_id, amount, type, status, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		txn.ID, txn.AccountID, txn.Amount, txn.Type, txn.Status, txn.ReferenceID, txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (t *ledgerTx) UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	_, err := t.tx.Exec(ctx, `UPDATE transactions SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	return nil
}

func (t *ledgerTx) CountPending(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := t.tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM transactions WHERE account_id = $1 AND status = $2`,
		accountID, domain.StatusPending,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending transactions: %w", err)
	}
	return count, nil
}

func (t *ledgerTx) CloseAccount(ctx context.Context, accountID uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE accounts SET status = $1, closed_at = NOW() WHERE id = $2`,
		domain.AccountClosed, accountID,
	)
	if err != nil {
		return fmt.Errorf("close account: %w", err)
	}
	return nil
}

func (t *ledgerTx) RegisterIdempotencyKey(ctx context.Context, key string, transactionID uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO idempotency_keys (key, transaction_id) VALUES ($1, $2)`,
		key, transactionID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrDuplicateKey
		}
		return fmt.Errorf("register idempotency key: %w", err)
	}
	return nil
}

func (t *ledgerTx) TransactionByReference(ctx context.Context, key string) (*domain.Transaction, error) {
	return transactionByReference(ctx, t.tx, key)
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// transactionByReference follows the idempotency_keys row to its
// transaction. Absence is (nil, nil): a missing key just means first-time
// processing.
func transactionByReference(ctx context.Context, q queryer, key string) (*domain.Transaction, error) {
	row := q.QueryRow(ctx, `
		SELECT t.id, t.account_id, t.amount, t.type, t.status, t.reference_id, t.created_at
		FROM idempotency_keys k
		JOIN transactions t ON t.id = k.transaction_id
		WHERE k.key = $1`,
		key,
	)

	var txn domain.Transaction
	err := row.Scan(&txn.ID, &txn.AccountID, &txn.Amount, &txn.Type, &txn.Status, &txn.ReferenceID, &txn.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve idempotency key: %w", err)
	}
	return &txn, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	err := row.Scan(&acc.ID, &acc.OwnerID, &acc.Balance, &acc.Status, &acc.ClosedAt, &acc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return &acc, nil
}
