package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juakali/walletd/internal/core/domain"
	"github.com/juakali/walletd/internal/core/ledger"
	"github.com/juakali/walletd/internal/core/user"
)

// MemoryStore is an in-memory implementation of ledger.Store and user.Store
// used by tests. Units of work serialize on one mutex and operate on a
// snapshot that is restored when the unit fails, which gives the same
// commit-or-rollback and isolation guarantees the Postgres store gets from
// row locks.
type MemoryStore struct {
	mu sync.Mutex

	accounts     map[uuid.UUID]*domain.Account
	accountOrder []uuid.UUID
	transactions map[uuid.UUID]*domain.Transaction
	keys         map[string]domain.IdempotencyRecord
	users        map[uuid.UUID]*domain.User
}

var (
	_ ledger.Store = (*MemoryStore)(nil)
	_ user.Store   = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     make(map[uuid.UUID]*domain.Account),
		transactions: make(map[uuid.UUID]*domain.Transaction),
		keys:         make(map[string]domain.IdempotencyRecord),
		users:        make(map[uuid.UUID]*domain.User),
	}
}

func (m *MemoryStore) WithinTx(ctx context.Context, fn func(tx ledger.StoreTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(&memoryTx{store: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *MemoryStore) CreateAccount(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *account
	m.accounts[account.ID] = &cp
	m.accountOrder = append(m.accountOrder, account.ID)
	return nil
}

func (m *MemoryStore) FindAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[accountID]
	if !ok || acc.OwnerID != ownerID {
		return nil, domain.ErrAccountNotFound
	}
	cp := *acc
	return &cp, nil
}

func (m *MemoryStore) AccountsByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]domain.Account, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var owned []domain.Account
	for _, id := range m.accountOrder {
		if acc := m.accounts[id]; acc.OwnerID == ownerID {
			owned = append(owned, *acc)
		}
	}

	total := int64(len(owned))
	if offset >= len(owned) {
		return []domain.Account{}, total, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], total, nil
}

func (m *MemoryStore) TransactionByReference(ctx context.Context, key string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookupByReference(key)
}

func (m *MemoryStore) lookupByReference(key string) (*domain.Transaction, error) {
	record, ok := m.keys[key]
	if !ok {
		return nil, nil
	}
	txn, ok := m.transactions[record.TransactionID]
	if !ok {
		return nil, nil
	}
	cp := *txn
	return &cp, nil
}

// Transactions returns copies of every stored transaction for an account,
// for test assertions.
func (m *MemoryStore) Transactions(accountID uuid.UUID) []domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Transaction
	for _, txn := range m.transactions {
		if txn.AccountID == accountID {
			out = append(out, *txn)
		}
	}
	return out
}

func (m *MemoryStore) CreateUser(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return domain.ErrUserExists
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemoryStore) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MemoryStore) UserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

type memorySnapshot struct {
	accounts     map[uuid.UUID]*domain.Account
	accountOrder []uuid.UUID
	transactions map[uuid.UUID]*domain.Transaction
	keys         map[string]domain.IdempotencyRecord
}

// snapshot and restore implement rollback; the mutex is already held.
func (m *MemoryStore) snapshot() memorySnapshot {
	snap := memorySnapshot{
		accounts:     make(map[uuid.UUID]*domain.Account, len(m.accounts)),
		accountOrder: append([]uuid.UUID(nil), m.accountOrder...),
		transactions: make(map[uuid.UUID]*domain.Transaction, len(m.transactions)),
		keys:         make(map[string]domain.IdempotencyRecord, len(m.keys)),
	}
	for id, acc := range m.accounts {
		cp := *acc
		snap.accounts[id] = &cp
	}
	for id, txn := range m.transactions {
		cp := *txn
		snap.transactions[id] = &cp
	}
	for key, record := range m.keys {
		snap.keys[key] = record
	}
	return snap
}

func (m *MemoryStore) restore(snap memorySnapshot) {
	m.accounts = snap.accounts
	m.accountOrder = snap.accountOrder
	m.transactions = snap.transactions
	m.keys = snap.keys
}

// memoryTx mutates the store in place; WithinTx handles rollback.
type memoryTx struct {
	store *MemoryStore
}

var _ ledger.StoreTx = (*memoryTx)(nil)

func (t *memoryTx) LockAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*domain.Account, error) {
	acc, ok := t.store.accounts[accountID]
	if !ok || acc.OwnerID != ownerID || acc.Status != domain.AccountActive {
		return nil, domain.ErrAccountNotFound
	}
	cp := *acc
	return &cp, nil
}

func (t *memoryTx) UpdateBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	acc, ok := t.store.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Balance = balance
	return nil
}

func (t *memoryTx) InsertTransaction(ctx context.Context, txn *domain.Transaction) error {
	cp := *txn
	t.store.transactions[txn.ID] = &cp
	return nil
}

func (t *memoryTx) UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	txn, ok := t.store.transactions[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	txn.Status = status
	return nil
}

func (t *memoryTx) CountPending(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	for _, txn := range t.store.transactions {
		if txn.AccountID == accountID && txn.Status == domain.StatusPending {
			count++
		}
	}
	return count, nil
}

func (t *memoryTx) CloseAccount(ctx context.Context, accountID uuid.UUID) error {
	acc, ok := t.store.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	now := time.Now().UTC()
	acc.Status = domain.AccountClosed
	acc.ClosedAt = &now
	return nil
}

func (t *memoryTx) RegisterIdempotencyKey(ctx context.Context, key string, transactionID uuid.UUID) error {
	if _, exists := t.store.keys[key]; exists {
		return domain.ErrDuplicateKey
	}
	t.store.keys[key] = domain.IdempotencyRecord{
		Key:           key,
		TransactionID: transactionID,
		CreatedAt:     time.Now().UTC(),
	}
	return nil
}

func (t *memoryTx) TransactionByReference(ctx context.Context, key string) (*domain.Transaction, error) {
	return t.store.lookupByReference(key)
}
