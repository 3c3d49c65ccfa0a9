package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountActive AccountStatus = "ACTIVE"
	AccountClosed AccountStatus = "CLOSED"
)

// Account holds a single owner's balance. The balance is an exact decimal,
// never negative after a committed operation. Status only ever moves
// ACTIVE -> CLOSED; closed accounts are kept, never deleted.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	OwnerID   uuid.UUID       `json:"-"`
	Balance   decimal.Decimal `json:"balance"`
	Status    AccountStatus   `json:"status"`
	ClosedAt  *time.Time      `json:"closedAt,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewAccount builds an ACTIVE account for the owner. initialBalance must be
// validated (>= 0) by the caller before this point.
func NewAccount(ownerID uuid.UUID, initialBalance decimal.Decimal) *Account {
	return &Account{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Balance:   initialBalance,
		Status:    AccountActive,
		CreatedAt: time.Now().UTC(),
	}
}
