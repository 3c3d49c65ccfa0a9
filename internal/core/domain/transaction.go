package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeDebit  TransactionType = "DEBIT"
	TypeCredit TransactionType = "CREDIT"
)

// Valid reports whether t is one of the two supported transaction types.
func (t TransactionType) Valid() bool {
	return t == TypeDebit || t == TypeCredit
}

type TransactionStatus string

const (
	StatusPending TransactionStatus = "PENDING"
	StatusSuccess TransactionStatus = "SUCCESS"
	StatusFailed  TransactionStatus = "FAILED"

	// StatusReversed is reserved for a future compensation workflow.
	// Nothing in the service produces it today.
	StatusReversed TransactionStatus = "REVERSED"
)

// Transaction is one signed balance-changing attempt against an account.
// Amount is always the positive magnitude; the direction comes from Type.
// Status starts PENDING and reaches exactly one of SUCCESS or FAILED.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	AccountID   uuid.UUID         `json:"accountId"`
	Amount      decimal.Decimal   `json:"amount"`
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
	ReferenceID string            `json:"referenceId"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// NewTransaction builds a PENDING transaction carrying the idempotency key
// that produced it as ReferenceID.
func NewTransaction(accountID uuid.UUID, amount decimal.Decimal, txType TransactionType, referenceID string) *Transaction {
	return &Transaction{
		ID:          uuid.New(),
		AccountID:   accountID,
		Amount:      amount,
		Type:        txType,
		Status:      StatusPending,
		ReferenceID: referenceID,
		CreatedAt:   time.Now().UTC(),
	}
}

// Delta is the signed effect of the transaction on a balance: -Amount for
// DEBIT, +Amount for CREDIT.
func (t *Transaction) Delta() decimal.Decimal {
	if t.Type == TypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IdempotencyRecord pins a caller-supplied key to the one transaction it
// produced. Records are written once and never updated or deleted.
type IdempotencyRecord struct {
	Key           string
	TransactionID uuid.UUID
	CreatedAt     time.Time
}
