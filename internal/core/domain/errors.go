package domain

import "errors"

// Domain rule violations. These are expected outcomes of well-formed
// requests and are returned as typed results, never treated as faults.
var (
	// ErrAccountNotFound covers "does not exist", "owned by someone else"
	// and "already closed". Collapsing the three keeps account ids
	// unenumerable across owners.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientFunds indicates a debit that would take the balance
	// below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNonZeroBalance indicates a close attempt on an account that still
	// holds money.
	ErrNonZeroBalance = errors.New("account balance must be zero")
	// ErrPendingTransactions indicates a close attempt while transactions
	// are still PENDING.
	ErrPendingTransactions = errors.New("account has pending transactions")
	// ErrDuplicateKey signals that another caller already registered the
	// idempotency key.
	ErrDuplicateKey = errors.New("idempotency key already registered")
)

// Identity errors.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
