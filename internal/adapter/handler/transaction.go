package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/juakali/walletd/internal/core/domain"
	"github.com/juakali/walletd/internal/core/ledger"
)

type TransactionHandler struct {
	Ledger *ledger.Service
	Log    *zap.Logger
}

type createTransactionRequest struct {
	Amount         decimal.Decimal        `json:"amount"`
	Type           domain.TransactionType `json:"type"`
	IdempotencyKey string                 `json:"idempotencyKey"`
}

// CreateTransaction handles POST /accounts/:accountId/transactions. The
// processor's preconditions (positive amount, known type, non-empty key)
// are enforced here, before the core is invoked.
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	ownerID := callerID(c)

	accountID, err := uuid.Parse(c.Params("accountId"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid account id")
	}

	var req createTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request body")
	}

	if !req.Amount.IsPositive() {
		return respondError(c, http.StatusBadRequest, "amount must be positive")
	}
	if !req.Type.Valid() {
		return respondError(c, http.StatusBadRequest, "type must be DEBIT or CREDIT")
	}
	if req.IdempotencyKey == "" {
		return respondError(c, http.StatusBadRequest, "idempotencyKey is required")
	}

	txn, err := h.Ledger.Apply(c.Context(), ownerID, accountID, req.Amount, req.Type, req.IdempotencyKey)
	if err != nil {
		h.Log.Warn("transaction rejected",
			zap.Error(err),
			zap.String("account_id", accountID.String()),
			zap.String("reference_id", req.IdempotencyKey),
		)
		return respondDomainError(c, err)
	}

	return respondData(c, http.StatusCreated, txn)
}
