package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/juakali/walletd/internal/adapter/middleware"
	"github.com/juakali/walletd/internal/core/ledger"
)

type AccountHandler struct {
	Ledger *ledger.Service
	Log    *zap.Logger
}

type createAccountRequest struct {
	// Accepts a JSON number or a quoted decimal string.
	InitialBalance *decimal.Decimal `json:"initialBalance"`
}

// CreateAccount handles POST /accounts.
func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	ownerID := callerID(c)

	var req createAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request body")
	}

	initialBalance := decimal.Zero
	if req.InitialBalance != nil {
		if req.InitialBalance.IsNegative() {
			return respondError(c, http.StatusBadRequest, "initialBalance must be non-negative")
		}
		initialBalance = *req.InitialBalance
	}

	account, err := h.Ledger.CreateAccount(c.Context(), ownerID, initialBalance)
	if err != nil {
		h.Log.Error("create account failed", zap.Error(err), zap.String("owner_id", ownerID.String()))
		return respondDomainError(c, err)
	}

	return respondData(c, http.StatusCreated, account)
}

// ListAccounts handles GET /accounts with page/limit query params.
func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	ownerID := callerID(c)
	limit, offset, page := pagination(c)

	accounts, total, err := h.Ledger.ListAccounts(c.Context(), ownerID, limit, offset)
	if err != nil {
		h.Log.Error("list accounts failed", zap.Error(err), zap.String("owner_id", ownerID.String()))
		return respondDomainError(c, err)
	}

	return c.Status(http.StatusOK).JSON(paginated(accounts, total, page, limit))
}

// GetAccount handles GET /accounts/:accountId.
func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	ownerID := callerID(c)

	accountID, err := uuid.Parse(c.Params("accountId"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid account id")
	}

	account, err := h.Ledger.GetAccount(c.Context(), ownerID, accountID)
	if err != nil {
		return respondDomainError(c, err)
	}

	return respondData(c, http.StatusOK, account)
}

// CloseAccount handles DELETE /accounts/:accountId.
func (h *AccountHandler) CloseAccount(c *fiber.Ctx) error {
	ownerID := callerID(c)

	accountID, err := uuid.Parse(c.Params("accountId"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid account id")
	}

	if err := h.Ledger.CloseAccount(c.Context(), ownerID, accountID); err != nil {
		return respondDomainError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Account closed successfully",
	})
}

// callerID reads the authenticated owner id placed in locals by the auth
// middleware.
func callerID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(middleware.LocalUserID).(uuid.UUID)
	return id
}
