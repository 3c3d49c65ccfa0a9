package handler

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/juakali/walletd/internal/core/domain"
)

// respondData wraps a successful payload in the standard envelope.
func respondData(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// respondError emits the standard error envelope, echoing the request id so
// clients can correlate failures with logs.
func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success":   false,
		"error":     fiber.Map{"message": message},
		"requestId": c.GetRespHeader(fiber.HeaderXRequestID),
	})
}

// respondDomainError maps the typed domain outcomes onto transport status
// codes. Anything unrecognised is a storage fault and becomes a generic 500
// so internals never leak to clients.
func respondDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return respondError(c, http.StatusNotFound, "Account not found")
	case errors.Is(err, domain.ErrInsufficientFunds):
		return respondError(c, http.StatusConflict, "Insufficient balance")
	case errors.Is(err, domain.ErrNonZeroBalance):
		return respondError(c, http.StatusConflict, "Account balance must be zero before closing")
	case errors.Is(err, domain.ErrPendingTransactions):
		return respondError(c, http.StatusConflict, "Account has pending transactions")
	case errors.Is(err, domain.ErrUserExists):
		return respondError(c, http.StatusConflict, "User already exists")
	case errors.Is(err, domain.ErrUserNotFound):
		return respondError(c, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return respondError(c, http.StatusUnauthorized, "Invalid email or password")
	default:
		return respondError(c, http.StatusInternalServerError, "Internal Server Error")
	}
}
