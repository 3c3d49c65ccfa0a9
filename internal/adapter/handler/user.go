package handler

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juakali/walletd/internal/core/user"
)

type UserHandler struct {
	Users *user.Service
	Log   *zap.Logger
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /users.
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request body")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return respondError(c, http.StatusBadRequest, "A valid email is required")
	}
	if len(req.Password) < 8 {
		return respondError(c, http.StatusBadRequest, "Password must be at least 8 characters")
	}

	u, err := h.Users.Register(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondDomainError(c, err)
	}

	return respondData(c, http.StatusCreated, u)
}

// Login handles POST /users/login.
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request body")
	}

	token, err := h.Users.Login(c.Context(), strings.TrimSpace(strings.ToLower(req.Email)), req.Password)
	if err != nil {
		return respondDomainError(c, err)
	}

	return respondData(c, http.StatusOK, fiber.Map{"token": token})
}

// Me handles GET /users/me.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	u, err := h.Users.Me(c.Context(), callerID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondData(c, http.StatusOK, u)
}

// Delete handles DELETE /users/:id (admin only, guarded by RequireRole).
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid user id")
	}

	if err := h.Users.Delete(c.Context(), id); err != nil {
		return respondDomainError(c, err)
	}

	h.Log.Info("user removed by admin", zap.String("user_id", id.String()))
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "User deleted",
	})
}
