package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/juakali/walletd/internal/core/domain"
	"github.com/juakali/walletd/internal/core/security"
)

// Locals keys set by Protected for downstream handlers.
const (
	LocalUserID = "user_id"
	LocalEmail  = "user_email"
	LocalRole   = "user_role"
)

// Protected verifies the Bearer token and stores the caller's identity in
// the request locals.
func Protected(jwtSecret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c, "Invalid Authorization header format")
		}

		userID, claims, err := security.ParseToken(parts[1], jwtSecret)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(LocalUserID, userID)
		c.Locals(LocalEmail, claims.Email)
		c.Locals(LocalRole, claims.Role)

		return c.Next()
	}
}

// RequireRole restricts a route to callers holding one of the given roles.
// Must run after Protected.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(domain.Role)
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return c.Status(http.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"message": "Access denied"},
		})
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   fiber.Map{"message": msg},
	})
}
