package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/wanpass/wanpass/app/repository"
	"github.com/wanpass/wanpass/internal/pkg/apperrors"
	"github.com/wanpass/wanpass/internal/pkg/auth"
)

// AdminLocalKey is the fiber.Ctx locals key holding the authenticated
// operator account.
const AdminLocalKey = "ADMIN"

// RequireAdmin authenticates requests carrying an operator bearer token.
func RequireAdmin(admins repository.AdminRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing bearer token"})
		}

		username, err := auth.ParseAccessToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid or expired token"})
		}

		admin, err := admins.GetByUsername(username)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Unknown account"})
			}
			log.Errorf("[Auth] Admin lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Authentication check failed"})
		}

		c.Locals(AdminLocalKey, admin)
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
