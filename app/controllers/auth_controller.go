package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/wanpass/wanpass/app/models"
	"github.com/wanpass/wanpass/app/repository"
	"github.com/wanpass/wanpass/internal/pkg/apperrors"
	"github.com/wanpass/wanpass/internal/pkg/auth"
	"github.com/wanpass/wanpass/internal/pkg/middleware"
)

// AuthController handles operator login and identity.
type AuthController struct {
	admins repository.AdminRepository
}

func NewAuthController(admins repository.AdminRepository) *AuthController {
	return &AuthController{admins: admins}
}

// HandleLogin exchanges form credentials for a bearer token.
// POST /api/admin/login (form fields: username, password)
func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password are required"})
	}

	admin, err := ac.admins.GetByUsername(username)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Errorf("[Auth] Login lookup failed for %s: %v", username, err)
		}
		return unauthorizedLogin(c)
	}
	if !admin.CheckPassword(password) {
		return unauthorizedLogin(c)
	}

	token, err := auth.CreateAccessToken(admin.Username)
	if err != nil {
		log.Errorf("[Auth] Token creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not create token"})
	}

	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// HandleMe returns the authenticated admin.
// GET /api/admin/me
func (ac *AuthController) HandleMe(c *fiber.Ctx) error {
	admin, ok := c.Locals(middleware.AdminLocalKey).(*models.Admin)
	if !ok || admin == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	return c.JSON(fiber.Map{
		"id":       admin.ID,
		"username": admin.Username,
	})
}

func unauthorizedLogin(c *fiber.Ctx) error {
	c.Set("WWW-Authenticate", "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid username or password"})
}
