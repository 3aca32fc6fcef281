package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/wanpass/wanpass/internal/pkg/apperrors"
)

var validate = validator.New()

// statusForError maps the error taxonomy to HTTP status codes. One place, so
// handlers return plain errors and stay free of status juggling.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperrors.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperrors.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrDuplicateCode):
		return fiber.StatusConflict
	case errors.Is(err, apperrors.ErrUpstream):
		return fiber.StatusBadGateway
	case errors.Is(err, apperrors.ErrRender):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func jsonError(c *fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
}

// formatTimePtr renders an optional timestamp as RFC3339 UTC, or nil.
func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// formatDatePtr renders an optional date as YYYY-MM-DD, or nil.
func formatDatePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

// parseDateForm parses an optional YYYY-MM-DD form value. Unparseable input
// is treated as absent, matching the lenient intake behavior.
func parseDateForm(value string) *time.Time {
	if value == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &d
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperrors.ErrValidation
	}
	return uint(v), nil
}

func parseIntQuery(c *fiber.Ctx, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.ErrValidation
	}
	return v, nil
}
