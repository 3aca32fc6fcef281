package controllers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/wanpass/wanpass/app/repository"
	"github.com/wanpass/wanpass/internal/pkg/cache"
)

// eventCacheTTL keeps public lookups cheap during an event without letting a
// deactivated code linger for long if invalidation is missed.
const eventCacheTTL = 60 * time.Second

func eventCacheKey(code string) string {
	return fmt.Sprintf("event:%s", code)
}

// EventController serves the public event lookup.
type EventController struct {
	events repository.EventRepository
}

func NewEventController(events repository.EventRepository) *EventController {
	return &EventController{events: events}
}

// HandleGetEventByCode resolves an intake code for participants. Unknown
// codes are NotFound; known but deactivated codes are Forbidden, so a QR
// poster keeps telling the truth after an event closes.
// GET /api/events/:code
func (ec *EventController) HandleGetEventByCode(c *fiber.Ctx) error {
	code := c.Params("code")

	if cached, err := cache.Get(eventCacheKey(code)); err == nil {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	event, err := ec.events.GetByCode(code)
	if err != nil {
		return jsonError(c, err)
	}
	if !event.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "this event is currently disabled"})
	}

	body := fiber.Map{
		"event_code":      event.EventCode,
		"name":            event.Name,
		"issue_location":  event.IssueLocation,
		"issue_date":      formatDatePtr(event.IssueDate),
		"auto_issue_date": event.AutoIssueDate,
	}
	if raw, err := json.Marshal(body); err == nil {
		cache.Set(eventCacheKey(code), string(raw), eventCacheTTL)
	} else {
		log.Warnf("[Event] Could not marshal event %s for cache: %v", code, err)
	}
	return c.JSON(body)
}
