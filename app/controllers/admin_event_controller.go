package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/wanpass/wanpass/app/models"
	"github.com/wanpass/wanpass/app/repository"
	"github.com/wanpass/wanpass/internal/pkg/cache"
	"github.com/wanpass/wanpass/internal/pkg/storage"
)

// AdminEventController handles event CRUD for operators.
type AdminEventController struct {
	events   repository.EventRepository
	licenses repository.LicenseRepository
	blob     storage.Blob
}

func NewAdminEventController(events repository.EventRepository, licenses repository.LicenseRepository, blob storage.Blob) *AdminEventController {
	return &AdminEventController{events: events, licenses: licenses, blob: blob}
}

type eventCreateRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	IssueLocation string `json:"issue_location" validate:"required,max=200"`
	IssueDate     string `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
	AutoIssueDate bool   `json:"auto_issue_date"`
}

type eventUpdateRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=200"`
	IssueLocation *string `json:"issue_location" validate:"omitempty,max=200"`
	IssueDate     *string `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
	AutoIssueDate *bool   `json:"auto_issue_date"`
	IsActive      *bool   `json:"is_active"`
}

func eventJSON(e *models.Event) fiber.Map {
	return fiber.Map{
		"id":              e.ID,
		"event_code":      e.EventCode,
		"name":            e.Name,
		"issue_location":  e.IssueLocation,
		"issue_date":      formatDatePtr(e.IssueDate),
		"auto_issue_date": e.AutoIssueDate,
		"is_active":       e.IsActive,
		"created_at":      formatTimePtr(&e.CreatedAt),
		"updated_at":      formatTimePtr(&e.UpdatedAt),
	}
}

// HandleListEvents returns all events, newest first.
// GET /api/admin/events
func (ec *AdminEventController) HandleListEvents(c *fiber.Ctx) error {
	events, err := ec.events.List()
	if err != nil {
		log.Errorf("[Event] List failed: %v", err)
		return jsonError(c, err)
	}
	out := make([]fiber.Map, 0, len(events))
	for i := range events {
		out = append(out, eventJSON(&events[i]))
	}
	return c.JSON(out)
}

// HandleCreateEvent creates an event with a fresh intake code.
// POST /api/admin/events
func (ec *AdminEventController) HandleCreateEvent(c *fiber.Ctx) error {
	var req eventCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	event := &models.Event{
		Name:          req.Name,
		IssueLocation: req.IssueLocation,
		IssueDate:     parseDateForm(req.IssueDate),
		AutoIssueDate: req.AutoIssueDate,
		IsActive:      true,
	}
	if err := ec.events.Create(event); err != nil {
		log.Errorf("[Event] Create failed: %v", err)
		return jsonError(c, err)
	}
	log.Infof("[Event] Created event %d (%s)", event.ID, event.EventCode)
	return c.Status(fiber.StatusCreated).JSON(eventJSON(event))
}

// HandleGetEvent returns one event by id.
// GET /api/admin/events/:id
func (ec *AdminEventController) HandleGetEvent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, err)
	}
	event, err := ec.events.GetByID(id)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(eventJSON(event))
}

// HandleUpdateEvent applies a partial update. Absent fields keep their
// current value.
// PUT /api/admin/events/:id
func (ec *AdminEventController) HandleUpdateEvent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, err)
	}
	var req eventUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	event, err := ec.events.GetByID(id)
	if err != nil {
		return jsonError(c, err)
	}

	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.IssueLocation != nil {
		event.IssueLocation = *req.IssueLocation
	}
	if req.IssueDate != nil {
		event.IssueDate = parseDateForm(*req.IssueDate)
	}
	if req.AutoIssueDate != nil {
		event.AutoIssueDate = *req.AutoIssueDate
	}
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}

	if err := ec.events.Update(event); err != nil {
		log.Errorf("[Event] Update %d failed: %v", id, err)
		return jsonError(c, err)
	}
	cache.Delete(eventCacheKey(event.EventCode))
	return c.JSON(eventJSON(event))
}

// HandleDeleteEvent removes an event and its licenses. Stored blobs of owned
// licenses are deleted best-effort before the records go.
// DELETE /api/admin/events/:id
func (ec *AdminEventController) HandleDeleteEvent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, err)
	}
	event, err := ec.events.GetByID(id)
	if err != nil {
		return jsonError(c, err)
	}

	owned, err := ec.licenses.ListByEvent(event.ID)
	if err != nil {
		log.Warnf("[Event] Could not list licenses of event %d for blob cleanup: %v", id, err)
	}
	for i := range owned {
		deleteLicenseBlobs(c, ec.blob, &owned[i])
	}

	if err := ec.events.Delete(event.ID); err != nil {
		log.Errorf("[Event] Delete %d failed: %v", id, err)
		return jsonError(c, err)
	}
	cache.Delete(eventCacheKey(event.EventCode))
	log.Infof("[Event] Deleted event %d (%s) with %d licenses", id, event.EventCode, len(owned))
	return c.JSON(fiber.Map{"message": "event deleted"})
}

// deleteLicenseBlobs removes a license's stored images. Failures are logged
// and ignored; the record delete always wins.
func deleteLicenseBlobs(c *fiber.Ctx, blob storage.Blob, lic *models.License) {
	if blob == nil {
		return
	}
	if lic.LicenseKey != "" {
		if err := blob.Delete(c.Context(), lic.LicenseKey); err != nil {
			log.Warnf("[License] Blob delete %s failed: %v", lic.LicenseKey, err)
		}
	}
	if lic.OriginalKey != "" {
		if err := blob.Delete(c.Context(), lic.OriginalKey); err != nil {
			log.Warnf("[License] Blob delete %s failed: %v", lic.OriginalKey, err)
		}
	}
}
