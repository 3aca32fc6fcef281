package controllers

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/wanpass/wanpass/app/models"
	"github.com/wanpass/wanpass/app/repository"
	"github.com/wanpass/wanpass/internal/pkg/apperrors"
	"github.com/wanpass/wanpass/internal/pkg/storage"
	"github.com/wanpass/wanpass/internal/pkg/upload"
)

// LicenseController handles certificate intake and retrieval.
type LicenseController struct {
	events   repository.EventRepository
	licenses repository.LicenseRepository
	blob     storage.Blob
}

func NewLicenseController(events repository.EventRepository, licenses repository.LicenseRepository, blob storage.Blob) *LicenseController {
	return &LicenseController{events: events, licenses: licenses, blob: blob}
}

func licenseJSON(l *models.License) fiber.Map {
	var originalURL interface{}
	if l.OriginalImageURL != "" {
		originalURL = l.OriginalImageURL
	}
	return fiber.Map{
		"id":                 l.ID,
		"receipt_number":     l.ReceiptNumber,
		"pet_name":           l.PetName,
		"owner_name":         l.OwnerName,
		"animal_type":        l.AnimalType,
		"breed":              l.Breed,
		"color":              l.Color,
		"birth_date":         formatDatePtr(l.BirthDate),
		"gender":             l.Gender,
		"favorite_food":      l.FavoriteFood,
		"favorite_word":      l.FavoriteWord,
		"microchip_no":       l.MicrochipNo,
		"license_image_url":  l.LicenseImageURL,
		"original_image_url": originalURL,
		"created_at":         formatTimePtr(&l.CreatedAt),
	}
}

func licenseListJSON(items []models.License) []fiber.Map {
	out := make([]fiber.Map, 0, len(items))
	for i := range items {
		out = append(out, licenseJSON(&items[i]))
	}
	return out
}

// HandleSaveLicense stores a finished certificate for an event. The images go
// to blob storage first; if the record insert then fails, the uploaded blobs
// are deleted best-effort so a failed submission does not strand storage.
// POST /api/licenses/:code/save (multipart)
func (lc *LicenseController) HandleSaveLicense(c *fiber.Ctx) error {
	code := c.Params("code")
	event, err := lc.events.GetByCode(code)
	if err != nil {
		return jsonError(c, err)
	}
	if !event.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "this event is currently disabled"})
	}

	licenseData, err := readPhotoForm(c, "license_image", true)
	if err != nil {
		return jsonError(c, err)
	}
	originalData, err := readPhotoForm(c, "original_image", false)
	if err != nil {
		return jsonError(c, err)
	}
	if c.FormValue("pet_name") == "" || c.FormValue("owner_name") == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "pet_name and owner_name are required"})
	}

	ctx := c.Context()
	licenseUpload, err := lc.blob.Put(ctx, licenseData, storage.LicenseKey(code), "image/png")
	if err != nil {
		log.Errorf("[License] Upload for event %s failed: %v", code, err)
		return jsonError(c, err)
	}
	var originalUpload *storage.UploadResult
	if originalData != nil {
		originalUpload, err = lc.blob.Put(ctx, originalData, storage.OriginalKey(code), "image/jpeg")
		if err != nil {
			log.Errorf("[License] Original upload for event %s failed: %v", code, err)
			lc.discardBlob(c, licenseUpload.Key)
			return jsonError(c, err)
		}
	}

	lic := &models.License{
		EventID:         event.ID,
		PetName:         c.FormValue("pet_name"),
		OwnerName:       c.FormValue("owner_name"),
		AnimalType:      c.FormValue("animal_type"),
		Breed:           c.FormValue("breed"),
		Color:           c.FormValue("color"),
		BirthDate:       parseDateForm(c.FormValue("birth_date")),
		Gender:          c.FormValue("gender"),
		FavoriteFood:    c.FormValue("favorite_food"),
		FavoriteWord:    c.FormValue("favorite_word"),
		MicrochipNo:     c.FormValue("microchip_no"),
		LicenseImageURL: licenseUpload.URL,
		LicenseKey:      licenseUpload.Key,
	}
	if originalUpload != nil {
		lic.OriginalImageURL = originalUpload.URL
		lic.OriginalKey = originalUpload.Key
	}

	if err := lc.licenses.Create(lic); err != nil {
		log.Errorf("[License] Create for event %s failed: %v", code, err)
		lc.discardBlob(c, licenseUpload.Key)
		if originalUpload != nil {
			lc.discardBlob(c, originalUpload.Key)
		}
		return jsonError(c, err)
	}

	log.Infof("[License] Saved license %d (receipt %s) for event %s", lic.ID, lic.ReceiptNumber, code)
	return c.JSON(fiber.Map{
		"id":                 lic.ID,
		"license_image_url":  lic.LicenseImageURL,
		"original_image_url": emptyAsNil(lic.OriginalImageURL),
		"receipt_number":     lic.ReceiptNumber,
		"message":            "免許証を保存しました",
	})
}

// HandleListLicensesByCode returns every license of an event, newest first.
// GET /api/licenses/:code
func (lc *LicenseController) HandleListLicensesByCode(c *fiber.Ctx) error {
	event, err := lc.events.GetByCode(c.Params("code"))
	if err != nil {
		return jsonError(c, err)
	}
	return lc.listByEvent(c, event.ID)
}

// HandleListLicensesByEventID is the id-keyed variant used by the admin UI.
// GET /api/licenses/by-event-id/:id
func (lc *LicenseController) HandleListLicensesByEventID(c *fiber.Ctx) error {
	event, err := lc.eventByIDParam(c)
	if err != nil {
		return jsonError(c, err)
	}
	return lc.listByEvent(c, event.ID)
}

func (lc *LicenseController) listByEvent(c *fiber.Ctx, eventID uint) error {
	items, err := lc.licenses.ListByEvent(eventID)
	if err != nil {
		log.Errorf("[License] List for event %d failed: %v", eventID, err)
		return jsonError(c, err)
	}
	return c.JSON(licenseListJSON(items))
}

// HandleListLicensesPaginatedByCode returns one page of an event's licenses.
// GET /api/licenses/:code/paginated?page=&per_page=
func (lc *LicenseController) HandleListLicensesPaginatedByCode(c *fiber.Ctx) error {
	event, err := lc.events.GetByCode(c.Params("code"))
	if err != nil {
		return jsonError(c, err)
	}
	return lc.listPaginated(c, event.ID)
}

// HandleListLicensesPaginatedByEventID is the id-keyed paginated variant.
// GET /api/licenses/by-event-id/:id/paginated
func (lc *LicenseController) HandleListLicensesPaginatedByEventID(c *fiber.Ctx) error {
	event, err := lc.eventByIDParam(c)
	if err != nil {
		return jsonError(c, err)
	}
	return lc.listPaginated(c, event.ID)
}

func (lc *LicenseController) listPaginated(c *fiber.Ctx, eventID uint) error {
	page, err := parseIntQuery(c, "page", 1)
	if err != nil {
		return jsonError(c, err)
	}
	perPage, err := parseIntQuery(c, "per_page", repository.DefaultPerPage)
	if err != nil {
		return jsonError(c, err)
	}

	result, err := lc.licenses.ListByEventPaginated(eventID, page, perPage)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(fiber.Map{
		"items":       licenseListJSON(result.Items),
		"total":       result.Total,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"total_pages": result.TotalPages,
	})
}

// HandleListNewLicensesByCode returns licenses newer than since_id plus the
// event total, for polling display walls.
// GET /api/licenses/:code/new?since_id=
func (lc *LicenseController) HandleListNewLicensesByCode(c *fiber.Ctx) error {
	event, err := lc.events.GetByCode(c.Params("code"))
	if err != nil {
		return jsonError(c, err)
	}
	return lc.listNewSince(c, event.ID)
}

// HandleListNewLicensesByEventID is the id-keyed polling variant.
// GET /api/licenses/by-event-id/:id/new?since_id=
func (lc *LicenseController) HandleListNewLicensesByEventID(c *fiber.Ctx) error {
	event, err := lc.eventByIDParam(c)
	if err != nil {
		return jsonError(c, err)
	}
	return lc.listNewSince(c, event.ID)
}

func (lc *LicenseController) listNewSince(c *fiber.Ctx, eventID uint) error {
	sinceID, err := parseIntQuery(c, "since_id", 0)
	if err != nil || sinceID < 0 {
		return jsonError(c, fmt.Errorf("%w: since_id must be >= 0", apperrors.ErrValidation))
	}

	delta, err := lc.licenses.ListNewSince(eventID, uint(sinceID))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(fiber.Map{
		"items":       licenseListJSON(delta.Items),
		"total_count": delta.TotalCount,
	})
}

// HandleDeleteLicense removes a license. Blob cleanup runs first and is
// log-and-continue; the record removal always wins.
// DELETE /api/admin/licenses/:id
func (lc *LicenseController) HandleDeleteLicense(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return jsonError(c, err)
	}
	lic, err := lc.licenses.GetByID(id)
	if err != nil {
		return jsonError(c, err)
	}

	deleteLicenseBlobs(c, lc.blob, lic)

	if err := lc.licenses.Delete(id); err != nil {
		log.Errorf("[License] Delete %d failed: %v", id, err)
		return jsonError(c, err)
	}
	log.Infof("[License] Deleted license %d", id)
	return c.JSON(fiber.Map{"message": "license deleted"})
}

func (lc *LicenseController) eventByIDParam(c *fiber.Ctx) (*models.Event, error) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return nil, err
	}
	return lc.events.GetByID(id)
}

func (lc *LicenseController) discardBlob(c *fiber.Ctx, key string) {
	if err := lc.blob.Delete(c.Context(), key); err != nil {
		log.Warnf("[License] Compensating blob delete %s failed: %v", key, err)
	}
}

// readPhotoForm reads and validates one multipart image field. A missing
// optional field returns nil bytes without error.
func readPhotoForm(c *fiber.Ctx, field string, required bool) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if required {
			return nil, fmt.Errorf("%w: %s is required", apperrors.ErrValidation, field)
		}
		return nil, nil
	}
	if fh.Size > upload.MaxPhotoBytes {
		return nil, fmt.Errorf("%w: %s exceeds the size limit", apperrors.ErrValidation, field)
	}
	data, err := readMultipartFile(fh)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read %s", apperrors.ErrValidation, field)
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if _, err := upload.ValidatePhoto(fh.Filename, head); err != nil {
		return nil, err
	}
	return data, nil
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func emptyAsNil(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
