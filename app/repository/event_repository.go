package repository

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/wanpass/wanpass/app/models"
	"github.com/wanpass/wanpass/internal/pkg/apperrors"
	"github.com/wanpass/wanpass/internal/pkg/eventcode"
)

// eventRepository implements the EventRepository interface
type eventRepository struct {
	db *gorm.DB
	// newCode produces intake codes; swappable so tests can force collisions.
	newCode func() (string, error)
}

// NewEventRepository creates a new event repository instance
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db, newCode: eventcode.New}
}

// NewEventRepositoryWithGenerator creates an event repository with a custom
// code generator.
func NewEventRepositoryWithGenerator(db *gorm.DB, newCode func() (string, error)) EventRepository {
	return &eventRepository{db: db, newCode: newCode}
}

// Create inserts a new event with a freshly generated intake code. A code
// collision is retried once with a new code; the collision never surfaces to
// the caller unless the retry collides too.
func (r *eventRepository) Create(event *models.Event) error {
	for attempt := 0; attempt < 2; attempt++ {
		code, err := r.newCode()
		if err != nil {
			return err
		}
		event.EventCode = code

		err = r.db.Create(event).Error
		if err == nil {
			return nil
		}
		if !isDuplicateKey(err) {
			return err
		}
		log.Warnf("[EventRepository] Event code collision on %q, retrying", code)
		// Clear the surrogate id a failed insert may have assigned
		event.ID = 0
	}
	return apperrors.ErrDuplicateCode
}

// GetByID retrieves an event by its surrogate id
func (r *eventRepository) GetByID(id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// GetByCode retrieves an event by its public intake code
func (r *eventRepository) GetByCode(code string) (*models.Event, error) {
	var event models.Event
	err := r.db.Where("event_code = ?", code).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// List retrieves all events, newest created first
func (r *eventRepository) List() ([]models.Event, error) {
	var events []models.Event
	err := r.db.Order("created_at DESC, id DESC").Find(&events).Error
	return events, err
}

// Update persists a modified event
func (r *eventRepository) Update(event *models.Event) error {
	return r.db.Save(event).Error
}

// Delete removes an event and all licenses it owns in a single transaction,
// so a license can never outlive its event.
func (r *eventRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&models.License{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Event{}, id).Error
	})
}

// isDuplicateKey reports whether err is a unique constraint violation. GORM
// only translates these when the dialector supports it, so the raw driver
// messages are matched as well (MySQL and SQLite).
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
