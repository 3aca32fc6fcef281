package repository

import (
	"gorm.io/gorm"

	"github.com/wanpass/wanpass/app/models"
)

// AdminRepository defines the interface for operator account operations
type AdminRepository interface {
	Create(admin *models.Admin) error
	GetByUsername(username string) (*models.Admin, error)
	Count() (int64, error)
}

// EventRepository defines the interface for event-related database operations
type EventRepository interface {
	Create(event *models.Event) error
	GetByID(id uint) (*models.Event, error)
	// GetByCode resolves the public intake code; it does not check IsActive,
	// callers on the public surface must enforce the active gate themselves.
	GetByCode(code string) (*models.Event, error)
	List() ([]models.Event, error)
	Update(event *models.Event) error
	// Delete removes the event and every license it owns in one transaction.
	Delete(id uint) error
}

// LicensePage is one page of an event's licenses plus the pagination envelope.
type LicensePage struct {
	Items      []models.License
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// LicenseDelta is the incremental slice used by polling clients: everything
// newer than since_id, together with the full count so the caller can detect
// drift (deletions, missed windows) independent of the incremental set.
type LicenseDelta struct {
	Items      []models.License
	TotalCount int64
}

// LicenseRepository defines the interface for license-related database operations
type LicenseRepository interface {
	// Create validates the owning event exists, stamps the next receipt
	// number and inserts, all inside one transaction.
	Create(license *models.License) error
	GetByID(id uint) (*models.License, error)
	ListByEvent(eventID uint) ([]models.License, error)
	ListByEventPaginated(eventID uint, page, perPage int) (*LicensePage, error)
	ListNewSince(eventID uint, sinceID uint) (*LicenseDelta, error)
	CountByEvent(eventID uint) (int64, error)
	Delete(id uint) error
	Count() (int64, error)
}

// Repositories bundles all repository implementations
type Repositories struct {
	Admin   AdminRepository
	Event   EventRepository
	License LicenseRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Admin:   NewAdminRepository(db),
		Event:   NewEventRepository(db),
		License: NewLicenseRepository(db),
	}
}
