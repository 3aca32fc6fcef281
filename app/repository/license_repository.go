package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wanpass/wanpass/app/models"
	"github.com/wanpass/wanpass/internal/pkg/apperrors"
	"github.com/wanpass/wanpass/internal/pkg/eventcode"
)

// Pagination bounds for ListByEventPaginated.
const (
	MaxPerPage     = 100
	DefaultPerPage = 20
)

// licenseRepository implements the LicenseRepository interface
type licenseRepository struct {
	db *gorm.DB
}

// NewLicenseRepository creates a new license repository instance
func NewLicenseRepository(db *gorm.DB) LicenseRepository {
	return &licenseRepository{db: db}
}

// Create validates the owning event, stamps the next receipt number and
// inserts the record, all inside one transaction.
//
// The receipt number is count+1 at insert time. Without serializable
// isolation two concurrent submissions to the same event can still observe
// the same count and get the same number; receipt numbers are a display
// convenience scoped to the event, not a uniqueness key.
func (r *licenseRepository) Create(license *models.License) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, license.EventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.License{}).Where("event_id = ?", license.EventID).Count(&count).Error; err != nil {
			return err
		}
		license.ReceiptNumber = eventcode.FormatReceiptNumber(count + 1)

		return tx.Create(license).Error
	})
}

// GetByID retrieves a license by its surrogate id
func (r *licenseRepository) GetByID(id uint) (*models.License, error) {
	var license models.License
	err := r.db.First(&license, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &license, nil
}

// ListByEvent retrieves all licenses for an event, newest first. Ties on
// created_at are broken by id so the ordering is total and pagination stays
// deterministic.
func (r *licenseRepository) ListByEvent(eventID uint) ([]models.License, error) {
	var licenses []models.License
	err := r.db.Where("event_id = ?", eventID).
		Order("created_at DESC, id DESC").Find(&licenses).Error
	return licenses, err
}

// ListByEventPaginated retrieves one page of an event's licenses.
func (r *licenseRepository) ListByEventPaginated(eventID uint, page, perPage int) (*LicensePage, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1, got %d", apperrors.ErrValidation, page)
	}
	if perPage < 1 || perPage > MaxPerPage {
		return nil, fmt.Errorf("%w: per_page must be in [1,%d], got %d", apperrors.ErrValidation, MaxPerPage, perPage)
	}

	total, err := r.CountByEvent(eventID)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}

	var licenses []models.License
	offset := (page - 1) * perPage
	err = r.db.Where("event_id = ?", eventID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(perPage).Find(&licenses).Error
	if err != nil {
		return nil, err
	}

	return &LicensePage{
		Items:      licenses,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

// ListNewSince retrieves every license with id > sinceID for the event,
// newest first, plus the event's full license count.
func (r *licenseRepository) ListNewSince(eventID uint, sinceID uint) (*LicenseDelta, error) {
	total, err := r.CountByEvent(eventID)
	if err != nil {
		return nil, err
	}

	var licenses []models.License
	err = r.db.Where("event_id = ? AND id > ?", eventID, sinceID).
		Order("created_at DESC, id DESC").Find(&licenses).Error
	if err != nil {
		return nil, err
	}

	return &LicenseDelta{Items: licenses, TotalCount: total}, nil
}

// CountByEvent returns the number of licenses for an event
func (r *licenseRepository) CountByEvent(eventID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.License{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

// Delete removes a license record. Blob cleanup is the caller's concern.
func (r *licenseRepository) Delete(id uint) error {
	result := r.db.Delete(&models.License{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Count returns the total number of licenses across all events
func (r *licenseRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.License{}).Count(&count).Error
	return count, err
}
