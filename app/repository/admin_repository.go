package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/wanpass/wanpass/app/models"
	"github.com/wanpass/wanpass/internal/pkg/apperrors"
)

// adminRepository implements the AdminRepository interface
type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository creates a new admin repository instance
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

// Create inserts a new operator account
func (r *adminRepository) Create(admin *models.Admin) error {
	return r.db.Create(admin).Error
}

// GetByUsername retrieves an operator account by username
func (r *adminRepository) GetByUsername(username string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.Where("username = ?", username).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// Count returns the number of operator accounts
func (r *adminRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Admin{}).Count(&count).Error
	return count, err
}
