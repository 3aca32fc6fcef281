package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory bound to an explicit store
// handle. The handle is owned by the caller; the factory never opens or
// closes connections itself.
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetAdminRepository returns the admin repository instance
func (f *Factory) GetAdminRepository() AdminRepository {
	return f.GetRepositories().Admin
}

// GetEventRepository returns the event repository instance
func (f *Factory) GetEventRepository() EventRepository {
	return f.GetRepositories().Event
}

// GetLicenseRepository returns the license repository instance
func (f *Factory) GetLicenseRepository() LicenseRepository {
	return f.GetRepositories().License
}
