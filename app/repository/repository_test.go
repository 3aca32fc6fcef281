package repository

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wanpass/wanpass/app/models"
)

// newTestDB opens a fresh in-memory store with the full schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Admin{}, &models.Event{}, &models.License{}))
	return db
}

func createTestEvent(t *testing.T, repo EventRepository, name string) *models.Event {
	t.Helper()
	event := &models.Event{
		Name:          name,
		IssueLocation: "渋谷区",
		IsActive:      true,
	}
	require.NoError(t, repo.Create(event))
	return event
}

func createTestLicenses(t *testing.T, repo LicenseRepository, eventID uint, n int) []models.License {
	t.Helper()
	licenses := make([]models.License, 0, n)
	for i := 1; i <= n; i++ {
		lic := models.License{
			EventID:         eventID,
			PetName:         fmt.Sprintf("ポチ%d", i),
			OwnerName:       fmt.Sprintf("owner%d", i),
			LicenseImageURL: fmt.Sprintf("http://localhost/storage/licenses/%d.png", i),
			LicenseKey:      fmt.Sprintf("licenses/%d.png", i),
		}
		require.NoError(t, repo.Create(&lic))
		licenses = append(licenses, lic)
	}
	return licenses
}
