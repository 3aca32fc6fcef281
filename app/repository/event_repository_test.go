package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanpass/wanpass/app/models"
	"github.com/wanpass/wanpass/internal/pkg/apperrors"
	"github.com/wanpass/wanpass/internal/pkg/eventcode"
)

func TestEventCreateGeneratesCode(t *testing.T) {
	db := newTestDB(t)
	repo := NewEventRepository(db)

	event := createTestEvent(t, repo, "商店街ふれあい祭り")
	assert.NotZero(t, event.ID)
	assert.Len(t, event.EventCode, eventcode.CodeLength)

	other := createTestEvent(t, repo, "ペット健康フェア")
	assert.NotEqual(t, event.EventCode, other.EventCode)
}

func TestEventCreateRetriesOnCodeCollision(t *testing.T) {
	db := newTestDB(t)

	// Generator hands out the same code twice before producing a fresh one,
	// simulating the rare random collision.
	codes := []string{"fixedcod", "fixedcod", "fresh001"}
	i := 0
	repo := NewEventRepositoryWithGenerator(db, func() (string, error) {
		code := codes[i%len(codes)]
		i++
		return code, nil
	})

	first := createTestEvent(t, repo, "first")
	second := createTestEvent(t, repo, "second")

	assert.Equal(t, "fixedcod", first.EventCode)
	assert.Equal(t, "fresh001", second.EventCode)
	assert.NotEqual(t, first.EventCode, second.EventCode)
}

func TestEventCreateSurfacesDuplicateAfterRetry(t *testing.T) {
	db := newTestDB(t)

	repo := NewEventRepositoryWithGenerator(db, func() (string, error) {
		return "stuckcod", nil
	})

	require.NoError(t, repo.Create(&models.Event{Name: "a", IssueLocation: "x", IsActive: true}))
	err := repo.Create(&models.Event{Name: "b", IssueLocation: "x", IsActive: true})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateCode)
}

func TestEventGetByCode(t *testing.T) {
	db := newTestDB(t)
	repo := NewEventRepository(db)

	event := createTestEvent(t, repo, "test")

	found, err := repo.GetByCode(event.EventCode)
	require.NoError(t, err)
	assert.Equal(t, event.ID, found.ID)

	_, err = repo.GetByCode("does-not-exist")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEventGetByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewEventRepository(db)

	event := createTestEvent(t, repo, "test")

	found, err := repo.GetByID(event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.EventCode, found.EventCode)

	_, err = repo.GetByID(9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEventList(t *testing.T) {
	db := newTestDB(t)
	repo := NewEventRepository(db)

	for i := 0; i < 3; i++ {
		createTestEvent(t, repo, fmt.Sprintf("event%d", i))
	}

	events, err := repo.List()
	require.NoError(t, err)
	require.Len(t, events, 3)
	// newest created first
	assert.Equal(t, "event2", events[0].Name)
	assert.Equal(t, "event0", events[2].Name)
}

func TestEventUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := NewEventRepository(db)

	event := createTestEvent(t, repo, "before")
	event.Name = "after"
	event.IsActive = false
	require.NoError(t, repo.Update(event))

	found, err := repo.GetByID(event.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", found.Name)
	assert.False(t, found.IsActive)
	assert.False(t, found.UpdatedAt.Before(found.CreatedAt))
}

func TestEventDeleteCascadesLicenses(t *testing.T) {
	db := newTestDB(t)
	eventRepo := NewEventRepository(db)
	licenseRepo := NewLicenseRepository(db)

	event := createTestEvent(t, eventRepo, "doomed")
	keeper := createTestEvent(t, eventRepo, "keeper")
	createTestLicenses(t, licenseRepo, event.ID, 5)
	createTestLicenses(t, licenseRepo, keeper.ID, 2)

	before, err := licenseRepo.Count()
	require.NoError(t, err)
	require.EqualValues(t, 7, before)

	require.NoError(t, eventRepo.Delete(event.ID))

	after, err := licenseRepo.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 2, after, "exactly the deleted event's licenses are gone")

	_, err = eventRepo.GetByID(event.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEventDeleteNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewEventRepository(db)

	err := repo.Delete(12345)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
