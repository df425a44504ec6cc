package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	testutil "github.com/temporahq/tempora/internal/database/testutil"
	"github.com/temporahq/tempora/internal/models"
	apperrors "github.com/temporahq/tempora/pkg/errors"
)

func TestCategoryListIncludesSeededDefaults(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	svc, err := NewCategoryService(db)
	require.NoError(t, err)

	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")

	_, err = svc.Create(context.Background(), owner.ID, CategoryInput{Name: "projects"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), other.ID, CategoryInput{Name: "secret"})
	require.NoError(t, err)

	items, err := svc.List(context.Background(), owner.ID)
	require.NoError(t, err)

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	require.Contains(t, names, "General")
	require.Contains(t, names, "Work")
	require.Contains(t, names, "Personal")
	require.Contains(t, names, "projects")
	require.NotContains(t, names, "secret")
}

func TestCategoryUniquePerOwner(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewCategoryService(db)
	require.NoError(t, err)

	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")

	_, err = svc.Create(context.Background(), owner.ID, CategoryInput{Name: "projects"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner.ID, CategoryInput{Name: "projects"})
	require.Error(t, err)
	require.Equal(t, 409, apperrors.FromError(err).StatusCode)

	// A different owner may reuse the name.
	_, err = svc.Create(context.Background(), other.ID, CategoryInput{Name: "projects"})
	require.NoError(t, err)
}

func TestCategorySeededDefaultsAreReadOnly(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	svc, err := NewCategoryService(db)
	require.NoError(t, err)

	owner := createTestUser(t, db, "owner")

	var seeded models.EventCategory
	require.NoError(t, db.First(&seeded, "owner_id = ?", "").Error)

	_, err = svc.Update(context.Background(), seeded.ID, owner.ID, CategoryInput{Name: "hijacked"})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	require.ErrorIs(t, svc.Delete(context.Background(), seeded.ID, owner.ID), apperrors.ErrForbidden)
}

func TestCategoryDeleteDetachesEvents(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewCategoryService(db)
	require.NoError(t, err)
	events, err := NewEventService(db, nil)
	require.NoError(t, err)

	owner := createTestUser(t, db, "owner")
	category, err := svc.Create(context.Background(), owner.ID, CategoryInput{Name: "doomed"})
	require.NoError(t, err)

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	event, err := events.Create(context.Background(), CreateEventInput{
		OwnerID:    owner.ID,
		Title:      "Categorised",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		CategoryID: &category.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), category.ID, owner.ID))

	var stored models.Event
	require.NoError(t, db.First(&stored, "id = ?", event.ID).Error)
	require.Nil(t, stored.CategoryID)
}
