package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	testutil "github.com/temporahq/tempora/internal/database/testutil"
	"github.com/temporahq/tempora/internal/models"
	"github.com/temporahq/tempora/internal/notifications"
	apperrors "github.com/temporahq/tempora/pkg/errors"
)

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestEventCreateRejectsInvertedTimeRange(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewEventService(db, nil)
	require.NoError(t, err)

	owner := createTestUser(t, db, "owner")
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	_, err = svc.Create(context.Background(), CreateEventInput{
		OwnerID:   owner.ID,
		Title:     "Backwards",
		StartTime: start,
		EndTime:   start.Add(-time.Hour),
	})
	require.Error(t, err)
	appErr := apperrors.FromError(err)
	require.Equal(t, 400, appErr.StatusCode)

	_, err = svc.Create(context.Background(), CreateEventInput{
		OwnerID:   owner.ID,
		Title:     "Zero length",
		StartTime: start,
		EndTime:   start,
	})
	require.Error(t, err)
}

func TestEventVisibility(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewEventService(db, nil)
	require.NoError(t, err)

	owner := createTestUser(t, db, "owner")
	attendee := createTestUser(t, db, "attendee")
	outsider := createTestUser(t, db, "outsider")

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	event, err := svc.Create(context.Background(), CreateEventInput{
		OwnerID:   owner.ID,
		Title:     "Planning",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.EventAttendee{
		EventID:     event.ID,
		UserID:      attendee.ID,
		Status:      models.AttendeeStatusInvited,
		InvitedByID: owner.ID,
	}).Error)

	_, err = svc.Get(context.Background(), event.ID, owner.ID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), event.ID, attendee.ID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), event.ID, outsider.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestEventUpdateResetsReminderMarker(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewEventService(db, nil)
	require.NoError(t, err)

	owner := createTestUser(t, db, "owner")
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	event, err := svc.Create(context.Background(), CreateEventInput{
		OwnerID:   owner.ID,
		Title:     "Movable",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.NoError(t, err)

	fired := start.Add(-30 * time.Minute)
	require.NoError(t, db.Create(&models.NotificationPreference{
		EventID:     event.ID,
		UserID:      owner.ID,
		LeadMinutes: 30,
		LastFiredAt: &fired,
	}).Error)

	newStart := start.Add(2 * time.Hour)
	newEnd := newStart.Add(time.Hour)
	_, err = svc.Update(context.Background(), event.ID, owner.ID, UpdateEventInput{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	require.NoError(t, err)

	var preference models.NotificationPreference
	require.NoError(t, db.First(&preference, "event_id = ?", event.ID).Error)
	require.Nil(t, preference.LastFiredAt)

	// A title-only update leaves the marker alone.
	require.NoError(t, db.Model(&preference).Update("last_fired_at", fired).Error)
	title := "Renamed"
	_, err = svc.Update(context.Background(), event.ID, owner.ID, UpdateEventInput{Title: &title})
	require.NoError(t, err)

	require.NoError(t, db.First(&preference, "event_id = ?", event.ID).Error)
	require.NotNil(t, preference.LastFiredAt)
}

func TestEventDeleteCascades(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewEventService(db, nil)
	require.NoError(t, err)

	owner := createTestUser(t, db, "owner")
	guest := createTestUser(t, db, "guest")

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	event, err := svc.Create(context.Background(), CreateEventInput{
		OwnerID:   owner.ID,
		Title:     "Doomed",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.EventAttendee{
		EventID:     event.ID,
		UserID:      guest.ID,
		Status:      models.AttendeeStatusAccepted,
		InvitedByID: owner.ID,
	}).Error)
	require.NoError(t, db.Create(&models.NotificationPreference{
		EventID:     event.ID,
		UserID:      guest.ID,
		LeadMinutes: 10,
	}).Error)

	require.ErrorIs(t, svc.Delete(context.Background(), event.ID, guest.ID), apperrors.ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), event.ID, owner.ID))

	var count int64
	require.NoError(t, db.Model(&models.EventAttendee{}).Where("event_id = ?", event.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.NotificationPreference{}).Where("event_id = ?", event.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestEventDeleteNotifiesAttendeeClients(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	hub := notifications.NewHub()
	svc, err := NewEventService(db, hub)
	require.NoError(t, err)

	owner := createTestUser(t, db, "owner")
	guest := createTestUser(t, db, "guest")

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	event, err := svc.Create(context.Background(), CreateEventInput{
		OwnerID:   owner.ID,
		Title:     "Cancelled later",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.EventAttendee{
		EventID:     event.ID,
		UserID:      guest.ID,
		Status:      models.AttendeeStatusAccepted,
		InvitedByID: owner.ID,
	}).Error)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(guest.ID, w, r)
	}))
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool {
		return hub.SubscriberCount(guest.ID) > 0
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, svc.Delete(context.Background(), event.ID, owner.ID))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got notifications.Event
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, "event.cancelled", got.Event)
	require.Equal(t, event.ID, got.EventID)
}

func TestEventListFilters(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewEventService(db, nil)
	require.NoError(t, err)

	owner := createTestUser(t, db, "owner")
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	for i, title := range []string{"first", "second", "third"} {
		start := base.AddDate(0, 0, i*7)
		_, err := svc.Create(context.Background(), CreateEventInput{
			OwnerID:   owner.ID,
			Title:     title,
			StartTime: start,
			EndTime:   start.Add(time.Hour),
		})
		require.NoError(t, err)
	}

	all, err := svc.List(context.Background(), ListEventsInput{UserID: owner.ID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "first", all[0].Title)

	from := base.AddDate(0, 0, 5)
	to := base.AddDate(0, 0, 10)
	window, err := svc.List(context.Background(), ListEventsInput{UserID: owner.ID, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, window, 1)
	require.Equal(t, "second", window[0].Title)
}
