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

func TestNotificationCreateAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	user := createTestUser(t, db, "reader")
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	created, err := svc.Create(context.Background(), CreateNotificationInput{
		UserID:  user.ID,
		Kind:    models.NotificationKindReminder,
		Title:   "Reminder: Sync",
		Message: "Sync starts soon",
		Payload: models.ReminderPayload{EventID: "evt-1", EventTitle: "Sync", StartTime: start},
	})
	require.NoError(t, err)
	require.False(t, created.IsRead)
	require.Equal(t, "evt-1", created.Payload["event_id"])

	_, err = svc.Create(context.Background(), CreateNotificationInput{
		UserID: user.ID,
		Kind:   "bogus",
		Title:  "nope",
	})
	require.Error(t, err)

	items, err := svc.ListForUser(context.Background(), ListNotificationsInput{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)

	count, err := svc.UnreadCount(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestNotificationReadLifecycle(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	user := createTestUser(t, db, "reader")
	other := createTestUser(t, db, "other")

	created, err := svc.Create(context.Background(), CreateNotificationInput{
		UserID: user.ID,
		Kind:   models.NotificationKindSystem,
		Title:  "Welcome",
	})
	require.NoError(t, err)

	// Another user cannot touch it.
	_, err = svc.MarkRead(context.Background(), other.ID, created.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	read, err := svc.MarkRead(context.Background(), user.ID, created.ID)
	require.NoError(t, err)
	require.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	unread, err := svc.MarkUnread(context.Background(), user.ID, created.ID)
	require.NoError(t, err)
	require.False(t, unread.IsRead)
	require.Nil(t, unread.ReadAt)

	require.NoError(t, svc.MarkAllRead(context.Background(), user.ID))
	count, err := svc.UnreadCount(context.Background(), user.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	require.NoError(t, svc.Delete(context.Background(), user.ID, created.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), user.ID, created.ID), apperrors.ErrNotFound)
}

func TestNotificationUnreadFilter(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	user := createTestUser(t, db, "reader")

	first, err := svc.Create(context.Background(), CreateNotificationInput{
		UserID: user.ID,
		Kind:   models.NotificationKindSystem,
		Title:  "one",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateNotificationInput{
		UserID: user.ID,
		Kind:   models.NotificationKindSystem,
		Title:  "two",
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(context.Background(), user.ID, first.ID)
	require.NoError(t, err)

	unread, err := svc.ListForUser(context.Background(), ListNotificationsInput{UserID: user.ID, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	require.Equal(t, "two", unread[0].Title)
}
