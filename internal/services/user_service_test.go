package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	testutil "github.com/temporahq/tempora/internal/database/testutil"
	apperrors "github.com/temporahq/tempora/pkg/errors"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewUserService(db)
	require.NoError(t, err)

	user, err := svc.Register(context.Background(), RegisterUserInput{
		Username: "Frank",
		Email:    "Frank@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.Equal(t, "frank", user.Username)
	require.Equal(t, "frank@example.com", user.Email)
	require.Equal(t, "frank", user.DisplayName)
	require.Equal(t, "UTC", user.Timezone)

	// Duplicate username or email conflicts.
	_, err = svc.Register(context.Background(), RegisterUserInput{
		Username: "frank",
		Email:    "frank2@example.com",
		Password: "correct-horse",
	})
	require.Error(t, err)
	require.Equal(t, 409, apperrors.FromError(err).StatusCode)

	// Short password rejected.
	_, err = svc.Register(context.Background(), RegisterUserInput{
		Username: "short",
		Email:    "short@example.com",
		Password: "tiny",
	})
	require.Error(t, err)

	// Login by username or email, case-insensitive.
	byName, err := svc.Authenticate(context.Background(), "FRANK", "correct-horse")
	require.NoError(t, err)
	require.NotNil(t, byName.LastLoginAt)

	byEmail, err := svc.Authenticate(context.Background(), "frank@example.com", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	_, err = svc.Authenticate(context.Background(), "frank", "wrong-password")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "ghost", "whatever")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserListSearch(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewUserService(db)
	require.NoError(t, err)

	for _, name := range []string{"grace", "heidi", "ivan"} {
		_, err := svc.Register(context.Background(), RegisterUserInput{
			Username: name,
			Email:    name + "@example.com",
			Password: "password-123",
		})
		require.NoError(t, err)
	}

	all, err := svc.List(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	matched, err := svc.List(context.Background(), "hei", 0)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	require.Equal(t, "heidi", matched[0].Username)
}
