package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/temporahq/tempora/internal/auth"
	testutil "github.com/temporahq/tempora/internal/database/testutil"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "router-test-secret",
		Issuer:         "test-suite",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	router, err := NewRouter(Deps{DB: db, JWT: jwtSvc, Version: "test"})
	require.NoError(t, err)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeData(t, rec)["status"])
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/events", "/api/notifications", "/api/teams", "/api/analytics/overview"} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRegisterLoginAndEventFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "frank",
		"email":    "frank@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	token, _ := decodeData(t, rec)["token"].(string)
	require.NotEmpty(t, token)

	// Duplicate registration conflicts.
	rec = doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "frank",
		"email":    "frank@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"identifier": "frank",
		"password":   "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "frank", decodeData(t, rec)["username"])

	// Create an event, then attach a reminder preference to it.
	rec = doJSON(t, router, http.MethodPost, "/api/events", token, gin.H{
		"title":      "Design review",
		"start_time": "2025-06-01T10:00:00Z",
		"end_time":   "2025-06-01T11:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	eventID, _ := decodeData(t, rec)["id"].(string)
	require.NotEmpty(t, eventID)

	// Inverted range rejected.
	rec = doJSON(t, router, http.MethodPost, "/api/events", token, gin.H{
		"title":      "Backwards",
		"start_time": "2025-06-01T11:00:00Z",
		"end_time":   "2025-06-01T10:00:00Z",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/events/"+eventID+"/reminder", token, gin.H{
		"lead_minutes":  15,
		"email_enabled": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	preference := decodeData(t, rec)
	require.Equal(t, float64(15), preference["lead_minutes"])
	require.Equal(t, true, preference["email_enabled"])
	require.Equal(t, true, preference["in_app_enabled"])

	rec = doJSON(t, router, http.MethodGet, "/api/events/"+eventID+"/reminder", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/notifications/unread-count", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(0), decodeData(t, rec)["unread"])
}
