package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/temporahq/tempora/internal/services"
	"github.com/temporahq/tempora/pkg/response"
)

// PreferenceHandler exposes per-event reminder preference endpoints.
type PreferenceHandler struct {
	preferences *services.PreferenceService
}

// NewPreferenceHandler constructs a PreferenceHandler.
func NewPreferenceHandler(preferences *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferences: preferences}
}

type upsertPreferenceRequest struct {
	LeadMinutes  int   `json:"lead_minutes" validate:"min=0,max=40320"`
	EmailEnabled bool  `json:"email_enabled"`
	InAppEnabled *bool `json:"in_app_enabled"`
}

// Upsert creates or replaces the user's reminder preference for an event.
func (h *PreferenceHandler) Upsert(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req upsertPreferenceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	// In-app delivery defaults to on when the field is omitted.
	inApp := true
	if req.InAppEnabled != nil {
		inApp = *req.InAppEnabled
	}

	preference, err := h.preferences.Upsert(c.Request.Context(), c.Param("id"), userID, services.UpsertPreferenceInput{
		LeadMinutes:  req.LeadMinutes,
		EmailEnabled: req.EmailEnabled,
		InAppEnabled: inApp,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, preference)
}

// Get returns the user's reminder preference for an event.
func (h *PreferenceHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	preference, err := h.preferences.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, preference)
}

// Delete removes the user's reminder preference for an event.
func (h *PreferenceHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.preferences.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
