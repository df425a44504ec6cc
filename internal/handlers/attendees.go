package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/temporahq/tempora/internal/services"
	"github.com/temporahq/tempora/pkg/response"
)

// AttendeeHandler exposes invitation endpoints nested under events.
type AttendeeHandler struct {
	attendees *services.AttendeeService
}

// NewAttendeeHandler constructs an AttendeeHandler.
func NewAttendeeHandler(attendees *services.AttendeeService) *AttendeeHandler {
	return &AttendeeHandler{attendees: attendees}
}

type inviteRequest struct {
	UserIDs []string `json:"user_ids" validate:"omitempty,dive,required"`
	TeamIDs []string `json:"team_ids" validate:"omitempty,dive,required"`
}

type respondRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted declined"`
}

// Invite adds users and team members as attendees of an owned event.
func (h *AttendeeHandler) Invite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req inviteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	created, err := h.attendees.Invite(c.Request.Context(), c.Param("id"), userID, services.InviteInput{
		UserIDs: req.UserIDs,
		TeamIDs: req.TeamIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, created)
}

// Respond records the authenticated user's answer to an invitation.
func (h *AttendeeHandler) Respond(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req respondRequest
	if !bindAndValidate(c, &req) {
		return
	}

	attendee, err := h.attendees.Respond(c.Request.Context(), c.Param("id"), userID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, attendee)
}

// Remove uninvites a user from an event.
func (h *AttendeeHandler) Remove(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.attendees.Remove(c.Request.Context(), c.Param("id"), c.Param("userID"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}
