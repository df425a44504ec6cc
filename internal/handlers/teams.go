package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/temporahq/tempora/internal/services"
	"github.com/temporahq/tempora/pkg/response"
)

// TeamHandler exposes team and membership endpoints.
type TeamHandler struct {
	teams *services.TeamService
}

// NewTeamHandler constructs a TeamHandler.
func NewTeamHandler(teams *services.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

type teamRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

type updateTeamRequest struct {
	Name        string `json:"name" validate:"omitempty,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

type addMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// Create registers a team owned by the authenticated user.
func (h *TeamHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req teamRequest
	if !bindAndValidate(c, &req) {
		return
	}

	team, err := h.teams.Create(c.Request.Context(), userID, services.TeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, team)
}

// List returns every team the user belongs to.
func (h *TeamHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	items, err := h.teams.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Get loads one team with its members.
func (h *TeamHandler) Get(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	team, err := h.teams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, team)
}

// Update renames an owned team.
func (h *TeamHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req updateTeamRequest
	if !bindAndValidate(c, &req) {
		return
	}

	team, err := h.teams.Update(c.Request.Context(), c.Param("id"), userID, services.TeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, team)
}

// Delete removes an owned team and its memberships.
func (h *TeamHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.teams.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// AddMember attaches a user to an owned team.
func (h *TeamHandler) AddMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req addMemberRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.teams.AddMember(c.Request.Context(), c.Param("id"), userID, req.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"added": true})
}

// RemoveMember detaches a member from a team.
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.teams.RemoveMember(c.Request.Context(), c.Param("id"), userID, c.Param("userID")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}
