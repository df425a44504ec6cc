package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/temporahq/tempora/internal/services"
	"github.com/temporahq/tempora/pkg/response"
)

// UserHandler exposes user lookup endpoints for invite pickers.
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List returns active users matching an optional search term.
func (h *UserHandler) List(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	items, err := h.users.List(c.Request.Context(), c.Query("search"), parseIntQuery(c, "limit", 50))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Get returns one user's public profile.
func (h *UserHandler) Get(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
