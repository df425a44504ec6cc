package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/temporahq/tempora/internal/services"
	"github.com/temporahq/tempora/pkg/response"
)

// CategoryHandler exposes event category endpoints.
type CategoryHandler struct {
	categories *services.CategoryService
}

// NewCategoryHandler constructs a CategoryHandler.
func NewCategoryHandler(categories *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type categoryRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type updateCategoryRequest struct {
	Name  string `json:"name" validate:"omitempty,min=1,max=100"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// List returns the seeded defaults plus the user's own categories.
func (h *CategoryHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	items, err := h.categories.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Create adds a category owned by the authenticated user.
func (h *CategoryHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req categoryRequest
	if !bindAndValidate(c, &req) {
		return
	}

	category, err := h.categories.Create(c.Request.Context(), userID, services.CategoryInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, category)
}

// Update renames or recolours an owned category.
func (h *CategoryHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req updateCategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}

	category, err := h.categories.Update(c.Request.Context(), c.Param("id"), userID, services.CategoryInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, category)
}

// Delete removes an owned category; its events become uncategorised.
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.categories.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
