package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/temporahq/tempora/internal/services"
	"github.com/temporahq/tempora/pkg/response"
)

// AnalyticsHandler exposes calendar usage statistics.
type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

// NewAnalyticsHandler constructs an AnalyticsHandler.
func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Overview returns headline numbers for the user's dashboard.
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.analytics.Overview(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// ByCategory returns event counts grouped by category.
func (h *AnalyticsHandler) ByCategory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	counts, err := h.analytics.EventsByCategory(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, counts)
}

// ByMonth returns event counts per month over the trailing window.
func (h *AnalyticsHandler) ByMonth(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	counts, err := h.analytics.EventsByMonth(c.Request.Context(), userID, parseIntQuery(c, "months", 6))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, counts)
}

// Weekdays returns event counts per weekday.
func (h *AnalyticsHandler) Weekdays(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	counts, err := h.analytics.BusiestWeekdays(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, counts)
}
