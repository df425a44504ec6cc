package api

import (
	"github.com/gin-gonic/gin"

	"github.com/temporahq/tempora/internal/handlers"
)

func registerEventRoutes(api *gin.RouterGroup, events *handlers.EventHandler, attendees *handlers.AttendeeHandler, preferences *handlers.PreferenceHandler) {
	group := api.Group("/events")
	{
		group.GET("", events.List)
		group.POST("", events.Create)
		group.GET("/:id", events.Get)
		group.PATCH("/:id", events.Update)
		group.DELETE("/:id", events.Delete)

		group.POST("/:id/attendees", attendees.Invite)
		group.POST("/:id/respond", attendees.Respond)
		group.DELETE("/:id/attendees/:userID", attendees.Remove)

		group.GET("/:id/reminder", preferences.Get)
		group.PUT("/:id/reminder", preferences.Upsert)
		group.DELETE("/:id/reminder", preferences.Delete)
	}
}
