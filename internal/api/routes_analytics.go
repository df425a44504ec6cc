package api

import (
	"github.com/gin-gonic/gin"

	"github.com/temporahq/tempora/internal/handlers"
)

func registerAnalyticsRoutes(api *gin.RouterGroup, handler *handlers.AnalyticsHandler) {
	group := api.Group("/analytics")
	{
		group.GET("/overview", handler.Overview)
		group.GET("/by-category", handler.ByCategory)
		group.GET("/by-month", handler.ByMonth)
		group.GET("/weekdays", handler.Weekdays)
	}
}
