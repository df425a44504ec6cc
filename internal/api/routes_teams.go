package api

import (
	"github.com/gin-gonic/gin"

	"github.com/temporahq/tempora/internal/handlers"
)

func registerTeamRoutes(api *gin.RouterGroup, handler *handlers.TeamHandler) {
	group := api.Group("/teams")
	{
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.PATCH("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
		group.POST("/:id/members", handler.AddMember)
		group.DELETE("/:id/members/:userID", handler.RemoveMember)
	}
}
