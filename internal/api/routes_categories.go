package api

import (
	"github.com/gin-gonic/gin"

	"github.com/temporahq/tempora/internal/handlers"
)

func registerCategoryRoutes(api *gin.RouterGroup, handler *handlers.CategoryHandler) {
	group := api.Group("/categories")
	{
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.PATCH("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
	}
}
