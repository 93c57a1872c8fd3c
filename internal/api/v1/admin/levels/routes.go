package levels

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/levels")
	group.GET("", List)
	group.POST("", Create)
	group.PUT("/:level", Update)
	group.DELETE("/:level", Delete)
}
