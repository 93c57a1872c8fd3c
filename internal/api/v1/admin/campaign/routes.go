package campaign

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/campaign")
	group.GET("", Get)
	group.POST("", Set)
	group.DELETE("", Clear)
}
