package abuse

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/abuse")
	group.GET("/:user_id", Get)
}
