package transaction

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/transactions")
	group.GET("", List)
	group.GET("/export", Export)
}
