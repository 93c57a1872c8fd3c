package points

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/points")
	group.POST("/award", Award)
	group.POST("/deduct", Deduct)
	group.POST("/activity", Activity)
	group.GET("/balance", Balance)
	group.GET("/history", History)
}
