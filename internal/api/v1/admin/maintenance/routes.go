package maintenance

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/maintenance")
	group.POST("/grace", GraceSweep)
	group.POST("/streaks", StreakSweep)
	group.POST("/expiry", ExpirySweep)
	group.POST("/caches", CacheInvalidation)
}
