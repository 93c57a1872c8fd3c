package auth

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/auth")
	group.POST("/register", Register)
	group.POST("/login", Login)
	group.POST("/logout", Logout)
}
