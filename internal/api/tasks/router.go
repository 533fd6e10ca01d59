package tasks

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, service *Service) {
	controller := NewController(service)

	group := router.Group("/tasks")
	group.GET("/board", controller.Board)
	group.GET("", controller.ListTasks)
	group.POST("", controller.CreateTask)
	group.POST("/bulk", controller.BulkUpdate)
	group.GET("/:id", controller.GetTask)
	group.PUT("/:id", controller.UpdateTask)
	group.DELETE("/:id", controller.DeleteTask)

	users := router.Group("/users")
	users.GET("", controller.Users)
	users.POST("", controller.CreateUser)
}
