package customers

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, service *Service) {
	controller := NewController(service)

	group := router.Group("/customers")
	group.GET("/consolidated-members", controller.ConsolidatedMembers)
	group.GET("/tag-mismatches", controller.TagMismatches)
	group.POST("/consolidate", controller.Consolidate)
}
