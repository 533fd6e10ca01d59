package mailchimp

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, service *Service) {
	controller := NewController(service)

	group := router.Group("/mailchimp")
	group.GET("/lists", controller.Lists)
	group.POST("/lists", controller.SyncLists)
	group.POST("/fix-tags", controller.FixTags)
	group.POST("/add-to-list", controller.AddToList)
	group.POST("/add-to-list/csv", controller.AddToListCSV)
}
