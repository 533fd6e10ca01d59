package email

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, service *Service) {
	controller := NewController(service)

	group := router.Group("/email")
	group.GET("/drafts", controller.ListDrafts)
	group.POST("/drafts", controller.CreateDraft)
	group.GET("/drafts/:id", controller.GetDraft)
	group.PUT("/drafts/:id", controller.UpdateDraft)
	group.DELETE("/drafts/:id", controller.DeleteDraft)
	group.PATCH("/drafts/:id/autosave", controller.Autosave)
	group.GET("/drafts/:id/preview", controller.Preview)
	group.POST("/generate", controller.Generate)
	group.POST("/generate-from-brief", controller.GenerateFromBrief)
	group.POST("/analyze-campaigns", controller.AnalyzeCampaigns)
}
