package youtube

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, service *Service) {
	controller := NewController(service)

	group := router.Group("/youtube")
	group.GET("/videos", controller.Videos)
	group.GET("/videos/:id", controller.Video)
	group.GET("/sync", controller.SyncStatus)
	group.POST("/sync", controller.Sync)
	group.GET("/auth", controller.Auth)
	group.GET("/transcripts/:id", controller.Transcript)
	group.PUT("/transcripts/:id", controller.SaveTranscript)
	group.POST("/generate-metadata", controller.GenerateMetadata)
	group.POST("/generate-content", controller.GenerateContent)
	group.POST("/update-video", controller.UpdateVideo)
}

// RegisterCallback mounts the OAuth redirect target. Google calls it
// without the dashboard's bearer token, so it lives outside the auth group.
func RegisterCallback(router *gin.RouterGroup, service *Service) {
	controller := NewController(service)
	router.GET("/youtube/auth/callback", controller.Callback)
}
