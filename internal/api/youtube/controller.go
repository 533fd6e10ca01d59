package youtube

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pblonline/ops-dashboard/internal/shared"
	"github.com/pblonline/ops-dashboard/internal/types"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// Videos handles GET /youtube/videos
func (ctrl *Controller) Videos(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	page, err := shared.ParsePage(c)
	if err != nil {
		shared.RespondError(c, err)
		return
	}

	resp, err := ctrl.service.List(c.Request.Context(), filter, page)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Video handles GET /youtube/videos/:id
func (ctrl *Controller) Video(c *gin.Context) {
	video, err := ctrl.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

// SyncStatus handles GET /youtube/sync
func (ctrl *Controller) SyncStatus(c *gin.Context) {
	run, err := ctrl.service.LastSync(c.Request.Context())
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lastRun": run})
}

// Sync handles POST /youtube/sync
func (ctrl *Controller) Sync(c *gin.Context) {
	run, err := ctrl.service.Sync(c.Request.Context())
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, run)
}

// Auth handles GET /youtube/auth
func (ctrl *Controller) Auth(c *gin.Context) {
	resp, err := ctrl.service.AuthURL(c.Request.Context())
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Callback handles GET /youtube/auth/callback, the Google redirect target
func (ctrl *Controller) Callback(c *gin.Context) {
	if e := c.Query("error"); e != "" {
		shared.RespondError(c, fmt.Errorf("%w: authorization denied: %s", types.ErrValidation, e))
		return
	}
	if err := ctrl.service.Callback(c.Request.Context(), c.Query("state"), c.Query("code")); err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true})
}

// Transcript handles GET /youtube/transcripts/:id
func (ctrl *Controller) Transcript(c *gin.Context) {
	resp, err := ctrl.service.Transcript(c.Request.Context(), c.Param("id"))
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SaveTranscript handles PUT /youtube/transcripts/:id
func (ctrl *Controller) SaveTranscript(c *gin.Context) {
	var req TranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BadRequest(c, err)
		return
	}

	resp, err := ctrl.service.SaveTranscript(c.Request.Context(), c.Param("id"), req.Transcript)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateMetadata handles POST /youtube/generate-metadata
func (ctrl *Controller) GenerateMetadata(c *gin.Context) {
	var req GenerateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BadRequest(c, err)
		return
	}

	resp, err := ctrl.service.GenerateMetadata(c.Request.Context(), req.VideoID)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateContent handles POST /youtube/generate-content
func (ctrl *Controller) GenerateContent(c *gin.Context) {
	var req GenerateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BadRequest(c, err)
		return
	}

	resp, err := ctrl.service.GenerateContent(c.Request.Context(), req.VideoID, req.Kind)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateVideo handles POST /youtube/update-video
func (ctrl *Controller) UpdateVideo(c *gin.Context) {
	var req types.VideoUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BadRequest(c, err)
		return
	}

	video, err := ctrl.service.UpdateVideo(c.Request.Context(), req)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}
