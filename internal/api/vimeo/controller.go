// Package vimeo exposes the Vimeo OTT refresh: the latest run and a
// trigger for a new one.
package vimeo

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pblonline/ops-dashboard/internal/shared"
	"github.com/pblonline/ops-dashboard/internal/types"
)

type SyncService interface {
	Submit(ctx context.Context, kind types.SyncKind) (*types.SyncRun, error)
	LatestRun(ctx context.Context, kind types.SyncKind) (*types.SyncRun, error)
}

type Controller struct {
	jobs SyncService
}

func NewController(jobs SyncService) *Controller {
	return &Controller{jobs: jobs}
}

type StatusResponse struct {
	LastRun *types.SyncRun `json:"lastRun"`
}

// Status handles GET /vimeo-ott/sync. A service that never synced answers
// with a null lastRun.
func (ctrl *Controller) Status(c *gin.Context) {
	run, err := ctrl.jobs.LatestRun(c.Request.Context(), types.SyncKindVimeo)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatusResponse{LastRun: run})
}

// Sync handles POST /vimeo-ott/sync
func (ctrl *Controller) Sync(c *gin.Context) {
	run, err := ctrl.jobs.Submit(c.Request.Context(), types.SyncKindVimeo)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, run)
}

func RegisterRoutes(router *gin.RouterGroup, jobs SyncService) {
	controller := NewController(jobs)

	group := router.Group("/vimeo-ott")
	group.GET("/sync", controller.Status)
	group.POST("/sync", controller.Sync)
}
