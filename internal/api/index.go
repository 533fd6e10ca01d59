package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pblonline/ops-dashboard/internal/api/customers"
	"github.com/pblonline/ops-dashboard/internal/api/email"
	"github.com/pblonline/ops-dashboard/internal/api/mailchimp"
	"github.com/pblonline/ops-dashboard/internal/api/tasks"
	"github.com/pblonline/ops-dashboard/internal/api/vimeo"
	"github.com/pblonline/ops-dashboard/internal/api/youtube"
	"github.com/pblonline/ops-dashboard/internal/config"
	"github.com/pblonline/ops-dashboard/internal/shared"
)

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Services are the feature services the routers are mounted on.
type Services struct {
	Customers *customers.Service
	Mailchimp *mailchimp.Service
	Email     *email.Service
	Tasks     *tasks.Service
	YouTube   *youtube.Service
	Jobs      vimeo.SyncService
}

// SetupRoutes registers /health and every feature router under /api.
func SetupRoutes(router *gin.Engine, cfg *config.Config, db HealthChecker, svc Services) {
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName, "environment": cfg.Environment})
	})

	public := router.Group("/api")
	youtube.RegisterCallback(public, svc.YouTube)

	api := router.Group("/api", shared.BearerAuth(cfg.APIToken))
	customers.RegisterRoutes(api, svc.Customers)
	vimeo.RegisterRoutes(api, svc.Jobs)
	mailchimp.RegisterRoutes(api, svc.Mailchimp)
	email.RegisterRoutes(api, svc.Email)
	tasks.RegisterRoutes(api, svc.Tasks)
	youtube.RegisterRoutes(api, svc.YouTube)
}
