package customers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pblonline/ops-dashboard/internal/shared"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// ConsolidatedMembers handles GET /customers/consolidated-members
func (ctrl *Controller) ConsolidatedMembers(c *gin.Context) {
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

// TagMismatches handles GET /customers/tag-mismatches
func (ctrl *Controller) TagMismatches(c *gin.Context) {
	summary, err := ctrl.service.Mismatches(c.Request.Context())
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Consolidate handles POST /customers/consolidate
func (ctrl *Controller) Consolidate(c *gin.Context) {
	run, err := ctrl.service.Consolidate(c.Request.Context())
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, run)
}
