package mailchimp

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pblonline/ops-dashboard/internal/processors"
	"github.com/pblonline/ops-dashboard/internal/shared"
	"github.com/pblonline/ops-dashboard/internal/types"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// Lists handles GET /mailchimp/lists
func (ctrl *Controller) Lists(c *gin.Context) {
	resp, err := ctrl.service.Lists(c.Request.Context())
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SyncLists handles POST /mailchimp/lists by queueing a member sync
func (ctrl *Controller) SyncLists(c *gin.Context) {
	run, err := ctrl.service.SyncMembers(c.Request.Context())
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, run)
}

// FixTags handles POST /mailchimp/fix-tags
func (ctrl *Controller) FixTags(c *gin.Context) {
	var req FixTagsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
			shared.BadRequest(c, err)
			return
		}
	}

	resp, err := ctrl.service.FixTags(c.Request.Context(), req.ListID, req.Actions)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddToList handles POST /mailchimp/add-to-list
func (ctrl *Controller) AddToList(c *gin.Context) {
	var req AddToListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BadRequest(c, err)
		return
	}

	resp, err := ctrl.service.AddToList(c.Request.Context(), req.ListID, req.Members)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddToListCSV handles POST /mailchimp/add-to-list/csv with a multipart "file"
func (ctrl *Controller) AddToListCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		shared.BadRequest(c, fmt.Errorf("file is required: %w", err))
		return
	}
	if fileHeader.Size > maxCSVSize {
		shared.RespondError(c, fmt.Errorf("%w: CSV file exceeds %d bytes", types.ErrValidation, maxCSVSize))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		shared.RespondError(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxCSVSize))
	if err != nil {
		shared.RespondError(c, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	contacts, err := processors.ParseContactsCSV(content)
	if err != nil {
		shared.RespondError(c, err)
		return
	}

	resp, err := ctrl.service.AddToList(c.Request.Context(), c.PostForm("listId"), contacts)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
