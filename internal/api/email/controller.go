package email

import (
	"fmt"
	"io"
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

// ListDrafts handles GET /email/drafts
func (ctrl *Controller) ListDrafts(c *gin.Context) {
	drafts, err := ctrl.service.List(c.Request.Context())
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drafts": drafts})
}

// CreateDraft handles POST /email/drafts
func (ctrl *Controller) CreateDraft(c *gin.Context) {
	var req CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BadRequest(c, err)
		return
	}

	draft, err := ctrl.service.Create(c.Request.Context(), req)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

// GetDraft handles GET /email/drafts/:id
func (ctrl *Controller) GetDraft(c *gin.Context) {
	draft, err := ctrl.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// UpdateDraft handles PUT /email/drafts/:id
func (ctrl *Controller) UpdateDraft(c *gin.Context) {
	var patch types.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		shared.BadRequest(c, err)
		return
	}

	draft, err := ctrl.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// DeleteDraft handles DELETE /email/drafts/:id
func (ctrl *Controller) DeleteDraft(c *gin.Context) {
	if err := ctrl.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		shared.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Autosave handles PATCH /email/drafts/:id/autosave
func (ctrl *Controller) Autosave(c *gin.Context) {
	var patch types.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		shared.BadRequest(c, err)
		return
	}

	resp, err := ctrl.service.Autosave(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// Preview handles GET /email/drafts/:id/preview
func (ctrl *Controller) Preview(c *gin.Context) {
	resp, err := ctrl.service.Preview(c.Request.Context(), c.Param("id"))
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Generate handles POST /email/generate
func (ctrl *Controller) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.BadRequest(c, err)
		return
	}

	resp, err := ctrl.service.Generate(c.Request.Context(), req)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateFromBrief handles POST /email/generate-from-brief with a multipart
// "file" plus optional draftId, prompt and tone fields.
func (ctrl *Controller) GenerateFromBrief(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		shared.BadRequest(c, fmt.Errorf("file is required: %w", err))
		return
	}
	if fileHeader.Size > maxBriefSize {
		shared.RespondError(c, fmt.Errorf("%w: brief exceeds %d bytes", types.ErrValidation, maxBriefSize))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		shared.RespondError(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxBriefSize))
	if err != nil {
		shared.RespondError(c, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	resp, err := ctrl.service.GenerateFromBrief(c.Request.Context(), content,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"),
		c.PostForm("draftId"), c.PostForm("prompt"), c.PostForm("tone"))
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AnalyzeCampaigns handles POST /email/analyze-campaigns
func (ctrl *Controller) AnalyzeCampaigns(c *gin.Context) {
	var req AnalyzeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
			shared.BadRequest(c, err)
			return
		}
	}

	resp, err := ctrl.service.AnalyzeCampaigns(c.Request.Context(), req)
	if err != nil {
		shared.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
