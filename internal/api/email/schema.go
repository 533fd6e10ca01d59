package email

import (
	"fmt"
	"strings"

	"github.com/pblonline/ops-dashboard/internal/llm"
	"github.com/pblonline/ops-dashboard/internal/types"
)

type CreateDraftRequest struct {
	Name           string   `json:"name" binding:"required"`
	Subject        string   `json:"subject"`
	PreviewText    string   `json:"previewText"`
	AudienceListID string   `json:"audienceListId"`
	AudienceTags   []string `json:"audienceTags"`
	Body           string   `json:"body"`
	ReferenceURL   string   `json:"referenceUrl" binding:"omitempty,url"`
}

type AutosaveResponse struct {
	DraftID string `json:"draftId"`
	Pending bool   `json:"pending"`
}

type PreviewResponse struct {
	Subject     string `json:"subject"`
	PreviewText string `json:"previewText"`
	HTML        string `json:"html"`
}

type GenerateRequest struct {
	DraftID      string `json:"draftId"`
	Prompt       string `json:"prompt" binding:"required"`
	Tone         string `json:"tone"`
	ReferenceURL string `json:"referenceUrl" binding:"omitempty,url"`
}

type GenerateResponse = llm.EmailCopy

type AnalyzeRequest struct {
	Count   int    `json:"count" binding:"omitempty,min=1,max=50"`
	DraftID string `json:"draftId"`
}

type AnalyzeResponse struct {
	Campaigns []llm.CampaignStats  `json:"campaigns"`
	Analysis  llm.CampaignAnalysis `json:"analysis"`
}

const (
	defaultReportCount = 10
	referenceChunks    = 3
	maxBriefSize       = 10 << 20
)

func validatePatch(p types.DraftPatch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name cannot be blank", types.ErrValidation)
	}
	if p.Step != nil && !p.Step.Valid() {
		return fmt.Errorf("%w: step must be setup, analysis, design or preview", types.ErrValidation)
	}
	if p.Status != nil {
		switch *p.Status {
		case types.DraftStatusDraft, types.DraftStatusReady, types.DraftStatusSent:
		default:
			return fmt.Errorf("%w: status must be draft, ready or sent", types.ErrValidation)
		}
	}
	return nil
}
