package types

import (
	"encoding/json"
	"time"
)

type DraftStep string

const (
	DraftStepSetup    DraftStep = "setup"
	DraftStepAnalysis DraftStep = "analysis"
	DraftStepDesign   DraftStep = "design"
	DraftStepPreview  DraftStep = "preview"
)

// Valid reports whether s is one of the wizard steps.
func (s DraftStep) Valid() bool {
	switch s {
	case DraftStepSetup, DraftStepAnalysis, DraftStepDesign, DraftStepPreview:
		return true
	}
	return false
}

type DraftStatus string

const (
	DraftStatusDraft DraftStatus = "draft"
	DraftStatusReady DraftStatus = "ready"
	DraftStatusSent  DraftStatus = "sent"
)

// EmailDraft is a campaign being built in the email wizard. Body is markdown.
type EmailDraft struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Subject        string          `json:"subject"`
	PreviewText    string          `json:"previewText"`
	AudienceListID string          `json:"audienceListId"`
	AudienceTags   []string        `json:"audienceTags"`
	Step           DraftStep       `json:"step"`
	Body           string          `json:"body"`
	ReferenceURL   string          `json:"referenceUrl"`
	Analysis       json.RawMessage `json:"analysis,omitempty"`
	Status         DraftStatus     `json:"status"`
	Version        int             `json:"version"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// DraftPatch carries the fields of a partial draft update; nil means unchanged.
type DraftPatch struct {
	Name           *string          `json:"name,omitempty"`
	Subject        *string          `json:"subject,omitempty"`
	PreviewText    *string          `json:"previewText,omitempty"`
	AudienceListID *string          `json:"audienceListId,omitempty"`
	AudienceTags   *[]string        `json:"audienceTags,omitempty"`
	Step           *DraftStep       `json:"step,omitempty"`
	Body           *string          `json:"body,omitempty"`
	ReferenceURL   *string          `json:"referenceUrl,omitempty"`
	Analysis       *json.RawMessage `json:"analysis,omitempty"`
	Status         *DraftStatus     `json:"status,omitempty"`
}

// Merge overlays the non-nil fields of next onto p.
func (p DraftPatch) Merge(next DraftPatch) DraftPatch {
	if next.Name != nil {
		p.Name = next.Name
	}
	if next.Subject != nil {
		p.Subject = next.Subject
	}
	if next.PreviewText != nil {
		p.PreviewText = next.PreviewText
	}
	if next.AudienceListID != nil {
		p.AudienceListID = next.AudienceListID
	}
	if next.AudienceTags != nil {
		p.AudienceTags = next.AudienceTags
	}
	if next.Step != nil {
		p.Step = next.Step
	}
	if next.Body != nil {
		p.Body = next.Body
	}
	if next.ReferenceURL != nil {
		p.ReferenceURL = next.ReferenceURL
	}
	if next.Analysis != nil {
		p.Analysis = next.Analysis
	}
	if next.Status != nil {
		p.Status = next.Status
	}
	return p
}

// IsEmpty reports whether the patch changes nothing.
func (p DraftPatch) IsEmpty() bool {
	return p == DraftPatch{}
}

// Apply returns d with the patch fields written over it.
func (p DraftPatch) Apply(d EmailDraft) EmailDraft {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Subject != nil {
		d.Subject = *p.Subject
	}
	if p.PreviewText != nil {
		d.PreviewText = *p.PreviewText
	}
	if p.AudienceListID != nil {
		d.AudienceListID = *p.AudienceListID
	}
	if p.AudienceTags != nil {
		d.AudienceTags = *p.AudienceTags
	}
	if p.Step != nil {
		d.Step = *p.Step
	}
	if p.Body != nil {
		d.Body = *p.Body
	}
	if p.ReferenceURL != nil {
		d.ReferenceURL = *p.ReferenceURL
	}
	if p.Analysis != nil {
		d.Analysis = *p.Analysis
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	return d
}
