package types

import "time"

type SyncKind string

const (
	SyncKindVimeo       SyncKind = "vimeo"
	SyncKindMailchimp   SyncKind = "mailchimp"
	SyncKindYouTube     SyncKind = "youtube"
	SyncKindConsolidate SyncKind = "consolidate"
)

type ProcessStatus string

const (
	StatusPending    ProcessStatus = "pending"
	StatusProcessing ProcessStatus = "processing"
	StatusCompleted  ProcessStatus = "completed"
	StatusFailed     ProcessStatus = "failed"
	StatusPartial    ProcessStatus = "partial"
)

// SyncRun records one background pull from an upstream platform.
type SyncRun struct {
	ID          string        `json:"id"`
	Kind        SyncKind      `json:"kind"`
	Status      ProcessStatus `json:"status"`
	RecordCount int           `json:"recordCount"`
	Error       string        `json:"error,omitempty"`
	StartedAt   time.Time     `json:"startedAt"`
	FinishedAt  *time.Time    `json:"finishedAt,omitempty"`
}
