package types

import (
	"context"
	"time"
)

type SourceType string

const (
	SourceTypeWebsite    SourceType = "website"
	SourceTypePDF        SourceType = "pdf"
	SourceTypeMarkdown   SourceType = "markdown"
	SourceTypeText       SourceType = "text"
	SourceTypeTranscript SourceType = "transcript"
)

// Config controls how reference material is split before it reaches a prompt.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
}

func DefaultConfig() *Config {
	return &Config{
		ChunkSize:    4000,
		ChunkOverlap: 200,
	}
}

type ContentChunk struct {
	Content    string                 `json:"content"`
	ChunkIndex int                    `json:"chunkIndex"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// ProcessedContent is reference material after loading and splitting.
type ProcessedContent struct {
	SourceType  SourceType             `json:"sourceType"`
	Content     string                 `json:"content"`
	Topic       string                 `json:"topic"`
	Chunks      []ContentChunk         `json:"chunks"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	ProcessedAt time.Time              `json:"processedAt"`
}

// Processor turns one piece of reference material into chunks.
type Processor interface {
	Process(ctx context.Context) (*ProcessedContent, error)
	GetSourceType() SourceType
}

// ListContact is one row destined for a Mailchimp audience.
type ListContact struct {
	Email string   `json:"email" binding:"required,email"`
	Name  string   `json:"name,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}
