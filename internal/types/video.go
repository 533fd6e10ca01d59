package types

import "time"

// Video is a YouTube upload cached locally, with the transcript and any
// AI-generated metadata attached to it.
type Video struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Tags                 []string  `json:"tags"`
	CategoryID           string    `json:"categoryId,omitempty"`
	PublishedAt          time.Time `json:"publishedAt"`
	ThumbnailURL         string    `json:"thumbnailUrl"`
	Duration             string    `json:"duration"`
	ViewCount            uint64    `json:"viewCount"`
	LikeCount            uint64    `json:"likeCount"`
	CommentCount         uint64    `json:"commentCount"`
	PrivacyStatus        string    `json:"privacyStatus"`
	Transcript           string    `json:"transcript,omitempty"`
	GeneratedTitle       string    `json:"generatedTitle,omitempty"`
	GeneratedDescription string    `json:"generatedDescription,omitempty"`
	GeneratedTags        []string  `json:"generatedTags,omitempty"`
	SyncedAt             time.Time `json:"syncedAt"`
}

// VideoMetadata is what the LLM proposes for a video.
type VideoMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// VideoUpdate is pushed to YouTube; nil fields keep the current value.
type VideoUpdate struct {
	VideoID     string    `json:"videoId" binding:"required"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}
