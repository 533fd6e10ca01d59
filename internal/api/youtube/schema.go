package youtube

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pblonline/ops-dashboard/internal/llm"
	"github.com/pblonline/ops-dashboard/internal/shared"
	"github.com/pblonline/ops-dashboard/internal/types"
)

var sortFields = []string{"publishedAt", "title", "viewCount", "likeCount", "syncedAt"}

type Filter struct {
	Search        string
	Privacy       string
	HasTranscript *bool
	SortField     string
	SortDesc      bool
}

type ListResponse struct {
	Videos     []types.Video `json:"videos"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}

type AuthResponse struct {
	AuthURL   string `json:"authUrl"`
	State     string `json:"state"`
	Connected bool   `json:"connected"`
}

type TranscriptRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}

type TranscriptResponse struct {
	VideoID    string `json:"videoId"`
	Transcript string `json:"transcript"`
}

type GenerateMetadataRequest struct {
	VideoID string `json:"videoId" binding:"required"`
}

type GenerateMetadataResponse struct {
	VideoID  string              `json:"videoId"`
	Metadata types.VideoMetadata `json:"metadata"`
}

type GenerateContentRequest struct {
	VideoID string          `json:"videoId" binding:"required"`
	Kind    llm.ContentKind `json:"kind" binding:"required"`
}

type GenerateContentResponse struct {
	VideoID string          `json:"videoId"`
	Kind    llm.ContentKind `json:"kind"`
	Content string          `json:"content"`
}

// YouTube's own limits on snippet fields.
const (
	maxTitleLen       = 100
	maxDescriptionLen = 5000
	maxTags           = 15
)

func parseFilter(c *gin.Context) (Filter, error) {
	f := Filter{
		Search:  strings.TrimSpace(c.Query("search")),
		Privacy: strings.ToLower(c.Query("privacy")),
	}

	switch f.Privacy {
	case "", "public", "unlisted", "private":
	default:
		return f, fmt.Errorf("%w: privacy must be public, unlisted or private", types.ErrValidation)
	}

	if v := c.Query("hasTranscript"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("%w: hasTranscript must be true or false", types.ErrValidation)
		}
		f.HasTranscript = &b
	}

	field, desc, err := shared.ParseSort(c.Query("sort"), sortFields...)
	if err != nil {
		return f, err
	}
	f.SortField, f.SortDesc = field, desc
	return f, nil
}
