package customers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pblonline/ops-dashboard/internal/shared"
	"github.com/pblonline/ops-dashboard/internal/types"
)

// noneStatus selects members without a status on that platform.
const noneStatus = "none"

var sortFields = []string{"email", "name", "vimeoJoinDate", "updatedAt"}

// Filter narrows the consolidated member list. Empty fields match everything.
type Filter struct {
	Search          string
	VimeoStatus     string
	MailchimpStatus string
	Source          types.MemberSource
	Tag             string
	Mismatch        string
	SortField       string
	SortDesc        bool
}

type ListResponse struct {
	Members    []types.ConsolidatedMember `json:"members"`
	Total      int                        `json:"total"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"pageSize"`
	TotalPages int                        `json:"totalPages"`
}

func parseFilter(c *gin.Context) (Filter, error) {
	f := Filter{
		Search:          strings.TrimSpace(c.Query("search")),
		VimeoStatus:     strings.ToLower(c.Query("vimeoStatus")),
		MailchimpStatus: strings.ToLower(c.Query("mailchimpStatus")),
		Source:          types.MemberSource(strings.ToLower(c.Query("source"))),
		Tag:             strings.TrimSpace(c.Query("tag")),
		Mismatch:        strings.ToLower(c.Query("mismatch")),
	}

	switch f.Source {
	case "", types.SourceVimeo, types.SourceMailchimp, types.SourceBoth:
	default:
		return f, fmt.Errorf("%w: source must be vimeo, mailchimp or both", types.ErrValidation)
	}

	switch f.Mismatch {
	case "", string(types.MismatchWrong), string(types.MismatchOutdated), "any":
	default:
		return f, fmt.Errorf("%w: mismatch must be wrong, outdated or any", types.ErrValidation)
	}

	field, desc, err := shared.ParseSort(c.Query("sort"), sortFields...)
	if err != nil {
		return f, err
	}
	f.SortField, f.SortDesc = field, desc
	return f, nil
}
