package mailchimp

import "github.com/pblonline/ops-dashboard/internal/types"

// FixTagsRequest carries the actions to apply. An empty list means the
// server computes them from the stored members.
type FixTagsRequest struct {
	ListID  string               `json:"listId"`
	Actions []types.TagFixAction `json:"actions" binding:"omitempty,dive"`
}

type FixTagsResponse struct {
	ListID  string `json:"listId"`
	Applied int    `json:"applied"`
	Members int    `json:"members"`
}

type AddToListRequest struct {
	ListID  string              `json:"listId"`
	Members []types.ListContact `json:"members" binding:"required,min=1,dive"`
}

type AddToListResponse struct {
	ListID string   `json:"listId"`
	Added  int      `json:"added"`
	Emails []string `json:"emails"`
}

type ListSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
}

type ListsResponse struct {
	Lists []ListSummary `json:"lists"`
}

// maxCSVSize bounds an uploaded audience import.
const maxCSVSize = 5 << 20
