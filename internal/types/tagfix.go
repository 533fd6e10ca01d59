package types

type TagAction string

const (
	TagActionAdd    TagAction = "add"
	TagActionRemove TagAction = "remove"
)

// TagFixAction is an instruction to change one Mailchimp tag on one member.
// It is built in memory and never persisted.
type TagFixAction struct {
	Email  string    `json:"email" binding:"required,email"`
	Action TagAction `json:"action" binding:"required,oneof=add remove"`
	Tag    string    `json:"tag" binding:"required"`
	Reason string    `json:"reason"`
}

type MismatchKind string

const (
	MismatchWrong    MismatchKind = "wrong"
	MismatchOutdated MismatchKind = "outdated"
)

// MismatchSummary groups members whose tags contradict their subscription state.
type MismatchSummary struct {
	Wrong    []ConsolidatedMember `json:"wrongTag"`
	Outdated []ConsolidatedMember `json:"outdatedTag"`
	Actions  []TagFixAction       `json:"actions"`
}
