// Package reconcile finds Mailchimp tags that contradict a member's Vimeo OTT
// subscription and computes the tag changes that bring them back in line.
//
// Matching is a case-insensitive substring test: a tag is a "cancelled tag"
// when it contains both the cancelled word and the group word, so
// "recently cancelled members club" counts. Tags are not normalised.
package reconcile

import (
	"strings"

	"github.com/pblonline/ops-dashboard/internal/types"
)

const (
	reasonRemoveCancelled = "Active PBL Online subscriber still tagged as cancelled"
	reasonAddCurrent      = "Active PBL Online subscriber missing current members tag"
	reasonRemoveCurrent   = "No active PBL Online subscription but tagged as current"
	reasonAddCancelled    = "No active PBL Online subscription and missing cancelled members tag"
)

type Reconciler struct {
	rules Rules
}

func New(rules Rules) *Reconciler {
	return &Reconciler{rules: rules}
}

var defaultReconciler = New(DefaultRules())

// IsPBLOnlineActive reports whether m has an enabled PBL Online Subscription.
func IsPBLOnlineActive(m types.ConsolidatedMember) bool {
	return defaultReconciler.IsActive(m)
}

func FindWrongTagMembers(members []types.ConsolidatedMember) []types.ConsolidatedMember {
	return defaultReconciler.WrongTagMembers(members)
}

func FindOutdatedTagMembers(members []types.ConsolidatedMember) []types.ConsolidatedMember {
	return defaultReconciler.OutdatedTagMembers(members)
}

func BuildFixActions(members []types.ConsolidatedMember) []types.TagFixAction {
	return defaultReconciler.FixActions(members)
}

func Summarize(members []types.ConsolidatedMember) types.MismatchSummary {
	return defaultReconciler.Summarize(members)
}

func (r *Reconciler) Rules() Rules {
	return r.rules
}

func (r *Reconciler) IsActive(m types.ConsolidatedMember) bool {
	return string(m.VimeoStatus) == r.rules.ActiveStatus && m.VimeoProduct == r.rules.ActiveProduct
}

func (r *Reconciler) isCancelledTag(tag string) bool {
	return containsAll(tag, r.rules.CancelledWord, r.rules.GroupWord)
}

func (r *Reconciler) isCurrentTag(tag string) bool {
	return containsAll(tag, r.rules.CurrentWord, r.rules.GroupWord)
}

// WrongTagMembers returns active members carrying a cancelled tag.
func (r *Reconciler) WrongTagMembers(members []types.ConsolidatedMember) []types.ConsolidatedMember {
	var out []types.ConsolidatedMember
	for _, m := range members {
		if r.IsActive(m) && anyTag(m.MailchimpTags, r.isCancelledTag) {
			out = append(out, m)
		}
	}
	return out
}

// OutdatedTagMembers returns inactive members carrying a current tag.
func (r *Reconciler) OutdatedTagMembers(members []types.ConsolidatedMember) []types.ConsolidatedMember {
	var out []types.ConsolidatedMember
	for _, m := range members {
		if !r.IsActive(m) && anyTag(m.MailchimpTags, r.isCurrentTag) {
			out = append(out, m)
		}
	}
	return out
}

// MismatchOf classifies a single member. ok is false when its tags agree
// with its subscription.
func (r *Reconciler) MismatchOf(m types.ConsolidatedMember) (kind types.MismatchKind, ok bool) {
	if r.IsActive(m) {
		if anyTag(m.MailchimpTags, r.isCancelledTag) {
			return types.MismatchWrong, true
		}
		return "", false
	}
	if anyTag(m.MailchimpTags, r.isCurrentTag) {
		return types.MismatchOutdated, true
	}
	return "", false
}

// FixActions builds the corrective tag changes for every mismatched member,
// in input order. Per member the removes come first, then at most one add.
func (r *Reconciler) FixActions(members []types.ConsolidatedMember) []types.TagFixAction {
	var actions []types.TagFixAction
	for _, m := range members {
		actions = append(actions, r.actionsFor(m)...)
	}
	return actions
}

func (r *Reconciler) actionsFor(m types.ConsolidatedMember) []types.TagFixAction {
	kind, ok := r.MismatchOf(m)
	if !ok {
		return nil
	}

	var (
		stale     func(string) bool
		wanted    func(string) bool
		addTag    string
		removeWhy string
		addWhy    string
	)
	switch kind {
	case types.MismatchWrong:
		stale, wanted = r.isCancelledTag, r.isCurrentTag
		addTag, removeWhy, addWhy = r.rules.CurrentTag, reasonRemoveCancelled, reasonAddCurrent
	default:
		stale, wanted = r.isCurrentTag, r.isCancelledTag
		addTag, removeWhy, addWhy = r.rules.CancelledTag, reasonRemoveCurrent, reasonAddCancelled
	}

	var actions []types.TagFixAction
	seen := make(map[string]bool)
	for _, tag := range m.MailchimpTags {
		if !stale(tag) || seen[tag] {
			continue
		}
		seen[tag] = true
		actions = append(actions, types.TagFixAction{
			Email:  m.Email,
			Action: types.TagActionRemove,
			Tag:    tag,
			Reason: removeWhy,
		})
	}

	if !anyTag(m.MailchimpTags, wanted) {
		actions = append(actions, types.TagFixAction{
			Email:  m.Email,
			Action: types.TagActionAdd,
			Tag:    addTag,
			Reason: addWhy,
		})
	}
	return actions
}

func (r *Reconciler) Summarize(members []types.ConsolidatedMember) types.MismatchSummary {
	summary := types.MismatchSummary{
		Wrong:    []types.ConsolidatedMember{},
		Outdated: []types.ConsolidatedMember{},
		Actions:  []types.TagFixAction{},
	}
	for _, m := range members {
		kind, ok := r.MismatchOf(m)
		if !ok {
			continue
		}
		if kind == types.MismatchWrong {
			summary.Wrong = append(summary.Wrong, m)
		} else {
			summary.Outdated = append(summary.Outdated, m)
		}
		summary.Actions = append(summary.Actions, r.actionsFor(m)...)
	}
	return summary
}

func anyTag(tags []string, match func(string) bool) bool {
	for _, tag := range tags {
		if match(tag) {
			return true
		}
	}
	return false
}

func containsAll(s string, words ...string) bool {
	s = strings.ToLower(s)
	for _, w := range words {
		if !strings.Contains(s, strings.ToLower(w)) {
			return false
		}
	}
	return true
}
