package customers

import (
	"context"
	"sort"
	"strings"

	"github.com/pblonline/ops-dashboard/internal/reconcile"
	"github.com/pblonline/ops-dashboard/internal/shared"
	"github.com/pblonline/ops-dashboard/internal/types"
)

type MemberStore interface {
	ListMembers(ctx context.Context) ([]types.ConsolidatedMember, error)
}

type SyncSubmitter interface {
	Submit(ctx context.Context, kind types.SyncKind) (*types.SyncRun, error)
}

type Service struct {
	members MemberStore
	rec     *reconcile.Reconciler
	jobs    SyncSubmitter
}

func NewService(members MemberStore, rec *reconcile.Reconciler, jobs SyncSubmitter) *Service {
	return &Service{members: members, rec: rec, jobs: jobs}
}

// List filters, sorts and pages the stored members.
func (s *Service) List(ctx context.Context, f Filter, p shared.Page) (*ListResponse, error) {
	all, err := s.members.ListMembers(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]types.ConsolidatedMember, 0, len(all))
	for _, m := range all {
		if s.matches(m, f) {
			matched = append(matched, m)
		}
	}
	sortMembers(matched, f.SortField, f.SortDesc)

	start, end := p.Bounds(len(matched))
	return &ListResponse{
		Members:    matched[start:end],
		Total:      len(matched),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: shared.TotalPages(len(matched), p.PageSize),
	}, nil
}

func (s *Service) matches(m types.ConsolidatedMember, f Filter) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(m.Email), q) && !strings.Contains(strings.ToLower(m.Name), q) {
			return false
		}
	}
	if !statusMatches(string(m.VimeoStatus), f.VimeoStatus) {
		return false
	}
	if !statusMatches(string(m.MailchimpStatus), f.MailchimpStatus) {
		return false
	}
	if f.Source != "" && m.Source != f.Source {
		return false
	}
	if f.Tag != "" && !hasTag(m.MailchimpTags, f.Tag) {
		return false
	}
	if f.Mismatch != "" {
		kind, ok := s.rec.MismatchOf(m)
		if !ok || (f.Mismatch != "any" && string(kind) != f.Mismatch) {
			return false
		}
	}
	return true
}

func statusMatches(status, want string) bool {
	switch want {
	case "":
		return true
	case noneStatus:
		return status == ""
	default:
		return status == want
	}
}

func hasTag(tags []string, q string) bool {
	q = strings.ToLower(q)
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func sortMembers(ms []types.ConsolidatedMember, field string, desc bool) {
	if field == "" {
		field = "email"
	}
	less := func(a, b types.ConsolidatedMember) bool {
		switch field {
		case "name":
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case "vimeoJoinDate":
			// Members without a join date sort last.
			if a.VimeoJoinDate == nil || b.VimeoJoinDate == nil {
				return a.VimeoJoinDate != nil && b.VimeoJoinDate == nil
			}
			return a.VimeoJoinDate.Before(*b.VimeoJoinDate)
		case "updatedAt":
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.Email < b.Email
		}
	}
	sort.SliceStable(ms, func(i, j int) bool {
		if desc {
			return less(ms[j], ms[i])
		}
		return less(ms[i], ms[j])
	})
}

// Mismatches returns the members whose tags contradict their subscription
// and the actions that would fix them.
func (s *Service) Mismatches(ctx context.Context) (types.MismatchSummary, error) {
	all, err := s.members.ListMembers(ctx)
	if err != nil {
		return types.MismatchSummary{}, err
	}
	return s.rec.Summarize(all), nil
}

func (s *Service) Consolidate(ctx context.Context) (*types.SyncRun, error) {
	return s.jobs.Submit(ctx, types.SyncKindConsolidate)
}
