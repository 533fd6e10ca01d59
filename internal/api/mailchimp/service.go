// Package mailchimp serves the audience endpoints: list browsing, tag
// fixes and contact imports.
package mailchimp

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	mc "github.com/pblonline/ops-dashboard/internal/clients/mailchimp"
	"github.com/pblonline/ops-dashboard/internal/reconcile"
	"github.com/pblonline/ops-dashboard/internal/types"
	"github.com/pblonline/ops-dashboard/internal/utils"
)

type Client interface {
	Lists(ctx context.Context) ([]mc.List, error)
	UpdateMemberTags(ctx context.Context, listID, email string, tags []mc.TagUpdate) error
	UpsertMember(ctx context.Context, listID, email, name string) (*mc.Member, error)
}

type MemberStore interface {
	ListMembers(ctx context.Context) ([]types.ConsolidatedMember, error)
	ApplyTagActions(ctx context.Context, actions []types.TagFixAction) error
}

type SyncSubmitter interface {
	Submit(ctx context.Context, kind types.SyncKind) (*types.SyncRun, error)
}

type Service struct {
	client        Client
	members       MemberStore
	rec           *reconcile.Reconciler
	jobs          SyncSubmitter
	defaultListID string
}

// NewService builds the service. client may be nil when Mailchimp is not configured.
func NewService(client Client, members MemberStore, rec *reconcile.Reconciler, jobs SyncSubmitter, defaultListID string) *Service {
	return &Service{client: client, members: members, rec: rec, jobs: jobs, defaultListID: defaultListID}
}

func (s *Service) Lists(ctx context.Context) (*ListsResponse, error) {
	if s.client == nil {
		return nil, fmt.Errorf("mailchimp: %w", types.ErrNotConfigured)
	}
	lists, err := s.client.Lists(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUpstream, err)
	}
	resp := &ListsResponse{Lists: make([]ListSummary, 0, len(lists))}
	for _, l := range lists {
		resp.Lists = append(resp.Lists, ListSummary{ID: l.ID, Name: l.Name, MemberCount: l.Stats.MemberCount})
	}
	return resp, nil
}

func (s *Service) SyncMembers(ctx context.Context) (*types.SyncRun, error) {
	return s.jobs.Submit(ctx, types.SyncKindMailchimp)
}

// listID picks the audience for a write: the requested one, then
// MAILCHIMP_LIST_ID, then the only audience on the account.
func (s *Service) listID(ctx context.Context, requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	if s.defaultListID != "" {
		return s.defaultListID, nil
	}
	lists, err := s.client.Lists(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrUpstream, err)
	}
	if len(lists) != 1 {
		return "", fmt.Errorf("%w: listId is required when MAILCHIMP_LIST_ID is not set and the account has %d audiences",
			types.ErrValidation, len(lists))
	}
	return lists[0].ID, nil
}

// FixTags applies tag actions one member at a time, in order, to listID
// (see listID for the fallbacks). The first upstream failure stops the
// batch; members already updated stay updated and are mirrored locally.
func (s *Service) FixTags(ctx context.Context, listID string, actions []types.TagFixAction) (*FixTagsResponse, error) {
	if s.client == nil {
		return nil, fmt.Errorf("mailchimp: %w", types.ErrNotConfigured)
	}
	listID, err := s.listID(ctx, listID)
	if err != nil {
		return nil, err
	}

	if len(actions) == 0 {
		members, err := s.members.ListMembers(ctx)
		if err != nil {
			return nil, err
		}
		actions = s.rec.FixActions(members)
	}

	groups := groupByEmail(actions)
	var applied []types.TagFixAction
	for _, g := range groups {
		if err := s.client.UpdateMemberTags(ctx, listID, g.email, tagUpdates(g.actions)); err != nil {
			s.mirror(ctx, applied)
			return nil, fmt.Errorf("%w: failed to update tags for %s: %v", types.ErrUpstream, g.email, err)
		}
		applied = append(applied, g.actions...)
	}

	if err := s.members.ApplyTagActions(ctx, applied); err != nil {
		return nil, err
	}

	utils.Zlog.Info("Applied tag fixes",
		zap.Int("actions", len(applied)),
		zap.Int("members", len(groups)))

	return &FixTagsResponse{ListID: listID, Applied: len(applied), Members: len(groups)}, nil
}

func (s *Service) mirror(ctx context.Context, applied []types.TagFixAction) {
	if len(applied) == 0 {
		return
	}
	if err := s.members.ApplyTagActions(ctx, applied); err != nil {
		utils.Zlog.Error("Failed to record partially applied tag fixes", zap.Error(err))
	}
}

type emailGroup struct {
	email   string
	actions []types.TagFixAction
}

// groupByEmail keeps the order in which members first appear.
func groupByEmail(actions []types.TagFixAction) []emailGroup {
	var groups []emailGroup
	pos := map[string]int{}
	for _, a := range actions {
		key := types.NormalizeEmail(a.Email)
		i, ok := pos[key]
		if !ok {
			i = len(groups)
			pos[key] = i
			groups = append(groups, emailGroup{email: key})
		}
		groups[i].actions = append(groups[i].actions, a)
	}
	return groups
}

func tagUpdates(actions []types.TagFixAction) []mc.TagUpdate {
	out := make([]mc.TagUpdate, 0, len(actions))
	for _, a := range actions {
		status := mc.TagActive
		if a.Action == types.TagActionRemove {
			status = mc.TagInactive
		}
		out = append(out, mc.TagUpdate{Name: a.Tag, Status: status})
	}
	return out
}

// AddToList upserts contacts into an audience and activates their tags.
func (s *Service) AddToList(ctx context.Context, listID string, contacts []types.ListContact) (*AddToListResponse, error) {
	if s.client == nil {
		return nil, fmt.Errorf("mailchimp: %w", types.ErrNotConfigured)
	}
	listID, err := s.listID(ctx, listID)
	if err != nil {
		return nil, err
	}

	resp := &AddToListResponse{ListID: listID, Emails: make([]string, 0, len(contacts))}
	for _, contact := range contacts {
		email := types.NormalizeEmail(contact.Email)
		if _, err := s.client.UpsertMember(ctx, listID, email, contact.Name); err != nil {
			return nil, fmt.Errorf("%w: failed to add %s: %v", types.ErrUpstream, email, err)
		}
		if len(contact.Tags) > 0 {
			updates := make([]mc.TagUpdate, 0, len(contact.Tags))
			for _, tag := range contact.Tags {
				updates = append(updates, mc.TagUpdate{Name: tag, Status: mc.TagActive})
			}
			if err := s.client.UpdateMemberTags(ctx, listID, email, updates); err != nil {
				return nil, fmt.Errorf("%w: failed to tag %s: %v", types.ErrUpstream, email, err)
			}
		}
		resp.Added++
		resp.Emails = append(resp.Emails, email)
	}

	utils.Zlog.Info("Added contacts to list",
		zap.String("listId", listID),
		zap.Int("added", resp.Added))

	return resp, nil
}
