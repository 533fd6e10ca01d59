// Package jobs runs the background syncs that pull Vimeo OTT customers,
// Mailchimp members and YouTube uploads into the local store.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pblonline/ops-dashboard/internal/clients/mailchimp"
	"github.com/pblonline/ops-dashboard/internal/clients/vimeo"
	"github.com/pblonline/ops-dashboard/internal/types"
	"github.com/pblonline/ops-dashboard/internal/utils"
)

type VimeoSource interface {
	ListCustomers(ctx context.Context, productID string) ([]vimeo.Customer, error)
}

type MailchimpSource interface {
	Lists(ctx context.Context) ([]mailchimp.List, error)
	ListMembers(ctx context.Context, listID string) ([]mailchimp.Member, error)
}

type VideoSource interface {
	ListChannelVideos(ctx context.Context, channelID string) ([]types.Video, error)
}

type MemberStore interface {
	ListMembers(ctx context.Context) ([]types.ConsolidatedMember, error)
	ReplaceMembers(ctx context.Context, members []types.ConsolidatedMember) error
}

type VideoStore interface {
	ListVideos(ctx context.Context) ([]types.Video, error)
	PutVideos(ctx context.Context, videos []types.Video) error
}

// Sources holds the upstream clients; nil means the integration is not configured.
type Sources struct {
	Vimeo          VimeoSource
	VimeoProductID string
	VimeoProduct   string // product name used when a customer record carries none
	Mailchimp      MailchimpSource
	MailchimpList  string // empty syncs every audience
	YouTube        VideoSource
	YouTubeChannel string
}

type Service struct {
	src     Sources
	members MemberStore
	videos  VideoStore
	runs    RunStore
	workers *WorkerPool
}

// NewService registers the sync handlers on workers.
func NewService(src Sources, members MemberStore, videos VideoStore, runs RunStore, workers *WorkerPool) *Service {
	s := &Service{src: src, members: members, videos: videos, runs: runs, workers: workers}
	workers.SetHandler(types.SyncKindConsolidate, s.consolidate)
	workers.SetHandler(types.SyncKindVimeo, s.syncVimeo)
	workers.SetHandler(types.SyncKindMailchimp, s.syncMailchimp)
	workers.SetHandler(types.SyncKindYouTube, s.syncYouTube)
	return s
}

func (s *Service) configured(kind types.SyncKind) bool {
	switch kind {
	case types.SyncKindVimeo:
		return s.src.Vimeo != nil
	case types.SyncKindMailchimp:
		return s.src.Mailchimp != nil
	case types.SyncKindConsolidate:
		return s.src.Vimeo != nil && s.src.Mailchimp != nil
	case types.SyncKindYouTube:
		return s.src.YouTube != nil && s.src.YouTubeChannel != ""
	}
	return false
}

// Submit records a pending run and queues it.
func (s *Service) Submit(ctx context.Context, kind types.SyncKind) (*types.SyncRun, error) {
	if !s.configured(kind) {
		return nil, fmt.Errorf("%s sync: %w", kind, types.ErrNotConfigured)
	}

	run := types.SyncRun{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    types.StatusPending,
		StartedAt: time.Now().UTC(),
	}
	if err := s.runs.CreateSyncRun(ctx, run); err != nil {
		return nil, err
	}

	utils.Zlog.Info("Enqueueing sync job",
		zap.String("jobId", run.ID),
		zap.String("kind", string(kind)))

	if ok := s.workers.Enqueue(Job{ID: run.ID, Kind: kind, CreatedAt: run.StartedAt}); !ok {
		now := time.Now().UTC()
		run.Status = types.StatusFailed
		run.Error = types.ErrQueueFull.Error()
		run.FinishedAt = &now
		if err := s.runs.UpdateSyncRun(ctx, run); err != nil {
			utils.Zlog.Error("Failed to mark rejected sync run", zap.String("jobId", run.ID), zap.Error(err))
		}
		return nil, types.ErrQueueFull
	}
	return &run, nil
}

func (s *Service) LatestRun(ctx context.Context, kind types.SyncKind) (*types.SyncRun, error) {
	return s.runs.LatestSyncRun(ctx, kind)
}

// consolidate fetches both platforms in parallel and replaces the member table.
func (s *Service) consolidate(ctx context.Context, _ Job) (int, error) {
	var (
		customers []vimeo.Customer
		audiences []audience
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = s.src.Vimeo.ListCustomers(gctx, s.src.VimeoProductID)
		if err != nil {
			return fmt.Errorf("vimeo: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		audiences, err = s.fetchAudiences(gctx)
		if err != nil {
			return fmt.Errorf("mailchimp: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	idx := newMemberIndex(nil)
	idx.applyVimeo(customers, s.src.VimeoProduct)
	for _, a := range audiences {
		idx.applyMailchimp(a.list, a.members)
	}
	return s.replace(ctx, idx)
}

// syncVimeo refreshes only the Vimeo columns of the stored members.
func (s *Service) syncVimeo(ctx context.Context, _ Job) (int, error) {
	customers, err := s.src.Vimeo.ListCustomers(ctx, s.src.VimeoProductID)
	if err != nil {
		return 0, fmt.Errorf("vimeo: %w", err)
	}
	existing, err := s.members.ListMembers(ctx)
	if err != nil {
		return 0, err
	}

	idx := newMemberIndex(existing)
	idx.clearVimeo()
	idx.applyVimeo(customers, s.src.VimeoProduct)
	return s.replace(ctx, idx)
}

// syncMailchimp refreshes only the Mailchimp columns of the stored members.
func (s *Service) syncMailchimp(ctx context.Context, _ Job) (int, error) {
	audiences, err := s.fetchAudiences(ctx)
	if err != nil {
		return 0, fmt.Errorf("mailchimp: %w", err)
	}
	existing, err := s.members.ListMembers(ctx)
	if err != nil {
		return 0, err
	}

	idx := newMemberIndex(existing)
	idx.clearMailchimp()
	for _, a := range audiences {
		idx.applyMailchimp(a.list, a.members)
	}
	return s.replace(ctx, idx)
}

func (s *Service) replace(ctx context.Context, idx memberIndex) (int, error) {
	members := idx.members()
	if err := s.members.ReplaceMembers(ctx, members); err != nil {
		return 0, err
	}
	return len(members), nil
}

type audience struct {
	list    mailchimp.List
	members []mailchimp.Member
}

func (s *Service) fetchAudiences(ctx context.Context) ([]audience, error) {
	lists, err := s.src.Mailchimp.Lists(ctx)
	if err != nil {
		return nil, err
	}

	var out []audience
	for _, l := range lists {
		if s.src.MailchimpList != "" && l.ID != s.src.MailchimpList {
			continue
		}
		members, err := s.src.Mailchimp.ListMembers(ctx, l.ID)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", l.ID, err)
		}
		out = append(out, audience{list: l, members: members})
	}
	if s.src.MailchimpList != "" && len(out) == 0 {
		return nil, fmt.Errorf("list %s: %w", s.src.MailchimpList, types.ErrNotFound)
	}
	return out, nil
}

// syncYouTube refreshes the video cache, keeping transcripts and generated
// metadata that only exist locally.
func (s *Service) syncYouTube(ctx context.Context, _ Job) (int, error) {
	fetched, err := s.src.YouTube.ListChannelVideos(ctx, s.src.YouTubeChannel)
	if err != nil {
		return 0, fmt.Errorf("youtube: %w", err)
	}
	existing, err := s.videos.ListVideos(ctx)
	if err != nil {
		return 0, err
	}

	local := make(map[string]types.Video, len(existing))
	for _, v := range existing {
		local[v.ID] = v
	}
	for i := range fetched {
		if prev, ok := local[fetched[i].ID]; ok {
			fetched[i].Transcript = prev.Transcript
			fetched[i].GeneratedTitle = prev.GeneratedTitle
			fetched[i].GeneratedDescription = prev.GeneratedDescription
			fetched[i].GeneratedTags = prev.GeneratedTags
		}
	}

	if err := s.videos.PutVideos(ctx, fetched); err != nil {
		return 0, err
	}
	return len(fetched), nil
}
