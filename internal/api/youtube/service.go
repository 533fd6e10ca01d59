// Package youtube serves the cached video library, the channel OAuth
// connection, transcripts and AI-assisted metadata.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	ytclient "github.com/pblonline/ops-dashboard/internal/clients/youtube"
	"github.com/pblonline/ops-dashboard/internal/llm"
	"github.com/pblonline/ops-dashboard/internal/processors"
	"github.com/pblonline/ops-dashboard/internal/shared"
	"github.com/pblonline/ops-dashboard/internal/types"
	"github.com/pblonline/ops-dashboard/internal/utils"
)

// TokenProvider keys the stored channel token.
const TokenProvider = "youtube"

type VideoStore interface {
	ListVideos(ctx context.Context) ([]types.Video, error)
	GetVideo(ctx context.Context, id string) (*types.Video, error)
	PutVideos(ctx context.Context, videos []types.Video) error
}

type TokenStore interface {
	SaveToken(ctx context.Context, provider string, tok *oauth2.Token) error
	LoadToken(ctx context.Context, provider string) (*oauth2.Token, error)
}

type SyncService interface {
	Submit(ctx context.Context, kind types.SyncKind) (*types.SyncRun, error)
	LatestRun(ctx context.Context, kind types.SyncKind) (*types.SyncRun, error)
}

type VideoEditor interface {
	UpdateVideo(ctx context.Context, update types.VideoUpdate) (*types.Video, error)
}

// EditorFactory builds a YouTube client acting as the connected channel.
type EditorFactory func(ctx context.Context, ts oauth2.TokenSource) (VideoEditor, error)

type Service struct {
	videos    VideoStore
	tokens    TokenStore
	jobs      SyncService
	gen       llm.Generator
	factory   *processors.Factory
	oauth     *oauth2.Config
	newEditor EditorFactory
	states    *stateStore
}

// NewService builds the service. gen and oauth may be nil when Gemini or
// Google OAuth are not configured.
func NewService(videos VideoStore, tokens TokenStore, jobs SyncService, gen llm.Generator,
	factory *processors.Factory, oauth *oauth2.Config, newEditor EditorFactory) *Service {
	return &Service{
		videos:    videos,
		tokens:    tokens,
		jobs:      jobs,
		gen:       gen,
		factory:   factory,
		oauth:     oauth,
		newEditor: newEditor,
		states:    newStateStore(),
	}
}

func (s *Service) List(ctx context.Context, f Filter, p shared.Page) (*ListResponse, error) {
	all, err := s.videos.ListVideos(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]types.Video, 0, len(all))
	for _, v := range all {
		if matches(v, f) {
			matched = append(matched, v)
		}
	}
	sortVideos(matched, f.SortField, f.SortDesc)

	start, end := p.Bounds(len(matched))
	return &ListResponse{
		Videos:     matched[start:end],
		Total:      len(matched),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: shared.TotalPages(len(matched), p.PageSize),
	}, nil
}

func matches(v types.Video, f Filter) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(v.Title), q) &&
			!strings.Contains(strings.ToLower(v.Description), q) &&
			!containsFold(v.Tags, q) {
			return false
		}
	}
	if f.Privacy != "" && !strings.EqualFold(v.PrivacyStatus, f.Privacy) {
		return false
	}
	if f.HasTranscript != nil && (v.Transcript != "") != *f.HasTranscript {
		return false
	}
	return true
}

func containsFold(tags []string, q string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// sortVideos defaults to newest first.
func sortVideos(videos []types.Video, field string, desc bool) {
	if field == "" {
		field, desc = "publishedAt", true
	}
	less := func(a, b types.Video) bool {
		switch field {
		case "title":
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case "viewCount":
			return a.ViewCount < b.ViewCount
		case "likeCount":
			return a.LikeCount < b.LikeCount
		case "syncedAt":
			return a.SyncedAt.Before(b.SyncedAt)
		default:
			return a.PublishedAt.Before(b.PublishedAt)
		}
	}
	sort.SliceStable(videos, func(i, j int) bool {
		if desc {
			return less(videos[j], videos[i])
		}
		return less(videos[i], videos[j])
	})
}

func (s *Service) Get(ctx context.Context, id string) (*types.Video, error) {
	return s.videos.GetVideo(ctx, id)
}

func (s *Service) Sync(ctx context.Context) (*types.SyncRun, error) {
	return s.jobs.Submit(ctx, types.SyncKindYouTube)
}

// LastSync returns the latest YouTube sync run, or nil if none ran yet.
func (s *Service) LastSync(ctx context.Context) (*types.SyncRun, error) {
	run, err := s.jobs.LatestRun(ctx, types.SyncKindYouTube)
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil
	}
	return run, err
}

// AuthURL starts the OAuth consent flow for the channel owner.
func (s *Service) AuthURL(ctx context.Context) (*AuthResponse, error) {
	if s.oauth == nil {
		return nil, fmt.Errorf("google oauth: %w", types.ErrNotConfigured)
	}
	state, err := ytclient.NewState()
	if err != nil {
		return nil, err
	}
	s.states.add(state)

	_, err = s.tokens.LoadToken(ctx, TokenProvider)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}
	return &AuthResponse{AuthURL: ytclient.AuthURL(s.oauth, state), State: state, Connected: err == nil}, nil
}

// Callback checks state, exchanges the code and stores the token.
func (s *Service) Callback(ctx context.Context, state, code string) error {
	if s.oauth == nil {
		return fmt.Errorf("google oauth: %w", types.ErrNotConfigured)
	}
	if code == "" {
		return fmt.Errorf("%w: code is required", types.ErrValidation)
	}
	if !s.states.consume(state) {
		return fmt.Errorf("%w: unknown or expired state", types.ErrValidation)
	}

	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: token exchange: %v", types.ErrUpstream, err)
	}
	if err := s.tokens.SaveToken(ctx, TokenProvider, tok); err != nil {
		return err
	}
	utils.Zlog.Info("YouTube channel connected", zap.Bool("refreshToken", tok.RefreshToken != ""))
	return nil
}

func (s *Service) Transcript(ctx context.Context, id string) (*TranscriptResponse, error) {
	v, err := s.videos.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TranscriptResponse{VideoID: v.ID, Transcript: v.Transcript}, nil
}

func (s *Service) SaveTranscript(ctx context.Context, id, transcript string) (*TranscriptResponse, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, fmt.Errorf("%w: transcript is empty", types.ErrValidation)
	}
	v, err := s.videos.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Transcript = transcript
	if err := s.videos.PutVideos(ctx, []types.Video{*v}); err != nil {
		return nil, err
	}
	return &TranscriptResponse{VideoID: v.ID, Transcript: v.Transcript}, nil
}

// summarize condenses the transcript chunk by chunk. Videos without a
// transcript fall back to their description.
func (s *Service) summarize(ctx context.Context, v *types.Video) ([]string, error) {
	if v.Transcript == "" {
		if strings.TrimSpace(v.Description) == "" {
			return nil, fmt.Errorf("%w: video %s has no transcript or description", types.ErrValidation, v.ID)
		}
		return []string{v.Description}, nil
	}

	pc, err := s.factory.CreateTranscriptProcessor(v.Transcript, v.Title).Process(ctx)
	if err != nil {
		return nil, err
	}
	prompts := make([]string, 0, len(pc.Chunks))
	for _, c := range pc.Chunks {
		prompts = append(prompts, llm.SummaryPrompt(v.Title, c.Content))
	}
	summaries, err := llm.GenerateBatch(ctx, s.gen, prompts, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUpstream, err)
	}

	utils.Zlog.Debug("Transcript summarised",
		zap.String("videoId", v.ID),
		zap.Int("chunks", len(pc.Chunks)))
	return summaries, nil
}

// GenerateMetadata proposes a title, description and tags and stores them
// on the video as generated fields.
func (s *Service) GenerateMetadata(ctx context.Context, id string) (*GenerateMetadataResponse, error) {
	if s.gen == nil {
		return nil, fmt.Errorf("gemini: %w", types.ErrNotConfigured)
	}
	v, err := s.videos.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summarize(ctx, v)
	if err != nil {
		return nil, err
	}

	raw, err := s.gen.Generate(ctx, llm.MetadataPrompt(v.Title, summaries), true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUpstream, err)
	}
	var meta types.VideoMetadata
	if err := llm.DecodeJSON(raw, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUpstream, err)
	}
	meta = clampMetadata(meta)

	v.GeneratedTitle = meta.Title
	v.GeneratedDescription = meta.Description
	v.GeneratedTags = meta.Tags
	if err := s.videos.PutVideos(ctx, []types.Video{*v}); err != nil {
		return nil, err
	}
	return &GenerateMetadataResponse{VideoID: v.ID, Metadata: meta}, nil
}

func clampMetadata(m types.VideoMetadata) types.VideoMetadata {
	m.Title = truncateRunes(strings.TrimSpace(m.Title), maxTitleLen)
	m.Description = truncateRunes(strings.TrimSpace(m.Description), maxDescriptionLen)
	tags := make([]string, 0, len(m.Tags))
	for _, t := range m.Tags {
		if t = strings.TrimSpace(t); t != "" && len(tags) < maxTags {
			tags = append(tags, t)
		}
	}
	m.Tags = tags
	return m
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (s *Service) GenerateContent(ctx context.Context, id string, kind llm.ContentKind) (*GenerateContentResponse, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: kind must be blog, email or social", types.ErrValidation)
	}
	if s.gen == nil {
		return nil, fmt.Errorf("gemini: %w", types.ErrNotConfigured)
	}
	v, err := s.videos.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summarize(ctx, v)
	if err != nil {
		return nil, err
	}

	content, err := s.gen.Generate(ctx, llm.ContentPrompt(kind, v.Title, watchURL(v.ID), summaries), false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUpstream, err)
	}
	return &GenerateContentResponse{VideoID: v.ID, Kind: kind, Content: strings.TrimSpace(content)}, nil
}

func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// UpdateVideo pushes snippet changes to YouTube as the connected channel,
// then refreshes the cached copy.
func (s *Service) UpdateVideo(ctx context.Context, update types.VideoUpdate) (*types.Video, error) {
	if s.oauth == nil || s.newEditor == nil {
		return nil, fmt.Errorf("google oauth: %w", types.ErrNotConfigured)
	}
	if update.Title == nil && update.Description == nil && update.Tags == nil {
		return nil, fmt.Errorf("%w: nothing to update", types.ErrValidation)
	}
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be blank", types.ErrValidation)
	}

	tok, err := s.tokens.LoadToken(ctx, TokenProvider)
	if errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("%w: connect the YouTube channel first", types.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	ts := ytclient.NewSavingTokenSource(ctx, s.oauth, tok, func(ctx context.Context, t *oauth2.Token) error {
		return s.tokens.SaveToken(ctx, TokenProvider, t)
	})
	editor, err := s.newEditor(ctx, ts)
	if err != nil {
		return nil, err
	}

	updated, err := editor.UpdateVideo(ctx, update)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", types.ErrUpstream, err)
	}

	cached, err := s.videos.GetVideo(ctx, update.VideoID)
	switch {
	case errors.Is(err, types.ErrNotFound):
		cached = updated
	case err != nil:
		return nil, err
	default:
		cached.Title = updated.Title
		cached.Description = updated.Description
		cached.Tags = updated.Tags
		cached.CategoryID = updated.CategoryID
	}
	if err := s.videos.PutVideos(ctx, []types.Video{*cached}); err != nil {
		return nil, err
	}

	utils.Zlog.Info("YouTube video updated", zap.String("videoId", update.VideoID))
	return cached, nil
}
