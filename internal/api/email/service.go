// Package email backs the campaign wizard: draft storage with debounced
// autosave, Markdown preview, AI copy generation and campaign analysis.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	mc "github.com/pblonline/ops-dashboard/internal/clients/mailchimp"
	"github.com/pblonline/ops-dashboard/internal/llm"
	"github.com/pblonline/ops-dashboard/internal/processors"
	"github.com/pblonline/ops-dashboard/internal/types"
	"github.com/pblonline/ops-dashboard/internal/utils"
)

type DraftStore interface {
	ListDrafts(ctx context.Context) ([]types.EmailDraft, error)
	GetDraft(ctx context.Context, id string) (*types.EmailDraft, error)
	CreateDraft(ctx context.Context, d types.EmailDraft) (*types.EmailDraft, error)
	UpdateDraft(ctx context.Context, id string, p types.DraftPatch) (*types.EmailDraft, error)
	DeleteDraft(ctx context.Context, id string) error
}

type ReportSource interface {
	Reports(ctx context.Context, count int) ([]mc.Report, error)
}

// Autosaver holds draft patches until their quiet window ends.
type Autosaver interface {
	Submit(key string, value types.DraftPatch)
	Pending(key string) bool
	Peek(key string) (types.DraftPatch, bool)
	Take(key string) (types.DraftPatch, bool)
	Cancel(key string) bool
}

// Raw HTML in draft bodies is escaped since WithUnsafe is not set.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type Service struct {
	drafts    DraftStore
	autosaver Autosaver
	gen       llm.Generator
	reports   ReportSource
	factory   *processors.Factory
}

// NewService builds the service. gen and reports may be nil when Gemini or
// Mailchimp are not configured.
func NewService(drafts DraftStore, autosaver Autosaver, gen llm.Generator, reports ReportSource, factory *processors.Factory) *Service {
	return &Service{drafts: drafts, autosaver: autosaver, gen: gen, reports: reports, factory: factory}
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("draft %s: %w", id, types.ErrNotFound)
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]types.EmailDraft, error) {
	drafts, err := s.drafts.ListDrafts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range drafts {
		if p, ok := s.autosaver.Peek(drafts[i].ID); ok {
			drafts[i] = p.Apply(drafts[i])
		}
	}
	return drafts, nil
}

// Get returns the stored draft with any unsaved autosave applied.
func (s *Service) Get(ctx context.Context, id string) (*types.EmailDraft, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	d, err := s.drafts.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if p, ok := s.autosaver.Peek(id); ok {
		applied := p.Apply(*d)
		d = &applied
	}
	return d, nil
}

func (s *Service) Create(ctx context.Context, req CreateDraftRequest) (*types.EmailDraft, error) {
	d := types.EmailDraft{
		ID:             uuid.New().String(),
		Name:           req.Name,
		Subject:        req.Subject,
		PreviewText:    req.PreviewText,
		AudienceListID: req.AudienceListID,
		AudienceTags:   req.AudienceTags,
		Step:           types.DraftStepSetup,
		Body:           req.Body,
		ReferenceURL:   req.ReferenceURL,
		Status:         types.DraftStatusDraft,
	}
	return s.drafts.CreateDraft(ctx, d)
}

// Update writes a full edit at once, folding in any pending autosave so the
// explicit edit wins.
func (s *Service) Update(ctx context.Context, id string, patch types.DraftPatch) (*types.EmailDraft, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	if pending, ok := s.autosaver.Take(id); ok {
		patch = pending.Merge(patch)
	}
	return s.drafts.UpdateDraft(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	s.autosaver.Cancel(id)
	return s.drafts.DeleteDraft(ctx, id)
}

// Autosave queues a partial edit. Edits arriving within the debounce window
// are merged and written once.
func (s *Service) Autosave(ctx context.Context, id string, patch types.DraftPatch) (*AutosaveResponse, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return &AutosaveResponse{DraftID: id, Pending: s.autosaver.Pending(id)}, nil
	}
	if !s.autosaver.Pending(id) {
		if _, err := s.drafts.GetDraft(ctx, id); err != nil {
			return nil, err
		}
	}
	s.autosaver.Submit(id, patch)
	return &AutosaveResponse{DraftID: id, Pending: true}, nil
}

func (s *Service) Preview(ctx context.Context, id string) (*PreviewResponse, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	html, err := RenderMarkdown(d.Body)
	if err != nil {
		return nil, err
	}
	return &PreviewResponse{Subject: d.Subject, PreviewText: d.PreviewText, HTML: html}, nil
}

func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// Generate drafts email copy from instructions, the draft so far and an
// optional reference page.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if s.gen == nil {
		return nil, fmt.Errorf("gemini: %w", types.ErrNotConfigured)
	}
	draft, err := s.optionalDraft(ctx, req.DraftID)
	if err != nil {
		return nil, err
	}

	refURL := req.ReferenceURL
	if refURL == "" && draft != nil {
		refURL = draft.ReferenceURL
	}
	var reference []string
	if refURL != "" {
		if err := checkReferenceURL(ctx, refURL); err != nil {
			return nil, err
		}
		pc, err := s.factory.CreateWebsiteProcessor(refURL).Process(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: reference page: %v", types.ErrUpstream, err)
		}
		reference = processors.Excerpt(pc, referenceChunks)
	}

	return s.generateCopy(ctx, draft, req.Prompt, req.Tone, reference)
}

// GenerateFromBrief is Generate with an uploaded brief as the reference.
func (s *Service) GenerateFromBrief(ctx context.Context, brief []byte, filename, contentType, draftID, prompt, tone string) (*GenerateResponse, error) {
	if s.gen == nil {
		return nil, fmt.Errorf("gemini: %w", types.ErrNotConfigured)
	}
	draft, err := s.optionalDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	pc, err := s.factory.CreateDocumentProcessorFromBytes(brief, filename, contentType).Process(ctx)
	if err != nil {
		return nil, err
	}
	if prompt == "" {
		prompt = "Write an email that announces what the attached brief describes."
	}
	return s.generateCopy(ctx, draft, prompt, tone, processors.Excerpt(pc, referenceChunks))
}

func (s *Service) optionalDraft(ctx context.Context, id string) (*types.EmailDraft, error) {
	if id == "" {
		return nil, nil
	}
	return s.Get(ctx, id)
}

func (s *Service) generateCopy(ctx context.Context, draft *types.EmailDraft, instructions, tone string, reference []string) (*GenerateResponse, error) {
	req := llm.EmailRequest{Instructions: instructions, Tone: tone, Reference: reference}
	if draft != nil {
		req.DraftName = draft.Name
		req.Subject = draft.Subject
		req.Body = draft.Body
	}

	raw, err := s.gen.Generate(ctx, llm.EmailPrompt(req), true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUpstream, err)
	}
	var out llm.EmailCopy
	if err := llm.DecodeJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUpstream, err)
	}

	utils.Zlog.Info("Generated email copy",
		zap.Int("referenceChunks", len(reference)),
		zap.Int("bodyChars", len(out.Body)))
	return &out, nil
}

// AnalyzeCampaigns reviews recent campaign performance. With a draft, each
// heading section of its body gets a note and the analysis is stored on
// the draft.
func (s *Service) AnalyzeCampaigns(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	if s.gen == nil {
		return nil, fmt.Errorf("gemini: %w", types.ErrNotConfigured)
	}
	if s.reports == nil {
		return nil, fmt.Errorf("mailchimp: %w", types.ErrNotConfigured)
	}
	count := req.Count
	if count == 0 {
		count = defaultReportCount
	}

	draft, err := s.optionalDraft(ctx, req.DraftID)
	if err != nil {
		return nil, err
	}

	reports, err := s.reports.Reports(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUpstream, err)
	}
	campaigns := make([]llm.CampaignStats, 0, len(reports))
	for _, r := range reports {
		campaigns = append(campaigns, llm.CampaignStats{
			Title:      r.CampaignTitle,
			Subject:    r.SubjectLine,
			SentAt:     r.SendTime,
			EmailsSent: r.EmailsSent,
			OpenRate:   r.Opens.OpenRate,
			ClickRate:  r.Clicks.ClickRate,
		})
	}

	var sections []llm.Section
	if draft != nil && draft.Body != "" {
		pc, err := s.factory.CreateMarkdownProcessor(draft.Body, draft.Name).Process(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range pc.Chunks {
			sections = append(sections, llm.Section{Heading: processors.Heading(c), Content: c.Content})
		}
	}

	raw, err := s.gen.Generate(ctx, llm.AnalysisPrompt(campaigns, sections), true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUpstream, err)
	}
	var analysis llm.CampaignAnalysis
	if err := llm.DecodeJSON(raw, &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUpstream, err)
	}

	if draft != nil {
		encoded, err := json.Marshal(analysis)
		if err != nil {
			return nil, fmt.Errorf("failed to encode analysis: %w", err)
		}
		msg := json.RawMessage(encoded)
		if _, err := s.Update(ctx, draft.ID, types.DraftPatch{Analysis: &msg}); err != nil {
			return nil, err
		}
	}

	return &AnalyzeResponse{Campaigns: campaigns, Analysis: analysis}, nil
}
