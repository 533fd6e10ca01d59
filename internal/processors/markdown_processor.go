package processors

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/document/transformer/splitter/markdown"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/pblonline/ops-dashboard/internal/types"
	"github.com/pblonline/ops-dashboard/internal/utils"
)

// Header metadata keys set on markdown chunks.
const (
	MetaH1 = "h1"
	MetaH2 = "h2"
	MetaH3 = "h3"
)

// MarkdownProcessor splits an email draft body into heading sections.
type MarkdownProcessor struct {
	Content string
	Name    string
}

func NewMarkdownProcessor(content, name string) *MarkdownProcessor {
	return &MarkdownProcessor{
		Content: content,
		Name:    name,
	}
}

func (p *MarkdownProcessor) GetSourceType() types.SourceType {
	return types.SourceTypeMarkdown
}

func (p *MarkdownProcessor) Process(ctx context.Context) (*types.ProcessedContent, error) {
	utils.Zlog.Debug("Splitting markdown by headers", zap.String("name", p.Name))

	if p.Content == "" {
		return nil, fmt.Errorf("%w: markdown content is empty", types.ErrValidation)
	}

	splitter, err := markdown.NewHeaderSplitter(ctx, &markdown.HeaderConfig{
		Headers: map[string]string{
			"#":   MetaH1,
			"##":  MetaH2,
			"###": MetaH3,
		},
		TrimHeaders: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown splitter: %w", err)
	}

	docs := []*schema.Document{
		{
			ID:       p.Name,
			Content:  p.Content,
			MetaData: map[string]any{"name": p.Name},
		},
	}

	splitDocs, err := splitter.Transform(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to split markdown: %w", err)
	}

	chunks := toChunks(splitDocs, nil)

	return &types.ProcessedContent{
		SourceType:  types.SourceTypeMarkdown,
		Content:     p.Content,
		Topic:       p.Name,
		Chunks:      chunks,
		Metadata:    map[string]interface{}{"name": p.Name, "sections": len(chunks)},
		ProcessedAt: time.Now().UTC(),
	}, nil
}

// Heading returns the deepest header recorded on a markdown chunk.
func Heading(c types.ContentChunk) string {
	for _, key := range []string{MetaH3, MetaH2, MetaH1} {
		if h, ok := c.Metadata[key].(string); ok && h != "" {
			return h
		}
	}
	return ""
}
