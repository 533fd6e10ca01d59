package processors

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/pblonline/ops-dashboard/internal/types"
	"github.com/pblonline/ops-dashboard/internal/utils"
)

// TextProcessor splits plain text such as a video transcript.
type TextProcessor struct {
	Text       string
	Topic      string
	Config     *types.Config
	sourceType types.SourceType
}

func NewTextProcessor(text, topic string, config *types.Config) *TextProcessor {
	if config == nil {
		config = types.DefaultConfig()
	}
	if topic == "" {
		topic = "Direct text input"
	}
	return &TextProcessor{
		Text:       text,
		Topic:      topic,
		Config:     config,
		sourceType: types.SourceTypeText,
	}
}

func (p *TextProcessor) GetSourceType() types.SourceType {
	return p.sourceType
}

func (p *TextProcessor) Process(ctx context.Context) (*types.ProcessedContent, error) {
	utils.Zlog.Debug("Splitting text",
		zap.String("topic", p.Topic),
		zap.Int("length", len(p.Text)))

	if p.Text == "" {
		return nil, fmt.Errorf("%w: text content is empty", types.ErrValidation)
	}

	splitter, err := newRecursiveSplitter(ctx, p.Config)
	if err != nil {
		return nil, err
	}

	docs := []*schema.Document{
		{
			ID:       p.Topic,
			Content:  p.Text,
			MetaData: map[string]any{"topic": p.Topic},
		},
	}

	splitDocs, err := splitter.Transform(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	chunks := toChunks(splitDocs, nil)

	utils.Zlog.Debug("Text split",
		zap.String("topic", p.Topic),
		zap.Int("chunks", len(chunks)))

	return &types.ProcessedContent{
		SourceType:  p.sourceType,
		Content:     p.Text,
		Topic:       p.Topic,
		Chunks:      chunks,
		Metadata:    map[string]interface{}{"topic": p.Topic},
		ProcessedAt: time.Now().UTC(),
	}, nil
}
