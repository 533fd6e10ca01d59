package processors

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudwego/eino-ext/components/document/loader/url"
	"github.com/cloudwego/eino/components/document"
	"go.uber.org/zap"

	"github.com/pblonline/ops-dashboard/internal/types"
	"github.com/pblonline/ops-dashboard/internal/utils"
)

// WebsiteProcessor loads a reference page for email generation.
type WebsiteProcessor struct {
	URL    string
	Config *types.Config
	Client *http.Client
}

func NewWebsiteProcessor(urlStr string, config *types.Config) *WebsiteProcessor {
	if config == nil {
		config = types.DefaultConfig()
	}
	return &WebsiteProcessor{
		URL:    urlStr,
		Config: config,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *WebsiteProcessor) GetSourceType() types.SourceType {
	return types.SourceTypeWebsite
}

func (p *WebsiteProcessor) Process(ctx context.Context) (*types.ProcessedContent, error) {
	utils.Zlog.Info("Loading reference page", zap.String("url", p.URL))

	loader, err := url.NewLoader(ctx, &url.LoaderConfig{
		Client: p.Client,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create URL loader: %w", err)
	}

	docs, err := loader.Load(ctx, document.Source{
		URI: p.URL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load URL: %w", err)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no content loaded from URL")
	}

	splitter, err := newRecursiveSplitter(ctx, p.Config)
	if err != nil {
		return nil, err
	}

	splitDocs, err := splitter.Transform(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to split documents: %w", err)
	}

	chunks := toChunks(splitDocs, map[string]interface{}{"source": p.URL})

	utils.Zlog.Info("Reference page loaded",
		zap.String("url", p.URL),
		zap.Int("chunks", len(chunks)))

	return &types.ProcessedContent{
		SourceType: types.SourceTypeWebsite,
		Content:    docs[0].Content,
		Topic:      p.URL,
		Chunks:     chunks,
		Metadata: map[string]interface{}{
			"url":       p.URL,
			"scrapedAt": time.Now().UTC(),
		},
		ProcessedAt: time.Now().UTC(),
	}, nil
}
