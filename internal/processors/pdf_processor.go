package processors

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"go.uber.org/zap"

	"github.com/pblonline/ops-dashboard/internal/types"
	"github.com/pblonline/ops-dashboard/internal/utils"
)

// PDFProcessor extracts the text of an uploaded campaign brief.
type PDFProcessor struct {
	Content  []byte
	Config   *types.Config
	Filename string
}

func NewPDFProcessorFromBytes(content []byte, filename string, config *types.Config) *PDFProcessor {
	if config == nil {
		config = types.DefaultConfig()
	}
	return &PDFProcessor{
		Content:  content,
		Config:   config,
		Filename: filename,
	}
}

func (p *PDFProcessor) GetSourceType() types.SourceType {
	return types.SourceTypePDF
}

func (p *PDFProcessor) Process(ctx context.Context) (*types.ProcessedContent, error) {
	utils.Zlog.Info("Parsing PDF brief",
		zap.String("filename", p.Filename),
		zap.Int("size", len(p.Content)))

	if len(p.Content) == 0 {
		return nil, fmt.Errorf("%w: PDF file is empty", types.ErrValidation)
	}

	parser, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF parser: %w", err)
	}

	docs, err := parser.Parse(ctx, bytes.NewReader(p.Content),
		einoParser.WithURI(p.Filename),
		einoParser.WithExtraMeta(map[string]any{
			"filename": p.Filename,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}

	// scanned briefs parse fine but carry no text layer
	if len(docs) == 0 || strings.TrimSpace(docs[0].Content) == "" {
		return nil, fmt.Errorf("%w: no text could be extracted from %s", types.ErrValidation, p.Filename)
	}

	splitter, err := newRecursiveSplitter(ctx, p.Config)
	if err != nil {
		return nil, err
	}

	splitDocs, err := splitter.Transform(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to split documents: %w", err)
	}

	chunks := toChunks(splitDocs, map[string]interface{}{"filename": p.Filename})

	utils.Zlog.Info("PDF brief parsed",
		zap.String("filename", p.Filename),
		zap.Int("chunks", len(chunks)))

	return &types.ProcessedContent{
		SourceType: types.SourceTypePDF,
		Content:    docs[0].Content,
		Topic:      p.Filename,
		Chunks:     chunks,
		Metadata: map[string]interface{}{
			"filename":    p.Filename,
			"fileSize":    len(p.Content),
			"contentType": "application/pdf",
		},
		ProcessedAt: time.Now().UTC(),
	}, nil
}
