package processors

import (
	"strings"

	"github.com/pblonline/ops-dashboard/internal/types"
)

type Factory struct {
	config *types.Config
}

func NewFactory(config *types.Config) *Factory {
	if config == nil {
		config = types.DefaultConfig()
	}
	return &Factory{
		config: config,
	}
}

func (f *Factory) CreateWebsiteProcessor(url string) types.Processor {
	return NewWebsiteProcessor(url, f.config)
}

// CreateDocumentProcessorFromBytes creates a processor for an uploaded brief
func (f *Factory) CreateDocumentProcessorFromBytes(content []byte, filename, contentType string) types.Processor {
	filename = strings.ToLower(filename)

	switch {
	case strings.Contains(contentType, "pdf") || strings.HasSuffix(filename, ".pdf"):
		return NewPDFProcessorFromBytes(content, filename, f.config)
	case strings.HasSuffix(filename, ".md") || strings.HasSuffix(filename, ".markdown"):
		return NewMarkdownProcessor(string(content), filename)
	default:
		return NewTextProcessor(string(content), filename, f.config)
	}
}

func (f *Factory) CreateMarkdownProcessor(body, name string) types.Processor {
	return NewMarkdownProcessor(body, name)
}

func (f *Factory) CreateTranscriptProcessor(transcript, title string) types.Processor {
	p := NewTextProcessor(transcript, title, f.config)
	p.sourceType = types.SourceTypeTranscript
	return p
}
