package processors

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/document/transformer/splitter/recursive"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"

	"github.com/pblonline/ops-dashboard/internal/types"
)

func newRecursiveSplitter(ctx context.Context, config *types.Config) (document.Transformer, error) {
	splitter, err := recursive.NewSplitter(ctx, &recursive.Config{
		ChunkSize:   config.ChunkSize,
		OverlapSize: config.ChunkOverlap,
		Separators:  []string{"\n\n", "\n", ". ", "? ", "! ", " "},
		KeepType:    recursive.KeepTypeNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create splitter: %w", err)
	}
	return splitter, nil
}

// toChunks converts split documents, merging each document's metadata over base.
func toChunks(docs []*schema.Document, base map[string]interface{}) []types.ContentChunk {
	chunks := make([]types.ContentChunk, 0, len(docs))
	for i, doc := range docs {
		meta := make(map[string]interface{}, len(base)+len(doc.MetaData))
		for k, v := range base {
			meta[k] = v
		}
		for k, v := range doc.MetaData {
			meta[k] = v
		}
		chunks = append(chunks, types.ContentChunk{
			Content:    doc.Content,
			ChunkIndex: i,
			Metadata:   meta,
		})
	}
	return chunks
}

// Excerpt returns the text of the first n chunks.
func Excerpt(pc *types.ProcessedContent, n int) []string {
	if pc == nil {
		return nil
	}
	if n <= 0 || n > len(pc.Chunks) {
		n = len(pc.Chunks)
	}
	out := make([]string, 0, n)
	for _, c := range pc.Chunks[:n] {
		out = append(out, c.Content)
	}
	return out
}
