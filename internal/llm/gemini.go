// Package llm generates marketing copy and metadata with Gemini.
package llm

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/pblonline/ops-dashboard/internal/utils"
)

// Generator produces text for a prompt. With jsonOutput the model is asked
// for a JSON document.
type Generator interface {
	Generate(ctx context.Context, prompt string, jsonOutput bool) (string, error)
}

// GeminiGenerator handles generation with rotating API keys
type GeminiGenerator struct {
	clients []*genai.Client
	model   string
}

func NewGeminiGenerator(ctx context.Context, keys []string, model string) (*GeminiGenerator, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("at least one API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	g := &GeminiGenerator{model: model}
	for _, key := range keys {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create GenAI client: %w", err)
		}
		g.clients = append(g.clients, client)
	}
	return g, nil
}

func (g *GeminiGenerator) client() *genai.Client {
	if len(g.clients) == 1 {
		return g.clients[0]
	}
	return g.clients[rand.Intn(len(g.clients))]
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, jsonOutput bool) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.7)}
	if jsonOutput {
		cfg.ResponseMIMEType = "application/json"
	}

	result, err := g.client().Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("no content returned from model")
	}

	utils.Zlog.Debug("Generated content",
		zap.String("model", g.model),
		zap.Int("promptChars", len(prompt)),
		zap.Int("responseChars", len(text)))

	return text, nil
}

// GenerateBatch runs one prompt per element, at most 5 at a time.
func GenerateBatch(ctx context.Context, gen Generator, prompts []string, jsonOutput bool) ([]string, error) {
	if len(prompts) == 0 {
		return nil, fmt.Errorf("no prompts provided")
	}

	results := make([]string, len(prompts))
	errs := make([]error, len(prompts))

	sem := make(chan struct{}, 5)

	for i, prompt := range prompts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sem <- struct{}{}:
			go func(idx int, p string) {
				defer func() { <-sem }()
				results[idx], errs[idx] = gen.Generate(ctx, p, jsonOutput)
			}(i, prompt)
		}
	}

	// Wait for all goroutines to finish
	for i := 0; i < cap(sem); i++ {
		sem <- struct{}{}
	}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to generate for prompt %d: %w", i, err)
		}
	}
	return results, nil
}
