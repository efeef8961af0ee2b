package knowledge

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Embedder converts text into a dense vector. Implementations must be
// safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GeminiEmbedder produces embeddings via the Gemini API, throttled by a
// client-side rate limiter so bulk ingestion stays inside API quotas.
type GeminiEmbedder struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

// NewGeminiEmbedder creates an embedder backed by the given Gemini model.
// rps bounds outgoing embedding requests per second; zero or negative
// disables throttling.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string, rps float64) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	return &GeminiEmbedder{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// Embed returns the embedding vector for text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embed rate limit: %w", err)
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("embed failed: %w", err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	return resp.Embeddings[0].Values, nil
}

// newEmbeddingFunc creates a chromem-go EmbeddingFunc from an Embedder.
//
// Note: chromem-go automatically normalizes vectors, so no manual
// normalization is needed.
func newEmbeddingFunc(embedder Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vec, err := embedder.Embed(ctx, text)
		if err != nil {
			return nil, err
		}

		if len(vec) == 0 {
			return nil, fmt.Errorf("no embeddings returned")
		}

		return vec, nil
	}
}
