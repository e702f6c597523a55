// internal/catalog/enrichment/embedding.go
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrEmbeddingFailed    = errors.New("EMBEDDING_FAILED")
	ErrEmbeddingEmpty     = errors.New("EMBEDDING_EMPTY")
	ErrEmbeddingDimension = errors.New("EMBEDDING_DIMENSION_MISMATCH")
)

// Embedder produces one vector per text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OpenAIEmbedder calls the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAIEmbedder builds a client. baseURL may be empty for the public API.
func NewOpenAIEmbedder(apiKey, baseURL, model string, dimensions int, timeout time.Duration) *OpenAIEmbedder {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(config),
		model:      model,
		dimensions: dimensions,
	}
}

func (m *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          openai.EmbeddingModel(m.model),
		Dimensions:     m.dimensions,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}

	resp, err := m.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, ErrEmbeddingEmpty
	}

	vec := resp.Data[0].Embedding
	if m.dimensions > 0 && len(vec) != m.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrEmbeddingDimension, len(vec), m.dimensions)
	}
	return vec, nil
}

var _ Embedder = (*OpenAIEmbedder)(nil)
