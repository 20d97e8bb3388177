package searchd

import "context"

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text. Implementations wrap an embedding provider
// (OpenAI-compatible APIs, local models, test fakes).
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}
