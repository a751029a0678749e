package sdk

import "context"

// Embedder converts text to vector embeddings. Without one, semantic search
// falls back to lexical matching and the backfill reports errors.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
