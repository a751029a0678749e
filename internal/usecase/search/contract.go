package search

import (
	"context"

	"github.com/cardioai/assessd/internal/domain"
	"github.com/cardioai/assessd/internal/domain/assessment"
	"github.com/cardioai/assessd/internal/domain/search/result"
	"github.com/cardioai/assessd/internal/usecase/backfill"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	SearchKNN(
		ctx context.Context, vector []float32,
		country string, status assessment.Status, k int,
	) ([]result.Scored, error)

	ListRecent(
		ctx context.Context, country string, status assessment.Status, offset, limit int,
	) ([]assessment.Assessment, int, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// ScopeResolver maps the caller's token to its tenant scope.
type ScopeResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// Backfiller lazily embeds assessments still missing a vector so they become
// visible to semantic search.
type Backfiller interface {
	Run(ctx context.Context, limit int) (backfill.Report, error)
}
