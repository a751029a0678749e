package assessment

import (
	"context"

	domassess "github.com/cardioai/assessd/internal/domain/assessment"
)

// Repository defines the storage contract for assessment lifecycle operations.
type Repository interface {
	Save(ctx context.Context, a domassess.Assessment) error
	Get(ctx context.Context, id string) (domassess.Assessment, error)
	ListRecent(
		ctx context.Context, country string, status domassess.Status, offset, limit int,
	) ([]domassess.Assessment, int, error)
}

// ScopeResolver maps the caller's token to its tenant scope.
type ScopeResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}
