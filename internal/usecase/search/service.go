// Package search orchestrates natural-language assessment search: parse the
// query into filters, resolve the caller's scope, run the semantic or lexical
// strategy, filter, rank, and truncate.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cardioai/assessd/internal/domain"
	"github.com/cardioai/assessd/internal/domain/assessment"
	"github.com/cardioai/assessd/internal/domain/search/filter"
	"github.com/cardioai/assessd/internal/domain/search/query"
	"github.com/cardioai/assessd/internal/domain/search/result"
	"github.com/cardioai/assessd/internal/metrics"
)

// Config bounds a search request.
type Config struct {
	MinSimilarity float64
	MaxCandidates int
	PageSize      int
	LazyLimit     int
}

// Request is a single search invocation.
type Request struct {
	Query  string
	Status string
	Token  string
}

// Response carries the ranked page plus what the parser extracted, so clients
// can show which filters were understood.
type Response struct {
	Results    []result.Scored
	Parsed     query.Parsed
	TotalFound int
}

// Service is the search entry point.
type Service struct {
	repo     Repository
	embed    Embedder
	scopes   ScopeResolver
	backfill Backfiller
	cfg      Config
	logger   *zap.Logger
}

// New creates a search service. backfill may be nil to disable lazy backfill.
func New(
	repo Repository, embed Embedder, scopes ScopeResolver, backfill Backfiller,
	cfg Config, logger *zap.Logger,
) *Service {
	return &Service{
		repo:     repo,
		embed:    embed,
		scopes:   scopes,
		backfill: backfill,
		cfg:      cfg,
		logger:   logger,
	}
}

// Search runs one request through validate, resolve scope, parse, search,
// filter, rank. An embedding provider failure is not an error: the request
// falls back to the lexical strategy and still succeeds.
func (s *Service) Search(ctx context.Context, req Request) (Response, error) {
	status, err := assessment.ParseStatusFilter(req.Status)
	if err != nil {
		return Response{}, err
	}

	country, err := s.scopes.Resolve(ctx, req.Token)
	if err != nil {
		return Response{}, err
	}

	parsed := query.Parse(req.Query)

	var scored []result.Scored
	strategy := "lexical"

	if parsed.Text != "" {
		scored, err = s.searchSemantic(ctx, parsed.Text, country, status)
		switch {
		case err == nil:
			strategy = "semantic"
		case errors.Is(err, domain.ErrEmbeddingProviderError):
			s.logger.Warn("Semantic search unavailable, falling back to lexical", zap.Error(err))
			strategy = "lexical_fallback"
			scored, err = s.searchLexical(ctx, parsed.Text, country, status)
		}
	} else {
		scored, err = s.searchLexical(ctx, "", country, status)
	}
	if err != nil {
		return Response{}, err
	}

	metrics.SearchRequestsTotal.WithLabelValues(strategy).Inc()

	scored = filter.Apply(scored, parsed.Filters)
	rank(scored)

	total := len(scored)
	if s.cfg.PageSize > 0 && len(scored) > s.cfg.PageSize {
		scored = scored[:s.cfg.PageSize]
	}

	return Response{Results: scored, Parsed: parsed, TotalFound: total}, nil
}

// searchSemantic embeds the residual text and retrieves nearest assessments.
// Returns errors wrapping domain.ErrEmbeddingProviderError when the provider
// is down; the caller decides whether to fall back.
func (s *Service) searchSemantic(
	ctx context.Context, text, country string, status assessment.Status,
) ([]result.Scored, error) {
	// Best effort: give records without an embedding a chance to participate.
	if s.backfill != nil && s.cfg.LazyLimit > 0 {
		if _, err := s.backfill.Run(ctx, s.cfg.LazyLimit); err != nil {
			s.logger.Warn("Lazy embedding backfill failed", zap.Error(err))
		}
	}

	embRes, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	scored, err := s.repo.SearchKNN(ctx, embRes.Embedding, country, status, s.cfg.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	kept := scored[:0]
	for _, r := range scored {
		if r.Similarity >= s.cfg.MinSimilarity {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// searchLexical lists scoped assessments newest first. When text is present
// it keeps only records whose searchable text contains it, case-insensitive.
// All results get similarity 1.0: there is no semantic ranking signal.
func (s *Service) searchLexical(
	ctx context.Context, text, country string, status assessment.Status,
) ([]result.Scored, error) {
	items, _, err := s.repo.ListRecent(ctx, country, status, 0, s.cfg.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}

	needle := strings.ToLower(text)
	scored := make([]result.Scored, 0, len(items))
	for _, a := range items {
		if needle != "" && !strings.Contains(strings.ToLower(a.SearchText()), needle) {
			continue
		}
		scored = append(scored, result.Scored{Assessment: a, Similarity: 1.0})
	}
	return scored, nil
}
