package sdk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cardioai/assessd/internal/db"
	dbRedis "github.com/cardioai/assessd/internal/db/redis"
	"github.com/cardioai/assessd/internal/domain"
	domassess "github.com/cardioai/assessd/internal/domain/assessment"
	assessmentrepo "github.com/cardioai/assessd/internal/repository/assessment"
	assessmentuc "github.com/cardioai/assessd/internal/usecase/assessment"
	backfilluc "github.com/cardioai/assessd/internal/usecase/backfill"
	healthuc "github.com/cardioai/assessd/internal/usecase/health"
	searchuc "github.com/cardioai/assessd/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "assessd:"
	defaultDimensions       = 384
	defaultMinSimilarity    = 0.1
	defaultMaxCandidates    = 100
	defaultPageSize         = 5
	defaultWorkers          = 4
	defaultBatchSize        = 100
	defaultLazyLimit        = 20
)

// Internal interfaces so tests can substitute the use case services.
type searchUseCase interface {
	Search(ctx context.Context, req searchuc.Request) (searchuc.Response, error)
}

type assessmentUseCase interface {
	Submit(ctx context.Context, in assessmentuc.SubmitInput) (domassess.Assessment, error)
	Get(ctx context.Context, token, id string) (domassess.Assessment, error)
	List(ctx context.Context, token, status string, offset, limit int) (assessmentuc.Page, error)
	Review(ctx context.Context, in assessmentuc.ReviewInput) (domassess.Assessment, error)
}

type backfillUseCase interface {
	Run(ctx context.Context, limit int) (backfilluc.Report, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the assessd embedded SDK entry point.
type Client struct {
	store     db.Store
	searchSvc searchUseCase
	assessSvc assessmentUseCase
	backfill  backfillUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates an assessd Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:       defaultKeyPrefix,
		dimensions:      defaultDimensions,
		minSimilarity:   defaultMinSimilarity,
		maxCandidates:   defaultMaxCandidates,
		pageSize:        defaultPageSize,
		backfillWorkers: defaultWorkers,
		backfillBatch:   defaultBatchSize,
		lazyLimit:       defaultLazyLimit,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("assessd: database address required (use WithRedis)")
	}
	if cfg.country == "" {
		return nil, errors.New("assessd: tenant country required (use WithCountry)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("assessd: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("assessd: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	return wireClient(ctx, store, cfg, obs)
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	repo := assessmentrepo.New(store, cfg.keyPrefix)
	if err := repo.EnsureIndex(ctx, cfg.dimensions); err != nil {
		store.Close()
		return nil, fmt.Errorf("assessd: ensure index: %w", err)
	}

	var domEmb domain.Embedder = &noopEmbedder{}
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
	}

	scopes := staticScopes{country: cfg.country}
	nop := zap.NewNop()

	backfillSvc := backfilluc.New(repo, domEmb, cfg.backfillWorkers, cfg.backfillBatch, nop)
	searchSvc := searchuc.New(repo, domEmb, scopes, backfillSvc, searchuc.Config{
		MinSimilarity: cfg.minSimilarity,
		MaxCandidates: cfg.maxCandidates,
		PageSize:      cfg.pageSize,
		LazyLimit:     cfg.lazyLimit,
	}, nop)
	assessSvc := assessmentuc.New(repo, scopes, nop)
	healthSvc := healthuc.New(store, nil)

	return &Client{
		store:     store,
		searchSvc: searchSvc,
		assessSvc: assessSvc,
		backfill:  backfillSvc,
		healthSvc: healthSvc,
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// staticScopes resolves every token to the country fixed at construction.
// The embedded client runs in-process and trusts the host application.
type staticScopes struct {
	country string
}

func (s staticScopes) Resolve(context.Context, string) (string, error) {
	if s.country == "" {
		return "", domain.ErrScopeNotFound
	}
	return s.country, nil
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
// Wrapping ErrEmbeddingProviderError keeps the lexical fallback path working.
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf(
		"%w: embedder not configured (use WithEmbedder)", domain.ErrEmbeddingProviderError,
	)
}
