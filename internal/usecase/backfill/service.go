// Package backfill computes and persists embeddings for assessments that do
// not have one yet, so semantic search is eventually consistent with new data.
package backfill

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/cardioai/assessd/internal/domain"
	"github.com/cardioai/assessd/internal/domain/assessment"
	"github.com/cardioai/assessd/internal/metrics"
)

// Repository defines the storage contract for the backfill.
type Repository interface {
	ListMissingEmbeddings(ctx context.Context, limit int) ([]assessment.Assessment, error)
	UpdateEmbedding(ctx context.Context, id string, vec []float32) error
}

// Report summarizes a backfill run.
type Report struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
	Total     int `json:"total"`
}

// Service runs embedding backfills over a bounded worker pool.
type Service struct {
	repo      Repository
	embed     domain.Embedder
	workers   int
	batchSize int
	logger    *zap.Logger
}

// New creates a backfill service.
func New(repo Repository, embed domain.Embedder, workers, batchSize int, logger *zap.Logger) *Service {
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		repo:      repo,
		embed:     embed,
		workers:   workers,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run embeds up to limit assessments missing an embedding. limit <= 0 uses
// the configured batch size. Per-item failures are counted, not fatal; the
// run only errors when the candidate listing itself fails.
func (s *Service) Run(ctx context.Context, limit int) (Report, error) {
	if limit <= 0 {
		limit = s.batchSize
	}

	items, err := s.repo.ListMissingEmbeddings(ctx, limit)
	if err != nil {
		return Report{}, fmt.Errorf("list missing embeddings: %w", err)
	}
	if len(items) == 0 {
		return Report{}, nil
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return Report{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var processed, skipped, failed atomic.Int64

	for _, item := range items {
		item := item
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			switch s.processOne(ctx, item) {
			case outcomeOK:
				processed.Add(1)
			case outcomeSkipped:
				skipped.Add(1)
			case outcomeError:
				failed.Add(1)
			}
		})
		if submitErr != nil {
			wg.Done()
			failed.Add(1)
			s.logger.Warn("Failed to submit backfill task", zap.Error(submitErr))
		}
	}
	wg.Wait()

	report := Report{
		Processed: int(processed.Load()),
		Skipped:   int(skipped.Load()),
		Errors:    int(failed.Load()),
		Total:     len(items),
	}
	s.logger.Info("Embedding backfill finished",
		zap.Int("processed", report.Processed),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors),
		zap.Int("total", report.Total),
	)
	return report, nil
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeSkipped
	outcomeError
)

func (s *Service) processOne(ctx context.Context, a assessment.Assessment) outcome {
	text := a.SearchText()
	if text == "" {
		metrics.EmbeddingBackfillTotal.WithLabelValues("skipped").Inc()
		return outcomeSkipped
	}

	res, err := s.embed.Embed(ctx, text)
	if err != nil {
		metrics.EmbeddingBackfillTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Backfill embedding failed", zap.String("assessment_id", a.ID()), zap.Error(err))
		return outcomeError
	}

	if err := s.repo.UpdateEmbedding(ctx, a.ID(), res.Embedding); err != nil {
		metrics.EmbeddingBackfillTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Backfill persist failed", zap.String("assessment_id", a.ID()), zap.Error(err))
		return outcomeError
	}

	metrics.EmbeddingBackfillTotal.WithLabelValues("ok").Inc()
	return outcomeOK
}
