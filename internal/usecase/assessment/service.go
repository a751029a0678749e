// Package assessment implements the assessment lifecycle: submit, read,
// list, review. Every operation is tenant-scoped through the caller's token.
package assessment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cardioai/assessd/internal/domain"
	domassess "github.com/cardioai/assessd/internal/domain/assessment"
)

// SubmitInput is a new assessment submission.
type SubmitInput struct {
	Token           string
	PatientID       string
	RiskScore       string
	RiskCategory    string
	Inputs          map[string]string
	Recommendations []domassess.Recommendation
}

// ReviewInput is a provider review of a pending assessment.
type ReviewInput struct {
	Token                 string
	ID                    string
	OverallRecommendation string
	ProviderComments      string
}

// Page is one page of scoped assessments plus the scope-wide total.
type Page struct {
	Items []domassess.Assessment
	Total int
}

// Service handles assessment lifecycle operations.
type Service struct {
	repo   Repository
	scopes ScopeResolver
	now    func() time.Time
	logger *zap.Logger
}

// New creates an assessment service.
func New(repo Repository, scopes ScopeResolver, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		scopes: scopes,
		now:    time.Now,
		logger: logger,
	}
}

// Submit stores a new pending-review assessment in the caller's scope.
// The embedding is computed later by the backfill, not inline.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (domassess.Assessment, error) {
	country, err := s.scopes.Resolve(ctx, in.Token)
	if err != nil {
		return domassess.Assessment{}, err
	}

	a, err := domassess.New(
		uuid.NewString(), in.PatientID, in.RiskScore, in.RiskCategory, country,
		in.Inputs, in.Recommendations, s.now().UTC(),
	)
	if err != nil {
		return domassess.Assessment{}, err
	}

	if err := s.repo.Save(ctx, a); err != nil {
		return domassess.Assessment{}, fmt.Errorf("save assessment: %w", err)
	}

	s.logger.Info("Assessment submitted",
		zap.String("assessment_id", a.ID()),
		zap.String("country", country),
	)
	return a, nil
}

// Get returns one assessment visible to the caller. An assessment outside the
// caller's scope reads as not found rather than forbidden, so existence does
// not leak across tenants.
func (s *Service) Get(ctx context.Context, token, id string) (domassess.Assessment, error) {
	country, err := s.scopes.Resolve(ctx, token)
	if err != nil {
		return domassess.Assessment{}, err
	}

	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return domassess.Assessment{}, err
	}
	if a.Country() != country {
		return domassess.Assessment{}, domain.ErrAssessmentNotFound
	}
	return a, nil
}

// List returns a page of scoped assessments, newest first.
func (s *Service) List(ctx context.Context, token, status string, offset, limit int) (Page, error) {
	statusFilter, err := domassess.ParseStatusFilter(status)
	if err != nil {
		return Page{}, err
	}

	country, err := s.scopes.Resolve(ctx, token)
	if err != nil {
		return Page{}, err
	}

	items, total, err := s.repo.ListRecent(ctx, country, statusFilter, offset, limit)
	if err != nil {
		return Page{}, fmt.Errorf("list assessments: %w", err)
	}
	return Page{Items: items, Total: total}, nil
}

// Review transitions a scoped assessment to reviewed. The stored embedding is
// invalidated by the transition and recomputed by the next backfill.
func (s *Service) Review(ctx context.Context, in ReviewInput) (domassess.Assessment, error) {
	a, err := s.Get(ctx, in.Token, in.ID)
	if err != nil {
		return domassess.Assessment{}, err
	}

	reviewed := a.WithReview(in.OverallRecommendation, in.ProviderComments, s.now().UTC())
	if err := s.repo.Save(ctx, reviewed); err != nil {
		return domassess.Assessment{}, fmt.Errorf("save review: %w", err)
	}

	s.logger.Info("Assessment reviewed", zap.String("assessment_id", reviewed.ID()))
	return reviewed, nil
}
