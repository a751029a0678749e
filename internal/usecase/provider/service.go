// Package provider manages provider profiles backing the tenant scope lookup.
package provider

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domassess "github.com/cardioai/assessd/internal/domain/assessment"
)

// Repository defines the storage contract for provider profiles.
type Repository interface {
	Upsert(ctx context.Context, p domassess.Provider) error
	Get(ctx context.Context, userID string) (domassess.Provider, error)
}

// RegisterInput is a provider profile registration.
type RegisterInput struct {
	UserID        string
	Email         string
	FullName      string
	LicenseNumber string
	Country       string
}

// Service handles provider profile operations.
type Service struct {
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

// New creates a provider service.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, now: time.Now, logger: logger}
}

// Register creates or replaces a provider profile. A profile without a
// country is allowed but resolves to no scope until completed.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domassess.Provider, error) {
	p, err := domassess.NewProvider(
		in.UserID, in.Email, in.FullName, in.LicenseNumber, in.Country, s.now().UTC(),
	)
	if err != nil {
		return domassess.Provider{}, err
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		return domassess.Provider{}, fmt.Errorf("upsert provider: %w", err)
	}

	s.logger.Info("Provider registered",
		zap.String("user_id", p.UserID()),
		zap.String("country", p.Country()),
	)
	return p, nil
}

// Get returns a provider profile by user id.
func (s *Service) Get(ctx context.Context, userID string) (domassess.Provider, error) {
	return s.repo.Get(ctx, userID)
}
