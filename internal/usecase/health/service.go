// Package health aggregates component availability checks.
package health

import (
	"context"

	"github.com/cardioai/assessd/internal/domain"
)

// DBPinger checks record store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding domain.HealthChecker
}

// New creates a Service. embedding can be nil when the provider exposes no
// health endpoint.
func New(db DBPinger, embedding domain.HealthChecker) *Service {
	return &Service{db: db, embedding: embedding}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["database"] = checkOf(s.db.Ping(ctx))

	if s.embedding != nil {
		checks["embedding"] = checkOf(s.embedding.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func checkOf(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
