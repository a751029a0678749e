package assessment

import (
	"fmt"

	"github.com/cardioai/assessd/internal/domain"
)

// Status is the review lifecycle state of an assessment.
type Status string

const (
	// StatusPendingReview marks an assessment awaiting provider review.
	StatusPendingReview Status = "pending_review"
	// StatusReviewed marks an assessment a provider has signed off.
	StatusReviewed Status = "reviewed"
	// StatusAll is a query-only pseudo-status matching every record.
	StatusAll Status = "all"
)

// ParseStatus parses a stored record status (pending_review or reviewed).
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPendingReview, StatusReviewed:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", domain.ErrValidation, s)
	}
}

// ParseStatusFilter parses a search status filter. Unlike ParseStatus it
// accepts "all"; an empty value is a validation failure (the filter is
// mandatory on every search request).
func ParseStatusFilter(s string) (Status, error) {
	if s == "" {
		return "", fmt.Errorf("%w: status is required", domain.ErrValidation)
	}
	switch Status(s) {
	case StatusPendingReview, StatusReviewed, StatusAll:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", domain.ErrValidation, s)
	}
}

// Matches reports whether a record status passes this filter.
func (s Status) Matches(record Status) bool {
	return s == StatusAll || s == record
}
