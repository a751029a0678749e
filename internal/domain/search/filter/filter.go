// Package filter applies parsed structured constraints to candidate results.
package filter

import (
	"strings"
	"time"

	"github.com/cardioai/assessd/internal/domain/search/query"
	"github.com/cardioai/assessd/internal/domain/search/result"
)

// scoreEpsilon is the tolerance for "=" score comparisons; exact float
// equality would reject legitimate matches on parsed legacy strings.
const scoreEpsilon = 0.1

// Apply keeps the candidates satisfying every present filter (AND semantics).
// It is a pure function: candidates is not mutated and applying the same
// filters twice yields the same result.
func Apply(candidates []result.Scored, filters query.Filters) []result.Scored {
	if filters.IsEmpty() {
		return candidates
	}
	out := make([]result.Scored, 0, len(candidates))
	for _, c := range candidates {
		if matches(c, filters) {
			out = append(out, c)
		}
	}
	return out
}

func matches(c result.Scored, filters query.Filters) bool {
	if f := filters.RiskScore; f != nil {
		score, err := c.Assessment.RiskScoreValue()
		if err != nil || !compareScore(score, f.Op, f.Value) {
			return false
		}
	}
	if f := filters.Date; f != nil {
		if !compareDate(c.Assessment.CreatedAt(), f.Op, f.Value) {
			return false
		}
	}
	if filters.Category != "" {
		label := strings.ToLower(c.Assessment.RiskCategory())
		if !strings.Contains(label, strings.ToLower(filters.Category)) {
			return false
		}
	}
	return true
}

func compareScore(got float64, op query.Op, want float64) bool {
	switch op {
	case query.OpGT:
		return got > want
	case query.OpGTE:
		return got >= want
	case query.OpLT:
		return got < want
	case query.OpLTE:
		return got <= want
	case query.OpEQ:
		diff := got - want
		return diff >= -scoreEpsilon && diff <= scoreEpsilon
	default:
		return false
	}
}

// compareDate compares per operator; "=" compares the calendar date only,
// truncating both sides to midnight.
func compareDate(got time.Time, op query.Op, want time.Time) bool {
	switch op {
	case query.OpGT:
		return got.After(want)
	case query.OpGTE:
		return !got.Before(want)
	case query.OpLT:
		return got.Before(want)
	case query.OpLTE:
		return !got.After(want)
	case query.OpEQ:
		return truncateToDay(got).Equal(truncateToDay(want))
	default:
		return false
	}
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
