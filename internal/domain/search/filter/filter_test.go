package filter

import (
	"testing"
	"time"

	"github.com/cardioai/assessd/internal/domain/assessment"
	"github.com/cardioai/assessd/internal/domain/search/query"
	"github.com/cardioai/assessd/internal/domain/search/result"
)

func scored(id, score, category string, createdAt time.Time) result.Scored {
	a := assessment.Reconstruct(
		id, "p-"+id, score, category, assessment.StatusPendingReview, "US",
		"", "", nil, nil, nil, createdAt, createdAt,
	)
	return result.Scored{Assessment: a, Similarity: 0.8}
}

func ids(results []result.Scored) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Assessment.ID())
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var (
	jan10 = time.Date(2024, time.January, 10, 9, 30, 0, 0, time.UTC)
	feb20 = time.Date(2024, time.February, 20, 16, 45, 0, 0, time.UTC)
	mar05 = time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
)

func candidates() []result.Scored {
	return []result.Scored{
		scored("a", "42%", "High Risk", jan10),
		scored("b", "17", "Low Risk", feb20),
		scored("c", "88%", "Very High Risk", mar05),
	}
}

func TestApply_EmptyFilters(t *testing.T) {
	in := candidates()
	out := Apply(in, query.Filters{})
	if !equalIDs(ids(out), []string{"a", "b", "c"}) {
		t.Errorf("ids = %v", ids(out))
	}
}

func TestApply_ScoreOperators(t *testing.T) {
	tests := []struct {
		name   string
		filter query.ScoreFilter
		want   []string
	}{
		{"gt", query.ScoreFilter{Op: query.OpGT, Value: 40}, []string{"a", "c"}},
		{"gte", query.ScoreFilter{Op: query.OpGTE, Value: 42}, []string{"a", "c"}},
		{"lt", query.ScoreFilter{Op: query.OpLT, Value: 42}, []string{"b"}},
		{"lte", query.ScoreFilter{Op: query.OpLTE, Value: 42}, []string{"a", "b"}},
		{"eq exact", query.ScoreFilter{Op: query.OpEQ, Value: 17}, []string{"b"}},
		{"eq epsilon", query.ScoreFilter{Op: query.OpEQ, Value: 42.05}, []string{"a"}},
		{"eq outside epsilon", query.ScoreFilter{Op: query.OpEQ, Value: 42.2}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Apply(candidates(), query.Filters{RiskScore: &tt.filter})
			if !equalIDs(ids(out), tt.want) {
				t.Errorf("ids = %v, want %v", ids(out), tt.want)
			}
		})
	}
}

func TestApply_UnparseableScoreRejected(t *testing.T) {
	in := []result.Scored{scored("x", "n/a", "High Risk", jan10)}
	out := Apply(in, query.Filters{RiskScore: &query.ScoreFilter{Op: query.OpGT, Value: 0}})
	if len(out) != 0 {
		t.Errorf("len = %d, want 0", len(out))
	}
}

func TestApply_DateOperators(t *testing.T) {
	tests := []struct {
		name   string
		filter query.DateFilter
		want   []string
	}{
		{"gt", query.DateFilter{Op: query.OpGT, Value: jan10}, []string{"b", "c"}},
		{"lt", query.DateFilter{Op: query.OpLT, Value: feb20}, []string{"a"}},
		{"gte", query.DateFilter{Op: query.OpGTE, Value: feb20}, []string{"b", "c"}},
		{"lte", query.DateFilter{Op: query.OpLTE, Value: jan10}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Apply(candidates(), query.Filters{Date: &tt.filter})
			if !equalIDs(ids(out), tt.want) {
				t.Errorf("ids = %v, want %v", ids(out), tt.want)
			}
		})
	}
}

func TestApply_DateEqualityIgnoresTimeOfDay(t *testing.T) {
	midnight := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	out := Apply(candidates(), query.Filters{Date: &query.DateFilter{Op: query.OpEQ, Value: midnight}})
	if !equalIDs(ids(out), []string{"a"}) {
		t.Errorf("ids = %v, want [a]", ids(out))
	}
}

func TestApply_CategorySubstring(t *testing.T) {
	out := Apply(candidates(), query.Filters{Category: "high"})
	if !equalIDs(ids(out), []string{"a", "c"}) {
		t.Errorf("ids = %v, want [a c]: %q must match both %q and %q",
			ids(out), "high", "High Risk", "Very High Risk")
	}

	out = Apply(candidates(), query.Filters{Category: "very high"})
	if !equalIDs(ids(out), []string{"c"}) {
		t.Errorf("ids = %v, want [c]", ids(out))
	}
}

func TestApply_AndSemantics(t *testing.T) {
	filters := query.Filters{
		RiskScore: &query.ScoreFilter{Op: query.OpGT, Value: 40},
		Date:      &query.DateFilter{Op: query.OpGT, Value: jan10},
		Category:  "high",
	}
	out := Apply(candidates(), filters)
	if !equalIDs(ids(out), []string{"c"}) {
		t.Errorf("ids = %v, want [c]", ids(out))
	}
}

func TestApply_Idempotent(t *testing.T) {
	filters := query.Filters{Category: "high"}
	once := Apply(candidates(), filters)
	twice := Apply(once, filters)
	if !equalIDs(ids(once), ids(twice)) {
		t.Errorf("second application changed results: %v vs %v", ids(once), ids(twice))
	}
}
