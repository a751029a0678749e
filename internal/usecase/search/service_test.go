package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cardioai/assessd/internal/domain"
	"github.com/cardioai/assessd/internal/domain/assessment"
	"github.com/cardioai/assessd/internal/domain/search/query"
	"github.com/cardioai/assessd/internal/domain/search/result"
)

func TestSearch_StatusRequired(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockEmbedder{}, &mockScopes{country: "US"}, nil)

	_, err := svc.Search(context.Background(), Request{Query: "chest pain", Status: ""})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Search() error = %v, want ErrValidation", err)
	}

	_, err = svc.Search(context.Background(), Request{Query: "chest pain", Status: "bogus"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Search() error = %v, want ErrValidation", err)
	}
}

func TestSearch_ScopeFailuresPropagate(t *testing.T) {
	for _, sentinel := range []error{domain.ErrUnauthorized, domain.ErrScopeNotFound} {
		repo := &mockRepo{
			searchKNNFn: func(context.Context, []float32, string, assessment.Status, int) ([]result.Scored, error) {
				t.Error("backend reached despite scope failure")
				return nil, nil
			},
			listRecentFn: func(context.Context, string, assessment.Status, int, int) ([]assessment.Assessment, int, error) {
				t.Error("backend reached despite scope failure")
				return nil, 0, nil
			},
		}
		svc := newTestService(repo, &mockEmbedder{}, &mockScopes{err: sentinel}, nil)

		_, err := svc.Search(context.Background(), Request{Query: "chest pain", Status: "all"})
		if !errors.Is(err, sentinel) {
			t.Errorf("Search() error = %v, want %v", err, sentinel)
		}
	}
}

func TestSearch_SemanticPath(t *testing.T) {
	repo := &mockRepo{
		searchKNNFn: func(_ context.Context, vec []float32, country string, status assessment.Status, k int) ([]result.Scored, error) {
			if country != "US" || status != assessment.StatusPendingReview {
				t.Errorf("scope = %q / %q", country, status)
			}
			if k != 100 {
				t.Errorf("k = %d", k)
			}
			if len(vec) != 2 {
				t.Errorf("vector = %v", vec)
			}
			return []result.Scored{
				{Assessment: record("a-1", "42", "High Risk"), Similarity: 0.9},
				{Assessment: record("a-2", "17", "Low Risk"), Similarity: 0.5},
				{Assessment: record("a-3", "33", "Intermediate Risk"), Similarity: 0.05},
			}, nil
		},
	}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}}
	bf := &mockBackfiller{}
	svc := newTestService(repo, embed, &mockScopes{country: "US"}, bf)

	resp, err := svc.Search(context.Background(), Request{Query: "chest pain", Status: "pending_review"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if embed.calls != 1 || embed.texts[0] != "chest pain" {
		t.Errorf("embedder calls = %d, texts = %v", embed.calls, embed.texts)
	}
	if bf.calls != 1 || bf.limits[0] != 20 {
		t.Errorf("backfill calls = %d, limits = %v", bf.calls, bf.limits)
	}
	// a-3 is below the 0.1 similarity floor.
	if !equalIDs(resultIDs(resp.Results), []string{"a-1", "a-2"}) {
		t.Errorf("results = %v", resultIDs(resp.Results))
	}
	if resp.TotalFound != 2 {
		t.Errorf("TotalFound = %d", resp.TotalFound)
	}
	if resp.Parsed.Text != "chest pain" {
		t.Errorf("Parsed.Text = %q", resp.Parsed.Text)
	}
}

func TestSearch_LexicalPathForEmptyText(t *testing.T) {
	older := recordAt("a-old", "10", "Low Risk", "US", assessment.StatusReviewed, searchNow.Add(-time.Hour))
	newer := recordAt("a-new", "20", "Low Risk", "US", assessment.StatusReviewed, searchNow)

	repo := &mockRepo{
		listRecentFn: func(_ context.Context, country string, status assessment.Status, _, limit int) ([]assessment.Assessment, int, error) {
			if country != "US" || status != assessment.StatusReviewed {
				t.Errorf("scope = %q / %q", country, status)
			}
			if limit != 100 {
				t.Errorf("limit = %d", limit)
			}
			return []assessment.Assessment{newer, older}, 2, nil
		},
	}
	embed := &mockEmbedder{}
	svc := newTestService(repo, embed, &mockScopes{country: "US"}, nil)

	// "low risk" is consumed entirely by the category filter: no residual
	// text, so the lexical no-text path runs and the filter still applies.
	resp, err := svc.Search(context.Background(), Request{Query: "low risk", Status: "reviewed"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if embed.calls != 0 {
		t.Errorf("embedder called %d times on lexical path", embed.calls)
	}
	if resp.Parsed.Filters.Category != "low" || resp.Parsed.Text != "" {
		t.Errorf("Parsed = %+v", resp.Parsed)
	}
	if !equalIDs(resultIDs(resp.Results), []string{"a-new", "a-old"}) {
		t.Errorf("results = %v", resultIDs(resp.Results))
	}
	for _, r := range resp.Results {
		if r.Similarity != 1.0 {
			t.Errorf("similarity = %v, want 1.0", r.Similarity)
		}
	}
}

func TestSearch_EmbeddingFailureFallsBackToLexical(t *testing.T) {
	match := assessment.Reconstruct(
		"a-1", "p-1", "42", "High Risk", assessment.StatusReviewed, "US",
		"", "Started statin therapy", nil, nil, nil, searchNow, searchNow,
	)
	other := record("a-2", "17", "Low Risk")

	repo := &mockRepo{
		listRecentFn: func(context.Context, string, assessment.Status, int, int) ([]assessment.Assessment, int, error) {
			return []assessment.Assessment{match, other}, 2, nil
		},
		searchKNNFn: func(context.Context, []float32, string, assessment.Status, int) ([]result.Scored, error) {
			t.Error("KNN reached despite embedder failure")
			return nil, nil
		},
	}
	embed := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	svc := newTestService(repo, embed, &mockScopes{country: "US"}, nil)

	resp, err := svc.Search(context.Background(), Request{Query: "statin", Status: "all"})
	if err != nil {
		t.Fatalf("Search() error = %v, fallback must not surface embedding failures", err)
	}
	if !equalIDs(resultIDs(resp.Results), []string{"a-1"}) {
		t.Errorf("results = %v", resultIDs(resp.Results))
	}
	if resp.Results[0].Similarity != 1.0 {
		t.Errorf("similarity = %v, want 1.0 on fallback", resp.Results[0].Similarity)
	}
}

func TestSearch_StoreErrorSurfaces(t *testing.T) {
	repo := &mockRepo{
		searchKNNFn: func(context.Context, []float32, string, assessment.Status, int) ([]result.Scored, error) {
			return nil, domain.ErrStoreQuery
		},
	}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := newTestService(repo, embed, &mockScopes{country: "US"}, nil)

	_, err := svc.Search(context.Background(), Request{Query: "chest pain", Status: "all"})
	if !errors.Is(err, domain.ErrStoreQuery) {
		t.Fatalf("Search() error = %v, want ErrStoreQuery", err)
	}
}

func TestSearch_EndToEndFilters(t *testing.T) {
	jan2024 := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	old := time.Date(2023, time.June, 1, 8, 0, 0, 0, time.UTC)

	repo := &mockRepo{
		searchKNNFn: func(context.Context, []float32, string, assessment.Status, int) ([]result.Scored, error) {
			return []result.Scored{
				{Assessment: recordAt("a-match", "25%", "High Risk", "US", assessment.StatusPendingReview, jan2024), Similarity: 0.8},
				{Assessment: recordAt("a-low-score", "10%", "High Risk", "US", assessment.StatusPendingReview, jan2024), Similarity: 0.9},
				{Assessment: recordAt("a-too-old", "30%", "High Risk", "US", assessment.StatusPendingReview, old), Similarity: 0.7},
			}, nil
		},
	}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := newTestService(repo, embed, &mockScopes{country: "US"}, nil)

	resp, err := svc.Search(context.Background(), Request{
		Query:  "diabetes risk score >= 20% after January 1, 2024",
		Status: "pending_review",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if embed.texts[0] != "diabetes" {
		t.Errorf("embedded text = %q, want residual only", embed.texts[0])
	}
	f := resp.Parsed.Filters
	if f.RiskScore == nil || f.RiskScore.Op != query.OpGTE || f.RiskScore.Value != 20 {
		t.Errorf("RiskScore = %+v", f.RiskScore)
	}
	if f.Date == nil || f.Date.Op != query.OpGT {
		t.Errorf("Date = %+v", f.Date)
	}
	if !equalIDs(resultIDs(resp.Results), []string{"a-match"}) {
		t.Errorf("results = %v", resultIDs(resp.Results))
	}
}

func TestSearch_TruncatesToPageSize(t *testing.T) {
	items := make([]assessment.Assessment, 0, 8)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		items = append(items, record(id, "10", "Low Risk"))
	}
	repo := &mockRepo{
		listRecentFn: func(context.Context, string, assessment.Status, int, int) ([]assessment.Assessment, int, error) {
			return items, len(items), nil
		},
	}
	svc := newTestService(repo, &mockEmbedder{}, &mockScopes{country: "US"}, nil)

	resp, err := svc.Search(context.Background(), Request{Query: "", Status: "all"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) != 5 {
		t.Errorf("len(Results) = %d, want page size 5", len(resp.Results))
	}
	if resp.TotalFound != 8 {
		t.Errorf("TotalFound = %d, want 8", resp.TotalFound)
	}
}

func TestSearch_LazyBackfillErrorIsNotFatal(t *testing.T) {
	repo := &mockRepo{
		searchKNNFn: func(context.Context, []float32, string, assessment.Status, int) ([]result.Scored, error) {
			return []result.Scored{{Assessment: record("a-1", "42", "High Risk"), Similarity: 0.9}}, nil
		},
	}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	bf := &mockBackfiller{err: errors.New("pool exhausted")}
	svc := newTestService(repo, embed, &mockScopes{country: "US"}, bf)

	resp, err := svc.Search(context.Background(), Request{Query: "chest pain", Status: "all"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) != 1 {
		t.Errorf("results = %v", resultIDs(resp.Results))
	}
}
