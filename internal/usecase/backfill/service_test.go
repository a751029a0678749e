package backfill

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cardioai/assessd/internal/domain"
	"github.com/cardioai/assessd/internal/domain/assessment"
	"github.com/cardioai/assessd/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterMetrics()
	os.Exit(m.Run())
}

type mockRepo struct {
	mu      sync.Mutex
	items   []assessment.Assessment
	listErr error
	saveErr error
	saved   map[string][]float32
}

func (m *mockRepo) ListMissingEmbeddings(_ context.Context, limit int) ([]assessment.Assessment, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.items) > limit {
		return m.items[:limit], nil
	}
	return m.items, nil
}

func (m *mockRepo) UpdateEmbedding(_ context.Context, id string, vec []float32) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = map[string][]float32{}
	}
	m.saved[id] = vec
	return nil
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

var backfillNow = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

func pendingAssessment(t *testing.T, id string) assessment.Assessment {
	t.Helper()
	a, err := assessment.New(id, "p-"+id, "30", "Intermediate Risk", "US", nil, nil, backfillNow)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func emptyTextAssessment(id string) assessment.Assessment {
	return assessment.Reconstruct(
		id, "p-"+id, "", "", assessment.StatusPendingReview, "US",
		"", "", nil, nil, nil, backfillNow, backfillNow,
	)
}

func TestRun_ProcessesAll(t *testing.T) {
	repo := &mockRepo{items: []assessment.Assessment{
		pendingAssessment(t, "a-1"),
		pendingAssessment(t, "a-2"),
		pendingAssessment(t, "a-3"),
	}}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}}
	svc := New(repo, embed, 2, 100, zap.NewNop())

	report, err := svc.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Processed != 3 || report.Errors != 0 || report.Skipped != 0 || report.Total != 3 {
		t.Fatalf("report = %+v", report)
	}
	if len(repo.saved) != 3 {
		t.Fatalf("saved %d embeddings, want 3", len(repo.saved))
	}
	if v := repo.saved["a-2"]; len(v) != 2 || v[0] != 0.1 {
		t.Errorf("saved vector = %v", v)
	}
}

func TestRun_SkipsEmptySearchText(t *testing.T) {
	repo := &mockRepo{items: []assessment.Assessment{
		pendingAssessment(t, "a-1"),
		emptyTextAssessment("a-2"),
	}}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := New(repo, embed, 2, 100, zap.NewNop())

	report, err := svc.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Processed != 1 || report.Skipped != 1 || report.Total != 2 {
		t.Fatalf("report = %+v", report)
	}
	if _, ok := repo.saved["a-2"]; ok {
		t.Error("embedding saved for empty search text")
	}
}

func TestRun_CountsEmbedderErrors(t *testing.T) {
	repo := &mockRepo{items: []assessment.Assessment{
		pendingAssessment(t, "a-1"),
		pendingAssessment(t, "a-2"),
	}}
	embed := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	svc := New(repo, embed, 2, 100, zap.NewNop())

	report, err := svc.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Errors != 2 || report.Processed != 0 {
		t.Fatalf("report = %+v", report)
	}
}

func TestRun_ListErrorIsFatal(t *testing.T) {
	repo := &mockRepo{listErr: errors.New("store down")}
	svc := New(repo, &mockEmbedder{}, 2, 100, zap.NewNop())

	if _, err := svc.Run(context.Background(), 0); err == nil {
		t.Fatal("Run() = nil, want error")
	}
}

func TestRun_HonorsLimit(t *testing.T) {
	repo := &mockRepo{items: []assessment.Assessment{
		pendingAssessment(t, "a-1"),
		pendingAssessment(t, "a-2"),
		pendingAssessment(t, "a-3"),
	}}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := New(repo, embed, 2, 100, zap.NewNop())

	report, err := svc.Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Total != 2 || report.Processed != 2 {
		t.Fatalf("report = %+v", report)
	}
}

func TestRun_NothingToDo(t *testing.T) {
	svc := New(&mockRepo{}, &mockEmbedder{}, 2, 100, zap.NewNop())

	report, err := svc.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Total != 0 {
		t.Fatalf("report = %+v", report)
	}
}
