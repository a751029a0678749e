package assessment

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cardioai/assessd/internal/db"
	domassess "github.com/cardioai/assessd/internal/domain/assessment"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn     func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn     func(ctx context.Context, key string, paths ...string) ([]byte, error)
	existsFn      func(ctx context.Context, key string) (bool, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	searchKNNFn   func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchListFn  func(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	searchCountFn func(ctx context.Context, index string, tags map[string]string) (int, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index string, tags map[string]string) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, tags)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "assessd:"), ms
}

var repoNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func testAssessment(t *testing.T, id string) domassess.Assessment {
	t.Helper()
	a, err := domassess.New(
		id, "patient-"+id, "42%", "High Risk", "US",
		map[string]string{"smoker": "yes"},
		[]domassess.Recommendation{{Category: "Lifestyle", Text: "Stop smoking"}},
		repoNow,
	)
	if err != nil {
		t.Fatalf("New assessment: %v", err)
	}
	return a
}

func docJSON(t *testing.T, a domassess.Assessment) string {
	t.Helper()
	data, err := json.Marshal(buildDoc(&a))
	if err != nil {
		t.Fatalf("marshal doc: %v", err)
	}
	return string(data)
}
