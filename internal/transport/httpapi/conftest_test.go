package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	domassess "github.com/cardioai/assessd/internal/domain/assessment"
	assessmentuc "github.com/cardioai/assessd/internal/usecase/assessment"
	backfilluc "github.com/cardioai/assessd/internal/usecase/backfill"
	healthuc "github.com/cardioai/assessd/internal/usecase/health"
	provideruc "github.com/cardioai/assessd/internal/usecase/provider"
	searchuc "github.com/cardioai/assessd/internal/usecase/search"
)

type mockSearch struct {
	searchFn func(ctx context.Context, req searchuc.Request) (searchuc.Response, error)
}

func (m *mockSearch) Search(ctx context.Context, req searchuc.Request) (searchuc.Response, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return searchuc.Response{}, nil
}

type mockAssessments struct {
	submitFn func(ctx context.Context, in assessmentuc.SubmitInput) (domassess.Assessment, error)
	getFn    func(ctx context.Context, token, id string) (domassess.Assessment, error)
	listFn   func(ctx context.Context, token, status string, offset, limit int) (assessmentuc.Page, error)
	reviewFn func(ctx context.Context, in assessmentuc.ReviewInput) (domassess.Assessment, error)
}

func (m *mockAssessments) Submit(ctx context.Context, in assessmentuc.SubmitInput) (domassess.Assessment, error) {
	return m.submitFn(ctx, in)
}

func (m *mockAssessments) Get(ctx context.Context, token, id string) (domassess.Assessment, error) {
	return m.getFn(ctx, token, id)
}

func (m *mockAssessments) List(
	ctx context.Context, token, status string, offset, limit int,
) (assessmentuc.Page, error) {
	return m.listFn(ctx, token, status, offset, limit)
}

func (m *mockAssessments) Review(ctx context.Context, in assessmentuc.ReviewInput) (domassess.Assessment, error) {
	return m.reviewFn(ctx, in)
}

type mockProviders struct {
	registerFn func(ctx context.Context, in provideruc.RegisterInput) (domassess.Provider, error)
}

func (m *mockProviders) Register(ctx context.Context, in provideruc.RegisterInput) (domassess.Provider, error) {
	return m.registerFn(ctx, in)
}

type mockBackfill struct {
	runFn func(ctx context.Context, limit int) (backfilluc.Report, error)
}

func (m *mockBackfill) Run(ctx context.Context, limit int) (backfilluc.Report, error) {
	if m.runFn != nil {
		return m.runFn(ctx, limit)
	}
	return backfilluc.Report{}, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report {
	return m.report
}

type serverMocks struct {
	search      *mockSearch
	assessments *mockAssessments
	providers   *mockProviders
	backfill    *mockBackfill
	health      *mockHealth
}

func newTestRouter(m serverMocks) http.Handler {
	if m.search == nil {
		m.search = &mockSearch{}
	}
	if m.assessments == nil {
		m.assessments = &mockAssessments{}
	}
	if m.providers == nil {
		m.providers = &mockProviders{}
	}
	if m.backfill == nil {
		m.backfill = &mockBackfill{}
	}
	if m.health == nil {
		m.health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}

	s := NewServer(m.search, m.assessments, m.providers, m.backfill, m.health, zap.NewNop())
	r := chi.NewRouter()
	s.Mount(r)
	return r
}

var apiNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func apiAssessment(id, country string) domassess.Assessment {
	return domassess.Reconstruct(
		id, "p-1", "42%", "High Risk", domassess.StatusPendingReview, country,
		"", "", map[string]string{"age": "61"}, nil, nil, apiNow, apiNow,
	)
}

func doRequest(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
