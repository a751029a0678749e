package sdk

import (
	"context"
	"time"

	domassess "github.com/cardioai/assessd/internal/domain/assessment"
	assessmentuc "github.com/cardioai/assessd/internal/usecase/assessment"
	backfilluc "github.com/cardioai/assessd/internal/usecase/backfill"
	healthuc "github.com/cardioai/assessd/internal/usecase/health"
	searchuc "github.com/cardioai/assessd/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, req searchuc.Request) (searchuc.Response, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req searchuc.Request) (searchuc.Response, error) {
	return m.searchFn(ctx, req)
}

// --- assessmentUseCase mock ---

type mockAssessmentUC struct {
	submitFn func(ctx context.Context, in assessmentuc.SubmitInput) (domassess.Assessment, error)
	getFn    func(ctx context.Context, token, id string) (domassess.Assessment, error)
	listFn   func(ctx context.Context, token, status string, offset, limit int) (assessmentuc.Page, error)
	reviewFn func(ctx context.Context, in assessmentuc.ReviewInput) (domassess.Assessment, error)
}

func (m *mockAssessmentUC) Submit(ctx context.Context, in assessmentuc.SubmitInput) (domassess.Assessment, error) {
	return m.submitFn(ctx, in)
}

func (m *mockAssessmentUC) Get(ctx context.Context, token, id string) (domassess.Assessment, error) {
	return m.getFn(ctx, token, id)
}

func (m *mockAssessmentUC) List(
	ctx context.Context, token, status string, offset, limit int,
) (assessmentuc.Page, error) {
	return m.listFn(ctx, token, status, offset, limit)
}

func (m *mockAssessmentUC) Review(ctx context.Context, in assessmentuc.ReviewInput) (domassess.Assessment, error) {
	return m.reviewFn(ctx, in)
}

// --- backfillUseCase mock ---

type mockBackfillUC struct {
	runFn func(ctx context.Context, limit int) (backfilluc.Report, error)
}

func (m *mockBackfillUC) Run(ctx context.Context, limit int) (backfilluc.Report, error) {
	return m.runFn(ctx, limit)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report {
	return m.report
}

// --- helpers ---

var sdkNow = time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)

func sdkAssessment(id string) domassess.Assessment {
	return domassess.Reconstruct(
		id, "p-1", "42%", "High Risk", domassess.StatusPendingReview, "US",
		"", "", nil, nil, nil, sdkNow, sdkNow,
	)
}

func testClient(
	searchSvc searchUseCase,
	assessSvc assessmentUseCase,
	backfill backfillUseCase,
	healthSvc healthUseCase,
) *Client {
	return &Client{
		searchSvc: searchSvc,
		assessSvc: assessSvc,
		backfill:  backfill,
		healthSvc: healthSvc,
	}
}
