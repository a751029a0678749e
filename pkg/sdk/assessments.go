package sdk

import (
	"context"
	"fmt"
	"time"

	assessmentuc "github.com/cardioai/assessd/internal/usecase/assessment"
)

// SubmitInput is a new assessment submission.
type SubmitInput struct {
	PatientID       string
	RiskScore       string
	RiskCategory    string
	Inputs          map[string]string
	Recommendations []Recommendation
}

// ReviewInput is a provider review of a pending assessment.
type ReviewInput struct {
	ID                    string
	OverallRecommendation string
	ProviderComments      string
}

// Submit stores a new pending-review assessment in the client's scope.
func (c *Client) Submit(ctx context.Context, in SubmitInput) (a Assessment, err error) {
	start := time.Now()
	defer func() { c.obs.observe("submit", start, err) }()

	created, err := c.assessSvc.Submit(ctx, assessmentuc.SubmitInput{
		PatientID:       in.PatientID,
		RiskScore:       in.RiskScore,
		RiskCategory:    in.RiskCategory,
		Inputs:          in.Inputs,
		Recommendations: toDomainRecommendations(in.Recommendations),
	})
	if err != nil {
		return Assessment{}, fmt.Errorf("submit: %w", err)
	}
	return fromDomainAssessment(created), nil
}

// Get returns one assessment by id.
func (c *Client) Get(ctx context.Context, id string) (a Assessment, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get", start, err) }()

	found, err := c.assessSvc.Get(ctx, "", id)
	if err != nil {
		return Assessment{}, fmt.Errorf("get: %w", err)
	}
	return fromDomainAssessment(found), nil
}

// List returns a page of assessments, newest first. status accepts
// "pending_review", "reviewed" or "all".
func (c *Client) List(ctx context.Context, status string, offset, limit int) (p Page, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list", start, err) }()

	page, err := c.assessSvc.List(ctx, "", status, offset, limit)
	if err != nil {
		return Page{}, fmt.Errorf("list: %w", err)
	}

	items := make([]Assessment, len(page.Items))
	for i, item := range page.Items {
		items[i] = fromDomainAssessment(item)
	}
	return Page{Items: items, Total: page.Total}, nil
}

// Review transitions a pending assessment to reviewed.
func (c *Client) Review(ctx context.Context, in ReviewInput) (a Assessment, err error) {
	start := time.Now()
	defer func() { c.obs.observe("review", start, err) }()

	reviewed, err := c.assessSvc.Review(ctx, assessmentuc.ReviewInput{
		ID:                    in.ID,
		OverallRecommendation: in.OverallRecommendation,
		ProviderComments:      in.ProviderComments,
	})
	if err != nil {
		return Assessment{}, fmt.Errorf("review: %w", err)
	}
	return fromDomainAssessment(reviewed), nil
}

// Backfill embeds assessments that are missing vectors. limit 0 uses the
// configured batch size.
func (c *Client) Backfill(ctx context.Context, limit int) (r BackfillReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("backfill", start, err) }()

	report, err := c.backfill.Run(ctx, limit)
	if err != nil {
		return BackfillReport{}, fmt.Errorf("backfill: %w", err)
	}
	return BackfillReport{
		Processed: report.Processed,
		Skipped:   report.Skipped,
		Errors:    report.Errors,
		Total:     report.Total,
	}, nil
}
