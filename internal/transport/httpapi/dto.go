package httpapi

import (
	"time"

	domassess "github.com/cardioai/assessd/internal/domain/assessment"
	"github.com/cardioai/assessd/internal/domain/search/query"
	"github.com/cardioai/assessd/internal/domain/search/result"
	searchuc "github.com/cardioai/assessd/internal/usecase/search"
)

type errorResponse struct {
	Error string `json:"error"`
}

type searchRequest struct {
	Query  string `json:"query"`
	Status string `json:"status"`
}

type searchResponse struct {
	Results     []searchResultItem `json:"results"`
	ParsedQuery parsedQuery        `json:"parsed_query"`
	TotalFound  int                `json:"total_found"`
}

type searchResultItem struct {
	Assessment assessmentResponse `json:"assessment"`
	Similarity float64            `json:"similarity"`
}

// parsedQuery echoes what the parser extracted so clients can show which
// filters were understood.
type parsedQuery struct {
	Text      string           `json:"text"`
	RiskScore *scoreFilterItem `json:"risk_score,omitempty"`
	Date      *dateFilterItem  `json:"date,omitempty"`
	Category  string           `json:"category,omitempty"`
}

type scoreFilterItem struct {
	Op    string  `json:"op"`
	Value float64 `json:"value"`
}

type dateFilterItem struct {
	Op    string    `json:"op"`
	Value time.Time `json:"value"`
}

type submitAssessmentRequest struct {
	PatientID       string               `json:"patient_id"`
	RiskScore       string               `json:"risk_score"`
	RiskCategory    string               `json:"risk_category"`
	Inputs          map[string]string    `json:"inputs"`
	Recommendations []recommendationItem `json:"recommendations"`
}

type reviewAssessmentRequest struct {
	OverallRecommendation string `json:"overall_recommendation"`
	ProviderComments      string `json:"provider_comments"`
}

type recommendationItem struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

type assessmentResponse struct {
	ID                    string               `json:"id"`
	PatientID             string               `json:"patient_id"`
	RiskScore             string               `json:"risk_score"`
	RiskCategory          string               `json:"risk_category"`
	Status                string               `json:"status"`
	Country               string               `json:"country"`
	OverallRecommendation string               `json:"overall_recommendation,omitempty"`
	ProviderComments      string               `json:"provider_comments,omitempty"`
	Inputs                map[string]string    `json:"inputs,omitempty"`
	Recommendations       []recommendationItem `json:"recommendations,omitempty"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

type assessmentListResponse struct {
	Items []assessmentResponse `json:"items"`
	Total int                  `json:"total"`
}

type registerProviderRequest struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	LicenseNumber string `json:"license_number"`
	Country       string `json:"country"`
}

type providerResponse struct {
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name,omitempty"`
	LicenseNumber string    `json:"license_number,omitempty"`
	Country       string    `json:"country,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type backfillRequest struct {
	Limit int `json:"limit"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func assessmentToResponse(a domassess.Assessment) assessmentResponse {
	var recs []recommendationItem
	if len(a.Recommendations()) > 0 {
		recs = make([]recommendationItem, len(a.Recommendations()))
		for i, r := range a.Recommendations() {
			recs[i] = recommendationItem{Category: r.Category, Text: r.Text}
		}
	}

	return assessmentResponse{
		ID:                    a.ID(),
		PatientID:             a.PatientID(),
		RiskScore:             a.RiskScore(),
		RiskCategory:          a.RiskCategory(),
		Status:                string(a.Status()),
		Country:               a.Country(),
		OverallRecommendation: a.OverallRecommendation(),
		ProviderComments:      a.ProviderComments(),
		Inputs:                a.Inputs(),
		Recommendations:       recs,
		CreatedAt:             a.CreatedAt(),
		UpdatedAt:             a.UpdatedAt(),
	}
}

func recommendationsFromRequest(items []recommendationItem) []domassess.Recommendation {
	if len(items) == 0 {
		return nil
	}
	recs := make([]domassess.Recommendation, len(items))
	for i, r := range items {
		recs[i] = domassess.Recommendation{Category: r.Category, Text: r.Text}
	}
	return recs
}

func searchToResponse(resp searchuc.Response) searchResponse {
	items := make([]searchResultItem, len(resp.Results))
	for i := range resp.Results {
		items[i] = scoredToItem(&resp.Results[i])
	}
	return searchResponse{
		Results:     items,
		ParsedQuery: parsedToResponse(resp.Parsed),
		TotalFound:  resp.TotalFound,
	}
}

func scoredToItem(r *result.Scored) searchResultItem {
	return searchResultItem{
		Assessment: assessmentToResponse(r.Assessment),
		Similarity: r.Similarity,
	}
}

func parsedToResponse(p query.Parsed) parsedQuery {
	out := parsedQuery{Text: p.Text, Category: p.Filters.Category}
	if p.Filters.RiskScore != nil {
		out.RiskScore = &scoreFilterItem{
			Op:    string(p.Filters.RiskScore.Op),
			Value: p.Filters.RiskScore.Value,
		}
	}
	if p.Filters.Date != nil {
		out.Date = &dateFilterItem{
			Op:    string(p.Filters.Date.Op),
			Value: p.Filters.Date.Value,
		}
	}
	return out
}

func providerToResponse(p domassess.Provider) providerResponse {
	return providerResponse{
		UserID:        p.UserID(),
		Email:         p.Email(),
		FullName:      p.FullName(),
		LicenseNumber: p.LicenseNumber(),
		Country:       p.Country(),
		CreatedAt:     p.CreatedAt(),
	}
}
