package sdk

import (
	"time"

	domassess "github.com/cardioai/assessd/internal/domain/assessment"
	"github.com/cardioai/assessd/internal/domain/search/query"
	"github.com/cardioai/assessd/internal/domain/search/result"
)

// Assessment is a cardiovascular risk assessment record.
type Assessment struct {
	ID                    string
	PatientID             string
	RiskScore             string
	RiskCategory          string
	Status                string
	Country               string
	OverallRecommendation string
	ProviderComments      string
	Inputs                map[string]string
	Recommendations       []Recommendation
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Recommendation is a categorized care recommendation.
type Recommendation struct {
	Category string
	Text     string
}

// SearchResult pairs an assessment with its similarity to the query.
// Lexical matches carry similarity 1.0.
type SearchResult struct {
	Assessment Assessment
	Similarity float64
}

// ParsedQuery reports what the query parser extracted.
type ParsedQuery struct {
	Text      string
	RiskScore *ScoreFilter
	Date      *DateFilter
	Category  string
}

// ScoreFilter is a structured risk score constraint.
type ScoreFilter struct {
	Op    string
	Value float64
}

// DateFilter is a structured creation date constraint.
type DateFilter struct {
	Op    string
	Value time.Time
}

// SearchResponse is a ranked page of results plus the parser's view of the
// query and the pre-pagination match count.
type SearchResponse struct {
	Results    []SearchResult
	Parsed     ParsedQuery
	TotalFound int
}

// BackfillReport summarizes one embedding backfill run.
type BackfillReport struct {
	Processed int
	Skipped   int
	Errors    int
	Total     int
}

// Page is one page of assessments plus the scope-wide total.
type Page struct {
	Items []Assessment
	Total int
}

func fromDomainAssessment(a domassess.Assessment) Assessment {
	var recs []Recommendation
	if len(a.Recommendations()) > 0 {
		recs = make([]Recommendation, len(a.Recommendations()))
		for i, r := range a.Recommendations() {
			recs[i] = Recommendation{Category: r.Category, Text: r.Text}
		}
	}

	return Assessment{
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

func fromScored(items []result.Scored) []SearchResult {
	out := make([]SearchResult, len(items))
	for i, s := range items {
		out[i] = SearchResult{
			Assessment: fromDomainAssessment(s.Assessment),
			Similarity: s.Similarity,
		}
	}
	return out
}

func fromParsed(p query.Parsed) ParsedQuery {
	out := ParsedQuery{Text: p.Text, Category: p.Filters.Category}
	if p.Filters.RiskScore != nil {
		out.RiskScore = &ScoreFilter{
			Op:    string(p.Filters.RiskScore.Op),
			Value: p.Filters.RiskScore.Value,
		}
	}
	if p.Filters.Date != nil {
		out.Date = &DateFilter{
			Op:    string(p.Filters.Date.Op),
			Value: p.Filters.Date.Value,
		}
	}
	return out
}

func toDomainRecommendations(recs []Recommendation) []domassess.Recommendation {
	if len(recs) == 0 {
		return nil
	}
	out := make([]domassess.Recommendation, len(recs))
	for i, r := range recs {
		out[i] = domassess.Recommendation{Category: r.Category, Text: r.Text}
	}
	return out
}
