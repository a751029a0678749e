package assessment

import (
	"encoding/json"
	"fmt"
	"time"

	domassess "github.com/cardioai/assessd/internal/domain/assessment"
)

// hasEmbedding tag values. FT.SEARCH cannot match on field absence, so
// embedding presence is materialized as a TAG the repo keeps in sync.
const (
	tagEmbeddingMissing = "0"
	tagEmbeddingPresent = "1"
)

type recommendationDoc struct {
	Category string `json:"category,omitempty"`
	Text     string `json:"text,omitempty"`
}

type assessmentDoc struct {
	ID                    string              `json:"id"`
	PatientID             string              `json:"patient_id"`
	RiskScore             string              `json:"risk_score"`
	RiskCategory          string              `json:"risk_category,omitempty"`
	Status                string              `json:"status"`
	Country               string              `json:"country"`
	OverallRecommendation string              `json:"overall_recommendation,omitempty"`
	ProviderComments      string              `json:"provider_comments,omitempty"`
	Inputs                map[string]string   `json:"inputs,omitempty"`
	Recommendations       []recommendationDoc `json:"recommendations,omitempty"`
	SearchText            string              `json:"search_text"`
	Embedding             []float32           `json:"embedding,omitempty"`
	HasEmbedding          string              `json:"has_embedding"`
	CreatedAt             int64               `json:"created_at"`
	UpdatedAt             int64               `json:"updated_at"`
}

func buildDoc(a *domassess.Assessment) *assessmentDoc {
	recs := make([]recommendationDoc, 0, len(a.Recommendations()))
	for _, r := range a.Recommendations() {
		recs = append(recs, recommendationDoc{Category: r.Category, Text: r.Text})
	}

	hasEmb := tagEmbeddingMissing
	if a.HasEmbedding() {
		hasEmb = tagEmbeddingPresent
	}

	return &assessmentDoc{
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
		SearchText:            a.SearchText(),
		Embedding:             a.Embedding(),
		HasEmbedding:          hasEmb,
		CreatedAt:             a.CreatedAt().Unix(),
		UpdatedAt:             a.UpdatedAt().Unix(),
	}
}

func (d *assessmentDoc) toDomain() domassess.Assessment {
	recs := make([]domassess.Recommendation, 0, len(d.Recommendations))
	for _, r := range d.Recommendations {
		recs = append(recs, domassess.Recommendation{Category: r.Category, Text: r.Text})
	}

	status, err := domassess.ParseStatus(d.Status)
	if err != nil {
		status = domassess.StatusPendingReview
	}

	return domassess.Reconstruct(
		d.ID, d.PatientID, d.RiskScore, d.RiskCategory, status, d.Country,
		d.OverallRecommendation, d.ProviderComments,
		d.Inputs, recs, d.Embedding,
		time.Unix(d.CreatedAt, 0).UTC(), time.Unix(d.UpdatedAt, 0).UTC(),
	)
}

// parseJSONGetResult parses a JSON.GET "$" response, which wraps the document
// in a single-element array.
func parseJSONGetResult(raw []byte) (*assessmentDoc, error) {
	var docs []assessmentDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		// Some paths return the bare object.
		var doc assessmentDoc
		if err2 := json.Unmarshal(raw, &doc); err2 == nil {
			return &doc, nil
		}
		return nil, fmt.Errorf("unmarshal assessment doc: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("empty json.get result")
	}
	return &docs[0], nil
}
