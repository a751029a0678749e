// Package assessment holds the risk-assessment aggregate shared by all layers.
package assessment

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cardioai/assessd/internal/domain"
)

// Recommendation is a single care recommendation attached to an assessment.
type Recommendation struct {
	Category string
	Text     string
}

// Assessment is a completed risk assessment owned by a patient and reviewed
// by a provider. Risk scores are kept in their stored string form (legacy
// rows carry a trailing "%"); use RiskScoreValue for numeric comparisons.
type Assessment struct {
	id                    string
	patientID             string
	riskScore             string
	riskCategory          string
	status                Status
	country               string
	overallRecommendation string
	providerComments      string
	inputs                map[string]string
	recommendations       []Recommendation
	embedding             []float32
	createdAt             time.Time
	updatedAt             time.Time
}

// New validates and creates an assessment entering the pending-review state.
func New(
	id, patientID, riskScore, riskCategory, country string,
	inputs map[string]string, recommendations []Recommendation,
	now time.Time,
) (Assessment, error) {
	if id == "" {
		return Assessment{}, fmt.Errorf("%w: assessment id is required", domain.ErrValidation)
	}
	if patientID == "" {
		return Assessment{}, fmt.Errorf("%w: patient id is required", domain.ErrValidation)
	}
	if country == "" {
		return Assessment{}, fmt.Errorf("%w: country is required", domain.ErrValidation)
	}
	if _, err := parseScore(riskScore); err != nil {
		return Assessment{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return Assessment{
		id:              id,
		patientID:       patientID,
		riskScore:       riskScore,
		riskCategory:    riskCategory,
		status:          StatusPendingReview,
		country:         country,
		inputs:          inputs,
		recommendations: recommendations,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// Reconstruct rebuilds an assessment from storage without validation.
func Reconstruct(
	id, patientID, riskScore, riskCategory string, status Status, country string,
	overallRecommendation, providerComments string,
	inputs map[string]string, recommendations []Recommendation,
	embedding []float32, createdAt, updatedAt time.Time,
) Assessment {
	return Assessment{
		id:                    id,
		patientID:             patientID,
		riskScore:             riskScore,
		riskCategory:          riskCategory,
		status:                status,
		country:               country,
		overallRecommendation: overallRecommendation,
		providerComments:      providerComments,
		inputs:                inputs,
		recommendations:       recommendations,
		embedding:             embedding,
		createdAt:             createdAt,
		updatedAt:             updatedAt,
	}
}

// ID returns the assessment identifier.
func (a *Assessment) ID() string { return a.id }

// PatientID returns the owning patient identifier.
func (a *Assessment) PatientID() string { return a.patientID }

// RiskScore returns the stored risk score string (may carry a trailing "%").
func (a *Assessment) RiskScore() string { return a.riskScore }

// RiskCategory returns the free-text risk category label.
func (a *Assessment) RiskCategory() string { return a.riskCategory }

// Status returns the review status.
func (a *Assessment) Status() Status { return a.status }

// Country returns the tenant scope key.
func (a *Assessment) Country() string { return a.country }

// OverallRecommendation returns the provider's overall recommendation.
func (a *Assessment) OverallRecommendation() string { return a.overallRecommendation }

// ProviderComments returns the provider's review comments.
func (a *Assessment) ProviderComments() string { return a.providerComments }

// Inputs returns the questionnaire answers.
func (a *Assessment) Inputs() map[string]string { return a.inputs }

// Recommendations returns the attached care recommendations.
func (a *Assessment) Recommendations() []Recommendation { return a.recommendations }

// Embedding returns the stored embedding vector, or nil when not yet computed.
func (a *Assessment) Embedding() []float32 { return a.embedding }

// CreatedAt returns the creation timestamp.
func (a *Assessment) CreatedAt() time.Time { return a.createdAt }

// UpdatedAt returns the last modification timestamp.
func (a *Assessment) UpdatedAt() time.Time { return a.updatedAt }

// HasEmbedding reports whether an embedding has been computed.
func (a *Assessment) HasEmbedding() bool { return len(a.embedding) > 0 }

// RiskScoreValue parses the stored score, tolerant of a trailing "%".
func (a *Assessment) RiskScoreValue() (float64, error) {
	return parseScore(a.riskScore)
}

// WithEmbedding returns a copy carrying the given embedding vector.
func (a Assessment) WithEmbedding(vec []float32) Assessment {
	a.embedding = vec
	return a
}

// WithReview returns a copy transitioned to reviewed. The stored embedding is
// cleared: review text participates in the search text, so the old vector is
// stale and gets recomputed by the next backfill.
func (a Assessment) WithReview(overallRecommendation, providerComments string, now time.Time) Assessment {
	a.status = StatusReviewed
	a.overallRecommendation = overallRecommendation
	a.providerComments = providerComments
	a.embedding = nil
	a.updatedAt = now
	return a
}

// SearchText assembles the text the embedding and the lexical fallback search
// over: category, score, review text, questionnaire answers, recommendations.
// Inputs are emitted in sorted key order so the text is deterministic.
func (a *Assessment) SearchText() string {
	var parts []string

	if a.riskCategory != "" {
		parts = append(parts, a.riskCategory)
	}
	if a.riskScore != "" {
		parts = append(parts, "risk score "+a.riskScore)
	}
	if a.overallRecommendation != "" {
		parts = append(parts, a.overallRecommendation)
	}
	if a.providerComments != "" {
		parts = append(parts, a.providerComments)
	}

	keys := make([]string, 0, len(a.inputs))
	for k := range a.inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := a.inputs[k]; v != "" {
			parts = append(parts, k+": "+v)
		}
	}

	for _, rec := range a.recommendations {
		if rec.Category != "" {
			parts = append(parts, rec.Category)
		}
		if rec.Text != "" {
			parts = append(parts, rec.Text)
		}
	}

	return strings.TrimSpace(strings.Join(parts, " "))
}

func parseScore(s string) (float64, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if trimmed == "" {
		return 0, fmt.Errorf("empty risk score")
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("parse risk score %q: %w", s, err)
	}
	return v, nil
}
