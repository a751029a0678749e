// Package result defines the scored search result shared by both search
// strategies.
package result

import "github.com/cardioai/assessd/internal/domain/assessment"

// Scored pairs an assessment with its similarity score. Similarity is in
// [0,1]: cosine-derived for semantic matches, fixed at 1.0 for lexical and
// filter-only matches where no semantic signal exists.
type Scored struct {
	Assessment assessment.Assessment
	Similarity float64
}
