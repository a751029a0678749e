package search

import (
	"sort"

	"github.com/cardioai/assessd/internal/domain/search/result"
)

// rank stable-sorts descending by similarity; ties go to the newer record,
// which orders lexical results (all 1.0) by recency.
func rank(results []result.Scored) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Assessment.CreatedAt().After(results[j].Assessment.CreatedAt())
	})
}
