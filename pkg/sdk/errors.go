package sdk

import "github.com/cardioai/assessd/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation             = domain.ErrValidation
	ErrScopeNotFound          = domain.ErrScopeNotFound
	ErrAssessmentNotFound     = domain.ErrAssessmentNotFound
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrStoreQuery             = domain.ErrStoreQuery
)
