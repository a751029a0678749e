package domain

import "errors"

var (
	// ErrValidation signals malformed or incomplete request input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized signals a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrScopeNotFound signals a principal with no resolvable tenant scope.
	ErrScopeNotFound = errors.New("scope not found")
	// ErrAssessmentNotFound signals a missing assessment record.
	ErrAssessmentNotFound = errors.New("assessment not found")
	// ErrProviderNotFound signals a missing provider record.
	ErrProviderNotFound = errors.New("provider not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrStoreQuery signals a record store failure.
	ErrStoreQuery = errors.New("record store query failed")
)
