// Package scope maps a calling principal to its tenant scope.
package scope

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/cardioai/assessd/internal/domain"
	"github.com/cardioai/assessd/internal/domain/assessment"
)

// ProviderReader reads provider profiles for scope lookup.
type ProviderReader interface {
	Get(ctx context.Context, userID string) (assessment.Provider, error)
}

// Resolver validates bearer tokens and resolves the caller's country scope.
// Both failure kinds (bad token, missing scope) must prevent any record from
// being returned; callers treat the scope as the hard visibility boundary.
type Resolver struct {
	providers ProviderReader
	secret    []byte
	issuer    string
	logger    *zap.Logger
}

// New creates a scope resolver. issuer is optional; when set, tokens from
// other issuers are rejected.
func New(providers ProviderReader, secret, issuer string, logger *zap.Logger) *Resolver {
	return &Resolver{
		providers: providers,
		secret:    []byte(secret),
		issuer:    issuer,
		logger:    logger,
	}
}

// Resolve validates the token and returns the caller's country scope.
// Returns domain.ErrUnauthorized for invalid credentials and
// domain.ErrScopeNotFound for a valid principal without a country.
func (r *Resolver) Resolve(ctx context.Context, token string) (string, error) {
	userID, err := r.validate(token)
	if err != nil {
		return "", err
	}

	p, err := r.providers.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProviderNotFound) {
			r.logger.Warn("No provider profile for authenticated principal", zap.String("user_id", userID))
			return "", domain.ErrScopeNotFound
		}
		return "", fmt.Errorf("lookup provider %s: %w", userID, err)
	}

	if p.Country() == "" {
		r.logger.Warn("Provider has no country scope", zap.String("user_id", userID))
		return "", domain.ErrScopeNotFound
	}

	return p.Country(), nil
}

// validate parses and verifies the JWT, returning the subject claim.
func (r *Resolver) validate(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: missing token", domain.ErrUnauthorized)
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return r.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}

	return claims.Subject, nil
}
