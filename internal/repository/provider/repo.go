// Package provider persists provider profiles as RedisJSON documents keyed by
// the identity-service user id.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cardioai/assessd/internal/db"
	"github.com/cardioai/assessd/internal/domain"
	domassess "github.com/cardioai/assessd/internal/domain/assessment"
)

// store is the consumer interface for providers (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

type providerDoc struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name,omitempty"`
	LicenseNumber string `json:"license_number,omitempty"`
	Country       string `json:"country,omitempty"`
	CreatedAt     int64  `json:"created_at"`
}

// Repo implements the provider lookups consumed by the scope resolver.
type Repo struct {
	store  store
	prefix string
}

// New creates a provider repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

func (r *Repo) key(userID string) string {
	return r.prefix + "provider:" + userID
}

// Upsert creates or replaces a provider profile.
func (r *Repo) Upsert(ctx context.Context, p domassess.Provider) error {
	doc := providerDoc{
		UserID:        p.UserID(),
		Email:         p.Email(),
		FullName:      p.FullName(),
		LicenseNumber: p.LicenseNumber(),
		Country:       p.Country(),
		CreatedAt:     p.CreatedAt().Unix(),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal provider %s: %w", p.UserID(), err)
	}
	if err := r.store.JSONSet(ctx, r.key(p.UserID()), "$", data); err != nil {
		return fmt.Errorf("%w: json.set provider %s: %w", domain.ErrStoreQuery, p.UserID(), err)
	}
	return nil
}

// Get returns a provider profile by user id.
func (r *Repo) Get(ctx context.Context, userID string) (domassess.Provider, error) {
	raw, err := r.store.JSONGet(ctx, r.key(userID), "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domassess.Provider{}, domain.ErrProviderNotFound
		}
		return domassess.Provider{}, fmt.Errorf("%w: json.get provider %s: %w", domain.ErrStoreQuery, userID, err)
	}

	var docs []providerDoc
	if err := json.Unmarshal(raw, &docs); err != nil || len(docs) == 0 {
		var doc providerDoc
		if err2 := json.Unmarshal(raw, &doc); err2 != nil {
			return domassess.Provider{}, fmt.Errorf("%w: unmarshal provider %s: %w", domain.ErrStoreQuery, userID, err2)
		}
		docs = []providerDoc{doc}
	}

	d := docs[0]
	return domassess.ReconstructProvider(
		d.UserID, d.Email, d.FullName, d.LicenseNumber, d.Country,
		time.Unix(d.CreatedAt, 0).UTC(),
	), nil
}
