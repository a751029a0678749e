package provider

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/cardioai/assessd/internal/domain"
	domassess "github.com/cardioai/assessd/internal/domain/assessment"
)

type mockRepo struct {
	upserted []domassess.Provider
	getFn    func(ctx context.Context, userID string) (domassess.Provider, error)
}

func (m *mockRepo) Upsert(_ context.Context, p domassess.Provider) error {
	m.upserted = append(m.upserted, p)
	return nil
}

func (m *mockRepo) Get(ctx context.Context, userID string) (domassess.Provider, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return domassess.Provider{}, domain.ErrProviderNotFound
}

func TestRegister(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, zap.NewNop())

	p, err := svc.Register(context.Background(), RegisterInput{
		UserID:  "user-1",
		Email:   "dr@example.com",
		Country: "US",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if p.Country() != "US" {
		t.Errorf("country = %q", p.Country())
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("upserted %d profiles", len(repo.upserted))
	}
}

func TestRegister_Invalid(t *testing.T) {
	svc := New(&mockRepo{}, zap.NewNop())

	_, err := svc.Register(context.Background(), RegisterInput{UserID: "", Email: "dr@example.com"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Register() error = %v, want ErrValidation", err)
	}
}
