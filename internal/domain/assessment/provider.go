package assessment

import (
	"fmt"
	"time"

	"github.com/cardioai/assessd/internal/domain"
)

// Provider is a clinician profile. Country doubles as the tenant scope key:
// a provider only sees assessments from their own country.
type Provider struct {
	userID        string
	email         string
	fullName      string
	licenseNumber string
	country       string
	createdAt     time.Time
}

// NewProvider validates and creates a provider profile.
func NewProvider(userID, email, fullName, licenseNumber, country string, now time.Time) (Provider, error) {
	if userID == "" {
		return Provider{}, fmt.Errorf("%w: provider user id is required", domain.ErrValidation)
	}
	if email == "" {
		return Provider{}, fmt.Errorf("%w: provider email is required", domain.ErrValidation)
	}
	return Provider{
		userID:        userID,
		email:         email,
		fullName:      fullName,
		licenseNumber: licenseNumber,
		country:       country,
		createdAt:     now,
	}, nil
}

// ReconstructProvider rebuilds a provider from storage without validation.
func ReconstructProvider(userID, email, fullName, licenseNumber, country string, createdAt time.Time) Provider {
	return Provider{
		userID:        userID,
		email:         email,
		fullName:      fullName,
		licenseNumber: licenseNumber,
		country:       country,
		createdAt:     createdAt,
	}
}

// UserID returns the identity-service user id.
func (p *Provider) UserID() string { return p.userID }

// Email returns the provider email.
func (p *Provider) Email() string { return p.email }

// FullName returns the provider display name.
func (p *Provider) FullName() string { return p.fullName }

// LicenseNumber returns the medical license number.
func (p *Provider) LicenseNumber() string { return p.licenseNumber }

// Country returns the tenant scope key. May be empty for incomplete profiles;
// callers must treat that as no scope at all, never as global access.
func (p *Provider) Country() string { return p.country }

// CreatedAt returns the profile creation time.
func (p *Provider) CreatedAt() time.Time { return p.createdAt }
