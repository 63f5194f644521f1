package repository

import (
	"time"

	emaildomain "careertrack-backend/internal/email/domain"
)

// CredentialRepository stores one OAuth credential per provider.
type CredentialRepository interface {
	// List returns every connected provider's credential.
	List() ([]emaildomain.Credential, error)
	// GetByProvider returns the credential or apperrors.ErrCredentialNotFound.
	GetByProvider(provider string) (*emaildomain.Credential, error)
	// Upsert creates or replaces the credential for its provider.
	Upsert(cred *emaildomain.Credential) error
	// UpdateTokens rewrites encrypted tokens after a refresh. An empty
	// refreshTokenEncrypted keeps the stored one.
	UpdateTokens(provider, accessTokenEncrypted, refreshTokenEncrypted string, expiry *time.Time) error
	// Delete disconnects a provider.
	Delete(provider string) error
}
