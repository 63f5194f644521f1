package domain

import "time"

// Known provider identifiers.
const (
	ProviderGmail   = "gmail"
	ProviderOutlook = "outlook"
)

// Credential holds one provider's OAuth tokens at rest. Tokens are encrypted
// by the vault before they reach this struct; the repository never sees
// plaintext. At most one credential exists per provider.
type Credential struct {
	ID                    string     `json:"id" gorm:"primaryKey"`
	Provider              string     `json:"provider" gorm:"size:50;not null;uniqueIndex"`
	AccessTokenEncrypted  string     `json:"-" gorm:"size:4096;not null"`
	RefreshTokenEncrypted string     `json:"-" gorm:"size:4096"`
	TokenExpiry           *time.Time `json:"token_expiry"`
	AccountEmail          string     `json:"account_email" gorm:"size:255"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Expired reports whether the stored access token is past its expiry at the
// given instant. A credential with no recorded expiry is never considered
// expired; the provider call surfaces the failure instead.
func (c *Credential) Expired(now time.Time) bool {
	return c.TokenExpiry != nil && c.TokenExpiry.Before(now)
}
