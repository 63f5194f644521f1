package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	emaildomain "careertrack-backend/internal/email/domain"
	emailrepo "careertrack-backend/internal/email/repository"
	"careertrack-backend/pkg/provider"
	"careertrack-backend/pkg/vault"
)

// ProviderStatus is the connection view for one mailbox provider.
type ProviderStatus struct {
	Provider     string     `json:"provider"`
	Configured   bool       `json:"configured"`
	Connected    bool       `json:"connected"`
	AccountEmail string     `json:"account_email,omitempty"`
	TokenExpiry  *time.Time `json:"token_expiry,omitempty"`
}

// AccountService handles the OAuth connect and disconnect flows and keeps
// tokens encrypted at rest.
type AccountService struct {
	providers   provider.Registry
	credentials emailrepo.CredentialRepository
	vault       *vault.Vault
	log         *zap.Logger
}

func NewAccountService(providers provider.Registry, credentials emailrepo.CredentialRepository, v *vault.Vault, log *zap.Logger) *AccountService {
	return &AccountService{
		providers:   providers,
		credentials: credentials,
		vault:       v,
		log:         log,
	}
}

// EncryptionEnabled reports whether stored tokens are actually encrypted.
func (s *AccountService) EncryptionEnabled() bool {
	return s.vault.Enabled()
}

// ConnectURL returns the OAuth consent URL for a provider.
func (s *AccountService) ConnectURL(providerName, redirectURI string) (string, error) {
	prov, err := s.providers.Lookup(providerName)
	if err != nil {
		return "", err
	}
	return prov.AuthorizationURL(redirectURI)
}

// CompleteConnect trades the authorization code for tokens and stores them
// encrypted. Reconnecting an already connected provider replaces its
// credential.
func (s *AccountService) CompleteConnect(ctx context.Context, providerName, code, redirectURI string) (*emaildomain.Credential, error) {
	prov, err := s.providers.Lookup(providerName)
	if err != nil {
		return nil, err
	}
	token, err := prov.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		return nil, err
	}

	cred := &emaildomain.Credential{
		Provider:              providerName,
		AccessTokenEncrypted:  s.vault.Encrypt(token.AccessToken),
		RefreshTokenEncrypted: s.vault.Encrypt(token.RefreshToken),
		TokenExpiry:           token.Expiry,
		AccountEmail:          token.AccountEmail,
	}
	if err := s.credentials.Upsert(cred); err != nil {
		return nil, err
	}
	s.log.Info("provider connected",
		zap.String("provider", providerName),
		zap.String("account", token.AccountEmail))
	return cred, nil
}

// Disconnect removes a provider's stored credential.
func (s *AccountService) Disconnect(providerName string) error {
	if _, err := s.providers.Lookup(providerName); err != nil {
		return err
	}
	if err := s.credentials.Delete(providerName); err != nil {
		return err
	}
	s.log.Info("provider disconnected", zap.String("provider", providerName))
	return nil
}

// Status reports every registered provider, connected or not.
func (s *AccountService) Status() ([]ProviderStatus, error) {
	creds, err := s.credentials.List()
	if err != nil {
		return nil, err
	}
	byProvider := make(map[string]*emaildomain.Credential, len(creds))
	for i := range creds {
		byProvider[creds[i].Provider] = &creds[i]
	}

	names := s.providers.Names()
	out := make([]ProviderStatus, 0, len(names))
	for _, name := range names {
		prov, _ := s.providers.Lookup(name)
		st := ProviderStatus{Provider: name, Configured: prov.Configured()}
		if cred, ok := byProvider[name]; ok {
			st.Connected = true
			st.AccountEmail = cred.AccountEmail
			st.TokenExpiry = cred.TokenExpiry
		}
		out = append(out, st)
	}
	return out, nil
}
