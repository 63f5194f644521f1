package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"careertrack-backend/internal/apperrors"
	emaildomain "careertrack-backend/internal/email/domain"
	"careertrack-backend/pkg/provider"
	"careertrack-backend/pkg/vault"
)

func TestCompleteConnectStoresEncryptedTokens(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	prov := &fakeProvider{
		name:      "gmail",
		exchanged: &provider.Token{AccessToken: "acc", RefreshToken: "ref", Expiry: &expiry, AccountEmail: "me@example.com"},
	}
	creds := &fakeCredentialRepo{}
	v := vault.New("thisis32byteslongsecretkey123456", zap.NewNop())
	svc := NewAccountService(provider.NewRegistry(prov), creds, v, zap.NewNop())

	cred, err := svc.CompleteConnect(context.Background(), "gmail", "code", "http://localhost/cb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred.AccountEmail != "me@example.com" {
		t.Fatalf("unexpected account %q", cred.AccountEmail)
	}
	if cred.AccessTokenEncrypted == "acc" {
		t.Fatal("access token must be stored encrypted")
	}
	if v.Decrypt(cred.AccessTokenEncrypted) != "acc" {
		t.Fatal("encrypted access token must round-trip")
	}
	if len(creds.creds) != 1 {
		t.Fatalf("expected one stored credential, got %d", len(creds.creds))
	}
}

func TestConnectURLUnknownProvider(t *testing.T) {
	svc := NewAccountService(provider.NewRegistry(), &fakeCredentialRepo{}, vault.New("", zap.NewNop()), zap.NewNop())
	if _, err := svc.ConnectURL("fastmail", "http://localhost/cb"); !errors.Is(err, apperrors.ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestStatusMarksConnectedProviders(t *testing.T) {
	gmail := &fakeProvider{name: "gmail"}
	outlook := &fakeProvider{name: "outlook"}
	creds := &fakeCredentialRepo{creds: []emaildomain.Credential{
		{ID: "c1", Provider: "gmail", AccountEmail: "me@example.com"},
	}}
	svc := NewAccountService(provider.NewRegistry(gmail, outlook), creds, vault.New("", zap.NewNop()), zap.NewNop())

	status, err := svc.Status()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(status) != 2 {
		t.Fatalf("expected both providers listed, got %d", len(status))
	}
	byName := make(map[string]ProviderStatus)
	for _, st := range status {
		byName[st.Provider] = st
	}
	if !byName["gmail"].Connected || byName["gmail"].AccountEmail != "me@example.com" {
		t.Fatalf("gmail should be connected, got %+v", byName["gmail"])
	}
	if byName["outlook"].Connected {
		t.Fatalf("outlook should not be connected, got %+v", byName["outlook"])
	}
}
