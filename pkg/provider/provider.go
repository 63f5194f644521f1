// Package provider normalizes mailbox vendors behind one capability set:
// OAuth authorization, code exchange, token refresh, and message fetch.
package provider

import (
	"context"
	"strings"
	"time"

	"careertrack-backend/internal/apperrors"
)

// Token is the normalized result of a code exchange or refresh. Expiry is nil
// when the vendor does not report one.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       *time.Time
	AccountEmail string
}

// RawMessage is one fetched email, reduced to the fields the reconciliation
// pipeline needs.
type RawMessage struct {
	MessageID   string
	SenderEmail string
	SenderName  string
	Subject     string
	BodyPreview string
	ReceivedAt  time.Time
}

// Provider is implemented once per mailbox vendor.
type Provider interface {
	Name() string
	// Configured reports whether client credentials are present.
	Configured() bool
	// AuthorizationURL returns the OAuth consent URL, or ErrNotConfigured.
	AuthorizationURL(redirectURI string) (string, error)
	// ExchangeCode trades an authorization code for tokens.
	ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error)
	// RefreshAccessToken obtains a fresh access token. Callers need not know
	// vendor refresh semantics.
	RefreshAccessToken(ctx context.Context, refreshToken string) (*Token, error)
	// FetchRecentMessages lists messages received since the watermark. A rate
	// limit (HTTP 429) yields an empty list and no error: the caller cannot
	// distinguish "no new mail" from "temporarily blocked", which is accepted
	// for a best-effort poller.
	FetchRecentMessages(ctx context.Context, accessToken string, since time.Time, maxResults int64) ([]RawMessage, error)
}

// Registry resolves providers by name. Selection happens once per provider
// per poll cycle, no further dispatch.
type Registry map[string]Provider

func NewRegistry(providers ...Provider) Registry {
	r := make(Registry, len(providers))
	for _, p := range providers {
		r[p.Name()] = p
	}
	return r
}

func (r Registry) Lookup(name string) (Provider, error) {
	p, ok := r[name]
	if !ok {
		return nil, apperrors.ErrUnknownProvider
	}
	return p, nil
}

// Names returns the registered provider names in no particular order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}

// ExtractAddress pulls the address out of a "Name <email>" header value.
func ExtractAddress(from string) string {
	if open := strings.Index(from, "<"); open >= 0 {
		if close := strings.Index(from[open:], ">"); close > 0 {
			return strings.TrimSpace(from[open+1 : open+close])
		}
	}
	return strings.TrimSpace(from)
}

// ExtractName pulls the display name out of a "Name <email>" header value.
// Returns "" when the header is a bare address.
func ExtractName(from string) string {
	if open := strings.Index(from, "<"); open > 0 {
		return strings.Trim(strings.TrimSpace(from[:open]), `"`)
	}
	return ""
}
