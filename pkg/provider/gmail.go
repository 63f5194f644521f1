package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"careertrack-backend/internal/apperrors"
	emaildomain "careertrack-backend/internal/email/domain"
)

var gmailScopes = []string{gmail.GmailReadonlyScope}

// GmailProvider speaks the Gmail REST API through the official client.
type GmailProvider struct {
	clientID     string
	clientSecret string
	log          *zap.Logger
}

func NewGmail(clientID, clientSecret string, log *zap.Logger) *GmailProvider {
	return &GmailProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		log:          log,
	}
}

func (p *GmailProvider) Name() string { return emaildomain.ProviderGmail }

func (p *GmailProvider) Configured() bool {
	return p.clientID != "" && p.clientSecret != ""
}

func (p *GmailProvider) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURI,
		Scopes:       gmailScopes,
	}
}

func (p *GmailProvider) AuthorizationURL(redirectURI string) (string, error) {
	if !p.Configured() {
		return "", apperrors.ErrNotConfigured
	}
	// Offline access + forced consent so Google returns a refresh token.
	cfg := p.oauthConfig(redirectURI)
	return cfg.AuthCodeURL("", oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

func (p *GmailProvider) ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	if !p.Configured() {
		return nil, apperrors.ErrNotConfigured
	}
	cfg := p.oauthConfig(redirectURI)
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrAuthFailure, err)
	}

	out := normalizeToken(tok)
	out.AccountEmail = p.profileEmail(ctx, cfg.TokenSource(ctx, tok))
	return out, nil
}

// profileEmail resolves the connected mailbox address. Best effort: the
// credential still works without it.
func (p *GmailProvider) profileEmail(ctx context.Context, ts oauth2.TokenSource) string {
	srv, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return ""
	}
	profile, err := srv.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		p.log.Warn("gmail profile lookup failed", zap.Error(err))
		return ""
	}
	return profile.EmailAddress
}

func (p *GmailProvider) RefreshAccessToken(ctx context.Context, refreshToken string) (*Token, error) {
	if !p.Configured() {
		return nil, apperrors.ErrNotConfigured
	}
	// A token with a past expiry forces the oauth2 transport to perform the
	// refresh grant immediately.
	seed := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	}
	tok, err := p.oauthConfig("").TokenSource(ctx, seed).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrAuthFailure, err)
	}
	return normalizeToken(tok), nil
}

func (p *GmailProvider) FetchRecentMessages(ctx context.Context, accessToken string, since time.Time, maxResults int64) ([]RawMessage, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	srv, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}

	// Gmail search granularity is a day, the watermark dedup absorbs the slack.
	query := fmt.Sprintf("after:%s category:primary", since.Format("2006/01/02"))

	listResp, err := srv.Users.Messages.List("me").Q(query).MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		if isRateLimited(err) {
			p.log.Warn("gmail rate limited, skipping this cycle")
			return []RawMessage{}, nil
		}
		return nil, fmt.Errorf("gmail list failed: %w", err)
	}

	messages := make([]RawMessage, 0, len(listResp.Messages))
	for _, ref := range listResp.Messages {
		detail, err := srv.Users.Messages.Get("me", ref.Id).
			Format("metadata").
			MetadataHeaders("From", "Subject", "Date").
			Context(ctx).Do()
		if err != nil {
			p.log.Warn("failed to fetch gmail message", zap.String("message_id", ref.Id), zap.Error(err))
			continue
		}

		from := headerValue(detail, "From")
		messages = append(messages, RawMessage{
			MessageID:   ref.Id,
			SenderEmail: ExtractAddress(from),
			SenderName:  ExtractName(from),
			Subject:     headerValue(detail, "Subject"),
			BodyPreview: truncate(detail.Snippet, 500),
			ReceivedAt:  time.UnixMilli(detail.InternalDate).UTC(),
		})
	}
	return messages, nil
}

func headerValue(msg *gmail.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

func isRateLimited(err error) bool {
	var gErr *googleapi.Error
	return errors.As(err, &gErr) && gErr.Code == http.StatusTooManyRequests
}

// truncate cuts s to at most n bytes without splitting a UTF-8 rune,
// so the stored preview stays valid text.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func normalizeToken(tok *oauth2.Token) *Token {
	out := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry.UTC()
		out.Expiry = &expiry
	}
	return out
}
