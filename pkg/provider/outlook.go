package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"careertrack-backend/internal/apperrors"
	emaildomain "careertrack-backend/internal/email/domain"
)

const defaultGraphBaseURL = "https://graph.microsoft.com/v1.0"

var outlookScopes = []string{"offline_access", "Mail.Read", "Mail.ReadBasic"}

// OutlookProvider speaks the Microsoft Graph REST API directly.
type OutlookProvider struct {
	clientID     string
	clientSecret string
	graphBaseURL string
	httpClient   *http.Client
	log          *zap.Logger
}

func NewOutlook(clientID, clientSecret string, log *zap.Logger) *OutlookProvider {
	return &OutlookProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		graphBaseURL: defaultGraphBaseURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		log:          log,
	}
}

func (p *OutlookProvider) Name() string { return emaildomain.ProviderOutlook }

func (p *OutlookProvider) Configured() bool {
	return p.clientID != "" && p.clientSecret != ""
}

func (p *OutlookProvider) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		Endpoint:     microsoft.AzureADEndpoint("common"),
		RedirectURL:  redirectURI,
		Scopes:       outlookScopes,
	}
}

func (p *OutlookProvider) AuthorizationURL(redirectURI string) (string, error) {
	if !p.Configured() {
		return "", apperrors.ErrNotConfigured
	}
	return p.oauthConfig(redirectURI).AuthCodeURL(""), nil
}

func (p *OutlookProvider) ExchangeCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	if !p.Configured() {
		return nil, apperrors.ErrNotConfigured
	}
	tok, err := p.oauthConfig(redirectURI).Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrAuthFailure, err)
	}

	out := normalizeToken(tok)
	out.AccountEmail = p.profileEmail(ctx, tok.AccessToken)
	return out, nil
}

// profileEmail resolves the connected mailbox address. Best effort: the
// credential still works without it.
func (p *OutlookProvider) profileEmail(ctx context.Context, accessToken string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.graphBaseURL+"/me?$select=mail,userPrincipalName", nil)
	if err != nil {
		return ""
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.Warn("outlook profile lookup failed", zap.Error(err))
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var profile struct {
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return ""
	}
	if profile.Mail != "" {
		return profile.Mail
	}
	return profile.UserPrincipalName
}

func (p *OutlookProvider) RefreshAccessToken(ctx context.Context, refreshToken string) (*Token, error) {
	if !p.Configured() {
		return nil, apperrors.ErrNotConfigured
	}
	seed := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	}
	tok, err := p.oauthConfig("").TokenSource(ctx, seed).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrAuthFailure, err)
	}
	refreshed := normalizeToken(tok)
	if refreshed.RefreshToken == "" {
		// Graph may rotate or keep the refresh token, keep the old one.
		refreshed.RefreshToken = refreshToken
	}
	return refreshed, nil
}

// graphMessage mirrors the $select projection below.
type graphMessage struct {
	ID   string `json:"id"`
	From struct {
		EmailAddress struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"from"`
	Subject          string `json:"subject"`
	BodyPreview      string `json:"bodyPreview"`
	ReceivedDateTime string `json:"receivedDateTime"`
}

func (p *OutlookProvider) FetchRecentMessages(ctx context.Context, accessToken string, since time.Time, maxResults int64) ([]RawMessage, error) {
	params := url.Values{}
	params.Set("$filter", fmt.Sprintf("receivedDateTime ge %s", since.UTC().Format("2006-01-02T15:04:05Z")))
	params.Set("$top", fmt.Sprintf("%d", maxResults))
	params.Set("$select", "id,from,subject,bodyPreview,receivedDateTime")
	params.Set("$orderby", "receivedDateTime desc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.graphBaseURL+"/me/messages?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("outlook fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		p.log.Warn("outlook rate limited, skipping this cycle",
			zap.String("retry_after", resp.Header.Get("Retry-After")))
		return []RawMessage{}, nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, apperrors.ErrAuthFailure
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("outlook fetch failed: status %d", resp.StatusCode)
	}

	var payload struct {
		Value []graphMessage `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("outlook response decode failed: %w", err)
	}

	messages := make([]RawMessage, 0, len(payload.Value))
	for _, msg := range payload.Value {
		received, err := time.Parse(time.RFC3339, msg.ReceivedDateTime)
		if err != nil {
			received = time.Now().UTC()
		}
		messages = append(messages, RawMessage{
			MessageID:   msg.ID,
			SenderEmail: msg.From.EmailAddress.Address,
			SenderName:  msg.From.EmailAddress.Name,
			Subject:     msg.Subject,
			BodyPreview: truncate(msg.BodyPreview, 500),
			ReceivedAt:  received.UTC(),
		})
	}
	return messages, nil
}
