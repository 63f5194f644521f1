package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	appdomain "careertrack-backend/internal/application/domain"
	emaildomain "careertrack-backend/internal/email/domain"
	"careertrack-backend/internal/settings"
	"careertrack-backend/pkg/classifier"
	"careertrack-backend/pkg/provider"
)

type fakeMessageRepo struct {
	records   []*emaildomain.MessageRecord
	createErr error
	existsErr error
}

func (f *fakeMessageRepo) Exists(providerName, messageID string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, r := range f.records {
		if r.Provider == providerName && r.MessageID == messageID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMessageRepo) Create(record *emaildomain.MessageRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	record.ID = fmt.Sprintf("msg-%d", len(f.records)+1)
	record.CreatedAt = time.Now()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeMessageRepo) GetByID(id string) (*emaildomain.MessageRecord, error) {
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeMessageRepo) ListRecent(limit int) ([]emaildomain.MessageRecord, error) {
	out := make([]emaildomain.MessageRecord, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeMessageRepo) ListPendingReview() ([]emaildomain.MessageRecord, error) {
	return nil, nil
}

func (f *fakeMessageRepo) SetUserConfirmed(id string, confirmed bool) error { return nil }

func (f *fakeMessageRepo) DeleteUnlinkedOlderThan(cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeApplicationRepo struct {
	apps          []appdomain.Application
	statusUpdates map[uint]string
	updateErr     error
}

func (f *fakeApplicationRepo) GetAll() ([]appdomain.Application, error) { return f.apps, nil }

func (f *fakeApplicationRepo) GetByID(id uint) (*appdomain.Application, error) {
	for i := range f.apps {
		if f.apps[i].ID == id {
			return &f.apps[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeApplicationRepo) Create(app *appdomain.Application) error { return nil }
func (f *fakeApplicationRepo) Update(app *appdomain.Application) error { return nil }

func (f *fakeApplicationRepo) UpdateStatus(id uint, status string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.statusUpdates == nil {
		f.statusUpdates = make(map[uint]string)
	}
	f.statusUpdates[id] = status
	return nil
}

func (f *fakeApplicationRepo) Delete(id uint) error { return nil }

type fakeFollowUpRepo struct {
	created   []appdomain.FollowUp
	createErr error
}

func (f *fakeFollowUpRepo) Create(fu *appdomain.FollowUp) error {
	if f.createErr != nil {
		return f.createErr
	}
	fu.ID = uint(len(f.created) + 1)
	f.created = append(f.created, *fu)
	return nil
}

func (f *fakeFollowUpRepo) ListByApplication(applicationID uint) ([]appdomain.FollowUp, error) {
	return nil, nil
}

func (f *fakeFollowUpRepo) CountPending(asOf time.Time) (int64, int64, error) { return 0, 0, nil }
func (f *fakeFollowUpRepo) MarkComplete(id uint) error                        { return nil }

type memSettings struct {
	values map[string]string
}

func newMemSettings() *memSettings { return &memSettings{values: make(map[string]string)} }

func (m *memSettings) Get(key, fallback string) string {
	if v, ok := m.values[key]; ok {
		return v
	}
	return fallback
}

func (m *memSettings) GetInt(key string, fallback int) int {
	if v, err := strconv.Atoi(m.Get(key, "")); err == nil {
		return v
	}
	return fallback
}

func (m *memSettings) GetBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(m.Get(key, "")); err == nil {
		return v
	}
	return fallback
}

func (m *memSettings) GetTime(key string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, m.Get(key, ""))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (m *memSettings) Set(key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memSettings) SetTime(key string, t time.Time) error {
	return m.Set(key, t.UTC().Format(time.RFC3339))
}

func (m *memSettings) All() (map[string]string, error) { return m.values, nil }

var _ settings.Repository = (*memSettings)(nil)

type fakeCredentialRepo struct {
	creds        []emaildomain.Credential
	tokenUpdates int
	lastAccess   string
	lastRefresh  string
}

func (f *fakeCredentialRepo) List() ([]emaildomain.Credential, error) { return f.creds, nil }

func (f *fakeCredentialRepo) GetByProvider(providerName string) (*emaildomain.Credential, error) {
	for i := range f.creds {
		if f.creds[i].Provider == providerName {
			return &f.creds[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeCredentialRepo) Upsert(cred *emaildomain.Credential) error {
	for i := range f.creds {
		if f.creds[i].Provider == cred.Provider {
			f.creds[i] = *cred
			return nil
		}
	}
	f.creds = append(f.creds, *cred)
	return nil
}

func (f *fakeCredentialRepo) UpdateTokens(providerName, accessEnc, refreshEnc string, expiry *time.Time) error {
	f.tokenUpdates++
	f.lastAccess = accessEnc
	f.lastRefresh = refreshEnc
	return nil
}

func (f *fakeCredentialRepo) Delete(providerName string) error { return nil }

type fakeProvider struct {
	name       string
	messages   []provider.RawMessage
	fetchErr   error
	refreshErr error
	refreshed  *provider.Token
	exchanged  *provider.Token

	fetchCalls   int
	fetchedToken string
	fetchedSince time.Time
	refreshCalls int
}

func (f *fakeProvider) Name() string     { return f.name }
func (f *fakeProvider) Configured() bool { return true }

func (f *fakeProvider) AuthorizationURL(redirectURI string) (string, error) {
	return "https://example.com/auth", nil
}

func (f *fakeProvider) ExchangeCode(ctx context.Context, code, redirectURI string) (*provider.Token, error) {
	if f.exchanged == nil {
		return nil, errors.New("exchange not stubbed")
	}
	return f.exchanged, nil
}

func (f *fakeProvider) RefreshAccessToken(ctx context.Context, refreshToken string) (*provider.Token, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshed, nil
}

func (f *fakeProvider) FetchRecentMessages(ctx context.Context, accessToken string, since time.Time, maxResults int64) ([]provider.RawMessage, error) {
	f.fetchCalls++
	f.fetchedToken = accessToken
	f.fetchedSince = since
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.messages, nil
}

type fakeClassifier struct {
	bySubject map[string]*classifier.Classification
	err       error
}

func (f *fakeClassifier) Classify(ctx context.Context, subject, bodyPreview, senderDomain string) (*classifier.Classification, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.bySubject[subject]; ok {
		return c, nil
	}
	return classifier.Fallback(), nil
}
