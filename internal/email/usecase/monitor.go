package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	appdomain "careertrack-backend/internal/application/domain"
	apprepo "careertrack-backend/internal/application/repository"
	emaildomain "careertrack-backend/internal/email/domain"
	emailrepo "careertrack-backend/internal/email/repository"
	"careertrack-backend/internal/settings"
	"careertrack-backend/pkg/classifier"
	"careertrack-backend/pkg/provider"
	"careertrack-backend/pkg/vault"
)

// defaultLookback bounds the first poll when no watermark exists yet.
const defaultLookback = 7 * 24 * time.Hour

const defaultFetchLimit = 50

// StageClassifier assigns a hiring-process stage to an email.
type StageClassifier interface {
	Classify(ctx context.Context, subject, bodyPreview, senderDomain string) (*classifier.Classification, error)
}

// Monitor runs the poll cycle: fetch new messages from every connected
// provider, classify, match and hand each one to the reconciler.
type Monitor struct {
	providers    provider.Registry
	credentials  emailrepo.CredentialRepository
	applications apprepo.ApplicationRepository
	reconciler   *Reconciler
	classifier   StageClassifier
	vault        *vault.Vault
	settings     settings.Repository
	log          *zap.Logger
	now          func() time.Time
	fetchLimit   int64
}

func NewMonitor(
	providers provider.Registry,
	credentials emailrepo.CredentialRepository,
	applications apprepo.ApplicationRepository,
	reconciler *Reconciler,
	stageClassifier StageClassifier,
	v *vault.Vault,
	settingsRepo settings.Repository,
	log *zap.Logger,
) *Monitor {
	return &Monitor{
		providers:    providers,
		credentials:  credentials,
		applications: applications,
		reconciler:   reconciler,
		classifier:   stageClassifier,
		vault:        v,
		settings:     settingsRepo,
		log:          log,
		now:          time.Now,
		fetchLimit:   defaultFetchLimit,
	}
}

// RunCycle executes one poll over every connected provider and returns the
// cycle counters. A provider-level failure skips that provider and counts one
// error; per-message failures skip that message only. The watermark advances
// only when at least one provider was polled.
func (m *Monitor) RunCycle(ctx context.Context) (CycleStats, error) {
	cycle := NewCycleState()
	start := m.now()

	since, ok := m.settings.GetTime(settings.KeyEmailLastRun)
	if !ok {
		since = start.Add(-defaultLookback)
	}

	creds, err := m.credentials.List()
	if err != nil {
		return cycle.Stats, err
	}
	if len(creds) == 0 {
		m.log.Info("email poll skipped, no providers connected")
		return cycle.Stats, nil
	}

	applications, err := m.applications.GetAll()
	if err != nil {
		return cycle.Stats, err
	}

	for i := range creds {
		m.pollProvider(ctx, cycle, &creds[i], since, applications)
	}

	if err := m.settings.SetTime(settings.KeyEmailLastRun, start); err != nil {
		m.log.Error("watermark update failed", zap.Error(err))
		cycle.Stats.Errors++
	}

	m.log.Info("email poll finished",
		zap.Int("processed", cycle.Stats.Processed),
		zap.Int("matched", cycle.Stats.Matched),
		zap.Int("followups_created", cycle.Stats.FollowUpsCreated),
		zap.Int("errors", cycle.Stats.Errors),
		zap.Duration("elapsed", m.now().Sub(start)))
	return cycle.Stats, nil
}

func (m *Monitor) pollProvider(ctx context.Context, cycle *CycleState, cred *emaildomain.Credential, since time.Time, applications []appdomain.Application) {
	prov, err := m.providers.Lookup(cred.Provider)
	if err != nil || !prov.Configured() {
		m.log.Warn("provider unavailable", zap.String("provider", cred.Provider))
		cycle.Stats.Errors++
		return
	}

	accessToken := m.vault.Decrypt(cred.AccessTokenEncrypted)

	if cred.Expired(m.now()) {
		refreshed, err := prov.RefreshAccessToken(ctx, m.vault.Decrypt(cred.RefreshTokenEncrypted))
		if err != nil {
			m.log.Error("token refresh failed",
				zap.String("provider", cred.Provider), zap.Error(err))
			cycle.Stats.Errors++
			return
		}
		accessToken = refreshed.AccessToken
		if err := m.credentials.UpdateTokens(cred.Provider,
			m.vault.Encrypt(refreshed.AccessToken),
			encryptIfSet(m.vault, refreshed.RefreshToken),
			refreshed.Expiry); err != nil {
			m.log.Error("refreshed token persistence failed",
				zap.String("provider", cred.Provider), zap.Error(err))
			cycle.Stats.Errors++
		}
	}

	messages, err := prov.FetchRecentMessages(ctx, accessToken, since, m.fetchLimit)
	if err != nil {
		m.log.Error("message fetch failed",
			zap.String("provider", cred.Provider), zap.Error(err))
		cycle.Stats.Errors++
		return
	}
	m.log.Debug("messages fetched",
		zap.String("provider", cred.Provider), zap.Int("count", len(messages)))

	for _, msg := range messages {
		m.processMessage(ctx, cycle, cred.Provider, msg, applications)
	}
}

func (m *Monitor) processMessage(ctx context.Context, cycle *CycleState, providerName string, msg provider.RawMessage, applications []appdomain.Application) {
	seen, err := m.reconciler.AlreadyProcessed(providerName, msg.MessageID)
	if err != nil {
		m.log.Error("dedup lookup failed", zap.String("message_id", msg.MessageID), zap.Error(err))
		cycle.Stats.Errors++
		return
	}
	if seen {
		return
	}

	verdict, err := m.classifier.Classify(ctx, msg.Subject, msg.BodyPreview, senderDomain(msg.SenderEmail))
	if err != nil {
		m.log.Warn("classification failed, using fallback",
			zap.String("message_id", msg.MessageID), zap.Error(err))
		verdict = classifier.Fallback()
	}

	match, score := MatchMessage(msg, applications)

	if _, err := m.reconciler.Reconcile(cycle, ReconcileInput{
		Provider:       providerName,
		Message:        msg,
		Classification: verdict,
		Match:          match,
		MatchScore:     score,
	}); err != nil {
		m.log.Error("message persistence failed",
			zap.String("message_id", msg.MessageID), zap.Error(err))
		cycle.Stats.Errors++
	}
}

func senderDomain(email string) string {
	if at := strings.LastIndex(email, "@"); at >= 0 && at < len(email)-1 {
		return strings.ToLower(email[at+1:])
	}
	return ""
}

func encryptIfSet(v *vault.Vault, s string) string {
	if s == "" {
		return ""
	}
	return v.Encrypt(s)
}
