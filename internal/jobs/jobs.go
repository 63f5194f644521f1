package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apprepo "careertrack-backend/internal/application/repository"
	appusecase "careertrack-backend/internal/application/usecase"
	emailrepo "careertrack-backend/internal/email/repository"
	emailusecase "careertrack-backend/internal/email/usecase"
	networkusecase "careertrack-backend/internal/network/usecase"
	"careertrack-backend/internal/settings"
)

// Registered job ids.
const (
	JobEmailMonitoring   = "email_monitoring"
	JobFollowUpReminders = "followup_reminders"
	JobNetworkDecay      = "network_decay"
	JobVariantAnalysis   = "variant_analysis"
	JobDatabaseCleanup   = "database_cleanup"
)

// pollJitter spreads poll starts so restarts do not hammer providers at the
// same instant.
const pollJitter = 5 * time.Minute

// pollTimeout bounds one email poll cycle.
const pollTimeout = 10 * time.Minute

// cleanupRetentionDays is how long processed, unmatched messages are kept.
const cleanupRetentionDays = 90

// Deps carries everything the recurring jobs touch.
type Deps struct {
	Monitor   *emailusecase.Monitor
	Decay     *networkusecase.DecayService
	Variants  *appusecase.VariantAnalysisService
	FollowUps apprepo.FollowUpRepository
	Messages  emailrepo.MessageRepository
	Settings  settings.Repository
	DB        *gorm.DB
	Log       *zap.Logger
}

// RegisterAll wires the five recurring jobs. Interval and hour settings are
// read once at startup; changing them takes effect on the next restart.
func RegisterAll(s *Service, d Deps) error {
	interval := time.Duration(d.Settings.GetInt(settings.KeyEmailCheckInterval, 30)) * time.Minute
	if err := s.Register(JobEmailMonitoring,
		fmt.Sprintf("every %s, up to %s jitter", interval, pollJitter),
		gocron.DurationRandomJob(interval, interval+pollJitter),
		func() { runEmailPoll(d) },
	); err != nil {
		return err
	}

	reminderHour := d.Settings.GetInt(settings.KeyReminderHour, 9)
	reminderSpec := fmt.Sprintf("0 %d * * *", reminderHour)
	if err := s.Register(JobFollowUpReminders,
		"cron "+reminderSpec,
		gocron.CronJob(reminderSpec, false),
		func() { runFollowUpReminders(d) },
	); err != nil {
		return err
	}

	if err := s.Register(JobNetworkDecay,
		"cron 0 0 * * 0",
		gocron.CronJob("0 0 * * 0", false),
		func() { runNetworkDecay(d) },
	); err != nil {
		return err
	}

	if err := s.Register(JobVariantAnalysis,
		"cron 0 8 * * 1",
		gocron.CronJob("0 8 * * 1", false),
		func() { runVariantAnalysis(d) },
	); err != nil {
		return err
	}

	return s.Register(JobDatabaseCleanup,
		"cron 0 3 1 * *",
		gocron.CronJob("0 3 1 * *", false),
		func() { runDatabaseCleanup(d) },
	)
}

func runEmailPoll(d Deps) {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()
	if _, err := d.Monitor.RunCycle(ctx); err != nil {
		d.Log.Error("email poll failed", zap.Error(err))
	}
}

func runFollowUpReminders(d Deps) {
	now := time.Now()
	due, overdue, err := d.FollowUps.CountPending(now)
	if err != nil {
		d.Log.Error("follow-up reminder check failed", zap.Error(err))
		return
	}

	payload, _ := json.Marshal(map[string]int64{"due": due, "overdue": overdue})
	if err := d.Settings.Set(settings.KeyPendingReminders, string(payload)); err != nil {
		d.Log.Error("reminder state write failed", zap.Error(err))
	}
	if err := d.Settings.SetTime(settings.KeyLastReminderCheck, now); err != nil {
		d.Log.Error("reminder state write failed", zap.Error(err))
	}

	if due > 0 || overdue > 0 {
		d.Log.Info("follow-up reminders pending",
			zap.Int64("due_today", due), zap.Int64("overdue", overdue))
	}
}

func runNetworkDecay(d Deps) {
	if _, err := d.Decay.Run(); err != nil {
		d.Log.Error("network decay sweep failed", zap.Error(err))
	}
}

func runVariantAnalysis(d Deps) {
	if _, err := d.Variants.Run(); err != nil {
		d.Log.Error("variant analysis failed", zap.Error(err))
	}
}

func runDatabaseCleanup(d Deps) {
	cutoff := time.Now().AddDate(0, 0, -cleanupRetentionDays)
	deleted, err := d.Messages.DeleteUnlinkedOlderThan(cutoff)
	if err != nil {
		d.Log.Error("message cleanup failed", zap.Error(err))
		return
	}
	if err := d.DB.Exec("VACUUM").Error; err != nil {
		d.Log.Error("vacuum failed", zap.Error(err))
	}
	d.Log.Info("database cleanup finished", zap.Int64("messages_deleted", deleted))
}
