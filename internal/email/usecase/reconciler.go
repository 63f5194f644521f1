package usecase

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	appdomain "careertrack-backend/internal/application/domain"
	apprepo "careertrack-backend/internal/application/repository"
	emaildomain "careertrack-backend/internal/email/domain"
	emailrepo "careertrack-backend/internal/email/repository"
	"careertrack-backend/internal/settings"
	"careertrack-backend/pkg/classifier"
	"careertrack-backend/pkg/provider"
)

// Confidence thresholds over the classifier's verdict.
//
// Below linkThreshold a message is stored unlinked even when the matcher
// found a candidate. At or above trustThreshold the detected stage is allowed
// to drive the application's status.
const (
	linkThreshold  = 0.5
	trustThreshold = 0.7
)

// stageStatus maps a detected stage to the application status it implies.
// Stages absent here never change status.
var stageStatus = map[string]string{
	emaildomain.StageScreening:         appdomain.StatusScreening,
	emaildomain.StageInterviewInvite:   appdomain.StatusInterview,
	emaildomain.StageInterviewSchedule: appdomain.StatusInterview,
	emaildomain.StageRejection:         appdomain.StatusRejected,
	emaildomain.StageOffer:             appdomain.StatusOffer,
}

type followUpRule struct {
	actionType string
	offsetDays int
	notes      string
}

// followUpRules drives auto-created follow-ups for high-confidence stages.
var followUpRules = map[string]followUpRule{
	emaildomain.StageInterviewInvite: {appdomain.FollowUpThankYou, 1, "Auto-created: Send thank-you after interview"},
	emaildomain.StageRejection:       {appdomain.FollowUpEmail, 1, "Auto-created: Send gracious response to rejection"},
	emaildomain.StageOffer:           {appdomain.FollowUpEmail, 2, "Auto-created: Respond to offer / begin negotiation"},
	emaildomain.StageScreening:       {appdomain.FollowUpEmail, 5, "Auto-created: Follow up after screening if no response"},
}

// CycleStats are the counters reported at the end of a poll cycle.
type CycleStats struct {
	Processed        int `json:"processed"`
	Matched          int `json:"matched"`
	FollowUpsCreated int `json:"followups_created"`
	Errors           int `json:"errors"`
}

// CycleState carries per-cycle memory: the running counters and which
// (application, stage) pairs already produced a follow-up this cycle, so a
// burst of similar emails creates at most one.
type CycleState struct {
	Stats            CycleStats
	followUpsEmitted map[string]bool
}

func NewCycleState() *CycleState {
	return &CycleState{followUpsEmitted: make(map[string]bool)}
}

func (c *CycleState) followUpSeen(applicationID uint, stage string) bool {
	key := fmt.Sprintf("%d:%s", applicationID, stage)
	if c.followUpsEmitted[key] {
		return true
	}
	c.followUpsEmitted[key] = true
	return false
}

// ReconcileInput is one classified, matched message awaiting a persistence
// decision.
type ReconcileInput struct {
	Provider       string
	Message        provider.RawMessage
	Classification *classifier.Classification
	Match          *appdomain.Application
	MatchScore     float64
}

// ReconcileOutcome reports what the reconciler did with one message.
type ReconcileOutcome struct {
	Skipped         bool
	Linked          bool
	StatusUpdated   bool
	FollowUpCreated bool
	RecordID        string
}

// Reconciler applies the confidence thresholds and writes the results: the
// message record, an optional application link, an optional status update and
// an optional follow-up.
type Reconciler struct {
	messages     emailrepo.MessageRepository
	applications apprepo.ApplicationRepository
	followUps    apprepo.FollowUpRepository
	settings     settings.Repository
	log          *zap.Logger
	now          func() time.Time
}

func NewReconciler(
	messages emailrepo.MessageRepository,
	applications apprepo.ApplicationRepository,
	followUps apprepo.FollowUpRepository,
	settingsRepo settings.Repository,
	log *zap.Logger,
) *Reconciler {
	return &Reconciler{
		messages:     messages,
		applications: applications,
		followUps:    followUps,
		settings:     settingsRepo,
		log:          log,
		now:          time.Now,
	}
}

// AlreadyProcessed reports whether (provider, messageID) was ingested before.
func (r *Reconciler) AlreadyProcessed(providerName, messageID string) (bool, error) {
	return r.messages.Exists(providerName, messageID)
}

// Reconcile persists one message according to the threshold rules. It is
// idempotent: a message seen before is skipped without side effects.
func (r *Reconciler) Reconcile(cycle *CycleState, in ReconcileInput) (ReconcileOutcome, error) {
	var out ReconcileOutcome

	exists, err := r.messages.Exists(in.Provider, in.Message.MessageID)
	if err != nil {
		return out, err
	}
	if exists {
		out.Skipped = true
		return out, nil
	}

	confidence := in.Classification.Confidence
	autoUpdate := r.settings.GetBool(settings.KeyEmailAutoUpdate, true)

	record := &emaildomain.MessageRecord{
		Provider:      in.Provider,
		MessageID:     in.Message.MessageID,
		SenderEmail:   in.Message.SenderEmail,
		SenderName:    in.Message.SenderName,
		Subject:       in.Message.Subject,
		BodyPreview:   in.Message.BodyPreview,
		ReceivedAt:    in.Message.ReceivedAt,
		DetectedStage: in.Classification.Stage,
		Confidence:    confidence,
		Extracted:     in.Classification.Extracted,
		Processed:     true,
	}

	if in.Match != nil && confidence >= linkThreshold {
		record.ApplicationID = &in.Match.ID
		record.AutoMatched = true
		out.Linked = true
		if confidence >= trustThreshold && autoUpdate {
			confirmed := true
			record.UserConfirmed = &confirmed
		}
	}

	if err := r.messages.Create(record); err != nil {
		return out, err
	}
	out.RecordID = record.ID
	cycle.Stats.Processed++

	if !out.Linked {
		return out, nil
	}

	if confidence < trustThreshold {
		r.log.Debug("message linked, awaiting review",
			zap.String("message_id", in.Message.MessageID),
			zap.Uint("application_id", in.Match.ID),
			zap.Float64("confidence", confidence))
		return out, nil
	}
	cycle.Stats.Matched++

	if status, ok := stageStatus[in.Classification.Stage]; ok && autoUpdate && in.Match.Status != status {
		if err := r.applications.UpdateStatus(in.Match.ID, status); err != nil {
			r.log.Error("status update failed",
				zap.Uint("application_id", in.Match.ID), zap.Error(err))
			cycle.Stats.Errors++
		} else {
			out.StatusUpdated = true
			r.log.Info("application status updated",
				zap.Uint("application_id", in.Match.ID),
				zap.String("company", in.Match.Company),
				zap.String("status", status),
				zap.String("stage", in.Classification.Stage))
		}
	}

	rule, ok := followUpRules[in.Classification.Stage]
	if !ok || cycle.followUpSeen(in.Match.ID, in.Classification.Stage) {
		return out, nil
	}

	fu := &appdomain.FollowUp{
		ApplicationID: in.Match.ID,
		ScheduledDate: r.now().AddDate(0, 0, rule.offsetDays),
		ActionType:    rule.actionType,
		Notes:         rule.notes,
	}
	if err := r.followUps.Create(fu); err != nil {
		r.log.Error("follow-up creation failed",
			zap.Uint("application_id", in.Match.ID), zap.Error(err))
		cycle.Stats.Errors++
		return out, nil
	}
	out.FollowUpCreated = true
	cycle.Stats.FollowUpsCreated++
	return out, nil
}
