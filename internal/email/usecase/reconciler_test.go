package usecase

import (
	"testing"
	"time"

	"go.uber.org/zap"

	appdomain "careertrack-backend/internal/application/domain"
	emaildomain "careertrack-backend/internal/email/domain"
	"careertrack-backend/internal/settings"
	"careertrack-backend/pkg/classifier"
	"careertrack-backend/pkg/provider"
)

func newTestReconciler() (*Reconciler, *fakeMessageRepo, *fakeApplicationRepo, *fakeFollowUpRepo, *memSettings) {
	messages := &fakeMessageRepo{}
	apps := &fakeApplicationRepo{}
	followUps := &fakeFollowUpRepo{}
	st := newMemSettings()
	r := NewReconciler(messages, apps, followUps, st, zap.NewNop())
	r.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return r, messages, apps, followUps, st
}

func rejectionInput(app *appdomain.Application, confidence float64) ReconcileInput {
	return ReconcileInput{
		Provider: "gmail",
		Message: provider.RawMessage{
			MessageID:   "m1",
			SenderEmail: "hr@acme.com",
			Subject:     "Update on your application",
			BodyPreview: "Unfortunately we have decided to move forward with other candidates.",
			ReceivedAt:  time.Date(2025, 5, 31, 9, 0, 0, 0, time.UTC),
		},
		Classification: &classifier.Classification{
			Stage:      emaildomain.StageRejection,
			Confidence: confidence,
		},
		Match:      app,
		MatchScore: 0.6,
	}
}

func TestReconcileHighConfidence(t *testing.T) {
	r, messages, apps, followUps, _ := newTestReconciler()
	app := &appdomain.Application{ID: 3, Company: "Acme Corp", Status: appdomain.StatusInterview}

	cycle := NewCycleState()
	out, err := r.Reconcile(cycle, rejectionInput(app, 0.82))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Linked || !out.StatusUpdated || !out.FollowUpCreated {
		t.Fatalf("expected link, status update and follow-up, got %+v", out)
	}

	rec := messages.records[0]
	if rec.ApplicationID == nil || *rec.ApplicationID != 3 {
		t.Fatalf("expected link to application 3, got %v", rec.ApplicationID)
	}
	if !rec.AutoMatched {
		t.Fatal("expected auto_matched")
	}
	if rec.UserConfirmed == nil || !*rec.UserConfirmed {
		t.Fatalf("expected user_confirmed true, got %v", rec.UserConfirmed)
	}
	if apps.statusUpdates[3] != appdomain.StatusRejected {
		t.Fatalf("expected status Rejected, got %q", apps.statusUpdates[3])
	}

	fu := followUps.created[0]
	if fu.ActionType != appdomain.FollowUpEmail {
		t.Fatalf("unexpected follow-up action %q", fu.ActionType)
	}
	want := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	if !fu.ScheduledDate.Equal(want) {
		t.Fatalf("expected follow-up at %v, got %v", want, fu.ScheduledDate)
	}

	s := cycle.Stats
	if s.Processed != 1 || s.Matched != 1 || s.FollowUpsCreated != 1 || s.Errors != 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestReconcileMidConfidencePendsReview(t *testing.T) {
	r, messages, apps, followUps, _ := newTestReconciler()
	app := &appdomain.Application{ID: 3, Company: "Acme Corp"}

	out, err := r.Reconcile(NewCycleState(), rejectionInput(app, 0.6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Linked || out.StatusUpdated || out.FollowUpCreated {
		t.Fatalf("expected link only, got %+v", out)
	}
	if messages.records[0].UserConfirmed != nil {
		t.Fatal("mid confidence must leave user_confirmed unset")
	}
	if len(apps.statusUpdates) != 0 || len(followUps.created) != 0 {
		t.Fatal("mid confidence must not mutate the application")
	}
}

func TestReconcileLinkBoundary(t *testing.T) {
	r, messages, apps, followUps, _ := newTestReconciler()
	app := &appdomain.Application{ID: 3, Company: "Acme Corp", Status: appdomain.StatusApplied}

	cycle := NewCycleState()
	out, err := r.Reconcile(cycle, rejectionInput(app, 0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Linked {
		t.Fatal("confidence 0.5 must link")
	}
	if out.StatusUpdated || out.FollowUpCreated {
		t.Fatalf("confidence 0.5 must not mutate the application, got %+v", out)
	}
	if messages.records[0].UserConfirmed != nil {
		t.Fatal("confidence 0.5 must leave user_confirmed unset")
	}
	if len(apps.statusUpdates) != 0 || len(followUps.created) != 0 {
		t.Fatal("confidence 0.5 must not update status or create follow-ups")
	}
	if cycle.Stats.Matched != 0 {
		t.Fatalf("matched counts trusted updates only, got %d", cycle.Stats.Matched)
	}
}

func TestReconcileTrustBoundary(t *testing.T) {
	r, messages, apps, followUps, _ := newTestReconciler()
	app := &appdomain.Application{ID: 3, Company: "Acme Corp", Status: appdomain.StatusApplied}

	cycle := NewCycleState()
	out, err := r.Reconcile(cycle, rejectionInput(app, 0.7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Linked || !out.StatusUpdated || !out.FollowUpCreated {
		t.Fatalf("confidence 0.7 must link, update status and create a follow-up, got %+v", out)
	}
	rec := messages.records[0]
	if rec.UserConfirmed == nil || !*rec.UserConfirmed {
		t.Fatalf("confidence 0.7 must set user_confirmed, got %v", rec.UserConfirmed)
	}
	if apps.statusUpdates[3] != appdomain.StatusRejected {
		t.Fatalf("expected status Rejected, got %q", apps.statusUpdates[3])
	}
	if len(followUps.created) != 1 {
		t.Fatalf("expected one follow-up, got %d", len(followUps.created))
	}
	if cycle.Stats.Matched != 1 {
		t.Fatalf("expected one matched update, got %d", cycle.Stats.Matched)
	}
}

func TestReconcileLowConfidenceStoresUnlinked(t *testing.T) {
	r, messages, _, _, _ := newTestReconciler()
	app := &appdomain.Application{ID: 3, Company: "Acme Corp"}

	out, err := r.Reconcile(NewCycleState(), rejectionInput(app, 0.3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Linked {
		t.Fatal("low confidence must not link")
	}
	rec := messages.records[0]
	if rec.ApplicationID != nil || rec.AutoMatched {
		t.Fatalf("expected unlinked record, got %+v", rec)
	}
}

func TestReconcileNoMatchStoresUnlinked(t *testing.T) {
	r, messages, _, _, _ := newTestReconciler()

	out, err := r.Reconcile(NewCycleState(), rejectionInput(nil, 0.9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Linked {
		t.Fatal("no match must not link")
	}
	if messages.records[0].ApplicationID != nil {
		t.Fatal("expected unlinked record")
	}
}

func TestReconcileDuplicateSkipped(t *testing.T) {
	r, messages, _, _, _ := newTestReconciler()
	app := &appdomain.Application{ID: 3, Company: "Acme Corp"}

	cycle := NewCycleState()
	if _, err := r.Reconcile(cycle, rejectionInput(app, 0.82)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := r.Reconcile(cycle, rejectionInput(app, 0.82))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Skipped {
		t.Fatal("expected duplicate to be skipped")
	}
	if len(messages.records) != 1 {
		t.Fatalf("expected one record, got %d", len(messages.records))
	}
	if cycle.Stats.Processed != 1 {
		t.Fatalf("duplicate must not count as processed, stats %+v", cycle.Stats)
	}
}

func TestReconcileAutoUpdateDisabled(t *testing.T) {
	r, messages, apps, followUps, st := newTestReconciler()
	st.values[settings.KeyEmailAutoUpdate] = "false"
	app := &appdomain.Application{ID: 3, Company: "Acme Corp"}

	out, err := r.Reconcile(NewCycleState(), rejectionInput(app, 0.9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Linked || out.StatusUpdated {
		t.Fatalf("expected link without status update, got %+v", out)
	}
	if messages.records[0].UserConfirmed != nil {
		t.Fatal("auto-update off must leave user_confirmed unset")
	}
	if len(apps.statusUpdates) != 0 {
		t.Fatal("auto-update off must not change status")
	}
	if len(followUps.created) != 1 {
		t.Fatal("follow-up creation is independent of the auto-update setting")
	}
}

func TestReconcileFollowUpDedupWithinCycle(t *testing.T) {
	r, _, _, followUps, _ := newTestReconciler()
	app := &appdomain.Application{ID: 3, Company: "Acme Corp"}

	cycle := NewCycleState()
	first := rejectionInput(app, 0.82)
	second := rejectionInput(app, 0.82)
	second.Message.MessageID = "m2"

	if _, err := r.Reconcile(cycle, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Reconcile(cycle, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(followUps.created) != 1 {
		t.Fatalf("expected one follow-up per (application, stage) per cycle, got %d", len(followUps.created))
	}
	if cycle.Stats.FollowUpsCreated != 1 {
		t.Fatalf("unexpected stats %+v", cycle.Stats)
	}
}

func TestReconcileOtherStageNoSideEffects(t *testing.T) {
	r, _, apps, followUps, _ := newTestReconciler()
	app := &appdomain.Application{ID: 3, Company: "Acme Corp"}

	in := rejectionInput(app, 0.95)
	in.Classification.Stage = emaildomain.StageOther

	out, err := r.Reconcile(NewCycleState(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Linked {
		t.Fatal("expected link")
	}
	if out.StatusUpdated || out.FollowUpCreated {
		t.Fatalf("stage other must not touch the application, got %+v", out)
	}
	if len(apps.statusUpdates) != 0 || len(followUps.created) != 0 {
		t.Fatal("stage other must not touch the application")
	}
}

func TestReconcileInterviewInviteThankYou(t *testing.T) {
	r, _, apps, followUps, _ := newTestReconciler()
	app := &appdomain.Application{ID: 5, Company: "Globex", Status: appdomain.StatusApplied}

	in := rejectionInput(app, 0.88)
	in.Classification.Stage = emaildomain.StageInterviewInvite

	if _, err := r.Reconcile(NewCycleState(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if apps.statusUpdates[5] != appdomain.StatusInterview {
		t.Fatalf("expected status Interview, got %q", apps.statusUpdates[5])
	}
	fu := followUps.created[0]
	if fu.ActionType != appdomain.FollowUpThankYou {
		t.Fatalf("expected thank-you follow-up, got %q", fu.ActionType)
	}
	want := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	if !fu.ScheduledDate.Equal(want) {
		t.Fatalf("expected +1 day, got %v", fu.ScheduledDate)
	}
}

func TestReconcileOfferOffset(t *testing.T) {
	r, _, _, followUps, _ := newTestReconciler()
	app := &appdomain.Application{ID: 5, Company: "Globex"}

	in := rejectionInput(app, 0.91)
	in.Classification.Stage = emaildomain.StageOffer

	if _, err := r.Reconcile(NewCycleState(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	if !followUps.created[0].ScheduledDate.Equal(want) {
		t.Fatalf("expected +2 days, got %v", followUps.created[0].ScheduledDate)
	}
}

func TestReconcileScreeningOffset(t *testing.T) {
	r, _, apps, followUps, _ := newTestReconciler()
	app := &appdomain.Application{ID: 5, Company: "Globex", Status: appdomain.StatusApplied}

	in := rejectionInput(app, 0.75)
	in.Classification.Stage = emaildomain.StageScreening

	if _, err := r.Reconcile(NewCycleState(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if apps.statusUpdates[5] != appdomain.StatusScreening {
		t.Fatalf("expected status Screening, got %q", apps.statusUpdates[5])
	}
	want := time.Date(2025, 6, 6, 12, 0, 0, 0, time.UTC)
	if !followUps.created[0].ScheduledDate.Equal(want) {
		t.Fatalf("expected +5 days, got %v", followUps.created[0].ScheduledDate)
	}
}
