package usecase

import (
	"testing"

	appdomain "careertrack-backend/internal/application/domain"
	"careertrack-backend/pkg/provider"
)

func TestMatchMessageDomainAndLiteral(t *testing.T) {
	apps := []appdomain.Application{
		{ID: 1, Company: "Acme Corp", Role: "Backend Engineer"},
		{ID: 2, Company: "Globex", Role: "Data Analyst"},
	}

	msg := provider.RawMessage{
		SenderEmail: "recruiting@acme.com",
		Subject:     "Your application at Acme Corp",
		BodyPreview: "Thank you for applying to the Backend Engineer position.",
	}

	matched, score := MatchMessage(msg, apps)
	if matched == nil || matched.ID != 1 {
		t.Fatalf("expected application 1, got %+v", matched)
	}
	if score != 1.0 {
		t.Fatalf("expected capped score 1.0, got %v", score)
	}
}

func TestMatchMessageDomainOnly(t *testing.T) {
	apps := []appdomain.Application{{ID: 1, Company: "Acme Corp"}}
	msg := provider.RawMessage{
		SenderEmail: "hr@acme.com",
		Subject:     "Interview next steps",
		BodyPreview: "We would like to schedule a call.",
	}

	matched, score := MatchMessage(msg, apps)
	if matched == nil {
		t.Fatal("expected a match")
	}
	if score != 0.6 {
		t.Fatalf("expected domain match score 0.6, got %v", score)
	}
}

func TestMatchMessageConsumerDomainSkipped(t *testing.T) {
	apps := []appdomain.Application{{ID: 1, Company: "Gmail"}}
	msg := provider.RawMessage{
		SenderEmail: "someone@gmail.com",
		Subject:     "hello",
		BodyPreview: "nothing relevant",
	}

	matched, score := MatchMessage(msg, apps)
	if matched != nil || score != 0.0 {
		t.Fatalf("consumer domain should not match, got %+v score %v", matched, score)
	}
}

func TestMatchMessageCompanyLiteralOnly(t *testing.T) {
	apps := []appdomain.Application{{ID: 7, Company: "Initech"}}
	msg := provider.RawMessage{
		SenderEmail: "jobs-noreply@workday.com",
		Subject:     "Update on your Initech application",
		BodyPreview: "",
	}

	matched, score := MatchMessage(msg, apps)
	if matched == nil || matched.ID != 7 {
		t.Fatalf("expected application 7, got %+v", matched)
	}
	if score != 0.3 {
		t.Fatalf("expected literal match score 0.3, got %v", score)
	}
}

func TestMatchMessageTieFirstWins(t *testing.T) {
	apps := []appdomain.Application{
		{ID: 1, Company: "Acme Corp"},
		{ID: 2, Company: "Acme Corp"},
	}
	msg := provider.RawMessage{
		SenderEmail: "hr@acme.com",
		Subject:     "status",
	}

	matched, _ := MatchMessage(msg, apps)
	if matched == nil || matched.ID != 1 {
		t.Fatalf("tie should keep first application, got %+v", matched)
	}
}

func TestMatchMessageEmptyInputs(t *testing.T) {
	if m, s := MatchMessage(provider.RawMessage{}, []appdomain.Application{{ID: 1, Company: "Acme"}}); m != nil || s != 0 {
		t.Fatalf("empty sender should not match, got %+v %v", m, s)
	}
	if m, s := MatchMessage(provider.RawMessage{SenderEmail: "a@acme.com"}, nil); m != nil || s != 0 {
		t.Fatalf("empty application list should not match, got %+v %v", m, s)
	}
}
