package usecase

import (
	"strings"
	"testing"
	"time"

	appdomain "careertrack-backend/internal/application/domain"
)

func variantRows(name, outcome string, n int) []appdomain.DocumentVariant {
	rows := make([]appdomain.DocumentVariant, n)
	for i := range rows {
		rows[i] = appdomain.DocumentVariant{VariantName: name, Outcome: outcome}
	}
	return rows
}

func TestAnalyzeNeedsTwoVariants(t *testing.T) {
	if a := Analyze(variantRows("a", "response", 10), time.Now()); a != nil {
		t.Fatalf("single variant should not produce an analysis, got %+v", a)
	}
	if a := Analyze(nil, time.Now()); a != nil {
		t.Fatal("no data should not produce an analysis")
	}
}

func TestAnalyzePicksWinnerByWeightedScore(t *testing.T) {
	rows := append(variantRows("tailored", "interview", 6), variantRows("generic", "no_response", 6)...)

	a := Analyze(rows, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if a == nil {
		t.Fatal("expected an analysis")
	}
	if a.Winner != "tailored" {
		t.Fatalf("expected tailored to win, got %q", a.Winner)
	}
	if !a.SampleMet {
		t.Fatal("six per variant meets the sample floor")
	}
	if a.PValue >= 0.05 {
		t.Fatalf("a 6/6 vs 0/6 split should be significant, p=%v", a.PValue)
	}
	if !a.Significant {
		t.Fatal("expected significance")
	}
	if !strings.Contains(a.Recommendation, "tailored") {
		t.Fatalf("recommendation should name the winner, got %q", a.Recommendation)
	}
}

func TestAnalyzeSmallSampleNotSignificant(t *testing.T) {
	rows := append(variantRows("a", "response", 2), variantRows("b", "no_response", 2)...)

	a := Analyze(rows, time.Now())
	if a == nil {
		t.Fatal("expected an analysis")
	}
	if a.SampleMet {
		t.Fatal("two per variant is below the sample floor")
	}
	if a.Significant {
		t.Fatal("below the sample floor nothing is significant")
	}
	if !strings.Contains(a.Recommendation, "Keep testing") {
		t.Fatalf("expected keep-testing recommendation, got %q", a.Recommendation)
	}
}

func TestAnalyzeEvenSplitNotSignificant(t *testing.T) {
	rows := append(variantRows("a", "response", 10), variantRows("b", "response", 10)...)
	rows = append(rows, variantRows("a", "no_response", 10)...)
	rows = append(rows, variantRows("b", "no_response", 10)...)

	a := Analyze(rows, time.Now())
	if a == nil {
		t.Fatal("expected an analysis")
	}
	if a.PValue < 0.9 {
		t.Fatalf("identical rates should give a p-value near 1, got %v", a.PValue)
	}
	if a.Significant {
		t.Fatal("identical rates are never significant")
	}
}

func TestAnalyzeResponseRateAndHours(t *testing.T) {
	rows := []appdomain.DocumentVariant{
		{VariantName: "a", Outcome: "interview", ResponseTimeHours: 24},
		{VariantName: "a", Outcome: "no_response"},
		{VariantName: "b", Outcome: "response", ResponseTimeHours: 48},
	}

	a := Analyze(rows, time.Now())
	if a == nil {
		t.Fatal("expected an analysis")
	}
	var perfA *VariantPerformance
	for i := range a.Variants {
		if a.Variants[i].VariantName == "a" {
			perfA = &a.Variants[i]
		}
	}
	if perfA == nil {
		t.Fatal("variant a missing")
	}
	if perfA.Sent != 2 || perfA.Responses != 1 {
		t.Fatalf("unexpected counts %+v", perfA)
	}
	if perfA.ResponseRate != 0.5 {
		t.Fatalf("expected response rate 0.5, got %v", perfA.ResponseRate)
	}
	if perfA.AvgResponseHours != 24 {
		t.Fatalf("expected avg 24h, got %v", perfA.AvgResponseHours)
	}
}
