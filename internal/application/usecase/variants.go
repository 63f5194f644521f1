// Package usecase holds application-side analysis run on schedules rather
// than per request.
package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	appdomain "careertrack-backend/internal/application/domain"
	"careertrack-backend/internal/application/repository"
	"careertrack-backend/internal/settings"
)

// minVariantSample is the per-variant floor below which the comparison is
// reported but not trusted.
const minVariantSample = 5

// significanceLevel for the response-rate comparison.
const significanceLevel = 0.05

// outcomeWeights scores how far an application got. Unknown outcomes score
// like a bare response.
var outcomeWeights = map[string]float64{
	"no_response": 0,
	"rejected":    1,
	"response":    2,
	"screening":   3,
	"interview":   4,
	"offer":       5,
}

// VariantPerformance summarizes one resume/cover-letter variant.
type VariantPerformance struct {
	VariantName      string  `json:"variant_name"`
	Sent             int     `json:"sent"`
	Responses        int     `json:"responses"`
	ResponseRate     float64 `json:"response_rate"`
	WeightedScore    float64 `json:"weighted_score"`
	AvgResponseHours float64 `json:"avg_response_hours"`
}

// VariantAnalysis is the cached weekly comparison across variants.
type VariantAnalysis struct {
	GeneratedAt    time.Time            `json:"generated_at"`
	Variants       []VariantPerformance `json:"variants"`
	Winner         string               `json:"winner,omitempty"`
	PValue         float64              `json:"p_value"`
	Significant    bool                 `json:"significant"`
	SampleMet      bool                 `json:"sample_met"`
	Recommendation string               `json:"recommendation"`
}

type VariantAnalysisService struct {
	variants repository.VariantRepository
	settings settings.Repository
	log      *zap.Logger
	now      func() time.Time
}

func NewVariantAnalysisService(variants repository.VariantRepository, settingsRepo settings.Repository, log *zap.Logger) *VariantAnalysisService {
	return &VariantAnalysisService{
		variants: variants,
		settings: settingsRepo,
		log:      log,
		now:      time.Now,
	}
}

// Run recomputes the analysis and caches it in settings. Returns nil analysis
// when fewer than two variants have any data.
func (s *VariantAnalysisService) Run() (*VariantAnalysis, error) {
	rows, err := s.variants.ListWithOutcomes()
	if err != nil {
		return nil, err
	}

	analysis := Analyze(rows, s.now())
	if analysis == nil {
		s.log.Debug("variant analysis skipped, not enough variants")
		return nil, nil
	}

	payload, err := json.Marshal(analysis)
	if err != nil {
		return nil, err
	}
	if err := s.settings.Set(settings.KeyVariantAnalysisCache, string(payload)); err != nil {
		return nil, err
	}
	if err := s.settings.SetTime(settings.KeyVariantAnalysisRun, analysis.GeneratedAt); err != nil {
		return nil, err
	}
	s.log.Info("variant analysis cached",
		zap.String("winner", analysis.Winner),
		zap.Float64("p_value", analysis.PValue),
		zap.Bool("significant", analysis.Significant))
	return analysis, nil
}

// Cached returns the last stored analysis, if any.
func (s *VariantAnalysisService) Cached() (*VariantAnalysis, bool) {
	raw := s.settings.Get(settings.KeyVariantAnalysisCache, "")
	if raw == "" {
		return nil, false
	}
	var analysis VariantAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, false
	}
	return &analysis, true
}

// Analyze compares variants by response rate and weighted outcome score, with
// a chi-square test over responded/no-response counts.
func Analyze(rows []appdomain.DocumentVariant, now time.Time) *VariantAnalysis {
	type bucket struct {
		sent      int
		responses int
		weight    float64
		hours     float64
		hoursN    int
	}
	buckets := make(map[string]*bucket)
	for _, v := range rows {
		b := buckets[v.VariantName]
		if b == nil {
			b = &bucket{}
			buckets[v.VariantName] = b
		}
		b.sent++
		if responded(v.Outcome) {
			b.responses++
		}
		b.weight += weightFor(v.Outcome)
		if v.ResponseTimeHours > 0 {
			b.hours += v.ResponseTimeHours
			b.hoursN++
		}
	}
	if len(buckets) < 2 {
		return nil
	}

	analysis := &VariantAnalysis{GeneratedAt: now, SampleMet: true}
	for name, b := range buckets {
		perf := VariantPerformance{
			VariantName:   name,
			Sent:          b.sent,
			Responses:     b.responses,
			ResponseRate:  float64(b.responses) / float64(b.sent),
			WeightedScore: b.weight / float64(b.sent),
		}
		if b.hoursN > 0 {
			perf.AvgResponseHours = b.hours / float64(b.hoursN)
		}
		if b.sent < minVariantSample {
			analysis.SampleMet = false
		}
		analysis.Variants = append(analysis.Variants, perf)
	}
	sort.Slice(analysis.Variants, func(i, j int) bool {
		a, b := analysis.Variants[i], analysis.Variants[j]
		if a.WeightedScore != b.WeightedScore {
			return a.WeightedScore > b.WeightedScore
		}
		return a.VariantName < b.VariantName
	})
	analysis.Winner = analysis.Variants[0].VariantName

	analysis.PValue = chiSquarePValue(analysis.Variants)
	analysis.Significant = analysis.SampleMet && analysis.PValue < significanceLevel

	switch {
	case !analysis.SampleMet:
		analysis.Recommendation = fmt.Sprintf(
			"Keep testing: at least %d applications per variant are needed for a reliable comparison.", minVariantSample)
	case analysis.Significant:
		analysis.Recommendation = fmt.Sprintf(
			"Variant %q performs significantly better (p=%.3f). Prefer it for new applications.",
			analysis.Winner, analysis.PValue)
	default:
		analysis.Recommendation = fmt.Sprintf(
			"Variant %q leads but the difference is not statistically significant (p=%.3f).",
			analysis.Winner, analysis.PValue)
	}
	return analysis
}

func responded(outcome string) bool {
	return outcome != "" && outcome != "no_response"
}

func weightFor(outcome string) float64 {
	if outcome == "" {
		return 0
	}
	if w, ok := outcomeWeights[outcome]; ok {
		return w
	}
	return outcomeWeights["response"]
}

// chiSquarePValue runs a chi-square independence test on the
// responded/no-response contingency across variants. The p-value uses the
// Wilson-Hilferty cube-root normal approximation, which is accurate enough
// for a weekly dashboard figure.
func chiSquarePValue(variants []VariantPerformance) float64 {
	totalSent := 0
	totalResp := 0
	for _, v := range variants {
		totalSent += v.Sent
		totalResp += v.Responses
	}
	if totalSent == 0 || totalResp == 0 || totalResp == totalSent {
		return 1.0
	}

	overallRate := float64(totalResp) / float64(totalSent)
	chi2 := 0.0
	for _, v := range variants {
		expResp := overallRate * float64(v.Sent)
		expNo := (1 - overallRate) * float64(v.Sent)
		obsResp := float64(v.Responses)
		obsNo := float64(v.Sent - v.Responses)
		chi2 += (obsResp-expResp)*(obsResp-expResp)/expResp +
			(obsNo-expNo)*(obsNo-expNo)/expNo
	}

	dof := float64(len(variants) - 1)
	if dof < 1 {
		return 1.0
	}

	// Wilson-Hilferty: (X/k)^(1/3) is approximately normal.
	mean := 1 - 2/(9*dof)
	sd := math.Sqrt(2 / (9 * dof))
	z := (math.Cbrt(chi2/dof) - mean) / sd
	p := 1 - 0.5*(1+math.Erf(z/math.Sqrt2))
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
