// Package classifier wraps the external language-model call that assigns a
// hiring-process stage to an inbound email.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	emaildomain "careertrack-backend/internal/email/domain"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const model = "gemini-2.5-flash"

// maxPreviewBytes bounds the body excerpt sent to the model. The cut never
// lands inside a multi-byte rune.
const maxPreviewBytes = 2000

// Classification is the structured verdict for one email.
type Classification struct {
	Stage      string                      `json:"stage"`
	Confidence float64                     `json:"confidence"`
	Extracted  emaildomain.ExtractedFields `json:"extracted_data"`
}

// Fallback is the classification used when the external call fails in any
// way. Callers substitute it rather than propagating the error downstream.
func Fallback() *Classification {
	return &Classification{
		Stage:      emaildomain.StageOther,
		Confidence: 0.0,
		Extracted:  emaildomain.ExtractedFields{Version: emaildomain.ExtractedFieldsVersion},
	}
}

type Service struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewService(apiKey string) *Service {
	return &Service{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

const promptTemplate = `Classify this email related to a job application.

Email subject: %s
Email body (preview): %s
Sender domain: %s

Classification categories:
- application_received: confirmation that application was received
- screening: invitation for phone/recruiter screen
- interview_invite: invitation for technical/onsite interview
- interview_schedule: scheduling details for an interview
- rejection: rejection notification
- offer: job offer or compensation discussion
- other: not related to job application process

Look for patterns:
- "unfortunately" + "position" = rejection
- "next steps" + "interview" = interview invite
- "offer" + salary/numbers = offer
- "schedule" + date/time = interview scheduling
- "received your application" = application_received

Return ONLY valid JSON:
{
    "stage": "one of the categories above",
    "confidence": 0.0 to 1.0,
    "extracted_data": {
        "interview_date": "YYYY-MM-DD or null",
        "interview_time": "HH:MM or null",
        "interview_type": "phone/video/onsite or null",
        "interviewer_names": ["names if mentioned"],
        "salary_offered": null or integer,
        "response_deadline": "YYYY-MM-DD or null",
        "rejection_reason": "reason if mentioned or null"
    }
}`

// Classify asks the model to categorize one email. Errors are returned so the
// caller can substitute Fallback(); this function never panics and never
// returns a partial result alongside an error.
func (s *Service) Classify(ctx context.Context, subject, bodyPreview, senderDomain string) (*Classification, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("classifier API key not configured")
	}

	if len(bodyPreview) > maxPreviewBytes {
		cut := maxPreviewBytes
		for cut > 0 && !utf8.RuneStart(bodyPreview[cut]) {
			cut--
		}
		bodyPreview = bodyPreview[:cut]
	}
	prompt := fmt.Sprintf(promptTemplate, subject, bodyPreview, senderDomain)

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     0.0,
			"maxOutputTokens": 1000,
		},
	}

	body, _ := json.Marshal(payload)
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classification API error: status %d", resp.StatusCode)
	}

	text, err := extractText(respBody)
	if err != nil {
		return nil, err
	}
	return parseClassification(text)
}

// extractText pulls the model's text out of the generateContent envelope.
func extractText(respBody []byte) (string, error) {
	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no classification returned")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

func parseClassification(text string) (*Classification, error) {
	cleaned := stripCodeFences(text)

	var c Classification
	if err := json.Unmarshal([]byte(cleaned), &c); err != nil {
		return nil, fmt.Errorf("malformed classification response: %w", err)
	}

	if !validStage(c.Stage) {
		c.Stage = emaildomain.StageOther
	}
	if c.Confidence < 0 {
		c.Confidence = 0
	}
	if c.Confidence > 1 {
		c.Confidence = 1
	}
	c.Extracted.Version = emaildomain.ExtractedFieldsVersion
	return &c, nil
}

func validStage(stage string) bool {
	for _, s := range emaildomain.ValidStages {
		if s == stage {
			return true
		}
	}
	return false
}

// stripCodeFences removes a ```json ... ``` wrapper the model sometimes adds.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}
