package domain

import "time"

// Classifier stages for an inbound email.
const (
	StageApplicationReceived = "application_received"
	StageScreening           = "screening"
	StageInterviewInvite     = "interview_invite"
	StageInterviewSchedule   = "interview_schedule"
	StageRejection           = "rejection"
	StageOffer               = "offer"
	StageOther               = "other"
)

// ValidStages lists every stage the classifier may return.
var ValidStages = []string{
	StageApplicationReceived, StageScreening, StageInterviewInvite,
	StageInterviewSchedule, StageRejection, StageOffer, StageOther,
}

// ExtractedFieldsVersion is bumped when the classification contract grows
// fields, so stored records remain readable.
const ExtractedFieldsVersion = 1

// ExtractedFields carries the structured data the classifier pulled out of an
// email. Every field is optional.
type ExtractedFields struct {
	Version          int      `json:"version"`
	InterviewDate    *string  `json:"interview_date,omitempty"`
	InterviewTime    *string  `json:"interview_time,omitempty"`
	InterviewType    *string  `json:"interview_type,omitempty"`
	InterviewerNames []string `json:"interviewer_names,omitempty"`
	SalaryOffered    *int     `json:"salary_offered,omitempty"`
	ResponseDeadline *string  `json:"response_deadline,omitempty"`
	RejectionReason  *string  `json:"rejection_reason,omitempty"`
}

// MessageRecord is one ingested email. (Provider, MessageID) is unique:
// reprocessing the same message is a no-op lookup, never a new row.
type MessageRecord struct {
	ID            string          `json:"id" gorm:"primaryKey"`
	Provider      string          `json:"provider" gorm:"size:50;not null;uniqueIndex:idx_provider_message"`
	MessageID     string          `json:"message_id" gorm:"size:255;not null;uniqueIndex:idx_provider_message"`
	SenderEmail   string          `json:"sender_email" gorm:"size:255"`
	SenderName    string          `json:"sender_name" gorm:"size:255"`
	Subject       string          `json:"subject" gorm:"size:500"`
	BodyPreview   string          `json:"body_preview" gorm:"size:1000"`
	ReceivedAt    time.Time       `json:"received_at"`
	DetectedStage string          `json:"detected_stage" gorm:"size:30"`
	Confidence    float64         `json:"confidence"`
	ApplicationID *uint           `json:"application_id" gorm:"index"`
	AutoMatched   bool            `json:"auto_matched"`
	UserConfirmed *bool           `json:"user_confirmed"`
	Extracted     ExtractedFields `json:"extracted" gorm:"serializer:json"`
	Processed     bool            `json:"processed"`
	CreatedAt     time.Time       `json:"created_at"`
}
