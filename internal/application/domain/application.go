package domain

import "time"

// Application status values. Status is mutated only through the reconciler's
// transition table or by the user.
const (
	StatusApplied   = "Applied"
	StatusScreening = "Screening"
	StatusInterview = "Interview"
	StatusOffer     = "Offer"
	StatusRejected  = "Rejected"
	StatusGhosted   = "Ghosted"
)

// ValidStatuses lists every status an application may hold.
var ValidStatuses = []string{
	StatusApplied, StatusScreening, StatusInterview,
	StatusOffer, StatusRejected, StatusGhosted,
}

// IsValidStatus reports whether s is a known application status.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Application is a tracked job application.
type Application struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	Company           string     `json:"company" gorm:"size:200;not null"`
	Role              string     `json:"role" gorm:"size:200;not null"`
	DateApplied       *time.Time `json:"date_applied"`
	Status            string     `json:"status" gorm:"size:20;default:Applied"`
	SalaryRange       string     `json:"salary_range,omitempty" gorm:"size:100"`
	JobPostingURL     string     `json:"job_posting_url,omitempty"`
	ApplicationMethod string     `json:"application_method,omitempty" gorm:"size:100"`
	Notes             string     `json:"notes,omitempty"`
	LastUpdated       time.Time  `json:"last_updated"`
	CreatedAt         time.Time  `json:"created_at"`

	FollowUps []FollowUp `json:"follow_ups,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// Follow-up action types.
const (
	FollowUpEmail    = "Email Follow-up"
	FollowUpThankYou = "Thank You"
	FollowUpCheckIn  = "Check-in"
)

// FollowUp is a scheduled outreach action tied to an application.
type FollowUp struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ApplicationID uint      `json:"application_id" gorm:"not null;index"`
	ScheduledDate time.Time `json:"scheduled_date" gorm:"not null"`
	ActionType    string    `json:"action_type" gorm:"size:50;default:Email Follow-up"`
	Completed     bool      `json:"completed" gorm:"default:false"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// DocumentVariant records which resume/cover-letter strategy was sent with an
// application and what came of it. Consumed by the weekly variant analysis job.
type DocumentVariant struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	ApplicationID     uint      `json:"application_id" gorm:"index"`
	VariantName       string    `json:"variant_name" gorm:"size:100;not null;index"`
	DocumentType      string    `json:"document_type" gorm:"size:30"`
	Outcome           string    `json:"outcome,omitempty" gorm:"size:30"`
	ResponseTimeHours float64   `json:"response_time_hours,omitempty"`
	SentAt            time.Time `json:"sent_at"`
}
