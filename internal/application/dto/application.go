package dto

import (
	"time"

	appdomain "careertrack-backend/internal/application/domain"
)

type ApplicationsResponse struct {
	Applications []appdomain.Application `json:"applications"`
	Total        int                     `json:"total"`
}

type CreateApplicationRequest struct {
	Company           string     `json:"company" binding:"required"`
	Role              string     `json:"role" binding:"required"`
	DateApplied       *time.Time `json:"date_applied"`
	Status            string     `json:"status"`
	SalaryRange       string     `json:"salary_range"`
	JobPostingURL     string     `json:"job_posting_url"`
	ApplicationMethod string     `json:"application_method"`
	Notes             string     `json:"notes"`
}

type UpdateApplicationRequest struct {
	Company           *string    `json:"company"`
	Role              *string    `json:"role"`
	DateApplied       *time.Time `json:"date_applied"`
	SalaryRange       *string    `json:"salary_range"`
	JobPostingURL     *string    `json:"job_posting_url"`
	ApplicationMethod *string    `json:"application_method"`
	Notes             *string    `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CreateFollowUpRequest struct {
	ScheduledDate time.Time `json:"scheduled_date" binding:"required"`
	ActionType    string    `json:"action_type"`
	Notes         string    `json:"notes"`
}
