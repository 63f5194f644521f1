package repository

import (
	"time"

	appdomain "careertrack-backend/internal/application/domain"
)

// ApplicationRepository is the tracked-application store the reconciler
// links messages against.
type ApplicationRepository interface {
	// GetAll returns applications most recently updated first. The matcher's
	// tie-break depends on this ordering being stable within one cycle.
	GetAll() ([]appdomain.Application, error)
	GetByID(id uint) (*appdomain.Application, error)
	Create(app *appdomain.Application) error
	Update(app *appdomain.Application) error
	// UpdateStatus mutates only the status and bumps last_updated.
	UpdateStatus(id uint, status string) error
	Delete(id uint) error
}

// FollowUpRepository stores scheduled outreach actions.
type FollowUpRepository interface {
	Create(fu *appdomain.FollowUp) error
	ListByApplication(applicationID uint) ([]appdomain.FollowUp, error)
	// CountPending returns how many incomplete follow-ups are due today and
	// how many are overdue, as of the given day.
	CountPending(asOf time.Time) (due int64, overdue int64, err error)
	MarkComplete(id uint) error
}

// VariantRepository feeds the weekly variant performance analysis.
type VariantRepository interface {
	ListWithOutcomes() ([]appdomain.DocumentVariant, error)
}
