package repository

import (
	"time"

	"gorm.io/gorm"

	"careertrack-backend/internal/apperrors"
	appdomain "careertrack-backend/internal/application/domain"
)

// followUpRepository implements FollowUpRepository
type followUpRepository struct {
	db *gorm.DB
}

func NewFollowUpRepository(db *gorm.DB) FollowUpRepository {
	return &followUpRepository{db: db}
}

func (r *followUpRepository) Create(fu *appdomain.FollowUp) error {
	if fu.ActionType == "" {
		fu.ActionType = appdomain.FollowUpEmail
	}
	fu.CreatedAt = time.Now().UTC()
	return r.db.Create(fu).Error
}

func (r *followUpRepository) ListByApplication(applicationID uint) ([]appdomain.FollowUp, error) {
	var followUps []appdomain.FollowUp
	err := r.db.Where("application_id = ?", applicationID).
		Order("scheduled_date asc").
		Find(&followUps).Error
	return followUps, err
}

func (r *followUpRepository) CountPending(asOf time.Time) (int64, int64, error) {
	dayStart := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var due, overdue int64
	err := r.db.Model(&appdomain.FollowUp{}).
		Where("completed = ? AND scheduled_date >= ? AND scheduled_date < ?", false, dayStart, dayEnd).
		Count(&due).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.db.Model(&appdomain.FollowUp{}).
		Where("completed = ? AND scheduled_date < ?", false, dayStart).
		Count(&overdue).Error
	return due, overdue, err
}

func (r *followUpRepository) MarkComplete(id uint) error {
	result := r.db.Model(&appdomain.FollowUp{}).
		Where("id = ?", id).
		Update("completed", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrFollowUpNotFound
	}
	return nil
}
