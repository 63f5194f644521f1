package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"careertrack-backend/internal/apperrors"
	appdomain "careertrack-backend/internal/application/domain"
)

// applicationRepository implements ApplicationRepository
type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) GetAll() ([]appdomain.Application, error) {
	var apps []appdomain.Application
	err := r.db.Order("last_updated desc").Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) GetByID(id uint) (*appdomain.Application, error) {
	var app appdomain.Application
	err := r.db.Preload("FollowUps").First(&app, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) Create(app *appdomain.Application) error {
	now := time.Now().UTC()
	if app.Status == "" {
		app.Status = appdomain.StatusApplied
	}
	app.LastUpdated = now
	app.CreatedAt = now
	return r.db.Create(app).Error
}

func (r *applicationRepository) Update(app *appdomain.Application) error {
	app.LastUpdated = time.Now().UTC()
	return r.db.Save(app).Error
}

func (r *applicationRepository) UpdateStatus(id uint, status string) error {
	if !appdomain.IsValidStatus(status) {
		return apperrors.ErrInvalidStatus
	}
	result := r.db.Model(&appdomain.Application{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"last_updated": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrApplicationNotFound
	}
	return nil
}

func (r *applicationRepository) Delete(id uint) error {
	result := r.db.Select("FollowUps").Delete(&appdomain.Application{ID: id})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrApplicationNotFound
	}
	return nil
}
