package repository

import (
	"gorm.io/gorm"

	appdomain "careertrack-backend/internal/application/domain"
)

// variantRepository implements VariantRepository
type variantRepository struct {
	db *gorm.DB
}

func NewVariantRepository(db *gorm.DB) VariantRepository {
	return &variantRepository{db: db}
}

func (r *variantRepository) ListWithOutcomes() ([]appdomain.DocumentVariant, error) {
	var variants []appdomain.DocumentVariant
	err := r.db.Order("sent_at asc").Find(&variants).Error
	return variants, err
}
