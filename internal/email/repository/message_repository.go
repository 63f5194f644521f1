package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"careertrack-backend/internal/apperrors"
	emaildomain "careertrack-backend/internal/email/domain"
)

// messageRepository implements MessageRepository
type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Exists(provider, messageID string) (bool, error) {
	var count int64
	err := r.db.Model(&emaildomain.MessageRecord{}).
		Where("provider = ? AND message_id = ?", provider, messageID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *messageRepository) Create(record *emaildomain.MessageRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	return r.db.Create(record).Error
}

func (r *messageRepository) GetByID(id string) (*emaildomain.MessageRecord, error) {
	var record emaildomain.MessageRecord
	err := r.db.First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *messageRepository) ListRecent(limit int) ([]emaildomain.MessageRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []emaildomain.MessageRecord
	err := r.db.Order("received_at desc").Limit(limit).Find(&records).Error
	return records, err
}

func (r *messageRepository) ListPendingReview() ([]emaildomain.MessageRecord, error) {
	var records []emaildomain.MessageRecord
	err := r.db.
		Where("auto_matched = ? AND user_confirmed IS NULL AND application_id IS NOT NULL", true).
		Order("received_at asc").
		Find(&records).Error
	return records, err
}

func (r *messageRepository) SetUserConfirmed(id string, confirmed bool) error {
	result := r.db.Model(&emaildomain.MessageRecord{}).
		Where("id = ?", id).
		Update("user_confirmed", confirmed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrMessageNotFound
	}
	return nil
}

func (r *messageRepository) DeleteUnlinkedOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.
		Where("processed = ? AND application_id IS NULL AND received_at < ?", true, cutoff).
		Delete(&emaildomain.MessageRecord{})
	return result.RowsAffected, result.Error
}
