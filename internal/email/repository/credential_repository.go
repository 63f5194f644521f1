package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"careertrack-backend/internal/apperrors"
	emaildomain "careertrack-backend/internal/email/domain"
)

// credentialRepository implements CredentialRepository
type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) List() ([]emaildomain.Credential, error) {
	var creds []emaildomain.Credential
	if err := r.db.Order("provider").Find(&creds).Error; err != nil {
		return nil, err
	}
	return creds, nil
}

func (r *credentialRepository) GetByProvider(provider string) (*emaildomain.Credential, error) {
	var cred emaildomain.Credential
	err := r.db.Where("provider = ?", provider).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) Upsert(cred *emaildomain.Credential) error {
	existing, err := r.GetByProvider(cred.Provider)
	if errors.Is(err, apperrors.ErrCredentialNotFound) {
		cred.ID = uuid.New().String()
		cred.CreatedAt = time.Now().UTC()
		cred.UpdatedAt = cred.CreatedAt
		return r.db.Create(cred).Error
	}
	if err != nil {
		return err
	}

	cred.ID = existing.ID
	cred.CreatedAt = existing.CreatedAt
	cred.UpdatedAt = time.Now().UTC()
	return r.db.Save(cred).Error
}

func (r *credentialRepository) UpdateTokens(provider, accessTokenEncrypted, refreshTokenEncrypted string, expiry *time.Time) error {
	updates := map[string]interface{}{
		"access_token_encrypted": accessTokenEncrypted,
		"token_expiry":           expiry,
		"updated_at":             time.Now().UTC(),
	}
	if refreshTokenEncrypted != "" {
		updates["refresh_token_encrypted"] = refreshTokenEncrypted
	}

	result := r.db.Model(&emaildomain.Credential{}).Where("provider = ?", provider).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrCredentialNotFound
	}
	return nil
}

func (r *credentialRepository) Delete(provider string) error {
	result := r.db.Where("provider = ?", provider).Delete(&emaildomain.Credential{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrCredentialNotFound
	}
	return nil
}
