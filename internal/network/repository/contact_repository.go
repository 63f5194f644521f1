package repository

import (
	"time"

	"gorm.io/gorm"

	networkdomain "careertrack-backend/internal/network/domain"
)

type ContactRepository interface {
	List() ([]networkdomain.Contact, error)
	Create(contact *networkdomain.Contact) error
	// Touch marks a contact as contacted now.
	Touch(id uint, at time.Time) error
	UpdateStrength(id uint, strength string) error
}

// contactRepository implements ContactRepository
type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) List() ([]networkdomain.Contact, error) {
	var contacts []networkdomain.Contact
	err := r.db.Order("name").Find(&contacts).Error
	return contacts, err
}

func (r *contactRepository) Create(contact *networkdomain.Contact) error {
	if contact.RelationshipStrength == "" {
		contact.RelationshipStrength = networkdomain.StrengthCold
	}
	return r.db.Create(contact).Error
}

func (r *contactRepository) Touch(id uint, at time.Time) error {
	return r.db.Model(&networkdomain.Contact{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_contacted": at,
			"updated_at":     at,
		}).Error
}

func (r *contactRepository) UpdateStrength(id uint, strength string) error {
	return r.db.Model(&networkdomain.Contact{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"relationship_strength": strength,
			"updated_at":            time.Now().UTC(),
		}).Error
}
