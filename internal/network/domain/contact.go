package domain

import "time"

// Relationship strengths, ordered warmest to coldest.
const (
	StrengthClose = "close"
	StrengthWarm  = "warm"
	StrengthCold  = "cold"
)

// Contact is a networking contact whose relationship strength decays when
// left uncontacted. Swept weekly by the decay job.
type Contact struct {
	ID                   uint       `json:"id" gorm:"primaryKey"`
	Name                 string     `json:"name" gorm:"size:200;not null"`
	Company              string     `json:"company,omitempty" gorm:"size:200"`
	Title                string     `json:"title,omitempty" gorm:"size:200"`
	Email                string     `json:"email,omitempty" gorm:"size:255"`
	RelationshipStrength string     `json:"relationship_strength" gorm:"size:20;default:cold"`
	LastContacted        *time.Time `json:"last_contacted"`
	Notes                string     `json:"notes,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
