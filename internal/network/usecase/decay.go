// Package usecase holds the relationship decay sweep run by the weekly
// network job.
package usecase

import (
	"time"

	"go.uber.org/zap"

	networkdomain "careertrack-backend/internal/network/domain"
	"careertrack-backend/internal/network/repository"
	"careertrack-backend/internal/settings"
)

// Decay defaults, in days. Overridable through settings.
const (
	DefaultWarmDecayDays  = 180
	DefaultCloseDecayDays = 120
)

type DecayService struct {
	contacts repository.ContactRepository
	settings settings.Repository
	log      *zap.Logger
	now      func() time.Time
}

func NewDecayService(contacts repository.ContactRepository, settingsRepo settings.Repository, log *zap.Logger) *DecayService {
	return &DecayService{
		contacts: contacts,
		settings: settingsRepo,
		log:      log,
		now:      time.Now,
	}
}

// Run demotes stale relationships one step: close becomes warm after the
// close window, warm becomes cold after the warm window. A contact never
// contacted at all drops straight to cold. Returns how many contacts changed.
func (s *DecayService) Run() (int, error) {
	warmDays := s.settings.GetInt(settings.KeyWarmDecayDays, DefaultWarmDecayDays)
	closeDays := s.settings.GetInt(settings.KeyCloseDecayDays, DefaultCloseDecayDays)
	now := s.now()

	contacts, err := s.contacts.List()
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range contacts {
		c := &contacts[i]
		next := nextStrength(c, now, warmDays, closeDays)
		if next == "" || next == c.RelationshipStrength {
			continue
		}
		if err := s.contacts.UpdateStrength(c.ID, next); err != nil {
			s.log.Error("relationship decay update failed",
				zap.Uint("contact_id", c.ID), zap.Error(err))
			continue
		}
		s.log.Debug("relationship decayed",
			zap.Uint("contact_id", c.ID),
			zap.String("from", c.RelationshipStrength),
			zap.String("to", next))
		changed++
	}

	if changed > 0 {
		s.log.Info("relationship decay sweep finished", zap.Int("changed", changed))
	}
	return changed, nil
}

func nextStrength(c *networkdomain.Contact, now time.Time, warmDays, closeDays int) string {
	if c.RelationshipStrength == networkdomain.StrengthCold {
		return ""
	}
	if c.LastContacted == nil {
		return networkdomain.StrengthCold
	}
	idle := now.Sub(*c.LastContacted)
	switch c.RelationshipStrength {
	case networkdomain.StrengthClose:
		if idle > time.Duration(closeDays)*24*time.Hour {
			return networkdomain.StrengthWarm
		}
	case networkdomain.StrengthWarm:
		if idle > time.Duration(warmDays)*24*time.Hour {
			return networkdomain.StrengthCold
		}
	}
	return ""
}
