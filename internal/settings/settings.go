// Package settings is the flat key/value table driving runtime configuration
// and the poll watermark.
package settings

import (
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Recognized keys.
const (
	KeyEmailLastRun         = "email_last_run" // poll watermark, RFC3339
	KeyEmailCheckInterval   = "email_check_interval"
	KeyEmailAutoUpdate      = "email_auto_update"
	KeyReminderHour         = "reminder_hour"
	KeyWarmDecayDays        = "network_warm_decay_days"
	KeyCloseDecayDays       = "network_close_decay_days"
	KeyLastReminderCheck    = "last_reminder_check"
	KeyPendingReminders     = "pending_reminders"
	KeyVariantAnalysisCache = "variant_analysis_cache"
	KeyVariantAnalysisRun   = "variant_analysis_last_run"
)

// Setting is one row of the KV table.
type Setting struct {
	Key   string `json:"key" gorm:"primaryKey;size:100"`
	Value string `json:"value" gorm:"size:4096"`
}

type Repository interface {
	Get(key, fallback string) string
	GetInt(key string, fallback int) int
	GetBool(key string, fallback bool) bool
	GetTime(key string) (time.Time, bool)
	Set(key, value string) error
	SetTime(key string, t time.Time) error
	All() (map[string]string, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Get(key, fallback string) string {
	var s Setting
	if err := r.db.First(&s, "key = ?", key).Error; err != nil {
		return fallback
	}
	return s.Value
}

func (r *gormRepository) GetInt(key string, fallback int) int {
	if parsed, err := strconv.Atoi(r.Get(key, "")); err == nil {
		return parsed
	}
	return fallback
}

func (r *gormRepository) GetBool(key string, fallback bool) bool {
	if parsed, err := strconv.ParseBool(r.Get(key, "")); err == nil {
		return parsed
	}
	return fallback
}

func (r *gormRepository) GetTime(key string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, r.Get(key, ""))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (r *gormRepository) Set(key, value string) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&Setting{Key: key, Value: value}).Error
}

func (r *gormRepository) SetTime(key string, t time.Time) error {
	return r.Set(key, t.UTC().Format(time.RFC3339))
}

func (r *gormRepository) All() (map[string]string, error) {
	var rows []Setting
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, s := range rows {
		out[s.Key] = s.Value
	}
	return out, nil
}
