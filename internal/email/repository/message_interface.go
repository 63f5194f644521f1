package repository

import (
	"time"

	emaildomain "careertrack-backend/internal/email/domain"
)

// MessageRepository stores ingested message records. (provider, message_id)
// is the natural dedup key.
type MessageRepository interface {
	// Exists reports whether a message was already ingested. This lookup is
	// the system's sole replay-safety mechanism.
	Exists(provider, messageID string) (bool, error)
	Create(record *emaildomain.MessageRecord) error
	GetByID(id string) (*emaildomain.MessageRecord, error)
	// ListRecent returns the newest records first.
	ListRecent(limit int) ([]emaildomain.MessageRecord, error)
	// ListPendingReview returns auto-matched records awaiting user
	// confirmation, oldest first.
	ListPendingReview() ([]emaildomain.MessageRecord, error)
	// SetUserConfirmed resolves the tri-state: confirm or reject.
	SetUserConfirmed(id string, confirmed bool) error
	// DeleteUnlinkedOlderThan prunes processed, unmatched records. Used by
	// the monthly cleanup job.
	DeleteUnlinkedOlderThan(cutoff time.Time) (int64, error)
}
