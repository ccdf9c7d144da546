package repository

import (
	"context"
	"time"

	maildomain "mailpilot-backend/internal/mail/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeenRepository is the dedup ledger for already-processed emails
type SeenRepository interface {
	// HasSeen reports whether the (account, email) pair was already processed
	HasSeen(ctx context.Context, accountID, emailID string) (bool, error)
	// MarkSeen records the pair; a conflict with an existing row is a
	// success no-op, so overlapping poll cycles never double-process
	MarkSeen(ctx context.Context, accountID, provider, emailID string, priority maildomain.Priority) error
}

type seenRepository struct {
	db *gorm.DB
}

// NewSeenRepository creates a new GORM-based SeenRepository
func NewSeenRepository(db *gorm.DB) SeenRepository {
	return &seenRepository{db: db}
}

func (r *seenRepository) HasSeen(ctx context.Context, accountID, emailID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&maildomain.SeenEmail{}).
		Where("account_id = ? AND email_id = ?", accountID, emailID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *seenRepository) MarkSeen(ctx context.Context, accountID, provider, emailID string, priority maildomain.Priority) error {
	seen := maildomain.SeenEmail{
		AccountID:    accountID,
		EmailID:      emailID,
		Provider:     provider,
		Priority:     priority,
		ClassifiedAt: time.Now().UTC(),
	}
	// Insert-if-absent against the (account_id, email_id) unique index.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "email_id"}},
		DoNothing: true,
	}).Create(&seen).Error
}
