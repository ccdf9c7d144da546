package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	maildomain "mailpilot-backend/internal/mail/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DraftRepository owns the EmailDraft lifecycle. Status transitions out of
// pending go through ApproveWithSend and CancelIfPending only; both rely on
// the database's conditional-update semantics rather than in-process locks,
// so a second process instance cannot double-send.
type DraftRepository interface {
	Create(ctx context.Context, draft *maildomain.EmailDraft) error
	// FindByID returns (nil, nil) when the draft does not exist
	FindByID(ctx context.Context, id string) (*maildomain.EmailDraft, error)
	FindByStatus(ctx context.Context, status maildomain.DraftStatus) ([]*maildomain.EmailDraft, error)
	// AttachNotification stores the notification handle after delivery;
	// the notification goes out only once the row exists
	AttachNotification(ctx context.Context, id, handle string) error
	// ApproveWithSend locks the draft row, verifies it is still pending,
	// runs send, and commits status=sent. A send error rolls everything
	// back and surfaces as ErrSendFailed with the draft left pending.
	ApproveWithSend(ctx context.Context, id string, send func(*maildomain.EmailDraft) error) (*maildomain.EmailDraft, error)
	// CancelIfPending flips pending → cancelled. The bool reports whether a
	// transition actually happened; cancelling a terminal draft is a no-op.
	CancelIfPending(ctx context.Context, id string) (*maildomain.EmailDraft, bool, error)
}

type draftRepository struct {
	db *gorm.DB
}

// NewDraftRepository creates a new GORM-based DraftRepository
func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

func (r *draftRepository) Create(ctx context.Context, draft *maildomain.EmailDraft) error {
	if draft.ID == "" {
		draft.ID = uuid.New().String()
	}
	if draft.Status == "" {
		draft.Status = maildomain.DraftStatusPending
	}
	now := time.Now().UTC()
	draft.CreatedAt = now
	draft.UpdatedAt = now
	return r.db.WithContext(ctx).Create(draft).Error
}

func (r *draftRepository) FindByID(ctx context.Context, id string) (*maildomain.EmailDraft, error) {
	var draft maildomain.EmailDraft
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&draft).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &draft, nil
}

func (r *draftRepository) FindByStatus(ctx context.Context, status maildomain.DraftStatus) ([]*maildomain.EmailDraft, error) {
	var drafts []*maildomain.EmailDraft
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&drafts).Error
	return drafts, err
}

func (r *draftRepository) AttachNotification(ctx context.Context, id, handle string) error {
	return r.db.WithContext(ctx).Model(&maildomain.EmailDraft{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"notification_handle": handle,
			"updated_at":          time.Now().UTC(),
		}).Error
}

func (r *draftRepository) ApproveWithSend(ctx context.Context, id string, send func(*maildomain.EmailDraft) error) (*maildomain.EmailDraft, error) {
	var approved *maildomain.EmailDraft
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var draft maildomain.EmailDraft
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&draft).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return maildomain.ErrDraftNotFound
			}
			return err
		}
		if draft.Status != maildomain.DraftStatusPending {
			return maildomain.ErrAlreadyResolved
		}

		// The send runs under the row lock: a racing approve blocks here
		// and then observes the terminal status instead of sending twice.
		if err := send(&draft); err != nil {
			return fmt.Errorf("%w: %v", maildomain.ErrSendFailed, err)
		}

		draft.Status = maildomain.DraftStatusSent
		draft.UpdatedAt = time.Now().UTC()
		if err := tx.Model(&maildomain.EmailDraft{}).
			Where("id = ?", draft.ID).
			Updates(map[string]interface{}{
				"status":     draft.Status,
				"updated_at": draft.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		approved = &draft
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

func (r *draftRepository) CancelIfPending(ctx context.Context, id string) (*maildomain.EmailDraft, bool, error) {
	res := r.db.WithContext(ctx).Model(&maildomain.EmailDraft{}).
		Where("id = ? AND status = ?", id, maildomain.DraftStatusPending).
		Updates(map[string]interface{}{
			"status":     maildomain.DraftStatusCancelled,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, false, res.Error
	}

	draft, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if draft == nil {
		return nil, false, maildomain.ErrDraftNotFound
	}
	return draft, res.RowsAffected > 0, nil
}
