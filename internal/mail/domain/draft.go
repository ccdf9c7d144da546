package domain

import (
	"errors"
	"time"
)

// DraftStatus is the approval state of a generated reply draft
type DraftStatus string

const (
	DraftStatusPending   DraftStatus = "pending"
	DraftStatusSent      DraftStatus = "sent"
	DraftStatusCancelled DraftStatus = "cancelled"
)

// Terminal reports whether no further transition may leave this status
func (s DraftStatus) Terminal() bool {
	return s == DraftStatusSent || s == DraftStatusCancelled
}

var (
	// ErrDraftNotFound is returned when a transition targets an unknown draft
	ErrDraftNotFound = errors.New("draft not found")
	// ErrAlreadyResolved is returned when a draft already left the pending state
	ErrAlreadyResolved = errors.New("draft already resolved")
	// ErrSendFailed wraps a provider send error; the draft stays pending and
	// the approval can be retried
	ErrSendFailed = errors.New("send failed")
)

// EmailDraft is a generated reply awaiting human disposition. Rows are never
// deleted; terminal drafts are kept for audit and learning.
type EmailDraft struct {
	ID                 string      `json:"id" gorm:"primaryKey"`
	AccountID          string      `json:"account_id" gorm:"index;not null"`
	Provider           string      `json:"provider" gorm:"not null"`
	OriginalEmailID    string      `json:"original_email_id" gorm:"not null"`
	OriginalThreadID   string      `json:"original_thread_id,omitempty"`
	OriginalSender     string      `json:"original_sender" gorm:"not null"`
	OriginalSubject    string      `json:"original_subject" gorm:"type:text"`
	DraftContent       string      `json:"draft_content" gorm:"type:text"`
	Priority           Priority    `json:"priority" gorm:"not null"`
	Status             DraftStatus `json:"status" gorm:"index;not null;default:pending"`
	NotificationHandle string      `json:"notification_handle,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (EmailDraft) TableName() string {
	return "email_drafts"
}
