package domain

import "time"

// SeenEmail records one already-processed source email. The composite unique
// index on (account_id, email_id) is what makes ingestion idempotent under
// overlapping poll cycles; the application never relies on a read-then-act
// check alone. Rows are append-only.
type SeenEmail struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	AccountID    string    `json:"account_id" gorm:"uniqueIndex:uq_seen_account_email;not null"`
	EmailID      string    `json:"email_id" gorm:"uniqueIndex:uq_seen_account_email;not null"`
	Provider     string    `json:"provider" gorm:"not null"`
	Priority     Priority  `json:"priority" gorm:"not null"`
	ClassifiedAt time.Time `json:"classified_at"`
}

// TableName specifies the table name for GORM
func (SeenEmail) TableName() string {
	return "emails_seen"
}
