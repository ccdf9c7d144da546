package domain

import "time"

// LearningEntry is one recorded decision outcome, kept for later
// aggregation. Category "decision" covers approvals and rejections.
type LearningEntry struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Category    string    `json:"category" gorm:"not null"`
	Subject     string    `json:"subject" gorm:"not null"`
	Action      string    `json:"action" gorm:"not null"`
	ContextJSON string    `json:"context_json,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (LearningEntry) TableName() string {
	return "learning_entries"
}

// PersonContext is the learned context about a correspondent: which account
// they write to, how often, and the last classified importance.
type PersonContext struct {
	ID               uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Email            string    `json:"email" gorm:"uniqueIndex;not null"`
	Name             string    `json:"name,omitempty"`
	Account          string    `json:"account" gorm:"not null"`
	LastImportance   string    `json:"last_importance"`
	InteractionCount int       `json:"interaction_count" gorm:"default:1"`
	LastSeen         time.Time `json:"last_seen"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PersonContext) TableName() string {
	return "person_contexts"
}
