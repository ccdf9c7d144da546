package domain

import "time"

// Provider identifiers for source accounts
const (
	ProviderGmail = "gmail"
	ProviderIMAP  = "imap"
)

// Account is one configured mail account the poller watches. Accounts come
// from configuration, not from the database.
type Account struct {
	Address  string `json:"address"`
	Provider string `json:"provider"`
}

// OAuthToken stores one serialized OAuth token per (account, provider).
// Token acquisition and refresh flows live outside this service; rows are
// written by the external consent flow and refreshed in place here.
type OAuthToken struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	AccountID string    `json:"account_id" gorm:"uniqueIndex:uq_oauth_account_provider;not null"`
	Provider  string    `json:"provider" gorm:"uniqueIndex:uq_oauth_account_provider;not null"`
	TokenData string    `json:"-" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (OAuthToken) TableName() string {
	return "oauth_tokens"
}
