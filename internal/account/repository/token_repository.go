package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	accountdomain "mailpilot-backend/internal/account/domain"

	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// TokenRepository loads and persists OAuth tokens per account and provider
type TokenRepository interface {
	// Load returns (nil, nil) when no token is stored for the pair
	Load(ctx context.Context, accountID, provider string) (*oauth2.Token, error)
	// Save upserts the token for the pair
	Save(ctx context.Context, accountID, provider string, token *oauth2.Token) error
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new GORM-based TokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Load(ctx context.Context, accountID, provider string) (*oauth2.Token, error) {
	var row accountdomain.OAuthToken
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND provider = ?", accountID, provider).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(row.TokenData), &token); err != nil {
		return nil, fmt.Errorf("corrupt token for %s/%s: %w", accountID, provider, err)
	}
	return &token, nil
}

func (r *tokenRepository) Save(ctx context.Context, accountID, provider string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}

	var existing accountdomain.OAuthToken
	err = r.db.WithContext(ctx).
		Where("account_id = ? AND provider = ?", accountID, provider).
		First(&existing).Error

	now := time.Now().UTC()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := accountdomain.OAuthToken{
			AccountID: accountID,
			Provider:  provider,
			TokenData: string(data),
			CreatedAt: now,
			UpdatedAt: now,
		}
		return r.db.WithContext(ctx).Create(&row).Error
	} else if err != nil {
		return err
	}

	existing.TokenData = string(data)
	existing.UpdatedAt = now
	return r.db.WithContext(ctx).Save(&existing).Error
}
