package repository

import (
	"context"
	"errors"
	"time"

	learningdomain "mailpilot-backend/internal/learning/domain"

	"gorm.io/gorm"
)

// LearningRepository persists decision entries and person contexts
type LearningRepository interface {
	CreateEntry(ctx context.Context, entry *learningdomain.LearningEntry) error
	// UpsertPerson increments the interaction count for a known
	// correspondent or creates the row on first contact
	UpsertPerson(ctx context.Context, email, name, account, importance string) error
}

type learningRepository struct {
	db *gorm.DB
}

// NewLearningRepository creates a new GORM-based LearningRepository
func NewLearningRepository(db *gorm.DB) LearningRepository {
	return &learningRepository{db: db}
}

func (r *learningRepository) CreateEntry(ctx context.Context, entry *learningdomain.LearningEntry) error {
	entry.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *learningRepository) UpsertPerson(ctx context.Context, email, name, account, importance string) error {
	var existing learningdomain.PersonContext
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error

	now := time.Now().UTC()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		person := learningdomain.PersonContext{
			Email:            email,
			Name:             name,
			Account:          account,
			LastImportance:   importance,
			InteractionCount: 1,
			LastSeen:         now,
			UpdatedAt:        now,
		}
		return r.db.WithContext(ctx).Create(&person).Error
	} else if err != nil {
		return err
	}

	existing.InteractionCount++
	existing.LastImportance = importance
	existing.LastSeen = now
	existing.UpdatedAt = now
	if name != "" && existing.Name == "" {
		existing.Name = name
	}
	return r.db.WithContext(ctx).Save(&existing).Error
}
