package learning

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	learningdomain "mailpilot-backend/internal/learning/domain"
	"mailpilot-backend/internal/learning/repository"

	"cloud.google.com/go/pubsub"
)

// Service is the learning sink: decision outcomes and sender context feed
// later aggregation. Everything here is best-effort; callers log-and-drop.
type Service struct {
	repo  repository.LearningRepository
	topic *pubsub.Topic
}

// NewService creates the learning sink. The topic is optional; when nil,
// decisions are only persisted locally.
func NewService(repo repository.LearningRepository, topic *pubsub.Topic) *Service {
	return &Service{repo: repo, topic: topic}
}

// RecordDecision persists one decision outcome and, when a topic is
// configured, publishes it fire-and-forget.
func (s *Service) RecordDecision(ctx context.Context, category, subject, outcome string, details map[string]string) error {
	var contextJSON string
	if len(details) > 0 {
		data, err := json.Marshal(details)
		if err != nil {
			return err
		}
		contextJSON = string(data)
	}

	entry := &learningdomain.LearningEntry{
		Category:    "decision",
		Subject:     fmt.Sprintf("%s:%s", category, subject),
		Action:      outcome,
		ContextJSON: contextJSON,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return err
	}

	s.publish(map[string]string{
		"category": category,
		"subject":  subject,
		"outcome":  outcome,
	})
	return nil
}

// RecordPersonInteraction updates the learned context for a correspondent
func (s *Service) RecordPersonInteraction(ctx context.Context, email, name, accountID, importance string) error {
	if email == "" {
		return nil
	}
	return s.repo.UpsertPerson(ctx, email, name, accountID, importance)
}

// publish pushes the record to Pub/Sub without blocking the caller; a
// publish failure is logged and dropped.
func (s *Service) publish(record map[string]string) {
	if s.topic == nil {
		return
	}
	data, err := json.Marshal(record)
	if err != nil {
		log.Printf("[Learning] Marshal for publish failed: %v", err)
		return
	}
	result := s.topic.Publish(context.Background(), &pubsub.Message{Data: data})
	go func() {
		if _, err := result.Get(context.Background()); err != nil {
			log.Printf("[Learning] Publish failed: %v", err)
		}
	}()
}
