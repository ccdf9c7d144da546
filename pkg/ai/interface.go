package ai

import (
	"context"

	maildomain "mailpilot-backend/internal/mail/domain"
)

// AssistantService classifies incoming emails and drafts replies.
// Implement this interface to add new AI providers (Gemini, Ollama, etc.)
type AssistantService interface {
	ClassifyEmail(ctx context.Context, email maildomain.IncomingEmail) (maildomain.Classification, error)
	// DraftReply may return an empty string to signal "no draft produced"
	DraftReply(ctx context.Context, email maildomain.IncomingEmail, classification maildomain.Classification) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
