package ai

import (
	"context"
	"fmt"
	"strings"

	maildomain "mailpilot-backend/internal/mail/domain"
	"mailpilot-backend/pkg/gemini"
)

// GeminiAssistant implements AssistantService over the Gemini REST client
type GeminiAssistant struct {
	client *gemini.GeminiService
}

// NewGeminiAssistant wraps a Gemini client as an AssistantService
func NewGeminiAssistant(client *gemini.GeminiService) *GeminiAssistant {
	return &GeminiAssistant{client: client}
}

// ClassifyEmail implements AssistantService
func (g *GeminiAssistant) ClassifyEmail(ctx context.Context, email maildomain.IncomingEmail) (maildomain.Classification, error) {
	prompt := fmt.Sprintf(ClassificationPrompt, email.Sender, email.Subject, truncateBody(email.Body))
	response, err := g.client.GenerateContent(ctx, prompt)
	if err != nil {
		return maildomain.Classification{}, err
	}
	return ParseClassification(response)
}

// DraftReply implements AssistantService
func (g *GeminiAssistant) DraftReply(ctx context.Context, email maildomain.IncomingEmail, classification maildomain.Classification) (string, error) {
	response, err := g.client.GenerateContent(ctx, DraftPrompt(email, classification))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}
