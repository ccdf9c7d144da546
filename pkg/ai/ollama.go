package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	maildomain "mailpilot-backend/internal/mail/domain"
)

// OllamaService implements AssistantService using Ollama local LLM
type OllamaService struct {
	baseURL string
	model   string
}

// NewOllamaService creates a new Ollama service
func NewOllamaService(baseURL, model string) *OllamaService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	return &OllamaService{baseURL: baseURL, model: model}
}

// ClassifyEmail implements AssistantService
func (o *OllamaService) ClassifyEmail(ctx context.Context, email maildomain.IncomingEmail) (maildomain.Classification, error) {
	prompt := fmt.Sprintf(ClassificationPrompt, email.Sender, email.Subject, truncateBody(email.Body))
	response, err := o.generate(ctx, prompt, 200)
	if err != nil {
		return maildomain.Classification{}, err
	}
	return ParseClassification(response)
}

// DraftReply implements AssistantService
func (o *OllamaService) DraftReply(ctx context.Context, email maildomain.IncomingEmail, classification maildomain.Classification) (string, error) {
	response, err := o.generate(ctx, DraftPrompt(email, classification), 500)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

func (o *OllamaService) generate(ctx context.Context, prompt string, numPredict int) (string, error) {
	url := o.baseURL + "/api/generate"

	payload := map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": 0.3,
			"num_predict": numPredict,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error: %s", string(respBody))
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return result.Response, nil
}
