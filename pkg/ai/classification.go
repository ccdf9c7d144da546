package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	maildomain "mailpilot-backend/internal/mail/domain"
)

// ClassificationPrompt is the shared prompt suffix for classification so
// both providers produce the same JSON contract.
const ClassificationPrompt = `You are an email triage assistant. Classify the email below.

Respond with ONLY a JSON object, no prose, in exactly this shape:
{"priority": "urgent" | "important" | "other", "reply_needed": true | false, "summary": "<one sentence summary>"}

Rules:
- "urgent": needs action today (deadlines, incidents, direct questions from key contacts)
- "important": needs a reply or decision this week
- "other": newsletters, promotions, automated notices, FYI-only mail
- reply_needed is true only when a human reply is actually expected

EMAIL:
From: %s
Subject: %s

%s

JSON:`

// ParseClassification extracts the classification JSON from a model
// response. Models wrap JSON in prose or code fences often enough that the
// parser scans for the outermost object before unmarshalling. An
// unrecognized priority degrades to "other".
func ParseClassification(response string) (maildomain.Classification, error) {
	var out maildomain.Classification

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return out, fmt.Errorf("no JSON object in classification response")
	}

	var raw struct {
		Priority    string `json:"priority"`
		ReplyNeeded bool   `json:"reply_needed"`
		Summary     string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(response[start:end+1]), &raw); err != nil {
		return out, fmt.Errorf("parse classification response: %w", err)
	}

	out.Priority = maildomain.Priority(strings.ToLower(strings.TrimSpace(raw.Priority)))
	if !out.Priority.Valid() {
		out.Priority = maildomain.PriorityOther
	}
	out.ReplyNeeded = raw.ReplyNeeded
	out.Summary = strings.TrimSpace(raw.Summary)
	return out, nil
}

// DraftPrompt builds the reply-drafting prompt
func DraftPrompt(email maildomain.IncomingEmail, classification maildomain.Classification) string {
	return fmt.Sprintf(`You are drafting a reply on behalf of the recipient of this email.

Write a short, professional reply in the same language as the original.
Output only the reply body, no subject line, no signature placeholders.
If no sensible reply can be written, output nothing.

Priority: %s
Summary: %s

ORIGINAL EMAIL:
From: %s
Subject: %s

%s

REPLY:`, classification.Priority, classification.Summary, email.Sender, email.Subject, truncateBody(email.Body))
}

// truncateBody keeps prompts inside token limits
func truncateBody(body string) string {
	if len(body) > 5000 {
		return body[:5000]
	}
	return body
}
