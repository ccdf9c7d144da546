package domain

import "strings"

// Priority is the classification tier assigned to an incoming email
type Priority string

const (
	PriorityUrgent    Priority = "urgent"
	PriorityImportant Priority = "important"
	PriorityOther     Priority = "other"
)

// NeedsAttention reports whether the priority tier qualifies for a reply draft
func (p Priority) NeedsAttention() bool {
	return p == PriorityUrgent || p == PriorityImportant
}

// Valid reports whether p is one of the known tiers
func (p Priority) Valid() bool {
	return p == PriorityUrgent || p == PriorityImportant || p == PriorityOther
}

// IncomingEmail is one message fetched from a source account, as handed to
// the classifier. ThreadID is empty when the provider has no thread concept.
type IncomingEmail struct {
	AccountID string `json:"account_id"`
	ID        string `json:"id"`
	Provider  string `json:"provider"`
	Sender    string `json:"sender"`
	Subject   string `json:"subject"`
	ThreadID  string `json:"thread_id,omitempty"`
	Body      string `json:"body"`
}

// Classification is the classifier's verdict for one incoming email
type Classification struct {
	Priority    Priority `json:"priority"`
	ReplyNeeded bool     `json:"reply_needed"`
	Summary     string   `json:"summary"`
}

// PollSummary reports the outcome of one poll cycle
type PollSummary struct {
	NewCount   int `json:"new_count"`
	DraftCount int `json:"draft_count"`
}

// ParseSender splits a "Name <addr@example.com>" header value into address
// and display name. A bare address comes back with an empty name.
func ParseSender(sender string) (email, name string) {
	s := strings.TrimSpace(sender)
	open := strings.LastIndex(s, "<")
	close := strings.LastIndex(s, ">")
	if open == -1 || close == -1 || close < open {
		return s, ""
	}
	email = strings.TrimSpace(s[open+1 : close])
	name = strings.Trim(strings.TrimSpace(s[:open]), `"`)
	return email, name
}

// BuildReplySubject prefixes the original subject with "Re: " unless it
// already carries one.
func BuildReplySubject(subject string) string {
	trimmed := strings.TrimSpace(subject)
	if trimmed == "" {
		return "Re:"
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "re:") {
		return trimmed
	}
	return "Re: " + trimmed
}
