package usecase

import (
	"context"
	"errors"

	accountdomain "mailpilot-backend/internal/account/domain"
	maildomain "mailpilot-backend/internal/mail/domain"
)

// ErrCycleInFlight is returned when a poll cycle is requested while a
// previous one is still running
var ErrCycleInFlight = errors.New("poll cycle already in flight")

// Fetcher retrieves candidate emails for one account since a time window.
// "No new items" is an empty slice, not an error.
type Fetcher interface {
	FetchSince(ctx context.Context, account accountdomain.Account, hoursBack int) ([]maildomain.IncomingEmail, error)
}

// Classifier assigns a priority tier and reply-needed flag to an email
type Classifier interface {
	ClassifyEmail(ctx context.Context, email maildomain.IncomingEmail) (maildomain.Classification, error)
}

// Drafter produces reply content for an email. An empty string means
// "no draft produced" and is not an error.
type Drafter interface {
	DraftReply(ctx context.Context, email maildomain.IncomingEmail, classification maildomain.Classification) (string, error)
}

// Sender executes the externally visible send for one provider
type Sender interface {
	Send(ctx context.Context, accountID, to, subject, body, threadID string) error
}

// Notifier delivers the approval request and later edits it with the outcome
type Notifier interface {
	NotifyDraft(ctx context.Context, draft *maildomain.EmailDraft, summary string) (handle string, err error)
	EditNotification(ctx context.Context, handle, text string) error
}

// DecisionSink receives decision outcomes and sender context for later
// aggregation. Callers treat every error as log-and-drop.
type DecisionSink interface {
	RecordDecision(ctx context.Context, category, subject, outcome string, details map[string]string) error
	RecordPersonInteraction(ctx context.Context, email, name, accountID, importance string) error
}

// PollerUsecase runs one ingestion cycle across all configured accounts
type PollerUsecase interface {
	RunPollCycle(ctx context.Context, hoursBack int) (maildomain.PollSummary, error)
}

// ApprovalUsecase is the human-in-the-loop state machine over drafts
type ApprovalUsecase interface {
	Approve(ctx context.Context, draftID string) (*maildomain.EmailDraft, error)
	Cancel(ctx context.Context, draftID string) (*maildomain.EmailDraft, error)
	Get(ctx context.Context, draftID string) (*maildomain.EmailDraft, error)
	ListByStatus(ctx context.Context, status maildomain.DraftStatus) ([]*maildomain.EmailDraft, error)
}
