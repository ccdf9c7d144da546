package notification

import (
	"context"
	"fmt"
	"log"
	"strings"

	maildomain "mailpilot-backend/internal/mail/domain"
	"mailpilot-backend/pkg/fcm"

	"github.com/google/uuid"
)

const draftPreviewLimit = 800

// Service delivers draft approval requests over FCM webpush. The webpush
// tag is the notification handle: re-sending with the same tag replaces the
// original notification on the device, which is how the outcome edit works.
type Service struct {
	fcmClient    *fcm.Client
	deviceTokens []string
	baseURL      string
	tokens       *ActionTokenIssuer
}

// NewService creates the approval notification gateway. A nil FCM client
// disables delivery; NotifyDraft then returns an error the poller logs, and
// the draft stays reachable through the API.
func NewService(fcmClient *fcm.Client, deviceTokens []string, baseURL string, tokens *ActionTokenIssuer) *Service {
	return &Service{
		fcmClient:    fcmClient,
		deviceTokens: deviceTokens,
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokens:       tokens,
	}
}

// NotifyDraft sends the approval request with two mutually exclusive action
// affordances and returns the handle for later edits.
func (s *Service) NotifyDraft(ctx context.Context, draft *maildomain.EmailDraft, summary string) (string, error) {
	if s.fcmClient == nil {
		return "", fmt.Errorf("fcm client not configured")
	}
	if len(s.deviceTokens) == 0 {
		return "", fmt.Errorf("no device tokens configured")
	}

	approveToken, err := s.tokens.Sign(draft.ID, ActionApprove)
	if err != nil {
		return "", fmt.Errorf("sign approve token: %w", err)
	}
	cancelToken, err := s.tokens.Sign(draft.ID, ActionCancel)
	if err != nil {
		return "", fmt.Errorf("sign cancel token: %w", err)
	}

	handle := uuid.New().String()
	notification := fcm.NotificationData{
		Title: fmt.Sprintf("%s New mail — %s", priorityEmoji(draft.Priority), draft.AccountID),
		Body:  buildBody(draft, summary),
		Tag:   handle,
		Data: map[string]string{
			"type":        "draft_approval",
			"draft_id":    draft.ID,
			"priority":    string(draft.Priority),
			"approve_url": s.callbackURL(approveToken),
			"cancel_url":  s.callbackURL(cancelToken),
		},
	}

	failed, err := s.fcmClient.SendToDevices(ctx, s.deviceTokens, notification)
	if err != nil {
		return "", err
	}
	if len(failed) == len(s.deviceTokens) {
		return "", fmt.Errorf("notification rejected by all %d devices", len(failed))
	}

	log.Printf("[Notification] Approval request for draft %s delivered (handle %s)", draft.ID, handle)
	return handle, nil
}

// EditNotification replaces the delivered notification with the outcome text
func (s *Service) EditNotification(ctx context.Context, handle, text string) error {
	if s.fcmClient == nil {
		return fmt.Errorf("fcm client not configured")
	}
	notification := fcm.NotificationData{
		Title: "Draft update",
		Body:  text,
		Tag:   handle,
		Data: map[string]string{
			"type": "draft_update",
		},
	}
	_, err := s.fcmClient.SendToDevices(ctx, s.deviceTokens, notification)
	return err
}

func (s *Service) callbackURL(token string) string {
	return fmt.Sprintf("%s/api/notifications/callback?token=%s", s.baseURL, token)
}

func buildBody(draft *maildomain.EmailDraft, summary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %.100s\n", draft.OriginalSender)
	fmt.Fprintf(&b, "Subject: %.150s\n", draft.OriginalSubject)
	fmt.Fprintf(&b, "Priority: %s\n", draft.Priority)
	if summary != "" {
		fmt.Fprintf(&b, "Summary: %.300s\n", summary)
	}
	b.WriteString("\nDraft reply:\n")
	content := draft.DraftContent
	if len(content) > draftPreviewLimit {
		content = content[:draftPreviewLimit] + "…"
	}
	b.WriteString(content)
	return b.String()
}

func priorityEmoji(p maildomain.Priority) string {
	switch p {
	case maildomain.PriorityUrgent:
		return "🔴"
	case maildomain.PriorityImportant:
		return "🟡"
	default:
		return "🟢"
	}
}
