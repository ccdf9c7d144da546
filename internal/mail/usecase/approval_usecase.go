package usecase

import (
	"context"
	"fmt"
	"log"

	maildomain "mailpilot-backend/internal/mail/domain"
	"mailpilot-backend/internal/mail/repository"
)

const decisionCategory = "email_draft"

type approvalUsecase struct {
	draftRepo repository.DraftRepository
	senders   map[string]Sender
	notifier  Notifier
	sink      DecisionSink
}

// NewApprovalUsecase creates the draft approval state machine. Senders are
// keyed by provider.
func NewApprovalUsecase(
	draftRepo repository.DraftRepository,
	senders map[string]Sender,
	notifier Notifier,
	sink DecisionSink,
) ApprovalUsecase {
	return &approvalUsecase{
		draftRepo: draftRepo,
		senders:   senders,
		notifier:  notifier,
		sink:      sink,
	}
}

func (u *approvalUsecase) Approve(ctx context.Context, draftID string) (*maildomain.EmailDraft, error) {
	draft, err := u.draftRepo.ApproveWithSend(ctx, draftID, func(d *maildomain.EmailDraft) error {
		sender, ok := u.senders[d.Provider]
		if !ok {
			return fmt.Errorf("no sender configured for provider %q", d.Provider)
		}
		to, _ := maildomain.ParseSender(d.OriginalSender)
		subject := maildomain.BuildReplySubject(d.OriginalSubject)
		return sender.Send(ctx, d.AccountID, to, subject, d.DraftContent, d.OriginalThreadID)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Approval] Draft %s approved and sent", draftID)
	u.recordDecision(ctx, draft, "approved")
	u.editNotification(ctx, draft, fmt.Sprintf("✅ Sent — reply to %s (%s)", draft.OriginalSender, draft.OriginalSubject))
	return draft, nil
}

func (u *approvalUsecase) Cancel(ctx context.Context, draftID string) (*maildomain.EmailDraft, error) {
	draft, transitioned, err := u.draftRepo.CancelIfPending(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		// Already terminal: idempotent no-op, nothing is recorded twice.
		return draft, nil
	}

	log.Printf("[Approval] Draft %s cancelled", draftID)
	u.recordDecision(ctx, draft, "rejected")
	u.editNotification(ctx, draft, fmt.Sprintf("❌ Cancelled — draft for %s discarded", draft.OriginalSender))
	return draft, nil
}

func (u *approvalUsecase) Get(ctx context.Context, draftID string) (*maildomain.EmailDraft, error) {
	draft, err := u.draftRepo.FindByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, maildomain.ErrDraftNotFound
	}
	return draft, nil
}

func (u *approvalUsecase) ListByStatus(ctx context.Context, status maildomain.DraftStatus) ([]*maildomain.EmailDraft, error) {
	return u.draftRepo.FindByStatus(ctx, status)
}

// recordDecision feeds the learning sink; failures never block the
// transition that already committed.
func (u *approvalUsecase) recordDecision(ctx context.Context, draft *maildomain.EmailDraft, outcome string) {
	err := u.sink.RecordDecision(ctx, decisionCategory, draft.ID, outcome, map[string]string{
		"account_id": draft.AccountID,
		"provider":   draft.Provider,
		"priority":   string(draft.Priority),
		"sender":     draft.OriginalSender,
	})
	if err != nil {
		log.Printf("[Approval] Decision record failed for draft %s: %v", draft.ID, err)
	}
}

func (u *approvalUsecase) editNotification(ctx context.Context, draft *maildomain.EmailDraft, text string) {
	if draft.NotificationHandle == "" {
		return
	}
	if err := u.notifier.EditNotification(ctx, draft.NotificationHandle, text); err != nil {
		log.Printf("[Approval] Notification edit failed for draft %s: %v", draft.ID, err)
	}
}
