package usecase

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	accountdomain "mailpilot-backend/internal/account/domain"
	maildomain "mailpilot-backend/internal/mail/domain"
	"mailpilot-backend/internal/mail/repository"
)

type pollerUsecase struct {
	accounts    []accountdomain.Account
	fetchers    map[string]Fetcher
	classifier  Classifier
	drafter     Drafter
	seenRepo    repository.SeenRepository
	draftRepo   repository.DraftRepository
	notifier    Notifier
	sink        DecisionSink
	callTimeout time.Duration
	inFlight    atomic.Bool
}

// NewPollerUsecase creates the poll-cycle orchestrator. Fetchers are keyed
// by provider; an account whose provider has no fetcher is skipped with a
// warning rather than failing the cycle.
func NewPollerUsecase(
	accounts []accountdomain.Account,
	fetchers map[string]Fetcher,
	classifier Classifier,
	drafter Drafter,
	seenRepo repository.SeenRepository,
	draftRepo repository.DraftRepository,
	notifier Notifier,
	sink DecisionSink,
	callTimeout time.Duration,
) PollerUsecase {
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &pollerUsecase{
		accounts:    accounts,
		fetchers:    fetchers,
		classifier:  classifier,
		drafter:     drafter,
		seenRepo:    seenRepo,
		draftRepo:   draftRepo,
		notifier:    notifier,
		sink:        sink,
		callTimeout: callTimeout,
	}
}

func (u *pollerUsecase) RunPollCycle(ctx context.Context, hoursBack int) (maildomain.PollSummary, error) {
	var summary maildomain.PollSummary

	if len(u.accounts) == 0 {
		return summary, nil
	}
	if !u.inFlight.CompareAndSwap(false, true) {
		return summary, ErrCycleInFlight
	}
	defer u.inFlight.Store(false)

	if hoursBack <= 0 {
		hoursBack = 1
	}

	emails := u.fetchAll(ctx, hoursBack)
	if len(emails) == 0 {
		log.Println("[Poller] No new emails detected")
		return summary, nil
	}
	log.Printf("[Poller] %d email(s) to process", len(emails))

	// Items are processed sequentially: draft creation and notification
	// ordering stay deterministic and classification never races itself.
	for _, email := range emails {
		u.processEmail(ctx, email, &summary)
	}

	log.Printf("[Poller] Cycle done: %d new email(s), %d draft(s) sent for approval",
		summary.NewCount, summary.DraftCount)
	return summary, nil
}

// fetchAll fans out one fetch per account. A failed account degrades to zero
// items; sibling fetches are unaffected. Within an account the source order
// is preserved; across accounts the order follows the configuration.
func (u *pollerUsecase) fetchAll(ctx context.Context, hoursBack int) []maildomain.IncomingEmail {
	results := make([][]maildomain.IncomingEmail, len(u.accounts))
	var wg sync.WaitGroup

	for i, account := range u.accounts {
		fetcher, ok := u.fetchers[account.Provider]
		if !ok {
			log.Printf("[Poller] No fetcher for provider %q (account %s), skipping", account.Provider, account.Address)
			continue
		}

		wg.Add(1)
		go func(i int, account accountdomain.Account, fetcher Fetcher) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, u.callTimeout)
			defer cancel()

			emails, err := fetcher.FetchSince(fetchCtx, account, hoursBack)
			if err != nil {
				log.Printf("[Poller] Fetch failed for %s: %v", account.Address, err)
				return
			}
			results[i] = emails
		}(i, account, fetcher)
	}
	wg.Wait()

	var all []maildomain.IncomingEmail
	for _, batch := range results {
		all = append(all, batch...)
	}
	return all
}

func (u *pollerUsecase) processEmail(ctx context.Context, email maildomain.IncomingEmail, summary *maildomain.PollSummary) {
	seen, err := u.seenRepo.HasSeen(ctx, email.AccountID, email.ID)
	if err != nil {
		log.Printf("[Poller] Seen lookup failed for %s/%s: %v", email.AccountID, email.ID, err)
		return
	}
	if seen {
		return
	}

	summary.NewCount++

	classifyCtx, cancel := context.WithTimeout(ctx, u.callTimeout)
	classification, err := u.classifier.ClassifyEmail(classifyCtx, email)
	cancel()
	if err != nil {
		// Classification failure still marks the item seen so it is not
		// retried forever; it just never produces a draft.
		log.Printf("[Poller] Classification failed for %s: %v", email.ID, err)
		classification = maildomain.Classification{Priority: maildomain.PriorityOther}
	}
	if !classification.Priority.Valid() {
		classification.Priority = maildomain.PriorityOther
	}

	// markSeen gates every downstream side effect: if it fails, no draft
	// and no notification may be produced for this item.
	if err := u.seenRepo.MarkSeen(ctx, email.AccountID, email.Provider, email.ID, classification.Priority); err != nil {
		log.Printf("[Poller] MarkSeen failed for %s/%s: %v", email.AccountID, email.ID, err)
		return
	}

	log.Printf("[Poller] Classified [%s] %.50s / %.60s", classification.Priority, email.Sender, email.Subject)

	// Best-effort sender context for the learning sink.
	senderEmail, senderName := maildomain.ParseSender(email.Sender)
	if err := u.sink.RecordPersonInteraction(ctx, senderEmail, senderName, email.AccountID, string(classification.Priority)); err != nil {
		log.Printf("[Poller] Person interaction record failed for %s: %v", senderEmail, err)
	}

	if !classification.Priority.NeedsAttention() || !classification.ReplyNeeded {
		return
	}

	u.draftAndNotify(ctx, email, classification, summary)
}

func (u *pollerUsecase) draftAndNotify(ctx context.Context, email maildomain.IncomingEmail, classification maildomain.Classification, summary *maildomain.PollSummary) {
	draftCtx, cancel := context.WithTimeout(ctx, u.callTimeout)
	content, err := u.drafter.DraftReply(draftCtx, email, classification)
	cancel()
	if err != nil {
		// At-most-once drafting: the item stays seen, so a failed draft is
		// dropped rather than risking duplicate notifications on retry.
		log.Printf("[Poller] Draft generation failed for %s: %v", email.ID, err)
		return
	}
	if content == "" {
		return
	}

	draft := &maildomain.EmailDraft{
		AccountID:        email.AccountID,
		Provider:         email.Provider,
		OriginalEmailID:  email.ID,
		OriginalThreadID: email.ThreadID,
		OriginalSender:   email.Sender,
		OriginalSubject:  email.Subject,
		DraftContent:     content,
		Priority:         classification.Priority,
		Status:           maildomain.DraftStatusPending,
	}
	if err := u.draftRepo.Create(ctx, draft); err != nil {
		log.Printf("[Poller] Draft persist failed for %s: %v", email.ID, err)
		return
	}
	summary.DraftCount++

	notifyCtx, cancel := context.WithTimeout(ctx, u.callTimeout)
	handle, err := u.notifier.NotifyDraft(notifyCtx, draft, classification.Summary)
	cancel()
	if err != nil {
		// The draft stays pending and actionable through the API; only the
		// notification shortcut is lost.
		log.Printf("[Poller] Notification failed for draft %s: %v", draft.ID, err)
		return
	}

	if err := u.draftRepo.AttachNotification(ctx, draft.ID, handle); err != nil {
		log.Printf("[Poller] Attach notification handle failed for draft %s: %v", draft.ID, err)
	}
}
