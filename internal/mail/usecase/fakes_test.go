package usecase

import (
	"context"
	"fmt"
	"sync"

	accountdomain "mailpilot-backend/internal/account/domain"
	maildomain "mailpilot-backend/internal/mail/domain"

	"github.com/google/uuid"
)

type fakeFetcher struct {
	emails  []maildomain.IncomingEmail
	err     error
	block   chan struct{} // when non-nil, FetchSince waits until closed
	started chan struct{} // when non-nil, closed once on first entry
	once    sync.Once
}

func (f *fakeFetcher) FetchSince(ctx context.Context, account accountdomain.Account, hoursBack int) ([]maildomain.IncomingEmail, error) {
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.emails, nil
}

type fakeClassifier struct {
	mu     sync.Mutex
	result maildomain.Classification
	err    error
	calls  int
}

func (f *fakeClassifier) ClassifyEmail(ctx context.Context, email maildomain.IncomingEmail) (maildomain.Classification, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return maildomain.Classification{}, f.err
	}
	return f.result, nil
}

func (f *fakeClassifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeDrafter struct {
	content string
	err     error
}

func (f *fakeDrafter) DraftReply(ctx context.Context, email maildomain.IncomingEmail, classification maildomain.Classification) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

type sentMessage struct {
	AccountID string
	To        string
	Subject   string
	Body      string
	ThreadID  string
}

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []sentMessage
}

func (f *fakeSender) Send(ctx context.Context, accountID, to, subject, body, threadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{AccountID: accountID, To: to, Subject: subject, Body: body, ThreadID: threadID})
	return nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeSeenRepo struct {
	mu      sync.Mutex
	seen    map[string]bool
	lookErr error
	markErr error
}

func newFakeSeenRepo() *fakeSeenRepo {
	return &fakeSeenRepo{seen: make(map[string]bool)}
}

func seenKey(accountID, emailID string) string {
	return accountID + "/" + emailID
}

func (f *fakeSeenRepo) HasSeen(ctx context.Context, accountID, emailID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookErr != nil {
		return false, f.lookErr
	}
	return f.seen[seenKey(accountID, emailID)], nil
}

func (f *fakeSeenRepo) MarkSeen(ctx context.Context, accountID, provider, emailID string, priority maildomain.Priority) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.seen[seenKey(accountID, emailID)] = true
	return nil
}

// fakeDraftRepo mirrors the conditional-update semantics of the real
// repository: ApproveWithSend holds the lock across the send, and
// CancelIfPending only transitions pending rows.
type fakeDraftRepo struct {
	mu        sync.Mutex
	drafts    map[string]*maildomain.EmailDraft
	createErr error
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{drafts: make(map[string]*maildomain.EmailDraft)}
}

func (f *fakeDraftRepo) Create(ctx context.Context, draft *maildomain.EmailDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if draft.ID == "" {
		draft.ID = uuid.New().String()
	}
	if draft.Status == "" {
		draft.Status = maildomain.DraftStatusPending
	}
	cp := *draft
	f.drafts[draft.ID] = &cp
	return nil
}

func (f *fakeDraftRepo) FindByID(ctx context.Context, id string) (*maildomain.EmailDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	draft, ok := f.drafts[id]
	if !ok {
		return nil, nil
	}
	cp := *draft
	return &cp, nil
}

func (f *fakeDraftRepo) FindByStatus(ctx context.Context, status maildomain.DraftStatus) ([]*maildomain.EmailDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*maildomain.EmailDraft
	for _, draft := range f.drafts {
		if draft.Status == status {
			cp := *draft
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeDraftRepo) AttachNotification(ctx context.Context, id, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	draft, ok := f.drafts[id]
	if !ok {
		return fmt.Errorf("draft %s not found", id)
	}
	draft.NotificationHandle = handle
	return nil
}

func (f *fakeDraftRepo) ApproveWithSend(ctx context.Context, id string, send func(*maildomain.EmailDraft) error) (*maildomain.EmailDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	draft, ok := f.drafts[id]
	if !ok {
		return nil, maildomain.ErrDraftNotFound
	}
	if draft.Status != maildomain.DraftStatusPending {
		return nil, maildomain.ErrAlreadyResolved
	}

	cp := *draft
	if err := send(&cp); err != nil {
		return nil, fmt.Errorf("%w: %v", maildomain.ErrSendFailed, err)
	}

	draft.Status = maildomain.DraftStatusSent
	out := *draft
	return &out, nil
}

func (f *fakeDraftRepo) CancelIfPending(ctx context.Context, id string) (*maildomain.EmailDraft, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	draft, ok := f.drafts[id]
	if !ok {
		return nil, false, maildomain.ErrDraftNotFound
	}
	transitioned := false
	if draft.Status == maildomain.DraftStatusPending {
		draft.Status = maildomain.DraftStatusCancelled
		transitioned = true
	}
	cp := *draft
	return &cp, transitioned, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	notifyErr error
	editErr   error
	notified  []string // draft IDs
	edits     []string // edited texts
	nextID    int
}

func (f *fakeNotifier) NotifyDraft(ctx context.Context, draft *maildomain.EmailDraft, summary string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notifyErr != nil {
		return "", f.notifyErr
	}
	f.notified = append(f.notified, draft.ID)
	f.nextID++
	return fmt.Sprintf("handle-%d", f.nextID), nil
}

func (f *fakeNotifier) EditNotification(ctx context.Context, handle, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, text)
	return nil
}

type recordedDecision struct {
	Category string
	Subject  string
	Outcome  string
	Details  map[string]string
}

type recordedPerson struct {
	Email      string
	Name       string
	AccountID  string
	Importance string
}

type fakeSink struct {
	mu          sync.Mutex
	decisionErr error
	decisions   []recordedDecision
	persons     []recordedPerson
}

func (f *fakeSink) RecordDecision(ctx context.Context, category, subject, outcome string, details map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.decisionErr != nil {
		return f.decisionErr
	}
	f.decisions = append(f.decisions, recordedDecision{Category: category, Subject: subject, Outcome: outcome, Details: details})
	return nil
}

func (f *fakeSink) RecordPersonInteraction(ctx context.Context, email, name, accountID, importance string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.persons = append(f.persons, recordedPerson{Email: email, Name: name, AccountID: accountID, Importance: importance})
	return nil
}
