package delivery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	maildomain "mailpilot-backend/internal/mail/domain"
	"mailpilot-backend/internal/mail/usecase"
	"mailpilot-backend/internal/notification"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubApproval struct {
	draft *maildomain.EmailDraft
	err   error
}

func (s *stubApproval) Approve(ctx context.Context, draftID string) (*maildomain.EmailDraft, error) {
	return s.draft, s.err
}

func (s *stubApproval) Cancel(ctx context.Context, draftID string) (*maildomain.EmailDraft, error) {
	return s.draft, s.err
}

func (s *stubApproval) Get(ctx context.Context, draftID string) (*maildomain.EmailDraft, error) {
	return s.draft, s.err
}

func (s *stubApproval) ListByStatus(ctx context.Context, status maildomain.DraftStatus) ([]*maildomain.EmailDraft, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.draft == nil {
		return nil, nil
	}
	return []*maildomain.EmailDraft{s.draft}, nil
}

type stubPoller struct {
	summary maildomain.PollSummary
	err     error
	window  int
}

func (s *stubPoller) RunPollCycle(ctx context.Context, hoursBack int) (maildomain.PollSummary, error) {
	s.window = hoursBack
	return s.summary, s.err
}

func draftRouter(approval usecase.ApprovalUsecase, poller usecase.PollerUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDraftHandler(approval, poller, 1)

	r := gin.New()
	r.GET("/api/drafts", h.ListDrafts)
	r.GET("/api/drafts/:id", h.GetDraft)
	r.POST("/api/drafts/:id/approve", h.ApproveDraft)
	r.POST("/api/drafts/:id/cancel", h.CancelDraft)
	r.POST("/api/poll", h.TriggerPoll)
	return r
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestApproveErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "unknown draft", err: maildomain.ErrDraftNotFound, wantStatus: http.StatusNotFound},
		{name: "already resolved", err: maildomain.ErrAlreadyResolved, wantStatus: http.StatusConflict},
		{name: "send failed", err: fmt.Errorf("%w: smtp 451", maildomain.ErrSendFailed), wantStatus: http.StatusBadGateway},
		{name: "internal error", err: fmt.Errorf("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := draftRouter(&stubApproval{err: tt.err}, &stubPoller{})
			w := doRequest(r, http.MethodPost, "/api/drafts/d-1/approve")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestApproveSuccess(t *testing.T) {
	t.Parallel()

	draft := &maildomain.EmailDraft{ID: "d-1", Status: maildomain.DraftStatusSent}
	r := draftRouter(&stubApproval{draft: draft}, &stubPoller{})

	w := doRequest(r, http.MethodPost, "/api/drafts/d-1/approve")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"sent"`)
}

func TestListDraftsRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	r := draftRouter(&stubApproval{}, &stubPoller{})
	w := doRequest(r, http.MethodGet, "/api/drafts?status=archived")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListDraftsDefaultsToPending(t *testing.T) {
	t.Parallel()

	draft := &maildomain.EmailDraft{ID: "d-1", Status: maildomain.DraftStatusPending}
	r := draftRouter(&stubApproval{draft: draft}, &stubPoller{})

	w := doRequest(r, http.MethodGet, "/api/drafts")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestTriggerPoll(t *testing.T) {
	t.Parallel()

	poller := &stubPoller{summary: maildomain.PollSummary{NewCount: 3, DraftCount: 1}}
	r := draftRouter(&stubApproval{}, poller)

	w := doRequest(r, http.MethodPost, "/api/poll?hours_back=12")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 12, poller.window)
	assert.Contains(t, w.Body.String(), `"new_emails":3`)
}

func TestTriggerPollValidation(t *testing.T) {
	t.Parallel()

	r := draftRouter(&stubApproval{}, &stubPoller{})
	w := doRequest(r, http.MethodPost, "/api/poll?hours_back=zero")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTriggerPollConflictWhileRunning(t *testing.T) {
	t.Parallel()

	r := draftRouter(&stubApproval{}, &stubPoller{err: usecase.ErrCycleInFlight})
	w := doRequest(r, http.MethodPost, "/api/poll")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCallbackResolvesSignedActions(t *testing.T) {
	t.Parallel()

	issuer := notification.NewActionTokenIssuer("test-secret", time.Hour)
	draft := &maildomain.EmailDraft{ID: "d-1", Status: maildomain.DraftStatusSent}

	gin.SetMode(gin.TestMode)
	h := NewCallbackHandler(&stubApproval{draft: draft}, issuer)
	r := gin.New()
	r.GET("/api/notifications/callback", h.HandleAction)

	token, err := issuer.Sign("d-1", notification.ActionApprove)
	require.NoError(t, err)

	w := doRequest(r, http.MethodGet, "/api/notifications/callback?token="+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"result":"sent"`)
}

func TestCallbackRejectsBadTokens(t *testing.T) {
	t.Parallel()

	issuer := notification.NewActionTokenIssuer("test-secret", time.Hour)

	gin.SetMode(gin.TestMode)
	h := NewCallbackHandler(&stubApproval{}, issuer)
	r := gin.New()
	r.GET("/api/notifications/callback", h.HandleAction)

	w := doRequest(r, http.MethodGet, "/api/notifications/callback")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodGet, "/api/notifications/callback?token=garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
