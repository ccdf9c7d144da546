package delivery

import (
	"errors"
	"net/http"
	"strconv"

	maildomain "mailpilot-backend/internal/mail/domain"
	"mailpilot-backend/internal/mail/usecase"

	"github.com/gin-gonic/gin"
)

type DraftHandler struct {
	approvalUsecase usecase.ApprovalUsecase
	pollerUsecase   usecase.PollerUsecase
	windowHours     int
}

func NewDraftHandler(approvalUsecase usecase.ApprovalUsecase, pollerUsecase usecase.PollerUsecase, windowHours int) *DraftHandler {
	return &DraftHandler{
		approvalUsecase: approvalUsecase,
		pollerUsecase:   pollerUsecase,
		windowHours:     windowHours,
	}
}

func (h *DraftHandler) ListDrafts(c *gin.Context) {
	status := maildomain.DraftStatus(c.DefaultQuery("status", string(maildomain.DraftStatusPending)))
	switch status {
	case maildomain.DraftStatusPending, maildomain.DraftStatusSent, maildomain.DraftStatusCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + string(status)})
		return
	}

	drafts, err := h.approvalUsecase.ListByStatus(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"drafts": drafts, "count": len(drafts)})
}

func (h *DraftHandler) GetDraft(c *gin.Context) {
	draft, err := h.approvalUsecase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, maildomain.ErrDraftNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, draft)
}

func (h *DraftHandler) ApproveDraft(c *gin.Context) {
	draft, err := h.approvalUsecase.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondApprovalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": draft.Status, "draft": draft})
}

func (h *DraftHandler) CancelDraft(c *gin.Context) {
	draft, err := h.approvalUsecase.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondApprovalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": draft.Status, "draft": draft})
}

// TriggerPoll runs one ingestion cycle on demand, outside the scheduler's
// cadence. The window defaults to the scheduler's but can be widened per call.
func (h *DraftHandler) TriggerPoll(c *gin.Context) {
	hoursBack := h.windowHours
	if raw := c.Query("hours_back"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hours_back must be a positive integer"})
			return
		}
		hoursBack = parsed
	}

	summary, err := h.pollerUsecase.RunPollCycle(c.Request.Context(), hoursBack)
	if err != nil {
		if errors.Is(err, usecase.ErrCycleInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": "a poll cycle is already running"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"new_emails": summary.NewCount, "drafts_created": summary.DraftCount})
}

func respondApprovalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, maildomain.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
	case errors.Is(err, maildomain.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "draft already resolved"})
	case errors.Is(err, maildomain.ErrSendFailed):
		// The draft stays pending, so the approval can simply be retried
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "status": maildomain.DraftStatusPending})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
