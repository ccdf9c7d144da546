package delivery

import (
	"errors"
	"net/http"

	"mailpilot-backend/internal/mail/usecase"
	"mailpilot-backend/internal/notification"

	"github.com/gin-gonic/gin"
)

// CallbackHandler resolves the approve/cancel links embedded in push
// notifications. The signed token is the whole credential, so this endpoint
// sits outside the bearer-token middleware.
type CallbackHandler struct {
	approvalUsecase usecase.ApprovalUsecase
	tokens          *notification.ActionTokenIssuer
}

func NewCallbackHandler(approvalUsecase usecase.ApprovalUsecase, tokens *notification.ActionTokenIssuer) *CallbackHandler {
	return &CallbackHandler{
		approvalUsecase: approvalUsecase,
		tokens:          tokens,
	}
}

func (h *CallbackHandler) HandleAction(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	draftID, action, err := h.tokens.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	switch action {
	case notification.ActionApprove:
		draft, err := h.approvalUsecase.Approve(c.Request.Context(), draftID)
		if err != nil {
			respondCallbackError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": "sent", "draft_id": draft.ID})
	case notification.ActionCancel:
		draft, err := h.approvalUsecase.Cancel(c.Request.Context(), draftID)
		if err != nil {
			respondCallbackError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": "cancelled", "draft_id": draft.ID})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
	}
}

func respondCallbackError(c *gin.Context, err error) {
	if errors.Is(err, notification.ErrInvalidActionToken) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}
	respondApprovalError(c, err)
}
