package api

import (
	mailDelivery "mailpilot-backend/internal/mail/delivery"
	mailUsecase "mailpilot-backend/internal/mail/usecase"
	"mailpilot-backend/internal/notification"
	"mailpilot-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	draftHandler    *mailDelivery.DraftHandler
	callbackHandler *mailDelivery.CallbackHandler
	config          *config.Config
}

func NewHandler(approvalUc mailUsecase.ApprovalUsecase, pollerUc mailUsecase.PollerUsecase, tokens *notification.ActionTokenIssuer, cfg *config.Config) *Handler {
	return &Handler{
		draftHandler:    mailDelivery.NewDraftHandler(approvalUc, pollerUc, cfg.PollWindowHours),
		callbackHandler: mailDelivery.NewCallbackHandler(approvalUc, tokens),
		config:          cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	SetupRoutes(r, h.draftHandler, h.callbackHandler, h.config)

	return r.Run(addr)
}
