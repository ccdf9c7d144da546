package api

import (
	"net/http"

	mailDelivery "mailpilot-backend/internal/mail/delivery"
	"mailpilot-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, draftHandler *mailDelivery.DraftHandler, callbackHandler *mailDelivery.CallbackHandler, cfg *config.Config) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Notification callback (signed token is the credential)
		api.GET("/notifications/callback", callbackHandler.HandleAction)

		// Draft routes (protected)
		drafts := api.Group("/drafts")
		drafts.Use(TokenMiddleware(cfg.APIToken))
		{
			drafts.GET("", draftHandler.ListDrafts)
			drafts.GET("/:id", draftHandler.GetDraft)
			drafts.POST("/:id/approve", draftHandler.ApproveDraft)
			drafts.POST("/:id/cancel", draftHandler.CancelDraft)
		}

		// Manual poll trigger (protected)
		api.POST("/poll", TokenMiddleware(cfg.APIToken), draftHandler.TriggerPoll)
	}
}
