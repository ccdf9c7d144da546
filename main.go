package main

import (
	"context"
	"log"
	"strings"

	api "mailpilot-backend/cmd/api"
	accountdomain "mailpilot-backend/internal/account/domain"
	accountRepo "mailpilot-backend/internal/account/repository"
	"mailpilot-backend/internal/learning"
	learningdomain "mailpilot-backend/internal/learning/domain"
	learningRepo "mailpilot-backend/internal/learning/repository"
	maildomain "mailpilot-backend/internal/mail/domain"
	mailRepo "mailpilot-backend/internal/mail/repository"
	"mailpilot-backend/internal/mail/scheduler"
	mailUsecase "mailpilot-backend/internal/mail/usecase"
	"mailpilot-backend/internal/notification"
	"mailpilot-backend/pkg/ai"
	"mailpilot-backend/pkg/config"
	"mailpilot-backend/pkg/database"
	"mailpilot-backend/pkg/fcm"
	"mailpilot-backend/pkg/gmail"
	"mailpilot-backend/pkg/imap"

	"cloud.google.com/go/pubsub"
	"golang.org/x/oauth2"
)

// gmailTokenStore adapts the account token repository to gmail.TokenStore,
// pinning the provider column
type gmailTokenStore struct {
	repo accountRepo.TokenRepository
}

func (s *gmailTokenStore) Load(ctx context.Context, accountID string) (*oauth2.Token, error) {
	return s.repo.Load(ctx, accountID, accountdomain.ProviderGmail)
}

func (s *gmailTokenStore) Save(ctx context.Context, accountID string, token *oauth2.Token) error {
	return s.repo.Save(ctx, accountID, accountdomain.ProviderGmail, token)
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&maildomain.SeenEmail{}, &maildomain.EmailDraft{}, &accountdomain.OAuthToken{}, &learningdomain.LearningEntry{}, &learningdomain.PersonContext{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	seenRepository := mailRepo.NewSeenRepository(db)
	draftRepository := mailRepo.NewDraftRepository(db)
	tokenRepository := accountRepo.NewTokenRepository(db)
	learningRepository := learningRepo.NewLearningRepository(db)

	// Initialize mail provider services
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, &gmailTokenStore{repo: tokenRepository})
	imapService := imap.NewService(imap.Config{
		IMAPAddr: cfg.IMAPAddr,
		SMTPAddr: cfg.SMTPAddr,
		Username: cfg.IMAPUsername,
		Password: cfg.IMAPPassword,
	})

	fetchers := map[string]mailUsecase.Fetcher{
		accountdomain.ProviderGmail: gmailService,
		accountdomain.ProviderIMAP:  imapService,
	}
	senders := map[string]mailUsecase.Sender{
		accountdomain.ProviderGmail: gmailService,
		accountdomain.ProviderIMAP:  imapService,
	}

	// Initialize AI service
	aiService, err := ai.NewAssistantService(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:  cfg.GeminiApiKey,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	})
	if err != nil {
		log.Fatal("Failed to initialize AI service:", err)
	}
	log.Printf("AI service initialized with provider: %s", cfg.AIProvider)

	// Initialize FCM client (optional, drafts still accumulate without it)
	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
			fcmClient = nil
		}
	} else {
		log.Printf("[WARN] No Firebase credentials configured, FCM disabled")
	}

	// Initialize notification service and action token issuer
	actionTokens := notification.NewActionTokenIssuer(cfg.ActionTokenSecret, cfg.ActionTokenTTL)
	notifService := notification.NewService(fcmClient, cfg.DeviceTokens, cfg.BaseURL, actionTokens)

	// Initialize learning sink with optional Pub/Sub export
	var decisionsTopic *pubsub.Topic
	if cfg.GoogleProjectID != "" {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GoogleProjectID)
		if err != nil {
			log.Printf("[WARN] Failed to initialize Pub/Sub client (decision export disabled): %v", err)
		} else {
			topicName := cfg.PubSubTopic
			if parts := strings.Split(topicName, "/"); len(parts) > 1 {
				topicName = parts[len(parts)-1]
			}
			decisionsTopic = pubsubClient.Topic(topicName)
		}
	}
	learningService := learning.NewService(learningRepository, decisionsTopic)

	// Initialize use cases (dependency injection)
	pollerUsecaseInstance := mailUsecase.NewPollerUsecase(cfg.Accounts, fetchers, aiService, aiService, seenRepository, draftRepository, notifService, learningService, cfg.CallTimeout)
	approvalUsecaseInstance := mailUsecase.NewApprovalUsecase(draftRepository, senders, notifService, learningService)

	// Start the background poll scheduler
	pollScheduler := scheduler.NewPollScheduler(pollerUsecaseInstance, cfg.PollInterval, cfg.PollWindowHours)
	pollScheduler.Start()
	defer pollScheduler.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(approvalUsecaseInstance, pollerUsecaseInstance, actionTokens, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
