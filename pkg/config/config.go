package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	accountdomain "mailpilot-backend/internal/account/domain"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	APIToken    string
	DatabaseURL string
	BaseURL     string

	// Poll pipeline
	Accounts        []accountdomain.Account
	PollInterval    time.Duration
	PollWindowHours int
	CallTimeout     time.Duration

	// Approval notifications
	FirebaseCredentials string
	DeviceTokens        []string
	ActionTokenSecret   string
	ActionTokenTTL      time.Duration

	// Learning sink
	GoogleProjectID string
	PubSubTopic     string

	// AI provider
	AIProvider    string
	GeminiApiKey  string
	OllamaBaseURL string
	OllamaModel   string

	// Gmail OAuth app
	GoogleClientID     string
	GoogleClientSecret string

	// Generic IMAP account settings
	IMAPAddr     string
	SMTPAddr     string
	IMAPUsername string
	IMAPPassword string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		APIToken:    getEnv("API_TOKEN", ""),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/mailpilot?sslmode=disable"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),

		Accounts:        parseAccounts(getEnv("MAIL_ACCOUNTS", "")),
		PollInterval:    getDuration("POLL_INTERVAL", 15*time.Minute),
		PollWindowHours: getInt("POLL_WINDOW_HOURS", 1),
		CallTimeout:     getDuration("CALL_TIMEOUT", 30*time.Second),

		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		DeviceTokens:        splitList(getEnv("DEVICE_TOKENS", "")),
		ActionTokenSecret:   getEnv("ACTION_TOKEN_SECRET", ""),
		ActionTokenTTL:      getDuration("ACTION_TOKEN_TTL", 48*time.Hour),

		GoogleProjectID: getEnv("GOOGLE_PROJECT_ID", ""),
		PubSubTopic:     getEnv("PUBSUB_DECISIONS_TOPIC", "draft-decisions"),

		AIProvider:    getEnv("AI_PROVIDER", "auto"),
		GeminiApiKey:  getEnv("GEMINI_API_KEY", ""),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", ""),
		OllamaModel:   getEnv("OLLAMA_MODEL", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),

		IMAPAddr:     getEnv("IMAP_ADDR", ""),
		SMTPAddr:     getEnv("SMTP_ADDR", ""),
		IMAPUsername: getEnv("IMAP_USERNAME", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
	}
}

// parseAccounts reads "address:provider" pairs from a comma-separated list.
// A pair without a provider defaults to gmail.
func parseAccounts(raw string) []accountdomain.Account {
	var accounts []accountdomain.Account
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		address := entry
		provider := accountdomain.ProviderGmail
		if i := strings.LastIndex(entry, ":"); i != -1 {
			address = strings.TrimSpace(entry[:i])
			provider = strings.TrimSpace(entry[i+1:])
		}
		if address == "" {
			continue
		}
		accounts = append(accounts, accountdomain.Account{
			Address:  address,
			Provider: provider,
		})
	}
	return accounts
}

func splitList(raw string) []string {
	var out []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
