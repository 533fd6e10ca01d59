package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL    string
	LogLevel       string
	Debug          bool
	ServiceName    string
	Environment    string
	Port           string
	AllowedOrigins []string
	APIToken       string
	WorkerCount    int
	BatchSize      int

	VimeoAPIKey    string
	VimeoProductID string

	MailchimpAPIKey       string
	MailchimpServerPrefix string
	MailchimpListID       string

	GeminiAPIKey string
	GeminiModel  string

	YouTubeAPIKey          string
	YouTubeChannelID       string
	GoogleOAuthClientID    string
	GoogleOAuthSecret      string
	GoogleOAuthRedirectURL string
	DatastoreProjectID     string

	AutosaveDebounce   time.Duration
	ReconcileRulesFile string
	PromptChunkSize    int
	PromptChunkOverlap int
}

func LoadConfig() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	allowedOrigins := []string{"*"}
	if ao := os.Getenv("ALLOWED_ORIGINS"); ao != "" {
		allowedOrigins = []string{}
		for _, origin := range strings.Split(ao, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	autosaveDebounce := 2 * time.Second
	if v := os.Getenv("AUTOSAVE_DEBOUNCE"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.New("AUTOSAVE_DEBOUNCE must be a duration such as 2s")
		}
		autosaveDebounce = parsed
	}

	return &Config{
		DatabaseURL:    databaseURL,
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		Debug:          getEnvOrDefault("DEBUG", "false") == "true",
		ServiceName:    getEnvOrDefault("SERVICE_NAME", "ops-dashboard"),
		Environment:    getEnvOrDefault("ENVIRONMENT", "development"),
		Port:           getEnvOrDefault("PORT", "8080"),
		AllowedOrigins: allowedOrigins,
		APIToken:       os.Getenv("API_TOKEN"),
		WorkerCount:    getEnvInt("WORKER_COUNT", 4),
		BatchSize:      getEnvInt("BATCH_SIZE", 25),

		VimeoAPIKey:    os.Getenv("VIMEO_OTT_API_KEY"),
		VimeoProductID: os.Getenv("VIMEO_OTT_PRODUCT_ID"),

		MailchimpAPIKey:       os.Getenv("MAILCHIMP_API_KEY"),
		MailchimpServerPrefix: os.Getenv("MAILCHIMP_SERVER_PREFIX"),
		MailchimpListID:       os.Getenv("MAILCHIMP_LIST_ID"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),

		YouTubeAPIKey:          os.Getenv("YOUTUBE_API_KEY"),
		YouTubeChannelID:       os.Getenv("YOUTUBE_CHANNEL_ID"),
		GoogleOAuthClientID:    os.Getenv("GOOGLE_OAUTH_CLIENT_ID"),
		GoogleOAuthSecret:      os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET"),
		GoogleOAuthRedirectURL: os.Getenv("GOOGLE_OAUTH_REDIRECT_URL"),
		DatastoreProjectID:     os.Getenv("DATASTORE_PROJECT_ID"),

		AutosaveDebounce:   autosaveDebounce,
		ReconcileRulesFile: os.Getenv("RECONCILE_RULES_FILE"),
		PromptChunkSize:    getEnvInt("PROMPT_CHUNK_SIZE", 4000),
		PromptChunkOverlap: getEnvInt("PROMPT_CHUNK_OVERLAP", 200),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}
