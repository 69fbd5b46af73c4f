package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Dialog   DialogConfig
	Voice    VoiceConfig
	Twilio   TwilioConfig
	Session  SessionConfig
	Ingest   IngestConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	AuditLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host         string
	Port         int
	Email        string
	Password     string
	SenderName   string
	DefaultTitle string
	Timeout      time.Duration
}

type APIKeys struct {
	OpenAI        string
	OpenAIBaseURL string
	Translate     string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "openai"
	EmbeddingModel    string
	OllamaBaseURL     string
	LLMProvider       string // "ollama" or "openai"
	LLMModel          string
}

type DialogConfig struct {
	LLMTimeout         time.Duration
	RetrievalTimeout   time.Duration
	RetrievalTopK      int
	RetrievalThreshold float64
}

type VoiceConfig struct {
	TranslateBaseURL string
	TranslateTimeout time.Duration
	TTSBaseURL       string
	TTSTimeout       time.Duration
}

type TwilioConfig struct {
	AuthToken string
	// PublicURL is the externally visible base used when validating webhook signatures
	PublicURL string
}

type SessionConfig struct {
	Store  string // "memory" or "redis"
	TTL    time.Duration
	Secret string
}

type IngestConfig struct {
	Topic   string
	Workers int
	DataDir string
}

// DefaultSessionSecret is only accepted when GO_ENV is development
const DefaultSessionSecret = "change-me"

var ErrInsecureSessionSecret = errors.New("SESSION_SECRET must be set outside development")

func (c *Config) Validate() error {
	if c.App.Environment == "development" {
		return nil
	}
	if len(c.Session.Secret) < 16 || c.Session.Secret == DefaultSessionSecret {
		return ErrInsecureSessionSecret
	}
	return nil
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			AuditLogFilePath:   getEnv("AUDIT_LOG_FILE_PATH", "events.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:         getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:         getEnvAsInt("SMTP_PORT", 587),
			Email:        getEnv("SENDER_EMAIL", ""),
			Password:     getEnv("SENDER_PASSWORD", ""),
			SenderName:   getEnv("SMTP_SENDER_NAME", "SAAS Assistant"),
			DefaultTitle: getEnv("SMTP_DEFAULT_TITLE", "Notes from SAAS IVR System"),
			Timeout:      getEnvAsDuration("SMTP_TIMEOUT", 20*time.Second),
		},
		Keys: APIKeys{
			OpenAI:        getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			Translate:     getEnv("TRANSLATE_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3.2:latest"),
		},
		Dialog: DialogConfig{
			LLMTimeout:         getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			RetrievalTimeout:   getEnvAsDuration("RETRIEVAL_TIMEOUT", 10*time.Second),
			RetrievalTopK:      getEnvAsInt("RETRIEVAL_TOP_K", 5),
			RetrievalThreshold: getEnvAsFloat("RETRIEVAL_THRESHOLD", 0.3),
		},
		Voice: VoiceConfig{
			TranslateBaseURL: getEnv("TRANSLATE_BASE_URL", "https://translation.googleapis.com/language/translate/v2"),
			TranslateTimeout: getEnvAsDuration("TRANSLATE_TIMEOUT", 5*time.Second),
			TTSBaseURL:       getEnv("TTS_BASE_URL", ""),
			TTSTimeout:       getEnvAsDuration("TTS_TIMEOUT", 15*time.Second),
		},
		Twilio: TwilioConfig{
			AuthToken: getEnv("TWILIO_AUTH_TOKEN", ""),
			PublicURL: getEnv("TWILIO_PUBLIC_URL", ""),
		},
		Session: SessionConfig{
			Store:  getEnv("SESSION_STORE", "memory"),
			TTL:    getEnvAsDuration("SESSION_TTL", time.Hour),
			Secret: getEnv("SESSION_SECRET", DefaultSessionSecret),
		},
		Ingest: IngestConfig{
			Topic:   getEnv("INGEST_TOPIC", "corpus_rows"),
			Workers: getEnvAsInt("INGEST_WORKERS", 4),
			DataDir: getEnv("INGEST_DATA_DIR", "data"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}
