package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Environment string `validate:"required,oneof=development production test"`
	Port        string `validate:"required,numeric"`
	Token       string
	LogLevel    string
	LogFile     string
	OpenAI      OpenAIConfig
	UniDoc      UniDocConfig
	Routes      RoutesConfig
	Chat        ChatConfig
	Redis       RedisConfig
	Postgres    PostgresConfig
}

type OpenAIConfig struct {
	APIKey                string
	Model                 string `validate:"required"`
	BaseURL               string `validate:"omitempty,url"`
	Timeout               time.Duration
	AssistantID           string
	AssistantInstructions string
}

type UniDocConfig struct {
	LicenseKey string
}

type WordBounds struct {
	Min int `validate:"gte=0"`
	Max int `validate:"gtefield=Min"`
}

type RoutesConfig struct {
	Upload         WordBounds
	Memo           WordBounds
	Review         WordBounds
	MaxUploadBytes int64 `validate:"gt=0"`
}

type ChatConfig struct {
	Store       string        `validate:"oneof=memory redis"`
	SessionTTL  time.Duration `validate:"gt=0"`
	MaxSessions int           `validate:"gt=0"`
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PostgresConfig holds the connection parameters for the optional generation journal.
type PostgresConfig struct {
	User     string
	Password string
	Server   string
	Port     string
	DB       string
}

// Enabled reports whether enough parameters are present to open a connection.
func (p PostgresConfig) Enabled() bool {
	return p.User != "" && p.Server != "" && p.DB != ""
}

// URL builds the postgres connection string.
func (p PostgresConfig) URL() string {
	port := p.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s", p.User, p.Password, p.Server, port, p.DB)
}

func Load() *Config {
	return &Config{
		Environment: getEnv("ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		Token:       getEnv("BEARER_TOKEN", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
		OpenAI: OpenAIConfig{
			APIKey:                getEnv("OPENAI_API_KEY", ""),
			Model:                 getEnv("OPENAI_MODEL", "gpt-4o"),
			BaseURL:               getEnv("OPENAI_BASE_URL", ""),
			Timeout:               getEnvDuration("OPENAI_TIMEOUT", 2*time.Minute),
			AssistantID:           getEnv("OPENAI_ASSISTANT_ID", ""),
			AssistantInstructions: getEnv("OPENAI_ASSISTANT_INSTRUCTIONS", ""),
		},
		UniDoc: UniDocConfig{
			LicenseKey: getEnv("UNIDOC_LICENSE_API_KEY", ""),
		},
		Routes: RoutesConfig{
			Upload: WordBounds{
				Min: getEnvInt("UPLOAD_MIN_WORDS", 1),
				Max: getEnvInt("UPLOAD_MAX_WORDS", 2000),
			},
			Memo: WordBounds{
				Min: getEnvInt("MEMO_MIN_WORDS", 10),
				Max: getEnvInt("MEMO_MAX_WORDS", 5000),
			},
			Review: WordBounds{
				Min: getEnvInt("REVIEW_MIN_WORDS", 10),
				Max: getEnvInt("REVIEW_MAX_WORDS", 5000),
			},
			MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 20<<20)),
		},
		Chat: ChatConfig{
			Store:       getEnv("CHAT_STORE", "memory"),
			SessionTTL:  getEnvDuration("CHAT_SESSION_TTL", 2*time.Hour),
			MaxSessions: getEnvInt("CHAT_MAX_SESSIONS", 1000),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			User:     getEnv("POSTGRES_USER", ""),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Server:   getEnv("POSTGRES_SERVER", ""),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			DB:       getEnv("POSTGRES_DB", ""),
		},
	}
}

// Validate checks the loaded values before the server wires anything.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}
