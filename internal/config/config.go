package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Store     StoreConfig
	Keys      APIKeys
	Ai        AIConfig
	Upload    UploadConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	ExchangeLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Driver      string // "postgres" or "sqlite"
	Connection  string
	AutoMigrate bool
}

type StoreConfig struct {
	Driver    string // "gorm", "redis", "memory" or "null"
	MemoryTTL time.Duration
	RedisTTL  time.Duration
}

type APIKeys struct {
	GoogleGemini   string
	HuggingFace    string
	OpenAI         string
	TelemetryTopic string
}

type AIConfig struct {
	Provider      string // "gemini", "ollama", "huggingface" or "openai"
	Model         string
	BaseURL       string
	OllamaBaseURL string
	Timeout       time.Duration
}

type UploadConfig struct {
	TempDir  string
	MaxBytes int
	MaxChars int
}

type TelemetryConfig struct {
	OtelEnabled  bool
	OtelEndpoint string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			ExchangeLogPath:    getEnv("EXCHANGE_LOG_PATH", "logs/exchanges.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Driver:      getEnv("DB_DRIVER", "sqlite"),
			Connection:  getEnv("DB_CONNECTION_STRING", "chat_history.db"),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Store: StoreConfig{
			Driver:    getEnv("STORE_DRIVER", "gorm"),
			MemoryTTL: getEnvAsDuration("STORE_MEMORY_TTL", 0),
			RedisTTL:  getEnvAsDuration("STORE_REDIS_TTL", 24*time.Hour),
		},
		Keys: APIKeys{
			GoogleGemini:   getEnv("GOOGLE_GEMINI_API_KEY", getEnv("GEMINI_API_KEY", "")),
			HuggingFace:    getEnv("HUGGINGFACE_API_KEY", ""),
			OpenAI:         getEnv("OPENAI_API_KEY", ""),
			TelemetryTopic: getEnv("TELEMETRY_TOPIC_NAME", "CHAT_TURN_RECORDED"),
		},
		Ai: AIConfig{
			Provider:      getEnv("LLM_PROVIDER", "gemini"),
			Model:         getEnv("LLM_MODEL", ""),
			BaseURL:       getEnv("LLM_BASE_URL", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Timeout:       getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		},
		Upload: UploadConfig{
			TempDir:  getEnv("UPLOAD_TEMP_DIR", os.TempDir()),
			MaxBytes: getEnvAsInt("UPLOAD_MAX_BYTES", 16*1024*1024),
			MaxChars: getEnvAsInt("UPLOAD_MAX_CHARS", 100_000),
		},
		Telemetry: TelemetryConfig{
			OtelEnabled:  getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

// LLMBaseURL picks the endpoint for the configured provider.
func (c *Config) LLMBaseURL() string {
	if c.Ai.BaseURL != "" {
		return c.Ai.BaseURL
	}
	if c.Ai.Provider == "ollama" {
		return c.Ai.OllamaBaseURL
	}
	return ""
}

// LLMAPIKey returns the key matching the configured provider.
func (c *Config) LLMAPIKey() string {
	switch c.Ai.Provider {
	case "huggingface":
		return c.Keys.HuggingFace
	case "openai":
		return c.Keys.OpenAI
	case "ollama":
		return ""
	default:
		return c.Keys.GoogleGemini
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
