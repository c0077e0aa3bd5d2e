package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Rams    RamsConfig
	Ai      AIConfig
	Session SessionConfig
	Events  EventsConfig
	Otel    OtelConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type RamsConfig struct {
	TemplatePath  string
	PromptPath    string
	QuestionCount int
}

type AIConfig struct {
	LLMProvider       string // "openai" or "ollama"
	LLMModel          string
	OpenAIAPIKey      string
	OpenAIBaseURL     string // any OpenAI-compatible endpoint
	OllamaBaseURL     string
	Temperature       float64
	MaxTokens         int
	GenerationTimeout time.Duration
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type EventsConfig struct {
	Topic   string
	NatsURL string // empty disables forwarding
}

type OtelConfig struct {
	Enabled  bool
	Endpoint string
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
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/rams.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Rams: RamsConfig{
			TemplatePath:  getEnv("TEMPLATE_PATH", "templates/template_rams.docx"),
			PromptPath:    getEnv("PROMPT_PATH", "prompts/system_prompt.txt"),
			QuestionCount: getEnvAsInt("QUESTION_COUNT", 20),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("OPENAI_MODEL", "gpt-4"),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Temperature:       getEnvAsFloat("TEMPERATURE", 0.2),
			MaxTokens:         getEnvAsInt("MAX_TOKENS", 4300),
			GenerationTimeout: time.Duration(getEnvAsInt("GENERATION_TIMEOUT_SECONDS", 120)) * time.Second,
		},
		Session: SessionConfig{
			TTL:           time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
			SweepInterval: time.Duration(getEnvAsInt("SESSION_SWEEP_MINUTES", 10)) * time.Minute,
		},
		Events: EventsConfig{
			Topic:   getEnv("LIFECYCLE_TOPIC", "rams.lifecycle"),
			NatsURL: getEnv("NATS_URL", ""),
		},
		Otel: OtelConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
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
