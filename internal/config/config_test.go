package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "OPENAI_MODEL", "TEMPERATURE", "MAX_TOKENS", "SESSION_TTL_MINUTES", "NATS_URL", "OTEL_ENABLED", "QUESTION_COUNT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8000", cfg.App.Port)
	assert.Equal(t, "gpt-4", cfg.Ai.LLMModel)
	assert.Equal(t, 0.2, cfg.Ai.Temperature)
	assert.Equal(t, 4300, cfg.Ai.MaxTokens)
	assert.Equal(t, 20, cfg.Rams.QuestionCount)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Empty(t, cfg.Events.NatsURL)
	assert.False(t, cfg.Otel.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("TEMPERATURE", "0.7")
	t.Setenv("SESSION_TTL_MINUTES", "5")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "30")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("GO_ENV", "production")

	cfg := Load()
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "gpt-4o", cfg.Ai.LLMModel)
	assert.Equal(t, 0.7, cfg.Ai.Temperature)
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 30*time.Second, cfg.Ai.GenerationTimeout)
	assert.True(t, cfg.Otel.Enabled)
	assert.True(t, cfg.IsProduction())
}
