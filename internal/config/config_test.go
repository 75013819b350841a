package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "test-key")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.OpenRouterBaseURL)
	assert.Equal(t, 150, cfg.MaxOutputTokens)
	assert.InDelta(t, 0.3, cfg.Temperature, 0.001)
	assert.Equal(t, 30*time.Second, cfg.CompletionTimeout)
	assert.Equal(t, 4500, cfg.KnowledgeMaxChars)
	assert.Equal(t, "@supersecret", cfg.AdminSecret)
	assert.Equal(t, 5, cfg.HistoryWindow)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "test-key")
	t.Setenv("KNOWLEDGE_MAX_CHARS", "1000")
	t.Setenv("COMPLETION_TIMEOUT_SECONDS", "5")
	t.Setenv("ADMIN_SECRET", "hunter2")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.KnowledgeMaxChars)
	assert.Equal(t, 5*time.Second, cfg.CompletionTimeout)
	assert.Equal(t, "hunter2", cfg.AdminSecret)
}
