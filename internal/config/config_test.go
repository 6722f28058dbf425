package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg := Load()

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.NotEmpty(t, cfg.AgentBackend)
	assert.NotEmpty(t, cfg.GeminiModel)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("AGENT_BACKEND", "claude")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test123")
	t.Setenv("TAVILY_MAX_RESULTS", "3")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "claude", cfg.AgentBackend)
	assert.Equal(t, "sk-test123", cfg.AnthropicAPIKey)
	assert.Equal(t, 3, cfg.TavilyMaxResults)
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("TAVILY_MAX_RESULTS", "many")

	cfg := Load()
	assert.Equal(t, 5, cfg.TavilyMaxResults)
}

func TestValidateMissingSecrets(t *testing.T) {
	t.Setenv("AGENT_BACKEND", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("TAVILY_API_KEY", "")

	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	assert.Contains(t, err.Error(), "TAVILY_API_KEY")
}

func TestValidateMissingClaudeKey(t *testing.T) {
	t.Setenv("AGENT_BACKEND", "claude")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("TAVILY_API_KEY", "tvly-test")

	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
	assert.NotContains(t, err.Error(), "TAVILY_API_KEY")
}

func TestValidateUnknownBackend(t *testing.T) {
	t.Setenv("AGENT_BACKEND", "mystery")

	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AGENT_BACKEND")
}

func TestValidateComplete(t *testing.T) {
	t.Setenv("AGENT_BACKEND", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-test")
	t.Setenv("TAVILY_API_KEY", "tvly-test")

	assert.NoError(t, Load().Validate())
}
