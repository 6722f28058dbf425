package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	ListenAddr       string
	DBPath           string
	AgentBackend     string
	GeminiAPIKey     string
	GeminiModel      string
	AnthropicAPIKey  string
	ClaudeModel      string
	TavilyAPIKey     string
	TavilyMaxResults int
	ExamplesDir      string
	ImagePath        string
	LogLevel         string
	LogFile          string
}

func Load() *Config {
	return &Config{
		ListenAddr:       getEnv("LISTEN_ADDR", ":8080"),
		DBPath:           getEnv("DB_PATH", "/data/labelens.db"),
		AgentBackend:     getEnv("AGENT_BACKEND", "gemini"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		ClaudeModel:      getEnv("CLAUDE_MODEL", "claude-sonnet-4-20250514"),
		TavilyAPIKey:     getEnv("TAVILY_API_KEY", ""),
		TavilyMaxResults: getEnvInt("TAVILY_MAX_RESULTS", 5),
		ExamplesDir:      getEnv("EXAMPLES_DIR", "./images"),
		ImagePath:        getEnv("IMAGE_LOCAL_PATH", "/data/images"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          getEnv("LOG_FILE", ""),
	}
}

// Validate checks that every secret the configured backend needs is present.
// The server must not start listening when it returns an error.
func (c *Config) Validate() error {
	var missing []string

	switch c.AgentBackend {
	case "gemini":
		if c.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case "claude":
		if c.AnthropicAPIKey == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	default:
		return fmt.Errorf("unknown AGENT_BACKEND %q (want gemini or claude)", c.AgentBackend)
	}

	if c.TavilyAPIKey == "" {
		missing = append(missing, "TAVILY_API_KEY")
	}

	if len(missing) > 0 {
		errs := make([]error, 0, len(missing))
		for _, name := range missing {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
		return errors.Join(errs...)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
