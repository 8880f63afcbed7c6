package config

import (
	"strings"
	"sync"
	"time"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// LLMConfig holds provider-independent call settings.
type LLMConfig struct {
	Provider    string
	Timeout     time.Duration
	MaxRetries  int
	Temperature float64
	MaxTokens   int
}

var (
	llmConfig *LLMConfig
	llmOnce   sync.Once
)

func LoadLLMConfig() *LLMConfig {
	llmOnce.Do(func() {
		llmConfig = &LLMConfig{
			Provider:    strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
			Timeout:     getEnvDuration("LLM_TIMEOUT", 30*time.Second),
			MaxRetries:  getEnvInt("LLM_MAX_RETRIES", 3),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.1),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 2000),
		}
	})
	return llmConfig
}
