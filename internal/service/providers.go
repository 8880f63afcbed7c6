package service

import (
	"context"

	"github.com/fadilmartias/cv-evaluator/internal/config"
	"go.uber.org/zap"
)

// Providers bundles the optional AI capabilities. A nil field means the
// capability is unavailable and callers take their fallback path.
type Providers struct {
	LLM      LLMClient
	Embedder Embedder
}

func PolicyFromConfig(cfg *config.LLMConfig) RetryPolicy {
	p := DefaultRetryPolicy()
	if cfg.MaxRetries > 0 {
		p.Attempts = cfg.MaxRetries
	}
	if cfg.Timeout > 0 {
		p.Timeout = cfg.Timeout
	}
	return p
}

// NewProviders builds the configured chat provider and the Gemini embedder.
// Construction failures are logged and leave the capability nil.
func NewProviders(ctx context.Context, log *zap.Logger) Providers {
	llmCfg := config.LoadLLMConfig()
	policy := PolicyFromConfig(llmCfg)

	var providers Providers

	gemini, err := NewGeminiService(ctx, config.LoadGeminiConfig(), policy, log)
	if err != nil {
		log.Warn("gemini unavailable", zap.Error(err))
	} else {
		providers.Embedder = gemini
	}

	switch llmCfg.Provider {
	case config.ProviderOpenRouter:
		openRouter, err := NewOpenRouterService(config.LoadOpenRouterConfig(), policy, log)
		if err != nil {
			log.Warn("openrouter unavailable", zap.Error(err))
			break
		}
		providers.LLM = openRouter
	default:
		if gemini != nil {
			providers.LLM = gemini
		}
	}

	if providers.LLM == nil {
		log.Warn("no LLM provider available, evaluations will return fallback results")
	} else {
		log.Info("llm provider ready", zap.String("provider", providers.LLM.Name()))
	}
	return providers
}
