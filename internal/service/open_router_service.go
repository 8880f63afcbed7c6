package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fadilmartias/cv-evaluator/internal/config"
	"github.com/fadilmartias/cv-evaluator/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// OpenRouterService talks to the OpenAI-compatible chat completions endpoint.
type OpenRouterService struct {
	client *resty.Client
	model  string
	policy RetryPolicy
	sleep  sleepFunc
	log    *zap.Logger
}

func NewOpenRouterService(cfg *config.OpenRouterConfig, policy RetryPolicy, log *zap.Logger) (*OpenRouterService, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("OPENROUTER_API_KEY not set")
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &OpenRouterService{
		client: client,
		model:  cfg.Model,
		policy: policy,
		sleep:  sleepCtx,
		log:    logger.WithFields(log, zap.String("ai_provider", config.ProviderOpenRouter), zap.String("ai_model", cfg.Model)),
	}, nil
}

func (s *OpenRouterService) Name() string {
	return config.ProviderOpenRouter
}

func (s *OpenRouterService) Call(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	payload := map[string]any{
		"model":       s.model,
		"messages":    messages,
		"temperature": temperature,
	}
	if maxTokens > 0 {
		payload["max_tokens"] = maxTokens
	}

	return withRetry(ctx, s.policy, s.Name(), s.log, s.sleep, func(ctx context.Context) (string, error) {
		resp, err := s.client.R().
			SetContext(ctx).
			SetBody(payload).
			Post("/chat/completions")
		if err != nil {
			return "", err
		}
		if resp.IsError() {
			return "", &StatusError{Code: resp.StatusCode(), Body: logger.TruncateForLog(resp.String(), 300)}
		}

		s.log.Debug("llm response", zap.Int("status", resp.StatusCode()), zap.String("body", logger.TruncateForLog(resp.String(), 200)))

		text := gjson.Get(resp.String(), "choices.0.message.content").String()
		if strings.TrimSpace(text) == "" {
			return "", permanent(errors.New("no content in completion response"))
		}
		return text, nil
	})
}
