package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/fadilmartias/cv-evaluator/internal/apperror"
	"github.com/fadilmartias/cv-evaluator/internal/config"
	"github.com/fadilmartias/cv-evaluator/internal/logger"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const maxEmbeddingInput = 10000

// geminiModels is the subset of *genai.Models used here.
type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type GeminiService struct {
	models         geminiModels
	model          string
	embeddingModel string
	policy         RetryPolicy
	sleep          sleepFunc
	log            *zap.Logger

	// generation and embedding trip independently.
	generateBreaker *circuitBreaker
	embedBreaker    *circuitBreaker
}

func NewGeminiService(ctx context.Context, cfg *config.GeminiConfig, policy RetryPolicy, log *zap.Logger) (*GeminiService, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGeminiService(client.Models, cfg, policy, log), nil
}

func newGeminiService(models geminiModels, cfg *config.GeminiConfig, policy RetryPolicy, log *zap.Logger) *GeminiService {
	return &GeminiService{
		models:          models,
		model:           cfg.Model,
		embeddingModel:  cfg.EmbeddingModel,
		policy:          policy,
		sleep:           sleepCtx,
		log:             logger.WithFields(log, zap.String("ai_provider", config.ProviderGemini)),
		generateBreaker: newCircuitBreaker("generate", cfg.CircuitThreshold, cfg.CircuitCooldown),
		embedBreaker:    newCircuitBreaker("embed", cfg.CircuitThreshold, cfg.CircuitCooldown),
	}
}

func (s *GeminiService) Name() string {
	return config.ProviderGemini
}

// Call maps system messages to the system instruction and the rest to
// user/model turns.
func (s *GeminiService) Call(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	contents, system := toGeminiContents(messages)
	if len(contents) == 0 {
		return "", &apperror.LLMCallError{Provider: s.Name(), Err: errors.New("no user content to send")}
	}
	if err := s.generateBreaker.allow(); err != nil {
		return "", &apperror.LLMCallError{Provider: s.Name(), Err: err}
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(temperature)),
		SystemInstruction: system,
	}
	if maxTokens > 0 {
		genConfig.MaxOutputTokens = int32(maxTokens)
	}

	text, err := withRetry(ctx, s.policy, s.Name(), s.log, s.sleep, func(ctx context.Context) (string, error) {
		result, err := s.models.GenerateContent(ctx, s.model, contents, genConfig)
		if err != nil {
			return "", err
		}
		if err := validateGenerateResponse(result); err != nil {
			return "", permanent(fmt.Errorf("invalid response: %w", err))
		}
		return result.Text(), nil
	})
	s.generateBreaker.record(err)
	return text, err
}

// Embed returns nil when the embedding cannot be produced.
func (s *GeminiService) Embed(ctx context.Context, text string) []float32 {
	trimmedText := strings.TrimSpace(text)
	if trimmedText == "" {
		return nil
	}
	if runes := []rune(trimmedText); len(runes) > maxEmbeddingInput {
		s.log.Debug("embedding input truncated", zap.Int("length", len(runes)))
		trimmedText = string(runes[:maxEmbeddingInput])
	}
	if err := s.embedBreaker.allow(); err != nil {
		s.log.Warn("embedding skipped", zap.Error(err))
		return nil
	}

	content := []*genai.Content{genai.NewContentFromText(trimmedText, genai.RoleUser)}
	values, err := withRetry(ctx, s.policy, s.Name(), s.log, s.sleep, func(ctx context.Context) ([]float32, error) {
		result, err := s.models.EmbedContent(ctx, s.embeddingModel, content, nil)
		if err != nil {
			return nil, err
		}
		values, err := validateEmbeddingResponse(result)
		if err != nil {
			return nil, permanent(fmt.Errorf("invalid embedding response: %w", err))
		}
		return values, nil
	})
	s.embedBreaker.record(err)
	if err != nil {
		s.log.Warn("embedding unavailable", zap.Error(err))
		return nil
	}
	return values
}

func (s *GeminiService) ResetCircuitBreaker() {
	s.generateBreaker.reset()
	s.embedBreaker.reset()
	s.log.Info("circuit breaker reset")
}

// GetCircuitBreakerStatus reports the generation breaker.
func (s *GeminiService) GetCircuitBreakerStatus() (consecutiveErrors int, isOpen bool) {
	return s.generateBreaker.status()
}

func toGeminiContents(messages []Message) ([]*genai.Content, *genai.Content) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, m := range messages {
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		switch m.Role {
		case RoleSystem:
			system = append(system, text)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(text, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}
	}
	if len(system) == 0 {
		return contents, nil
	}
	return contents, genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
}

func validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil {
		return fmt.Errorf("candidate content is nil")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}
	return nil
}

func validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is nil")
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("no embeddings returned")
	}

	embeddings := resp.Embeddings[0].Values
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}
	for i, val := range embeddings {
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, val)
		}
	}
	return embeddings, nil
}
