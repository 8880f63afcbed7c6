package service

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrLLMUnavailable is reported when no LLM provider is configured.
var ErrLLMUnavailable = errors.New("no LLM provider configured")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMClient sends an ordered conversation and returns the reply text. After the
// retry budget is spent it fails with *apperror.LLMCallError.
type LLMClient interface {
	Call(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error)
	Name() string
}

// Embedder returns an embedding for text. An empty slice means the embedding
// is unavailable and must not be treated as a zero vector.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}
