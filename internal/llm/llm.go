// Package llm wraps the chat-completion providers used by the vision pipeline.
package llm

import (
	"context"
	"errors"
	"fmt"

	"visiongate/internal/config"
	"visiongate/internal/domain"
)

var ErrEmptyResponse = errors.New("model returned no choices")

// Image references a stored upload. Providers that fetch by URL use URL;
// providers that need inline bytes use Data.
type Image struct {
	URL      string
	MimeType string
	Data     []byte
}

// Request is a single system + user turn. The user turn is either an
// image or plain text.
type Request struct {
	Model     string
	MaxTokens int
	System    string
	Image     *Image
	Text      string
}

type ChatModel interface {
	Invoke(ctx context.Context, req Request) (*domain.ModelResponse, error)
}

func New(ctx context.Context, cfg *config.ModelConfig) (ChatModel, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIURL), nil
	case config.ProviderGemini:
		g, err := NewGemini(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
