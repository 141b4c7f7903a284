package llm

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"visiongate/internal/domain"
)

type OpenAI struct {
	client *openai.Client
}

func NewOpenAI(apiKey, baseURL string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg)}
}

func (o *OpenAI) Invoke(ctx context.Context, req Request) (*domain.ModelResponse, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			userMessage(req),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode openai response: %w", err)
	}

	return &domain.ModelResponse{
		Content: resp.Choices[0].Message.Content,
		Raw:     raw,
	}, nil
}

func userMessage(req Request) openai.ChatCompletionMessage {
	if req.Image == nil {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Text}
	}
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    req.Image.URL,
					Detail: openai.ImageURLDetailAuto,
				},
			},
		},
	}
}
