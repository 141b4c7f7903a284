package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"visiongate/internal/domain"
)

// Gemini sends the image inline; the API does not fetch arbitrary URLs.
type Gemini struct {
	client *genai.Client
}

func NewGemini(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Gemini, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(strings.TrimSpace(apiKey))}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{client: client}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Invoke(ctx context.Context, req Request) (*domain.ModelResponse, error) {
	m := g.client.GenerativeModel(req.Model)
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.System)},
	}

	var part genai.Part = genai.Text(req.Text)
	if req.Image != nil {
		part = genai.Blob{MIMEType: req.Image.MimeType, Data: req.Image.Data}
	}

	resp, err := m.GenerateContent(ctx, part)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode gemini response: %w", err)
	}

	return &domain.ModelResponse{Content: firstText(resp), Raw: raw}, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
