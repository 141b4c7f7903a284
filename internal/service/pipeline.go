package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"visiongate/internal/domain"
	"visiongate/internal/llm"
)

type stageInput int

const (
	// inputImage sends the stored image as the user turn.
	inputImage stageInput = iota
	// inputPrevious sends the previous stage's text as the user turn.
	inputPrevious
)

type stage struct {
	name   string
	model  string
	system string
	input  stageInput
}

type pipeline struct {
	name   string
	stages []stage
}

// run executes the stages in order and returns the last stage's response.
func (s *visionService) run(ctx context.Context, p pipeline, img *domain.StoredImage, data []byte) (*domain.ModelResponse, error) {
	if len(p.stages) == 0 {
		return nil, errors.New("pipeline has no stages")
	}

	var prev *domain.ModelResponse
	for _, st := range p.stages {
		req := llm.Request{
			Model:     st.model,
			MaxTokens: s.cfg.Model.MaxTokens,
			System:    st.system,
		}

		switch st.input {
		case inputImage:
			req.Image = &llm.Image{URL: img.URL, MimeType: img.ContentType, Data: data}
		case inputPrevious:
			if prev == nil {
				return nil, fmt.Errorf("%s: stage %q has no previous output", p.name, st.name)
			}
			req.Text = prev.Content
		}

		resp, err := s.model.Invoke(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("%s: stage %q: %w", p.name, st.name, err)
		}

		s.log.Debug("Model stage completed",
			zap.String("pipeline", p.name),
			zap.String("stage", st.name),
			zap.String("model", st.model),
			zap.Int("content_length", len(resp.Content)))

		prev = resp
	}

	return prev, nil
}
