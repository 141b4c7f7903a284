package service

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"visiongate/internal/config"
	"visiongate/internal/domain"
	"visiongate/internal/llm"
	"visiongate/internal/repository"
	"visiongate/pkg/utils"
)

// formatAliases maps alternate spellings in APP_ALLOWED_FORMATS to the
// suffixes reported by utils.DetectType.
var formatAliases = map[string]string{
	"jpeg": "jpg",
	"tiff": "tif",
}

type VisionService interface {
	// Caption stores the image and returns a Japanese description of it.
	Caption(ctx context.Context, data []byte) (*domain.ModelResponse, error)
	// Translate stores the image, extracts its text and translates it into language.
	Translate(ctx context.Context, data []byte, language string) (*domain.ModelResponse, error)
}

type visionService struct {
	s3Repo  repository.S3Repository
	model   llm.ChatModel
	cfg     *config.Config
	log     *zap.Logger
	allowed map[string]bool
}

func NewVisionService(s3Repo repository.S3Repository, model llm.ChatModel, cfg *config.Config, log *zap.Logger) VisionService {
	allowed := make(map[string]bool, len(cfg.App.AllowedFormats))
	for _, f := range cfg.App.AllowedFormats {
		if canonical, ok := formatAliases[f]; ok {
			f = canonical
		}
		allowed[f] = true
	}

	return &visionService{
		s3Repo:  s3Repo,
		model:   model,
		cfg:     cfg,
		log:     log,
		allowed: allowed,
	}
}

func (s *visionService) Caption(ctx context.Context, data []byte) (*domain.ModelResponse, error) {
	img, err := s.storeImage(ctx, data)
	if err != nil {
		return nil, err
	}

	return s.run(ctx, pipeline{
		name: "caption",
		stages: []stage{
			{name: "describe", model: s.cfg.Model.VisionModel, system: captionInstruction, input: inputImage},
		},
	}, img, data)
}

func (s *visionService) Translate(ctx context.Context, data []byte, language string) (*domain.ModelResponse, error) {
	img, err := s.storeImage(ctx, data)
	if err != nil {
		return nil, err
	}

	return s.run(ctx, pipeline{
		name: "translate",
		stages: []stage{
			{name: "ocr", model: s.cfg.Model.VisionModel, system: ocrInstruction, input: inputImage},
			{name: "translate", model: s.cfg.Model.TextModel, system: translateInstruction(language), input: inputPrevious},
		},
	}, img, data)
}

func (s *visionService) storeImage(ctx context.Context, data []byte) (*domain.StoredImage, error) {
	typ, ok := utils.DetectType(data)
	if !ok || (len(s.allowed) > 0 && !s.allowed[typ.Suffix]) {
		s.log.Info("Rejected unsupported image",
			zap.Int("size", len(data)),
			zap.String("suffix", typ.Suffix))
		return nil, domain.ErrUnsupportedImage
	}

	key := utils.ContentKey(data, typ.Suffix)
	size := int64(len(data))

	if err := s.s3Repo.UploadFile(ctx, key, bytes.NewReader(data), size, typ.MimeType); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	image := &domain.StoredImage{
		Key:         key,
		URL:         s.cfg.S3.PublicBaseURL + "/" + key,
		ContentType: typ.MimeType,
		Size:        size,
	}

	s.log.Info("Image stored",
		zap.String("key", image.Key),
		zap.String("url", image.URL),
		zap.Int64("size", image.Size))

	return image, nil
}
