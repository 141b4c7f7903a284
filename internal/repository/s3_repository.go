package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	s3config "visiongate/internal/config"
)

type S3Repository interface {
	UploadFile(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

type s3Repository struct {
	client *s3.Client
	cfg    *s3config.S3Config
	log    *zap.Logger
}

func NewS3Repository(ctx context.Context, cfg *s3config.S3Config, log *zap.Logger) (S3Repository, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := endpointURL(cfg.Endpoint, cfg.UseSSL)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = true
	})

	repo := &s3Repository{
		client: client,
		cfg:    cfg,
		log:    log,
	}

	if cfg.CreateBucket {
		if err := repo.ensureBucketExists(ctx); err != nil {
			log.Warn("Failed to ensure bucket exists", zap.Error(err))
		}
	}

	return repo, nil
}

// endpointURL adds a scheme to bare host:port endpoints.
func endpointURL(endpoint string, useSSL bool) string {
	if endpoint == "" || strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func (r *s3Repository) ensureBucketExists(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.cfg.BucketName),
	})
	if err == nil {
		r.log.Info("Bucket already exists", zap.String("bucket", r.cfg.BucketName))
		return nil
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("head bucket %s: %w", r.cfg.BucketName, err)
	}

	r.log.Info("Creating bucket", zap.String("bucket", r.cfg.BucketName))

	input := &s3.CreateBucketInput{
		Bucket: aws.String(r.cfg.BucketName),
	}
	// us-east-1 rejects an explicit location constraint.
	if r.cfg.Region != "" && r.cfg.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(r.cfg.Region),
		}
	}

	if _, err := r.client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("create bucket %s: %w", r.cfg.BucketName, err)
	}

	r.log.Info("Bucket created successfully", zap.String("bucket", r.cfg.BucketName))
	return nil
}

func (r *s3Repository) UploadFile(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.cfg.BucketName),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		r.log.Error("Failed to upload file to S3",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("put object %s: %w", key, err)
	}

	r.log.Info("File uploaded to S3",
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int64("size", size))

	return nil
}
