package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	S3     S3Config
	Model  ModelConfig
	App    AppConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

type AuthConfig struct {
	User string
	Pass string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	Region          string
	CreateBucket    bool
	// PublicBaseURL is the prefix under which stored objects are reachable
	// by the model provider.
	PublicBaseURL string
}

type ModelConfig struct {
	Provider     string
	OpenAIAPIKey string
	OpenAIURL    string
	GeminiAPIKey string
	VisionModel  string
	TextModel    string
	MaxTokens    int
}

type AppConfig struct {
	MaxUploadSize  int64
	AllowedFormats []string
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", 10*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 120*time.Second)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("AUTH_USER", "")
	v.SetDefault("AUTH_PASS", "")
	v.SetDefault("S3_ENDPOINT", "localhost:9000")
	v.SetDefault("S3_ACCESS_KEY_ID", "minioadmin")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "minioadmin")
	v.SetDefault("S3_USE_SSL", false)
	v.SetDefault("S3_BUCKET_NAME", "images")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_CREATE_BUCKET", false)
	v.SetDefault("S3_PUBLIC_BASE_URL", "https://image.sayoi341.moe")
	v.SetDefault("MODEL_PROVIDER", ProviderOpenAI)
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("MODEL_MAX_TOKENS", 300)
	v.SetDefault("APP_MAX_UPLOAD_SIZE", 10*1024*1024) // 10MB
	v.SetDefault("APP_ALLOWED_FORMATS", "png,jpg,gif,webp")
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()

	provider := strings.ToLower(strings.TrimSpace(v.GetString("MODEL_PROVIDER")))
	if provider == ProviderGemini {
		v.SetDefault("MODEL_VISION", "gemini-1.5-flash")
		v.SetDefault("MODEL_TEXT", "gemini-1.5-flash")
	} else {
		v.SetDefault("MODEL_VISION", "gpt-4o")
		v.SetDefault("MODEL_TEXT", "gpt-4o-mini")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetString("SERVER_PORT"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
			CORSOrigins:  splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Auth: AuthConfig{
			User: v.GetString("AUTH_USER"),
			Pass: v.GetString("AUTH_PASS"),
		},
		S3: S3Config{
			Endpoint:        v.GetString("S3_ENDPOINT"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
			UseSSL:          v.GetBool("S3_USE_SSL"),
			BucketName:      v.GetString("S3_BUCKET_NAME"),
			Region:          v.GetString("S3_REGION"),
			CreateBucket:    v.GetBool("S3_CREATE_BUCKET"),
			PublicBaseURL:   strings.TrimRight(v.GetString("S3_PUBLIC_BASE_URL"), "/"),
		},
		Model: ModelConfig{
			Provider:     provider,
			OpenAIAPIKey: v.GetString("OPENAI_API_KEY"),
			OpenAIURL:    v.GetString("OPENAI_BASE_URL"),
			GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
			VisionModel:  v.GetString("MODEL_VISION"),
			TextModel:    v.GetString("MODEL_TEXT"),
			MaxTokens:    v.GetInt("MODEL_MAX_TOKENS"),
		},
		App: AppConfig{
			MaxUploadSize:  v.GetInt64("APP_MAX_UPLOAD_SIZE"),
			AllowedFormats: splitList(strings.ToLower(v.GetString("APP_ALLOWED_FORMATS"))),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.Auth.User == "" || c.Auth.Pass == "" {
		errs = append(errs, errors.New("AUTH_USER and AUTH_PASS are required"))
	}
	if c.S3.BucketName == "" {
		errs = append(errs, errors.New("S3_BUCKET_NAME is required"))
	}
	if c.S3.PublicBaseURL == "" {
		errs = append(errs, errors.New("S3_PUBLIC_BASE_URL is required"))
	}

	switch c.Model.Provider {
	case ProviderOpenAI:
		if c.Model.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	case ProviderGemini:
		if c.Model.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini provider"))
		}
		for _, m := range []string{c.Model.VisionModel, c.Model.TextModel} {
			if strings.HasPrefix(strings.ToLower(m), "gpt-") {
				errs = append(errs, fmt.Errorf("model %q is not served by the gemini provider", m))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MODEL_PROVIDER %q", c.Model.Provider))
	}

	if c.Model.MaxTokens <= 0 {
		errs = append(errs, errors.New("MODEL_MAX_TOKENS must be positive"))
	}
	if c.App.MaxUploadSize <= 0 {
		errs = append(errs, errors.New("APP_MAX_UPLOAD_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
