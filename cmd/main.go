package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"visiongate/internal/config"
	"visiongate/internal/llm"
	"visiongate/internal/repository"
	"visiongate/internal/server"
	"visiongate/internal/service"
	"visiongate/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("CRITICAL: Failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		os.Stderr.WriteString("CRITICAL: Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s3Repo, err := repository.NewS3Repository(ctx, &cfg.S3, log)
	if err != nil {
		log.Fatal("Failed to create S3 repository", zap.Error(err))
	}

	model, err := llm.New(ctx, &cfg.Model)
	if err != nil {
		log.Fatal("Failed to create model client", zap.Error(err))
	}
	if closer, ok := model.(io.Closer); ok {
		defer closer.Close()
	}

	svc := service.NewVisionService(s3Repo, model, cfg, log)
	srv := server.New(cfg, svc, log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return
	}

	log.Info("Server exited",
		zap.String("provider", cfg.Model.Provider))
}
