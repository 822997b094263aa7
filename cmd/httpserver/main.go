package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"moviecatalog/httpserver"
	"moviecatalog/movie"
	"moviecatalog/pkg/config"
	"moviecatalog/pkg/logger"
	"moviecatalog/pkg/sentry"
	"moviecatalog/store"
)

// @title Movie Catalog API
// @version 1.0
// @description OMDB-compatible movie search with an API-key protected admin surface.
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-Api-Key
func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Error("cannot load config", zap.Error(err))
		return err
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	err = sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		AttachStacktrace: true,
	})
	if err != nil {
		log.Error("cannot init sentry", zap.Error(err))
		return err
	}
	defer sentrygo.Flush(sentry.FlushTime)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.Error("cannot open movie store", zap.String("driver", cfg.DB.Driver), zap.Error(err))
		sentry.Fatal(err)
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("close movie store", zap.Error(err))
		}
	}()

	server := httpserver.Default(cfg)
	server.MovieService = movie.NewUsecase(repo)
	server.Logger = log

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("address", server.Addr), zap.String("driver", cfg.DB.Driver))
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped with error", zap.Error(err))
		}
		return err
	}
}
