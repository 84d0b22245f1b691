package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gigflow/config"
	"gigflow/db"
	"gigflow/fraud"
	"gigflow/httpapi"
	"gigflow/marketplace"
	"gigflow/quizgen"
	"gigflow/users"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		userRepo  users.Repository
		jobRepo   marketplace.Repository
		fraudRepo fraud.Repository
	)
	if cfg.Database.URL != "" {
		pool, err := db.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		userRepo = users.NewRepository(pool)
		jobRepo = marketplace.NewRepository(pool)
		fraudRepo = fraud.NewRepository(pool)
		slog.Info("using postgres storage")
	} else {
		userRepo = users.NewMemoryRepository()
		jobRepo = marketplace.NewMemoryRepository()
		fraudRepo = fraud.NewMemoryRepository()
		slog.Warn("DATABASE_URL not set, using in-memory storage")
	}

	var generator quizgen.Generator
	if cfg.Gemini.APIKey != "" {
		g, err := quizgen.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return fmt.Errorf("init quiz generator: %w", err)
		}
		generator = g
		slog.Info("using gemini quiz generator", "model", cfg.Gemini.Model)
	} else {
		generator = quizgen.StaticGenerator{}
		slog.Warn("GEMINI_API_KEY not set, using static quiz generator")
	}

	userSvc := users.NewService(userRepo, generator, cfg.Auth.JWTSecret, users.AdminCredentials{
		Email:    cfg.Auth.AdminEmail,
		Password: cfg.Auth.AdminPassword,
	})
	jobSvc := marketplace.NewService(jobRepo, userSvc)
	fraudSvc := fraud.NewService(fraudRepo)

	server := httpapi.NewServer(userSvc, jobSvc, fraudSvc)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: server.Router()}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
