package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/z-memory/backend/internal/config"
	"github.com/zhouzirui/z-memory/backend/internal/handler"
	"github.com/zhouzirui/z-memory/backend/internal/model/persona"
	"github.com/zhouzirui/z-memory/backend/internal/service/ai"
	memoryService "github.com/zhouzirui/z-memory/backend/internal/service/memory"
	responseService "github.com/zhouzirui/z-memory/backend/internal/service/response"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           log.InfoLevel,
	})

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Warn("failed to load .env file, continuing with system environment variables only", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", "err", err)
	}
	logger.SetLevel(cfg.Log.Level)

	personaStore := persona.NewMemoryStore(persona.Seed())

	// Without a generator the read-only routes still work and generation
	// routes answer 503.
	var generator ai.StreamingGenerator
	if cfg.AI.Enabled() {
		generator, err = ai.NewGenerator(ctx, cfg.AI, logger)
		if err != nil {
			logger.Warn("failed to initialize AI service, continuing without generation", "provider", cfg.AI.Provider, "err", err)
			generator = nil
		} else {
			logger.Info("AI service initialized", "provider", cfg.AI.Provider, "streaming", generator.StreamingEnabled())
		}
	} else {
		logger.Warn("模型凭证未配置，跳过 AI 功能初始化", "provider", cfg.AI.Provider)
	}

	var gen ai.Generator
	if generator != nil {
		gen = generator
	}
	extractor := memoryService.NewService(gen, logger,
		memoryService.WithSampling(cfg.AI.ExtractionTemperature, cfg.AI.ExtractionMaxTokens))
	responder := responseService.NewService(gen, personaStore, logger,
		responseService.WithMaxTokens(cfg.AI.ResponseMaxTokens))

	router := handler.NewRouter(logger, cfg.Server.AllowedOrigins, extractor, responder)

	startServer(ctx, logger, cfg.Server, router)
}

func startServer(ctx context.Context, logger *log.Logger, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("memory personas backend listening", "addr", addr)
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", "err", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
