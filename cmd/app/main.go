// File: cmd/app/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"nexus-ai-portal/internal/config"
	"nexus-ai-portal/internal/domain/model"
	"nexus-ai-portal/internal/domain/ports/adapter"
	"nexus-ai-portal/internal/infra/ai"
	"nexus-ai-portal/internal/infra/db/postgres"
	"nexus-ai-portal/internal/infra/identity"
	"nexus-ai-portal/internal/infra/logging"
	"nexus-ai-portal/internal/infra/metrics"
	"nexus-ai-portal/internal/infra/payment"
	red "nexus-ai-portal/internal/infra/redis"
	"nexus-ai-portal/internal/infra/web"
	"nexus-ai-portal/internal/usecase"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	logger.Info().Bool("dev", cfg.Runtime.Dev).Msg("starting nexus-ai-portal")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- storage ---
	pool := postgres.MustConnectPostgres(cfg.Database.URL)
	defer pool.Close()

	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()

	orderRepo := postgres.NewOrderRepo(pool)
	profileRepo := postgres.NewProfileRepoCacheDecorator(postgres.NewProfileRepo(pool), redisClient, cfg.Redis.TTL)
	tm := postgres.NewTxManager(pool)

	// --- adapters ---
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev && cfg.Payment.Alipay.AppID == "" {
		logger.Warn().Msg("no gateway credentials; using noop gateway")
		gateway = payment.NewNoopGateway()
	} else {
		gateway, err = payment.NewAlipayGateway(cfg.Payment.Alipay, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("alipay gateway init failed")
		}
	}

	idp, err := identity.NewGoTrueClient(cfg.Identity)
	if err != nil {
		logger.Fatal().Err(err).Msg("identity client init failed")
	}

	var textAI, imageAI adapter.AIServiceAdapter
	if cfg.AI.GeminiKey != "" {
		textAI, err = ai.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter init failed")
		}
	} else {
		logger.Warn().Msg("no gemini key; text generation uses noop adapter")
		textAI = ai.NewNoopAdapter()
	}
	if cfg.AI.OpenAIKey != "" {
		imageAI, err = ai.NewOpenAIAdapter(cfg.AI.OpenAIKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter init failed")
		}
	} else {
		logger.Warn().Msg("no openai key; image generation uses noop adapter")
		imageAI = ai.NewNoopAdapter()
	}

	// --- use cases ---
	prices := map[model.Plan]int64{
		model.PlanAnnual:   cfg.Payment.AnnualPriceFen,
		model.PlanLifetime: cfg.Payment.LifetimePriceFen,
		model.PlanAgent:    cfg.Payment.AgentPriceFen,
	}
	orderUC := usecase.NewOrderUseCase(orderRepo, profileRepo, gateway, prices, logger)
	profileUC := usecase.NewProfileUseCase(profileRepo, idp, tm, logger)
	genUC := usecase.NewGenerationUseCase(profileRepo, textAI, imageAI, logger)
	statsUC := usecase.NewStatsUseCase(orderRepo, profileRepo)

	// --- http ---
	limiter := red.NewRateLimiter(redisClient)
	srv := web.NewServer(orderUC, profileUC, genUC, statsUC,
		web.NewAuthManager(cfg.Identity.JWTSecret),
		limiter, cfg.RateLimit, logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(cfg.Server.RequestTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		logger.Error().Err(err).Msg("http server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("bye")
}
