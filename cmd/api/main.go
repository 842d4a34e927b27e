package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ricknaldos/buzentry-main-sub001/internal/config"
	jwtinfra "github.com/ricknaldos/buzentry-main-sub001/internal/infrastructure/jwt"
	redisinfra "github.com/ricknaldos/buzentry-main-sub001/internal/infrastructure/redis"
	"github.com/ricknaldos/buzentry-main-sub001/internal/infrastructure/smtp"
	"github.com/ricknaldos/buzentry-main-sub001/internal/infrastructure/sns"
	stripeinfra "github.com/ricknaldos/buzentry-main-sub001/internal/infrastructure/stripe"
	"github.com/ricknaldos/buzentry-main-sub001/internal/infrastructure/webhook"
	transporthttp "github.com/ricknaldos/buzentry-main-sub001/internal/transport/http"
	"github.com/ricknaldos/buzentry-main-sub001/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	redisClient, err := redisinfra.NewClient(cfg)
	if err != nil {
		logger.L().Fatal("redis connection failed", zap.Error(err))
	}

	// JWT provider (optional — routes run unauthenticated without it, for
	// local development only).
	var jwtProvider *jwtinfra.Provider
	if p, perr := jwtinfra.NewProvider(cfg); perr == nil {
		jwtProvider = p
	} else {
		logger.L().Warn("JWT provider not available", zap.Error(perr))
	}

	// SNS SMS sender (optional — SMS notifications degrade to none).
	var smsSender sns.SMSSender
	if sender, serr := sns.NewSender(cfg); serr == nil {
		smsSender = sender
	} else {
		logger.L().Warn("SNS sender not available", zap.Error(serr))
	}

	deps := &transporthttp.Deps{
		ProfileRepo:   redisinfra.NewProfileRepo(redisClient),
		PhoneRepo:     redisinfra.NewPhoneRepo(redisClient),
		EventRepo:     redisinfra.NewEventRepo(redisClient, cfg.EventRetention),
		RateLimitRepo: redisinfra.NewRateLimitRepo(redisClient, cfg.VerifyMaxAttempts, cfg.VerifyWindow),
		Billing:       stripeinfra.NewClient(cfg),
		Mailer:        smtp.NewMailer(cfg),
		SMSSender:     smsSender,
		Forwarder:     webhook.NewForwarder(cfg.WebhookURL),
		JWTProvider:   jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.L().Info("server starting",
			zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L().Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.L().Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.L().Fatal("forced shutdown", zap.Error(err))
	}
	_ = redisClient.Close()
	logger.L().Info("server stopped")
}
