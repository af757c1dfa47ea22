package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"falim/internal/app"
	"falim/internal/config"
	"falim/internal/mail"
	"falim/internal/ratelimit"
	"falim/internal/scheduler"
	"falim/internal/server"
	"falim/internal/util"
	"falim/pkg/ai"
	"falim/pkg/auth"
	"falim/pkg/storage"
	"falim/pkg/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	util.InitLogger(cfg.LogLevel)

	tokenTTL, err := config.ParseTokenTTL(cfg.TokenTTL)
	if err != nil {
		fatal("failed to parse token ttl", "err", err)
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, tokenTTL)
	if err != nil {
		fatal("failed to init token manager", "err", err)
	}

	db, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		fatal("failed to init database", "err", err)
	}

	gemini, err := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		fatal("failed to init gemini client", "err", err)
	}

	var mailer mail.Mailer
	if cfg.MailEndpoint != "" && cfg.MailAPIKey != "" {
		m, err := mail.NewHTTPMailer(cfg.MailEndpoint, cfg.MailAPIKey, cfg.MailFrom)
		if err != nil {
			fatal("failed to init mailer", "err", err)
		}
		mailer = m
	} else {
		slog.Warn("mail provider not configured, verification emails disabled")
	}

	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		o, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			fatal("failed to init object storage", "err", err)
		}
		objects = o
	}

	appCore, err := app.New(app.Config{
		Store:         db,
		Text:          gemini,
		Vision:        gemini,
		Tokens:        tokens,
		Objects:       objects,
		Mailer:        mailer,
		VerifyBaseURL: cfg.VerifyBaseURL,
	})
	if err != nil {
		fatal("failed to init app", "err", err)
	}

	var limiter server.Limiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
		limit := cfg.RateLimitPerMinute
		if limit == 0 {
			limit = 30
		}
		l, err := ratelimit.NewFixedWindowLimiter(redisClient, "", limit, time.Minute)
		if err != nil {
			fatal("failed to init rate limiter", "err", err)
		}
		limiter = l
	} else {
		slog.Warn("redis not configured, rate limiting disabled")
	}

	pause, err := config.ParseHoroscopePause(cfg.HoroscopePause)
	if err != nil {
		fatal("failed to parse horoscope pause", "err", err)
	}
	sched := scheduler.New(appCore, scheduler.Config{
		Hour:      cfg.HoroscopeHour,
		Languages: cfg.HoroscopeLanguages,
		Pause:     pause,
	})
	if err := sched.Start(); err != nil {
		fatal("failed to start scheduler", "err", err)
	}
	defer sched.Stop()

	httpServer := server.New(server.Config{
		App:          appCore,
		Limiter:      limiter,
		AIConfigured: strings.TrimSpace(cfg.GeminiAPIKey) != "",
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			fatal("server error", "err", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "err", err)
		}
	}
}

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
