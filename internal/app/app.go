// Package app implements the service layer: accounts, readings, and the
// daily horoscope cache.
package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"falim/internal/mail"
	"falim/pkg/ai"
	"falim/pkg/auth"
	"falim/pkg/storage"
	"falim/pkg/store"
)

// Config holds the collaborators and knobs for the core application.
type Config struct {
	Store  store.Store
	Text   ai.TextGenerator
	Vision ai.VisionGenerator
	Tokens *auth.TokenManager

	// optional
	Objects storage.ObjectStore
	Mailer  mail.Mailer

	VerifyBaseURL   string
	VerificationTTL time.Duration
	// Image payloads at or above this many decoded bytes are parked in
	// object storage instead of the reading payload.
	ImageOffloadMin int

	Now func() time.Time
}

// App is the core application service.
type App struct {
	store   store.Store
	text    ai.TextGenerator
	vision  ai.VisionGenerator
	tokens  *auth.TokenManager
	objects storage.ObjectStore
	mailer  mail.Mailer

	verifyBaseURL   string
	verificationTTL time.Duration
	imageOffloadMin int
	now             func() time.Time

	horoscopeGroup singleflight.Group
}

// StoreHealthy reports whether the backing store answers a ping.
func (a *App) StoreHealthy(ctx context.Context) bool {
	return a.store.Ping(ctx) == nil
}

// New wires the application together.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Text == nil {
		return nil, fmt.Errorf("text generator is required")
	}
	if cfg.Vision == nil {
		return nil, fmt.Errorf("vision generator is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token manager is required")
	}
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = 24 * time.Hour
	}
	if cfg.ImageOffloadMin <= 0 {
		cfg.ImageOffloadMin = 64 * 1024
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &App{
		store:           cfg.Store,
		text:            cfg.Text,
		vision:          cfg.Vision,
		tokens:          cfg.Tokens,
		objects:         cfg.Objects,
		mailer:          cfg.Mailer,
		verifyBaseURL:   cfg.VerifyBaseURL,
		verificationTTL: cfg.VerificationTTL,
		imageOffloadMin: cfg.ImageOffloadMin,
		now:             cfg.Now,
	}, nil
}
