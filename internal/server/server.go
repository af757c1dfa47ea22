// Package server exposes the HTTP API under the /api prefix.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"falim/internal/app"
	"falim/internal/util"
	"falim/pkg/domain"
)

// Limiter gates a request key. A nil limiter means no limiting.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
	// Limiter guards the credential and admin endpoints. Optional.
	Limiter Limiter
	// AIConfigured feeds the health report.
	AIConfigured bool
}

// Server exposes the fortune-telling API.
type Server struct {
	app          *app.App
	limiter      Limiter
	aiConfigured bool
	mux          *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:          cfg.App,
		limiter:      cfg.Limiter,
		aiConfigured: cfg.AIConfigured,
		mux:          http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the handler wrapped with the standard middleware chain.
func (s *Server) Router() http.Handler {
	var h http.Handler = s.mux
	h = util.WithRequestLog(h)
	h = util.WithRequestID(h)
	h = util.WithSecurityHeaders(h)
	h = util.WithCORS(h)
	return h
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/", s.handleRoot)
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// auth
	s.mux.Handle("/api/auth/register", s.rateLimited(s.handleRegister))
	s.mux.Handle("/api/auth/login", s.rateLimited(s.handleLogin))
	s.mux.HandleFunc("/api/auth/verify-email", s.handleVerifyEmail)
	s.mux.Handle("/api/auth/resend-verification", s.rateLimited(s.handleResendVerification))
	s.mux.Handle("/api/auth/me", s.authenticated(s.handleMe))
	s.mux.Handle("/api/auth/profile", s.authenticated(s.handleProfile))

	// readings: each type gets a creation endpoint plus a retrieval subtree
	// keyed by session id.
	creators := map[domain.ReadingType]authHandler{
		domain.ReadingCoffee:    s.handleCoffee,
		domain.ReadingTarot:     s.handleTarot,
		domain.ReadingPalm:      s.handlePalm,
		domain.ReadingAstrology: s.handleAstrology,
		domain.ReadingFalname:   s.handleFalname,
	}
	for readingType, create := range creators {
		base := "/api/" + string(readingType) + "-reading"
		s.mux.Handle(base, s.authenticated(create))
		s.mux.Handle(base+"/", s.authenticated(s.sessionReadings(readingType, base+"/")))
	}

	// horoscopes
	s.mux.HandleFunc("/api/daily-horoscope/today", s.handleHoroscopeToday)
	s.mux.HandleFunc("/api/daily-horoscope/", s.handleHoroscopeForSign)
	s.mux.HandleFunc("/api/daily-horoscope/history/", s.handleHoroscopeHistory)

	// reference data
	s.mux.HandleFunc("/api/tarot-cards", s.handleTarotCards)
	s.mux.HandleFunc("/api/zodiac-signs", s.handleZodiacSigns)

	// admin (unauthenticated by design of the original deployment; rate
	// limited and idempotent)
	s.mux.Handle("/api/admin/generate-daily-horoscopes", s.rateLimited(s.handleGenerateHoroscopes))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/" && r.URL.Path != "/api" {
		writeError(w, http.StatusNotFound, "bulunamadı")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Falım API'sine hoş geldiniz",
		"docs":    "/api/health",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbHealthy := s.app.StoreHealthy(r.Context())
	status := "healthy"
	if !dbHealthy {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"services": map[string]any{
			"api":      "online",
			"ai":       s.aiConfigured,
			"database": dbHealthy,
			"features": map[string]bool{
				"coffee":          true,
				"tarot":           true,
				"palm":            true,
				"astrology":       true,
				"falname":         true,
				"daily_horoscope": true,
				"auth":            true,
			},
		},
	})
}

// middleware

func (s *Server) rateLimited(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow(r.Context(), util.ClientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "çok fazla istek, lütfen biraz bekleyin")
			return
		}
		next(w, r)
	})
}

type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "kimlik doğrulaması gerekli")
			return
		}
		next(w, r, user)
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<20)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "geçersiz istek gövdesi")
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "yöntem desteklenmiyor")
}

// writeAppError maps service-layer sentinels onto HTTP statuses.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrValidation), errors.Is(err, app.ErrTermsNotAccepted), errors.Is(err, app.ErrEmailExists):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCredentials), errors.Is(err, app.ErrNotVerified), errors.Is(err, app.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError emits the error body shape the clients expect.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}
