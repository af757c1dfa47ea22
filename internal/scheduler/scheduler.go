// Package scheduler runs the daily horoscope fill job.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"falim/internal/app"
)

// Config controls when and how the daily job runs.
type Config struct {
	// Hour of day (0-23) the job fires, server local time. Nil means the
	// default of 06:00; midnight is a valid configured hour.
	Hour *int
	// Languages to fill; defaults to Turkish only.
	Languages []string
	// Pause between successive AI calls within one run.
	Pause time.Duration
	// Timeout bounds one full run across all languages.
	Timeout time.Duration
}

// Scheduler fills the day's horoscopes for every sign and language once per
// day. Runs are idempotent; a restart mid-run resumes where it left off.
type Scheduler struct {
	app  *app.App
	cron *cron.Cron
	cfg  Config
	hour int
}

// New prepares the scheduler without starting it.
func New(a *app.App, cfg Config) *Scheduler {
	hour := 6
	if cfg.Hour != nil && *cfg.Hour >= 0 && *cfg.Hour <= 23 {
		hour = *cfg.Hour
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"tr"}
	}
	if cfg.Pause <= 0 {
		cfg.Pause = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &Scheduler{
		app:  a,
		cron: cron.New(),
		cfg:  cfg,
		hour: hour,
	}
}

// Start registers the cron entry and begins firing.
func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("0 %d * * *", s.hour)
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer cancel()
		s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("register daily job: %w", err)
	}
	s.cron.Start()
	slog.Info("horoscope scheduler started", "hour", s.hour, "languages", s.cfg.Languages)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce fills today's horoscopes for every configured language. A failure
// in one language does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	started := time.Now()
	for _, language := range s.cfg.Languages {
		generated, err := s.app.FillHoroscopes(ctx, "", language, s.cfg.Pause)
		if err != nil {
			slog.Error("daily horoscope fill", "language", language, "generated", generated, "error", err)
			continue
		}
		slog.Info("daily horoscope fill", "language", language, "generated", generated)
	}
	slog.Info("daily horoscope run finished", "elapsed", time.Since(started).String())
}
