// Package refresher re-extracts stored profiles that have aged past the
// freshness window.
package refresher

import (
	"context"
	"sync"
	"time"

	"sitesmith/internal/domain"
	"sitesmith/internal/logger"
	"sitesmith/internal/ports"
)

const defaultBatch = 50

type Config struct {
	Workers  int
	Interval time.Duration
	MaxAge   time.Duration
	Batch    int
}

// Run starts a dispatcher that lists stale profiles every Interval and a pool
// of Workers that force-refresh them. It returns once ctx is cancelled and
// in-flight refreshes have finished. Workers < 1 disables the refresher.
func Run(ctx context.Context, stale ports.StaleLister, forensics ports.Forensics, cfg Config, log logger.Logger) {
	if cfg.Workers < 1 {
		return
	}
	if cfg.Batch <= 0 {
		cfg.Batch = defaultBatch
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	jobs := make(chan domain.Profile, cfg.Workers)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for p := range jobs {
				Refresh(ctx, forensics, p, log.With(logger.Int("worker", idx)))
			}
		}(i)
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	dispatch(ctx, stale, jobs, cfg, log)
	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case <-ticker.C:
			dispatch(ctx, stale, jobs, cfg, log)
		}
	}
}

func dispatch(ctx context.Context, stale ports.StaleLister, jobs chan<- domain.Profile, cfg Config, log logger.Logger) {
	profiles, err := stale.ListStale(ctx, cfg.MaxAge, cfg.Batch)
	if err != nil {
		log.Error("list stale profiles failed", logger.Error(err))
		return
	}
	if len(profiles) > 0 {
		log.Info("refreshing stale profiles", logger.Int("count", len(profiles)))
	}
	for _, p := range profiles {
		select {
		case <-ctx.Done():
			return
		case jobs <- p:
		}
	}
}

// Refresh force-extracts one stored profile, keeping its name and industry.
func Refresh(ctx context.Context, forensics ports.Forensics, p domain.Profile, log logger.Logger) {
	res, err := forensics.Extract(ctx, domain.ExtractRequest{
		URL:          p.KingURL,
		Name:         p.KingName,
		Industry:     p.Industry,
		ForceRefresh: true,
	})
	if err != nil {
		log.Warn("profile refresh failed", logger.String("king_url", p.KingURL), logger.Error(err))
		return
	}
	log.Info("profile refreshed",
		logger.String("king_url", p.KingURL),
		logger.Int("completeness", res.Completeness),
	)
}
