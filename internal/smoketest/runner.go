package smoketest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/muziki/pkg/logger"
)

// PercentageMultiplier converts a ratio to a percentage.
const PercentageMultiplier = 100

// Run executes the complete smoke run.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting muziki smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("songs", cfg.NumSongs),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Bool("verbose", cfg.Verbose))

	client := NewClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, err
	}

	// Step 2: Behavioural checks
	s := newSession(client)
	if err := runChecks(ctx, cfg, s, stats); err != nil {
		return stats, err
	}

	// Step 3: Concurrent seeding and list verification
	if cfg.NumSongs > 0 && cfg.Workers > 0 {
		ids := seedSongs(ctx, cfg, s.authed, stats)
		if err := verifySeeded(ctx, s.authed, ids, stats); err != nil {
			return stats, fmt.Errorf("list verification failed: %w", err)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	log.Info(ctx, "smoke run completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, c *Client) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	// /healthz answers with Prometheus metrics; any 200 is healthy
	if resp.status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.status)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, songsPerSecond float64

	if attempted := stats.SongsSeeded + stats.SeedFailures; attempted > 0 {
		successRate = float64(stats.SongsSeeded) / float64(attempted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		songsPerSecond = float64(stats.SongsSeeded) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("checksPassed", stats.ChecksPassed),
		logger.Int("songsSeeded", stats.SongsSeeded),
		logger.Int("seedFailures", stats.SeedFailures),
		logger.Int("songsListed", stats.SongsListed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("songsPerSecond", songsPerSecond))
}
