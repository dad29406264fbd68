package smoketest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/okian/muziki/pkg/logger"
)

// WorkerChannelMultiplier sizes the job channel relative to the worker count.
const WorkerChannelMultiplier = 2

// seedSongs creates cfg.NumSongs songs concurrently and returns the created ids.
func seedSongs(ctx context.Context, cfg *Config, c *Client, stats *Stats) []uint {
	log := logger.Get()
	log.Info(ctx, "seeding songs", logger.Int("songs", cfg.NumSongs), logger.Int("workers", cfg.Workers))

	var (
		failed int64
		mu     sync.Mutex
		ids    = make([]uint, 0, cfg.NumSongs)
	)

	jobs := make(chan int, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				if ctx.Err() != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				song, err := createSong(ctx, c, n)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "seeding song failed", logger.Int("n", n), logger.Error(err))
					}
					continue
				}
				mu.Lock()
				ids = append(ids, song.ID)
				mu.Unlock()
			}
		}()
	}

	for n := 0; n < cfg.NumSongs; n++ {
		jobs <- n
	}
	close(jobs)
	wg.Wait()

	stats.SongsSeeded = len(ids)
	stats.SeedFailures = int(atomic.LoadInt64(&failed))
	log.Info(ctx, "seeding completed",
		logger.Int("seeded", stats.SongsSeeded),
		logger.Int("failed", stats.SeedFailures))
	return ids
}

func createSong(ctx context.Context, c *Client, n int) (Song, error) {
	in := songInput{Title: fmt.Sprintf("Smoke song %d", n), Artist: "Smoke artist"}
	resp, err := c.expect(ctx, http.MethodPost, "/v1/songs/", in, http.StatusCreated)
	if err != nil {
		return Song{}, err
	}
	var s Song
	if err := resp.decode(&s); err != nil {
		return Song{}, err
	}
	return s, nil
}

// verifySeeded checks that the list holds every seeded id exactly once, in ascending id order.
func verifySeeded(ctx context.Context, c *Client, ids []uint, stats *Stats) error {
	resp, err := c.expect(ctx, http.MethodGet, "/v1/songs/", nil, http.StatusOK)
	if err != nil {
		return err
	}
	var songs []Song
	if err := resp.decode(&songs); err != nil {
		return err
	}
	stats.SongsListed = len(songs)

	seen := make(map[uint]int, len(songs))
	for i, s := range songs {
		if i > 0 && songs[i-1].ID >= s.ID {
			return fmt.Errorf("%w: list not ordered by id at %d", ErrCheckFailed, s.ID)
		}
		seen[s.ID]++
	}
	for _, id := range ids {
		if seen[id] != 1 {
			return fmt.Errorf("%w: seeded song %d listed %d times", ErrCheckFailed, id, seen[id])
		}
	}
	return nil
}
