package listing

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Reaper expires stale open listings and reclaims overdue claims
// on a fixed interval
type Reaper struct {
	svc      *Service
	interval time.Duration
	stopCh   chan struct{}
}

// NewReaper creates a new listing reaper
func NewReaper(svc *Service, interval time.Duration) *Reaper {
	if interval == 0 {
		interval = 5 * time.Minute
	}
	return &Reaper{
		svc:      svc,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background reaper
func (r *Reaper) Start() {
	log.Info().Msg("Starting listing reaper...")
	go r.loop()
}

// Stop gracefully stops the background reaper
func (r *Reaper) Stop() {
	log.Info().Msg("Stopping listing reaper...")
	close(r.stopCh)
}

func (r *Reaper) loop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Run once immediately on startup
	r.run()

	for {
		select {
		case <-ticker.C:
			r.run()
		case <-r.stopCh:
			return
		}
	}
}

func (r *Reaper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expired, err := r.svc.ExpireStale(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to expire stale listings")
	} else if expired > 0 {
		log.Info().Int("count", expired).Msg("Expired stale listings")
	}

	reclaimed, err := r.svc.ReclaimOverdue(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to reclaim overdue claims")
	} else if reclaimed > 0 {
		log.Info().Int("count", reclaimed).Msg("Reclaimed overdue claims")
	}
}
