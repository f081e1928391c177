package reputation

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Worker decays expired strikes on a fixed interval
type Worker struct {
	svc      *Service
	interval time.Duration
	stopCh   chan struct{}
}

// NewWorker creates a new strike decay worker
func NewWorker(svc *Service, interval time.Duration) *Worker {
	if interval == 0 {
		interval = 5 * time.Minute
	}
	return &Worker{
		svc:      svc,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background worker
func (w *Worker) Start() {
	log.Info().Msg("Starting strike decay worker...")
	go w.loop()
}

// Stop gracefully stops the background worker
func (w *Worker) Stop() {
	log.Info().Msg("Stopping strike decay worker...")
	close(w.stopCh)
}

func (w *Worker) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run once immediately on startup
	w.decay()

	for {
		select {
		case <-ticker.C:
			w.decay()
		case <-w.stopCh:
			return
		}
	}
}

func (w *Worker) decay() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := w.svc.DecayExpiredStrikes(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to decay expired strikes")
	} else if count > 0 {
		log.Info().Int64("count", count).Msg("Decayed expired strikes")
	}
}
