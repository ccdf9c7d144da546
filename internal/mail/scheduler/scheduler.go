package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"mailpilot-backend/internal/mail/usecase"
)

// PollScheduler triggers poll cycles on a fixed cadence
type PollScheduler struct {
	poller      usecase.PollerUsecase
	interval    time.Duration
	windowHours int
	stopChan    chan struct{}
}

// NewPollScheduler creates a new scheduler
func NewPollScheduler(poller usecase.PollerUsecase, interval time.Duration, windowHours int) *PollScheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if windowHours <= 0 {
		windowHours = 1
	}
	return &PollScheduler{
		poller:      poller,
		interval:    interval,
		windowHours: windowHours,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *PollScheduler) Start() {
	log.Printf("[Scheduler] Starting email poll scheduler (interval: %s, window: %dh)", s.interval, s.windowHours)

	go func() {
		// Run immediately on start
		s.runCycle()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runCycle()
			case <-s.stopChan:
				log.Println("[Scheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *PollScheduler) Stop() {
	close(s.stopChan)
}

func (s *PollScheduler) runCycle() {
	summary, err := s.poller.RunPollCycle(context.Background(), s.windowHours)
	if err != nil {
		if errors.Is(err, usecase.ErrCycleInFlight) {
			log.Println("[Scheduler] Previous poll cycle still running, skipping tick")
			return
		}
		log.Printf("[Scheduler] Poll cycle failed: %v", err)
		return
	}
	if summary.NewCount > 0 || summary.DraftCount > 0 {
		log.Printf("[Scheduler] Poll cycle: %d new, %d drafts", summary.NewCount, summary.DraftCount)
	}
}
