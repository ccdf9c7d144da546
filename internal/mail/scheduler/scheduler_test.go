package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	maildomain "mailpilot-backend/internal/mail/domain"
	"mailpilot-backend/internal/mail/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPoller struct {
	mu     sync.Mutex
	cycles int
	window int
	err    error
}

func (s *stubPoller) RunPollCycle(ctx context.Context, hoursBack int) (maildomain.PollSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles++
	s.window = hoursBack
	return maildomain.PollSummary{}, s.err
}

func (s *stubPoller) cycleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles
}

func (s *stubPoller) lastWindow() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

func TestSchedulerRunsImmediatelyAndOnTicks(t *testing.T) {
	t.Parallel()

	poller := &stubPoller{}
	s := NewPollScheduler(poller, 10*time.Millisecond, 2)
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return poller.cycleCount() >= 3
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 2, poller.lastWindow())
}

func TestSchedulerStopHaltsCycles(t *testing.T) {
	t.Parallel()

	poller := &stubPoller{}
	s := NewPollScheduler(poller, 10*time.Millisecond, 1)
	s.Start()

	require.Eventually(t, func() bool {
		return poller.cycleCount() >= 1
	}, time.Second, 5*time.Millisecond)
	s.Stop()

	// Give any in-flight tick time to land, then confirm the count froze.
	time.Sleep(30 * time.Millisecond)
	after := poller.cycleCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, poller.cycleCount())
}

func TestSchedulerSurvivesInFlightSkips(t *testing.T) {
	t.Parallel()

	poller := &stubPoller{err: usecase.ErrCycleInFlight}
	s := NewPollScheduler(poller, 10*time.Millisecond, 1)
	s.Start()
	defer s.Stop()

	// Skipped ticks keep the loop alive.
	require.Eventually(t, func() bool {
		return poller.cycleCount() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerDefaults(t *testing.T) {
	t.Parallel()

	s := NewPollScheduler(&stubPoller{}, 0, 0)
	assert.Equal(t, 15*time.Minute, s.interval)
	assert.Equal(t, 1, s.windowHours)
}
