/*
sweeper.go - Background missed-day settlement

PURPOSE:
  Periodically settles past missed days, archives expired commitments,
  and refreshes the practice reminder. This is the safety net for the
  app-launch sweep: even if no request ever arrives, yesterday still
  gets judged.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Sweeps immediately on start, then on every tick
  - Expiry settlement runs after the sweep so the final days are
    settled before the commitment is archived
  - Per-day sweep errors are logged and do not stop the loop

USAGE:
  sweeper := NewSweeper(engine, planner)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - handlers.go: RunSweep endpoint (manual settlement)
  - commitment/sweep.go: The settlement walk itself
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/practice-engine/commitment"
	"github.com/warp/practice-engine/notify"
)

// Sweeper settles missed days on a timer.
type Sweeper struct {
	Engine        *commitment.Engine
	Planner       *notify.Planner
	CheckInterval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSweeper creates a sweeper with a one-hour default interval.
func NewSweeper(engine *commitment.Engine, planner *notify.Planner) *Sweeper {
	return &Sweeper{
		Engine:        engine,
		Planner:       planner,
		CheckInterval: time.Hour,
		stop:          make(chan struct{}),
	}
}

// Start begins the background loop.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)
	go s.run()

	slog.Info("sweeper started", "interval", s.CheckInterval.String())
}

// Stop halts the background loop and waits for it to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		slog.Info("sweeper stopped")
	}
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.sweep()

	for {
		select {
		case <-s.ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Sweeper) sweep() {
	ctx := context.Background()

	result, err := s.Engine.ProcessMissedDaySweep(ctx)
	if err != nil {
		slog.Error("sweep failed", "error", err)
		return
	}
	for _, dayErr := range result.Errors {
		slog.Error("day settlement failed", "error", dayErr)
	}
	if result.DaysMissed > 0 || result.GraceDaysUsed > 0 {
		slog.Info("sweep settled missed days",
			"checked", result.DaysChecked,
			"missed", result.DaysMissed,
			"grace_used", result.GraceDaysUsed,
			"penalty_minutes", result.PenaltyMinutes)
	}

	entry, err := s.Engine.SettleExpiry(ctx)
	if err != nil {
		slog.Error("expiry settlement failed", "error", err)
		return
	}
	if entry != nil {
		slog.Info("commitment expired", "reason", string(entry.Reason))
	}

	settings, err := s.Engine.Settings(ctx)
	if err != nil {
		slog.Error("settings load failed after sweep", "error", err)
		return
	}
	s.Planner.Refresh(ctx, settings)
}

// RunNow triggers an immediate sweep (for testing/admin).
func (s *Sweeper) RunNow() {
	s.sweep()
}
