/*
engine.go - Session-completion middleware

PURPOSE:
  Ties one completed practice session to a schedule check, an outcome
  roll, and a ledger mutation - in that order, synchronously. This is the
  only place a day becomes "completed".

EVALUATION ORDER (per session):
  1. Commitment inactive          -> inactive result, no mutation
  2. Day already completed        -> "already completed", no mutation
  3. Required/window/minimum gate -> failed condition reported, nothing
                                     written, day stays open for another
                                     attempt
  4. Qualifying                   -> outcome roll, completed day log,
                                     ledger credit, streak + histogram +
                                     cursor, persisted as one Effects

IDEMPOTENCY:
  Step 2 is the barrier. Submitting the same session twice (app relaunch
  mid-flow, double tap) finds the completed day log and backs out before
  any draw is consumed, so the cursor does not advance and the ledger
  does not move.

SEE ALSO:
  - outcome.go: The rolls
  - store.go: The atomic Effects application
  - sweep.go: The retroactive counterpart for missed days
*/
package commitment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/warp/practice-engine/bank"
)

// Reasons a session did not count. Reported structurally, never thrown.
const (
	ReasonInactive         = "commitment inactive"
	ReasonAlreadyCompleted = "already completed"
	ReasonNotRequired      = "day not required"
	ReasonOutsideWindow    = "outside practice window"
	ReasonBelowMinimum     = "below minimum duration"
)

// SessionResult reports what one completed session did to the commitment.
type SessionResult struct {
	SessionCounted bool
	// Reason is empty when the session counted; otherwise it names the
	// first condition that failed.
	Reason string

	DayRequired  bool
	WithinWindow bool
	MetMinimum   bool

	// Outcome is set only when the session counted.
	Outcome       *Outcome
	CurrentStreak int
}

// TodayStatus is the read-only snapshot the UI shows before a session.
type TodayStatus struct {
	IsActive       bool
	IsRequired     bool
	IsCompleted    bool
	IsWithinWindow bool
	MinimumMinutes int
	// Weekly is set only for flexible schedules.
	Weekly *WeeklyProgress
}

// Engine is the commitment middleware. Single writer: it runs on
// app-lifecycle events, never concurrently with the sweep.
type Engine struct {
	store Store
	bank  *bank.Service
	now   func() time.Time
}

// NewEngine creates the session-completion middleware.
func NewEngine(store Store, bankSvc *bank.Service) *Engine {
	return &Engine{store: store, bank: bankSvc, now: time.Now}
}

// WithClock overrides the engine clock. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Settings returns the current settings, or (nil, nil) when commitment
// mode has never been configured.
func (e *Engine) Settings(ctx context.Context) (*Settings, error) {
	return e.store.GetSettings(ctx)
}

// =============================================================================
// SESSION COMPLETION
// =============================================================================

// ProcessCompletedSession evaluates one completed practice session
// against the active commitment. Side effects are all-or-nothing: either
// a completed day log, the updated settings, and any ledger credit land
// together, or nothing is written.
func (e *Engine) ProcessCompletedSession(ctx context.Context, sessionUUID string, durationSeconds float64, startTime time.Time) (SessionResult, error) {
	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		return SessionResult{}, fmt.Errorf("load settings: %w", err)
	}
	if settings == nil || !settings.IsActive {
		return SessionResult{Reason: ReasonInactive}, nil
	}

	result := SessionResult{
		DayRequired:  IsDayRequired(startTime, *settings),
		WithinWindow: IsWithinWindow(startTime, *settings),
		MetMinimum:   durationSeconds/60 >= float64(settings.MinimumSessionMinutes),
	}

	// Idempotency barrier: a day completes at most once.
	day := StartOfDay(startTime)
	existing, err := e.store.GetDayLog(ctx, day)
	if err != nil {
		return SessionResult{}, fmt.Errorf("load day log: %w", err)
	}
	if existing != nil && existing.Outcome == DayCompleted {
		result.Reason = ReasonAlreadyCompleted
		result.CurrentStreak = settings.Analytics.CurrentStreak
		return result, nil
	}

	switch {
	case !result.DayRequired:
		result.Reason = ReasonNotRequired
	case !result.WithinWindow:
		result.Reason = ReasonOutsideWindow
	case !result.MetMinimum:
		result.Reason = ReasonBelowMinimum
	}
	if result.Reason != "" {
		// Not an error, and no day log either: the day stays open for
		// another attempt.
		return result, nil
	}

	// Qualifying session: consume draws from the persisted cursor.
	outcome, seq := RollCompletion(NewSequencer(settings.RNGSeed, settings.RNGIndex))

	updated := *settings
	updated.RNGIndex = seq.Index
	updated.Analytics = completionAnalytics(settings.Analytics, day, outcome)

	effects := Effects{
		DayLogs: []DayLog{{
			Day:               day,
			Outcome:           DayCompleted,
			SessionUUID:       sessionUUID,
			MinutesAdjustment: outcome.MinutesChange,
			AdjustmentType:    outcome.Type,
			WasNearMiss:       outcome.WasNearMiss,
		}},
		Settings: &updated,
	}
	if outcome.MinutesChange > 0 {
		effects.BankMinutes = outcome.MinutesChange
	}

	if err := e.store.Apply(ctx, effects); err != nil {
		return SessionResult{}, fmt.Errorf("apply session effects: %w", err)
	}

	slog.Info("session counted",
		"day", day.Format("2006-01-02"),
		"outcome", string(outcome.Type),
		"minutes", outcome.MinutesChange,
		"streak", updated.Analytics.CurrentStreak)

	result.SessionCounted = true
	result.Outcome = &outcome
	result.CurrentStreak = updated.Analytics.CurrentStreak
	return result, nil
}

// completionAnalytics folds one completed day into the running tally.
func completionAnalytics(a Analytics, day time.Time, outcome Outcome) Analytics {
	a.SessionsCompleted++
	if outcome.MinutesChange > 0 {
		a.BonusMinutes += outcome.MinutesChange
	}

	// Consecutive iff the previous logged session date is within 24 hours
	// of this day; otherwise the streak restarts at 1.
	if !a.LastSessionDate.IsZero() && day.Sub(a.LastSessionDate) <= 24*time.Hour {
		a.CurrentStreak++
	} else {
		a.CurrentStreak = 1
	}
	if a.CurrentStreak > a.LongestStreak {
		a.LongestStreak = a.CurrentStreak
	}

	a.WeekdayHistogram[day.Weekday()]++
	if day.After(a.LastSessionDate) {
		a.LastSessionDate = day
	}
	return a
}

// =============================================================================
// TODAY STATUS
// =============================================================================

// Today returns the snapshot for the current day.
func (e *Engine) Today(ctx context.Context) (TodayStatus, error) {
	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		return TodayStatus{}, fmt.Errorf("load settings: %w", err)
	}
	if settings == nil || !settings.IsActive {
		return TodayStatus{}, nil
	}

	now := e.now()
	status := TodayStatus{
		IsActive:       true,
		IsRequired:     IsDayRequired(now, *settings),
		IsWithinWindow: IsWithinWindow(now, *settings),
		MinimumMinutes: settings.MinimumSessionMinutes,
	}

	log, err := e.store.GetDayLog(ctx, StartOfDay(now))
	if err != nil {
		return TodayStatus{}, fmt.Errorf("load day log: %w", err)
	}
	status.IsCompleted = log != nil && log.Outcome == DayCompleted

	if settings.ScheduleType == ScheduleFlexible {
		progress, err := e.weeklyProgress(ctx, *settings, now)
		if err != nil {
			return TodayStatus{}, err
		}
		status.Weekly = &progress
	}
	return status, nil
}

func (e *Engine) weeklyProgress(ctx context.Context, s Settings, t time.Time) (WeeklyProgress, error) {
	logs, err := e.store.DayLogsInRange(ctx, WeekStart(t), WeekEnd(t))
	if err != nil {
		return WeeklyProgress{}, fmt.Errorf("load week logs: %w", err)
	}
	return WeeklyProgress{
		WeekStart: WeekStart(t),
		WeekEnd:   WeekEnd(t),
		Completed: CompletionsInWeek(logs, t),
		Target:    s.WeeklyTarget,
	}, nil
}
