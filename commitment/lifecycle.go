/*
lifecycle.go - Starting, exiting, and archiving commitments

PURPOSE:
  A commitment is born with a fresh seed, lives for 30/60/90 days, and is
  archived exactly once: completed at its end date, auto-renewed into a
  fresh run, or abandoned through the emergency exit. Archival writes an
  append-only history entry and clears the day logs - they belong to the
  commitment, not the account.

SEED DISCIPLINE:
  The seed is generated here and only here. Nothing else may reseed; a
  renewed commitment is a NEW commitment with a new seed and a cursor
  at zero.
*/
package commitment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// StartConfig is the user-facing configuration for a new commitment.
type StartConfig struct {
	DurationDays          int
	ScheduleType          ScheduleType
	CustomDays            [7]bool
	WeeklyTarget          int
	WindowType            WindowType
	WindowStartMinutes    int
	WindowEndMinutes      int
	MinimumSessionMinutes int
	GraceAllowance        int
	AutoRenew             bool
}

// Start activates a new commitment beginning today. Fails with
// ErrCommitmentActive when one is already running and ErrInvalidDuration
// for unsupported durations.
func (e *Engine) Start(ctx context.Context, cfg StartConfig) (Settings, error) {
	existing, err := e.store.GetSettings(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if existing != nil && existing.IsActive {
		return Settings{}, ErrCommitmentActive
	}
	if !validDuration(cfg.DurationDays) {
		return Settings{}, fmt.Errorf("%w: %d days", ErrInvalidDuration, cfg.DurationDays)
	}

	start := StartOfDay(e.now())
	settings := Settings{
		IsActive:              true,
		StartDate:             start,
		EndDate:               start.AddDate(0, 0, cfg.DurationDays-1),
		DurationDays:          cfg.DurationDays,
		AutoRenew:             cfg.AutoRenew,
		ScheduleType:          cfg.ScheduleType,
		CustomDays:            cfg.CustomDays,
		WeeklyTarget:          cfg.WeeklyTarget,
		WindowType:            cfg.WindowType,
		WindowStartMinutes:    cfg.WindowStartMinutes,
		WindowEndMinutes:      cfg.WindowEndMinutes,
		MinimumSessionMinutes: cfg.MinimumSessionMinutes,
		GraceAllowance:        cfg.GraceAllowance,
		RNGSeed:               NewSeed(),
		RNGIndex:              0,
	}
	if err := e.store.ClearDayLogs(ctx); err != nil {
		return Settings{}, fmt.Errorf("clear day logs: %w", err)
	}
	if err := e.store.PutSettings(ctx, settings); err != nil {
		return Settings{}, fmt.Errorf("save settings: %w", err)
	}

	slog.Info("commitment started",
		"duration_days", cfg.DurationDays,
		"schedule", string(cfg.ScheduleType),
		"window", string(cfg.WindowType))
	return settings, nil
}

// EmergencyExit abandons the active commitment immediately. The history
// entry records the exit; no further penalty is applied beyond what the
// sweep already settled.
func (e *Engine) EmergencyExit(ctx context.Context) (HistoryEntry, error) {
	return e.archive(ctx, EndEmergencyExit)
}

// SettleExpiry archives a commitment whose end date has passed. With
// AutoRenew set, a fresh commitment with the same configuration (and a
// fresh seed) starts immediately. Call after the sweep so the final days
// are settled first. No-op while the commitment is still running.
func (e *Engine) SettleExpiry(ctx context.Context) (*HistoryEntry, error) {
	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if settings == nil || !settings.IsActive {
		return nil, nil
	}
	if !StartOfDay(e.now()).After(StartOfDay(settings.EndDate)) {
		return nil, nil
	}

	reason := EndCompleted
	if settings.AutoRenew {
		reason = EndAutoRenew
	}
	entry, err := e.archive(ctx, reason)
	if err != nil {
		return nil, err
	}

	if settings.AutoRenew {
		cfg := StartConfig{
			DurationDays:          settings.DurationDays,
			ScheduleType:          settings.ScheduleType,
			CustomDays:            settings.CustomDays,
			WeeklyTarget:          settings.WeeklyTarget,
			WindowType:            settings.WindowType,
			WindowStartMinutes:    settings.WindowStartMinutes,
			WindowEndMinutes:      settings.WindowEndMinutes,
			MinimumSessionMinutes: settings.MinimumSessionMinutes,
			GraceAllowance:        settings.GraceAllowance,
			AutoRenew:             true,
		}
		if _, err := e.Start(ctx, cfg); err != nil {
			return &entry, fmt.Errorf("auto-renew: %w", err)
		}
	}
	return &entry, nil
}

// archive writes the history entry, deactivates the settings, and clears
// the day logs.
func (e *Engine) archive(ctx context.Context, reason EndReason) (HistoryEntry, error) {
	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("load settings: %w", err)
	}
	if settings == nil || !settings.IsActive {
		return HistoryEntry{}, ErrNoActiveCommitment
	}

	entry := HistoryEntry{
		ID:             uuid.NewString(),
		StartDate:      settings.StartDate,
		EndDate:        settings.EndDate,
		DurationDays:   settings.DurationDays,
		CompletionRate: settings.Analytics.CompletionRate(),
		NetMinutes:     settings.Analytics.NetMinutes(),
		Reason:         reason,
		ArchivedAt:     e.now(),
	}
	if err := e.store.AppendHistory(ctx, entry); err != nil {
		return HistoryEntry{}, fmt.Errorf("append history: %w", err)
	}

	deactivated := *settings
	deactivated.IsActive = false
	if err := e.store.PutSettings(ctx, deactivated); err != nil {
		return HistoryEntry{}, fmt.Errorf("save settings: %w", err)
	}
	if err := e.store.ClearDayLogs(ctx); err != nil {
		return HistoryEntry{}, fmt.Errorf("clear day logs: %w", err)
	}

	slog.Info("commitment archived",
		"reason", string(reason),
		"completion_rate", fmt.Sprintf("%.2f", entry.CompletionRate),
		"net_minutes", entry.NetMinutes)
	return entry, nil
}

// History returns archived commitments, newest first.
func (e *Engine) History(ctx context.Context) ([]HistoryEntry, error) {
	return e.store.History(ctx)
}

// DayLogs returns the day logs in [from, to] for display.
func (e *Engine) DayLogs(ctx context.Context, from, to time.Time) ([]DayLog, error) {
	return e.store.DayLogsInRange(ctx, from, to)
}

func validDuration(days int) bool {
	for _, d := range Durations {
		if d == days {
			return true
		}
	}
	return false
}
