/*
sweep.go - Retroactive penalties for days that elapsed without a session

PURPOSE:
  Runs on app foreground. Walks the gap between the last processed day
  and yesterday and settles every required day that has no day log:
  grace if any allowance remains, otherwise a penalty draw, a ledger
  debit, and a missed day log.

RANGE:
  (max(lastSessionDate, commitmentStart), yesterday], further capped by
  the commitment end date. Today is NEVER touched - the user still has
  time. After the walk the watermark moves to yesterday so the same gap
  is never re-swept.

FLEXIBLE SCHEDULES:
  No per-day penalties. The sweep settles only fully elapsed weeks
  (Mon-Sun, weekly.go): the shortfall against the weekly target is
  penalized, with the missed logs placed on the final unlogged days of
  that week. The current week is never judged.

ERROR POLICY:
  One bad day does not block the rest of the walk. Per-day failures are
  collected as DayError values in the result; the watermark still
  advances for the days that settled.

SEE ALSO:
  - engine.go: The completion-side counterpart
  - outcome.go: RollPenalty
*/
package commitment

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SweepResult summarizes one missed-day sweep.
type SweepResult struct {
	DaysChecked    int
	DaysMissed     int
	GraceDaysUsed  int
	PenaltyMinutes int // total magnitude debited, positive
	Errors         []error
}

// ProcessMissedDaySweep walks the unsettled gap and applies penalties.
// Safe to re-run: with no new elapsed days it is a no-op.
func (e *Engine) ProcessMissedDaySweep(ctx context.Context) (SweepResult, error) {
	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("load settings: %w", err)
	}
	if settings == nil || !settings.IsActive {
		return SweepResult{}, nil
	}

	today := StartOfDay(e.now())
	days, err := e.unsettledDays(ctx, *settings, today)
	if err != nil {
		return SweepResult{}, err
	}

	var result SweepResult
	updated := *settings
	seq := NewSequencer(updated.RNGSeed, updated.RNGIndex)

	for _, day := range days {
		result.DaysChecked++

		if updated.GraceUsed < updated.GraceAllowance {
			log := DayLog{Day: day, Outcome: DayGrace, AdjustmentType: AdjustNone}
			if err := e.store.Apply(ctx, Effects{DayLogs: []DayLog{log}}); err != nil {
				result.Errors = append(result.Errors, &DayError{Day: day, Err: err})
				continue
			}
			updated.GraceUsed++
			result.GraceDaysUsed++
			continue
		}

		var outcome Outcome
		outcome, seq = RollPenalty(seq)
		log := DayLog{
			Day:               day,
			Outcome:           DayMissed,
			MinutesAdjustment: outcome.MinutesChange,
			AdjustmentType:    AdjustPenalty,
		}
		if err := e.store.Apply(ctx, Effects{DayLogs: []DayLog{log}, BankMinutes: outcome.MinutesChange}); err != nil {
			result.Errors = append(result.Errors, &DayError{Day: day, Err: err})
			continue
		}
		updated.Analytics.SessionsMissed++
		updated.Analytics.PenaltyMinutes += -outcome.MinutesChange
		updated.Analytics.CurrentStreak = 0
		result.DaysMissed++
		result.PenaltyMinutes += -outcome.MinutesChange
	}

	// Advance the cursor and the watermark even when nothing was missed:
	// the gap has been examined and must not be re-swept.
	updated.RNGIndex = seq.Index
	yesterday := today.AddDate(0, 0, -1)
	if yesterday.After(updated.Analytics.LastSessionDate) {
		updated.Analytics.LastSessionDate = yesterday
	}
	if err := e.store.PutSettings(ctx, updated); err != nil {
		return result, fmt.Errorf("save settings: %w", err)
	}

	if result.DaysMissed > 0 || result.GraceDaysUsed > 0 {
		slog.Info("missed-day sweep settled gap",
			"checked", result.DaysChecked,
			"missed", result.DaysMissed,
			"grace", result.GraceDaysUsed,
			"penalty_minutes", result.PenaltyMinutes)
	}
	return result, nil
}

// PendingMissedDaysCount mirrors the sweep walk without mutating
// anything, for pre-sweep UI warnings.
func (e *Engine) PendingMissedDaysCount(ctx context.Context) (int, error) {
	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		return 0, fmt.Errorf("load settings: %w", err)
	}
	if settings == nil || !settings.IsActive {
		return 0, nil
	}
	days, err := e.unsettledDays(ctx, *settings, StartOfDay(e.now()))
	if err != nil {
		return 0, err
	}
	return len(days), nil
}

// =============================================================================
// GAP WALK
// =============================================================================

// unsettledDays lists the days the sweep must settle, oldest first.
// All returned days are strictly before today.
func (e *Engine) unsettledDays(ctx context.Context, s Settings, today time.Time) ([]time.Time, error) {
	// Lower bound is exclusive: the watermark day (or the activation day
	// itself) is already settled.
	start := StartOfDay(s.StartDate)
	if watermark := StartOfDay(s.Analytics.LastSessionDate); watermark.After(start) {
		start = watermark
	}
	start = start.AddDate(0, 0, 1)

	yesterday := today.AddDate(0, 0, -1)
	end := yesterday
	if commitEnd := StartOfDay(s.EndDate); end.After(commitEnd) {
		end = commitEnd
	}
	if start.After(end) {
		return nil, nil
	}

	// Flexible quotas count completions across the whole week, including
	// days already behind the watermark, so load from the week boundary.
	logStart := start
	if s.ScheduleType == ScheduleFlexible {
		logStart = WeekStart(start)
	}
	logs, err := e.store.DayLogsInRange(ctx, logStart, end)
	if err != nil {
		return nil, fmt.Errorf("load day logs: %w", err)
	}
	logged := make(map[time.Time]DayLog, len(logs))
	for _, l := range logs {
		logged[StartOfDay(l.Day)] = l
	}

	if s.ScheduleType == ScheduleFlexible {
		return flexibleUnsettledDays(s, start, end, today, logged), nil
	}

	var days []time.Time
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if !IsDayRequired(day, s) {
			continue
		}
		if _, ok := logged[day]; ok {
			continue
		}
		days = append(days, day)
	}
	return days, nil
}

// flexibleUnsettledDays settles weekly quotas instead of individual days.
// Only weeks that fully elapsed before today are judged; the shortfall
// lands on the final unlogged days of each week.
func flexibleUnsettledDays(s Settings, start, end, today time.Time, logged map[time.Time]DayLog) []time.Time {
	var days []time.Time

	for week := WeekStart(start); !week.After(end); week = week.AddDate(0, 0, 7) {
		if !WeekElapsed(week, today) {
			continue
		}

		completed := 0
		var unlogged []time.Time
		for i := 0; i < 7; i++ {
			day := week.AddDate(0, 0, i)
			// Completions count wherever they fall in the week; only days
			// inside the sweepable range are candidates for misses.
			if l, ok := logged[day]; ok {
				if l.Outcome == DayCompleted {
					completed++
				}
				continue
			}
			if day.Before(start) || day.After(end) {
				continue
			}
			unlogged = append(unlogged, day)
		}

		shortfall := s.WeeklyTarget - completed
		if shortfall <= 0 {
			continue
		}
		// Last unlogged days of the week carry the misses.
		if shortfall > len(unlogged) {
			shortfall = len(unlogged)
		}
		days = append(days, unlogged[len(unlogged)-shortfall:]...)
	}
	return days
}
