package commitment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/practice-engine/commitment"
)

// =============================================================================
// GAP SETTLEMENT
// =============================================================================

func TestSweep_PenalizesElapsedDaysButNeverToday(t *testing.T) {
	// GIVEN: A daily commitment whose last settled day is 3 days ago
	// WHEN: The sweep runs
	// THEN: Exactly the two fully elapsed days are penalized; today is
	//       left open

	f := newEngineFixture(t)
	f.startDaily(t)
	ctx := context.Background()

	_, err := f.engine.ProcessCompletedSession(ctx, "s-1", 1800, f.now)
	require.NoError(t, err)

	day0 := commitment.StartOfDay(f.now)
	f.now = f.now.AddDate(0, 0, 3)

	result, err := f.engine.ProcessMissedDaySweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, result.DaysChecked)
	assert.Equal(t, 2, result.DaysMissed)
	assert.Zero(t, result.GraceDaysUsed)
	assert.GreaterOrEqual(t, result.PenaltyMinutes, 2*commitment.PenaltyMinMinutes)
	assert.LessOrEqual(t, result.PenaltyMinutes, 2*commitment.PenaltyMaxMinutes)
	assert.Empty(t, result.Errors)

	for i := 1; i <= 2; i++ {
		log, err := f.store.GetDayLog(ctx, day0.AddDate(0, 0, i))
		require.NoError(t, err)
		require.NotNil(t, log, "day %d should be settled", i)
		assert.Equal(t, commitment.DayMissed, log.Outcome)
		assert.Negative(t, log.MinutesAdjustment)
	}

	today, err := f.store.GetDayLog(ctx, f.now)
	require.NoError(t, err)
	assert.Nil(t, today, "today is never swept")

	s, err := f.engine.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, day0.AddDate(0, 0, 2), s.Analytics.LastSessionDate, "watermark at yesterday")
	assert.Equal(t, 2, s.Analytics.SessionsMissed)
	assert.Zero(t, s.Analytics.CurrentStreak)
}

func TestSweep_PenaltiesDebitTheBank(t *testing.T) {
	f := newEngineFixture(t)
	f.startDaily(t)
	ctx := context.Background()

	_, err := f.engine.ProcessCompletedSession(ctx, "s-1", 1800, f.now)
	require.NoError(t, err)
	before := f.balance(t)

	f.now = f.now.AddDate(0, 0, 2) // one elapsed day
	result, err := f.engine.ProcessMissedDaySweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, result.DaysMissed)

	after := f.balance(t)
	assert.True(t, after.Consumed.GreaterThan(before.Consumed), "penalty must debit consumed hours")
}

func TestSweep_RerunIsNoOp(t *testing.T) {
	// GIVEN: A gap already settled by one sweep
	// WHEN: The sweep runs again with no new elapsed days
	// THEN: Nothing is checked and the cursor does not move

	f := newEngineFixture(t)
	f.startDaily(t)
	ctx := context.Background()

	_, err := f.engine.ProcessCompletedSession(ctx, "s-1", 1800, f.now)
	require.NoError(t, err)

	f.now = f.now.AddDate(0, 0, 3)
	first, err := f.engine.ProcessMissedDaySweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, first.DaysMissed)

	cursorAfterFirst, err := f.engine.Settings(ctx)
	require.NoError(t, err)

	second, err := f.engine.ProcessMissedDaySweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.DaysChecked)
	assert.Zero(t, second.DaysMissed)

	cursorAfterSecond, err := f.engine.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, cursorAfterFirst.RNGIndex, cursorAfterSecond.RNGIndex)
}

func TestSweep_GraceConsumedBeforePenalties(t *testing.T) {
	// GIVEN: One grace day remaining and two missed days
	// WHEN: The sweep settles the gap
	// THEN: The older day is graced (no debit), the younger penalized

	f := newEngineFixture(t)
	_, err := f.engine.Start(context.Background(), commitment.StartConfig{
		DurationDays:          30,
		ScheduleType:          commitment.ScheduleDaily,
		WindowType:            commitment.WindowAnytime,
		MinimumSessionMinutes: 10,
		GraceAllowance:        1,
	})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.engine.ProcessCompletedSession(ctx, "s-1", 1800, f.now)
	require.NoError(t, err)
	day0 := commitment.StartOfDay(f.now)

	f.now = f.now.AddDate(0, 0, 3)
	result, err := f.engine.ProcessMissedDaySweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.GraceDaysUsed)
	assert.Equal(t, 1, result.DaysMissed)

	graced, err := f.store.GetDayLog(ctx, day0.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, commitment.DayGrace, graced.Outcome)
	assert.Zero(t, graced.MinutesAdjustment)

	missed, err := f.store.GetDayLog(ctx, day0.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, commitment.DayMissed, missed.Outcome)

	s, err := f.engine.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, s.GraceUsed)
}

func TestSweep_WeekdayScheduleSkipsWeekend(t *testing.T) {
	// Fixture starts Tuesday 2026-03-03. Complete Friday, jump to Monday:
	// Saturday and Sunday elapse but neither is required.

	f := newEngineFixture(t)
	_, err := f.engine.Start(context.Background(), commitment.StartConfig{
		DurationDays:          30,
		ScheduleType:          commitment.ScheduleWeekday,
		WindowType:            commitment.WindowAnytime,
		MinimumSessionMinutes: 10,
	})
	require.NoError(t, err)
	ctx := context.Background()

	friday := time.Date(2026, time.March, 6, 9, 0, 0, 0, time.UTC)
	require.Equal(t, time.Friday, friday.Weekday())
	f.now = friday
	_, err = f.engine.ProcessCompletedSession(ctx, "s-1", 1800, f.now)
	require.NoError(t, err)

	f.now = friday.AddDate(0, 0, 3) // Monday
	result, err := f.engine.ProcessMissedDaySweep(ctx)
	require.NoError(t, err)

	assert.Zero(t, result.DaysChecked, "weekend days are not required")
	assert.Zero(t, result.DaysMissed)
}

func TestSweep_FirstDayAfterActivationIsNotSwept(t *testing.T) {
	// The range's lower bound is exclusive at the activation day: with no
	// session ever logged, the first sweepable day is the day AFTER start.

	f := newEngineFixture(t)
	f.startDaily(t)
	ctx := context.Background()

	f.now = f.now.AddDate(0, 0, 2)
	result, err := f.engine.ProcessMissedDaySweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.DaysChecked, "only start+1 has elapsed past the exclusive bound")
}

func TestSweep_InactiveCommitmentIsZeroResult(t *testing.T) {
	f := newEngineFixture(t)
	result, err := f.engine.ProcessMissedDaySweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.DaysChecked)
}

// =============================================================================
// FLEXIBLE WEEKLY SETTLEMENT
// =============================================================================

func TestSweep_FlexibleSettlesOnlyElapsedWeeks(t *testing.T) {
	// GIVEN: A flexible commitment (target 3/week) started Tuesday with
	//        one completion that week
	// WHEN: The sweep runs the following Wednesday
	// THEN: The elapsed week's shortfall (2) is penalized on its final
	//       unlogged days; the current week is untouched

	f := newEngineFixture(t)
	_, err := f.engine.Start(context.Background(), commitment.StartConfig{
		DurationDays:          30,
		ScheduleType:          commitment.ScheduleFlexible,
		WeeklyTarget:          3,
		WindowType:            commitment.WindowAnytime,
		MinimumSessionMinutes: 10,
	})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.engine.ProcessCompletedSession(ctx, "s-1", 1800, f.now)
	require.NoError(t, err)

	// Wednesday of the following week.
	f.now = f.now.AddDate(0, 0, 8)
	result, err := f.engine.ProcessMissedDaySweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, result.DaysMissed, "shortfall of 2 against the weekly target")

	// The misses land on the last days of the elapsed week (Sat, Sun).
	saturday := time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		log, err := f.store.GetDayLog(ctx, saturday.AddDate(0, 0, i))
		require.NoError(t, err)
		require.NotNil(t, log)
		assert.Equal(t, commitment.DayMissed, log.Outcome)
	}

	// Nothing in the current week is settled.
	monday := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	log, err := f.store.GetDayLog(ctx, monday)
	require.NoError(t, err)
	assert.Nil(t, log)
}

func TestSweep_FlexibleMetQuotaNoPenalty(t *testing.T) {
	f := newEngineFixture(t)
	_, err := f.engine.Start(context.Background(), commitment.StartConfig{
		DurationDays:          30,
		ScheduleType:          commitment.ScheduleFlexible,
		WeeklyTarget:          2,
		WindowType:            commitment.WindowAnytime,
		MinimumSessionMinutes: 10,
	})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.engine.ProcessCompletedSession(ctx, "s-1", 1800, f.now)
	require.NoError(t, err)
	f.now = f.now.AddDate(0, 0, 1)
	_, err = f.engine.ProcessCompletedSession(ctx, "s-2", 1800, f.now)
	require.NoError(t, err)

	f.now = f.now.AddDate(0, 0, 7)
	result, err := f.engine.ProcessMissedDaySweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.DaysMissed)
}

// =============================================================================
// PENDING COUNT
// =============================================================================

func TestPendingMissedDaysCount_MirrorsSweepWithoutMutating(t *testing.T) {
	f := newEngineFixture(t)
	f.startDaily(t)
	ctx := context.Background()

	_, err := f.engine.ProcessCompletedSession(ctx, "s-1", 1800, f.now)
	require.NoError(t, err)
	f.now = f.now.AddDate(0, 0, 3)

	count, err := f.engine.PendingMissedDaysCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Counting twice changes nothing.
	count, err = f.engine.PendingMissedDaysCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	result, err := f.engine.ProcessMissedDaySweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.DaysChecked)

	count, err = f.engine.PendingMissedDaysCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "settled gap leaves nothing pending")
}
