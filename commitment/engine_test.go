package commitment_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/practice-engine/bank"
	"github.com/warp/practice-engine/commitment"
	"github.com/warp/practice-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type engineFixture struct {
	store  *memory.Store
	bank   *bank.Service
	engine *commitment.Engine
	now    time.Time
}

// newEngineFixture wires the engine against the in-memory store with a
// frozen clock (Tuesday 2026-03-03, 09:00 local).
func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		store: memory.New(),
		now:   time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.bank = bank.NewService(f.store).WithClock(clock)
	f.engine = commitment.NewEngine(f.store, f.bank).WithClock(clock)
	return f
}

// startDaily activates a daily/anytime commitment on the fixture's
// current day with a 20-minute floor.
func (f *engineFixture) startDaily(t *testing.T) commitment.Settings {
	t.Helper()
	settings, err := f.engine.Start(context.Background(), commitment.StartConfig{
		DurationDays:          30,
		ScheduleType:          commitment.ScheduleDaily,
		WindowType:            commitment.WindowAnytime,
		MinimumSessionMinutes: 20,
	})
	require.NoError(t, err)
	return settings
}

func (f *engineFixture) balance(t *testing.T) bank.Balance {
	t.Helper()
	b, err := f.bank.Balance(context.Background())
	require.NoError(t, err)
	return b
}

// =============================================================================
// SESSION COMPLETION
// =============================================================================

func TestProcessCompletedSession_InactiveCommitment(t *testing.T) {
	f := newEngineFixture(t)

	result, err := f.engine.ProcessCompletedSession(context.Background(), "s-1", 1800, f.now)
	require.NoError(t, err)

	assert.False(t, result.SessionCounted)
	assert.Equal(t, commitment.ReasonInactive, result.Reason)
}

func TestProcessCompletedSession_QualifyingSessionCompletesDay(t *testing.T) {
	// GIVEN: An active daily commitment
	// WHEN: A 30-minute session is reported
	// THEN: The day log is completed, the outcome matches the seeded roll,
	//       and any positive adjustment lands in the bank

	f := newEngineFixture(t)
	settings := f.startDaily(t)
	ctx := context.Background()

	before := f.balance(t)

	result, err := f.engine.ProcessCompletedSession(ctx, "s-1", 1800, f.now)
	require.NoError(t, err)

	require.True(t, result.SessionCounted)
	require.NotNil(t, result.Outcome)
	assert.Equal(t, 1, result.CurrentStreak)

	// The outcome must be exactly what the stream says at cursor zero.
	expected, _ := commitment.RollCompletion(commitment.NewSequencer(settings.RNGSeed, 0))
	assert.Equal(t, expected, *result.Outcome)

	log, err := f.store.GetDayLog(ctx, f.now)
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, commitment.DayCompleted, log.Outcome)
	assert.Equal(t, "s-1", log.SessionUUID)
	assert.Equal(t, expected.MinutesChange, log.MinutesAdjustment)

	after := f.balance(t)
	if expected.MinutesChange > 0 {
		credit := decimal.NewFromInt(int64(expected.MinutesChange)).Div(decimal.NewFromInt(60))
		assert.True(t, after.Purchased.Equal(before.Purchased.Add(credit)))
	} else {
		assert.True(t, after.Purchased.Equal(before.Purchased))
	}

	updated, err := f.engine.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), updated.RNGIndex, "completion consumes two draws")
	assert.Equal(t, 1, updated.Analytics.SessionsCompleted)
	assert.Equal(t, 1, updated.Analytics.WeekdayHistogram[time.Tuesday])
}

func TestProcessCompletedSession_SecondSubmissionIsIdempotent(t *testing.T) {
	// GIVEN: A day already completed by session s-1
	// WHEN: The same day receives another session (double tap, relaunch)
	// THEN: "already completed", no draw consumed, ledger untouched

	f := newEngineFixture(t)
	f.startDaily(t)
	ctx := context.Background()

	first, err := f.engine.ProcessCompletedSession(ctx, "s-1", 1800, f.now)
	require.NoError(t, err)
	require.True(t, first.SessionCounted)

	afterFirst := f.balance(t)
	settingsAfterFirst, err := f.engine.Settings(ctx)
	require.NoError(t, err)

	second, err := f.engine.ProcessCompletedSession(ctx, "s-2", 2400, f.now.Add(time.Hour))
	require.NoError(t, err)

	assert.False(t, second.SessionCounted)
	assert.Equal(t, commitment.ReasonAlreadyCompleted, second.Reason)
	assert.Nil(t, second.Outcome)
	assert.Equal(t, first.CurrentStreak, second.CurrentStreak)

	settingsAfterSecond, err := f.engine.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settingsAfterFirst.RNGIndex, settingsAfterSecond.RNGIndex, "cursor must not advance")
	assert.True(t, f.balance(t).Purchased.Equal(afterFirst.Purchased), "ledger must not move")

	log, err := f.store.GetDayLog(ctx, f.now)
	require.NoError(t, err)
	assert.Equal(t, "s-1", log.SessionUUID, "original session keeps the day")
}

func TestProcessCompletedSession_BelowMinimumLeavesDayOpen(t *testing.T) {
	// GIVEN: A 20-minute floor
	// WHEN: A 10-minute session is reported
	// THEN: The failure is reported structurally, nothing is written, and
	//       a later qualifying session still completes the day

	f := newEngineFixture(t)
	f.startDaily(t)
	ctx := context.Background()

	short, err := f.engine.ProcessCompletedSession(ctx, "s-short", 600, f.now)
	require.NoError(t, err)

	assert.False(t, short.SessionCounted)
	assert.Equal(t, commitment.ReasonBelowMinimum, short.Reason)
	assert.True(t, short.DayRequired)
	assert.True(t, short.WithinWindow)
	assert.False(t, short.MetMinimum)

	log, err := f.store.GetDayLog(ctx, f.now)
	require.NoError(t, err)
	assert.Nil(t, log, "day stays open")

	retry, err := f.engine.ProcessCompletedSession(ctx, "s-full", 1800, f.now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, retry.SessionCounted)
}

func TestProcessCompletedSession_OutsideWindow(t *testing.T) {
	f := newEngineFixture(t)
	_, err := f.engine.Start(context.Background(), commitment.StartConfig{
		DurationDays:          30,
		ScheduleType:          commitment.ScheduleDaily,
		WindowType:            commitment.WindowMorning,
		MinimumSessionMinutes: 10,
	})
	require.NoError(t, err)

	evening := time.Date(2026, time.March, 3, 20, 0, 0, 0, time.UTC)
	result, err := f.engine.ProcessCompletedSession(context.Background(), "s-1", 1800, evening)
	require.NoError(t, err)

	assert.False(t, result.SessionCounted)
	assert.Equal(t, commitment.ReasonOutsideWindow, result.Reason)
}

func TestProcessCompletedSession_NotRequiredDay(t *testing.T) {
	// Weekday schedule, session on Saturday.
	f := newEngineFixture(t)
	_, err := f.engine.Start(context.Background(), commitment.StartConfig{
		DurationDays:          30,
		ScheduleType:          commitment.ScheduleWeekday,
		WindowType:            commitment.WindowAnytime,
		MinimumSessionMinutes: 10,
	})
	require.NoError(t, err)

	saturday := time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)
	require.Equal(t, time.Saturday, saturday.Weekday())

	result, err := f.engine.ProcessCompletedSession(context.Background(), "s-1", 1800, saturday)
	require.NoError(t, err)
	assert.Equal(t, commitment.ReasonNotRequired, result.Reason)
}

// =============================================================================
// STREAKS
// =============================================================================

func TestStreak_ConsecutiveDaysExtend_GapResets(t *testing.T) {
	f := newEngineFixture(t)
	f.startDaily(t)
	ctx := context.Background()

	r, err := f.engine.ProcessCompletedSession(ctx, "s-1", 1800, f.now)
	require.NoError(t, err)
	assert.Equal(t, 1, r.CurrentStreak)

	f.now = f.now.AddDate(0, 0, 1)
	r, err = f.engine.ProcessCompletedSession(ctx, "s-2", 1800, f.now)
	require.NoError(t, err)
	assert.Equal(t, 2, r.CurrentStreak)

	// Skip two days: streak restarts.
	f.now = f.now.AddDate(0, 0, 3)
	r, err = f.engine.ProcessCompletedSession(ctx, "s-3", 1800, f.now)
	require.NoError(t, err)
	assert.Equal(t, 1, r.CurrentStreak)

	s, err := f.engine.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Analytics.LongestStreak)
}

// =============================================================================
// TODAY STATUS
// =============================================================================

func TestToday_ReflectsCompletionAndWindow(t *testing.T) {
	f := newEngineFixture(t)
	f.startDaily(t)
	ctx := context.Background()

	status, err := f.engine.Today(ctx)
	require.NoError(t, err)
	assert.True(t, status.IsActive)
	assert.True(t, status.IsRequired)
	assert.False(t, status.IsCompleted)
	assert.Equal(t, 20, status.MinimumMinutes)
	assert.Nil(t, status.Weekly)

	_, err = f.engine.ProcessCompletedSession(ctx, "s-1", 1800, f.now)
	require.NoError(t, err)

	status, err = f.engine.Today(ctx)
	require.NoError(t, err)
	assert.True(t, status.IsCompleted)
}

func TestToday_FlexibleIncludesWeeklyProgress(t *testing.T) {
	f := newEngineFixture(t)
	_, err := f.engine.Start(context.Background(), commitment.StartConfig{
		DurationDays:          30,
		ScheduleType:          commitment.ScheduleFlexible,
		WeeklyTarget:          3,
		WindowType:            commitment.WindowAnytime,
		MinimumSessionMinutes: 10,
	})
	require.NoError(t, err)

	_, err = f.engine.ProcessCompletedSession(context.Background(), "s-1", 1800, f.now)
	require.NoError(t, err)

	status, err := f.engine.Today(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status.Weekly)
	assert.Equal(t, 1, status.Weekly.Completed)
	assert.Equal(t, 3, status.Weekly.Target)
	assert.Equal(t, 2, status.Weekly.Remaining())
	assert.Equal(t, time.Monday, status.Weekly.WeekStart.Weekday())
}
