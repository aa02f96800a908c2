package commitment_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/practice-engine/commitment"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// activeSettings covers March 2026 with the given schedule.
func activeSettings(schedule commitment.ScheduleType) commitment.Settings {
	return commitment.Settings{
		IsActive:     true,
		StartDate:    time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, time.March, 30, 0, 0, 0, 0, time.UTC),
		DurationDays: 30,
		ScheduleType: schedule,
		WindowType:   commitment.WindowAnytime,
	}
}

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// =============================================================================
// DAY REQUIREMENT
// =============================================================================

func TestIsDayRequired_InactiveCommitment(t *testing.T) {
	s := activeSettings(commitment.ScheduleDaily)
	s.IsActive = false
	assert.False(t, commitment.IsDayRequired(s.StartDate, s))
}

func TestIsDayRequired_OutsideCommitmentRange(t *testing.T) {
	s := activeSettings(commitment.ScheduleDaily)

	dayBefore := s.StartDate.AddDate(0, 0, -1)
	dayAfter := s.EndDate.AddDate(0, 0, 1)
	assert.False(t, commitment.IsDayRequired(dayBefore, s))
	assert.False(t, commitment.IsDayRequired(dayAfter, s))
	assert.True(t, commitment.IsDayRequired(s.StartDate, s), "start date itself is in range")
	assert.True(t, commitment.IsDayRequired(s.EndDate, s), "end date itself is in range")
}

func TestIsDayRequired_WeekdaySchedule(t *testing.T) {
	s := activeSettings(commitment.ScheduleWeekday)

	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, monday.Weekday())

	assert.True(t, commitment.IsDayRequired(monday, s))
	assert.True(t, commitment.IsDayRequired(monday.AddDate(0, 0, 4), s), "Friday")
	assert.False(t, commitment.IsDayRequired(monday.AddDate(0, 0, 5), s), "Saturday")
	assert.False(t, commitment.IsDayRequired(monday.AddDate(0, 0, 6), s), "Sunday")
}

func TestIsDayRequired_CustomMask(t *testing.T) {
	s := activeSettings(commitment.ScheduleCustom)
	s.CustomDays[time.Tuesday] = true
	s.CustomDays[time.Thursday] = true

	tuesday := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Tuesday, tuesday.Weekday())

	assert.True(t, commitment.IsDayRequired(tuesday, s))
	assert.True(t, commitment.IsDayRequired(tuesday.AddDate(0, 0, 2), s), "Thursday")
	assert.False(t, commitment.IsDayRequired(tuesday.AddDate(0, 0, 1), s), "Wednesday")
}

func TestIsDayRequired_FlexibleTreatsEveryDayAsRequired(t *testing.T) {
	s := activeSettings(commitment.ScheduleFlexible)
	s.WeeklyTarget = 3

	for i := 0; i < 7; i++ {
		assert.True(t, commitment.IsDayRequired(s.StartDate.AddDate(0, 0, i), s))
	}
}

// =============================================================================
// PRACTICE WINDOW
// =============================================================================

func TestIsWithinWindow_Anytime(t *testing.T) {
	s := activeSettings(commitment.ScheduleDaily)
	assert.True(t, commitment.IsWithinWindow(at(s.StartDate, 3, 0), s))
}

func TestIsWithinWindow_Morning(t *testing.T) {
	s := activeSettings(commitment.ScheduleDaily)
	s.WindowType = commitment.WindowMorning

	day := s.StartDate
	assert.False(t, commitment.IsWithinWindow(at(day, 4, 59), s))
	assert.True(t, commitment.IsWithinWindow(at(day, 5, 0), s), "05:00 inclusive")
	assert.True(t, commitment.IsWithinWindow(at(day, 11, 59), s))
	assert.False(t, commitment.IsWithinWindow(at(day, 12, 0), s), "12:00 exclusive")
}

func TestIsWithinWindow_OvernightWraparound(t *testing.T) {
	// GIVEN: A 22:00-06:00 window (end precedes start)
	// THEN: Late evening and early morning match; midday does not

	s := activeSettings(commitment.ScheduleDaily)
	s.WindowType = commitment.WindowSpecific
	s.WindowStartMinutes = 22 * 60
	s.WindowEndMinutes = 6 * 60

	day := s.StartDate
	assert.True(t, commitment.IsWithinWindow(at(day, 23, 30), s))
	assert.True(t, commitment.IsWithinWindow(at(day, 5, 0), s))
	assert.True(t, commitment.IsWithinWindow(at(day, 22, 0), s), "start inclusive")
	assert.False(t, commitment.IsWithinWindow(at(day, 6, 0), s), "end exclusive")
	assert.False(t, commitment.IsWithinWindow(at(day, 12, 0), s))
}

func TestIsWithinWindow_DegenerateSpecificWindowMatchesAlways(t *testing.T) {
	s := activeSettings(commitment.ScheduleDaily)
	s.WindowType = commitment.WindowSpecific
	s.WindowStartMinutes = 600
	s.WindowEndMinutes = 600

	assert.True(t, commitment.IsWithinWindow(at(s.StartDate, 3, 0), s))
}

// =============================================================================
// DAY WALKS
// =============================================================================

func TestNextRequiredDate_SkipsToNextMatchingDay(t *testing.T) {
	s := activeSettings(commitment.ScheduleCustom)
	s.CustomDays[time.Friday] = true

	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	next, ok := commitment.NextRequiredDate(monday, s)
	require.True(t, ok)
	assert.Equal(t, time.Friday, next.Weekday())
	assert.Equal(t, 6, next.Day())
}

func TestNextRequiredDate_NoneLeftBeforeEnd(t *testing.T) {
	s := activeSettings(commitment.ScheduleCustom) // empty mask: never required

	_, ok := commitment.NextRequiredDate(s.StartDate, s)
	assert.False(t, ok)
}

func TestRequiredDatesInRange_BoundedByCommitmentEnd(t *testing.T) {
	s := activeSettings(commitment.ScheduleDaily)

	from := s.EndDate.AddDate(0, 0, -2)
	to := s.EndDate.AddDate(0, 0, 5)
	days := commitment.RequiredDatesInRange(from, to, s)

	require.Len(t, days, 3, "two days before end + end itself")
	assert.Equal(t, s.EndDate, days[len(days)-1])
}
