/*
schedule.go - Pure schedule and window evaluation

PURPOSE:
  Answers two questions with no side effects:
    1. Is calendar day X a required practice day?
    2. Does timestamp T fall inside the allowed practice window?

TIMEZONE POLICY:
  Deliberately timezone-naive. All day boundaries and window minutes use
  the caller's local wall clock (the timestamp's own location). A phone
  that travels changes its practice day along with its clock; the engine
  follows.

WINDOW WRAPAROUND:
  A specific window whose end precedes its start spans midnight:
  22:00-06:00 matches minutes >= start OR minutes < end. Handled
  explicitly; there is no modular-arithmetic cleverness to decode.

SEE ALSO:
  - weekly.go: Week boundaries for flexible schedules
  - engine.go / sweep.go: Callers
*/
package commitment

import "time"

// StartOfDay truncates a timestamp to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two timestamps fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// minutesIntoDay returns minutes past local midnight.
func minutesIntoDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// =============================================================================
// DAY REQUIREMENT
// =============================================================================

// IsDayRequired reports whether the day containing t requires a session.
// False when the commitment is inactive or the day falls outside
// [StartDate, EndDate].
//
// Flexible schedules answer true for every in-range day: the per-day check
// cannot know the weekly quota's state. The quota itself is enforced by
// counting completions per week (weekly.go), not here.
func IsDayRequired(t time.Time, s Settings) bool {
	if !s.IsActive {
		return false
	}
	day := StartOfDay(t)
	if day.Before(StartOfDay(s.StartDate)) || day.After(StartOfDay(s.EndDate)) {
		return false
	}

	switch s.ScheduleType {
	case ScheduleDaily:
		return true
	case ScheduleWeekday:
		wd := day.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	case ScheduleCustom:
		return s.CustomDays[day.Weekday()]
	case ScheduleFlexible:
		return true
	default:
		return false
	}
}

// =============================================================================
// PRACTICE WINDOW
// =============================================================================

// IsWithinWindow reports whether t falls inside the allowed practice
// window, by local clock minutes.
func IsWithinWindow(t time.Time, s Settings) bool {
	minutes := minutesIntoDay(t)

	switch s.WindowType {
	case WindowAnytime:
		return true
	case WindowMorning:
		return minutes >= MorningStartMinutes && minutes < MorningEndMinutes
	case WindowSpecific:
		start, end := s.WindowStartMinutes, s.WindowEndMinutes
		if start == end {
			return true
		}
		if end < start {
			// Overnight window, e.g. 22:00-06:00.
			return minutes >= start || minutes < end
		}
		return minutes >= start && minutes < end
	default:
		return true
	}
}

// =============================================================================
// DAY WALKS
// =============================================================================

// NextRequiredDate returns the first required day at or after t, or false
// when none remains before the commitment ends.
func NextRequiredDate(t time.Time, s Settings) (time.Time, bool) {
	if !s.IsActive {
		return time.Time{}, false
	}
	day := StartOfDay(t)
	end := StartOfDay(s.EndDate)
	for !day.After(end) {
		if IsDayRequired(day, s) {
			return day, true
		}
		day = day.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}

// RequiredDatesInRange returns every required day in [from, to],
// bounded by the commitment end date.
func RequiredDatesInRange(from, to time.Time, s Settings) []time.Time {
	var required []time.Time
	day := StartOfDay(from)
	end := StartOfDay(to)
	if commitEnd := StartOfDay(s.EndDate); end.After(commitEnd) {
		end = commitEnd
	}
	for !day.After(end) {
		if IsDayRequired(day, s) {
			required = append(required, day)
		}
		day = day.AddDate(0, 0, 1)
	}
	return required
}
