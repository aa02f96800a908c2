/*
weekly.go - Week boundaries and quota counting for flexible schedules

PURPOSE:
  A flexible schedule stakes a weekly quota ("3 sessions a week") instead
  of fixed days. The per-day evaluator treats every day as required; this
  file owns the pieces the quota actually needs: where a week starts,
  whether a week has fully elapsed, and how many completions it holds.

WEEK BOUNDARY DECISION:
  Weeks run Monday through Sunday, local wall clock. A week is settled
  only once its Sunday is strictly before today - the current week is
  never judged, for the same reason the sweep never touches today: the
  user still has time.

SEE ALSO:
  - sweep.go: Settles elapsed weeks for flexible schedules
  - engine.go: Reports weekly progress
*/
package commitment

import "time"

// WeekStart returns the Monday (local midnight) of the week containing t.
func WeekStart(t time.Time) time.Time {
	day := StartOfDay(t)
	// time.Weekday is Sunday=0; shift so Monday=0.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekEnd returns the Sunday (local midnight) of the week containing t.
func WeekEnd(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 6)
}

// WeekElapsed reports whether the week containing day ended strictly
// before today: only then may it be settled.
func WeekElapsed(day, today time.Time) bool {
	return WeekEnd(day).Before(StartOfDay(today))
}

// CompletionsInWeek counts completed day logs inside the week containing t.
func CompletionsInWeek(logs []DayLog, t time.Time) int {
	start, end := WeekStart(t), WeekEnd(t)
	count := 0
	for _, l := range logs {
		if l.Outcome != DayCompleted {
			continue
		}
		d := StartOfDay(l.Day)
		if !d.Before(start) && !d.After(end) {
			count++
		}
	}
	return count
}

// WeeklyProgress describes the current week of a flexible commitment.
type WeeklyProgress struct {
	WeekStart time.Time
	WeekEnd   time.Time
	Completed int
	Target    int
}

// Remaining is the sessions still owed this week, never negative.
func (p WeeklyProgress) Remaining() int {
	if p.Completed >= p.Target {
		return 0
	}
	return p.Target - p.Completed
}
