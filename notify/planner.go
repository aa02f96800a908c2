/*
planner.go - Derives the next practice reminder from commitment settings

PURPOSE:
  Given the active settings, decide when the next reminder should fire:
  on the next required day, at the start of the practice window (or a
  default morning hour for anytime schedules).
*/
package notify

import (
	"context"
	"time"

	"github.com/warp/practice-engine/commitment"
)

// ReminderID is the single recurring practice reminder. Re-scheduling
// replaces the previous one.
const ReminderID = "practice-reminder"

// DefaultReminderMinutes is the reminder time for anytime windows,
// minutes past local midnight (09:00).
const DefaultReminderMinutes = 540

// Planner schedules practice reminders from commitment state.
type Planner struct {
	scheduler Scheduler
	now       func() time.Time
}

func NewPlanner(s Scheduler) *Planner {
	return &Planner{scheduler: s, now: time.Now}
}

// WithClock overrides the planner clock. Test hook.
func (p *Planner) WithClock(now func() time.Time) *Planner {
	p.now = now
	return p
}

// Refresh cancels the standing reminder and schedules the next one. All
// failures are best-effort: Refresh never returns an error.
func (p *Planner) Refresh(ctx context.Context, settings *commitment.Settings) {
	BestEffort(p.scheduler.Cancel(ctx, ReminderID), "cancel")

	if settings == nil || !settings.IsActive {
		return
	}
	at, ok := p.nextReminder(*settings)
	if !ok {
		return
	}
	BestEffort(p.scheduler.Schedule(ctx, ReminderID,
		"Time to practice",
		"Your commitment has a session scheduled today.",
		at), "schedule")
}

// nextReminder finds the first required day at or after now whose
// reminder time has not already passed.
func (p *Planner) nextReminder(s commitment.Settings) (time.Time, bool) {
	now := p.now()
	day, ok := commitment.NextRequiredDate(now, s)
	for ok {
		at := day.Add(time.Duration(p.reminderMinutes(s)) * time.Minute)
		if at.After(now) {
			return at, true
		}
		day, ok = commitment.NextRequiredDate(day.AddDate(0, 0, 1), s)
	}
	return time.Time{}, false
}

func (p *Planner) reminderMinutes(s commitment.Settings) int {
	switch s.WindowType {
	case commitment.WindowMorning:
		return commitment.MorningStartMinutes
	case commitment.WindowSpecific:
		return s.WindowStartMinutes
	default:
		return DefaultReminderMinutes
	}
}
