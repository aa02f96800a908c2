/*
Package notify provides best-effort practice reminders.

PURPOSE:
  The reminder layer schedules "time to practice" notifications ahead of
  required days. It is strictly best-effort: a failed schedule or cancel
  call is logged and swallowed. A reminder that never fires must not
  block recording a session or settling a day.

SEE ALSO:
  - planner.go: Derives the next reminder from commitment settings
*/
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler is the platform notification surface. Implementations are
// fire-and-forget; errors are advisory.
type Scheduler interface {
	Schedule(ctx context.Context, id, title, body string, at time.Time) error
	Cancel(ctx context.Context, id string) error
}

// LogScheduler is the default Scheduler: it records what would have been
// scheduled. Useful in development and as the server-side stand-in for a
// device notification bridge.
type LogScheduler struct{}

func (LogScheduler) Schedule(_ context.Context, id, title, body string, at time.Time) error {
	slog.Info("notification scheduled", "id", id, "title", title, "at", at.Format(time.RFC3339))
	return nil
}

func (LogScheduler) Cancel(_ context.Context, id string) error {
	slog.Info("notification canceled", "id", id)
	return nil
}

// BestEffort wraps a Scheduler call: the error is logged and dropped.
func BestEffort(err error, op string) {
	if err != nil {
		slog.Warn("notification scheduling failed", "op", op, "error", err)
	}
}
