/*
Package session defines practice-session records and the recorder.

PURPOSE:
  A Record is the ground truth of one completed practice session. The
  bank's reconciler sums DurationSeconds over the full history; the
  commitment engine reads StartTime to decide whether a session falls on
  a required day inside the allowed window.

OWNERSHIP:
  The recorder owns session records. The bank and the commitment engine
  only READ them; nothing in this module ever edits or deletes a record.

SEE ALSO:
  - bank/reconcile.go: Consumes the full history
  - commitment/engine.go: Consumes individual completions
*/
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is one completed practice session.
type Record struct {
	UUID            string
	StartTime       time.Time
	EndTime         time.Time
	DurationSeconds float64
}

// NewRecord builds a record for a session that ran [start, end).
func NewRecord(start, end time.Time) Record {
	return Record{
		UUID:            uuid.NewString(),
		StartTime:       start,
		EndTime:         end,
		DurationSeconds: end.Sub(start).Seconds(),
	}
}

// Recorder persists completed sessions.
type Recorder interface {
	// Record appends a completed session.
	Record(ctx context.Context, r Record) error

	// All returns every recorded session, ordered by start time. This is
	// the reconciler's input.
	All(ctx context.Context) ([]Record, error)

	// Recent returns the most recent sessions, newest first, at most limit.
	Recent(ctx context.Context, limit int) ([]Record, error)
}
