/*
errors.go - Centralized error types for the commitment engine

PURPOSE:
  Genuine errors only. A session that fails to qualify is NOT an error -
  it is a normal "did not count" outcome reported structurally in the
  result (see engine.go). The errors here cover misuse of the lifecycle
  API and storage failures surfaced during the sweep.

USAGE:
  errors.Is(err, commitment.ErrCommitmentActive)
*/
package commitment

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCommitmentActive is returned when starting a commitment while one
	// is already running.
	ErrCommitmentActive = errors.New("commitment already active")

	// ErrNoActiveCommitment is returned by lifecycle operations that need
	// a running commitment (exit, archive).
	ErrNoActiveCommitment = errors.New("no active commitment")

	// ErrInvalidDuration is returned when the requested duration is not
	// one of the supported commitment lengths.
	ErrInvalidDuration = errors.New("invalid commitment duration")

	// ErrDayCompleted is returned by stores refusing to overwrite a
	// completed day log. The engine checks first; this is the storage
	// layer's last line of defense.
	ErrDayCompleted = errors.New("day already completed")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// DayError records a storage failure while the sweep was settling one
// day. The sweep accumulates these and keeps walking; one bad day must
// not block penalizing the days after it.
type DayError struct {
	Day time.Time
	Err error
}

func (e *DayError) Error() string {
	return fmt.Sprintf("sweep failed for %s: %v", e.Day.Format("2006-01-02"), e.Err)
}

func (e *DayError) Unwrap() error { return e.Err }
