/*
store.go - Persistence interface for commitment state

PURPOSE:
  Defines what the commitment engine needs from storage: the settings
  singleton, day logs keyed by calendar day, the append-only history, and
  an atomic Effects application.

EFFECTS:
  The engine and the sweep are pure-ish computations that produce an
  Effects value: day logs to write, the updated settings, and a signed
  minute adjustment against the hour bank. Apply persists all of it in
  one shot - either the day is settled and the ledger moved together, or
  nothing happened. This is the "intents + thin adapter" split that keeps
  the reward math testable without storage.

IMPLEMENTATIONS:
  - store/sqlite: One SQL transaction per Apply
  - store/memory: Mutex-guarded maps for tests
*/
package commitment

import (
	"context"
	"time"
)

// Effects is the buffered result of one engine evaluation, applied
// atomically by the Store.
type Effects struct {
	// DayLogs to write (at most one per calendar day; completed rows are
	// never overwritten - the engine checks before emitting).
	DayLogs []DayLog

	// Settings replaces the singleton when non-nil (advanced RNG cursor,
	// analytics).
	Settings *Settings

	// BankMinutes is a signed whole-minute adjustment to the hour bank.
	// Positive credits, negative debits, zero leaves the bank alone.
	BankMinutes int
}

// IsZero reports whether applying would change nothing.
func (e Effects) IsZero() bool {
	return len(e.DayLogs) == 0 && e.Settings == nil && e.BankMinutes == 0
}

// Store persists commitment state.
type Store interface {
	// GetSettings returns the settings singleton, or (nil, nil) when
	// commitment mode has never been configured.
	GetSettings(ctx context.Context) (*Settings, error)

	// PutSettings saves the settings singleton.
	PutSettings(ctx context.Context, s Settings) error

	// GetDayLog returns the log for the calendar day containing day, or
	// (nil, nil) when the day is unsettled.
	GetDayLog(ctx context.Context, day time.Time) (*DayLog, error)

	// DayLogsInRange returns logs with Day in [from, to], ordered by day.
	DayLogsInRange(ctx context.Context, from, to time.Time) ([]DayLog, error)

	// ClearDayLogs removes all day logs. Called only when a commitment is
	// archived; the logs belong to the commitment, not the account.
	ClearDayLogs(ctx context.Context) error

	// AppendHistory appends an archived commitment. Append-only.
	AppendHistory(ctx context.Context, e HistoryEntry) error

	// History returns archived commitments, newest first.
	History(ctx context.Context) ([]HistoryEntry, error)

	// Apply persists an Effects value atomically: day logs, settings, and
	// the hour-bank adjustment all land together or not at all.
	Apply(ctx context.Context, e Effects) error
}
