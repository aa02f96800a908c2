/*
Package commitment provides the habit-formation layer that stakes hour-bank
hours on adherence to a practice schedule.

PURPOSE:
  When commitment mode is active, every calendar day is settled exactly
  once: a qualifying session yields a seeded reward roll, a required day
  with no session yields a penalty. The reward stream is a deterministic
  function of a persisted (seed, cursor) pair, which makes every credit
  and debit reproducible and auditable after the fact.

KEY CONCEPTS IN THIS FILE (types.go):
  - Settings: The singleton commitment configuration + running analytics
  - DayLog:   The single authoritative record of one calendar day
  - HistoryEntry: An archived commitment (append-only)

INVARIANTS:
  1. At most one DayLog per calendar day
  2. A completed DayLog is immutable (the idempotency barrier)
  3. The RNG cursor only moves forward; the seed never changes mid-commitment
  4. History entries are never mutated after archival

SEE ALSO:
  - schedule.go: "is this day required", "is this time inside the window"
  - outcome.go: Probability tables mapping draws to minute adjustments
  - engine.go: Session-completion middleware
  - sweep.go: Retroactive missed-day penalties
*/
package commitment

import "time"

// =============================================================================
// SCHEDULE CONFIGURATION
// =============================================================================

// ScheduleType selects which days require a session.
type ScheduleType string

const (
	ScheduleDaily    ScheduleType = "daily"    // every day
	ScheduleWeekday  ScheduleType = "weekday"  // Monday through Friday
	ScheduleCustom   ScheduleType = "custom"   // explicit 7-day mask
	ScheduleFlexible ScheduleType = "flexible" // weekly quota, no fixed days
)

// WindowType selects when during the day a session counts.
type WindowType string

const (
	WindowAnytime  WindowType = "anytime"
	WindowMorning  WindowType = "morning"  // 05:00-12:00 local
	WindowSpecific WindowType = "specific" // explicit [start, end) minutes
)

// Morning window bounds, in minutes past local midnight.
const (
	MorningStartMinutes = 300 // 05:00
	MorningEndMinutes   = 720 // 12:00
)

// Valid commitment durations, in days.
var Durations = []int{30, 60, 90}

// =============================================================================
// SETTINGS - Singleton commitment configuration
// =============================================================================

// Settings is the persisted commitment configuration. One row; owned
// exclusively by this package.
type Settings struct {
	IsActive     bool
	StartDate    time.Time
	EndDate      time.Time
	DurationDays int
	// AutoRenew rolls straight into a fresh commitment with the same
	// configuration (and a fresh seed) when the end date passes.
	AutoRenew bool

	ScheduleType ScheduleType
	// CustomDays is indexed by time.Weekday (Sunday = 0). Only consulted
	// for ScheduleCustom.
	CustomDays [7]bool
	// WeeklyTarget is the sessions-per-week quota for ScheduleFlexible.
	WeeklyTarget int

	WindowType WindowType
	// Window bounds in minutes past local midnight, for WindowSpecific.
	// End < Start means the window wraps past midnight (22:00-06:00).
	WindowStartMinutes int
	WindowEndMinutes   int

	MinimumSessionMinutes int

	// Grace days let a missed required day pass without penalty.
	GraceAllowance int
	GraceUsed      int

	// The deterministic reward stream. Seed is fixed at activation;
	// RNGIndex is the persisted cursor and only moves forward.
	RNGSeed  uint64
	RNGIndex uint64

	Analytics Analytics
}

// Analytics is the running tally persisted alongside the settings.
type Analytics struct {
	SessionsCompleted int
	SessionsMissed    int
	BonusMinutes      int
	PenaltyMinutes    int
	CurrentStreak     int
	LongestStreak     int
	// LastSessionDate is the start-of-day of the most recent settled day.
	// The sweep never re-walks days at or before it.
	LastSessionDate time.Time
	// WeekdayHistogram counts completions per weekday (Sunday = 0).
	WeekdayHistogram [7]int
}

// CompletionRate returns completed / (completed + missed), or 0 before any
// day has been settled.
func (a Analytics) CompletionRate() float64 {
	total := a.SessionsCompleted + a.SessionsMissed
	if total == 0 {
		return 0
	}
	return float64(a.SessionsCompleted) / float64(total)
}

// NetMinutes is total bonus minutes earned minus penalty minutes lost.
func (a Analytics) NetMinutes() int {
	return a.BonusMinutes - a.PenaltyMinutes
}

// =============================================================================
// DAY LOG - One row per settled calendar day
// =============================================================================

// DayOutcome classifies how a day was settled.
type DayOutcome string

const (
	DayCompleted DayOutcome = "completed"
	DayMissed    DayOutcome = "missed"
	DayGrace     DayOutcome = "grace"
)

// AdjustmentType classifies the minute adjustment attached to a day.
type AdjustmentType string

const (
	AdjustBonus   AdjustmentType = "bonus"
	AdjustMystery AdjustmentType = "mystery"
	AdjustPenalty AdjustmentType = "penalty"
	AdjustNone    AdjustmentType = "none"
)

// DayLog is the single authoritative record of one calendar day of a
// commitment. Keyed by the start-of-day timestamp. Once Outcome is
// DayCompleted the row is immutable - this is the barrier that makes
// double submission of the same session a no-op.
type DayLog struct {
	Day               time.Time // start of day, local wall clock
	Outcome           DayOutcome
	SessionUUID       string
	MinutesAdjustment int
	AdjustmentType    AdjustmentType
	WasNearMiss       bool
}

// =============================================================================
// HISTORY - Archived commitments, append-only
// =============================================================================

// EndReason records why a commitment was archived.
type EndReason string

const (
	EndCompleted     EndReason = "completed"
	EndEmergencyExit EndReason = "emergency-exit"
	EndAutoRenew     EndReason = "auto-renew"
)

// HistoryEntry is one archived commitment. Created at archival, never
// mutated afterward.
type HistoryEntry struct {
	ID             string
	StartDate      time.Time
	EndDate        time.Time
	DurationDays   int
	CompletionRate float64
	NetMinutes     int
	Reason         EndReason
	ArchivedAt     time.Time
}
