/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Bank:
    BalanceDTO, ConsumeRequest, PurchaseRequest, PurchaseDTO

  Commitment:
    CommitmentDTO, StartCommitmentRequest, TodayDTO, DayLogDTO,
    HistoryEntryDTO, OutcomeTableDTO

  Sessions:
    CompleteSessionRequest, SessionResultDTO, SessionDTO

  Sweep:
    SweepResultDTO

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Route definitions
*/
package api

import (
	"github.com/warp/practice-engine/commitment"
)

// =============================================================================
// BANK TYPES
// =============================================================================

// BalanceDTO is the hour-bank balance in API responses. Hour amounts are
// decimal strings to avoid float drift on the wire.
type BalanceDTO struct {
	Purchased  string `json:"purchased_hours"`
	Consumed   string `json:"consumed_hours"`
	Available  string `json:"available_hours"`
	Deficit    string `json:"deficit_hours"`
	IsLifetime bool   `json:"is_lifetime"`
	CanStart   bool   `json:"can_start_session"`
}

// ConsumeRequest records time drawn down from the bank.
type ConsumeRequest struct {
	DurationSeconds float64 `json:"duration_seconds"`
}

// PurchaseRequest credits purchased hours to the bank.
type PurchaseRequest struct {
	ProductID     string  `json:"product_id"`
	TransactionID string  `json:"transaction_id"`
	Hours         float64 `json:"hours"`
}

// LifetimeRequest grants the lifetime exemption.
type LifetimeRequest struct {
	TransactionID string `json:"transaction_id"`
}

// PurchaseDTO is a purchase history entry in API responses.
type PurchaseDTO struct {
	ProductID     string `json:"product_id"`
	TransactionID string `json:"transaction_id"`
	Hours         string `json:"hours"`
	PurchasedAt   string `json:"purchased_at"`
}

// =============================================================================
// COMMITMENT TYPES
// =============================================================================

// StartCommitmentRequest begins a new commitment.
type StartCommitmentRequest struct {
	DurationDays          int     `json:"duration_days"`
	AutoRenew             bool    `json:"auto_renew"`
	ScheduleType          string  `json:"schedule_type"`
	CustomDays            [7]bool `json:"custom_days"`
	WeeklyTarget          int     `json:"weekly_target"`
	WindowType            string  `json:"window_type"`
	WindowStartMinutes    int     `json:"window_start_minutes"`
	WindowEndMinutes      int     `json:"window_end_minutes"`
	MinimumSessionMinutes int     `json:"minimum_session_minutes"`
	GraceAllowance        int     `json:"grace_allowance"`
}

// CommitmentDTO is the active commitment in API responses.
type CommitmentDTO struct {
	IsActive              bool         `json:"is_active"`
	StartDate             string       `json:"start_date,omitempty"`
	EndDate               string       `json:"end_date,omitempty"`
	DurationDays          int          `json:"duration_days,omitempty"`
	AutoRenew             bool         `json:"auto_renew,omitempty"`
	ScheduleType          string       `json:"schedule_type,omitempty"`
	CustomDays            [7]bool      `json:"custom_days"`
	WeeklyTarget          int          `json:"weekly_target,omitempty"`
	WindowType            string       `json:"window_type,omitempty"`
	WindowStartMinutes    int          `json:"window_start_minutes,omitempty"`
	WindowEndMinutes      int          `json:"window_end_minutes,omitempty"`
	MinimumSessionMinutes int          `json:"minimum_session_minutes,omitempty"`
	GraceAllowance        int          `json:"grace_allowance,omitempty"`
	GraceUsed             int          `json:"grace_used,omitempty"`
	Analytics             AnalyticsDTO `json:"analytics"`
}

// AnalyticsDTO summarizes commitment progress.
type AnalyticsDTO struct {
	SessionsCompleted int     `json:"sessions_completed"`
	SessionsMissed    int     `json:"sessions_missed"`
	BonusMinutes      int     `json:"bonus_minutes"`
	PenaltyMinutes    int     `json:"penalty_minutes"`
	NetMinutes        int     `json:"net_minutes"`
	CompletionRate    float64 `json:"completion_rate"`
	CurrentStreak     int     `json:"current_streak"`
	LongestStreak     int     `json:"longest_streak"`
	LastSessionDate   string  `json:"last_session_date,omitempty"`
	WeekdayHistogram  [7]int  `json:"weekday_histogram"`
}

// TodayDTO describes what the current day expects.
type TodayDTO struct {
	IsActive       bool               `json:"is_active"`
	IsRequired     bool               `json:"is_required"`
	IsCompleted    bool               `json:"is_completed"`
	IsWithinWindow bool               `json:"is_within_window"`
	MinimumMinutes int                `json:"minimum_minutes"`
	Weekly         *WeeklyProgressDTO `json:"weekly,omitempty"`
}

// WeeklyProgressDTO tracks flexible-schedule quota progress.
type WeeklyProgressDTO struct {
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end"`
	Completed int    `json:"completed"`
	Target    int    `json:"target"`
	Remaining int    `json:"remaining"`
}

// DayLogDTO is a settled day in API responses.
type DayLogDTO struct {
	Day               string `json:"day"`
	Outcome           string `json:"outcome"`
	SessionUUID       string `json:"session_uuid,omitempty"`
	MinutesAdjustment int    `json:"minutes_adjustment"`
	AdjustmentType    string `json:"adjustment_type"`
	WasNearMiss       bool   `json:"was_near_miss"`
}

// HistoryEntryDTO is an archived commitment in API responses.
type HistoryEntryDTO struct {
	ID             string  `json:"id"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	DurationDays   int     `json:"duration_days"`
	CompletionRate float64 `json:"completion_rate"`
	NetMinutes     int     `json:"net_minutes"`
	Reason         string  `json:"reason"`
	ArchivedAt     string  `json:"archived_at"`
}

// OutcomeTableDTO exposes the reward table and its expected values so
// clients can show the odds honestly.
type OutcomeTableDTO struct {
	BonusProbability    float64 `json:"bonus_probability"`
	BonusMinMinutes     int     `json:"bonus_min_minutes"`
	BonusMaxMinutes     int     `json:"bonus_max_minutes"`
	MysteryProbability  float64 `json:"mystery_probability"`
	MysteryMinMinutes   int     `json:"mystery_min_minutes"`
	MysteryMaxMinutes   int     `json:"mystery_max_minutes"`
	NearMissProbability float64 `json:"near_miss_probability"`
	PenaltyMinMinutes   int     `json:"penalty_min_minutes"`
	PenaltyMaxMinutes   int     `json:"penalty_max_minutes"`
	ExpectedPerSession  float64 `json:"expected_minutes_per_session"`
	ExpectedPenalty     float64 `json:"expected_penalty_minutes"`
	BreakEvenRate       float64 `json:"break_even_completion_rate"`
}

// =============================================================================
// SESSION TYPES
// =============================================================================

// CompleteSessionRequest reports a finished practice session.
type CompleteSessionRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// SessionDTO is a recorded session in API responses.
type SessionDTO struct {
	UUID            string  `json:"uuid"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// SessionResultDTO is the full outcome of reporting a session: the
// bank movement plus the commitment verdict.
type SessionResultDTO struct {
	Session        SessionDTO  `json:"session"`
	ConsumedHours  string      `json:"consumed_hours"`
	SessionCounted bool        `json:"session_counted"`
	Reason         string      `json:"reason,omitempty"`
	DayRequired    bool        `json:"day_required"`
	WithinWindow   bool        `json:"within_window"`
	MetMinimum     bool        `json:"met_minimum"`
	Outcome        *OutcomeDTO `json:"outcome,omitempty"`
	CurrentStreak  int         `json:"current_streak"`
	Balance        BalanceDTO  `json:"balance"`
}

// OutcomeDTO is a reward roll in API responses.
type OutcomeDTO struct {
	Type          string `json:"type"`
	MinutesChange int    `json:"minutes_change"`
	WasNearMiss   bool   `json:"was_near_miss"`
}

// =============================================================================
// SWEEP TYPES
// =============================================================================

// SweepResultDTO summarizes a missed-day settlement walk.
type SweepResultDTO struct {
	DaysChecked    int      `json:"days_checked"`
	DaysMissed     int      `json:"days_missed"`
	GraceDaysUsed  int      `json:"grace_days_used"`
	PenaltyMinutes int      `json:"penalty_minutes"`
	Errors         []string `json:"errors,omitempty"`
}

// ErrorResponse is the standard error shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toAnalyticsDTO(a commitment.Analytics) AnalyticsDTO {
	dto := AnalyticsDTO{
		SessionsCompleted: a.SessionsCompleted,
		SessionsMissed:    a.SessionsMissed,
		BonusMinutes:      a.BonusMinutes,
		PenaltyMinutes:    a.PenaltyMinutes,
		NetMinutes:        a.NetMinutes(),
		CompletionRate:    a.CompletionRate(),
		CurrentStreak:     a.CurrentStreak,
		LongestStreak:     a.LongestStreak,
		WeekdayHistogram:  a.WeekdayHistogram,
	}
	if !a.LastSessionDate.IsZero() {
		dto.LastSessionDate = a.LastSessionDate.Format(dayFormat)
	}
	return dto
}

func toDayLogDTO(l commitment.DayLog) DayLogDTO {
	return DayLogDTO{
		Day:               l.Day.Format(dayFormat),
		Outcome:           string(l.Outcome),
		SessionUUID:       l.SessionUUID,
		MinutesAdjustment: l.MinutesAdjustment,
		AdjustmentType:    string(l.AdjustmentType),
		WasNearMiss:       l.WasNearMiss,
	}
}

func toOutcomeDTO(o *commitment.Outcome) *OutcomeDTO {
	if o == nil {
		return nil
	}
	return &OutcomeDTO{
		Type:          string(o.Type),
		MinutesChange: o.MinutesChange,
		WasNearMiss:   o.WasNearMiss,
	}
}
