/*
handlers.go - HTTP API handlers for the practice engine

PURPOSE:
  Exposes the hour bank and commitment engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Bank:
    GET    /api/bank/balance           Derived balance summary
    POST   /api/bank/consume           Deduct a session duration
    GET    /api/bank/purchases         Purchase history
    POST   /api/bank/purchases         Credit a purchase
    POST   /api/bank/lifetime          Grant lifetime access
    POST   /api/bank/reconcile         Rebuild consumed hours from sessions

  Commitment:
    GET    /api/commitment             Active commitment (or is_active=false)
    POST   /api/commitment             Start a commitment
    POST   /api/commitment/exit        Emergency exit (archive early)
    GET    /api/commitment/today       What today expects
    GET    /api/commitment/days        Settled day logs in a range
    GET    /api/commitment/history     Archived commitments
    GET    /api/commitment/outcomes    Reward table with expected values

  Sessions:
    POST   /api/sessions               Report a completed session
    GET    /api/sessions               Recent sessions

  Sweep:
    POST   /api/sweep/run              Settle past missed days now
    GET    /api/sweep/pending          Count of unsettled past days

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Bank: Hour-bank service
  - Engine: Commitment engine
  - Sessions: Session recorder
  - Planner: Reminder planner (refreshed after commitment changes)

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (bank, engine, sweep)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: No active commitment
  - 409: Conflict (commitment already active, day already completed)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - sweeper.go: Background settlement loop
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/warp/practice-engine/bank"
	"github.com/warp/practice-engine/commitment"
	"github.com/warp/practice-engine/notify"
	"github.com/warp/practice-engine/session"
)

const dayFormat = "2006-01-02"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Bank     *bank.Service
	Engine   *commitment.Engine
	Sessions session.Recorder
	Planner  *notify.Planner
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(bankSvc *bank.Service, engine *commitment.Engine, sessions session.Recorder, planner *notify.Planner) *Handler {
	return &Handler{
		Bank:     bankSvc,
		Engine:   engine,
		Sessions: sessions,
		Planner:  planner,
	}
}

// =============================================================================
// BANK HANDLERS
// =============================================================================

// GetBalance returns the derived hour-bank balance.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bank.Balance(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(b))
}

// Consume deducts a session duration from the bank.
func (h *Handler) Consume(w http.ResponseWriter, r *http.Request) {
	var req ConsumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	deducted, err := h.Bank.Consume(r.Context(), req.DurationSeconds)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to consume", err)
		return
	}

	b, err := h.Bank.Balance(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load balance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"consumed_hours": deducted.String(),
		"balance":        toBalanceDTO(b),
	})
}

// ListPurchases returns the purchase history.
func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	l, err := h.Bank.Ledger(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load ledger", err)
		return
	}

	dtos := make([]PurchaseDTO, len(l.PurchaseHistory))
	for i, p := range l.PurchaseHistory {
		dtos[i] = PurchaseDTO{
			ProductID:     p.ProductID,
			TransactionID: p.TransactionID,
			Hours:         p.Hours.String(),
			PurchasedAt:   p.PurchasedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePurchase credits purchased hours.
func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ProductID == "" || req.TransactionID == "" {
		writeError(w, http.StatusBadRequest, "product_id and transaction_id are required", nil)
		return
	}

	if err := h.Bank.AddPurchasedHours(r.Context(), req.Hours, req.ProductID, req.TransactionID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to credit purchase", err)
		return
	}

	b, err := h.Bank.Balance(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load balance", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBalanceDTO(b))
}

// GrantLifetime marks the account lifetime.
func (h *Handler) GrantLifetime(w http.ResponseWriter, r *http.Request) {
	var req LifetimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Bank.GrantLifetimeAccess(r.Context(), req.TransactionID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to grant lifetime access", err)
		return
	}

	b, err := h.Bank.Balance(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(b))
}

// Reconcile rebuilds consumed hours from the session history.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	records, err := h.Sessions.All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load sessions", err)
		return
	}

	corrected, err := h.Bank.Reconcile(r.Context(), records)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reconcile", err)
		return
	}

	b, err := h.Bank.Balance(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load balance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"corrected": corrected,
		"balance":   toBalanceDTO(b),
	})
}

// =============================================================================
// COMMITMENT HANDLERS
// =============================================================================

// GetCommitment returns the active commitment, or is_active=false.
func (h *Handler) GetCommitment(w http.ResponseWriter, r *http.Request) {
	s, err := h.Engine.Settings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load commitment", err)
		return
	}
	if s == nil {
		writeJSON(w, http.StatusOK, CommitmentDTO{IsActive: false})
		return
	}
	writeJSON(w, http.StatusOK, toCommitmentDTO(*s))
}

// StartCommitment begins a new commitment.
func (h *Handler) StartCommitment(w http.ResponseWriter, r *http.Request) {
	var req StartCommitmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	settings, err := h.Engine.Start(r.Context(), commitment.StartConfig{
		DurationDays:          req.DurationDays,
		AutoRenew:             req.AutoRenew,
		ScheduleType:          commitment.ScheduleType(req.ScheduleType),
		CustomDays:            req.CustomDays,
		WeeklyTarget:          req.WeeklyTarget,
		WindowType:            commitment.WindowType(req.WindowType),
		WindowStartMinutes:    req.WindowStartMinutes,
		WindowEndMinutes:      req.WindowEndMinutes,
		MinimumSessionMinutes: req.MinimumSessionMinutes,
		GraceAllowance:        req.GraceAllowance,
	})
	if err != nil {
		switch {
		case errors.Is(err, commitment.ErrCommitmentActive):
			writeError(w, http.StatusConflict, "A commitment is already active", err)
		case errors.Is(err, commitment.ErrInvalidDuration):
			writeError(w, http.StatusBadRequest, "Invalid commitment duration", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to start commitment", err)
		}
		return
	}

	h.Planner.Refresh(r.Context(), &settings)
	writeJSON(w, http.StatusCreated, toCommitmentDTO(settings))
}

// EmergencyExit archives the active commitment early.
func (h *Handler) EmergencyExit(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Engine.EmergencyExit(r.Context())
	if err != nil {
		if errors.Is(err, commitment.ErrNoActiveCommitment) {
			writeError(w, http.StatusNotFound, "No active commitment", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to exit commitment", err)
		return
	}

	h.Planner.Refresh(r.Context(), nil)
	writeJSON(w, http.StatusOK, toHistoryEntryDTO(entry))
}

// GetToday describes what the current day expects.
func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	status, err := h.Engine.Today(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load today status", err)
		return
	}

	dto := TodayDTO{
		IsActive:       status.IsActive,
		IsRequired:     status.IsRequired,
		IsCompleted:    status.IsCompleted,
		IsWithinWindow: status.IsWithinWindow,
		MinimumMinutes: status.MinimumMinutes,
	}
	if status.Weekly != nil {
		dto.Weekly = &WeeklyProgressDTO{
			WeekStart: status.Weekly.WeekStart.Format(dayFormat),
			WeekEnd:   status.Weekly.WeekEnd.Format(dayFormat),
			Completed: status.Weekly.Completed,
			Target:    status.Weekly.Target,
			Remaining: status.Weekly.Remaining(),
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// ListDayLogs returns settled day logs in a date range. Defaults to the
// active commitment's full range when from/to are omitted.
func (h *Handler) ListDayLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var from, to time.Time
	if q := r.URL.Query().Get("from"); q != "" {
		t, err := time.ParseInLocation(dayFormat, q, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
		from = t
	}
	if q := r.URL.Query().Get("to"); q != "" {
		t, err := time.ParseInLocation(dayFormat, q, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return
		}
		to = t
	}

	if from.IsZero() || to.IsZero() {
		s, err := h.Engine.Settings(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load commitment", err)
			return
		}
		if s == nil {
			writeJSON(w, http.StatusOK, []DayLogDTO{})
			return
		}
		if from.IsZero() {
			from = s.StartDate
		}
		if to.IsZero() {
			to = s.EndDate
		}
	}

	logs, err := h.Engine.DayLogs(ctx, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load day logs", err)
		return
	}

	dtos := make([]DayLogDTO, len(logs))
	for i, l := range logs {
		dtos[i] = toDayLogDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetHistory returns archived commitments, newest first.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Engine.History(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load history", err)
		return
	}

	dtos := make([]HistoryEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toHistoryEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetOutcomeTable returns the reward table and its expected values.
func (h *Handler) GetOutcomeTable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, OutcomeTableDTO{
		BonusProbability:    commitment.BonusProbability,
		BonusMinMinutes:     commitment.BonusMinMinutes,
		BonusMaxMinutes:     commitment.BonusMaxMinutes,
		MysteryProbability:  commitment.MysteryProbability,
		MysteryMinMinutes:   commitment.MysteryMinMinutes,
		MysteryMaxMinutes:   commitment.MysteryMaxMinutes,
		NearMissProbability: commitment.NearMissProbability,
		PenaltyMinMinutes:   commitment.PenaltyMinMinutes,
		PenaltyMaxMinutes:   commitment.PenaltyMaxMinutes,
		ExpectedPerSession:  commitment.ExpectedMinutesPerSession(),
		ExpectedPenalty:     commitment.ExpectedPenaltyMinutes(),
		BreakEvenRate:       commitment.BreakEvenCompletionRate(),
	})
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// CompleteSession reports a finished practice session. The session is
// recorded, its duration consumed from the bank, and the commitment
// engine judges whether it counts for today.
func (h *Handler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CompleteSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_time (use RFC3339)", err)
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_time (use RFC3339)", err)
		return
	}
	if !end.After(start) {
		writeError(w, http.StatusBadRequest, "end_time must be after start_time", nil)
		return
	}

	record := session.NewRecord(start, end)
	if err := h.Sessions.Record(ctx, record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record session", err)
		return
	}

	deducted, err := h.Bank.Consume(ctx, record.DurationSeconds)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to consume from bank", err)
		return
	}

	result, err := h.Engine.ProcessCompletedSession(ctx, record.UUID, record.DurationSeconds, record.StartTime)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to process session", err)
		return
	}

	b, err := h.Bank.Balance(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load balance", err)
		return
	}

	writeJSON(w, http.StatusCreated, SessionResultDTO{
		Session: SessionDTO{
			UUID:            record.UUID,
			StartTime:       record.StartTime.Format(time.RFC3339),
			EndTime:         record.EndTime.Format(time.RFC3339),
			DurationSeconds: record.DurationSeconds,
		},
		ConsumedHours:  deducted.String(),
		SessionCounted: result.SessionCounted,
		Reason:         result.Reason,
		DayRequired:    result.DayRequired,
		WithinWindow:   result.WithinWindow,
		MetMinimum:     result.MetMinimum,
		Outcome:        toOutcomeDTO(result.Outcome),
		CurrentStreak:  result.CurrentStreak,
		Balance:        toBalanceDTO(b),
	})
}

// ListSessions returns recent sessions, newest first.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	records, err := h.Sessions.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load sessions", err)
		return
	}

	dtos := make([]SessionDTO, len(records))
	for i, rec := range records {
		dtos[i] = SessionDTO{
			UUID:            rec.UUID,
			StartTime:       rec.StartTime.Format(time.RFC3339),
			EndTime:         rec.EndTime.Format(time.RFC3339),
			DurationSeconds: rec.DurationSeconds,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SWEEP HANDLERS
// =============================================================================

// RunSweep settles past missed days immediately, then settles expiry if
// the commitment has run out.
func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.Engine.ProcessMissedDaySweep(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to run sweep", err)
		return
	}

	if _, err := h.Engine.SettleExpiry(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to settle expiry", err)
		return
	}

	dto := SweepResultDTO{
		DaysChecked:    result.DaysChecked,
		DaysMissed:     result.DaysMissed,
		GraceDaysUsed:  result.GraceDaysUsed,
		PenaltyMinutes: result.PenaltyMinutes,
	}
	for _, e := range result.Errors {
		dto.Errors = append(dto.Errors, e.Error())
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetPendingSweep returns how many past days await settlement.
func (h *Handler) GetPendingSweep(w http.ResponseWriter, r *http.Request) {
	count, err := h.Engine.PendingMissedDaysCount(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count pending days", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"pending_days": count})
}

// =============================================================================
// HELPERS
// =============================================================================

func toBalanceDTO(b bank.Balance) BalanceDTO {
	return BalanceDTO{
		Purchased:  b.Purchased.String(),
		Consumed:   b.Consumed.String(),
		Available:  b.Available.String(),
		Deficit:    b.Deficit.String(),
		IsLifetime: b.IsLifetime,
		CanStart:   b.CanStartSession(),
	}
}

func toCommitmentDTO(s commitment.Settings) CommitmentDTO {
	return CommitmentDTO{
		IsActive:              s.IsActive,
		StartDate:             s.StartDate.Format(dayFormat),
		EndDate:               s.EndDate.Format(dayFormat),
		DurationDays:          s.DurationDays,
		AutoRenew:             s.AutoRenew,
		ScheduleType:          string(s.ScheduleType),
		CustomDays:            s.CustomDays,
		WeeklyTarget:          s.WeeklyTarget,
		WindowType:            string(s.WindowType),
		WindowStartMinutes:    s.WindowStartMinutes,
		WindowEndMinutes:      s.WindowEndMinutes,
		MinimumSessionMinutes: s.MinimumSessionMinutes,
		GraceAllowance:        s.GraceAllowance,
		GraceUsed:             s.GraceUsed,
		Analytics:             toAnalyticsDTO(s.Analytics),
	}
}

func toHistoryEntryDTO(e commitment.HistoryEntry) HistoryEntryDTO {
	return HistoryEntryDTO{
		ID:             e.ID,
		StartDate:      e.StartDate.Format(dayFormat),
		EndDate:        e.EndDate.Format(dayFormat),
		DurationDays:   e.DurationDays,
		CompletionRate: e.CompletionRate,
		NetMinutes:     e.NetMinutes,
		Reason:         string(e.Reason),
		ArchivedAt:     e.ArchivedAt.Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
