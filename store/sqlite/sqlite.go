/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  One embedded database holds everything the engine persists: the
  hour-bank ledger and its purchase history, the commitment settings
  singleton, the day logs, the commitment history, and the session
  records. A single local writer is the operating assumption; SQLite in
  WAL mode is exactly the right tool.

INTERFACES IMPLEMENTED:
  bank.Store:       Singleton ledger row + purchase history
  commitment.Store: Settings, day logs, history, atomic Effects
  session.Recorder: Append-only session records

ATOMIC EFFECTS:
  Apply runs one SQL transaction covering the day-log writes, the
  settings update, and the ledger adjustment. Either the day settles and
  the bank moves together, or neither happens.

KEY CONSTRAINTS:
  - day_logs.day is PRIMARY KEY: at most one log per calendar day
  - a completed day log is never overwritten (checked inside Apply's
    transaction; the engine checks first, this is the last line of
    defense)
  - commitment_history has no UPDATE or DELETE path
  - sessions has no UPDATE or DELETE path

STORAGE FORMATS:
  Hours are decimal strings (no float drift), timestamps RFC3339, day
  keys "2006-01-02" in local time.

WAL MODE:
  Opened with WAL for better crash recovery; readers don't block the
  single writer.

USAGE:
  store, err := sqlite.New("./practice.db")  // ":memory:" for tests
  defer store.Close()

SEE ALSO:
  - store/memory: In-memory implementation with the same semantics
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/practice-engine/bank"
	"github.com/warp/practice-engine/commitment"
	"github.com/warp/practice-engine/session"
)

const (
	dayFormat = "2006-01-02"
	// Singleton rows use a fixed key.
	singletonID = 1
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// Compile-time interface checks.
var (
	_ bank.Store       = (*Store)(nil)
	_ commitment.Store = (*Store)(nil)
	_ session.Recorder = (*Store)(nil)
)

// New opens (or creates) the database and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// The engine is single-writer; a second connection only invites
	// SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Hour bank (singleton row)
	CREATE TABLE IF NOT EXISTS ledger (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		purchased_hours TEXT NOT NULL,
		consumed_hours TEXT NOT NULL,
		is_lifetime BOOLEAN NOT NULL DEFAULT FALSE,
		last_purchase_at TEXT
	);

	-- Purchase history (append-only; intentionally no uniqueness on
	-- transaction_id, see bank/types.go)
	CREATE TABLE IF NOT EXISTS purchases (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id TEXT NOT NULL,
		transaction_id TEXT NOT NULL,
		hours TEXT NOT NULL,
		purchased_at TEXT NOT NULL
	);

	-- Commitment settings (singleton row)
	CREATE TABLE IF NOT EXISTS commitment_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		is_active BOOLEAN NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		duration_days INTEGER NOT NULL,
		auto_renew BOOLEAN NOT NULL DEFAULT FALSE,
		schedule_type TEXT NOT NULL,
		custom_days_json TEXT NOT NULL,
		weekly_target INTEGER NOT NULL DEFAULT 0,
		window_type TEXT NOT NULL,
		window_start_minutes INTEGER NOT NULL DEFAULT 0,
		window_end_minutes INTEGER NOT NULL DEFAULT 0,
		minimum_session_minutes INTEGER NOT NULL DEFAULT 0,
		grace_allowance INTEGER NOT NULL DEFAULT 0,
		grace_used INTEGER NOT NULL DEFAULT 0,
		rng_seed TEXT NOT NULL,
		rng_index TEXT NOT NULL,
		analytics_json TEXT NOT NULL
	);

	-- Day logs: at most one row per calendar day
	CREATE TABLE IF NOT EXISTS day_logs (
		day TEXT PRIMARY KEY,
		outcome TEXT NOT NULL,
		session_uuid TEXT,
		minutes_adjustment INTEGER NOT NULL DEFAULT 0,
		adjustment_type TEXT NOT NULL,
		was_near_miss BOOLEAN NOT NULL DEFAULT FALSE
	);

	-- Archived commitments (append-only)
	CREATE TABLE IF NOT EXISTS commitment_history (
		id TEXT PRIMARY KEY,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		duration_days INTEGER NOT NULL,
		completion_rate REAL NOT NULL,
		net_minutes INTEGER NOT NULL,
		reason TEXT NOT NULL,
		archived_at TEXT NOT NULL
	);

	-- Practice sessions (append-only, reconciler input)
	CREATE TABLE IF NOT EXISTS sessions (
		uuid TEXT PRIMARY KEY,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		duration_seconds REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_start_time
		ON sessions(start_time DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// BANK
// =============================================================================

func (s *Store) GetLedger(ctx context.Context) (*bank.Ledger, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT purchased_hours, consumed_hours, is_lifetime, last_purchase_at
		FROM ledger WHERE id = ?`, singletonID)

	var purchased, consumed string
	var isLifetime bool
	var lastPurchase sql.NullString
	if err := row.Scan(&purchased, &consumed, &isLifetime, &lastPurchase); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan ledger: %w", err)
	}

	l := bank.Ledger{IsLifetime: isLifetime}
	var err error
	if l.PurchasedHours, err = decimal.NewFromString(purchased); err != nil {
		return nil, fmt.Errorf("parse purchased hours: %w", err)
	}
	if l.ConsumedHours, err = decimal.NewFromString(consumed); err != nil {
		return nil, fmt.Errorf("parse consumed hours: %w", err)
	}
	if lastPurchase.Valid {
		t, err := time.Parse(time.RFC3339, lastPurchase.String)
		if err != nil {
			return nil, fmt.Errorf("parse last purchase time: %w", err)
		}
		l.LastPurchaseAt = &t
	}

	if l.PurchaseHistory, err = s.loadPurchases(ctx); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) loadPurchases(ctx context.Context) ([]bank.Purchase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, transaction_id, hours, purchased_at
		FROM purchases ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer rows.Close()

	var history []bank.Purchase
	for rows.Next() {
		var p bank.Purchase
		var hours, at string
		if err := rows.Scan(&p.ProductID, &p.TransactionID, &hours, &at); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		if p.Hours, err = decimal.NewFromString(hours); err != nil {
			return nil, fmt.Errorf("parse purchase hours: %w", err)
		}
		if p.PurchasedAt, err = time.Parse(time.RFC3339, at); err != nil {
			return nil, fmt.Errorf("parse purchase time: %w", err)
		}
		history = append(history, p)
	}
	return history, rows.Err()
}

func (s *Store) PutLedger(ctx context.Context, l bank.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := putLedgerTx(ctx, tx, l); err != nil {
		return err
	}
	return tx.Commit()
}

func putLedgerTx(ctx context.Context, tx *sql.Tx, l bank.Ledger) error {
	var lastPurchase any
	if l.LastPurchaseAt != nil {
		lastPurchase = l.LastPurchaseAt.Format(time.RFC3339)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO ledger (id, purchased_hours, consumed_hours, is_lifetime, last_purchase_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			purchased_hours = excluded.purchased_hours,
			consumed_hours = excluded.consumed_hours,
			is_lifetime = excluded.is_lifetime,
			last_purchase_at = excluded.last_purchase_at`,
		singletonID, l.PurchasedHours.String(), l.ConsumedHours.String(), l.IsLifetime, lastPurchase)
	if err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	// The purchases table is append-only: persist only the entries the
	// in-memory history carries beyond what is already stored.
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM purchases`).Scan(&count); err != nil {
		return fmt.Errorf("count purchases: %w", err)
	}
	if count > len(l.PurchaseHistory) {
		count = len(l.PurchaseHistory)
	}
	for _, p := range l.PurchaseHistory[count:] {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO purchases (product_id, transaction_id, hours, purchased_at)
			VALUES (?, ?, ?, ?)`,
			p.ProductID, p.TransactionID, p.Hours.String(), p.PurchasedAt.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("append purchase: %w", err)
		}
	}
	return nil
}

// =============================================================================
// COMMITMENT SETTINGS
// =============================================================================

func (s *Store) GetSettings(ctx context.Context) (*commitment.Settings, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT is_active, start_date, end_date, duration_days, auto_renew,
		       schedule_type, custom_days_json, weekly_target,
		       window_type, window_start_minutes, window_end_minutes,
		       minimum_session_minutes, grace_allowance, grace_used,
		       rng_seed, rng_index, analytics_json
		FROM commitment_settings WHERE id = ?`, singletonID)

	var c commitment.Settings
	var startDate, endDate, customDays, seed, index, analytics string
	var scheduleType, windowType string
	err := row.Scan(&c.IsActive, &startDate, &endDate, &c.DurationDays, &c.AutoRenew,
		&scheduleType, &customDays, &c.WeeklyTarget,
		&windowType, &c.WindowStartMinutes, &c.WindowEndMinutes,
		&c.MinimumSessionMinutes, &c.GraceAllowance, &c.GraceUsed,
		&seed, &index, &analytics)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan settings: %w", err)
	}

	c.ScheduleType = commitment.ScheduleType(scheduleType)
	c.WindowType = commitment.WindowType(windowType)
	if c.StartDate, err = parseDay(startDate); err != nil {
		return nil, err
	}
	if c.EndDate, err = parseDay(endDate); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(customDays), &c.CustomDays); err != nil {
		return nil, fmt.Errorf("parse custom days: %w", err)
	}
	// Seed and cursor are stored as strings: SQLite integers are signed
	// 64-bit and would mangle the high bit.
	if _, err := fmt.Sscanf(seed, "%d", &c.RNGSeed); err != nil {
		return nil, fmt.Errorf("parse rng seed: %w", err)
	}
	if _, err := fmt.Sscanf(index, "%d", &c.RNGIndex); err != nil {
		return nil, fmt.Errorf("parse rng index: %w", err)
	}
	if err := unmarshalAnalytics(analytics, &c.Analytics); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) PutSettings(ctx context.Context, c commitment.Settings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := putSettingsTx(ctx, tx, c); err != nil {
		return err
	}
	return tx.Commit()
}

func putSettingsTx(ctx context.Context, tx *sql.Tx, c commitment.Settings) error {
	customDays, err := json.Marshal(c.CustomDays)
	if err != nil {
		return fmt.Errorf("marshal custom days: %w", err)
	}
	analytics, err := marshalAnalytics(c.Analytics)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO commitment_settings (
			id, is_active, start_date, end_date, duration_days, auto_renew,
			schedule_type, custom_days_json, weekly_target,
			window_type, window_start_minutes, window_end_minutes,
			minimum_session_minutes, grace_allowance, grace_used,
			rng_seed, rng_index, analytics_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			is_active = excluded.is_active,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			duration_days = excluded.duration_days,
			auto_renew = excluded.auto_renew,
			schedule_type = excluded.schedule_type,
			custom_days_json = excluded.custom_days_json,
			weekly_target = excluded.weekly_target,
			window_type = excluded.window_type,
			window_start_minutes = excluded.window_start_minutes,
			window_end_minutes = excluded.window_end_minutes,
			minimum_session_minutes = excluded.minimum_session_minutes,
			grace_allowance = excluded.grace_allowance,
			grace_used = excluded.grace_used,
			rng_seed = excluded.rng_seed,
			rng_index = excluded.rng_index,
			analytics_json = excluded.analytics_json`,
		singletonID, c.IsActive, formatDay(c.StartDate), formatDay(c.EndDate),
		c.DurationDays, c.AutoRenew,
		string(c.ScheduleType), string(customDays), c.WeeklyTarget,
		string(c.WindowType), c.WindowStartMinutes, c.WindowEndMinutes,
		c.MinimumSessionMinutes, c.GraceAllowance, c.GraceUsed,
		fmt.Sprintf("%d", c.RNGSeed), fmt.Sprintf("%d", c.RNGIndex), analytics)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// analyticsRecord is the persisted shape of commitment.Analytics.
type analyticsRecord struct {
	SessionsCompleted int    `json:"sessions_completed"`
	SessionsMissed    int    `json:"sessions_missed"`
	BonusMinutes      int    `json:"bonus_minutes"`
	PenaltyMinutes    int    `json:"penalty_minutes"`
	CurrentStreak     int    `json:"current_streak"`
	LongestStreak     int    `json:"longest_streak"`
	LastSessionDate   string `json:"last_session_date,omitempty"`
	WeekdayHistogram  [7]int `json:"weekday_histogram"`
}

func marshalAnalytics(a commitment.Analytics) (string, error) {
	rec := analyticsRecord{
		SessionsCompleted: a.SessionsCompleted,
		SessionsMissed:    a.SessionsMissed,
		BonusMinutes:      a.BonusMinutes,
		PenaltyMinutes:    a.PenaltyMinutes,
		CurrentStreak:     a.CurrentStreak,
		LongestStreak:     a.LongestStreak,
		WeekdayHistogram:  a.WeekdayHistogram,
	}
	if !a.LastSessionDate.IsZero() {
		rec.LastSessionDate = formatDay(a.LastSessionDate)
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal analytics: %w", err)
	}
	return string(b), nil
}

func unmarshalAnalytics(raw string, a *commitment.Analytics) error {
	var rec analyticsRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return fmt.Errorf("parse analytics: %w", err)
	}
	a.SessionsCompleted = rec.SessionsCompleted
	a.SessionsMissed = rec.SessionsMissed
	a.BonusMinutes = rec.BonusMinutes
	a.PenaltyMinutes = rec.PenaltyMinutes
	a.CurrentStreak = rec.CurrentStreak
	a.LongestStreak = rec.LongestStreak
	a.WeekdayHistogram = rec.WeekdayHistogram
	if rec.LastSessionDate != "" {
		day, err := parseDay(rec.LastSessionDate)
		if err != nil {
			return err
		}
		a.LastSessionDate = day
	}
	return nil
}

// =============================================================================
// DAY LOGS
// =============================================================================

func (s *Store) GetDayLog(ctx context.Context, day time.Time) (*commitment.DayLog, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT day, outcome, session_uuid, minutes_adjustment, adjustment_type, was_near_miss
		FROM day_logs WHERE day = ?`, formatDay(day))

	log, err := scanDayLog(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

func (s *Store) DayLogsInRange(ctx context.Context, from, to time.Time) ([]commitment.DayLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, outcome, session_uuid, minutes_adjustment, adjustment_type, was_near_miss
		FROM day_logs WHERE day >= ? AND day <= ? ORDER BY day`,
		formatDay(from), formatDay(to))
	if err != nil {
		return nil, fmt.Errorf("query day logs: %w", err)
	}
	defer rows.Close()

	var logs []commitment.DayLog
	for rows.Next() {
		log, err := scanDayLog(rows.Scan)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func scanDayLog(scan func(...any) error) (commitment.DayLog, error) {
	var l commitment.DayLog
	var day, outcome, adjustmentType string
	var sessionUUID sql.NullString
	if err := scan(&day, &outcome, &sessionUUID, &l.MinutesAdjustment, &adjustmentType, &l.WasNearMiss); err != nil {
		return commitment.DayLog{}, err
	}
	var err error
	if l.Day, err = parseDay(day); err != nil {
		return commitment.DayLog{}, err
	}
	l.Outcome = commitment.DayOutcome(outcome)
	l.AdjustmentType = commitment.AdjustmentType(adjustmentType)
	l.SessionUUID = sessionUUID.String
	return l, nil
}

func (s *Store) ClearDayLogs(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM day_logs`); err != nil {
		return fmt.Errorf("clear day logs: %w", err)
	}
	return nil
}

// =============================================================================
// HISTORY
// =============================================================================

func (s *Store) AppendHistory(ctx context.Context, e commitment.HistoryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO commitment_history
			(id, start_date, end_date, duration_days, completion_rate, net_minutes, reason, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, formatDay(e.StartDate), formatDay(e.EndDate), e.DurationDays,
		e.CompletionRate, e.NetMinutes, string(e.Reason), e.ArchivedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *Store) History(ctx context.Context) ([]commitment.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, start_date, end_date, duration_days, completion_rate, net_minutes, reason, archived_at
		FROM commitment_history ORDER BY archived_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []commitment.HistoryEntry
	for rows.Next() {
		var e commitment.HistoryEntry
		var startDate, endDate, reason, archivedAt string
		if err := rows.Scan(&e.ID, &startDate, &endDate, &e.DurationDays,
			&e.CompletionRate, &e.NetMinutes, &reason, &archivedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if e.StartDate, err = parseDay(startDate); err != nil {
			return nil, err
		}
		if e.EndDate, err = parseDay(endDate); err != nil {
			return nil, err
		}
		if e.ArchivedAt, err = time.Parse(time.RFC3339, archivedAt); err != nil {
			return nil, fmt.Errorf("parse archived time: %w", err)
		}
		e.Reason = commitment.EndReason(reason)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// ATOMIC EFFECTS
// =============================================================================

// Apply persists day logs, the settings update, and the hour-bank
// adjustment inside one SQL transaction.
func (s *Store) Apply(ctx context.Context, e commitment.Effects) error {
	if e.IsZero() {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, l := range e.DayLogs {
		var outcome string
		err := tx.QueryRowContext(ctx,
			`SELECT outcome FROM day_logs WHERE day = ?`, formatDay(l.Day)).Scan(&outcome)
		switch {
		case err == sql.ErrNoRows:
			// Unsettled day.
		case err != nil:
			return fmt.Errorf("check day log: %w", err)
		case outcome == string(commitment.DayCompleted):
			return commitment.ErrDayCompleted
		}

		var sessionUUID any
		if l.SessionUUID != "" {
			sessionUUID = l.SessionUUID
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO day_logs (day, outcome, session_uuid, minutes_adjustment, adjustment_type, was_near_miss)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(day) DO UPDATE SET
				outcome = excluded.outcome,
				session_uuid = excluded.session_uuid,
				minutes_adjustment = excluded.minutes_adjustment,
				adjustment_type = excluded.adjustment_type,
				was_near_miss = excluded.was_near_miss`,
			formatDay(l.Day), string(l.Outcome), sessionUUID,
			l.MinutesAdjustment, string(l.AdjustmentType), l.WasNearMiss)
		if err != nil {
			return fmt.Errorf("write day log: %w", err)
		}
	}

	if e.Settings != nil {
		if err := putSettingsTx(ctx, tx, *e.Settings); err != nil {
			return err
		}
	}

	if e.BankMinutes != 0 {
		if err := adjustLedgerTx(ctx, tx, e.BankMinutes); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// adjustLedgerTx applies a signed minute adjustment to the ledger row
// inside an open transaction, creating the row lazily if needed.
func adjustLedgerTx(ctx context.Context, tx *sql.Tx, minutes int) error {
	var purchased, consumed string
	var isLifetime bool
	err := tx.QueryRowContext(ctx, `
		SELECT purchased_hours, consumed_hours, is_lifetime
		FROM ledger WHERE id = ?`, singletonID).Scan(&purchased, &consumed, &isLifetime)

	ledger := bank.NewLedger()
	switch {
	case err == sql.ErrNoRows:
		// Lazy init, same as the bank service.
	case err != nil:
		return fmt.Errorf("load ledger: %w", err)
	default:
		ledger.IsLifetime = isLifetime
		if ledger.PurchasedHours, err = decimal.NewFromString(purchased); err != nil {
			return fmt.Errorf("parse purchased hours: %w", err)
		}
		if ledger.ConsumedHours, err = decimal.NewFromString(consumed); err != nil {
			return fmt.Errorf("parse consumed hours: %w", err)
		}
	}

	ledger = bank.ApplyMinutes(ledger, minutes)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO ledger (id, purchased_hours, consumed_hours, is_lifetime)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			purchased_hours = excluded.purchased_hours,
			consumed_hours = excluded.consumed_hours`,
		singletonID, ledger.PurchasedHours.String(), ledger.ConsumedHours.String(), ledger.IsLifetime)
	if err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// =============================================================================
// SESSIONS
// =============================================================================

func (s *Store) Record(ctx context.Context, r session.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (uuid, start_time, end_time, duration_seconds)
		VALUES (?, ?, ?, ?)`,
		r.UUID, r.StartTime.Format(time.RFC3339), r.EndTime.Format(time.RFC3339), r.DurationSeconds)
	if err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

func (s *Store) All(ctx context.Context) ([]session.Record, error) {
	return s.querySessions(ctx, `
		SELECT uuid, start_time, end_time, duration_seconds
		FROM sessions ORDER BY start_time`)
}

func (s *Store) Recent(ctx context.Context, limit int) ([]session.Record, error) {
	return s.querySessions(ctx, `
		SELECT uuid, start_time, end_time, duration_seconds
		FROM sessions ORDER BY start_time DESC LIMIT ?`, limit)
}

func (s *Store) querySessions(ctx context.Context, query string, args ...any) ([]session.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var records []session.Record
	for rows.Next() {
		var r session.Record
		var start, end string
		if err := rows.Scan(&r.UUID, &start, &end, &r.DurationSeconds); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if r.StartTime, err = time.Parse(time.RFC3339, start); err != nil {
			return nil, fmt.Errorf("parse session start: %w", err)
		}
		if r.EndTime, err = time.Parse(time.RFC3339, end); err != nil {
			return nil, fmt.Errorf("parse session end: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// DAY KEY HELPERS
// =============================================================================

func formatDay(t time.Time) string {
	return t.Format(dayFormat)
}

func parseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dayFormat, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}
