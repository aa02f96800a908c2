/*
Package memory provides an in-memory implementation of every storage
interface (for testing/dev).

PURPOSE:
  Mirrors the SQLite store's semantics - singleton rows, day-keyed logs,
  append-only history, atomic Effects - with mutex-guarded maps. Tests
  that exercise the engine and the bank run against this store; tests
  that exercise persistence itself run against store/sqlite.
*/
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/practice-engine/bank"
	"github.com/warp/practice-engine/commitment"
	"github.com/warp/practice-engine/session"
)

// Store implements bank.Store, commitment.Store, and session.Recorder.
type Store struct {
	mu       sync.RWMutex
	ledger   *bank.Ledger
	settings *commitment.Settings
	dayLogs  map[time.Time]commitment.DayLog
	history  []commitment.HistoryEntry
	sessions []session.Record
}

func New() *Store {
	return &Store{dayLogs: make(map[time.Time]commitment.DayLog)}
}

// Compile-time interface checks.
var (
	_ bank.Store       = (*Store)(nil)
	_ commitment.Store = (*Store)(nil)
	_ session.Recorder = (*Store)(nil)
)

// =============================================================================
// BANK
// =============================================================================

func (s *Store) GetLedger(_ context.Context) (*bank.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ledger == nil {
		return nil, nil
	}
	l := *s.ledger
	l.PurchaseHistory = append([]bank.Purchase(nil), s.ledger.PurchaseHistory...)
	return &l, nil
}

func (s *Store) PutLedger(_ context.Context, l bank.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = &l
	return nil
}

// =============================================================================
// COMMITMENT
// =============================================================================

func (s *Store) GetSettings(_ context.Context) (*commitment.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil, nil
	}
	cp := *s.settings
	return &cp, nil
}

func (s *Store) PutSettings(_ context.Context, settings commitment.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
	return nil
}

func (s *Store) GetDayLog(_ context.Context, day time.Time) (*commitment.DayLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.dayLogs[commitment.StartOfDay(day)]; ok {
		return &l, nil
	}
	return nil, nil
}

func (s *Store) DayLogsInRange(_ context.Context, from, to time.Time) ([]commitment.DayLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fromDay, toDay := commitment.StartOfDay(from), commitment.StartOfDay(to)
	var logs []commitment.DayLog
	for day, l := range s.dayLogs {
		if !day.Before(fromDay) && !day.After(toDay) {
			logs = append(logs, l)
		}
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].Day.Before(logs[j].Day) })
	return logs, nil
}

func (s *Store) ClearDayLogs(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dayLogs = make(map[time.Time]commitment.DayLog)
	return nil
}

func (s *Store) AppendHistory(_ context.Context, e commitment.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, e)
	return nil
}

func (s *Store) History(_ context.Context) ([]commitment.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := append([]commitment.HistoryEntry(nil), s.history...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].ArchivedAt.After(entries[j].ArchivedAt) })
	return entries, nil
}

// Apply persists day logs, settings, and the bank adjustment together.
// The memory store is single-process; holding the lock for the whole
// application is the atomicity.
func (s *Store) Apply(_ context.Context, e commitment.Effects) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate first: a completed day log is immutable.
	for _, l := range e.DayLogs {
		day := commitment.StartOfDay(l.Day)
		if existing, ok := s.dayLogs[day]; ok && existing.Outcome == commitment.DayCompleted {
			return commitment.ErrDayCompleted
		}
	}

	for _, l := range e.DayLogs {
		l.Day = commitment.StartOfDay(l.Day)
		s.dayLogs[l.Day] = l
	}
	if e.Settings != nil {
		cp := *e.Settings
		s.settings = &cp
	}
	if e.BankMinutes != 0 {
		ledger := bank.NewLedger()
		if s.ledger != nil {
			ledger = *s.ledger
		}
		ledger = bank.ApplyMinutes(ledger, e.BankMinutes)
		s.ledger = &ledger
	}
	return nil
}

// =============================================================================
// SESSIONS
// =============================================================================

func (s *Store) Record(_ context.Context, r session.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, r)
	return nil
}

func (s *Store) All(_ context.Context) ([]session.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := append([]session.Record(nil), s.sessions...)
	sort.Slice(records, func(i, j int) bool { return records[i].StartTime.Before(records[j].StartTime) })
	return records, nil
}

func (s *Store) Recent(_ context.Context, limit int) ([]session.Record, error) {
	records, _ := s.All(context.Background())
	// Newest first.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
