/*
service.go - Persistence-backed hour-bank operations

PURPOSE:
  Wires the pure transitions in ledger.go / reconcile.go to a Store.
  Every method follows the same load -> apply -> save shape. The
  validation no-op contract carries through: bad input returns a zero
  value and leaves storage untouched; only genuine storage failures
  surface as errors.

LAZY INITIALIZATION:
  The ledger row is created on first access with InitialFreeHours
  purchased. There is no explicit "create account" call anywhere.

SEE ALSO:
  - ledger.go: The transitions being applied
  - store.go: Storage interface
*/
package bank

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/practice-engine/session"
)

// Service exposes the hour-bank operations over a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a bank service. The clock is injectable for tests.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// load fetches the ledger, creating it lazily on first access.
func (s *Service) load(ctx context.Context) (Ledger, error) {
	l, err := s.store.GetLedger(ctx)
	if err != nil {
		return Ledger{}, fmt.Errorf("load ledger: %w", err)
	}
	if l != nil {
		return *l, nil
	}

	fresh := NewLedger()
	if err := s.store.PutLedger(ctx, fresh); err != nil {
		return Ledger{}, fmt.Errorf("initialize ledger: %w", err)
	}
	slog.Info("hour bank created", "initial_hours", InitialFreeHours)
	return fresh, nil
}

// Balance returns the derived account state, lazily initializing the
// ledger if it has never been created.
func (s *Service) Balance(ctx context.Context) (Balance, error) {
	l, err := s.load(ctx)
	if err != nil {
		return Balance{}, err
	}
	return BalanceOf(l), nil
}

// Ledger returns the full ledger including purchase history.
func (s *Service) Ledger(ctx context.Context) (Ledger, error) {
	return s.load(ctx)
}

// CanStartSession reports whether a new practice session may begin.
func (s *Service) CanStartSession(ctx context.Context) (bool, error) {
	b, err := s.Balance(ctx)
	if err != nil {
		return false, err
	}
	return b.CanStartSession(), nil
}

// Consume deducts a completed session's duration and returns the hours
// deducted. Zero (with no mutation) for sub-minute or malformed durations
// and for lifetime accounts.
func (s *Service) Consume(ctx context.Context, durationSeconds float64) (decimal.Decimal, error) {
	l, err := s.load(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	next, deducted := ApplyConsumption(l, durationSeconds)
	if deducted.IsZero() {
		return decimal.Zero, nil
	}
	if err := s.store.PutLedger(ctx, next); err != nil {
		return decimal.Zero, fmt.Errorf("save ledger: %w", err)
	}
	return deducted, nil
}

// AddPurchasedHours credits a purchase. Non-positive or non-finite hours
// are a silent no-op. Any standing deficit is absorbed by the credit.
func (s *Service) AddPurchasedHours(ctx context.Context, hours float64, productID, transactionID string) error {
	l, err := s.load(ctx)
	if err != nil {
		return err
	}

	next, ok := ApplyPurchase(l, hours, productID, transactionID, s.now())
	if !ok {
		return nil
	}
	if err := s.store.PutLedger(ctx, next); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	slog.Info("purchase credited", "hours", hours, "product", productID)
	return nil
}

// GrantLifetimeAccess marks the account lifetime.
func (s *Service) GrantLifetimeAccess(ctx context.Context, transactionID string) error {
	l, err := s.load(ctx)
	if err != nil {
		return err
	}

	next := ApplyLifetimeGrant(l, transactionID, s.now())
	if err := s.store.PutLedger(ctx, next); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	slog.Info("lifetime access granted")
	return nil
}

// AddMinutes applies a signed whole-minute adjustment (commitment bonus or
// penalty). Lifetime accounts are exempt.
func (s *Service) AddMinutes(ctx context.Context, minutes int) error {
	if minutes == 0 {
		return nil
	}
	l, err := s.load(ctx)
	if err != nil {
		return err
	}

	next := ApplyMinutes(l, minutes)
	if next.IsLifetime {
		return nil
	}
	if err := s.store.PutLedger(ctx, next); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// Reconcile corrects the consumed-hours figure from the authoritative
// session history. Consumed hours only ever move up; a shrunken history
// leaves the ledger untouched. No-op when the ledger does not exist yet:
// there is nothing to correct.
func (s *Service) Reconcile(ctx context.Context, sessions []session.Record) (bool, error) {
	l, err := s.store.GetLedger(ctx)
	if err != nil {
		return false, fmt.Errorf("load ledger: %w", err)
	}
	if l == nil {
		return false, nil
	}

	next, corrected := ApplyReconciliation(*l, sessions)
	if !corrected {
		return false, nil
	}
	if err := s.store.PutLedger(ctx, next); err != nil {
		return false, fmt.Errorf("save ledger: %w", err)
	}
	slog.Info("ledger reconciled",
		"previous_consumed", l.ConsumedHours.String(),
		"corrected_consumed", next.ConsumedHours.String())
	return true, nil
}
