/*
Package bank provides the hour-bank ledger.

PURPOSE:
  The bank tracks a single account of practice hours: how many were
  purchased (or granted) and how many were consumed by completed practice
  sessions. Everything a caller sees (available hours, deficit) is derived
  from those two figures - there is no separately stored "available" field
  that can drift out of sync.

KEY CONCEPTS IN THIS FILE (types.go):
  - Ledger:   The singleton account record (purchased, consumed, lifetime)
  - Purchase: An entry in the append-only purchase history
  - Balance:  The derived view handed to callers

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for all hour arithmetic, no float drift
  2. Derivation: available and deficit are computed, never stored
  3. One-way ratchet: consumed hours only ever increase (see reconcile.go)
  4. Defensive inputs: malformed values are silent no-ops, never panics

SEE ALSO:
  - ledger.go: Pure state transitions on the Ledger value
  - service.go: Persistence-backed operations with the no-op contract
  - store.go: Storage interface
*/
package bank

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// InitialFreeHours is granted when the ledger is created on first access.
	InitialFreeHours = 2.0

	// LifetimeHours is the purchased figure set by a lifetime grant. Large
	// enough that no realistic consumption history exhausts it.
	LifetimeHours = 10000.0

	// MinConsumableSeconds is the floor below which a session consumes
	// nothing. Sub-minute sessions are treated as accidental taps.
	MinConsumableSeconds = 60.0
)

// =============================================================================
// LEDGER - The singleton hour-bank account
// =============================================================================

// Ledger is the persisted account record. There is exactly one per
// installation; it is created lazily and never deleted.
type Ledger struct {
	PurchasedHours  decimal.Decimal
	ConsumedHours   decimal.Decimal
	IsLifetime      bool
	LastPurchaseAt  *time.Time
	PurchaseHistory []Purchase
}

// Purchase is one entry in the append-only purchase history.
//
// NOTE: History is intentionally NOT deduplicated by TransactionID. A
// retried purchase webhook therefore credits twice. This mirrors the
// documented upstream behavior; do not "fix" it here without product
// sign-off.
type Purchase struct {
	ProductID     string
	TransactionID string
	Hours         decimal.Decimal
	PurchasedAt   time.Time
}

// NewLedger returns the ledger created on first access.
func NewLedger() Ledger {
	return Ledger{
		PurchasedHours: decimal.NewFromFloat(InitialFreeHours),
		ConsumedHours:  decimal.Zero,
	}
}

// =============================================================================
// BALANCE - Derived view
// =============================================================================

// Balance is the derived account state. Available and Deficit are computed
// from purchased/consumed; at most one of them is positive.
type Balance struct {
	Purchased  decimal.Decimal
	Consumed   decimal.Decimal
	Available  decimal.Decimal
	Deficit    decimal.Decimal
	IsLifetime bool
}

// BalanceOf derives the Balance view from a ledger.
func BalanceOf(l Ledger) Balance {
	available := l.PurchasedHours.Sub(l.ConsumedHours)
	deficit := l.ConsumedHours.Sub(l.PurchasedHours)
	if available.IsNegative() {
		available = decimal.Zero
	}
	if deficit.IsNegative() {
		deficit = decimal.Zero
	}
	return Balance{
		Purchased:  l.PurchasedHours,
		Consumed:   l.ConsumedHours,
		Available:  available,
		Deficit:    deficit,
		IsLifetime: l.IsLifetime,
	}
}

// CanStartSession reports whether a new practice session may begin:
// lifetime accounts always can, everyone else needs a positive balance.
func (b Balance) CanStartSession() bool {
	return b.IsLifetime || b.Available.IsPositive()
}
