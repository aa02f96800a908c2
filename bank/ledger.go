/*
ledger.go - Pure state transitions on the hour-bank ledger

PURPOSE:
  Every mutation of the bank is expressed as a pure function
  Ledger -> (Ledger, result). The Service (service.go) loads the ledger,
  applies one of these transitions, and persists the result. Keeping the
  transitions pure is what makes the accounting rules unit-testable
  without a storage dependency.

VALIDATION CONTRACT:
  Malformed input (negative, NaN, infinite) never errors. The transition
  returns the ledger unchanged together with a zero/false sentinel. These
  functions sit under UI input paths that may hand over transient garbage;
  "nothing happened" is the correct outcome, not a crash.

CRITICAL RULES:
  - Consumption rounds the duration UP to whole minutes (61s -> 2min)
  - Sub-minute durations consume nothing
  - Lifetime accounts are exempt from all consumption and penalties
  - A purchase silently absorbs any standing deficit: the new available
    balance is purchased - consumed, never old available + hours

SEE ALSO:
  - reconcile.go: The consumed-hours one-way ratchet
  - service.go: Persistence wrapper
*/
package bank

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	secondsPerMinute = decimal.NewFromInt(60)
	minutesPerHour   = decimal.NewFromInt(60)
)

// =============================================================================
// CONSUMPTION
// =============================================================================

// ApplyConsumption deducts a completed session's duration from the bank.
// The duration is rounded up to the nearest whole minute before converting
// to hours: a 61-second session consumes 2 minutes.
//
// Returns the (possibly unchanged) ledger and the hours actually deducted.
// Deducts nothing when:
//   - duration is below MinConsumableSeconds
//   - duration is not a finite positive number
//   - the account is lifetime
func ApplyConsumption(l Ledger, durationSeconds float64) (Ledger, decimal.Decimal) {
	if !isFinitePositive(durationSeconds) || durationSeconds < MinConsumableSeconds {
		return l, decimal.Zero
	}
	if l.IsLifetime {
		return l, decimal.Zero
	}

	minutes := decimal.NewFromFloat(durationSeconds).Div(secondsPerMinute).Ceil()
	hours := minutes.Div(minutesPerHour)

	l.ConsumedHours = l.ConsumedHours.Add(hours)
	return l, hours
}

// =============================================================================
// PURCHASES
// =============================================================================

// ApplyPurchase credits purchased hours and appends a purchase-history
// entry. Non-positive or non-finite hours are a no-op (ok=false).
//
// Deficit absorption: purchased hours are ADDED to the purchased total, so
// an account that was in deficit comes out with
// available = newPurchased - consumed. The deficit is paid down first; the
// caller never sees available jump by the full purchase amount.
func ApplyPurchase(l Ledger, hours float64, productID, transactionID string, at time.Time) (Ledger, bool) {
	if !isFinitePositive(hours) {
		return l, false
	}

	amount := decimal.NewFromFloat(hours)
	l.PurchasedHours = l.PurchasedHours.Add(amount)
	l.LastPurchaseAt = &at
	l.PurchaseHistory = append(l.PurchaseHistory, Purchase{
		ProductID:     productID,
		TransactionID: transactionID,
		Hours:         amount,
		PurchasedAt:   at,
	})
	return l, true
}

// ApplyLifetimeGrant marks the account lifetime and sets the purchased
// figure to LifetimeHours. The derived available balance is clamped at
// zero even if prior consumption somehow exceeds the grant.
func ApplyLifetimeGrant(l Ledger, transactionID string, at time.Time) Ledger {
	l.IsLifetime = true
	l.PurchasedHours = decimal.NewFromFloat(LifetimeHours)
	l.LastPurchaseAt = &at
	l.PurchaseHistory = append(l.PurchaseHistory, Purchase{
		ProductID:     "lifetime",
		TransactionID: transactionID,
		Hours:         decimal.NewFromFloat(LifetimeHours),
		PurchasedAt:   at,
	})
	return l
}

// =============================================================================
// COMMITMENT ADJUSTMENTS
// =============================================================================

// ApplyMinutes credits (positive) or debits (negative) whole minutes
// against the bank. Commitment-mode bonuses and penalties flow through
// here. Lifetime accounts are exempt: the adjustment is dropped.
//
// A debit raises ConsumedHours rather than lowering PurchasedHours, so the
// purchase history stays a faithful record of what was actually bought.
func ApplyMinutes(l Ledger, minutes int) Ledger {
	if minutes == 0 || l.IsLifetime {
		return l
	}
	hours := decimal.NewFromInt(int64(minutes)).Div(minutesPerHour)
	if minutes > 0 {
		l.PurchasedHours = l.PurchasedHours.Add(hours)
	} else {
		l.ConsumedHours = l.ConsumedHours.Add(hours.Neg())
	}
	return l
}

// =============================================================================
// HELPERS
// =============================================================================

func isFinitePositive(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f > 0
}
