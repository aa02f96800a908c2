/*
reconcile.go - One-way correction of consumed hours from session history

PURPOSE:
  The ledger's consumed-hours figure can fall behind ground truth: a
  session edited to a longer duration after the fact, or a crash between
  recording a session and consuming its hours. Reconciliation recomputes
  the true total from the authoritative session history and corrects the
  ledger.

THE RATCHET:
  Consumed hours only ever move UP. If the session history sums to LESS
  than the stored figure (sessions deleted or shortened), reconciliation
  does nothing - there is no refund path. Deleting a session is editing
  the diary, not un-spending the hours.

IDEMPOTENCY:
  Re-running reconciliation with no new data is a no-op, so it is safe to
  run on every app activation.
*/
package bank

import (
	"github.com/shopspring/decimal"

	"github.com/warp/practice-engine/session"
)

var secondsPerHour = decimal.NewFromInt(3600)

// ApplyReconciliation recomputes consumed hours from the full session
// history and raises the stored figure when the truth is larger. Returns
// the (possibly unchanged) ledger and whether a correction was applied.
//
// No-op for lifetime accounts: their consumption is never charged, so a
// stale figure is harmless and correcting it would churn the row.
func ApplyReconciliation(l Ledger, sessions []session.Record) (Ledger, bool) {
	if l.IsLifetime {
		return l, false
	}

	trueConsumed := decimal.Zero
	for _, s := range sessions {
		if !isFinitePositive(s.DurationSeconds) {
			continue
		}
		trueConsumed = trueConsumed.Add(decimal.NewFromFloat(s.DurationSeconds).Div(secondsPerHour))
	}

	// One-way ratchet: never decrease consumed hours.
	if !trueConsumed.GreaterThan(l.ConsumedHours) {
		return l, false
	}

	l.ConsumedHours = trueConsumed
	return l, true
}
