/*
store.go - Persistence interface for the hour-bank ledger

PURPOSE:
  The bank owns a single record. The Store interface is deliberately
  tiny: load the record (or report it absent) and save it back. Both the
  SQLite store and the in-memory store implement it.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - store/memory: In-memory for testing
*/
package bank

import "context"

// Store persists the singleton ledger record.
type Store interface {
	// GetLedger returns the ledger, or (nil, nil) when it has never been
	// created. Absence is not an error: the Service initializes lazily.
	GetLedger(ctx context.Context) (*Ledger, error)

	// PutLedger saves the full ledger record, creating it if needed.
	PutLedger(ctx context.Context, l Ledger) error
}
