package bank_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/practice-engine/bank"
	"github.com/warp/practice-engine/session"
	"github.com/warp/practice-engine/store/memory"
)

// =============================================================================
// LAZY INITIALIZATION
// =============================================================================

func TestService_LedgerCreatedOnFirstAccess(t *testing.T) {
	// GIVEN: A store with no ledger row
	// WHEN: The balance is read for the first time
	// THEN: The ledger exists with the initial free hours

	svc := bank.NewService(memory.New())
	b, err := svc.Balance(context.Background())
	require.NoError(t, err)

	assert.True(t, b.Purchased.Equal(decimal.NewFromFloat(bank.InitialFreeHours)))
	assert.True(t, b.Consumed.IsZero())
	assert.True(t, b.CanStartSession())
}

// =============================================================================
// SERVICE OPERATIONS
// =============================================================================

func TestService_ConsumePersists(t *testing.T) {
	store := memory.New()
	svc := bank.NewService(store)
	ctx := context.Background()

	deducted, err := svc.Consume(ctx, 1800) // 30 minutes
	require.NoError(t, err)
	assert.True(t, deducted.Equal(decimal.NewFromFloat(0.5)), "got %s", deducted)

	b, err := svc.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, b.Available.Equal(decimal.NewFromFloat(bank.InitialFreeHours-0.5)))
}

func TestService_ConsumeSubMinuteDoesNotPersist(t *testing.T) {
	svc := bank.NewService(memory.New())
	ctx := context.Background()

	deducted, err := svc.Consume(ctx, 30)
	require.NoError(t, err)
	assert.True(t, deducted.IsZero())

	b, err := svc.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, b.Consumed.IsZero())
}

func TestService_PurchaseThenBalance(t *testing.T) {
	svc := bank.NewService(memory.New())
	ctx := context.Background()

	require.NoError(t, svc.AddPurchasedHours(ctx, 10, "pack-10", "txn-1"))

	b, err := svc.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, b.Available.Equal(decimal.NewFromFloat(bank.InitialFreeHours+10)))

	l, err := svc.Ledger(ctx)
	require.NoError(t, err)
	require.Len(t, l.PurchaseHistory, 1)
	assert.Equal(t, "pack-10", l.PurchaseHistory[0].ProductID)
	assert.NotNil(t, l.LastPurchaseAt)
}

func TestService_ReconcileWithoutLedgerIsNoOp(t *testing.T) {
	// GIVEN: No ledger row exists yet
	// WHEN: Reconciliation runs over a session history
	// THEN: Nothing is created - there is nothing to correct

	store := memory.New()
	svc := bank.NewService(store)

	corrected, err := svc.Reconcile(context.Background(), []session.Record{sessionOf(3600)})
	require.NoError(t, err)
	assert.False(t, corrected)

	l, err := store.GetLedger(context.Background())
	require.NoError(t, err)
	assert.Nil(t, l, "reconcile must not lazily create the ledger")
}

func TestService_ReconcileCorrectsStaleFigure(t *testing.T) {
	store := memory.New()
	svc := bank.NewService(store)
	ctx := context.Background()

	// Materialize the ledger, then feed a history larger than recorded.
	_, err := svc.Balance(ctx)
	require.NoError(t, err)

	corrected, err := svc.Reconcile(ctx, []session.Record{sessionOf(3600)})
	require.NoError(t, err)
	assert.True(t, corrected)

	b, err := svc.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, b.Consumed.Equal(decimal.NewFromInt(1)))
}
