package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/persistence"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/receipt"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDynamoStore(t *testing.T) repository.ReceiptStore {
	t.Helper()

	endpoint := SetupDynamo(t)
	store, err := repository.NewDynamoReceiptStore(context.Background(), receiptTable, "us-east-1", endpoint, zerolog.Nop())
	require.NoError(t, err)
	return store
}

func dynamoReceipt(id, status string, now time.Time) *model.Receipt {
	r := &model.Receipt{
		ReceiptID:  id,
		Wallet:     testWallet,
		Currency:   "USD",
		TotalMinor: 2388,
		TaxRate:    "0.08",
		FeePct:     "0.5",
		LineItems: []model.ReceiptLine{
			{Kind: model.LineKindItem, Label: "Latte", ItemID: "latte", Quantity: 2, UnitPriceMinor: 1000, PriceMinor: 2000, Taxable: true},
		},
		Version: 1,
	}
	receipt.NewMachine(nil, 7*24*time.Hour).Init(r, status, now)
	return r
}

func TestDynamoReceiptStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	store := newDynamoStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("create and get round trip", func(t *testing.T) {
		r := dynamoReceipt("01A", model.StatusGenerated, now)
		require.NoError(t, store.Create(ctx, r))

		got, err := store.Get(ctx, testWallet, "01A")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, r.TotalMinor, got.TotalMinor)
		assert.Equal(t, r.LineItems, got.LineItems)
		assert.Equal(t, r.TTL, got.TTL)
		assert.True(t, r.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("missing receipt is nil", func(t *testing.T) {
		got, err := store.Get(ctx, testWallet, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("compare and swap rejects stale versions", func(t *testing.T) {
		r := dynamoReceipt("01B", model.StatusGenerated, now)
		require.NoError(t, store.Create(ctx, r))

		next := r.Clone()
		next.Status = model.StatusPaid
		require.NoError(t, store.CompareAndSwap(ctx, next, 1))
		assert.Equal(t, int64(2), next.Version)

		stale := r.Clone()
		stale.Status = model.StatusPending
		err := store.CompareAndSwap(ctx, stale, 1)
		assert.ErrorIs(t, err, model.ErrVersionConflict)

		got, err := store.Get(ctx, testWallet, "01B")
		require.NoError(t, err)
		assert.Equal(t, model.StatusPaid, got.Status)
	})

	t.Run("create never replaces a stored receipt", func(t *testing.T) {
		err := store.Create(ctx, dynamoReceipt("01B", model.StatusGenerated, now))
		assert.ErrorIs(t, err, model.ErrReceiptExists)

		got, err := store.Get(ctx, testWallet, "01B")
		require.NoError(t, err)
		assert.Equal(t, model.StatusPaid, got.Status)
		assert.Equal(t, int64(2), got.Version)
	})

	t.Run("list is newest first and limited", func(t *testing.T) {
		for _, id := range []string{"01C", "01D", "01E"} {
			require.NoError(t, store.Create(ctx, dynamoReceipt(id, model.StatusGenerated, now)))
		}

		got, err := store.ListByWallet(ctx, testWallet, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "01E", got[0].ReceiptID)
		assert.Equal(t, "01D", got[1].ReceiptID)
	})
}

func TestGatewayConcurrentStatusUpdates_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	store := newDynamoStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	gateway := persistence.NewGateway(store, persistence.Options{
		MaxRetries:   2,
		RetryInitial: 5 * time.Millisecond,
		CASRetries:   20,
	}, zerolog.Nop())
	machine := receipt.NewMachine(nil, 7*24*time.Hour)

	r := dynamoReceipt("01CONCURRENT", model.StatusGenerated, now)
	require.False(t, gateway.Save(ctx, r).Degraded)

	const writers = 5
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := model.StatusUpdate{ReceiptID: r.ReceiptID, Wallet: testWallet, Status: fmt.Sprintf("step_%d", i)}
			_, err := gateway.ApplyStatus(ctx, testWallet, r.ReceiptID, func(cur *model.Receipt) (*model.Receipt, receipt.Outcome) {
				return machine.Apply(cur, u, now)
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got, err := store.Get(ctx, testWallet, r.ReceiptID)
	require.NoError(t, err)
	assert.Equal(t, int64(1+writers), got.Version)
	assert.Len(t, got.StatusHistory, 1+writers)
}
