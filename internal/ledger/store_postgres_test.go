//go:build integration

package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harambee/internal/ledger"
	"harambee/internal/platform/postgres"
	"harambee/internal/slot"
	"harambee/pkg/platform/sentinel"
	"harambee/pkg/testutil/containers"
)

func newContribution(slotID, intentID string, amount int64) *ledger.Contribution {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &ledger.Contribution{
		ID:              uuid.NewString(),
		SlotID:          slotID,
		SponsorID:       "daniel@example.com",
		SponsorName:     "Daniel",
		Amount:          decimal.NewFromInt(amount),
		Kind:            ledger.KindFull,
		PaymentStatus:   ledger.PaymentPending,
		GatewayIntentID: intentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestPostgresLedgerStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	require.NoError(t, postgres.Migrate(ctx, pg.DB))

	slots, err := slot.NewPostgres(ctx, pg.DB, 2000)
	require.NoError(t, err)
	store := ledger.NewPostgres(pg.DB)

	owned := &slot.Slot{
		ID:            uuid.NewString(),
		OwnerID:       uuid.NewString(),
		Name:          "Kevin Mwangi",
		Age:           22,
		County:        "Kisii County",
		Constituency:  "Bonchari",
		Ward:          "Bomariba",
		Story:         "Saving for a license.",
		TargetAmount:  decimal.NewFromInt(65000),
		CurrentAmount: decimal.Zero,
		Status:        slot.StatusAvailable,
		LicenseType:   slot.LicenseNone,
		ProgramType:   slot.ProgramStandard,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, slots.Create(ctx, owned))

	t.Run("finalize completes once and funds the slot", func(t *testing.T) {
		c := newContribution(owned.ID, "pi_once", 65000)
		require.NoError(t, store.Create(ctx, c))

		done, applied, err := store.Finalize(ctx, "pi_once", ledger.PaymentCompleted)
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, ledger.PaymentCompleted, done.PaymentStatus)

		got, err := slots.Get(ctx, owned.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(65000).Equal(got.CurrentAmount))
		assert.Equal(t, slot.StatusFullyFunded, got.Status)

		// Redelivery matches zero pending rows and must not double-fund.
		again, applied, err := store.Finalize(ctx, "pi_once", ledger.PaymentCompleted)
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, ledger.PaymentCompleted, again.PaymentStatus)

		got, err = slots.Get(ctx, owned.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(65000).Equal(got.CurrentAmount))
	})

	t.Run("finalize unknown intent", func(t *testing.T) {
		_, _, err := store.Finalize(ctx, "pi_missing", ledger.PaymentCompleted)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("failed contribution leaves the slot alone", func(t *testing.T) {
		c := newContribution(owned.ID, "pi_failed", 5000)
		require.NoError(t, store.Create(ctx, c))

		_, applied, err := store.Finalize(ctx, "pi_failed", ledger.PaymentFailed)
		require.NoError(t, err)
		assert.True(t, applied)

		got, err := slots.Get(ctx, owned.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(65000).Equal(got.CurrentAmount))
	})

	t.Run("aggregates count only completed money", func(t *testing.T) {
		total, err := store.TotalCompleted(ctx)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(65000).Equal(total), "got %s", total)

		n, err := store.DistinctSponsors(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		ranks, err := store.RankSponsors(ctx, 10)
		require.NoError(t, err)
		require.Len(t, ranks, 1)
		assert.Equal(t, "daniel@example.com", ranks[0].SponsorID)
		assert.Equal(t, 1, ranks[0].Rank)
	})

	t.Run("history is newest first", func(t *testing.T) {
		rows, err := store.ListBySlot(ctx, owned.ID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "pi_failed", rows[0].GatewayIntentID)
	})
}
