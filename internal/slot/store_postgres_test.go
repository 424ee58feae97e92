//go:build integration

package slot_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"harambee/internal/platform/postgres"
	"harambee/internal/slot"
	"harambee/pkg/platform/sentinel"
	"harambee/pkg/testutil/containers"
)

func newSlot(ownerID string) *slot.Slot {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &slot.Slot{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Name:          "Kevin Mwangi",
		Age:           22,
		County:        "Kisii County",
		Constituency:  "Bonchari",
		Ward:          "Bomariba",
		Story:         "Has wanted to drive since primary school.",
		TargetAmount:  decimal.NewFromInt(65000),
		CurrentAmount: decimal.Zero,
		Status:        slot.StatusAvailable,
		LicenseType:   slot.LicenseNone,
		ProgramType:   slot.ProgramStandard,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestPostgresSlotStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	require.NoError(t, postgres.Migrate(ctx, pg.DB))

	store, err := slot.NewPostgres(ctx, pg.DB, 2000)
	require.NoError(t, err)

	t.Run("create and read back", func(t *testing.T) {
		created := newSlot(uuid.NewString())
		require.NoError(t, store.Create(ctx, created))

		got, err := store.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.OwnerID, got.OwnerID)
		assert.True(t, created.TargetAmount.Equal(got.TargetAmount))
		assert.Equal(t, slot.StatusAvailable, got.Status)

		byOwner, err := store.GetByOwner(ctx, created.OwnerID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, byOwner.ID)
	})

	t.Run("get unknown slot", func(t *testing.T) {
		_, err := store.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("concurrent funding lands every shilling once", func(t *testing.T) {
		funded := newSlot(uuid.NewString())
		require.NoError(t, store.Create(ctx, funded))

		var g errgroup.Group
		for i := 0; i < 10; i++ {
			g.Go(func() error {
				_, err := store.ApplyFunding(ctx, funded.ID, decimal.NewFromInt(6500))
				return err
			})
		}
		require.NoError(t, g.Wait())

		got, err := store.Get(ctx, funded.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(65000).Equal(got.CurrentAmount),
			"got %s", got.CurrentAmount)
		assert.Equal(t, slot.StatusFullyFunded, got.Status)
	})

	t.Run("next available skips funded slots", func(t *testing.T) {
		next, err := store.NextAvailable(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, slot.StatusFullyFunded, next.Status)
		assert.True(t, next.CurrentAmount.LessThan(next.TargetAmount))
	})
}

func TestPostgresSlotStoreCapacity(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	require.NoError(t, postgres.Migrate(ctx, pg.DB))

	store, err := slot.NewPostgres(ctx, pg.DB, 2)
	require.NoError(t, err)

	require.NoError(t, store.Create(ctx, newSlot(uuid.NewString())))
	require.NoError(t, store.Create(ctx, newSlot(uuid.NewString())))

	err = store.Create(ctx, newSlot(uuid.NewString()))
	assert.ErrorIs(t, err, sentinel.ErrCapacity)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
