//go:build integration

package progress_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harambee/internal/platform/postgres"
	"harambee/internal/progress"
	"harambee/pkg/testutil/containers"
)

func TestPostgresProgressStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	require.NoError(t, postgres.Migrate(ctx, pg.DB))

	store := progress.NewPostgres(pg.DB)
	slotID := uuid.NewString()

	base := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, store.Create(ctx, &progress.Update{
		ID:          uuid.NewString(),
		SlotID:      slotID,
		Phase:       progress.PhaseTraining,
		Description: "Enrolled at the driving school",
		Progress:    20,
		CreatedAt:   base,
	}))
	require.NoError(t, store.Create(ctx, &progress.Update{
		ID:          uuid.NewString(),
		SlotID:      slotID,
		Phase:       progress.PhaseTraining,
		Description: "Passed the theory exam",
		Progress:    50,
		CreatedAt:   base.Add(time.Second),
	}))

	timeline, err := store.ListBySlot(ctx, slotID)
	require.NoError(t, err)
	require.Len(t, timeline, 2)

	// Newest first.
	assert.Equal(t, 50, timeline[0].Progress)
	assert.Equal(t, 20, timeline[1].Progress)

	other, err := store.ListBySlot(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, other)
}
