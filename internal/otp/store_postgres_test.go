//go:build integration

package otp_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harambee/internal/otp"
	"harambee/internal/platform/postgres"
	"harambee/pkg/platform/sentinel"
	"harambee/pkg/testutil/containers"
)

func TestPostgresOTPStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	require.NoError(t, postgres.Migrate(ctx, pg.DB))

	store := otp.NewPostgres(pg.DB)

	create := func(identifier, code string, expiresAt time.Time) *otp.Challenge {
		c := &otp.Challenge{
			ID:         uuid.NewString(),
			Identifier: identifier,
			Code:       code,
			ExpiresAt:  expiresAt,
			CreatedAt:  time.Now().UTC(),
		}
		require.NoError(t, store.Create(ctx, c))
		return c
	}

	t.Run("consume is single use", func(t *testing.T) {
		now := time.Now().UTC()
		c := create("alice@example.com", "483920", now.Add(time.Minute))

		got, err := store.Consume(ctx, "alice@example.com", "483920", now)
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
		assert.True(t, got.Verified)

		_, err = store.Consume(ctx, "alice@example.com", "483920", now)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("expired challenge never verifies", func(t *testing.T) {
		now := time.Now().UTC()
		create("bob@example.com", "112233", now.Add(time.Minute))

		_, err := store.Consume(ctx, "bob@example.com", "112233", now.Add(2*time.Minute))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("sweep removes only dead rows", func(t *testing.T) {
		now := time.Now().UTC()
		create("carol@example.com", "556677", now.Add(-time.Minute))
		live := create("carol@example.com", "998877", now.Add(time.Hour))

		n, err := store.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(1))

		got, err := store.Consume(ctx, "carol@example.com", "998877", now)
		require.NoError(t, err)
		assert.Equal(t, live.ID, got.ID)
	})
}
