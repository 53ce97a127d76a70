package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/resell/internal/db"
)

func TestRevokeAndCheckToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, database, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, RevokeToken(ctx, database, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = IsTokenRevoked(ctx, database, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = IsTokenRevoked(ctx, database, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeTokenIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, RevokeToken(ctx, database, "jti-1", time.Now().Add(time.Hour)))
	require.NoError(t, RevokeToken(ctx, database, "jti-1", time.Now().Add(time.Hour)))
}

func TestRevokeTokenPurgesExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, RevokeToken(ctx, database, "stale", time.Now().Add(-time.Hour)))
	require.NoError(t, RevokeToken(ctx, database, "fresh", time.Now().Add(time.Hour)))

	var n int
	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM revoked_tokens`).Scan(&n))
	assert.Equal(t, 1, n)
}
