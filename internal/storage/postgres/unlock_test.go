package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/progress"
	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
	"github.com/cory-johannsen/skirmish/internal/testutil"
)

func setupUnlockRepo(t *testing.T) *postgres.UnlockRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return postgres.NewUnlockRepository(pc.RawPool)
}

func TestPool_CheckSchema(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()

	assert.ErrorIs(t, pc.Pool.CheckSchema(ctx), postgres.ErrSchemaMissing)
	pc.ApplyMigrations(t)
	require.NoError(t, pc.Pool.CheckSchema(ctx))

	ok, err := pc.Pool.Unlocks().IsUnlocked(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnlockRepository_RoundTrip(t *testing.T) {
	repo := setupUnlockRepo(t)
	ctx := context.Background()

	ok, err := repo.IsUnlocked(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.IsUnlocked(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Unlock(ctx, 2))
	require.NoError(t, repo.Unlock(ctx, 2))
	require.NoError(t, repo.Unlock(ctx, 6))

	got, err := repo.Unlocked(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 6}, got)

	assert.ErrorIs(t, repo.Unlock(ctx, 11), progress.ErrLevelOutOfRange)
	_, err = repo.IsUnlocked(ctx, 0)
	assert.ErrorIs(t, err, progress.ErrLevelOutOfRange)
}

// Property: the repository agrees with the in-memory store on any sequence
// of unlocks.
func TestProperty_UnlockRepositoryMatchesMemoryStore(t *testing.T) {
	repo := setupUnlockRepo(t)
	ctx := context.Background()
	mem := progress.NewMemoryStore()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(rt, "level")
		require.NoError(rt, repo.Unlock(ctx, n))
		require.NoError(rt, mem.Unlock(ctx, n))
		got, err := repo.Unlocked(ctx)
		require.NoError(rt, err)
		want, err := mem.Unlocked(ctx)
		require.NoError(rt, err)
		assert.Equal(rt, want, got)
	})
}
