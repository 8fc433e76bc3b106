package progress_test

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/progress"
)

func TestMemoryStore_LevelOneAlwaysUnlocked(t *testing.T) {
	s := progress.NewMemoryStore()
	ctx := context.Background()
	ok, err := s.IsUnlocked(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.IsUnlocked(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.Unlocked(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)
}

func TestMemoryStore_UnlockIsIdempotent(t *testing.T) {
	s := progress.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Unlock(ctx, 6))
	require.NoError(t, s.Unlock(ctx, 6))
	require.NoError(t, s.Unlock(ctx, 2))
	got, err := s.Unlocked(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 6}, got)
}

func TestMemoryStore_OutOfRange(t *testing.T) {
	s := progress.NewMemoryStore()
	ctx := context.Background()
	for _, n := range []int{0, -1, 11} {
		assert.ErrorIs(t, s.Unlock(ctx, n), progress.ErrLevelOutOfRange)
		_, err := s.IsUnlocked(ctx, n)
		assert.ErrorIs(t, err, progress.ErrLevelOutOfRange)
	}
}

// Property: the unlock list is sorted, contains 1, and holds exactly the
// in-range levels that were unlocked.
func TestProperty_UnlockedMatchesUnlockCalls(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := progress.NewMemoryStore()
		ctx := context.Background()
		want := map[int]bool{1: true}
		for _, n := range rapid.SliceOf(rapid.IntRange(-3, 14)).Draw(rt, "levels") {
			err := s.Unlock(ctx, n)
			if n >= 1 && n <= 10 {
				require.NoError(rt, err)
				want[n] = true
			} else {
				require.ErrorIs(rt, err, progress.ErrLevelOutOfRange)
			}
		}
		got, err := s.Unlocked(ctx)
		require.NoError(rt, err)
		assert.True(rt, slices.IsSorted(got))
		assert.Len(rt, got, len(want))
		for _, n := range got {
			assert.True(rt, want[n], "level %d unexpectedly unlocked", n)
		}
	})
}
