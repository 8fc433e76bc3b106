// Package progress tracks which levels a player may start.
package progress

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cory-johannsen/skirmish/internal/game/level"
)

// ErrLevelOutOfRange is returned for level numbers outside 1..level.MaxLevel.
var ErrLevelOutOfRange = errors.New("level out of range")

// Store persists the unlock list. Level 1 is always unlocked.
type Store interface {
	// Unlock marks n playable. Unlocking an unlocked level is a no-op.
	Unlock(ctx context.Context, n int) error
	// IsUnlocked reports whether n may be started.
	IsUnlocked(ctx context.Context, n int) (bool, error)
	// Unlocked returns every playable level in ascending order.
	Unlocked(ctx context.Context) ([]int, error)
}

// CheckRange returns ErrLevelOutOfRange, wrapped with n, when n is not a
// level number.
func CheckRange(n int) error {
	if n < 1 || n > level.MaxLevel {
		return fmt.Errorf("level %d: %w", n, ErrLevelOutOfRange)
	}
	return nil
}

// MemoryStore is an in-process Store.
//
// MemoryStore is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	unlocked map[int]struct{}
}

// NewMemoryStore returns a store with only level 1 unlocked.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{unlocked: map[int]struct{}{1: {}}}
}

// Unlock implements Store.
func (s *MemoryStore) Unlock(_ context.Context, n int) error {
	if err := CheckRange(n); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unlocked[n] = struct{}{}
	return nil
}

// IsUnlocked implements Store.
func (s *MemoryStore) IsUnlocked(_ context.Context, n int) (bool, error) {
	if err := CheckRange(n); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.unlocked[n]
	return ok, nil
}

// Unlocked implements Store.
func (s *MemoryStore) Unlocked(_ context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, 0, len(s.unlocked))
	for n := range s.unlocked {
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
