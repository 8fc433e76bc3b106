package actor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

func newHostile(hp int) *actor.Actor {
	return &actor.Actor{
		Kind:      actor.KindRunner,
		Faction:   actor.FactionHostile,
		Size:      geom.V(10, 10),
		Health:    hp,
		MaxHealth: hp,
	}
}

func TestRegistry_AddAssignsStableIDs(t *testing.T) {
	r := actor.NewRegistry()
	a, b := newHostile(5), newHostile(5)
	idA := r.Add(a)
	idB := r.Add(b)
	assert.NotZero(t, idA)
	assert.NotEqual(t, idA, idB)
	got, ok := r.Get(idA)
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestRegistry_AddTwicePanics(t *testing.T) {
	r := actor.NewRegistry()
	a := newHostile(1)
	r.Add(a)
	assert.Panics(t, func() { r.Add(a) })
}

func TestRegistry_RemoveHidesImmediately(t *testing.T) {
	r := actor.NewRegistry()
	id := r.Add(newHostile(1))
	assert.True(t, r.Remove(id))
	_, ok := r.Get(id)
	assert.False(t, ok)
	assert.False(t, r.Remove(id))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_KilledActorNotFoundBeforeCompact(t *testing.T) {
	r := actor.NewRegistry()
	a := newHostile(3)
	id := r.Add(a)
	require.True(t, a.TakeDamage(3))
	_, ok := r.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Stored())
	assert.Equal(t, 1, r.Compact())
	assert.Equal(t, 0, r.Stored())
}

func TestRegistry_SnapshotSurvivesRemovalDuringIteration(t *testing.T) {
	r := actor.NewRegistry()
	var ids []actor.ID
	for i := 0; i < 5; i++ {
		ids = append(ids, r.Add(newHostile(1)))
	}
	visited := map[actor.ID]int{}
	for _, a := range r.Snapshot() {
		visited[a.ID]++
		// Removing a later entry and adding a new one must not disturb iteration.
		if a.ID == ids[1] {
			r.Remove(ids[3])
			r.Add(newHostile(1))
		}
	}
	assert.Len(t, visited, 5)
	for _, id := range ids {
		assert.Equal(t, 1, visited[id])
	}
	assert.Equal(t, 5, r.Len())
}

func TestActor_TakeDamageFloorsAtZero(t *testing.T) {
	a := newHostile(10)
	assert.False(t, a.TakeDamage(4))
	assert.True(t, a.TakeDamage(100))
	assert.Equal(t, 0, a.Health)
	assert.False(t, a.Alive())
	assert.False(t, a.TakeDamage(1), "dead actors do not die twice")
}

func TestActor_ImmuneRejectsDamage(t *testing.T) {
	a := newHostile(10)
	a.Immune = true
	assert.False(t, a.TakeDamage(9))
	assert.Equal(t, 10, a.Health)
}

func TestActor_HealCapsAtMax(t *testing.T) {
	a := newHostile(10)
	a.TakeDamage(5)
	a.Heal(20)
	assert.Equal(t, 10, a.Health)
}

type stepCounter struct{ n int }

func (s *stepCounter) Move(*actor.Actor, actor.Env) actor.Outcome {
	s.n++
	return actor.Moving
}

func TestActor_FrozenSkipsMovement(t *testing.T) {
	m := &stepCounter{}
	a := newHostile(1)
	a.Motion = m
	a.Frozen = 2
	a.Move(nil)
	a.Move(nil)
	a.Move(nil)
	assert.Equal(t, 1, m.n)
	assert.Equal(t, 0, a.Frozen)
}

func TestDeposit_TakeNeverOverdraws(t *testing.T) {
	d := &actor.Deposit{Remaining: 5}
	assert.Equal(t, 5, d.Take(8))
	assert.Equal(t, 0, d.Take(8))
}

// Property: a snapshot yields exactly the actors alive at snapshot time, each
// once, regardless of removals and insertions performed while iterating it.
func TestPropertySnapshotIterationSafety(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		r := actor.NewRegistry()
		n := rapid.IntRange(0, 40).Draw(rt, "initial")
		for i := 0; i < n; i++ {
			r.Add(newHostile(1))
		}
		// Pre-remove some so the backing slice holds dead entries.
		for _, a := range r.Snapshot() {
			if rapid.Bool().Draw(rt, "preremove") {
				r.Remove(a.ID)
			}
		}
		want := map[actor.ID]bool{}
		for _, a := range r.Snapshot() {
			want[a.ID] = true
		}

		seen := map[actor.ID]int{}
		snap := r.Snapshot()
		for _, a := range snap {
			seen[a.ID]++
			switch rapid.IntRange(0, 3).Draw(rt, "op") {
			case 0:
				r.Remove(a.ID)
			case 1:
				r.Add(newHostile(1))
			case 2:
				if len(snap) > 0 {
					victim := snap[rapid.IntRange(0, len(snap)-1).Draw(rt, "victim")]
					r.Remove(victim.ID)
				}
			}
			if rapid.Bool().Draw(rt, "compact") {
				r.Compact()
			}
		}
		if len(seen) != len(want) {
			rt.Fatalf("visited %d actors, want %d", len(seen), len(want))
		}
		for id, c := range seen {
			if !want[id] || c != 1 {
				rt.Fatalf("actor %d visited %d times (expected in set: %v)", id, c, want[id])
			}
		}
	})
}
