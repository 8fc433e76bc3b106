package wave_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/wave"
)

func shooterConfig() wave.Config {
	return wave.Config{
		InitialQuota:  5,
		QuotaStep:     3,
		QuotaDivisor:  2,
		BaseInterval:  4,
		IntervalStep:  1,
		MinInterval:   2,
		DelayTicks:    3,
		RewardBase:    50,
		RewardPerWave: 10,
		FinalWave:     3,
		Tiers: []wave.Tier{
			{UpTo: 1, Kinds: []wave.Weighted{{Kind: "runner", Weight: 1}}},
			{Kinds: []wave.Weighted{{Kind: "runner", Weight: 3}, {Kind: "minion", Weight: 1}}},
		},
	}
}

// tickUntilSpawn drives the scheduler with live hostiles until a spawn occurs.
func tickUntilSpawn(t *testing.T, s *wave.Scheduler, live int) wave.Decision {
	t.Helper()
	for i := 0; i < 1000; i++ {
		d := s.Tick(live)
		if d.Spawn {
			return d
		}
	}
	t.Fatal("no spawn within 1000 ticks")
	return wave.Decision{}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, shooterConfig().Validate())
	err := wave.Config{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial_quota")
	assert.Contains(t, err.Error(), "tier")
}

func TestInterval_Floors(t *testing.T) {
	cfg := shooterConfig()
	assert.Equal(t, 3, cfg.Interval(1))
	assert.Equal(t, 2, cfg.Interval(2))
	assert.Equal(t, 2, cfg.Interval(50))
}

func TestWaveOne_CompletesAfterQuotaKilled(t *testing.T) {
	s := wave.NewScheduler(shooterConfig(), dice.NewSequence(0))
	live := 0
	for i := 0; i < 5; i++ {
		d := tickUntilSpawn(t, s, live)
		assert.Equal(t, "runner", d.Kind)
		live++
	}
	st := s.State()
	assert.Equal(t, 5, st.Spawned)
	assert.Equal(t, wave.Draining, st.Phase)

	// Hostiles still alive: no completion.
	d := s.Tick(live)
	assert.False(t, d.Completed)

	live = 0
	d = s.Tick(live)
	require.True(t, d.Completed)
	assert.Equal(t, 1, d.CompletedWave)
	assert.Equal(t, 70, d.Reward)
	st = s.State()
	assert.True(t, st.Complete())
	assert.Equal(t, 2, st.Wave)
	assert.Equal(t, 5+3+1, st.Quota)
	assert.Equal(t, 0, st.Spawned)

	// Complete lasts one tick, then the delay counts down.
	s.Tick(0)
	assert.Equal(t, wave.Delay, s.State().Phase)
}

func TestEarlyKillDoesNotCompleteWave(t *testing.T) {
	s := wave.NewScheduler(shooterConfig(), dice.NewSequence(0))
	tickUntilSpawn(t, s, 0)
	// The only spawned hostile dies before the quota is met.
	for i := 0; i < 2; i++ {
		d := s.Tick(0)
		assert.False(t, d.Completed)
	}
	assert.Equal(t, 1, s.State().Wave)
}

func TestSameTickSpawnCountsAsLive(t *testing.T) {
	cfg := shooterConfig()
	cfg.InitialQuota = 1
	s := wave.NewScheduler(cfg, dice.NewSequence(0))
	d := tickUntilSpawn(t, s, 0)
	assert.False(t, d.Completed, "the hostile spawned this tick is alive")
	d = s.Tick(0)
	assert.True(t, d.Completed)
}

func TestFinalWave_EntersTerminalPhase(t *testing.T) {
	for _, boss := range []bool{true, false} {
		cfg := shooterConfig()
		cfg.FinalWave = 1
		cfg.BossAfterFinal = boss
		s := wave.NewScheduler(cfg, dice.NewSequence(0))
		for i := 0; i < 5; i++ {
			tickUntilSpawn(t, s, 1)
		}
		require.True(t, s.Tick(0).Completed)
		d := s.Tick(0)
		if boss {
			assert.True(t, d.EnteredBoss)
			assert.Equal(t, wave.BossPhase, s.State().Phase)
		} else {
			assert.True(t, d.Finished)
			assert.Equal(t, wave.Finished, s.State().Phase)
		}
		assert.Equal(t, wave.Decision{}, s.Tick(0), "terminal phases are inert")
	}
}

func TestChooseKind_WeightedTier(t *testing.T) {
	tiers := shooterConfig().Tiers
	assert.Equal(t, "runner", wave.ChooseKind(tiers, 1, dice.NewSequence(3)))
	assert.Equal(t, "runner", wave.ChooseKind(tiers, 2, dice.NewSequence(2)))
	assert.Equal(t, "minion", wave.ChooseKind(tiers, 2, dice.NewSequence(3)))
}

// Property: a completion decision is only ever issued when the quota has been
// spawned and no hostiles are alive.
func TestPropertyCompletionRequiresQuotaAndNoLive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := wave.NewScheduler(shooterConfig(), dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")))
		live := 0
		for i := 0; i < 400; i++ {
			before := s.State()
			kills := rapid.IntRange(0, live).Draw(rt, "kills")
			live -= kills
			d := s.Tick(live)
			if d.Spawn {
				live++
			}
			if d.Completed {
				if live != 0 {
					rt.Fatalf("wave completed with %d live hostiles", live)
				}
				if before.Phase == wave.Spawning && before.Spawned+1 < before.Quota {
					rt.Fatalf("wave completed before its quota was met")
				}
			}
			st := s.State()
			if st.Spawned > st.Quota {
				rt.Fatalf("spawned %d exceeds quota %d", st.Spawned, st.Quota)
			}
		}
	})
}
