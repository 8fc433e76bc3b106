package gameserver_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/input"
	"github.com/cory-johannsen/skirmish/internal/game/level"
	"github.com/cory-johannsen/skirmish/internal/game/session"
	"github.com/cory-johannsen/skirmish/internal/gameserver"
	"github.com/cory-johannsen/skirmish/internal/progress"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// A missile spawned at y 100 drifts into the player's fire; one at y 540
// lands on the player.
const shooterTemplate = `
level:
  number: %N%
  name: runner test
  genre: shooter
  script_dir: hooks
  player:
    start: {x: 400, y: 550}
    speed: 5
    weapon: {cooldown: 15, speed: 8, damage: 1, size: {x: 4, y: 10}}
  enemies:
    missile: {size: {x: 8, y: 15}, speed: 0.5, health: 1, score: 1}
  shooter:
    spawner: {kind: missile, every: 30, min_x: 400, max_x: 400, y: %Y%}
    target_score: 1
`

func shooter(t *testing.T, n, y string) *level.Config {
	t.Helper()
	cfg, err := level.LoadFromBytes([]byte(strings.NewReplacer("%N%", n, "%Y%", y).Replace(shooterTemplate)))
	require.NoError(t, err)
	return cfg
}

func catalog(t *testing.T, cfgs ...*level.Config) *level.Catalog {
	t.Helper()
	cat, err := level.NewCatalog(cfgs...)
	require.NoError(t, err)
	return cat
}

func sim() config.SimulationConfig {
	return config.SimulationConfig{TickRate: 1000, StartLevel: 1, Seed: 42, RestartDelay: 5 * time.Millisecond}
}

func fire() input.Snapshot { return input.Snapshot{Held: input.Of(input.KeyFire)} }

func TestRunner_VictoryUnlocksNextAndCompletes(t *testing.T) {
	store := progress.NewMemoryStore()
	cat := catalog(t, shooter(t, "1", "100"), shooter(t, "6", "100"))
	r := gameserver.NewRunner(sim(), cat, store, nil, zaptest.NewLogger(t))

	snaps := make(chan session.Snapshot, 4096)
	r.Subscribe(snaps)
	done := make(chan error, 1)
	go func() { done <- r.Start(context.Background()) }()
	// Held keys persist in the mailbox across ticks and levels reset them.
	deadline := time.After(10 * time.Second)
	for {
		r.Submit(fire())
		select {
		case err := <-done:
			require.NoError(t, err)
			got, err := store.Unlocked(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []int{1, 6}, got, "the catalog skips 2..5")
			assert.Equal(t, 6, r.Level())
			return
		case <-deadline:
			t.Fatal("campaign did not complete")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestRunner_DefeatRestartsLevel(t *testing.T) {
	r := gameserver.NewRunner(sim(), catalog(t, shooter(t, "1", "540")), progress.NewMemoryStore(), nil, zaptest.NewLogger(t))
	snaps := make(chan session.Snapshot, 4096)
	r.Subscribe(snaps)
	defer r.Unsubscribe(snaps)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	defeats := map[string]bool{}
	for len(defeats) < 2 {
		select {
		case snap := <-snaps:
			if snap.Status == session.Defeat.String() {
				defeats[snap.SessionID] = true
			}
		case <-ctx.Done():
			t.Fatal("level was not restarted after defeat")
		}
	}
	r.Stop()
	require.NoError(t, <-done)
}

func TestRunner_LockedLevelRefusesToStart(t *testing.T) {
	s := sim()
	s.StartLevel = 6
	r := gameserver.NewRunner(s, catalog(t, shooter(t, "1", "100"), shooter(t, "6", "100")), progress.NewMemoryStore(), nil, zap.NewNop())
	err := r.Start(context.Background())
	assert.ErrorIs(t, err, gameserver.ErrLevelLocked)
}

func TestRunner_UnknownLevel(t *testing.T) {
	s := sim()
	s.StartLevel = 3
	store := progress.NewMemoryStore()
	require.NoError(t, store.Unlock(context.Background(), 3))
	r := gameserver.NewRunner(s, catalog(t, shooter(t, "1", "100")), store, nil, zap.NewNop())
	assert.ErrorIs(t, r.Start(context.Background()), gameserver.ErrUnknownLevel)
}

func TestRunner_SlowSubscriberDropsSnapshots(t *testing.T) {
	r := gameserver.NewRunner(sim(), catalog(t, shooter(t, "1", "540")), progress.NewMemoryStore(), nil, zap.NewNop())
	slow := make(chan session.Snapshot)
	r.Subscribe(slow)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, r.Start(ctx), "an unread subscriber never blocks the tick loop")
}

func TestRunner_DebugLoggerRecordsDraws(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := gameserver.NewRunner(sim(), catalog(t, shooter(t, "1", "540")), progress.NewMemoryStore(), nil, zap.New(core))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()
	require.Eventually(t, func() bool { return logs.FilterMessage("random draw").Len() > 0 },
		5*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	draw := logs.FilterMessage("random draw").All()[0]
	assert.Equal(t, "dice", draw.LoggerName)
	assert.Contains(t, draw.ContextMap(), "value")
}

func TestRunner_ScriptHooksReceiveLevelEnd(t *testing.T) {
	dir := t.TempDir()
	cat := catalog(t, shooter(t, "1", "540"))
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	scripts := scripting.NewManager(dice.NewSeededSource(1), logger, 0)
	writeScript(t, dir, "hooks", `function on_level_end(outcome) engine.log.info("ended " .. outcome) end`)
	require.NoError(t, gameserver.LoadScripts(scripts, cat, dir))

	r := gameserver.NewRunner(sim(), cat, progress.NewMemoryStore(), scripts, logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()
	require.Eventually(t, func() bool { return logs.FilterMessage("ended defeat").Len() > 0 },
		5*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestLoadScripts_MissingDirectoryFails(t *testing.T) {
	scripts := scripting.NewManager(dice.NewSeededSource(1), zap.NewNop(), 0)
	err := gameserver.LoadScripts(scripts, catalog(t, shooter(t, "1", "100")), t.TempDir())
	assert.Error(t, err)
}

func writeScript(t *testing.T, root, dir, src string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, dir, "hooks.lua"), []byte(src), 0o644))
}
