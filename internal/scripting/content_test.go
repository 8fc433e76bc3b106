package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// repoRoot walks up from the test's working directory to find the module root.
func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	root := wd
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			return root
		}
		parent := filepath.Dir(root)
		if parent == root {
			t.Fatalf("could not find repo root from %s", wd)
		}
		root = parent
	}
}

func TestContentScripts_LoadAndRunEveryHook(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	mgr := scripting.NewManager(dice.NewSeededSource(7), zap.New(core), 0)
	scripts := filepath.Join(repoRoot(t), "content", "scripts")

	dirs := map[int]string{6: "siege", 7: "infiltration", 8: "last_stand", 10: "overlord"}
	for n, dir := range dirs {
		require.NoError(t, mgr.LoadLevel(n, filepath.Join(scripts, dir)), dir)
		for wave := 1; wave <= 5; wave++ {
			mgr.CallHook(n, "on_wave_complete", lua.LNumber(wave))
		}
		for phase := 1; phase <= 4; phase++ {
			mgr.CallHook(n, "on_phase_enter", lua.LNumber(phase))
		}
		mgr.CallHook(n, "on_capture", lua.LNumber(1))
		mgr.CallHook(n, "on_level_end", lua.LString("victory"))
	}

	assert.Zero(t, logs.FilterLevelExact(zap.WarnLevel).FilterMessage("scripting: Lua runtime error").Len())
	assert.Equal(t, 30, mgr.CallInt(6, "on_wave_complete", lua.LNumber(3)))
	assert.Zero(t, mgr.CallInt(8, "on_wave_complete", lua.LNumber(3)))
}
