package gameserver

import (
	"path/filepath"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/skirmish/internal/game/level"
	"github.com/cory-johannsen/skirmish/internal/game/session"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// scriptHooks routes session events to a level's Lua hooks.
type scriptHooks struct {
	scripts *scripting.Manager
	level   int
}

func (h scriptHooks) WaveComplete(wave int) int {
	return h.scripts.CallInt(h.level, "on_wave_complete", lua.LNumber(wave))
}

func (h scriptHooks) PhaseEnter(phase int) {
	h.scripts.CallHook(h.level, "on_phase_enter", lua.LNumber(phase))
}

func (h scriptHooks) Capture(count int) {
	h.scripts.CallHook(h.level, "on_capture", lua.LNumber(count))
}

func (h scriptHooks) LevelEnd(outcome session.Status) {
	h.scripts.CallHook(h.level, "on_level_end", lua.LString(outcome.String()))
}

var _ session.Hooks = scriptHooks{}

// LoadScripts loads the script directory of every catalog level that names
// one, resolved against root.
//
// Postcondition: Returns the first load error; levels loaded before it stay loaded.
func LoadScripts(m *scripting.Manager, cat *level.Catalog, root string) error {
	for _, n := range cat.Numbers() {
		cfg, _ := cat.Get(n)
		if cfg.ScriptDir == "" {
			continue
		}
		if err := m.LoadLevel(n, filepath.Join(root, cfg.ScriptDir)); err != nil {
			return err
		}
	}
	return nil
}
