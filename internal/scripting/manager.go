package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// vm is one level's interpreter. An LState is single-threaded, so every
// call through it holds mu.
type vm struct {
	mu sync.Mutex
	L  *lua.LState
}

// Manager owns one sandboxed LState per level and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same level serialize on
// that level's VM; different levels run concurrently.
type Manager struct {
	mu        sync.RWMutex
	vms       map[int]*vm
	src       dice.Source
	logger    *zap.Logger
	instLimit int
}

// NewManager creates a Manager whose scripts draw engine.random from src and
// run at most instLimit opcodes per call.
//
// Precondition: src and logger must be non-nil; instLimit >= 0, 0 uses
// DefaultInstructionLimit.
// Postcondition: Returns a non-nil Manager with no levels loaded.
func NewManager(src dice.Source, logger *zap.Logger, instLimit int) *Manager {
	if src == nil {
		panic("scripting: NewManager requires a non-nil dice source")
	}
	if logger == nil {
		panic("scripting: NewManager requires a non-nil logger")
	}
	return &Manager{
		vms:       make(map[int]*vm),
		src:       src,
		logger:    logger,
		instLimit: instLimit,
	}
}

// LoadLevel creates a sandboxed VM for level n, registers the engine module,
// then executes every *.lua file in scriptDir in lexicographic order. A
// previously loaded VM for n is replaced and closed.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: the level VM is registered; returns error on Lua load failure.
func (m *Manager) LoadLevel(n int, scriptDir string) error {
	L := NewSandboxedState(m.instLimit)
	m.RegisterModules(L, n)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for level %d: %w", scriptDir, n, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		ResetBudget(L, m.instLimit)
		if err := L.DoFile(path); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for level %d: %w", path, n, err)
		}
	}

	m.mu.Lock()
	old := m.vms[n]
	m.vms[n] = &vm{L: L}
	m.mu.Unlock()
	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.logger.Debug("scripting: level loaded", zap.Int("level", n), zap.Int("files", len(luaFiles)))
	return nil
}

// Loaded reports whether level n has a VM.
func (m *Manager) Loaded(n int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[n]
	return ok
}

// CallHook calls the named Lua global function in level n's VM. Returns LNil
// if the level has no VM or the hook is not defined. Lua runtime errors,
// including an exhausted instruction budget, are logged at Warn level and
// never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(n int, hook string, args ...lua.LValue) lua.LValue {
	m.mu.RLock()
	v, ok := m.vms[n]
	m.mu.RUnlock()
	if !ok {
		m.logger.Debug("scripting: no VM for level", zap.Int("level", n), zap.String("hook", hook))
		return lua.LNil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.L.IsClosed() {
		return lua.LNil
	}
	fn := v.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil
	}

	ResetBudget(v.L, m.instLimit)
	if err := v.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.Int("level", n),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil
	}
	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret
}

// CallInt calls hook and converts a numeric result to int, truncating
// toward zero. Any other result is 0.
func (m *Manager) CallInt(n int, hook string, args ...lua.LValue) int {
	if num, ok := m.CallHook(n, hook, args...).(lua.LNumber); ok {
		return int(num)
	}
	return 0
}

// Close closes every level VM.
//
// Postcondition: no levels are loaded; later CallHook calls return LNil.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[int]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
	}
}
