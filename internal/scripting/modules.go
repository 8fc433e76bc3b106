package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the engine global into L:
//
//	engine.log.debug/info/warn/error(msg)
//	engine.random(n)  -- uniform integer in [1, n]
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState, level int) {
	engine := L.NewTable()
	engine.RawSetString("log", m.logModule(L, level))
	engine.RawSetString("random", L.NewFunction(m.luaRandom))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState, level int) *lua.LTable {
	logger := m.logger.With(zap.Int("level", level), zap.String("source", "lua"))
	t := L.NewTable()
	for name, fn := range map[string]func(string, ...zap.Field){
		"debug": logger.Debug,
		"info":  logger.Info,
		"warn":  logger.Warn,
		"error": logger.Error,
	} {
		t.RawSetString(name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1))
			return 0
		}))
	}
	return t
}

func (m *Manager) luaRandom(L *lua.LState) int {
	n := L.CheckInt(1)
	if n <= 0 {
		L.ArgError(1, "n must be positive")
		return 0
	}
	L.Push(lua.LNumber(m.src.Intn(n) + 1))
	return 1
}
