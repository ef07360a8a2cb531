package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the engine table into L:
//
//	engine.log.debug(msg), engine.log.info(msg), engine.log.warn(msg)
//	engine.broadcast(msg)
//
// Precondition: L must be from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	log := L.NewTable()
	L.SetField(log, "debug", L.NewFunction(m.logFunc(m.logger.Debug)))
	L.SetField(log, "info", L.NewFunction(m.logFunc(m.logger.Info)))
	L.SetField(log, "warn", L.NewFunction(m.logFunc(m.logger.Warn)))
	L.SetField(engine, "log", log)

	L.SetField(engine, "broadcast", L.NewFunction(func(L *lua.LState) int {
		msg := L.CheckString(1)
		if m.Broadcast != nil {
			m.Broadcast(msg)
		}
		return 0
	}))

	L.SetGlobal("engine", engine)
}

func (m *Manager) logFunc(log func(string, ...zap.Field)) lua.LGFunction {
	return func(L *lua.LState) int {
		log("script", zap.String("msg", L.CheckString(1)))
		return 0
	}
}
