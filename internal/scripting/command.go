package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cmdengine/internal/command"
	"github.com/cory-johannsen/cmdengine/internal/session"
)

// failureReply is sent to the player when a script errors or exceeds its budget.
const failureReply = "That command failed."

// Command is a registry handler backed by a Lua function.
//
// The function is called as function(player, args) where player has fields id
// and name and a send(msg) method, and args holds the tokens as args[1..n]
// together with args.tail (the text after the tokens already consumed) and
// args.raw (the whole argument text). A string return value is sent to the player.
type Command struct {
	Def CommandDef
	mgr *Manager
}

// Invoke runs the Lua function on behalf of p.
func (c *Command) Invoke(p *session.Player, args *command.Args) {
	tail := args.Tail()
	args.ParseAll()

	m := c.mgr
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.L == nil {
		_ = p.Send(failureReply)
		return
	}

	L := m.L
	ret, err := m.call(L.GetGlobal(c.Def.Function), playerTable(L, p), argsTable(L, args, tail))
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("command", c.Def.Name),
			zap.String("function", c.Def.Function),
			zap.Int("player", p.ID),
			zap.Error(err),
		)
		_ = p.Send(failureReply)
		return
	}
	if s, ok := ret.(lua.LString); ok && s != "" {
		_ = p.Send(string(s))
	}
}

func playerTable(L *lua.LState, p *session.Player) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "id", lua.LNumber(p.ID))
	L.SetField(t, "name", lua.LString(p.Name()))
	L.SetField(t, "send", L.NewFunction(func(L *lua.LState) int {
		// Accept both player.send(msg) and player:send(msg).
		idx := 1
		if L.GetTop() >= 2 {
			idx = 2
		}
		_ = p.Send(L.CheckString(idx))
		return 0
	}))
	return t
}

func argsTable(L *lua.LState, args *command.Args, tail string) *lua.LTable {
	t := L.CreateTable(args.Len(), 2)
	for _, tok := range args.Tokens() {
		t.Append(lua.LString(tok))
	}
	L.SetField(t, "tail", lua.LString(tail))
	L.SetField(t, "raw", lua.LString(args.String()))
	return t
}
