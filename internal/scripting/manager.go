package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cmdengine/internal/command"
	"github.com/cory-johannsen/cmdengine/internal/session"
)

// Manager owns the Lua state that backs every scripted command.
//
// A single LState is not goroutine safe; Manager serializes all calls into it.
type Manager struct {
	mu        sync.Mutex
	L         *lua.LState
	instLimit int
	logger    *zap.Logger
	commands  []*Command

	// Broadcast is injected after construction. nil makes engine.broadcast a no-op.
	Broadcast func(msg string)
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil; instLimit >= 0 (0 uses DefaultInstructionLimit).
func NewManager(logger *zap.Logger, instLimit int) *Manager {
	return &Manager{
		instLimit: instLimit,
		logger:    logger,
	}
}

// Load executes every *.lua file in scriptDir in lexicographic order, then builds
// one Command per manifest entry.
//
// Precondition: m has not been loaded before; scriptDir must be a readable directory.
// Postcondition: Returns an error if a script fails to load or a manifest entry
// names a function the scripts do not define. On error no state is retained.
func (m *Manager) Load(manifest *Manifest, scriptDir string) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState()
	m.RegisterModules(L)

	for _, path := range luaFiles {
		if err := RunLimited(L, m.instLimit, func() error { return L.DoFile(path) }); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	cmds := make([]*Command, 0, len(manifest.Commands))
	for _, def := range manifest.Commands {
		if _, ok := L.GetGlobal(def.Function).(*lua.LFunction); !ok {
			L.Close()
			return fmt.Errorf("scripting: command %q: function %q is not defined", def.Name, def.Function)
		}
		cmds = append(cmds, &Command{Def: def, mgr: m})
	}

	m.mu.Lock()
	m.L = L
	m.commands = cmds
	m.mu.Unlock()

	m.logger.Info("scripted commands loaded",
		zap.Int("scripts", len(luaFiles)),
		zap.Int("commands", len(cmds)),
	)
	return nil
}

// Commands returns the loaded scripted commands in manifest order.
func (m *Manager) Commands() []*Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Command(nil), m.commands...)
}

// Register binds every loaded command into reg under its name and aliases.
//
// Postcondition: Returns the number of commands bound.
func (m *Manager) Register(reg *command.Registry[*session.Player]) int {
	cmds := m.Commands()
	for _, c := range cmds {
		reg.Handle(c, c.Def.Names()...)
	}
	return len(cmds)
}

// Close releases the Lua state.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.L != nil {
		m.L.Close()
		m.L = nil
	}
}

// call invokes fn(args...) under the instruction limit and returns its first result.
//
// Precondition: m.mu is held and m.L is non-nil.
func (m *Manager) call(fn lua.LValue, args ...lua.LValue) (lua.LValue, error) {
	L := m.L
	err := RunLimited(L, m.instLimit, func() error {
		return L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, args...)
	})
	if err != nil {
		return lua.LNil, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}
