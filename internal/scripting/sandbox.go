// Package scripting runs command handlers written in Lua inside a sandboxed
// GopherLua state. Scripted commands are declared in a YAML manifest and bound
// into the command registry alongside the built-in commands.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes a single script
// execution may run when no override is configured.
const DefaultInstructionLimit = 100_000

// countingContext is a context.Context that cancels itself after Done() has
// been called limit times. GopherLua's mainLoopWithContext calls Done() once
// per opcode, making this an exact instruction-count limit.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

// Done decrements the remaining budget and cancels once it reaches zero.
func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

// newCountingContext returns a context that cancels after limit calls to Done().
// Precondition: limit > 0.
func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &countingContext{
		Context:   base,
		cancel:    cancel,
		remaining: rem,
	}, cancel
}

// NewSandboxedState creates a GopherLua LState with only the base, table,
// string and math libraries, and with dofile, loadfile, load, collectgarbage
// and require removed.
//
// Postcondition: The caller owns the LState and must call L.Close() when done.
// No instruction limit is installed; wrap executions in RunLimited.
func NewSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// RunLimited runs fn with a fresh budget of limit opcodes installed on L. Each
// call gets its own budget, so a long-lived state can serve many invocations.
//
// Precondition: limit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: L has no context installed when RunLimited returns.
func RunLimited(L *lua.LState, limit int, fn func() error) error {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := newCountingContext(limit)
	defer cancel()

	L.SetContext(ctx)
	defer L.RemoveContext()
	return fn()
}
