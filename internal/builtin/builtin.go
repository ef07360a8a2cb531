// Package builtin provides the commands every server registers: help, player
// listing, chat, private messages, kicking, dice rolls and a calculator.
package builtin

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cmdengine/internal/command"
	"github.com/cory-johannsen/cmdengine/internal/session"
)

// Registry is the command registry specialised to session players.
type Registry = command.Registry[*session.Player]

// Source provides randomness for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// IntN returns a random int in [0, n).
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Commands holds the dependencies shared by the built-in handlers.
type Commands struct {
	registry *Registry
	sessions *session.Manager
	logger   *zap.Logger
	rng      Source
	usage    map[string]string // FoldName(name) → usage line
}

// Register binds every built-in command into reg.
//
// Precondition: reg, sessions and logger must be non-nil. rng may be nil, in
// which case math/rand/v2 is used.
// Postcondition: Returns the Commands so callers can add usage lines for their own commands.
func Register(reg *Registry, sessions *session.Manager, logger *zap.Logger, rng Source) *Commands {
	if rng == nil {
		rng = globalSource{}
	}
	c := &Commands{
		registry: reg,
		sessions: sessions,
		logger:   logger,
		rng:      rng,
		usage:    make(map[string]string),
	}

	c.add(command.HandlerFunc[*session.Player](c.help), "help [command]", "help", "commands", "?")
	c.add(command.NoArgsFunc[*session.Player](c.who), "who", "who", "players")
	c.add(command.NoArgsFunc[*session.Player](c.quit), "quit", "quit", "exit")
	c.add(command.HandlerFunc[*session.Player](c.say), "say <message>", "say")
	c.add(command.HandlerFunc[*session.Player](c.emote), "me <action>", "me", "emote")
	c.add(command.HandlerFunc[*session.Player](c.privateMessage), "pm <id> <message>", "pm", "whisper")
	c.add(command.HandlerFunc[*session.Player](c.rename), "name <new name>", "name")
	c.add(command.HandlerFunc[*session.Player](c.kick), "kick <id> [reason]", "kick")
	c.add(command.HandlerFunc[*session.Player](c.roll), "roll [count] [sides]", "roll", "dice")
	c.add(command.HandlerFunc[*session.Player](c.calc), "calc <a> <+|-|*|/> <b>", "calc")
	return c
}

func (c *Commands) add(h command.Handler[*session.Player], usage string, names ...string) {
	c.registry.Handle(h, names...)
	c.SetUsage(usage, names...)
}

// SetUsage records the usage line shown by "help <name>" for each name. An
// empty usage clears any line recorded earlier.
func (c *Commands) SetUsage(usage string, names ...string) {
	for _, n := range names {
		if usage == "" {
			delete(c.usage, command.FoldName(n))
			continue
		}
		c.usage[command.FoldName(n)] = usage
	}
}

// Usage returns the usage line recorded for name.
func (c *Commands) Usage(name string) (string, bool) {
	u, ok := c.usage[command.FoldName(name)]
	return u, ok
}

func (c *Commands) sendUsage(p *session.Player, name string) {
	if u, ok := c.Usage(name); ok {
		_ = p.Send("Usage: " + u)
	}
}

// target resolves the player ID bound from the arguments, replying to p when it
// does not name a connected player.
func (c *Commands) target(p *session.Player, id int) (*session.Player, bool) {
	t, ok := c.sessions.Get(id)
	if !ok {
		_ = p.Sendf("No player with ID %d.", id)
		return nil, false
	}
	return t, true
}
