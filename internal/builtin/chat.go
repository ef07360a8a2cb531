package builtin

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cmdengine/internal/command"
	"github.com/cory-johannsen/cmdengine/internal/session"
)

func (c *Commands) say(p *session.Player, args *command.Args) {
	msg := args.Tail()
	if msg == "" {
		c.sendUsage(p, "say")
		return
	}
	c.Chat(p, msg)
}

// Chat broadcasts text as spoken by p. Hosts with a command prefix use it for
// lines that carry no prefix.
func (c *Commands) Chat(p *session.Player, text string) {
	c.sessions.Broadcast(fmt.Sprintf("%s says: %s", p.Name(), text))
}

func (c *Commands) emote(p *session.Player, args *command.Args) {
	action := args.Tail()
	if action == "" {
		c.sendUsage(p, "me")
		return
	}
	c.sessions.Broadcast(fmt.Sprintf("* %s %s", p.Name(), action))
}

func (c *Commands) privateMessage(p *session.Player, args *command.Args) {
	var id int
	if !args.Apply(command.Required(&id)) || args.Tail() == "" {
		c.sendUsage(p, "pm")
		return
	}
	t, ok := c.target(p, id)
	if !ok {
		return
	}
	msg := args.Tail()
	if err := t.Sendf("[PM from %s (%d)] %s", p.Name(), p.ID, msg); err != nil {
		c.logger.Debug("delivering private message", zap.Int("to", id), zap.Error(err))
		_ = p.Sendf("Could not deliver message to %d.", id)
		return
	}
	_ = p.Sendf("[PM to %s (%d)] %s", t.Name(), t.ID, msg)
}
