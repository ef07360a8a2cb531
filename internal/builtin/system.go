package builtin

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cmdengine/internal/command"
	"github.com/cory-johannsen/cmdengine/internal/session"
)

func (c *Commands) help(p *session.Player, args *command.Args) {
	var topic string
	if args.Apply(command.Optional(&topic)) && topic != "" {
		if _, ok := c.registry.Lookup(topic); !ok {
			_ = p.Sendf("Unknown command %q.", topic)
			return
		}
		if u, ok := c.Usage(topic); ok {
			_ = p.Send("Usage: " + u)
		} else {
			_ = p.Sendf("No help for %q.", topic)
		}
		return
	}
	_ = p.Send("Commands: " + strings.Join(c.registry.Names(), ", "))
}

func (c *Commands) who(p *session.Player) {
	players := c.sessions.All()
	lines := make([]string, 0, len(players)+1)
	lines = append(lines, fmt.Sprintf("Players online (%d):", len(players)))
	for _, other := range players {
		lines = append(lines, fmt.Sprintf("  [%d] %s", other.ID, other.Name()))
	}
	for _, l := range lines {
		_ = p.Send(l)
	}
}

func (c *Commands) quit(p *session.Player) {
	_ = p.Send("Goodbye.")
	c.logger.Info("player quit",
		zap.Int("id", p.ID),
		zap.String("uid", p.UID),
	)
	p.Disconnect()
}

func (c *Commands) rename(p *session.Player, args *command.Args) {
	args.TryParse(1)
	name, ok := command.Get[string](args, 0)
	if !ok || args.Tail() != "" {
		c.sendUsage(p, "name")
		return
	}
	old := p.Name()
	p.SetName(name)
	c.sessions.Broadcast(fmt.Sprintf("%s is now known as %s.", old, name))
}
