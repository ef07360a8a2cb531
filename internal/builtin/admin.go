package builtin

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cmdengine/internal/command"
	"github.com/cory-johannsen/cmdengine/internal/session"
)

const defaultKickReason = "no reason given"

func (c *Commands) kick(p *session.Player, args *command.Args) {
	var id int
	if !args.Apply(command.Required(&id)) {
		c.sendUsage(p, "kick")
		return
	}
	t, ok := c.target(p, id)
	if !ok {
		return
	}

	reason := args.Tail()
	if reason == "" {
		reason = defaultKickReason
	}

	_ = t.Sendf("You have been kicked by %s: %s", p.Name(), reason)
	c.sessions.Broadcast(fmt.Sprintf("%s was kicked by %s (%s).", t.Name(), p.Name(), reason), t.ID)
	c.logger.Info("player kicked",
		zap.Int("id", t.ID),
		zap.String("uid", t.UID),
		zap.Int("by", p.ID),
		zap.String("reason", reason),
	)
	t.Disconnect()
}
