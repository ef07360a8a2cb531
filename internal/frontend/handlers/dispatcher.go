// Package handlers connects front-end hosts to the command registry: the
// Telnet shell session loop and the line dispatcher shared with the console.
package handlers

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cmdengine/internal/command"
	"github.com/cory-johannsen/cmdengine/internal/session"
)

// ChatFunc handles a line that carries no command prefix.
type ChatFunc func(p *session.Player, text string)

// Dispatcher feeds input lines to a command registry on behalf of players and
// answers lines that no command claims.
type Dispatcher struct {
	registry *command.Registry[*session.Player]
	chat     ChatFunc
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher over reg.
//
// Precondition: reg and logger must be non-nil. chat may be nil; it is only
// consulted when reg has a command prefix.
func NewDispatcher(reg *command.Registry[*session.Player], chat ChatFunc, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{registry: reg, chat: chat, logger: logger}
}

// Dispatch runs one input line for p.
//
// Postcondition: Returns true iff a registered command handled the line. A
// blank line is ignored. With a prefix configured, an unprefixed line goes to
// the chat function. Any other miss replies Unknown command "<name>".
func (d *Dispatcher) Dispatch(p *session.Player, line string) bool {
	line = strings.TrimLeft(line, " \t")
	if d.registry.HandleCommandText(p, line) {
		return true
	}

	text := strings.TrimSpace(line)
	if text == "" {
		return false
	}

	prefix := d.registry.Prefix()
	if prefix != "" && !strings.HasPrefix(text, prefix) && d.chat != nil {
		d.chat(p, text)
		return false
	}

	rest := strings.TrimPrefix(text, prefix)
	name, _, ok := command.SplitCommand(rest)
	if !ok || command.IsSpace(rest[0]) {
		_ = p.Sendf("Type %shelp for a list of commands.", prefix)
		return false
	}
	d.logger.Debug("unhandled command line",
		zap.Int("player", p.ID),
		zap.String("name", name),
	)
	_ = p.Send(UnknownCommandReply(name))
	return false
}

// Prefix returns the command prefix of the underlying registry.
func (d *Dispatcher) Prefix() string {
	return d.registry.Prefix()
}

// UnknownCommandReply is the reply sent when no command is bound to name.
func UnknownCommandReply(name string) string {
	return fmt.Sprintf("Unknown command %q.", name)
}
