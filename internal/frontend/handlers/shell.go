package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cmdengine/internal/frontend/telnet"
	"github.com/cory-johannsen/cmdengine/internal/session"
)

// Shell implements telnet.SessionHandler. Each connection becomes a session
// player whose input lines are dispatched as commands until the player quits,
// is kicked, or the connection drops.
type Shell struct {
	dispatcher *Dispatcher
	sessions   *session.Manager
	serverName string
	logger     *zap.Logger
}

// NewShell creates a Shell.
//
// Precondition: dispatcher, sessions and logger must be non-nil.
func NewShell(dispatcher *Dispatcher, sessions *session.Manager, serverName string, logger *zap.Logger) *Shell {
	return &Shell{
		dispatcher: dispatcher,
		sessions:   sessions,
		serverName: serverName,
		logger:     logger,
	}
}

var _ telnet.SessionHandler = (*Shell)(nil)

// HandleSession implements telnet.SessionHandler.
//
// Postcondition: The player is removed from the session manager. Returns nil
// when the player left through a command, ctx.Err() on shutdown, or the read
// error when the connection dropped.
func (s *Shell) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	addr := conn.RemoteAddr().String()

	p, err := s.sessions.Add("guest", conn, func() { _ = conn.Close() })
	if err != nil {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "The server is full. Try again later."))
		return fmt.Errorf("admitting %s: %w", addr, err)
	}
	p.SetName(fmt.Sprintf("guest%d", p.ID))

	logger := s.logger.With(
		zap.Int("player", p.ID),
		zap.String("uid", p.UID),
		zap.String("remote_addr", addr),
	)
	logger.Info("player joined")

	_ = p.Send(telnet.Colorf(telnet.Bold+telnet.Cyan, "Welcome to %s.", s.serverName))
	_ = p.Sendf("You are %s (ID %d). Type %shelp for a list of commands.", p.Name(), p.ID, s.dispatcher.Prefix())
	s.sessions.Broadcast(fmt.Sprintf("%s has joined.", p.Name()), p.ID)

	stop := context.AfterFunc(ctx, func() {
		_ = p.Send(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
		p.Disconnect()
	})

	err = s.loop(p, conn)

	stop()
	p.Disconnect()
	if rmErr := s.sessions.Remove(p.ID); rmErr != nil {
		logger.Warn("removing player", zap.Error(rmErr))
	}
	s.sessions.Broadcast(fmt.Sprintf("%s has left.", p.Name()))
	logger.Info("player left", zap.Duration("session_duration", time.Since(start)))

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (s *Shell) loop(p *session.Player, conn *telnet.Conn) error {
	for !p.Disconnected() {
		line, err := conn.ReadLine()
		if err != nil {
			if p.Disconnected() {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		s.dispatcher.Dispatch(p, line)
	}
	return nil
}
