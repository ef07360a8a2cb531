// Package console hosts the command engine on the local terminal: one local
// player whose lines are read with line editing and in-memory history.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cmdengine/internal/config"
	"github.com/cory-johannsen/cmdengine/internal/frontend/handlers"
	"github.com/cory-johannsen/cmdengine/internal/session"
)

// LineReader reads one line of input after printing a prompt. *liner.State
// satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// NewTerminal opens the process terminal for line editing. Ctrl-C aborts the
// current prompt.
//
// Postcondition: The caller must Close the returned reader to restore the terminal.
func NewTerminal() *liner.State {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return line
}

// writer adapts an io.Writer into a session.Sender.
type writer struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *writer) WriteLine(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := fmt.Fprintln(w.w, text)
	return err
}

// Console runs the read-dispatch loop for the local player.
type Console struct {
	reader     LineReader
	out        *writer
	dispatcher *handlers.Dispatcher
	sessions   *session.Manager
	cfg        config.ConsoleConfig
	logger     *zap.Logger
}

// New creates a Console that reads from reader and writes replies to out.
//
// Precondition: every argument must be non-nil; cfg.PlayerName must be non-empty.
func New(reader LineReader, out io.Writer, dispatcher *handlers.Dispatcher, sessions *session.Manager, cfg config.ConsoleConfig, logger *zap.Logger) *Console {
	return &Console{
		reader:     reader,
		out:        &writer{w: out},
		dispatcher: dispatcher,
		sessions:   sessions,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run joins the local player and dispatches lines until end of input, an
// aborted prompt, the player quitting, or ctx being cancelled between lines.
//
// Postcondition: The local player is removed. Returns nil on a normal exit.
func (c *Console) Run(ctx context.Context) error {
	p, err := c.sessions.Add(c.cfg.PlayerName, c.out, nil)
	if err != nil {
		return fmt.Errorf("joining console player: %w", err)
	}
	defer func() { _ = c.sessions.Remove(p.ID) }()

	c.logger.Info("console session started", zap.Int("player", p.ID), zap.String("uid", p.UID))
	_ = p.Sendf("Logged in as %s (ID %d). Type %shelp for a list of commands.", p.Name(), p.ID, c.dispatcher.Prefix())

	for !p.Disconnected() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := c.reader.Prompt(c.cfg.Prompt)
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, liner.ErrPromptAborted):
			_ = p.Send("")
			return nil
		case err != nil:
			return fmt.Errorf("reading console input: %w", err)
		}

		if strings.TrimSpace(line) != "" {
			c.reader.AppendHistory(line)
		}
		c.dispatcher.Dispatch(p, line)
	}
	c.logger.Info("console session ended", zap.Int("player", p.ID))
	return nil
}
