package console_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/cmdengine/internal/builtin"
	"github.com/cory-johannsen/cmdengine/internal/command"
	"github.com/cory-johannsen/cmdengine/internal/config"
	"github.com/cory-johannsen/cmdengine/internal/frontend/console"
	"github.com/cory-johannsen/cmdengine/internal/frontend/handlers"
	"github.com/cory-johannsen/cmdengine/internal/session"
)

// scriptedReader replays fixed lines, then returns end.
type scriptedReader struct {
	lines   []string
	end     error
	prompts []string
	history []string
}

func (r *scriptedReader) Prompt(prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if len(r.lines) == 0 {
		return "", r.end
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) AppendHistory(item string) { r.history = append(r.history, item) }

func (r *scriptedReader) Close() error { return nil }

var _ console.LineReader = (*liner.State)(nil)

type consoleFixture struct {
	out      bytes.Buffer
	sessions *session.Manager
	console  *console.Console
}

func newConsole(t *testing.T, reader console.LineReader, prefix string) *consoleFixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	reg := command.NewRegistry[*session.Player](command.WithLogger(logger), command.WithPrefix(prefix))
	f := &consoleFixture{sessions: session.NewManager(2)}
	cmds := builtin.Register(reg, f.sessions, logger, nil)
	cfg := config.ConsoleConfig{Prompt: "> ", PlayerName: "operator"}
	f.console = console.New(reader, &f.out, handlers.NewDispatcher(reg, cmds.Chat, logger), f.sessions, cfg, logger)
	return f
}

func TestConsole_DispatchesUntilEOF(t *testing.T) {
	reader := &scriptedReader{lines: []string{"calc 2 + 3", "", "nope"}, end: io.EOF}
	f := newConsole(t, reader, "")

	require.NoError(t, f.console.Run(context.Background()))

	out := f.out.String()
	assert.Contains(t, out, "Logged in as operator (ID 0).")
	assert.Contains(t, out, "2 + 3 = 5")
	assert.Contains(t, out, `Unknown command "nope".`)
	assert.Equal(t, []string{"calc 2 + 3", "nope"}, reader.history, "blank lines stay out of history")
	assert.Equal(t, []string{"> ", "> ", "> ", "> "}, reader.prompts)
	assert.Equal(t, 0, f.sessions.Count())
}

func TestConsole_QuitEndsLoop(t *testing.T) {
	reader := &scriptedReader{lines: []string{"exit", "calc 1 + 1"}, end: io.EOF}
	f := newConsole(t, reader, "")

	require.NoError(t, f.console.Run(context.Background()))
	assert.Contains(t, f.out.String(), "Goodbye.")
	assert.NotContains(t, f.out.String(), "1 + 1 = 2")
	assert.Equal(t, []string{"calc 1 + 1"}, reader.lines)
}

func TestConsole_PrefixAndChat(t *testing.T) {
	reader := &scriptedReader{lines: []string{"hello world", "/who"}, end: liner.ErrPromptAborted}
	f := newConsole(t, reader, "/")

	require.NoError(t, f.console.Run(context.Background()))
	out := f.out.String()
	assert.Contains(t, out, "Type /help")
	assert.Contains(t, out, "operator says: hello world")
	assert.Contains(t, out, "Players online (1):")
}

func TestConsole_ReadError(t *testing.T) {
	boom := errors.New("terminal gone")
	f := newConsole(t, &scriptedReader{end: boom}, "")

	err := f.console.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, f.sessions.Count())
}

func TestConsole_CancelledContext(t *testing.T) {
	reader := &scriptedReader{lines: []string{"who"}, end: io.EOF}
	f := newConsole(t, reader, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.console.Run(ctx), context.Canceled)
	assert.Empty(t, reader.prompts)
}
