package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/cmdengine/internal/command"
	"github.com/cory-johannsen/cmdengine/internal/scripting"
	"github.com/cory-johannsen/cmdengine/internal/session"
	"github.com/cory-johannsen/cmdengine/internal/testutil"
)

const testScript = `
function cmd_greet(player, args)
	if #args < 1 then
		return "Usage: greet <name>"
	end
	return "Hello " .. args[1] .. ", from " .. player.name .. " (" .. player.id .. ")"
end

function cmd_shout(player, args)
	engine.broadcast(string.upper(args.raw))
end

function cmd_count(player, args)
	player:send("tokens=" .. #args)
	player.send("tail=" .. args.tail)
end

function cmd_log(player, args)
	engine.log.info("logged " .. args.raw)
end

function cmd_boom(player, args)
	error("intentional error")
end

function cmd_spin(player, args)
	while true do end
end
`

const testManifest = `
commands:
  - name: greet
    aliases: [hi]
    function: cmd_greet
    usage: greet <name>
  - name: shout
    function: cmd_shout
  - name: count
    function: cmd_count
  - name: log
    function: cmd_log
  - name: boom
    function: cmd_boom
  - name: spin
    function: cmd_spin
`

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

type scriptFixture struct {
	mgr      *scripting.Manager
	logs     *observer.ObservedLogs
	reg      *command.Registry[*session.Player]
	sessions *session.Manager
}

func newScriptFixture(t *testing.T) *scriptFixture {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	mgr := scripting.NewManager(zap.New(core), 1000)
	t.Cleanup(mgr.Close)

	manifest, err := scripting.ParseManifest([]byte(testManifest))
	require.NoError(t, err)
	require.NoError(t, mgr.Load(manifest, writeTempLua(t, "commands.lua", testScript)))

	sessions := session.NewManager(4)
	mgr.Broadcast = func(msg string) { sessions.Broadcast(msg) }

	reg := command.NewRegistry[*session.Player]()
	require.Equal(t, 6, mgr.Register(reg))
	return &scriptFixture{mgr: mgr, logs: logs, reg: reg, sessions: sessions}
}

func (f *scriptFixture) join(t *testing.T, name string) (*session.Player, *testutil.Recorder) {
	t.Helper()
	rec := &testutil.Recorder{}
	p, err := f.sessions.Add(name, rec, nil)
	require.NoError(t, err)
	return p, rec
}

func TestScriptedCommand_ReturnValueIsSent(t *testing.T) {
	f := newScriptFixture(t)
	p, rec := f.join(t, "Alice")

	require.True(t, f.reg.HandleCommandText(p, "greet Bob"))
	assert.Equal(t, "Hello Bob, from Alice (0)", rec.Last())

	require.True(t, f.reg.HandleCommandText(p, "HI"))
	assert.Equal(t, "Usage: greet <name>", rec.Last())
}

func TestScriptedCommand_Broadcast(t *testing.T) {
	f := newScriptFixture(t)
	p, ra := f.join(t, "Alice")
	_, rb := f.join(t, "Bob")

	f.reg.HandleCommandText(p, "shout hey you")
	assert.Equal(t, "HEY YOU", ra.Last())
	assert.Equal(t, "HEY YOU", rb.Last())
}

func TestScriptedCommand_SendAndTail(t *testing.T) {
	f := newScriptFixture(t)
	p, rec := f.join(t, "Alice")

	f.reg.HandleCommandText(p, "count  a b  c")
	assert.Equal(t, []string{"tokens=3", "tail=a b  c"}, rec.Lines())
}

func TestScriptedCommand_EngineLog(t *testing.T) {
	f := newScriptFixture(t)
	p, _ := f.join(t, "Alice")

	f.reg.HandleCommandText(p, "log something")
	entries := f.logs.FilterMessage("script").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "logged something", entries[0].ContextMap()["msg"])
}

func TestScriptedCommand_RuntimeErrorReported(t *testing.T) {
	f := newScriptFixture(t)
	p, rec := f.join(t, "Alice")

	require.True(t, f.reg.HandleCommandText(p, "boom"))
	assert.Equal(t, "That command failed.", rec.Last())
	assert.NotEmpty(t, f.logs.FilterLevelExact(zap.WarnLevel).All())
}

func TestScriptedCommand_InstructionLimit(t *testing.T) {
	f := newScriptFixture(t)
	p, rec := f.join(t, "Alice")

	f.reg.HandleCommandText(p, "spin")
	assert.Equal(t, "That command failed.", rec.Last())

	f.reg.HandleCommandText(p, "greet Carol")
	assert.Equal(t, "Hello Carol, from Alice (0)", rec.Last(), "state must stay usable after a budget overrun")
}

func TestManager_Load_UndefinedFunction(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop(), 0)
	manifest, err := scripting.ParseManifest([]byte("commands:\n  - name: x\n    function: missing\n"))
	require.NoError(t, err)
	err = mgr.Load(manifest, writeTempLua(t, "a.lua", "function present() end"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
	assert.Empty(t, mgr.Commands())
}

func TestManager_Load_SyntaxError(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop(), 0)
	err := mgr.Load(&scripting.Manifest{}, writeTempLua(t, "bad.lua", "function ("))
	assert.Error(t, err)
}

func TestManager_Load_MissingDir(t *testing.T) {
	mgr := scripting.NewManager(zap.NewNop(), 0)
	err := mgr.Load(&scripting.Manifest{}, filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestCommand_AfterClose(t *testing.T) {
	f := newScriptFixture(t)
	p, rec := f.join(t, "Alice")
	f.mgr.Close()

	f.reg.HandleCommandText(p, "greet Bob")
	assert.Equal(t, "That command failed.", rec.Last())
}
