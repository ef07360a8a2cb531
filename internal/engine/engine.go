// Package engine assembles the command engine shared by every host: the
// registry, the session manager, the built-in commands and the scripted
// commands named in the configured manifest.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cmdengine/internal/builtin"
	"github.com/cory-johannsen/cmdengine/internal/command"
	"github.com/cory-johannsen/cmdengine/internal/config"
	"github.com/cory-johannsen/cmdengine/internal/frontend/handlers"
	"github.com/cory-johannsen/cmdengine/internal/scripting"
	"github.com/cory-johannsen/cmdengine/internal/session"
)

// Engine is a fully wired command engine.
type Engine struct {
	Registry   *builtin.Registry
	Sessions   *session.Manager
	Builtins   *builtin.Commands
	Dispatcher *handlers.Dispatcher
	// Scripts is nil when no manifest is configured.
	Scripts *scripting.Manager
}

// New wires an Engine from cfg. Scripted commands are registered after the
// built-ins, so a script may replace a built-in of the same name.
//
// Precondition: cfg must be valid; logger must be non-nil.
// Postcondition: Returns a ready Engine, or an error if the manifest or its
// scripts fail to load. The caller must Close the Engine.
func New(cfg config.Config, logger *zap.Logger) (*Engine, error) {
	reg := command.NewRegistry[*session.Player](
		command.WithLogger(logger.Named("dispatch")),
		command.WithPrefix(cfg.Commands.Prefix),
	)
	sessions := session.NewManager(cfg.Server.MaxPlayers)
	cmds := builtin.Register(reg, sessions, logger.Named("builtin"), nil)

	e := &Engine{
		Registry:   reg,
		Sessions:   sessions,
		Builtins:   cmds,
		Dispatcher: handlers.NewDispatcher(reg, cmds.Chat, logger.Named("dispatch")),
	}

	if cfg.Commands.ScriptingEnabled() {
		scripts, err := loadScripts(cfg.Commands, sessions, logger.Named("scripting"))
		if err != nil {
			return nil, err
		}
		n := scripts.Register(reg)
		for _, c := range scripts.Commands() {
			cmds.SetUsage(c.Def.Usage, c.Def.Names()...)
		}
		e.Scripts = scripts
		logger.Info("scripted commands registered", zap.Int("count", n))
	}

	logger.Info("command engine ready",
		zap.Int("names", reg.Len()),
		zap.String("prefix", cfg.Commands.Prefix),
	)
	return e, nil
}

func loadScripts(cfg config.CommandsConfig, sessions *session.Manager, logger *zap.Logger) (*scripting.Manager, error) {
	manifest, err := scripting.LoadManifest(cfg.Manifest)
	if err != nil {
		return nil, fmt.Errorf("loading command manifest: %w", err)
	}

	scripts := scripting.NewManager(logger, cfg.InstructionLimit)
	scripts.Broadcast = func(msg string) { sessions.Broadcast(msg) }
	if err := scripts.Load(manifest, cfg.ScriptDir); err != nil {
		return nil, fmt.Errorf("loading scripts: %w", err)
	}
	return scripts, nil
}

// Close releases the scripting runtime.
func (e *Engine) Close() {
	if e.Scripts != nil {
		e.Scripts.Close()
	}
}
